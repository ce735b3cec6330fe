// naming.go — именуване на обектите в хранилището.
package blobstore

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// locatorTimeFormat — UTC timestamp във формат yyyyMMddHHmmss.
// Префиксът с timestamp дава грубо хронологично подреждане при
// листване; UUID суфиксът гарантира уникалност при конкурентни
// заявки в една и съща секунда.
const locatorTimeFormat = "20060102150405"

// objectExtension — разширение на съхраняваните обекти.
const objectExtension = ".pdf"

// NewLocator генерира име на обект: {prefix}/{yyyyMMddHHmmss}_{uuid}.pdf.
func NewLocator(prefix string, now time.Time) string {
	return fmt.Sprintf("%s/%s_%s%s",
		prefix,
		now.UTC().Format(locatorTimeFormat),
		uuid.NewString(),
		objectExtension,
	)
}
