// Пакет blobstore — трайно съхранение на генерираните документи.
// Дефинира интерфейса Store и продукционната имплементация върху
// Google Cloud Storage. Документът се записва като обект със sidecar
// метаданни; достъпът за изтегляне става през подписан URL с ограничен
// срок на валидност.
package blobstore

import (
	"context"
	"errors"
	"time"

	"github.com/bgforms/declaration-service/internal/domain/model"
)

// ErrNotFound — никой съхранен обект не носи търсения идентификатор.
var ErrNotFound = errors.New("документът не е намерен в хранилището")

// StoredDocument — резултат от Upload или FindByFormID.
type StoredDocument struct {
	// Locator — вътрешното име на обекта в хранилището
	Locator string
	// DownloadURL — подписан URL за изтегляне
	DownloadURL string
	// ExpiresAt — момент на изтичане на DownloadURL (UTC)
	ExpiresAt time.Time
	// Metadata — метаданните, записани върху обекта
	Metadata model.DocumentMetadata
}

// Store — контрактът на хранилището за документи.
// Единствената продукционна имплементация е GCS; тестовете подават
// свои фалшиви имплементации.
type Store interface {
	// Upload качва данните с метаданни под генерирано име и връща
	// локатора заедно с подписан URL. Преходните грешки се повтарят
	// според конфигурираната политика.
	Upload(ctx context.Context, data []byte, meta model.DocumentMetadata) (*StoredDocument, error)

	// FindByFormID намира съхранен документ по formId от метаданните.
	// Връща ErrNotFound, когато няма съвпадение.
	FindByFormID(ctx context.Context, formID string) (*StoredDocument, error)

	// IssueAccessURL издава подписан URL само за четене за съществуващ
	// локатор със зададен срок на валидност.
	IssueAccessURL(ctx context.Context, locator string, ttl time.Duration) (string, time.Time, error)
}
