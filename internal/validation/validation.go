// Пакет validation — проверка на личните данни срещу полевите правила.
// Правилата са статичен подреден списък от предикат + съобщение;
// всички се изпълняват безусловно и се събират всички нарушения,
// а не само първото.
package validation

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"time"

	"github.com/bgforms/declaration-service/internal/domain/model"
)

// Регулярни изрази за полетата с фиксиран формат.
var (
	egnPattern        = regexp.MustCompile(`^\d{10}$`)
	postalCodePattern = regexp.MustCompile(`^\d{4}$`)
)

// maxAgeYears — горна граница за дата на раждане: не по-рано
// от 150 години преди момента на проверката.
const maxAgeYears = 150

// Violation — едно нарушение на полево правило.
type Violation struct {
	// Field — името на полето от JSON заявката
	Field string
	// Message — човекочетимо съобщение за нарушението
	Message string
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

// rule — предикат + съобщение. Предикатът връща true при нарушение.
type rule struct {
	field   string
	message string
	failed  func(r *model.PersonalDataRecord, now time.Time) bool
}

// rules — каноничният подреден списък от правила.
// Редът определя реда на съобщенията в агрегираната грешка.
var rules = []rule{
	{
		field:   "firstName",
		message: "собственото име е задължително",
		failed: func(r *model.PersonalDataRecord, _ time.Time) bool {
			return strings.TrimSpace(r.FirstName) == ""
		},
	},
	{
		field:   "lastName",
		message: "фамилното име е задължително",
		failed: func(r *model.PersonalDataRecord, _ time.Time) bool {
			return strings.TrimSpace(r.LastName) == ""
		},
	},
	{
		field:   "egn",
		message: "ЕГН е задължително и трябва да съдържа точно 10 цифри",
		failed: func(r *model.PersonalDataRecord, _ time.Time) bool {
			return !egnPattern.MatchString(r.EGN)
		},
	},
	{
		field:   "dateOfBirth",
		message: "датата на раждане трябва да е в миналото и не по-рано от 150 години назад",
		failed: func(r *model.PersonalDataRecord, now time.Time) bool {
			if r.DateOfBirth == nil {
				return false
			}
			dob := *r.DateOfBirth
			return !dob.Before(now) || dob.Before(now.AddDate(-maxAgeYears, 0, 0))
		},
	},
	{
		field:   "address.city",
		message: "населеното място е задължително",
		failed: func(r *model.PersonalDataRecord, _ time.Time) bool {
			return strings.TrimSpace(r.Address.City) == ""
		},
	},
	{
		field:   "address.postalCode",
		message: "пощенският код е задължителен и трябва да съдържа точно 4 цифри",
		failed: func(r *model.PersonalDataRecord, _ time.Time) bool {
			return !postalCodePattern.MatchString(r.Address.PostalCode)
		},
	},
	{
		field:   "email",
		message: "електронната поща е с невалиден синтаксис",
		failed: func(r *model.PersonalDataRecord, _ time.Time) bool {
			if strings.TrimSpace(r.Email) == "" {
				return false
			}
			_, err := mail.ParseAddress(r.Email)
			return err != nil
		},
	},
}

// Check проверява записа срещу всички правила и връща списък с всички
// открити нарушения (празен списък при валиден запис). Без странични
// ефекти; now се подава отвън заради детерминирани тестове.
func Check(r *model.PersonalDataRecord, now time.Time) []Violation {
	var violations []Violation
	for _, rl := range rules {
		if rl.failed(r, now) {
			violations = append(violations, Violation{Field: rl.field, Message: rl.message})
		}
	}
	return violations
}

// Join събира нарушенията в един низ, разделен с "; ", за агрегираното
// съобщение за грешка към клиента.
func Join(violations []Violation) string {
	parts := make([]string, len(violations))
	for i, v := range violations {
		parts[i] = v.String()
	}
	return strings.Join(parts, "; ")
}
