// layout.go — координатна схема на бланката на декларацията.
// Всяко поле е един ред текст в точка с фиксирани координати (x, y)
// от долния ляв ъгъл на първата страница, в пунктове. Координатите са
// константи на конкретната бланка, не се изчисляват. Без пренасяне
// на редове — подателят отговаря стойностите да се събират в полетата.
package render

import (
	"github.com/bgforms/declaration-service/internal/domain/model"
)

// fieldPosition — фиксирана позиция на поле върху бланката.
type fieldPosition struct {
	X, Y   float64
	Points int
}

// stamp — текст за печат на конкретна позиция.
type stamp struct {
	Text string
	Pos  fieldPosition
}

// dateFormat — формат на датите върху бланката.
const dateFormat = "02.01.2006"

// Позиции на полетата върху бланка "Декларация за лични данни" (A4).
var (
	posFirstName   = fieldPosition{X: 95, Y: 688, Points: 11}
	posMiddleName  = fieldPosition{X: 255, Y: 688, Points: 11}
	posLastName    = fieldPosition{X: 415, Y: 688, Points: 11}
	posEGN         = fieldPosition{X: 95, Y: 652, Points: 11}
	posDateOfBirth = fieldPosition{X: 330, Y: 652, Points: 11}
	posAddress     = fieldPosition{X: 95, Y: 616, Points: 10}
	posPhone       = fieldPosition{X: 95, Y: 580, Points: 11}
	posEmail       = fieldPosition{X: 330, Y: 580, Points: 11}
)

// stamps връща печатите за попълнените полета на записа в реда,
// в който се нанасят върху бланката.
func stamps(rec *model.PersonalDataRecord) []stamp {
	out := []stamp{
		{Text: rec.FirstName, Pos: posFirstName},
		{Text: rec.LastName, Pos: posLastName},
		{Text: rec.EGN, Pos: posEGN},
		{Text: rec.Address.Format(), Pos: posAddress},
	}

	if rec.MiddleName != "" {
		out = append(out, stamp{Text: rec.MiddleName, Pos: posMiddleName})
	}
	if rec.DateOfBirth != nil {
		out = append(out, stamp{Text: rec.DateOfBirth.Format(dateFormat), Pos: posDateOfBirth})
	}
	if rec.Phone != "" {
		out = append(out, stamp{Text: rec.Phone, Pos: posPhone})
	}
	if rec.Email != "" {
		out = append(out, stamp{Text: rec.Email, Pos: posEmail})
	}

	return out
}
