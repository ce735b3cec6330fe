// Пакет model — доменни модели на Declaration Service.
// PersonalDataRecord — личните данни на заявителя, предмет на декларацията.
// Записът се конструира от транспортния слой за всяка заявка и не се
// персистира — съхранява се само PDF проекцията и подмножество метаданни.
package model

import (
	"strings"
	"time"
)

// PersonalDataRecord — личните данни на заявителя (канонична схема
// със структуриран адрес). Полетата съответстват на JSON заявката.
type PersonalDataRecord struct {
	// FirstName — собствено име (задължително)
	FirstName string `json:"firstName"`

	// MiddleName — презиме (опционално)
	MiddleName string `json:"middleName,omitempty"`

	// LastName — фамилно име (задължително)
	LastName string `json:"lastName"`

	// EGN — единен граждански номер, точно 10 цифри (задължително)
	EGN string `json:"egn"`

	// DateOfBirth — дата на раждане (опционално).
	// При наличие: строго преди момента на заявката и не по-рано
	// от 150 години назад.
	DateOfBirth *time.Time `json:"dateOfBirth,omitempty"`

	// Phone — телефон за връзка (опционално)
	Phone string `json:"phone,omitempty"`

	// Email — електронна поща (опционално, проверява се синтактично)
	Email string `json:"email,omitempty"`

	// Address — структуриран адрес
	Address Address `json:"address"`
}

// Address — структуриран адрес на заявителя.
// Задължителни са само градът и пощенският код; останалите полета
// участват във форматирания адресен ред само когато са попълнени.
type Address struct {
	// City — населено място (задължително)
	City string `json:"city"`

	// PostalCode — пощенски код, точно 4 цифри (задължително)
	PostalCode string `json:"postalCode"`

	// Community — жилищен комплекс, изписва се с префикс "ж.к."
	Community string `json:"community,omitempty"`

	// Street — улица, изписва се с префикс "ул."
	Street string `json:"street,omitempty"`

	// Number — номер на улицата
	Number string `json:"number,omitempty"`

	// Block — блок ("бл.")
	Block string `json:"block,omitempty"`

	// Entrance — вход ("вх.")
	Entrance string `json:"entrance,omitempty"`

	// Floor — етаж ("ет.")
	Floor string `json:"floor,omitempty"`

	// Apartment — апартамент ("ап.")
	Apartment string `json:"apartment,omitempty"`
}

// FullName връща пълното име на заявителя — собствено, презиме (ако има)
// и фамилно име, разделени с интервал.
func (r *PersonalDataRecord) FullName() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{r.FirstName, r.MiddleName, r.LastName} {
		if s := strings.TrimSpace(p); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

// Format връща адреса като един ред за печат върху бланката.
// Пример: "гр. София 1000, ж.к. Младост, ул. Иван Вазов № 5, бл. 3, вх. Б, ет. 4, ап. 12".
func (a *Address) Format() string {
	parts := make([]string, 0, 7)

	city := strings.TrimSpace(a.City)
	if code := strings.TrimSpace(a.PostalCode); code != "" {
		city = city + " " + code
	}
	if city != "" {
		parts = append(parts, "гр. "+city)
	}

	appendPrefixed := func(prefix, val string) {
		if s := strings.TrimSpace(val); s != "" {
			parts = append(parts, prefix+" "+s)
		}
	}

	appendPrefixed("ж.к.", a.Community)

	if street := strings.TrimSpace(a.Street); street != "" {
		line := "ул. " + street
		if num := strings.TrimSpace(a.Number); num != "" {
			line += " № " + num
		}
		parts = append(parts, line)
	}

	appendPrefixed("бл.", a.Block)
	appendPrefixed("вх.", a.Entrance)
	appendPrefixed("ет.", a.Floor)
	appendPrefixed("ап.", a.Apartment)

	return strings.Join(parts, ", ")
}
