// result.go — резултат от операция Generate/Retrieve и метаданни
// на съхранения документ.
package model

import "time"

// GenerationResult — резултат от успешна операция Generate или Retrieve.
// Неуспехите се връщат като типизирани грешки от сервизния слой и
// транспортът ги превръща в problem-обект; в успешния резултат винаги
// са попълнени FormID и DownloadURL.
type GenerationResult struct {
	// Success — флаг за успех (винаги true в този тип)
	Success bool `json:"success"`

	// FormID — непрозрачен идентификатор на генерираната декларация.
	// Формат: {yyyyMMddHHmmss UTC}_{uuid}.
	FormID string `json:"formId"`

	// DownloadURL — подписан URL за изтегляне с ограничен срок
	DownloadURL string `json:"downloadUrl"`

	// Locator — вътрешно име на обекта в хранилището
	Locator string `json:"locator"`

	// CreatedAt — момент на генериране (UTC)
	CreatedAt time.Time `json:"createdAt"`

	// ExpiresAt — момент на изтичане на DownloadURL (UTC)
	ExpiresAt time.Time `json:"expiresAt"`
}

// DocumentMetadata — метаданните, записани като sidecar върху обекта
// в хранилището. Четат се обратно дословно при Retrieve и никога не
// се променят след качването.
type DocumentMetadata struct {
	// FormID — глобално уникален идентификатор; единственият ключ,
	// по който документът се намира впоследствие.
	FormID string

	// FullName — пълното име на заявителя за визуализация
	FullName string

	// GeneratedAt — момент на генериране (UTC)
	GeneratedAt time.Time

	// EGN — единен граждански номер на заявителя
	EGN string

	// Email — електронна поща на заявителя (може да е празна)
	Email string

	// ContentType — MIME-тип на съхранения документ
	ContentType string
}
