// Пакет errors — конструктори на стандартните грешки на Declaration Service.
// Единен формат: {"error": {"code": "...", "message": "..."}}.
// Всички HTTP отговори с грешка трябва да минават през WriteError.
package errors //nolint:revive // име съвпада със stdlib, пакетът се импортира като apierrors

import (
	"encoding/json"
	"net/http"
)

// Кодове на грешките в API контракта.
const (
	CodeValidationError = "VALIDATION_ERROR"
	CodeNotFound        = "NOT_FOUND"
	CodeRenderError     = "RENDER_ERROR"
	CodeStorageError    = "STORAGE_ERROR"
	CodeInternalError   = "INTERNAL_ERROR"
)

// errorBody — структура на тялото на отговора с грешка.
type errorBody struct {
	Error errorDetail `json:"error"`
}

// errorDetail — детайли на грешката.
type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WriteError записва отговор с грешка в стандартния формат.
// statusCode — HTTP статус, code — машинночетим код, message — описание.
func WriteError(w http.ResponseWriter, statusCode int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(errorBody{
		Error: errorDetail{
			Code:    code,
			Message: message,
		},
	})
}

// --- Конструктори за типичните грешки ---

// ValidationError — 400 некоректни входни данни.
func ValidationError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, CodeValidationError, message)
}

// NotFound — 404 ресурсът не е намерен.
func NotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, CodeNotFound, message)
}

// InternalError — 500 вътрешна грешка.
func InternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, CodeInternalError, message)
}
