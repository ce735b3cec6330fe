// forms.go — HTTP handlers за операциите с декларации.
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bgforms/declaration-service/internal/api/errors"
	"github.com/bgforms/declaration-service/internal/domain/model"
	"github.com/bgforms/declaration-service/internal/service"
)

// maxRequestBody — таван на тялото на заявката за генериране.
// Личните данни са кратки полета; 1 MB е многократен запас.
const maxRequestBody = 1 << 20

// FormsHandler — обработчик на endpoints за декларации.
type FormsHandler struct {
	svc *service.FormService
}

// NewFormsHandler създава обработчика на декларации.
func NewFormsHandler(svc *service.FormService) *FormsHandler {
	return &FormsHandler{svc: svc}
}

// Generate обработва POST /api/form/generate.
// Тяло: JSON запис с лични данни. Отговор: 200 с GenerationResult,
// 400 при нарушения на валидацията, 500 при грешка на рендериране
// или хранилище.
func (h *FormsHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var rec model.PersonalDataRecord

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&rec); err != nil {
		errors.ValidationError(w, fmt.Sprintf("Некоректно JSON тяло: %s", err.Error()))
		return
	}

	result, formErr := h.svc.Generate(r.Context(), &rec)
	if formErr != nil {
		errors.WriteError(w, formErr.StatusCode, formErr.Code, formErr.Message)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Retrieve обработва GET /api/form/{formId}.
// Отговор: 200 с GenerationResult, 404 когато декларацията липсва,
// 500 при грешка на хранилището.
func (h *FormsHandler) Retrieve(w http.ResponseWriter, r *http.Request) {
	formID := chi.URLParam(r, "formId")
	if formID == "" {
		errors.ValidationError(w, "Параметърът formId е задължителен")
		return
	}

	result, formErr := h.svc.Retrieve(r.Context(), formID)
	if formErr != nil {
		errors.WriteError(w, formErr.StatusCode, formErr.Code, formErr.Message)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// writeJSON записва JSON отговор с даден статус код.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
