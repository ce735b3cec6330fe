// Пакет service — бизнес-логика на Declaration Service.
// FormService оркестрира генерирането и извличането на декларации:
// валидация → рендериране → качване, и симетричния път по formId.
// Без състояние между заявките; компонентните грешки са финални за
// текущата заявка — повторни опити прави само хранилището вътрешно.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bgforms/declaration-service/internal/domain/model"
	"github.com/bgforms/declaration-service/internal/storage/blobstore"
)

// Prometheus метрики на сервизния слой.
var (
	formsGeneratedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ds_forms_generated_total",
		Help: "Брой заявки за генериране на декларация (по резултат)",
	}, []string{"result"})

	formsRetrievedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ds_forms_retrieved_total",
		Help: "Брой заявки за извличане на декларация (по резултат)",
	}, []string{"result"})
)

// Renderer — контрактът на рендериращия компонент.
type Renderer interface {
	Render(ctx context.Context, rec *model.PersonalDataRecord) ([]byte, error)
}

// FormError — грешка на сервизния слой с HTTP код.
type FormError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *FormError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// FormService — оркестратор на декларациите.
type FormService struct {
	renderer Renderer
	store    blobstore.Store
	logger   *slog.Logger
}

// NewFormService създава оркестратора.
func NewFormService(renderer Renderer, store blobstore.Store, logger *slog.Logger) *FormService {
	return &FormService{
		renderer: renderer,
		store:    store,
		logger:   logger.With(slog.String("component", "form_service")),
	}
}
