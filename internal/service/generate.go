// generate.go — генериране на декларация.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	apierrors "github.com/bgforms/declaration-service/internal/api/errors"
	"github.com/bgforms/declaration-service/internal/domain/model"
	"github.com/bgforms/declaration-service/internal/validation"
)

// formIDTimeFormat — UTC timestamp компонент на идентификатора на декларация.
const formIDTimeFormat = "20060102150405"

// contentTypePDF — MIME-тип на генерираните документи.
const contentTypePDF = "application/pdf"

// newFormID генерира глобално уникален идентификатор на декларация:
// {yyyyMMddHHmmss UTC}_{uuid}. UUID суфиксът гарантира уникалност при
// конкурентни заявки в една и съща секунда.
func newFormID(now time.Time) string {
	return now.UTC().Format(formIDTimeFormat) + "_" + uuid.NewString()
}

// Generate изпълнява пълния поток: валидация → рендериране → качване.
//
// Поток:
//  1. Валидация на записа; при нарушения — изход без по-нататъшни стъпки
//  2. Рендериране върху бланката; при грешка — без качване
//  3. Конструиране на formId и метаданни
//  4. Качване в хранилището (повторните опити са вътре в него)
//  5. Връщане на резултата с подписания URL
func (s *FormService) Generate(ctx context.Context, rec *model.PersonalDataRecord) (*model.GenerationResult, *FormError) {
	// 1. Валидация — събират се всички нарушения
	if violations := validation.Check(rec, time.Now().UTC()); len(violations) > 0 {
		formsGeneratedTotal.WithLabelValues("invalid").Inc()
		return nil, &FormError{
			StatusCode: 400,
			Code:       apierrors.CodeValidationError,
			Message:    validation.Join(violations),
		}
	}

	// 2. Рендериране
	data, err := s.renderer.Render(ctx, rec)
	if err != nil {
		formsGeneratedTotal.WithLabelValues("render_error").Inc()
		s.logger.Error("Грешка при рендериране",
			slog.String("egn", rec.EGN),
			slog.String("error", err.Error()),
		)
		// Конфигурационна или шрифтова грешка, не е коригируема от клиента
		return nil, &FormError{
			StatusCode: 500,
			Code:       apierrors.CodeRenderError,
			Message:    "Грешка при изготвяне на документа",
		}
	}

	// 3. Идентификатор и метаданни
	now := time.Now().UTC()
	formID := newFormID(now)

	meta := model.DocumentMetadata{
		FormID:      formID,
		FullName:    rec.FullName(),
		GeneratedAt: now,
		EGN:         rec.EGN,
		Email:       rec.Email,
		ContentType: contentTypePDF,
	}

	// 4. Качване
	stored, err := s.store.Upload(ctx, data, meta)
	if err != nil {
		formsGeneratedTotal.WithLabelValues("store_error").Inc()
		s.logger.Error("Грешка при качване в хранилището",
			slog.String("form_id", formID),
			slog.String("error", err.Error()),
		)
		return nil, &FormError{
			StatusCode: 500,
			Code:       apierrors.CodeStorageError,
			Message:    "Грешка при съхранение на документа",
		}
	}

	formsGeneratedTotal.WithLabelValues("success").Inc()

	s.logger.Info("Декларацията е генерирана",
		slog.String("form_id", formID),
		slog.String("locator", stored.Locator),
		slog.Time("expires_at", stored.ExpiresAt),
	)

	// 5. Резултат
	return &model.GenerationResult{
		Success:     true,
		FormID:      formID,
		DownloadURL: stored.DownloadURL,
		Locator:     stored.Locator,
		CreatedAt:   now,
		ExpiresAt:   stored.ExpiresAt,
	}, nil
}
