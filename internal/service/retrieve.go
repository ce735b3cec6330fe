// retrieve.go — извличане на по-рано генерирана декларация по formId.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	apierrors "github.com/bgforms/declaration-service/internal/api/errors"
	"github.com/bgforms/declaration-service/internal/domain/model"
	"github.com/bgforms/declaration-service/internal/storage/blobstore"
)

// Retrieve намира съхранена декларация по formId и издава нов подписан
// URL за изтегляне. CreatedAt в резултата е моментът на генериране от
// метаданните, не моментът на извличането.
func (s *FormService) Retrieve(ctx context.Context, formID string) (*model.GenerationResult, *FormError) {
	stored, err := s.store.FindByFormID(ctx, formID)
	if err != nil {
		if errors.Is(err, blobstore.ErrNotFound) {
			formsRetrievedTotal.WithLabelValues("not_found").Inc()
			return nil, &FormError{
				StatusCode: 404,
				Code:       apierrors.CodeNotFound,
				Message:    fmt.Sprintf("Декларация %s не е намерена", formID),
			}
		}

		formsRetrievedTotal.WithLabelValues("store_error").Inc()
		s.logger.Error("Грешка при търсене в хранилището",
			slog.String("form_id", formID),
			slog.String("error", err.Error()),
		)
		return nil, &FormError{
			StatusCode: 500,
			Code:       apierrors.CodeStorageError,
			Message:    "Грешка при достъп до хранилището",
		}
	}

	formsRetrievedTotal.WithLabelValues("success").Inc()

	return &model.GenerationResult{
		Success:     true,
		FormID:      stored.Metadata.FormID,
		DownloadURL: stored.DownloadURL,
		Locator:     stored.Locator,
		CreatedAt:   stored.Metadata.GeneratedAt,
		ExpiresAt:   stored.ExpiresAt,
	}, nil
}
