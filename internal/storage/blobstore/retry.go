// retry.go — повторни опити с експоненциално изчакване за операциите
// към хранилището. Повтарят се само преходните грешки; трайните
// (некоректни метаданни, липсващ обект) се връщат веднага.
package blobstore

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"cloud.google.com/go/storage"
	"github.com/cenkalti/backoff/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"google.golang.org/api/googleapi"
)

// retriesTotal — брой повторни опити към хранилището по операция.
var retriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "ds_blobstore_retries_total",
	Help: "Брой повторни опити към хранилището за документи",
}, []string{"operation"})

// RetryPolicy — политика за повторни опити.
type RetryPolicy struct {
	// MaxRetries — максимален брой повторни опити след първия
	MaxRetries int
	// BaseDelay — изчакване преди първия повторен опит,
	// удвоява се при всеки следващ
	BaseDelay time.Duration
}

// maxRetryInterval — абсолютен таван на изчакването между опитите.
const maxRetryInterval = time.Hour

// newBackOff конструира експоненциалното изчакване за политиката.
func newBackOff(policy RetryPolicy) *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = policy.BaseDelay
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxElapsedTime = 0

	// Таван, който не отрязва удвояването при обичайния брой опити.
	// При голям брой опити или голямо базово закъснение отместването
	// би препълнило int64 — тогава се ограничава до maxRetryInterval.
	b.MaxInterval = maxRetryInterval
	if shift := uint(policy.MaxRetries + 1); shift < 63 && policy.BaseDelay <= maxRetryInterval>>shift {
		b.MaxInterval = policy.BaseDelay << shift
	}

	return b
}

// withRetry изпълнява fn с повторни опити по зададената политика.
// Спира незабавно при отмяна на контекста — не се изчаква в backoff
// прозорец след cancellation. Грешки, опаковани с backoff.Permanent,
// не се повтарят.
func withRetry(ctx context.Context, policy RetryPolicy, logger *slog.Logger, operation string, fn func() error) error {
	bo := backoff.WithContext(backoff.WithMaxRetries(newBackOff(policy), uint64(policy.MaxRetries)), ctx)

	notify := func(err error, next time.Duration) {
		retriesTotal.WithLabelValues(operation).Inc()
		logger.Warn("Преходна грешка на хранилището, повторен опит",
			slog.String("operation", operation),
			slog.Duration("retry_in", next),
			slog.String("error", err.Error()),
		)
	}

	return backoff.RetryNotify(fn, bo, notify)
}

// classify опакова грешката като permanent, когато повторен опит няма
// смисъл: липсващ обект или HTTP 4xx от GCS (освен 408 и 429).
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, storage.ErrObjectNotExist) || errors.Is(err, storage.ErrBucketNotExist) {
		return backoff.Permanent(err)
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		if gerr.Code >= 400 && gerr.Code < 500 &&
			gerr.Code != http.StatusRequestTimeout && gerr.Code != http.StatusTooManyRequests {
			return backoff.Permanent(err)
		}
	}
	return err
}
