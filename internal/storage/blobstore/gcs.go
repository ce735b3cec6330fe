// gcs.go — продукционна имплементация на Store върху Google Cloud Storage.
package blobstore

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"cloud.google.com/go/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/bgforms/declaration-service/internal/config"
	"github.com/bgforms/declaration-service/internal/domain/model"
)

// Ключове на sidecar метаданните върху обекта.
const (
	metaKeyFormID      = "form_id"
	metaKeyFullName    = "full_name"
	metaKeyGeneratedAt = "generated_at"
	metaKeyEGN         = "egn"
	metaKeyEmail       = "email"
)

// Prometheus метрики на хранилището.
var (
	uploadDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "ds_blobstore_upload_duration_seconds",
		Help:    "Продължителност на качването в хранилището (включително повторните опити)",
		Buckets: prometheus.DefBuckets,
	})

	lookupObjectsScanned = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "ds_blobstore_lookup_objects_scanned",
		Help:    "Брой прегледани обекти при търсене по formId (линейно сканиране)",
		Buckets: []float64{1, 10, 50, 100, 500, 1000, 5000},
	})
)

// Проверка на ниво компилация
var _ Store = (*GCS)(nil)

// GCS — хранилище за документи върху Google Cloud Storage.
type GCS struct {
	client *storage.Client
	bucket *storage.BucketHandle
	prefix string
	urlTTL time.Duration
	policy RetryPolicy
	logger *slog.Logger
}

// NewGCS създава хранилище върху конфигурирания bucket.
// Автентикация: credentials файл или identity на средата (ADC) според
// конфигурацията.
func NewGCS(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*GCS, error) {
	var opts []option.ClientOption
	if !cfg.IdentityAuth {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("създаване на GCS клиент: %w", err)
	}

	// Вътрешните повторни опити на клиента се изключват —
	// политиката за retry е на това ниво (withRetry).
	bucket := client.Bucket(cfg.Bucket).Retryer(storage.WithPolicy(storage.RetryNever))

	return &GCS{
		client: client,
		bucket: bucket,
		prefix: cfg.ObjectPrefix,
		urlTTL: cfg.URLTTL,
		policy: RetryPolicy{
			MaxRetries: cfg.RetryCount,
			BaseDelay:  cfg.RetryBaseDelay,
		},
		logger: logger.With(slog.String("component", "blobstore")),
	}, nil
}

// Close освобождава GCS клиента.
func (g *GCS) Close() error {
	return g.client.Close()
}

// Upload качва документа под генерирано име със sidecar метаданни
// и издава подписан URL за изтегляне.
func (g *GCS) Upload(ctx context.Context, data []byte, meta model.DocumentMetadata) (*StoredDocument, error) {
	start := time.Now()
	locator := NewLocator(g.prefix, meta.GeneratedAt)

	err := withRetry(ctx, g.policy, g.logger, "upload", func() error {
		w := g.bucket.Object(locator).NewWriter(ctx)
		w.ContentType = meta.ContentType
		w.Metadata = metadataToObject(meta)

		if _, wErr := w.Write(data); wErr != nil {
			_ = w.Close()
			return classify(fmt.Errorf("запис на обект %s: %w", locator, wErr))
		}
		if cErr := w.Close(); cErr != nil {
			return classify(fmt.Errorf("финализиране на обект %s: %w", locator, cErr))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("качване в хранилището: %w", err)
	}

	url, expiresAt, err := g.IssueAccessURL(ctx, locator, g.urlTTL)
	if err != nil {
		return nil, err
	}

	uploadDuration.Observe(time.Since(start).Seconds())

	g.logger.Info("Документът е качен",
		slog.String("locator", locator),
		slog.String("form_id", meta.FormID),
		slog.Int("size", len(data)),
	)

	return &StoredDocument{
		Locator:     locator,
		DownloadURL: url,
		ExpiresAt:   expiresAt,
		Metadata:    meta,
	}, nil
}

// objectIterator — подмножеството на storage.ObjectIterator, нужно
// на сканирането.
type objectIterator interface {
	Next() (*storage.ObjectAttrs, error)
}

// scanForFormID обхожда обектите и връща първия с търсения formId в
// метаданните. Броят прегледани обекти се връща и при грешка — цената
// на неуспешното сканиране също се отчита.
func scanForFormID(it objectIterator, formID string) (*storage.ObjectAttrs, int, error) {
	scanned := 0
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			return nil, scanned, nil
		}
		if err != nil {
			return nil, scanned, err
		}
		scanned++
		if attrs.Metadata[metaKeyFormID] == formID {
			return attrs, scanned, nil
		}
	}
}

// FindByFormID намира документ по formId чрез линейно сканиране на
// метаданните на обектите под префикса. Без вторичен индекс —
// приемливо само при малък брой обекти.
func (g *GCS) FindByFormID(ctx context.Context, formID string) (*StoredDocument, error) {
	var found *storage.ObjectAttrs
	scanned := 0

	err := withRetry(ctx, g.policy, g.logger, "find", func() error {
		it := g.bucket.Objects(ctx, &storage.Query{Prefix: g.prefix + "/"})

		var sErr error
		found, scanned, sErr = scanForFormID(it, formID)
		if sErr != nil {
			return classify(fmt.Errorf("листване под префикс %s: %w", g.prefix, sErr))
		}
		return nil
	})

	lookupObjectsScanned.Observe(float64(scanned))

	if err != nil {
		return nil, fmt.Errorf("търсене в хранилището: %w", err)
	}

	if found == nil {
		return nil, fmt.Errorf("formId %s: %w", formID, ErrNotFound)
	}

	meta, err := objectToMetadata(found)
	if err != nil {
		return nil, fmt.Errorf("четене на метаданни на %s: %w", found.Name, err)
	}

	url, expiresAt, err := g.IssueAccessURL(ctx, found.Name, g.urlTTL)
	if err != nil {
		return nil, err
	}

	return &StoredDocument{
		Locator:     found.Name,
		DownloadURL: url,
		ExpiresAt:   expiresAt,
		Metadata:    meta,
	}, nil
}

// IssueAccessURL издава V4 подписан URL само за четене за съществуващ локатор.
func (g *GCS) IssueAccessURL(_ context.Context, locator string, ttl time.Duration) (string, time.Time, error) {
	expiresAt := time.Now().UTC().Add(ttl)

	url, err := g.bucket.SignedURL(locator, &storage.SignedURLOptions{
		Scheme:  storage.SigningSchemeV4,
		Method:  http.MethodGet,
		Expires: expiresAt,
	})
	if err != nil {
		return "", time.Time{}, fmt.Errorf("издаване на подписан URL за %s: %w", locator, err)
	}

	return url, expiresAt, nil
}

// metadataToObject преобразува доменните метаданни в sidecar метаданни на обекта.
func metadataToObject(meta model.DocumentMetadata) map[string]string {
	return map[string]string{
		metaKeyFormID:      meta.FormID,
		metaKeyFullName:    meta.FullName,
		metaKeyGeneratedAt: meta.GeneratedAt.UTC().Format(time.RFC3339),
		metaKeyEGN:         meta.EGN,
		metaKeyEmail:       meta.Email,
	}
}

// objectToMetadata чете доменните метаданни от атрибутите на обекта.
func objectToMetadata(attrs *storage.ObjectAttrs) (model.DocumentMetadata, error) {
	generatedAt, err := time.Parse(time.RFC3339, attrs.Metadata[metaKeyGeneratedAt])
	if err != nil {
		return model.DocumentMetadata{}, fmt.Errorf("некоректен generated_at %q: %w", attrs.Metadata[metaKeyGeneratedAt], err)
	}

	return model.DocumentMetadata{
		FormID:      attrs.Metadata[metaKeyFormID],
		FullName:    attrs.Metadata[metaKeyFullName],
		GeneratedAt: generatedAt.UTC(),
		EGN:         attrs.Metadata[metaKeyEGN],
		Email:       attrs.Metadata[metaKeyEmail],
		ContentType: attrs.ContentType,
	}, nil
}
