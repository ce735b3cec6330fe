package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bgforms/declaration-service/internal/domain/model"
	"github.com/bgforms/declaration-service/internal/service"
	"github.com/bgforms/declaration-service/internal/storage/blobstore"
)

// --- Фалшиви компоненти за end-to-end тестове на транспорта ---

type stubRenderer struct{}

func (stubRenderer) Render(_ context.Context, _ *model.PersonalDataRecord) ([]byte, error) {
	return []byte("%PDF-1.7 stub"), nil
}

type memStore struct {
	mu      sync.Mutex
	objects map[string]*blobstore.StoredDocument
}

var _ blobstore.Store = (*memStore)(nil)

func newMemStore() *memStore {
	return &memStore{objects: make(map[string]*blobstore.StoredDocument)}
}

func (m *memStore) Upload(_ context.Context, _ []byte, meta model.DocumentMetadata) (*blobstore.StoredDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc := &blobstore.StoredDocument{
		Locator:     blobstore.NewLocator("generated", meta.GeneratedAt),
		DownloadURL: "https://storage.example.com/o?X-Goog-Signature=deadbeef",
		ExpiresAt:   meta.GeneratedAt.Add(24 * time.Hour),
		Metadata:    meta,
	}
	m.objects[meta.FormID] = doc
	return doc, nil
}

func (m *memStore) FindByFormID(_ context.Context, formID string) (*blobstore.StoredDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.objects[formID]
	if !ok {
		return nil, fmt.Errorf("formId %s: %w", formID, blobstore.ErrNotFound)
	}
	return doc, nil
}

func (m *memStore) IssueAccessURL(_ context.Context, locator string, ttl time.Duration) (string, time.Time, error) {
	return "https://storage.example.com/" + locator, time.Now().UTC().Add(ttl), nil
}

// newTestServer сглобява пълния router със stub рендериране и
// in-memory хранилище.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	svc := service.NewFormService(stubRenderer{}, newMemStore(), slog.Default())

	router := chi.NewRouter()
	api := NewAPIHandler(
		NewFormsHandler(svc),
		NewHealthHandler(ReadinessFunc(func() bool { return true })),
	)
	api.Routes(router)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

// postJSON изпраща POST заявка с JSON тяло и връща отговора и тялото му.
func postJSON(t *testing.T, url, body string) (*http.Response, []byte) {
	t.Helper()

	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("четене на отговора: %v", err)
	}
	return resp, data
}

// --- POST /api/form/generate ---

func TestGenerate_EndToEnd(t *testing.T) {
	srv := newTestServer(t)

	body := `{
		"firstName": "Иван",
		"lastName": "Петров",
		"egn": "1234567890",
		"address": {"city": "София", "postalCode": "1000"}
	}`

	resp, data := postJSON(t, srv.URL+"/api/form/generate", body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("статус = %d, очаква се 200; тяло: %s", resp.StatusCode, data)
	}

	var result model.GenerationResult
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatalf("некоректен JSON отговор: %v", err)
	}

	if !result.Success {
		t.Error("success = false, очаква се true")
	}
	if result.FormID == "" {
		t.Error("formId е празен")
	}
	if result.DownloadURL == "" {
		t.Error("downloadUrl е празен")
	}
}

func TestGenerate_ShortEGN_Returns400(t *testing.T) {
	srv := newTestServer(t)

	body := `{
		"firstName": "Иван",
		"lastName": "Петров",
		"egn": "123",
		"address": {"city": "София", "postalCode": "1000"}
	}`

	resp, data := postJSON(t, srv.URL+"/api/form/generate", body)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("статус = %d, очаква се 400; тяло: %s", resp.StatusCode, data)
	}

	text := string(data)
	if !strings.Contains(text, "VALIDATION_ERROR") {
		t.Errorf("тялото %q не съдържа код VALIDATION_ERROR", text)
	}
	if !strings.Contains(text, "10") {
		t.Errorf("съобщението %q не споменава изискваната дължина", text)
	}
}

func TestGenerate_MalformedJSON_Returns400(t *testing.T) {
	srv := newTestServer(t)

	resp, data := postJSON(t, srv.URL+"/api/form/generate", `{"firstName": `)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("статус = %d, очаква се 400; тяло: %s", resp.StatusCode, data)
	}
}

func TestGenerate_UnknownField_Returns400(t *testing.T) {
	srv := newTestServer(t)

	body := `{
		"firstName": "Иван",
		"lastName": "Петров",
		"egn": "1234567890",
		"documentNumber": "AA123456",
		"address": {"city": "София", "postalCode": "1000"}
	}`

	resp, data := postJSON(t, srv.URL+"/api/form/generate", body)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("статус = %d, очаква се 400; тяло: %s", resp.StatusCode, data)
	}
}

// --- GET /api/form/{formId} ---

func TestRetrieve_RoundTrip(t *testing.T) {
	srv := newTestServer(t)

	body := `{
		"firstName": "Иван",
		"lastName": "Петров",
		"egn": "1234567890",
		"address": {"city": "София", "postalCode": "1000"}
	}`

	_, data := postJSON(t, srv.URL+"/api/form/generate", body)
	var generated model.GenerationResult
	if err := json.Unmarshal(data, &generated); err != nil {
		t.Fatalf("некоректен JSON отговор: %v", err)
	}

	resp, err := http.Get(srv.URL + "/api/form/" + generated.FormID)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("статус = %d, очаква се 200", resp.StatusCode)
	}

	var retrieved model.GenerationResult
	if err := json.NewDecoder(resp.Body).Decode(&retrieved); err != nil {
		t.Fatalf("некоректен JSON отговор: %v", err)
	}
	if retrieved.FormID != generated.FormID {
		t.Errorf("formId = %s, очаква се %s", retrieved.FormID, generated.FormID)
	}
}

func TestRetrieve_NotFound_Returns404(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/form/non-existent-id")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("статус = %d, очаква се 404", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("четене на отговора: %v", err)
	}
	if !strings.Contains(string(data), "NOT_FOUND") {
		t.Errorf("тялото %q не съдържа код NOT_FOUND", data)
	}
}

// --- Health endpoints ---

func TestHealth(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/health")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("статус = %d, очаква се 200", resp.StatusCode)
	}

	var health struct {
		Status    string    `json:"status"`
		Timestamp time.Time `json:"timestamp"`
		Version   string    `json:"version"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		t.Fatalf("некоректен JSON отговор: %v", err)
	}

	if health.Status != "ok" {
		t.Errorf("status = %q, очаква се \"ok\"", health.Status)
	}
	if health.Timestamp.IsZero() {
		t.Error("timestamp липсва")
	}
	if health.Version == "" {
		t.Error("version липсва")
	}
}

func TestHealthProbes(t *testing.T) {
	srv := newTestServer(t)

	for _, path := range []string{"/health/live", "/health/ready"} {
		resp, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("GET %s: статус = %d, очаква се 200", path, resp.StatusCode)
		}
	}
}

func TestReady_Degraded(t *testing.T) {
	svc := service.NewFormService(stubRenderer{}, newMemStore(), slog.Default())

	router := chi.NewRouter()
	api := NewAPIHandler(
		NewFormsHandler(svc),
		NewHealthHandler(ReadinessFunc(func() bool { return false })),
	)
	api.Routes(router)

	srv := httptest.NewServer(router)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health/ready")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("статус = %d, очаква се 503", resp.StatusCode)
	}
}
