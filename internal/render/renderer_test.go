package render

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/bgforms/declaration-service/internal/config"
	"github.com/bgforms/declaration-service/internal/domain/model"
)

// testFontPath — TrueType шрифт с кирилски глифове за тестовете.
const testFontPath = "testdata/DejaVuSans.ttf"

// fixtureTemplate изгражда минимална едностранична A4 бланка.
// Офсетите в xref таблицата се изчисляват при построяването, за да е
// документът коректен без външен файл.
func fixtureTemplate() []byte {
	var b bytes.Buffer
	b.WriteString("%PDF-1.7\n")

	var offsets []int
	addObj := func(body string) {
		offsets = append(offsets, b.Len())
		b.WriteString(body)
	}

	addObj("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")
	addObj("2 0 obj\n<< /Type /Pages /Kids [3 0 R] /Count 1 >>\nendobj\n")
	addObj("3 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 595 842] /Resources << >> /Contents 4 0 R >>\nendobj\n")
	addObj("4 0 obj\n<< /Length 0 >>\nstream\n\nendstream\nendobj\n")

	xref := b.Len()
	fmt.Fprintf(&b, "xref\n0 %d\n", len(offsets)+1)
	b.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&b, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&b, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n",
		len(offsets)+1, xref)

	return b.Bytes()
}

// newTestRenderer записва бланката във временна директория и
// конструира Renderer с тестовия шрифт.
func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()

	tmplPath := filepath.Join(t.TempDir(), "template.pdf")
	if err := os.WriteFile(tmplPath, fixtureTemplate(), 0o600); err != nil {
		t.Fatalf("запис на бланката: %v", err)
	}

	cfg := &config.Config{
		TemplatePath: tmplPath,
		FontPath:     testFontPath,
	}

	r, err := New(cfg, slog.Default())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return r
}

func fullRecord() *model.PersonalDataRecord {
	dob := time.Date(1985, 3, 14, 0, 0, 0, 0, time.UTC)
	return &model.PersonalDataRecord{
		FirstName:   "Иван",
		MiddleName:  "Георгиев",
		LastName:    "Петров",
		EGN:         "1234567890",
		DateOfBirth: &dob,
		Phone:       "+359888123456",
		Email:       "ivan@example.com",
		Address: model.Address{
			City:       "София",
			PostalCode: "1000",
			Community:  "Младост",
			Street:     "Иван Вазов",
			Number:     "5",
		},
	}
}

// --- Конструиране ---

func TestNew_StartupRenderSucceeds(t *testing.T) {
	r := newTestRenderer(t)

	if !r.Ready() {
		t.Error("Ready() = false след успешно конструиране")
	}
}

func TestNew_MissingFont(t *testing.T) {
	tmplPath := filepath.Join(t.TempDir(), "template.pdf")
	if err := os.WriteFile(tmplPath, fixtureTemplate(), 0o600); err != nil {
		t.Fatalf("запис на бланката: %v", err)
	}

	cfg := &config.Config{
		TemplatePath: tmplPath,
		FontPath:     filepath.Join(t.TempDir(), "no-such-font.ttf"),
	}

	if _, err := New(cfg, slog.Default()); err == nil {
		t.Error("New прие несъществуващ шрифт")
	}
}

func TestNew_CorruptTemplate(t *testing.T) {
	tmplPath := filepath.Join(t.TempDir(), "template.pdf")
	if err := os.WriteFile(tmplPath, []byte("това не е PDF"), 0o600); err != nil {
		t.Fatalf("запис на бланката: %v", err)
	}

	cfg := &config.Config{
		TemplatePath: tmplPath,
		FontPath:     testFontPath,
	}

	if _, err := New(cfg, slog.Default()); err == nil {
		t.Error("New прие нечетима бланка — пробното рендериране не я отхвърли")
	}
}

// --- Рендериране ---

func TestRender_AllFields(t *testing.T) {
	r := newTestRenderer(t)

	out, err := r.Render(context.Background(), fullRecord())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	if !bytes.HasPrefix(out, []byte("%PDF-")) {
		t.Errorf("резултатът не започва с PDF заглавие: %q", out[:min(len(out), 16)])
	}
	if len(out) <= len(fixtureTemplate()) {
		t.Errorf("резултатът (%d байта) не е по-голям от бланката (%d байта)",
			len(out), len(fixtureTemplate()))
	}
}

func TestRender_RequiredFieldsOnly(t *testing.T) {
	r := newTestRenderer(t)

	rec := &model.PersonalDataRecord{
		FirstName: "Иван",
		LastName:  "Петров",
		EGN:       "1234567890",
		Address:   model.Address{City: "София", PostalCode: "1000"},
	}

	if _, err := r.Render(context.Background(), rec); err != nil {
		t.Fatalf("Render само със задължителните полета: %v", err)
	}
}

func TestRender_CancelledContext(t *testing.T) {
	r := newTestRenderer(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := r.Render(ctx, fullRecord()); err == nil {
		t.Error("Render върна резултат при отменен контекст")
	}
}

// --- Детерминираност ---

// Недетерминираните части на изхода: датите в Info речника и файловият
// ID (md5 върху момента на запис). Всичко останало е побайтово стабилно.
var (
	pdfDatePattern = regexp.MustCompile(`D:\d{14}[0-9+\-'Z]*`)
	pdfIDPattern   = regexp.MustCompile(`<[0-9A-Fa-f]{32}>`)
)

func normalized(b []byte) []byte {
	b = pdfDatePattern.ReplaceAll(b, []byte("D:00000000000000"))
	return pdfIDPattern.ReplaceAll(b, []byte("<0>"))
}

func TestRender_DeterministicModuloMetadata(t *testing.T) {
	r := newTestRenderer(t)
	rec := fullRecord()

	first, err := r.Render(context.Background(), rec)
	if err != nil {
		t.Fatalf("първо Render: %v", err)
	}
	second, err := r.Render(context.Background(), rec)
	if err != nil {
		t.Fatalf("второ Render: %v", err)
	}

	if !bytes.Equal(normalized(first), normalized(second)) {
		t.Errorf("два рендера на един запис се различават извън датите и файловия ID (%d и %d байта)",
			len(first), len(second))
	}
}
