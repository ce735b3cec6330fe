// Пакет render — нанасяне на личните данни върху PDF бланката.
// Рендерира се чрез pdfcpu text stamps: всяко поле е един ред на
// фиксирана позиция върху първата страница на бланката, с един
// TrueType шрифт с кирилски глифове, инсталиран при стартиране.
// Резултатът е идемпотентен по съдържание; единствено датите и ID в
// producer метаданните на PDF са недетерминирани.
package render

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	pdfmodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bgforms/declaration-service/internal/config"
	"github.com/bgforms/declaration-service/internal/domain/model"
)

// renderDuration — продължителност на рендериране на декларация.
var renderDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "ds_render_duration_seconds",
	Help:    "Продължителност на рендериране на PDF декларация",
	Buckets: prometheus.DefBuckets,
})

// probeText — кирилска проба, рендерира се веднъж при конструиране.
// Проверява, че бланката е четим PDF и шрифтът е инсталиран и използваем,
// вместо грешката да се открие при първата заявка.
const probeText = "АБВГДЕЖЗабвгдежз"

// Renderer — рендерира декларации върху заредената бланка.
type Renderer struct {
	template []byte
	fontName string
	conf     *pdfmodel.Configuration
	logger   *slog.Logger
}

// New зарежда бланката, инсталира шрифта и изпълнява пробно рендериране.
// Нечетима бланка или негоден шрифт са конфигурационна грешка и се
// отхвърлят тук, не при обслужване на заявка.
func New(cfg *config.Config, logger *slog.Logger) (*Renderer, error) {
	template, err := os.ReadFile(cfg.TemplatePath)
	if err != nil {
		return nil, fmt.Errorf("четене на бланката %s: %w", cfg.TemplatePath, err)
	}

	// InstallFonts прескача недостъпните файлове без грешка — липсващ
	// шрифт се отхвърля изрично тук.
	if _, err := os.Stat(cfg.FontPath); err != nil {
		return nil, fmt.Errorf("шрифтът %s е недостъпен: %w", cfg.FontPath, err)
	}

	// NewDefaultConfiguration инициализира конфигурационната директория
	// на pdfcpu, включително font.UserFontDir. Трябва да предхожда
	// InstallFonts — иначе шрифтът се инсталира в празен път и се губи.
	conf := pdfmodel.NewDefaultConfiguration()

	// Класически xref без object streams: Info речникът остава в
	// явен вид и изходът е побайтово стабилен с точност до датите
	// и файловия ID.
	conf.WriteObjectStream = false
	conf.WriteXRefStream = false

	// Вградените стандартни PDF шрифтове нямат кирилски глифови таблици —
	// изисква се TrueType шрифт, инсталиран в pdfcpu.
	if err := api.InstallFonts([]string{cfg.FontPath}); err != nil {
		return nil, fmt.Errorf("инсталиране на шрифт %s: %w", cfg.FontPath, err)
	}

	fontName := strings.TrimSuffix(filepath.Base(cfg.FontPath), filepath.Ext(cfg.FontPath))

	r := &Renderer{
		template: template,
		fontName: fontName,
		conf:     conf,
		logger:   logger.With(slog.String("component", "renderer")),
	}

	// Пробно рендериране с кирилски текст
	if err := r.apply([]stamp{{Text: probeText, Pos: posFirstName}}); err != nil {
		return nil, fmt.Errorf("пробно рендериране върху бланката: %w", err)
	}

	r.logger.Info("Рендерирането е готово",
		slog.String("template", cfg.TemplatePath),
		slog.String("font", fontName),
	)

	return r, nil
}

// Ready отразява готовността за обслужване: бланката е заредена.
func (r *Renderer) Ready() bool {
	return len(r.template) > 0
}

// Render нанася попълнените полета на записа върху бланката и връща
// байтовете на готовия PDF. Без дисков или мрежов вход-изход.
func (r *Renderer) Render(ctx context.Context, rec *model.PersonalDataRecord) ([]byte, error) {
	// Проверка за отмяна преди блокиращата CPU операция
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()

	out, err := r.render(stamps(rec))
	if err != nil {
		return nil, fmt.Errorf("рендериране на декларация: %w", err)
	}

	renderDuration.Observe(time.Since(start).Seconds())

	// Проверка за отмяна след рендерирането — резултатът на отменена
	// заявка не се връща нагоре
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return out, nil
}

// render нанася печатите върху копие на бланката.
func (r *Renderer) render(fields []stamp) ([]byte, error) {
	watermarks := make([]*pdfmodel.Watermark, 0, len(fields))
	for _, f := range fields {
		wm, err := api.TextWatermark(f.Text, stampDesc(r.fontName, f.Pos), true, false, types.POINTS)
		if err != nil {
			return nil, fmt.Errorf("печат на позиция (%g, %g): %w", f.Pos.X, f.Pos.Y, err)
		}
		watermarks = append(watermarks, wm)
	}

	// Копие на конфигурацията — pdfcpu записва командата в нея
	conf := *r.conf

	var buf bytes.Buffer
	err := api.AddWatermarksSliceMap(
		bytes.NewReader(r.template),
		&buf,
		map[int][]*pdfmodel.Watermark{1: watermarks},
		&conf,
	)
	if err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// apply е рендериране без измерване — използва се само от пробата в New.
func (r *Renderer) apply(fields []stamp) error {
	_, err := r.render(fields)
	return err
}

// stampDesc изгражда pdfcpu описанието на текстов печат: шрифт, размер,
// позиция от долния ляв ъгъл с отместване в пунктове, черен цвят,
// без ротация и прозрачност.
func stampDesc(fontName string, pos fieldPosition) string {
	return fmt.Sprintf(
		"fontname:%s, points:%d, scalefactor:1 abs, position:bl, offset:%g %g, fillcolor:#000000, rotation:0, opacity:1",
		fontName, pos.Points, pos.X, pos.Y,
	)
}
