// Пакет config — зареждане и валидация на конфигурацията на
// Declaration Service от променливи на средата.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Версия на приложението, задава се при билд чрез -ldflags.
var Version = "dev"

// Config съдържа всички конфигурационни параметри на Declaration Service.
type Config struct {
	// Порт на HTTP сървъра
	Port int
	// Име на GCS bucket за съхранение на генерираните документи
	Bucket string
	// Префикс на обектите в bucket-а (директория за генерираните PDF)
	ObjectPrefix string
	// Път към JSON файл с credentials на service account (опционално)
	CredentialsFile string
	// Автентикация чрез identity на средата (ADC) вместо credentials файл
	IdentityAuth bool
	// Срок на валидност на подписаните URL за изтегляне
	URLTTL time.Duration
	// Път към PDF бланката на декларацията
	TemplatePath string
	// Път към TrueType шрифт с кирилски глифове за печат върху бланката
	FontPath string
	// Максимален брой повторни опити при преходни грешки на хранилището
	RetryCount int
	// Базово закъснение между повторните опити (удвоява се при всеки опит)
	RetryBaseDelay time.Duration
	// Ниво на логиране (debug, info, warn, error)
	LogLevel slog.Level
	// Формат на логовете (json, text)
	LogFormat string
	// Таймаут на graceful shutdown на HTTP сървъра
	ShutdownTimeout time.Duration
	// Таймаути на HTTP сървъра
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
}

// Load зарежда конфигурацията от променливи на средата, валидира
// задължителните полета и връща Config или грешка.
func Load() (*Config, error) {
	cfg := &Config{}
	var err error

	// DS_PORT — порт на HTTP сървъра (по подразбиране 8080)
	cfg.Port, err = getEnvInt("DS_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("DS_PORT: %w", err)
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("DS_PORT: стойността %d е извън допустимия диапазон 1-65535", cfg.Port)
	}

	// DS_GCS_BUCKET — задължителен
	cfg.Bucket, err = getEnvRequired("DS_GCS_BUCKET")
	if err != nil {
		return nil, err
	}

	// DS_GCS_PREFIX — префикс на обектите (по подразбиране "generated")
	cfg.ObjectPrefix = strings.Trim(getEnvDefault("DS_GCS_PREFIX", "generated"), "/")
	if cfg.ObjectPrefix == "" {
		return nil, fmt.Errorf("DS_GCS_PREFIX: празен префикс не е допустим")
	}

	// DS_GCS_IDENTITY_AUTH — автентикация чрез ADC (по подразбиране false)
	cfg.IdentityAuth, err = getEnvBool("DS_GCS_IDENTITY_AUTH", false)
	if err != nil {
		return nil, fmt.Errorf("DS_GCS_IDENTITY_AUTH: %w", err)
	}

	// DS_GCS_CREDENTIALS_FILE — път към credentials файл.
	// Задължителен, когато identity автентикацията е изключена.
	cfg.CredentialsFile = getEnvDefault("DS_GCS_CREDENTIALS_FILE", "")
	if cfg.IdentityAuth && cfg.CredentialsFile != "" {
		return nil, fmt.Errorf("DS_GCS_CREDENTIALS_FILE: не може да се комбинира с DS_GCS_IDENTITY_AUTH=true")
	}
	if !cfg.IdentityAuth && cfg.CredentialsFile == "" {
		return nil, fmt.Errorf("DS_GCS_CREDENTIALS_FILE: задължителен при DS_GCS_IDENTITY_AUTH=false")
	}

	// DS_URL_TTL — срок на валидност на URL за изтегляне (по подразбиране 24h)
	cfg.URLTTL, err = getEnvDuration("DS_URL_TTL", 24*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("DS_URL_TTL: %w", err)
	}
	if cfg.URLTTL <= 0 {
		return nil, fmt.Errorf("DS_URL_TTL: стойността трябва да е положителна")
	}

	// DS_TEMPLATE_PATH — задължителен
	cfg.TemplatePath, err = getEnvRequired("DS_TEMPLATE_PATH")
	if err != nil {
		return nil, err
	}

	// DS_FONT_PATH — задължителен
	cfg.FontPath, err = getEnvRequired("DS_FONT_PATH")
	if err != nil {
		return nil, err
	}

	// DS_RETRY_COUNT — брой повторни опити (по подразбиране 3)
	cfg.RetryCount, err = getEnvInt("DS_RETRY_COUNT", 3)
	if err != nil {
		return nil, fmt.Errorf("DS_RETRY_COUNT: %w", err)
	}
	if cfg.RetryCount < 0 {
		return nil, fmt.Errorf("DS_RETRY_COUNT: стойността не може да е отрицателна")
	}

	// DS_RETRY_BASE_DELAY — базово закъснение (по подразбиране 1s)
	cfg.RetryBaseDelay, err = getEnvDuration("DS_RETRY_BASE_DELAY", time.Second)
	if err != nil {
		return nil, fmt.Errorf("DS_RETRY_BASE_DELAY: %w", err)
	}
	if cfg.RetryBaseDelay <= 0 {
		return nil, fmt.Errorf("DS_RETRY_BASE_DELAY: стойността трябва да е положителна")
	}

	// DS_LOG_LEVEL — ниво на логиране (по подразбиране info)
	cfg.LogLevel, err = parseLogLevel(getEnvDefault("DS_LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("DS_LOG_LEVEL: %w", err)
	}

	// DS_LOG_FORMAT — формат на логовете (по подразбиране json)
	cfg.LogFormat = getEnvDefault("DS_LOG_FORMAT", "json")
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("DS_LOG_FORMAT: недопустима стойност %q, допустими: json, text", cfg.LogFormat)
	}

	// DS_SHUTDOWN_TIMEOUT — таймаут на graceful shutdown (по подразбиране 5s)
	cfg.ShutdownTimeout, err = getEnvDuration("DS_SHUTDOWN_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("DS_SHUTDOWN_TIMEOUT: %w", err)
	}

	// DS_HTTP_READ_TIMEOUT / DS_HTTP_WRITE_TIMEOUT / DS_HTTP_IDLE_TIMEOUT
	cfg.HTTPReadTimeout, err = getEnvDuration("DS_HTTP_READ_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("DS_HTTP_READ_TIMEOUT: %w", err)
	}
	cfg.HTTPWriteTimeout, err = getEnvDuration("DS_HTTP_WRITE_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, fmt.Errorf("DS_HTTP_WRITE_TIMEOUT: %w", err)
	}
	cfg.HTTPIdleTimeout, err = getEnvDuration("DS_HTTP_IDLE_TIMEOUT", 120*time.Second)
	if err != nil {
		return nil, fmt.Errorf("DS_HTTP_IDLE_TIMEOUT: %w", err)
	}

	return cfg, nil
}

// SetupLogger настройва глобалния slog логер според конфигурацията.
func SetupLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// --- Помощни функции ---

// getEnvRequired връща стойността на променливата или грешка, ако липсва.
func getEnvRequired(key string) (string, error) {
	val := os.Getenv(key)
	if val == "" {
		return "", fmt.Errorf("%s: задължителната променлива на средата не е зададена", key)
	}
	return val, nil
}

// getEnvDefault връща стойността на променливата или стойността по подразбиране.
func getEnvDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// getEnvInt връща целочислена стойност или стойността по подразбиране.
func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("некоректно цяло число: %q", val)
	}
	return n, nil
}

// getEnvBool връща булева стойност или стойността по подразбиране.
func getEnvBool(key string, defaultVal bool) (bool, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("некоректна булева стойност: %q", val)
	}
	return b, nil
}

// getEnvDuration връща time.Duration или стойността по подразбиране.
func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("некоректна продължителност: %q (използвайте Go формат: 30s, 1h, 24h)", val)
	}
	return d, nil
}

// parseLogLevel преобразува низ с ниво на логиране в slog.Level.
func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("недопустимо ниво %q, допустими: debug, info, warn, error", level)
	}
}
