package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	DebugMode     bool   `env:"DEBUG_MODE"`      // Режим дебага: development-логгер, подробные логи gin
	UseStubClient bool   `env:"USE_STUB_CLIENT"` // Не ходить в сеть, отвечать заглушкой
	ChatGreeting  string `env:"CHAT_GREETING"`   // Первая реплика ассистента после загрузки картинки в чат

	Server     ServerConfig
	OpenRouter OpenRouterConfig
	Sessions   SessionsConfig
}

// ServerConfig — параметры HTTP-интерфейса.
type ServerConfig struct {
	BindAddr          string        `env:"SERVER_BIND_ADDR"`           // Адрес слушателя, напр. 127.0.0.1:8501
	ReadHeaderTimeout time.Duration `env:"SERVER_READ_HEADER_TIMEOUT"` // Таймаут чтения заголовков
	WriteTimeout      time.Duration `env:"SERVER_WRITE_TIMEOUT"`       // Должен перекрывать самый долгий ответ модели
	MaxUploadBytes    int64         `env:"MAX_UPLOAD_BYTES"`           // Максимальный размер загружаемой картинки
}

// OpenRouterConfig — параметры удалённой модели. Ключ API сюда не входит:
// его вводит пользователь, и он живёт только в сессии.
type OpenRouterConfig struct {
	BaseURL        string        `env:"OPENROUTER_BASE_URL"`
	Model          string        `env:"OPENROUTER_MODEL"`
	SiteURL        string        `env:"OPENROUTER_SITE_URL"`        // HTTP-Referer для рейтинга openrouter.ai
	SiteName       string        `env:"OPENROUTER_SITE_NAME"`       // X-Title
	RequestTimeout time.Duration `env:"OPENROUTER_REQUEST_TIMEOUT"` // 0 — без собственного таймаута, как у транспорта по умолчанию
}

// SessionsConfig — браузерные сессии.
type SessionsConfig struct {
	TTL           time.Duration `env:"SESSION_TTL"`            // Сессия без обращений дольше TTL удаляется
	SweepInterval time.Duration `env:"SESSION_SWEEP_INTERVAL"` // Периодичность очистки
}

// Defaults возвращает конфигурацию с предустановленными значениями по умолчанию.
// Эти значения перекрываются .env, переменными окружения и флагами CLI.
func Defaults() *Config {
	return &Config{
		DebugMode:     false,
		UseStubClient: false,
		ChatGreeting:  "Hello! Upload an image and ask me anything about it.",
		Server: ServerConfig{
			BindAddr:          "127.0.0.1:8501",
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      5 * time.Minute,
			MaxUploadBytes:    10 * 1024 * 1024,
		},
		OpenRouter: OpenRouterConfig{
			BaseURL:  "https://openrouter.ai/api/v1",
			Model:    "meta-llama/llama-3.2-11b-vision-instruct:free",
			SiteName: "OCR Text Vision Pro",
		},
		Sessions: SessionsConfig{
			TTL:           2 * time.Hour,
			SweepInterval: 5 * time.Minute,
		},
	}
}

// FromEnv собирает конфигурацию из дефолтов, .env и окружения, без флагов.
func FromEnv() (*Config, error) {
	_ = godotenv.Load()

	cfg := Defaults()
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Load — FromEnv плюс флаги командной строки сервера.
func Load(args []string) (*Config, error) {
	cfg, err := FromEnv()
	if err != nil {
		return nil, err
	}

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.BoolVar(&cfg.DebugMode, "debug-mode", cfg.DebugMode, "включить режим дебага")
	fs.BoolVar(&cfg.UseStubClient, "stub", cfg.UseStubClient, "отвечать заглушкой вместо запросов к модели")
	fs.StringVar(&cfg.ChatGreeting, "chat-greeting", cfg.ChatGreeting, "приветствие ассистента в чате")
	fs.StringVar(&cfg.Server.BindAddr, "bind-addr", cfg.Server.BindAddr, "адрес HTTP-интерфейса (напр. 127.0.0.1:8501)")
	fs.DurationVar(&cfg.Server.WriteTimeout, "write-timeout", cfg.Server.WriteTimeout, "таймаут записи ответа, должен перекрывать ответ модели")
	fs.Int64Var(&cfg.Server.MaxUploadBytes, "max-upload-bytes", cfg.Server.MaxUploadBytes, "максимальный размер загружаемого изображения")
	fs.StringVar(&cfg.OpenRouter.BaseURL, "openrouter-base-url", cfg.OpenRouter.BaseURL, "базовый URL OpenAI-совместимого API")
	fs.StringVar(&cfg.OpenRouter.Model, "model", cfg.OpenRouter.Model, "идентификатор vision-модели")
	fs.StringVar(&cfg.OpenRouter.SiteURL, "site-url", cfg.OpenRouter.SiteURL, "HTTP-Referer для openrouter.ai")
	fs.StringVar(&cfg.OpenRouter.SiteName, "site-name", cfg.OpenRouter.SiteName, "X-Title для openrouter.ai")
	fs.DurationVar(&cfg.OpenRouter.RequestTimeout, "request-timeout", cfg.OpenRouter.RequestTimeout, "таймаут запроса к модели; 0 — по умолчанию транспорта")
	fs.DurationVar(&cfg.Sessions.TTL, "session-ttl", cfg.Sessions.TTL, "время жизни неактивной сессии")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// NewConfig загружает конфигурацию приложения. Ошибка конфигурации фатальна.
func NewConfig() *Config {
	cfg, err := Load(os.Args[1:])
	if err != nil {
		panic(fmt.Errorf("config: %w", err))
	}
	return cfg
}

// Validate проверяет обязательные значения.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.OpenRouter.BaseURL) == "" {
		errs = append(errs, errors.New("OPENROUTER_BASE_URL is empty"))
	}
	if strings.TrimSpace(c.OpenRouter.Model) == "" {
		errs = append(errs, errors.New("OPENROUTER_MODEL is empty"))
	}
	if c.Server.MaxUploadBytes <= 0 {
		errs = append(errs, fmt.Errorf("MAX_UPLOAD_BYTES must be positive, got %d", c.Server.MaxUploadBytes))
	}
	if c.OpenRouter.RequestTimeout < 0 {
		errs = append(errs, fmt.Errorf("OPENROUTER_REQUEST_TIMEOUT must not be negative, got %s", c.OpenRouter.RequestTimeout))
	}
	return errors.Join(errs...)
}
