// config загружает конфигурацию сайта из YAML и ENV с предсказуемым приоритетом.
//
// Источники, от старшего к младшему:
//  1. явный путь --config;
//  2. CONFIG_PATH;
//  3. ./local.yaml;
//  4. только переменные окружения (cleanenv).
package config

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// FallbackSessionSecret подписывает сессии, если секрет не задан.
// Любой, кто читал этот код, подделает токен такой инсталляции; main пишет предупреждение.
const FallbackSessionSecret = "school-site-dev-session-secret"

// Config корневая конфигурация сайта.
type Config struct {
	Env      string         `yaml:"env" env:"ENV" env-default:"local"`
	HTTP     HTTPConfig     `yaml:"http"`
	Auth     AuthConfig     `yaml:"auth"`
	Postgres PostgresConfig `yaml:"postgres"`
	S3       S3Config       `yaml:"s3"`
	Upload   UploadConfig   `yaml:"upload"`
	Redis    RedisConfig    `yaml:"redis"`
	Captcha  CaptchaConfig  `yaml:"captcha"`
	Web      WebConfig      `yaml:"web"`
	Timeouts TimeoutConfig  `yaml:"timeouts"`
}

type HTTPConfig struct {
	Host string `yaml:"host" env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"HTTP_PORT" env-default:"8080"`
}

// Addr собирает host:port.
func (h HTTPConfig) Addr() string { return net.JoinHostPort(h.Host, h.Port) }

// AuthConfig контракт сессионной cookie и учётка администратора из конфигурации.
type AuthConfig struct {
	SessionSecret string        `yaml:"session_secret" env:"SESSION_SECRET"`
	SessionTTL    time.Duration `yaml:"session_ttl" env:"SESSION_TTL" env-default:"5h"`
	SecureCookie  bool          `yaml:"secure_cookie" env:"COOKIE_SECURE" env-default:"false"`
	AdminUsername string        `yaml:"admin_username" env:"ADMIN_USERNAME"`
	AdminPassword string        `yaml:"admin_password" env:"ADMIN_PASSWORD"`
	GatePrefixes  []string      `yaml:"gate_prefixes" env:"GATE_PREFIXES" env-separator:"," env-default:"/admin"`
	LoginPath     string        `yaml:"login_path" env:"LOGIN_PATH" env-default:"/login"`
}

// ResolveSecret возвращает секрет подписи и признак того, что взят запасной.
func (a AuthConfig) ResolveSecret() ([]byte, bool) {
	if a.SessionSecret == "" {
		return []byte(FallbackSessionSecret), true
	}

	return []byte(a.SessionSecret), false
}

// EnvAdminEnabled сообщает, задана ли учётка администратора целиком.
func (a AuthConfig) EnvAdminEnabled() bool {
	return a.AdminUsername != "" && a.AdminPassword != ""
}

type PostgresConfig struct {
	URL string `yaml:"url" env:"DATABASE_URL" env-required:"true"`
}

type S3Config struct {
	Endpoint     string `yaml:"endpoint" env:"S3_ENDPOINT" env-required:"true"`
	RootUser     string `yaml:"root_user" env:"S3_ROOT_USER" env-required:"true"`
	RootPassword string `yaml:"root_password" env:"S3_ROOT_PASSWORD" env-required:"true"`
	Bucket       string `yaml:"bucket" env:"S3_BUCKET" env-default:"school-site"`
	// PublicBaseURL префикс ключей объектов в URL для клиентов, например хост CDN.
	PublicBaseURL string `yaml:"public_base_url" env:"S3_PUBLIC_BASE_URL"`
}

type UploadConfig struct {
	MaxSizeBytes        int64    `yaml:"max_size_bytes" env:"UPLOAD_MAX_SIZE_BYTES" env-default:"10485760"`
	AllowedContentTypes []string `yaml:"allowed_content_types" env:"UPLOAD_ALLOWED_CONTENT_TYPES" env-separator:"," env-default:"image/jpeg,image/png,image/webp"`
}

type RedisConfig struct {
	URL string `yaml:"url" env:"REDIS_URL" env-required:"true"`
}

// CaptchaConfig: пустой Secret отключает проверку.
type CaptchaConfig struct {
	VerifyURL string        `yaml:"verify_url" env:"CAPTCHA_VERIFY_URL" env-default:"https://www.google.com/recaptcha/api/siteverify"`
	Secret    string        `yaml:"secret" env:"CAPTCHA_SECRET"`
	Timeout   time.Duration `yaml:"timeout" env:"CAPTCHA_TIMEOUT" env-default:"5s"`
}

// WebConfig указывает на собранный фронтенд; пустой Dir отключает раздачу статики.
type WebConfig struct {
	Dir string `yaml:"dir" env:"WEB_DIR"`
}

type TimeoutConfig struct {
	Service time.Duration `yaml:"service" env:"SERVICE_TIMEOUT" env-default:"15s"`
}

// MustLoad паникует, если Load вернул ошибку.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}

	return cfg
}

// Load читает конфигурацию:
// 1) явный путь; 2) CONFIG_PATH; 3) ./local.yaml; 4) ENV.
// Значения ENV в любом случае накладываются поверх файла.
func Load(path string) (*Config, error) {
	var cfg Config

	readFile := func(p string) (*Config, error) {
		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("config file %q stat failed: %w", p, err)
		}

		if err := cleanenv.ReadConfig(p, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}

		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to overlay env: %w", err)
		}

		return &cfg, nil
	}

	if path != "" {
		return readFile(path)
	}

	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		return readFile(envPath)
	}

	if _, err := os.Stat("local.yaml"); err == nil {
		return readFile("local.yaml")
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config not found: provide --config, CONFIG_PATH, local.yaml or env vars: %w", err)
	}

	return &cfg, nil
}
