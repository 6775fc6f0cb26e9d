package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v9"
)

type Config struct {
	HTTP     HTTPConfig
	Database DatabaseConfig
	Redis    RedisConfig
	CRM      CRMConfig
	Telegram TelegramConfig
	SMTP     SMTPConfig
}

type HTTPConfig struct {
	Addr            string        `env:"HTTP_ADDR" envDefault:":8080"`
	RequestTimeout  time.Duration `env:"HTTP_REQUEST_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	// AdminToken guards the back-office routes. Empty disables them.
	AdminToken string `env:"ADMIN_TOKEN"`
}

type DatabaseConfig struct {
	Host            string        `env:"DB_HOST,required"`
	Port            int           `env:"DB_PORT,required"`
	User            string        `env:"DB_USER,required"`
	Password        string        `env:"DB_PASSWORD,required"`
	Name            string        `env:"DB_NAME,required"`
	MaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	MaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"5m"`
	ConnMaxIdleTime time.Duration `env:"DB_CONN_MAX_IDLE_TIME" envDefault:"2m"`
}

type RedisConfig struct {
	Addr       string        `env:"REDIS_ADDR,required"`
	Password   string        `env:"REDIS_PASSWORD"`
	DB         int           `env:"REDIS_DB" envDefault:"0"`
	SessionTTL time.Duration `env:"REDIS_SESSION_TTL" envDefault:"24h"`
}

type CRMConfig struct {
	BaseURL string `env:"CRM_BASE_URL,required"`
	APIKey  string `env:"CRM_API_KEY,required"`
}

// TelegramConfig drives the internal new-quote alert channel. A zero
// ChannelID disables the alert without failing startup.
type TelegramConfig struct {
	Token     string `env:"TELEGRAM_TOKEN"`
	ChannelID int64  `env:"TELEGRAM_CHANNEL_ID"`
}

type SMTPConfig struct {
	Host     string `env:"SMTP_HOST"`
	Port     int    `env:"SMTP_PORT" envDefault:"587"`
	User     string `env:"SMTP_USER"`
	Password string `env:"SMTP_PASSWORD"`
	From     string `env:"SMTP_FROM"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
