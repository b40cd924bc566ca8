package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Config es la configuración completa del cliente.
type Config struct {
	API      APIConfig      `yaml:"api"`
	Poll     PollConfig     `yaml:"poll"`
	Session  SessionConfig  `yaml:"session"`
	Trading  TradingConfig  `yaml:"trading"`
	Notify   NotifyConfig   `yaml:"notify"`
	Stream   StreamConfig   `yaml:"stream"`
	Storage  StorageConfig  `yaml:"storage"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Fallback FallbackConfig `yaml:"fallback"`
	Log      LogConfig      `yaml:"log"`
}

// APIConfig apunta al backend de trading.
type APIConfig struct {
	BaseURL        string  `yaml:"base_url"`       // NEXT_PUBLIC_API_URL lo sobreescribe
	Version        string  `yaml:"version"`        // v1 | v2 | v3
	SignalVariant  string  `yaml:"signal_variant"` // "" | smart | advanced
	TimeoutSeconds int     `yaml:"timeout_seconds"`
	RatePerSec     float64 `yaml:"rate_per_sec"`
	Burst          int     `yaml:"burst"`
	MaxRetries     int     `yaml:"max_retries"` // solo GETs
}

// PollConfig son los periodos de los pollers, en segundos.
type PollConfig struct {
	PriceSeconds     int `yaml:"price_seconds"`
	AccountSeconds   int `yaml:"account_seconds"`
	AnalyticsSeconds int `yaml:"analytics_seconds"`
	CommunitySeconds int `yaml:"community_seconds"`
}

// SessionConfig son las credenciales. Mejor por entorno que en el YAML.
type SessionConfig struct {
	Token  string `yaml:"token"`   // XTRADER_TOKEN
	UserID string `yaml:"user_id"` // XTRADER_USER_ID
}

// TradingConfig son los valores iniciales del panel de trading.
type TradingConfig struct {
	Market string  `yaml:"market"`
	Stake  float64 `yaml:"stake"`
}

// NotifyConfig controla la consola.
type NotifyConfig struct {
	DismissMillis int  `yaml:"dismiss_ms"`
	Tables        bool `yaml:"tables"` // dashboard completo con tablas o una línea
}

// StreamConfig controla el WebSocket de ticks.
type StreamConfig struct {
	Enabled             bool `yaml:"enabled"`
	PingIntervalSeconds int  `yaml:"ping_interval_seconds"`
}

// StorageConfig controla dónde se persiste el journal.
type StorageConfig struct {
	DSN string `yaml:"dsn"` // ruta al archivo SQLite, o ":memory:"
}

// MetricsConfig controla el endpoint de Prometheus.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// FallbackConfig controla los datos de ejemplo.
type FallbackConfig struct {
	Seed uint64 `yaml:"seed"` // 0 = aleatoria
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load carga la configuración desde el archivo YAML y el archivo .env si existe.
// Las variables de entorno sobreescriben los valores del YAML.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	return &cfg, nil
}

// Default devuelve la configuración sin archivo: solo entorno y defaults.
func Default() *Config {
	_ = godotenv.Load()
	var cfg Config
	cfg.API.MaxRetries = 2
	cfg.Stream.Enabled = true
	cfg.Notify.Tables = true
	applyEnvOverrides(&cfg)
	setDefaults(&cfg)
	return &cfg
}

// Timeout devuelve el timeout por request.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.API.TimeoutSeconds) * time.Second
}

// PriceInterval, AccountInterval, AnalyticsInterval y CommunityInterval
// devuelven los periodos de los pollers.
func (c *Config) PriceInterval() time.Duration {
	return time.Duration(c.Poll.PriceSeconds) * time.Second
}

func (c *Config) AccountInterval() time.Duration {
	return time.Duration(c.Poll.AccountSeconds) * time.Second
}

func (c *Config) AnalyticsInterval() time.Duration {
	return time.Duration(c.Poll.AnalyticsSeconds) * time.Second
}

func (c *Config) CommunityInterval() time.Duration {
	return time.Duration(c.Poll.CommunitySeconds) * time.Second
}

// Dismiss devuelve lo que tarda en ocultarse una notificación.
func (c *Config) Dismiss() time.Duration {
	return time.Duration(c.Notify.DismissMillis) * time.Millisecond
}

// PingInterval devuelve el periodo del keepalive del stream.
func (c *Config) PingInterval() time.Duration {
	return time.Duration(c.Stream.PingIntervalSeconds) * time.Second
}

// Stake devuelve el stake inicial como decimal, redondeado a centavos.
func (c *Config) Stake() decimal.Decimal {
	return decimal.NewFromFloat(c.Trading.Stake).Round(2)
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("NEXT_PUBLIC_API_URL"); v != "" {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv("XTRADER_TOKEN"); v != "" {
		cfg.Session.Token = v
	}
	if v := os.Getenv("XTRADER_USER_ID"); v != "" {
		cfg.Session.UserID = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = "http://localhost:8000"
	}
	cfg.API.BaseURL = strings.TrimRight(cfg.API.BaseURL, "/")
	if cfg.API.Version == "" {
		cfg.API.Version = "v3"
	}
	if cfg.API.TimeoutSeconds <= 0 {
		cfg.API.TimeoutSeconds = 10
	}
	if cfg.API.RatePerSec <= 0 {
		cfg.API.RatePerSec = 20
	}
	if cfg.API.Burst <= 0 {
		cfg.API.Burst = 10
	}
	if cfg.API.MaxRetries < 0 {
		cfg.API.MaxRetries = 0
	}
	if cfg.Poll.PriceSeconds <= 0 {
		cfg.Poll.PriceSeconds = 2
	}
	if cfg.Poll.AccountSeconds <= 0 {
		cfg.Poll.AccountSeconds = 5
	}
	if cfg.Poll.AnalyticsSeconds <= 0 {
		cfg.Poll.AnalyticsSeconds = 10
	}
	if cfg.Poll.CommunitySeconds <= 0 {
		cfg.Poll.CommunitySeconds = 60
	}
	if cfg.Trading.Market == "" {
		cfg.Trading.Market = "R_100"
	}
	if cfg.Trading.Stake <= 0 {
		cfg.Trading.Stake = 10
	}
	if cfg.Notify.DismissMillis <= 0 {
		cfg.Notify.DismissMillis = 4000
	}
	if cfg.Stream.PingIntervalSeconds <= 0 {
		cfg.Stream.PingIntervalSeconds = 30
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "xtrader.db"
	}
	if cfg.Metrics.Addr == "" {
		cfg.Metrics.Addr = ":9090"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}

func (c *Config) validate() error {
	switch c.API.Version {
	case "v1", "v2", "v3":
	default:
		return fmt.Errorf("api.version %q: want v1, v2 or v3", c.API.Version)
	}
	switch c.API.SignalVariant {
	case "", "smart", "advanced":
	default:
		return fmt.Errorf("api.signal_variant %q: want smart or advanced", c.API.SignalVariant)
	}
	return nil
}
