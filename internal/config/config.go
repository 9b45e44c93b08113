package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// AppName names the config, data and keyring namespaces.
const AppName = "seo-leads"

// Config holds the full application configuration.
type Config struct {
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Capture    CaptureConfig    `yaml:"capture" mapstructure:"capture"`
	PageSpeed  PageSpeedConfig  `yaml:"pagespeed" mapstructure:"pagespeed"`
	PageRank   PageRankConfig   `yaml:"pagerank" mapstructure:"pagerank"`
	Forward    ForwardConfig    `yaml:"forward" mapstructure:"forward"`
	Notion     NotionConfig     `yaml:"notion" mapstructure:"notion"`
	Salesforce SalesforceConfig `yaml:"salesforce" mapstructure:"salesforce"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// StoreConfig selects the key/value backend holding the leads and audits
// mappings.
type StoreConfig struct {
	Driver          string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL     string `yaml:"database_url" mapstructure:"database_url"`
	Path            string `yaml:"path" mapstructure:"path"`
	SerializeWrites bool   `yaml:"serialize_writes" mapstructure:"serialize_writes"`
	MaxConns        int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns        int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// CaptureConfig tunes the capture scheduler.
type CaptureConfig struct {
	SettleDelayMS    int    `yaml:"settle_delay_ms" mapstructure:"settle_delay_ms"`
	AutoAudit        bool   `yaml:"auto_audit" mapstructure:"auto_audit"`
	FetchTimeoutSecs int    `yaml:"fetch_timeout_secs" mapstructure:"fetch_timeout_secs"`
	UserAgent        string `yaml:"user_agent" mapstructure:"user_agent"`
}

// PageSpeedConfig holds PageSpeed Insights settings.
type PageSpeedConfig struct {
	Key         string  `yaml:"key" mapstructure:"key"`
	BaseURL     string  `yaml:"base_url" mapstructure:"base_url"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RatePerSec  float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
}

// PageRankConfig holds Open PageRank settings.
type PageRankConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// ForwardConfig configures the webhook sync target.
type ForwardConfig struct {
	WebhookURL     string  `yaml:"webhook_url" mapstructure:"webhook_url"`
	RatePerSec     float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
	TimeoutSecs    int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	BreakerFails   int     `yaml:"breaker_failures" mapstructure:"breaker_failures"`
	BreakerCoolSec int     `yaml:"breaker_cooldown_secs" mapstructure:"breaker_cooldown_secs"`
}

// NotionConfig holds Notion API credentials and the lead database ID.
type NotionConfig struct {
	Token  string `yaml:"token" mapstructure:"token"`
	LeadDB string `yaml:"lead_db" mapstructure:"lead_db"`
}

// SalesforceConfig holds Salesforce JWT auth settings.
type SalesforceConfig struct {
	ClientID string `yaml:"client_id" mapstructure:"client_id"`
	Username string `yaml:"username" mapstructure:"username"`
	KeyPath  string `yaml:"key_path" mapstructure:"key_path"`
	LoginURL string `yaml:"login_url" mapstructure:"login_url"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// ConfigDir is where config.yaml is looked up after the working directory.
func ConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// DataDir holds the file and sqlite stores by default.
func DataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// Load reads configuration from .env, config file, environment and, for API
// keys still unset, the OS keyring.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, eris.Wrap(err, "config: load .env")
	}

	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath(ConfigDir())

	// Environment
	v.SetEnvPrefix("SEOLEADS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "")
	v.SetDefault("store.serialize_writes", true)
	v.SetDefault("capture.settle_delay_ms", 1500)
	v.SetDefault("capture.auto_audit", false)
	v.SetDefault("capture.fetch_timeout_secs", 15)
	v.SetDefault("capture.user_agent", "Mozilla/5.0 (compatible; seo-leads/1.0)")
	v.SetDefault("pagespeed.base_url", "https://www.googleapis.com/pagespeedonline/v5/runPagespeed")
	v.SetDefault("pagespeed.timeout_secs", 30)
	v.SetDefault("pagespeed.rate_per_sec", 1)
	v.SetDefault("pagerank.base_url", "https://openpagerank.com")
	v.SetDefault("forward.rate_per_sec", 2)
	v.SetDefault("forward.timeout_secs", 10)
	v.SetDefault("forward.breaker_failures", 5)
	v.SetDefault("forward.breaker_cooldown_secs", 60)
	v.SetDefault("salesforce.login_url", "https://login.salesforce.com")
	v.SetDefault("server.port", 8787)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Keys that may only arrive through env or keyring still need to be
	// known to viper for Unmarshal.
	for _, k := range []string{"store.database_url", "pagespeed.key", "pagerank.key",
		"forward.webhook_url", "notion.token", "notion.lead_db",
		"salesforce.client_id", "salesforce.username", "salesforce.key_path"} {
		_ = v.BindEnv(k)
	}

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	if cfg.Store.Path == "" {
		cfg.Store.Path = defaultStorePath(cfg.Store.Driver)
	}
	FillSecrets(&cfg)

	return &cfg, nil
}

func defaultStorePath(driver string) string {
	switch driver {
	case "file":
		return filepath.Join(DataDir(), "store.json")
	case "sqlite":
		return filepath.Join(DataDir(), "store.db")
	default:
		return ""
	}
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
