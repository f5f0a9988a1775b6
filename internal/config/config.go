package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/attribution-cli/internal/model"
)

// Config holds the full application configuration.
type Config struct {
	Log           LogConfig           `yaml:"log" mapstructure:"log"`
	Data          DataConfig          `yaml:"data" mapstructure:"data"`
	Attribution   AttributionConfig   `yaml:"attribution" mapstructure:"attribution"`
	Freshdesk     FreshdeskConfig     `yaml:"freshdesk" mapstructure:"freshdesk"`
	Salesforce    SalesforceConfig    `yaml:"salesforce" mapstructure:"salesforce"`
	SearchConsole SearchConsoleConfig `yaml:"searchconsole" mapstructure:"searchconsole"`
	Notion        NotionConfig        `yaml:"notion" mapstructure:"notion"`
	FTP           FTPConfig           `yaml:"ftp" mapstructure:"ftp"`
	Cache         CacheConfig         `yaml:"cache" mapstructure:"cache"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// DataConfig locates the input tables and the output directory.
// DefaultPeriod is the analysis window used when a lead file's name does
// not carry one, in the same token form the file names use.
type DataConfig struct {
	Dir             string `yaml:"dir" mapstructure:"dir"`
	OutputDir       string `yaml:"output_dir" mapstructure:"output_dir"`
	DefaultPeriod   string `yaml:"default_period" mapstructure:"default_period"`
	WhitelistFile   string `yaml:"whitelist_file" mapstructure:"whitelist_file"`
	ProductsFile    string `yaml:"products_file" mapstructure:"products_file"`
	CustomersFile   string `yaml:"customers_file" mapstructure:"customers_file"`
	SEOFile         string `yaml:"seo_file" mapstructure:"seo_file"`
	PPCStandardFile string `yaml:"ppc_standard_file" mapstructure:"ppc_standard_file"`
	PPCDynamicFile  string `yaml:"ppc_dynamic_file" mapstructure:"ppc_dynamic_file"`
}

// AttributionConfig tunes the cascade.
type AttributionConfig struct {
	Thresholds       model.Thresholds `yaml:"thresholds" mapstructure:"thresholds"`
	PPCLookbackHours int              `yaml:"ppc_lookback_hours" mapstructure:"ppc_lookback_hours"`
	Concurrency      int              `yaml:"concurrency" mapstructure:"concurrency"`
}

// Lookback returns the PPC click window as a duration.
func (a AttributionConfig) Lookback() time.Duration {
	return time.Duration(a.PPCLookbackHours) * time.Hour
}

// FreshdeskConfig holds helpdesk API credentials.
type FreshdeskConfig struct {
	Domain    string  `yaml:"domain" mapstructure:"domain"`
	Key       string  `yaml:"key" mapstructure:"key"`
	RateLimit float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// SalesforceConfig holds Salesforce JWT auth settings.
type SalesforceConfig struct {
	ClientID string `yaml:"client_id" mapstructure:"client_id"`
	Username string `yaml:"username" mapstructure:"username"`
	KeyPath  string `yaml:"key_path" mapstructure:"key_path"`
	LoginURL string `yaml:"login_url" mapstructure:"login_url"`
}

// Enabled reports whether Salesforce credentials are configured. When they
// are not, the customer set falls back to the CSV export.
func (s SalesforceConfig) Enabled() bool {
	return s.ClientID != "" && s.Username != "" && s.KeyPath != ""
}

// SearchConsoleConfig holds ranking API settings.
type SearchConsoleConfig struct {
	SiteURL string `yaml:"site_url" mapstructure:"site_url"`
	Token   string `yaml:"token" mapstructure:"token"`
}

// Enabled reports whether the ranking API is configured. When it is not,
// the SEO stage reads the CSV export.
func (s SearchConsoleConfig) Enabled() bool {
	return s.SiteURL != "" && s.Token != ""
}

// NotionConfig holds Notion API credentials and the summary database ID.
type NotionConfig struct {
	Token     string `yaml:"token" mapstructure:"token"`
	SummaryDB string `yaml:"summary_db" mapstructure:"summary_db"`
}

// FTPConfig holds the campaign-export drop settings.
type FTPConfig struct {
	URL         string `yaml:"url" mapstructure:"url"`
	User        string `yaml:"user" mapstructure:"user"`
	Password    string `yaml:"password" mapstructure:"password"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// Timeout returns the FTP dial timeout.
func (f FTPConfig) Timeout() time.Duration {
	return time.Duration(f.TimeoutSecs) * time.Second
}

// CacheConfig configures the fetch cache.
type CacheConfig struct {
	Path     string `yaml:"path" mapstructure:"path"`
	TTLHours int    `yaml:"ttl_hours" mapstructure:"ttl_hours"`
}

// TTL returns the cache entry lifetime.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLHours) * time.Hour
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("ATTRIB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("data.dir", "./data")
	v.SetDefault("data.output_dir", "./output")
	v.SetDefault("data.default_period", "mar2025-may2025")
	v.SetDefault("data.whitelist_file", "whitelist.csv")
	v.SetDefault("data.products_file", "products.csv")
	v.SetDefault("data.customers_file", "customers.csv")
	v.SetDefault("data.seo_file", "seo_keywords.csv")
	v.SetDefault("data.ppc_standard_file", "ppc_standard.csv")
	v.SetDefault("data.ppc_dynamic_file", "ppc_dynamic.csv")
	v.SetDefault("attribution.thresholds.high", 80.0)
	v.SetDefault("attribution.thresholds.medium", 50.0)
	v.SetDefault("attribution.thresholds.low", 20.0)
	v.SetDefault("attribution.ppc_lookback_hours", 48)
	v.SetDefault("attribution.concurrency", 0)
	v.SetDefault("freshdesk.rate_limit", 1.0)
	v.SetDefault("salesforce.login_url", "https://login.salesforce.com")
	v.SetDefault("ftp.timeout_secs", 30)
	v.SetDefault("cache.path", "attribution_cache.db")
	v.SetDefault("cache.ttl_hours", 24)

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

	return &cfg, nil
}

// Validate checks the fields the named command depends on. Problems are
// collected so one run surfaces everything that is missing.
func (c *Config) Validate(mode string) error {
	var problems []string

	requireFreshdesk := func() {
		if c.Freshdesk.Domain == "" {
			problems = append(problems, "freshdesk.domain is required")
		}
		if c.Freshdesk.Key == "" {
			problems = append(problems, "freshdesk.key is required")
		}
	}
	checkAttribution := func() {
		t := c.Attribution.Thresholds
		if t.High < t.Medium || t.Medium < t.Low || t.Low < 0 {
			problems = append(problems, "attribution.thresholds must satisfy high >= medium >= low >= 0")
		}
		if c.Attribution.PPCLookbackHours <= 0 {
			problems = append(problems, "attribution.ppc_lookback_hours must be > 0")
		}
		if c.Attribution.Concurrency < 0 || c.Attribution.Concurrency > 64 {
			problems = append(problems, "attribution.concurrency must be between 0 and 64")
		}
	}

	switch mode {
	case "run":
		requireFreshdesk()
		checkAttribution()
	case "run-offline":
		// Cached helpdesk responses stand in for the live API.
		checkAttribution()
	case "spam", "enrich":
		requireFreshdesk()
	case "attribute":
		checkAttribution()
	case "report":
		// Reads a finished run from disk, nothing external to check.
	case "fetch":
		if c.FTP.URL == "" {
			problems = append(problems, "ftp.url is required")
		}
	case "publish":
		if c.Notion.Token == "" {
			problems = append(problems, "notion.token is required")
		}
		if c.Notion.SummaryDB == "" {
			problems = append(problems, "notion.summary_db is required")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
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
