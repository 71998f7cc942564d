package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	OneMap     OneMapConfig     `yaml:"onemap" mapstructure:"onemap"`
	SingStat   SingStatConfig   `yaml:"singstat" mapstructure:"singstat"`
	Resilience ResilienceConfig `yaml:"resilience" mapstructure:"resilience"`
	Tiles      TilesConfig      `yaml:"tiles" mapstructure:"tiles"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// OneMapConfig configures the geocoding and search client.
type OneMapConfig struct {
	BaseURL       string  `yaml:"base_url" mapstructure:"base_url"`
	Env           string  `yaml:"env" mapstructure:"env"`
	DevToken      string  `yaml:"dev_token" mapstructure:"dev_token"`
	ProdToken     string  `yaml:"prod_token" mapstructure:"prod_token"`
	TimeoutSecs   int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RateLimitRPS  float64 `yaml:"rate_limit_rps" mapstructure:"rate_limit_rps"`
	NarrowRadiusM int     `yaml:"narrow_radius_m" mapstructure:"narrow_radius_m"`
	WideRadiusM   int     `yaml:"wide_radius_m" mapstructure:"wide_radius_m"`
}

// Token returns the credential for the configured environment.
func (c OneMapConfig) Token() string {
	if strings.EqualFold(c.Env, "production") {
		return c.ProdToken
	}
	return c.DevToken
}

// Timeout returns the per-request timeout.
func (c OneMapConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// SingStatConfig configures the statistics table client.
type SingStatConfig struct {
	BaseURL      string       `yaml:"base_url" mapstructure:"base_url"`
	TimeoutSecs  int          `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RateLimitRPS float64      `yaml:"rate_limit_rps" mapstructure:"rate_limit_rps"`
	Disabled     bool         `yaml:"disabled" mapstructure:"disabled"`
	Tables       TablesConfig `yaml:"tables" mapstructure:"tables"`
}

// Timeout returns the per-request timeout.
func (c SingStatConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// TablesConfig names the census tables by planning area.
type TablesConfig struct {
	Population string `yaml:"population" mapstructure:"population"`
	Age        string `yaml:"age" mapstructure:"age"`
	Dwelling   string `yaml:"dwelling" mapstructure:"dwelling"`
	Income     string `yaml:"income" mapstructure:"income"`
}

// ResilienceConfig configures the per-service circuit breakers.
type ResilienceConfig struct {
	FailureThreshold int `yaml:"failure_threshold" mapstructure:"failure_threshold"`
	ResetTimeoutSecs int `yaml:"reset_timeout_secs" mapstructure:"reset_timeout_secs"`
}

// TilesConfig configures the basemap tile proxy.
type TilesConfig struct {
	BaseURL      string `yaml:"base_url" mapstructure:"base_url"`
	Format       string `yaml:"format" mapstructure:"format"`
	CacheEntries int    `yaml:"cache_entries" mapstructure:"cache_entries"`
	CacheTTLMins int    `yaml:"cache_ttl_mins" mapstructure:"cache_ttl_mins"`
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

// Validate checks the settings a command mode depends on.
func (c *Config) Validate(mode string) error {
	var problems []string

	checkRadii := func() {
		if c.OneMap.NarrowRadiusM <= 0 {
			problems = append(problems, "onemap.narrow_radius_m must be > 0")
		}
		if c.OneMap.WideRadiusM < c.OneMap.NarrowRadiusM {
			problems = append(problems, "onemap.wide_radius_m must be >= onemap.narrow_radius_m")
		}
	}

	switch mode {
	case "serve":
		checkRadii()
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			problems = append(problems, "server.port must be > 0 and <= 65535")
		}
		if c.Tiles.BaseURL == "" {
			problems = append(problems, "tiles.base_url is required")
		}
	case "resolve":
		checkRadii()
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("BIZMAPPER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("onemap.base_url", "https://www.onemap.gov.sg")
	v.SetDefault("onemap.env", "development")
	v.SetDefault("onemap.dev_token", "")
	v.SetDefault("onemap.prod_token", "")
	v.SetDefault("onemap.timeout_secs", 10)
	v.SetDefault("onemap.rate_limit_rps", 4)
	v.SetDefault("onemap.narrow_radius_m", 300)
	v.SetDefault("onemap.wide_radius_m", 500)
	v.SetDefault("singstat.base_url", "https://tablebuilder.singstat.gov.sg")
	v.SetDefault("singstat.timeout_secs", 15)
	v.SetDefault("singstat.rate_limit_rps", 5)
	v.SetDefault("singstat.disabled", false)
	v.SetDefault("singstat.tables.population", "17561")
	v.SetDefault("singstat.tables.age", "17560")
	v.SetDefault("singstat.tables.dwelling", "17574")
	v.SetDefault("singstat.tables.income", "17779")
	v.SetDefault("resilience.failure_threshold", 5)
	v.SetDefault("resilience.reset_timeout_secs", 30)
	v.SetDefault("tiles.base_url", "https://www.onemap.gov.sg/maps/tiles/Default")
	v.SetDefault("tiles.format", "png")
	v.SetDefault("tiles.cache_entries", 2000)
	v.SetDefault("tiles.cache_ttl_mins", 60)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

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
