package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Log       LogConfig       `mapstructure:"log"`
	DB        DBConfig        `mapstructure:"db"`
	ClobREST  ClobRESTConfig  `mapstructure:"clob_rest"`
	Liveness  LivenessConfig  `mapstructure:"liveness"`
	Collector CollectorConfig `mapstructure:"collector"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Cron      CronConfig      `mapstructure:"cron"`
	Retention RetentionConfig `mapstructure:"retention"`
}

type AppConfig struct {
	Env string `mapstructure:"env"`
}

type LogConfig struct {
	Level             string `mapstructure:"level"`
	Encoding          string `mapstructure:"encoding"`
	Development       bool   `mapstructure:"development"`
	Sampling          bool   `mapstructure:"sampling"`
	DisableCaller     bool   `mapstructure:"disable_caller"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
}

type DBConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	Timezone        string        `mapstructure:"timezone"`
}

type ClobRESTConfig struct {
	BaseURL           string        `mapstructure:"base_url"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RateLimitCooldown time.Duration `mapstructure:"rate_limit_cooldown"`
}

type LivenessConfig struct {
	Lookahead      time.Duration `mapstructure:"lookahead"`
	ImminentWindow time.Duration `mapstructure:"imminent_window"`
	MoneylineOnly  bool          `mapstructure:"moneyline_only"`
}

type CollectorConfig struct {
	RequestsPerMinute int `mapstructure:"requests_per_minute"`
}

type SchedulerConfig struct {
	HighInterval    time.Duration `mapstructure:"high_interval"`
	LowInterval     time.Duration `mapstructure:"low_interval"`
	FailureCooldown time.Duration `mapstructure:"failure_cooldown"`
}

type CronConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Retention string `mapstructure:"retention"`
}

type RetentionConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	MaxAge  time.Duration `mapstructure:"max_age"`
}

func Load(path string, envOnly bool) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("PT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.AutomaticEnv()
	v.SetDefault("app.env", "dev")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("log.development", true)
	v.SetDefault("log.sampling", false)
	v.SetDefault("log.disable_caller", false)
	v.SetDefault("log.disable_stacktrace", false)
	v.SetDefault("db.max_open_conns", 2)
	v.SetDefault("db.max_idle_conns", 1)
	v.SetDefault("db.conn_max_lifetime", "30m")
	v.SetDefault("db.conn_max_idle_time", "5m")
	v.SetDefault("db.timezone", "UTC")
	v.SetDefault("clob_rest.base_url", "https://clob.polymarket.com")
	v.SetDefault("clob_rest.timeout", "15s")
	v.SetDefault("clob_rest.rate_limit_cooldown", "30s")
	v.SetDefault("liveness.lookahead", "48h")
	v.SetDefault("liveness.imminent_window", "10m")
	v.SetDefault("liveness.moneyline_only", true)
	v.SetDefault("collector.requests_per_minute", 90)
	v.SetDefault("scheduler.high_interval", "1m")
	v.SetDefault("scheduler.low_interval", "15m")
	v.SetDefault("scheduler.failure_cooldown", "1m")
	v.SetDefault("cron.enabled", true)
	v.SetDefault("cron.retention", "@every 1h")
	v.SetDefault("retention.enabled", false)
	v.SetDefault("retention.max_age", "2160h")

	if !envOnly {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
