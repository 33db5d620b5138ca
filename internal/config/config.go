// Package config loads the reconciler configuration from YAML and
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config is the full process configuration.
type Config struct {
	Log      LogConfig      `mapstructure:"log"`
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Fees     FeesConfig     `mapstructure:"fees"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// ServerConfig is the ops HTTP listener (health + metrics only).
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port" validate:"min=0,max=65535"`
}

// DatabaseConfig is the Postgres connection.
type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn" validate:"required"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// KafkaConfig is the consumer-side Kafka connection.
type KafkaConfig struct {
	Brokers       []string      `mapstructure:"brokers" validate:"required,min=1"`
	GroupID       string        `mapstructure:"group_id" validate:"required"`
	MinBytes      int           `mapstructure:"min_bytes"`
	MaxBytes      int           `mapstructure:"max_bytes"`
	CommitTimeout time.Duration `mapstructure:"commit_timeout"`
}

// FeesConfig is the trade fee schedule: a per-coin-currency trading ratio
// plus a per-coin flat fee, both applied at trade creation.
type FeesConfig struct {
	DefaultTradingRatio decimal.Decimal            `mapstructure:"-"`
	TradingRatios       map[string]decimal.Decimal `mapstructure:"-"`
	FixedFees           map[string]decimal.Decimal `mapstructure:"-"`

	// Raw string forms bound by viper; parsed into the decimal maps above.
	RawDefaultTradingRatio string            `mapstructure:"default_trading_ratio"`
	RawTradingRatios       map[string]string `mapstructure:"trading_ratios"`
	RawFixedFees           map[string]string `mapstructure:"fixed_fees"`
}

// TradingRatio returns the fee ratio for a coin currency.
func (f *FeesConfig) TradingRatio(coinCurrency string) decimal.Decimal {
	if r, ok := f.TradingRatios[strings.ToLower(coinCurrency)]; ok {
		return r
	}
	return f.DefaultTradingRatio
}

// FixedFee returns the flat fee for a coin currency, zero when unconfigured.
func (f *FeesConfig) FixedFee(coinCurrency string) decimal.Decimal {
	if v, ok := f.FixedFees[strings.ToLower(coinCurrency)]; ok {
		return v
	}
	return decimal.Zero
}

func (f *FeesConfig) parse() error {
	f.TradingRatios = make(map[string]decimal.Decimal, len(f.RawTradingRatios))
	f.FixedFees = make(map[string]decimal.Decimal, len(f.RawFixedFees))
	if f.RawDefaultTradingRatio != "" {
		d, err := decimal.NewFromString(f.RawDefaultTradingRatio)
		if err != nil {
			return fmt.Errorf("fees.default_trading_ratio: %w", err)
		}
		f.DefaultTradingRatio = d
	}
	for cur, raw := range f.RawTradingRatios {
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return fmt.Errorf("fees.trading_ratios.%s: %w", cur, err)
		}
		f.TradingRatios[strings.ToLower(cur)] = d
	}
	for cur, raw := range f.RawFixedFees {
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return fmt.Errorf("fees.fixed_fees.%s: %w", cur, err)
		}
		f.FixedFees[strings.ToLower(cur)] = d
	}
	return nil
}

// Load reads config.yaml from the working directory (or the path in
// RECONCILER_CONFIG) with RECONCILER_* environment overrides.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/reconciler")
	v.SetEnvPrefix("RECONCILER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("log.level", "info")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8086)
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.group_id", "engine-reconciler")
	v.SetDefault("kafka.min_bytes", 1)
	v.SetDefault("kafka.max_bytes", 1048576)
	v.SetDefault("kafka.commit_timeout", 10*time.Second)
	v.SetDefault("fees.default_trading_ratio", "0.01")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Fees.parse(); err != nil {
		return nil, err
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}
