package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aiteamhq/billsync/internal/types"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Configuration struct {
	Deployment DeploymentConfig `validate:"required"`
	Server     ServerConfig     `validate:"required"`
	Logging    LoggingConfig    `validate:"required"`
	Postgres   PostgresConfig   `validate:"required"`
	Stripe     StripeConfig     `validate:"required"`
	Supabase   SupabaseConfig
	Profiles   ProfilesConfig `validate:"required"`
	Plans      PlansConfig
	Cache      CacheConfig
	Sentry     SentryConfig
	Events     EventsConfig
}

type DeploymentConfig struct {
	Mode types.RunMode `validate:"required,oneof=local api aws_lambda_api"`
}

type ServerConfig struct {
	Address string `validate:"required"`
}

type LoggingConfig struct {
	Level      types.LogLevel `validate:"required"`
	FilePath   string         `mapstructure:"file_path"`
	MaxSizeMB  int            `mapstructure:"max_size_mb"`
	MaxBackups int            `mapstructure:"max_backups"`
	MaxAgeDays int            `mapstructure:"max_age_days"`
}

type PostgresConfig struct {
	Host               string
	Port               int
	User               string
	Password           string
	DBName             string `mapstructure:"dbname"`
	SSLMode            string `mapstructure:"sslmode"`
	MaxOpenConns       int    `mapstructure:"max_open_conns"`
	MaxIdleConns       int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeMin int    `mapstructure:"conn_max_lifetime_minutes"`
}

// StripeConfig holds the Stripe API credentials and webhook signing secret
type StripeConfig struct {
	SecretKey                string `mapstructure:"secret_key"`
	WebhookSecret            string `mapstructure:"webhook_secret"`
	MaxNetworkRetries        int64  `mapstructure:"max_network_retries"`
	IgnoreAPIVersionMismatch bool   `mapstructure:"ignore_api_version_mismatch"`

	// APIBaseURL points the client at stripe-mock or a proxy. Empty means api.stripe.com.
	APIBaseURL string `mapstructure:"api_base_url"`
}

type SupabaseConfig struct {
	BaseURL    string `mapstructure:"base_url"`
	ServiceKey string `mapstructure:"service_key"`
}

type ProfilesConfig struct {
	Source types.ProfileSource `validate:"required,oneof=postgres supabase"`
}

// PlansConfig is the operator maintained price to plan mapping. It is consulted
// only when the plan_prices table has no row for a price.
type PlansConfig struct {
	Prices []PlanPriceConfig `validate:"dive"`
}

type PlanPriceConfig struct {
	PriceID      string             `mapstructure:"price_id" validate:"required"`
	PlanID       string             `mapstructure:"plan_id" validate:"required"`
	BillingCycle types.BillingCycle `mapstructure:"billing_cycle" validate:"required,oneof=monthly yearly"`
}

type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
}

type SentryConfig struct {
	Enabled     bool
	DSN         string
	Environment string
	SampleRate  float64 `mapstructure:"sample_rate"`
}

// EventsConfig controls the internal billing event topic
type EventsConfig struct {
	Enabled bool
	Topic   string
}

func NewConfig() (*Configuration, error) {
	// .env is optional and only used in local development
	_ = godotenv.Load()

	v := viper.New()

	// Modify config paths to ensure config.yaml is found
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./internal/config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/billsync")

	// Set up environment variables support
	v.SetEnvPrefix("BILLSYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(
		".", "_",
		"-", "_",
	))
	v.AutomaticEnv()

	setDefaults(v)

	// Read config file if exists
	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("Error reading config file: %v\n", err)
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, err
		}
	} else {
		fmt.Printf("Using config file: %s\n", v.ConfigFileUsed())
	}

	var config Configuration
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("deployment.mode", types.ModeLocal)
	v.SetDefault("server.address", ":8080")
	v.SetDefault("logging.level", types.LogLevelInfo)
	v.SetDefault("logging.max_size_mb", 10)
	v.SetDefault("logging.max_backups", 5)
	v.SetDefault("logging.max_age_days", 30)
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.sslmode", "require")
	v.SetDefault("postgres.max_open_conns", 10)
	v.SetDefault("postgres.max_idle_conns", 5)
	v.SetDefault("postgres.conn_max_lifetime_minutes", 30)
	v.SetDefault("stripe.max_network_retries", 2)
	v.SetDefault("stripe.ignore_api_version_mismatch", true)
	v.SetDefault("profiles.source", types.ProfileSourcePostgres)
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.ttl", 10*time.Minute)
	v.SetDefault("events.enabled", true)
	v.SetDefault("events.topic", "billing_events")
}

func (c Configuration) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.Profiles.Source == types.ProfileSourceSupabase && (c.Supabase.BaseURL == "" || c.Supabase.ServiceKey == "") {
		return fmt.Errorf("supabase.base_url and supabase.service_key are required when profiles.source is supabase")
	}
	return nil
}

// GetDefaultConfig returns a default configuration for local development
// This is useful for running scripts or other non-web applications
func GetDefaultConfig() *Configuration {
	return &Configuration{
		Deployment: DeploymentConfig{Mode: types.ModeLocal},
		Server:     ServerConfig{Address: ":8080"},
		Logging:    LoggingConfig{Level: types.LogLevelDebug},
		Stripe:     StripeConfig{MaxNetworkRetries: 2, IgnoreAPIVersionMismatch: true},
		Profiles:   ProfilesConfig{Source: types.ProfileSourcePostgres},
		Cache:      CacheConfig{Enabled: true, TTL: 10 * time.Minute},
		Events:     EventsConfig{Enabled: true, Topic: "billing_events"},
	}
}

func (c PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"user=%s password=%s dbname=%s host=%s port=%d sslmode=%s",
		c.User,
		c.Password,
		c.DBName,
		c.Host,
		c.Port,
		c.SSLMode,
	)
}

// PriceMap returns the static price mapping keyed by Stripe price id
func (c PlansConfig) PriceMap() map[string]PlanPriceConfig {
	out := make(map[string]PlanPriceConfig, len(c.Prices))
	for _, p := range c.Prices {
		out[p.PriceID] = p
	}
	return out
}
