// Package config manages environment variables.
//
// It reads variables from the process environment (and an optional `.env`
// file), loads them into structured Go types, and validates that required
// values are present so they can be reused across the application runtime.
//
// Responsibilities:
//   - Load environment variables (optionally from a `.env` file).
//   - Map env vars into a structured Go config (structs).
//   - Validate required values so the app fails fast on bad/missing config.
//   - Provide sane defaults for optional config blocks (e.g. observability).
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	// Side-effect import: if a `.env` file exists, it gets loaded into the
	// process env before any variable is read.
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

/*
	Env vars are read using the ORGDIR_ prefix. After the prefix is removed the
	key is lowercased and every double underscore becomes a nesting level:

	  ORGDIR_SERVER__PORT        -> server.port        -> Config.Server.Port
	  ORGDIR_CONTENT_API__TOKEN  -> content_api.token  -> Config.ContentAPI.Token

	Single underscores stay part of the key name, so snake_case fields work.
*/

// EnvPrefix is the prefix every configuration variable must carry.
const EnvPrefix = "ORGDIR_"

// Config is the root configuration object for the application.
//
// Observability is a pointer so environment values can be layered over
// DefaultObservabilityConfig.
type Config struct {
	Primary       Primary              `koanf:"primary" validate:"required"`
	Server        ServerConfig         `koanf:"server" validate:"required"`
	Database      DatabaseConfig       `koanf:"database" validate:"required"`
	Redis         RedisConfig          `koanf:"redis"`
	Auth          AuthConfig           `koanf:"auth"`
	ContentAPI    ContentAPIConfig     `koanf:"content_api" validate:"required"`
	Loader        LoaderConfig         `koanf:"loader" validate:"required"`
	Cache         CacheConfig          `koanf:"cache"`
	Integration   IntegrationConfig    `koanf:"integration"`
	Observability *ObservabilityConfig `koanf:"observability"`
}

// Primary holds top-level information about the runtime environment.
type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

// ServerConfig groups settings for the HTTP server runtime.
// Timeouts are expressed in seconds.
type ServerConfig struct {
	Port               string   `koanf:"port" validate:"required"`
	ReadTimeout        int      `koanf:"read_timeout" validate:"required,min=1"`
	WriteTimeout       int      `koanf:"write_timeout" validate:"required,min=1"`
	IdleTimeout        int      `koanf:"idle_timeout" validate:"required,min=1"`
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins" validate:"required"`

	// SearchRateLimit is the number of search requests per second allowed
	// per client IP.
	SearchRateLimit float64 `koanf:"search_rate_limit" validate:"min=0"`
}

// DatabaseConfig contains PostgreSQL connection parameters and pool tuning.
type DatabaseConfig struct {
	Host            string `koanf:"host" validate:"required"`
	Port            int    `koanf:"port" validate:"required"`
	User            string `koanf:"user" validate:"required"`
	Password        string `koanf:"password" validate:"required"`
	Name            string `koanf:"name" validate:"required"`
	SSLMode         string `koanf:"ssl_mode" validate:"required"`
	MaxOpenConns    int    `koanf:"max_open_conns" validate:"required,min=1"`
	MaxIdleConns    int    `koanf:"max_idle_conns" validate:"min=0"`
	ConnMaxLifetime int    `koanf:"conn_max_lifetime" validate:"required,min=1"`
	ConnMaxIdleTime int    `koanf:"conn_max_idle_time" validate:"required,min=1"`
}

// RedisConfig contains Redis connection details.
// Address is "host:port". An empty address disables the search cache and the
// background job worker.
type RedisConfig struct {
	Address string `koanf:"address"`
}

// Enabled reports whether a Redis address was configured.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.Address) != ""
}

// AuthConfig stores authentication-related secrets.
// An empty SecretKey leaves the sync endpoint unregistered.
type AuthConfig struct {
	SecretKey string `koanf:"secret_key"`
}

// ContentAPIConfig describes the GraphQL content API the loader reads from.
type ContentAPIConfig struct {
	Endpoint string        `koanf:"endpoint" validate:"required,url"`
	Token    string        `koanf:"token" validate:"required"`
	PageSize int           `koanf:"page_size" validate:"min=1,max=1000"`
	Timeout  time.Duration `koanf:"timeout" validate:"min=1s"`
}

// Department match strategies for resolving a person's department.
const (
	// DepartmentMatchName resolves by department name (the feed's native shape).
	// If two departments share a name the lookup returns an arbitrary one.
	DepartmentMatchName = "name"

	// DepartmentMatchID resolves by department identifier.
	DepartmentMatchID = "id"
)

// LoaderConfig controls how the loader writes the feed into the database.
type LoaderConfig struct {
	DepartmentMatch string `koanf:"department_match" validate:"required,oneof=name id"`
}

// CacheConfig controls the Redis-backed search cache.
type CacheConfig struct {
	SearchTTL time.Duration `koanf:"search_ttl" validate:"min=0"`
}

// IntegrationConfig holds third-party integrations that are optional.
type IntegrationConfig struct {
	ResendAPIKey    string `koanf:"resend_api_key"`
	ReportSender    string `koanf:"report_sender"`
	ReportRecipient string `koanf:"report_recipient" validate:"omitempty,email"`
}

// ReportsEnabled reports whether load report emails can be sent.
func (i IntegrationConfig) ReportsEnabled() bool {
	return i.ResendAPIKey != "" && i.ReportRecipient != ""
}

// defaultConfig returns the values used for anything the environment leaves
// unset. koanf only overwrites fields present in the source, so these survive
// Unmarshal.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:               "8080",
			ReadTimeout:        30,
			WriteTimeout:       30,
			IdleTimeout:        60,
			CORSAllowedOrigins: []string{"*"},
			SearchRateLimit:    20,
		},
		Database: DatabaseConfig{
			Port:            5432,
			SSLMode:         "disable",
			MaxOpenConns:    10,
			MaxIdleConns:    2,
			ConnMaxLifetime: 300,
			ConnMaxIdleTime: 60,
		},
		ContentAPI: ContentAPIConfig{
			PageSize: 100,
			Timeout:  30 * time.Second,
		},
		Loader: LoaderConfig{
			DepartmentMatch: DepartmentMatchName,
		},
		Cache: CacheConfig{
			SearchTTL: 5 * time.Minute,
		},
		Integration: IntegrationConfig{
			ReportSender: "Org Directory <onboarding@resend.dev>",
		},
		Observability: DefaultObservabilityConfig(),
	}
}

// envKey maps a raw environment variable name to a koanf key path.
func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
}

// LoadConfig loads configuration from environment variables, unmarshals it
// into Config, validates it, applies defaults, and returns the result.
//
// Behavior summary:
//   - Loads env vars with prefix ORGDIR_
//   - Unmarshals on top of defaultConfig
//   - Validates required config blocks/fields
//   - Pins observability service name/environment and validates it
func LoadConfig() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("could not load env variables: %w", err)
	}

	mainConfig := defaultConfig()
	err := k.UnmarshalWithConf("", mainConfig, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
			WeaklyTypedInput: true,
			Result:           mainConfig,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("could not unmarshal main config: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(mainConfig); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	// Service name is fixed; environment always follows primary.env so logs
	// and traces agree.
	mainConfig.Observability.ServiceName = ServiceName
	mainConfig.Observability.Environment = mainConfig.Primary.Env

	if err := mainConfig.Observability.Validate(); err != nil {
		return nil, fmt.Errorf("invalid observability config: %w", err)
	}

	return mainConfig, nil
}
