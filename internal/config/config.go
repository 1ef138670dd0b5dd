// Package config loads intake settings from defaults, an optional YAML file,
// a .env file and INTAKE_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Store kinds.
const (
	StoreMemory    = "memory"
	StoreRedis     = "redis"
	StoreSQLServer = "sqlserver"
	StoreDynamoDB  = "dynamodb"
)

// Config is the merged application configuration.
type Config struct {
	Port           int           `mapstructure:"port" yaml:"port"`
	StaticDir      string        `mapstructure:"static_dir" yaml:"static_dir"`
	MaxUploadBytes int64         `mapstructure:"max_upload_bytes" yaml:"max_upload_bytes"`
	MaxFileKB      int64         `mapstructure:"max_file_kb" yaml:"max_file_kb"`
	AllowedHeaders []string      `mapstructure:"allowed_headers" yaml:"allowed_headers"`
	LockTTL        time.Duration `mapstructure:"lock_ttl" yaml:"lock_ttl"`
	LogLevel       string        `mapstructure:"log_level" yaml:"log_level"`
	LogFormat      string        `mapstructure:"log_format" yaml:"log_format"`
	Store          StoreConfig   `mapstructure:"store" yaml:"store"`
}

// StoreConfig selects and configures the result store.
type StoreConfig struct {
	Kind      string          `mapstructure:"kind" yaml:"kind"`
	Redis     RedisConfig     `mapstructure:"redis" yaml:"redis"`
	SQLServer SQLServerConfig `mapstructure:"sqlserver" yaml:"sqlserver"`
	DynamoDB  DynamoDBConfig  `mapstructure:"dynamodb" yaml:"dynamodb"`
}

type RedisConfig struct {
	Addr     string        `mapstructure:"addr" yaml:"addr"`
	Password string        `mapstructure:"password" yaml:"password"`
	DB       int           `mapstructure:"db" yaml:"db"`
	Prefix   string        `mapstructure:"prefix" yaml:"prefix"`
	TTL      time.Duration `mapstructure:"ttl" yaml:"ttl"`
}

type SQLServerConfig struct {
	DSN     string `mapstructure:"dsn" yaml:"dsn"`
	Table   string `mapstructure:"table" yaml:"table"`
	Migrate bool   `mapstructure:"migrate" yaml:"migrate"`
}

type DynamoDBConfig struct {
	Table     string `mapstructure:"table" yaml:"table"`
	Region    string `mapstructure:"region" yaml:"region"`
	Endpoint  string `mapstructure:"endpoint" yaml:"endpoint"`
	AccessKey string `mapstructure:"access_key" yaml:"access_key"`
	SecretKey string `mapstructure:"secret_key" yaml:"secret_key"`
}

// envKeys maps environment variables to dotted config keys.
var envKeys = map[string]string{
	"INTAKE_PORT":                "port",
	"INTAKE_STATIC_DIR":          "static_dir",
	"INTAKE_MAX_UPLOAD_BYTES":    "max_upload_bytes",
	"INTAKE_MAX_FILE_KB":         "max_file_kb",
	"INTAKE_ALLOWED_HEADERS":     "allowed_headers",
	"INTAKE_LOCK_TTL":            "lock_ttl",
	"INTAKE_LOG_LEVEL":           "log_level",
	"INTAKE_LOG_FORMAT":          "log_format",
	"INTAKE_STORE":               "store.kind",
	"INTAKE_REDIS_ADDR":          "store.redis.addr",
	"INTAKE_REDIS_PASSWORD":      "store.redis.password",
	"INTAKE_REDIS_DB":            "store.redis.db",
	"INTAKE_REDIS_PREFIX":        "store.redis.prefix",
	"INTAKE_REDIS_TTL":           "store.redis.ttl",
	"INTAKE_SQLSERVER_DSN":       "store.sqlserver.dsn",
	"INTAKE_SQLSERVER_TABLE":     "store.sqlserver.table",
	"INTAKE_SQLSERVER_MIGRATE":   "store.sqlserver.migrate",
	"INTAKE_DYNAMODB_TABLE":      "store.dynamodb.table",
	"INTAKE_DYNAMODB_REGION":     "store.dynamodb.region",
	"INTAKE_DYNAMODB_ENDPOINT":   "store.dynamodb.endpoint",
	"INTAKE_DYNAMODB_ACCESS_KEY": "store.dynamodb.access_key",
	"INTAKE_DYNAMODB_SECRET_KEY": "store.dynamodb.secret_key",
}

// Defaults returns the built-in settings as a nested map.
func Defaults() map[string]any {
	return map[string]any{
		"port":             8001,
		"static_dir":       "static",
		"max_upload_bytes": 1 << 20,
		"max_file_kb":      10,
		"allowed_headers":  []string{"CUSTOMER", "ADDRESS", "PRODUCT", "PRODUCT_TYPE", "PRICE"},
		"lock_ttl":         "30s",
		"log_level":        "info",
		"log_format":       "text",
		"store": map[string]any{
			"kind": StoreMemory,
			"redis": map[string]any{
				"addr":   "localhost:6379",
				"prefix": "intake:",
			},
			"sqlserver": map[string]any{
				"table":   "ValidationResults",
				"migrate": true,
			},
			"dynamodb": map[string]any{
				"table": "ValidationResults",
			},
		},
	}
}

// Load builds the configuration. path may be empty.
// A missing .env file is not an error; a missing YAML file given by path is.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}

	settings := Defaults()

	if path == "" {
		path = os.Getenv("INTAKE_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
		var file map[string]any
		if err := yaml.Unmarshal(data, &file); err != nil {
			return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
		merge(settings, file)
	}

	for env, key := range envKeys {
		if v, ok := os.LookupEnv(env); ok {
			set(settings, key, v)
		}
	}

	return Decode(settings)
}

// Decode converts a nested settings map into a validated Config.
func Decode(settings map[string]any) (Config, error) {
	var cfg Config
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           &cfg,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return Config{}, err
	}
	if err := dec.Decode(settings); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	for i, h := range cfg.AllowedHeaders {
		cfg.AllowedHeaders[i] = strings.TrimSpace(h)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints.
func (c Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.MaxFileKB <= 0 {
		return fmt.Errorf("max_file_kb must be positive")
	}
	if c.MaxUploadBytes < c.MaxFileKB*1024 {
		return fmt.Errorf("max_upload_bytes (%d) must be at least max_file_kb*1024 (%d)", c.MaxUploadBytes, c.MaxFileKB*1024)
	}
	if len(c.AllowedHeaders) == 0 {
		return fmt.Errorf("allowed_headers must not be empty")
	}
	switch c.Store.Kind {
	case StoreMemory, StoreRedis:
	case StoreSQLServer:
		if c.Store.SQLServer.DSN == "" {
			return fmt.Errorf("store.sqlserver.dsn is required for the sqlserver store")
		}
	case StoreDynamoDB:
		if c.Store.DynamoDB.Table == "" {
			return fmt.Errorf("store.dynamodb.table is required for the dynamodb store")
		}
	default:
		return fmt.Errorf("unknown store kind %q", c.Store.Kind)
	}
	return nil
}

// Set overrides a dotted key, e.g. from a command-line flag.
func Set(settings map[string]any, key string, value any) {
	set(settings, key, value)
}

func set(settings map[string]any, key string, value any) {
	parts := strings.Split(key, ".")
	m := settings
	for _, p := range parts[:len(parts)-1] {
		next, ok := m[p].(map[string]any)
		if !ok {
			next = map[string]any{}
			m[p] = next
		}
		m = next
	}
	m[parts[len(parts)-1]] = value
}

// merge copies src into dst recursively; src wins on conflicts.
func merge(dst, src map[string]any) {
	for k, v := range src {
		if sm, ok := v.(map[string]any); ok {
			if dm, ok := dst[k].(map[string]any); ok {
				merge(dm, sm)
				continue
			}
		}
		dst[k] = v
	}
}
