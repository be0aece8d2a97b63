package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/skillmapper-backend/internal/data/db"
	"github.com/yungbote/skillmapper-backend/internal/platform/envutil"
	"github.com/yungbote/skillmapper-backend/internal/platform/logger"
	"github.com/yungbote/skillmapper-backend/internal/platform/openai"
)

// ConfigFileEnv names the optional YAML file that seeds Config. Environment
// variables override any value it sets.
const ConfigFileEnv = "SKILLMAPPER_CONFIG"

type OpenAIConfig struct {
	APIKey     string        `yaml:"api_key"`
	BaseURL    string        `yaml:"base_url"`
	Model      string        `yaml:"model"`
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"`
}

type LinkCheckConfig struct {
	Concurrency    int           `yaml:"concurrency"`
	Timeout        time.Duration `yaml:"timeout"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	BlockPrivate   bool          `yaml:"block_private"`
	CacheTTL       time.Duration `yaml:"cache_ttl"`
}

type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"sslmode"`
}

type DBConfig struct {
	Driver     string         `yaml:"driver"`
	SQLitePath string         `yaml:"sqlite_path"`
	Postgres   PostgresConfig `yaml:"postgres"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type OtelConfig struct {
	Enabled     bool    `yaml:"enabled"`
	ServiceName string  `yaml:"service_name"`
	Environment string  `yaml:"environment"`
	Endpoint    string  `yaml:"endpoint"`
	Headers     string  `yaml:"headers"`
	Insecure    bool    `yaml:"insecure"`
	SampleRatio float64 `yaml:"sample_ratio"`
}

type Config struct {
	Port            string        `yaml:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	OpenAI           OpenAIConfig `yaml:"openai"`
	RoadmapMaxTokens int          `yaml:"roadmap_max_tokens"`
	ChatMaxTokens    int          `yaml:"chat_max_tokens"`

	LinkCheck                LinkCheckConfig `yaml:"linkcheck"`
	SuggestionsValidateLinks bool            `yaml:"suggestions_validate_links"`
	RoadmapCacheTTL          time.Duration   `yaml:"roadmap_cache_ttl"`

	DB    DBConfig    `yaml:"db"`
	Redis RedisConfig `yaml:"redis"`

	AuthJWTSecret  string     `yaml:"auth_jwt_secret"`
	CORSOrigins    []string   `yaml:"cors_origins"`
	MetricsEnabled bool       `yaml:"metrics_enabled"`
	Otel           OtelConfig `yaml:"otel"`
}

func defaultConfig() Config {
	return Config{
		Port:            "8080",
		ShutdownTimeout: 15 * time.Second,
		OpenAI: OpenAIConfig{
			BaseURL: openai.DefaultBaseURL,
			Model:   openai.DefaultModel,
			Timeout: 60 * time.Second,
		},
		RoadmapMaxTokens: 1800,
		ChatMaxTokens:    1000,
		LinkCheck: LinkCheckConfig{
			Concurrency:    8,
			Timeout:        10 * time.Second,
			RequestTimeout: 5 * time.Second,
			BlockPrivate:   true,
		},
		DB: DBConfig{
			Driver:     db.DriverSQLite,
			SQLitePath: "data/skillmapper.db",
			Postgres: PostgresConfig{
				Host:    "localhost",
				Port:    "5432",
				User:    "postgres",
				Name:    "skillmapper",
				SSLMode: "disable",
			},
		},
		Otel: OtelConfig{
			ServiceName: "skillmapper",
			Environment: "development",
			SampleRatio: 1,
		},
	}
}

// LoadConfig builds the runtime configuration: defaults, then the YAML file
// named by SKILLMAPPER_CONFIG, then environment variables.
func LoadConfig(log *logger.Logger) (Config, error) {
	cfg := defaultConfig()
	if path := strings.TrimSpace(os.Getenv(ConfigFileEnv)); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
		log.Info("Loaded config file", "path", path)
	}
	applyEnv(&cfg)
	log.Debug("Config loaded",
		"port", cfg.Port,
		"db_driver", cfg.DB.Driver,
		"openai_base_url", cfg.OpenAI.BaseURL,
		"openai_model", cfg.OpenAI.Model,
		"linkcheck_concurrency", cfg.LinkCheck.Concurrency,
		"redis", cfg.Redis.Addr != "",
		"auth", cfg.AuthJWTSecret != "",
		"metrics", cfg.MetricsEnabled,
		"otel", cfg.Otel.Enabled,
	)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.Port = envutil.String("PORT", cfg.Port)
	cfg.ShutdownTimeout = envutil.Seconds("SHUTDOWN_TIMEOUT_SECONDS", cfg.ShutdownTimeout)

	cfg.OpenAI.APIKey = envutil.String("OPENAI_API_KEY", cfg.OpenAI.APIKey)
	cfg.OpenAI.BaseURL = envutil.String("OPENAI_BASE_URL", cfg.OpenAI.BaseURL)
	cfg.OpenAI.Model = envutil.String("OPENAI_MODEL", cfg.OpenAI.Model)
	cfg.OpenAI.Timeout = envutil.Seconds("OPENAI_TIMEOUT_SECONDS", cfg.OpenAI.Timeout)
	cfg.OpenAI.MaxRetries = envutil.Int("OPENAI_MAX_RETRIES", cfg.OpenAI.MaxRetries)
	cfg.RoadmapMaxTokens = envutil.Int("ROADMAP_MAX_TOKENS", cfg.RoadmapMaxTokens)
	cfg.ChatMaxTokens = envutil.Int("CHAT_MAX_TOKENS", cfg.ChatMaxTokens)

	cfg.LinkCheck.Concurrency = envutil.Int("LINKCHECK_CONCURRENCY", cfg.LinkCheck.Concurrency)
	cfg.LinkCheck.Timeout = envutil.Millis("LINKCHECK_TIMEOUT_MS", cfg.LinkCheck.Timeout)
	cfg.LinkCheck.RequestTimeout = envutil.Millis("LINKCHECK_REQUEST_TIMEOUT_MS", cfg.LinkCheck.RequestTimeout)
	cfg.LinkCheck.BlockPrivate = envutil.Bool("LINKCHECK_BLOCK_PRIVATE", cfg.LinkCheck.BlockPrivate)
	cfg.LinkCheck.CacheTTL = envutil.Seconds("LINKCHECK_CACHE_TTL_SECONDS", cfg.LinkCheck.CacheTTL)
	cfg.SuggestionsValidateLinks = envutil.Bool("SUGGESTIONS_VALIDATE_LINKS", cfg.SuggestionsValidateLinks)
	cfg.RoadmapCacheTTL = envutil.Seconds("ROADMAP_CACHE_TTL_SECONDS", cfg.RoadmapCacheTTL)

	cfg.DB.Driver = strings.ToLower(envutil.String("DB_DRIVER", cfg.DB.Driver))
	cfg.DB.SQLitePath = envutil.String("SQLITE_PATH", cfg.DB.SQLitePath)
	cfg.DB.Postgres.Host = envutil.String("POSTGRES_HOST", cfg.DB.Postgres.Host)
	cfg.DB.Postgres.Port = envutil.String("POSTGRES_PORT", cfg.DB.Postgres.Port)
	cfg.DB.Postgres.User = envutil.String("POSTGRES_USER", cfg.DB.Postgres.User)
	cfg.DB.Postgres.Password = envutil.String("POSTGRES_PASSWORD", cfg.DB.Postgres.Password)
	cfg.DB.Postgres.Name = envutil.String("POSTGRES_NAME", cfg.DB.Postgres.Name)
	cfg.DB.Postgres.SSLMode = envutil.String("POSTGRES_SSLMODE", cfg.DB.Postgres.SSLMode)

	cfg.Redis.Addr = envutil.String("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = envutil.String("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = envutil.Int("REDIS_DB", cfg.Redis.DB)

	cfg.AuthJWTSecret = envutil.String("AUTH_JWT_SECRET", cfg.AuthJWTSecret)
	cfg.CORSOrigins = envutil.List("CORS_ORIGINS", cfg.CORSOrigins)
	cfg.MetricsEnabled = envutil.Bool("METRICS_ENABLED", cfg.MetricsEnabled)

	cfg.Otel.Enabled = envutil.Bool("OTEL_ENABLED", cfg.Otel.Enabled)
	cfg.Otel.ServiceName = envutil.String("OTEL_SERVICE_NAME", cfg.Otel.ServiceName)
	cfg.Otel.Environment = envutil.String("OTEL_ENVIRONMENT", cfg.Otel.Environment)
	cfg.Otel.Endpoint = envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.Otel.Endpoint)
	cfg.Otel.Headers = envutil.String("OTEL_EXPORTER_OTLP_HEADERS", cfg.Otel.Headers)
	cfg.Otel.Insecure = envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", cfg.Otel.Insecure)
	cfg.Otel.SampleRatio = envutil.Float("OTEL_SAMPLE_RATIO", cfg.Otel.SampleRatio)
}

func (c Config) dbConfig() db.Config {
	return db.Config{
		Driver:     c.DB.Driver,
		SQLitePath: c.DB.SQLitePath,
		Postgres: db.PostgresConfig{
			Host:     c.DB.Postgres.Host,
			Port:     c.DB.Postgres.Port,
			User:     c.DB.Postgres.User,
			Password: c.DB.Postgres.Password,
			Name:     c.DB.Postgres.Name,
			SSLMode:  c.DB.Postgres.SSLMode,
		},
	}
}
