package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Env       string          `mapstructure:"env"`
	Server    ServerConfig    `mapstructure:"server"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Database  DatabaseConfig  `mapstructure:"database"`
	SQLite    SQLiteConfig    `mapstructure:"sqlite"`
	MySQL     MySQLConfig     `mapstructure:"mysql"`
	Mongo     MongoConfig     `mapstructure:"mongo"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Replicate ReplicateConfig `mapstructure:"replicate"`
	V0        V0Config        `mapstructure:"v0"`
	Store     StoreConfig     `mapstructure:"store"`
	Synth     SynthConfig     `mapstructure:"synth"`
	Security  SecurityConfig  `mapstructure:"security"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

type ServerConfig struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"`
	MiddlewareTimeout time.Duration `mapstructure:"middleware_timeout"`
}

// CacheConfig selects the key/value backend that replaces browser storage
type CacheConfig struct {
	Backend string `mapstructure:"backend"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type DatabaseConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	Database       string `mapstructure:"database"`
	SSLMode        string `mapstructure:"ssl_mode"`
	MaxConns       int32  `mapstructure:"max_conns"`
	MinConns       int32  `mapstructure:"min_conns"`
	AutoMigrate    bool   `mapstructure:"auto_migrate"`
	MigrationsPath string `mapstructure:"migrations_path"`
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode,
	)
}

type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

type MySQLConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
}

func (c MySQLConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true", c.User, c.Password, c.Host, c.Port, c.Database)
}

type MongoConfig struct {
	URI        string        `mapstructure:"uri"`
	Database   string        `mapstructure:"database"`
	Collection string        `mapstructure:"collection"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

type LLMConfig struct {
	DefaultProvider string           `mapstructure:"default_provider"`
	OpenRouter      OpenRouterConfig `mapstructure:"openrouter"`
	OpenAI          OpenAIConfig     `mapstructure:"openai"`
	Gemini          GeminiConfig     `mapstructure:"gemini"`
	Anthropic       AnthropicConfig  `mapstructure:"anthropic"`
	Ollama          OllamaConfig     `mapstructure:"ollama"`
	DeepSeek        DeepSeekConfig   `mapstructure:"deepseek"`
}

// OpenRouterConfig points the OpenAI-compatible provider at openrouter.ai
type OpenRouterConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Model   string `mapstructure:"model"`
}

type OpenAIConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type AnthropicConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type OllamaConfig struct {
	Host         string `mapstructure:"host"`
	DefaultModel string `mapstructure:"default_model"`
}

type DeepSeekConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type ReplicateConfig struct {
	APIToken     string        `mapstructure:"api_token"`
	BaseURL      string        `mapstructure:"base_url"`
	ModelOwner   string        `mapstructure:"model_owner"`
	ModelName    string        `mapstructure:"model_name"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
	WaitTimeout  time.Duration `mapstructure:"wait_timeout"`
}

type V0Config struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

// StoreConfig tunes the listing orchestrator
type StoreConfig struct {
	BatchSize            int     `mapstructure:"batch_size"`
	ThumbnailConcurrency int     `mapstructure:"thumbnail_concurrency"`
	ThumbnailRate        float64 `mapstructure:"thumbnail_rate"`
	ThumbnailBurst       int     `mapstructure:"thumbnail_burst"`
}

// fitSynth stretches the request timeouts so a synthesis can reach its own
// timeout before the router cancels it
func (c *ServerConfig) fitSynth(synth SynthConfig) {
	floor := synth.Budget() + synthMargin
	if c.MiddlewareTimeout < floor {
		c.MiddlewareTimeout = floor
	}
	if c.WriteTimeout < c.MiddlewareTimeout+5*time.Second {
		c.WriteTimeout = c.MiddlewareTimeout + 5*time.Second
	}
}

type SynthConfig struct {
	PollInterval time.Duration `mapstructure:"poll_interval"`
	MaxAttempts  int           `mapstructure:"max_attempts"`
}

// synthMargin covers the poll round-trips on top of the waits
const synthMargin = 30 * time.Second

// Budget is the time the poll loop spends waiting between attempts
func (c SynthConfig) Budget() time.Duration {
	return time.Duration(c.MaxAttempts) * c.PollInterval
}

type SecurityConfig struct {
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

type RateLimitConfig struct {
	Enabled           bool `mapstructure:"enabled"`
	RequestsPerMinute int  `mapstructure:"requests_per_minute"`
	Burst             int  `mapstructure:"burst"`
}

type LoggingConfig struct {
	Level        string        `mapstructure:"level"`
	Format       string        `mapstructure:"format"`
	File         string        `mapstructure:"file"`
	MaxAge       time.Duration `mapstructure:"max_age"`
	RotationTime time.Duration `mapstructure:"rotation_time"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Load reads configuration from file and environment variables
func Load() (*Config, error) {
	v := viper.New()

	// Set config file path
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./configs/config.yaml"
	}

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, use defaults and env vars
	}

	v.AutomaticEnv()
	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.Server.fitSynth(cfg.Synth)

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "development")

	// Server
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	// Synthesis can hold a request for the full polling window
	v.SetDefault("server.write_timeout", "215s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.shutdown_timeout", "15s")
	v.SetDefault("server.middleware_timeout", "210s")

	// Cache
	v.SetDefault("cache.backend", "memory")

	// Redis
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)

	// Database
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "vibe")
	v.SetDefault("database.database", "vibe")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("database.migrations_path", "file://migrations")

	// SQLite
	v.SetDefault("sqlite.path", "./data/vibe.db")

	// MySQL
	v.SetDefault("mysql.host", "localhost")
	v.SetDefault("mysql.port", 3306)
	v.SetDefault("mysql.user", "vibe")
	v.SetDefault("mysql.database", "vibe")

	// Mongo
	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "vibe")
	v.SetDefault("mongo.collection", "kv_entries")
	v.SetDefault("mongo.timeout", "10s")

	// LLM
	v.SetDefault("llm.default_provider", "openrouter")
	v.SetDefault("llm.openrouter.base_url", "https://openrouter.ai/api/v1")
	v.SetDefault("llm.openrouter.model", "google/gemini-2.5-flash")
	v.SetDefault("llm.ollama.default_model", "llama3")

	// Replicate
	v.SetDefault("replicate.base_url", "https://api.replicate.com/v1")
	v.SetDefault("replicate.model_owner", "black-forest-labs")
	v.SetDefault("replicate.model_name", "flux-schnell")
	v.SetDefault("replicate.poll_interval", "500ms")
	v.SetDefault("replicate.wait_timeout", "120s")

	// v0
	v.SetDefault("v0.base_url", "https://api.v0.dev/v1")

	// Store
	v.SetDefault("store.batch_size", 15)
	v.SetDefault("store.thumbnail_concurrency", 0)
	v.SetDefault("store.thumbnail_rate", 0)
	v.SetDefault("store.thumbnail_burst", 1)

	// Synth
	v.SetDefault("synth.poll_interval", "2s")
	v.SetDefault("synth.max_attempts", 90)

	// Security
	v.SetDefault("security.rate_limit.enabled", false)
	v.SetDefault("security.rate_limit.requests_per_minute", 60)
	v.SetDefault("security.rate_limit.burst", 10)

	// Logging
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.max_age", "168h")
	v.SetDefault("logging.rotation_time", "24h")

	// Metrics
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
}

func bindEnvVars(v *viper.Viper) {
	v.BindEnv("env", "ENV")
	v.BindEnv("server.port", "SERVER_PORT")
	v.BindEnv("cache.backend", "CACHE_BACKEND")

	// Stores
	v.BindEnv("redis.host", "REDIS_HOST")
	v.BindEnv("redis.password", "REDIS_PASSWORD")
	v.BindEnv("database.host", "POSTGRES_HOST")
	v.BindEnv("database.password", "POSTGRES_PASSWORD")
	v.BindEnv("mysql.password", "MYSQL_PASSWORD")
	v.BindEnv("mongo.uri", "MONGO_URI")

	// LLM API Keys
	v.BindEnv("llm.openrouter.api_key", "OPENROUTER_API_KEY")
	v.BindEnv("llm.openai.api_key", "OPENAI_API_KEY")
	v.BindEnv("llm.gemini.api_key", "GEMINI_API_KEY")
	v.BindEnv("llm.anthropic.api_key", "ANTHROPIC_API_KEY")
	v.BindEnv("llm.deepseek.api_key", "DEEPSEEK_API_KEY")
	v.BindEnv("llm.ollama.host", "OLLAMA_HOST")

	// Generation backends
	v.BindEnv("replicate.api_token", "REPLICATE_API_TOKEN")
	v.BindEnv("v0.api_key", "V0_API_KEY")
}
