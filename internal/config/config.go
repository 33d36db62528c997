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
	CORS      CORSConfig      `mapstructure:"cors"`
	Session   SessionConfig   `mapstructure:"session"`
	Ingest    IngestConfig    `mapstructure:"ingest"`
	LLM       LLMConfig       `mapstructure:"llm"`
	YouTube   YouTubeConfig   `mapstructure:"youtube"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Security  SecurityConfig  `mapstructure:"security"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// IsProduction reports whether the service runs in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
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

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type SessionConfig struct {
	TTLSeconds   int           `mapstructure:"ttl_seconds"`
	ReapInterval time.Duration `mapstructure:"reap_interval"`
}

// TTL returns the idle lifetime of a session
func (c SessionConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

type IngestConfig struct {
	MaxURLs int `mapstructure:"max_urls"`
}

type LLMConfig struct {
	DefaultProvider string          `mapstructure:"default_provider"`
	OpenAI          OpenAIConfig    `mapstructure:"openai"`
	Anthropic       AnthropicConfig `mapstructure:"anthropic"`
	Gemini          GeminiConfig    `mapstructure:"gemini"`
	Ollama          OllamaConfig    `mapstructure:"ollama"`
	DeepSeek        DeepSeekConfig  `mapstructure:"deepseek"`
}

type OpenAIConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	Model       string        `mapstructure:"model"`
	BaseURL     string        `mapstructure:"base_url"`
	Temperature float64       `mapstructure:"temperature"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

type AnthropicConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	Model       string        `mapstructure:"model"`
	BaseURL     string        `mapstructure:"base_url"`
	Temperature float64       `mapstructure:"temperature"`
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxTokens   int           `mapstructure:"max_tokens"`
}

type GeminiConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	Model       string        `mapstructure:"model"`
	Temperature float64       `mapstructure:"temperature"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

type OllamaConfig struct {
	Host        string        `mapstructure:"host"`
	Model       string        `mapstructure:"model"`
	Temperature float64       `mapstructure:"temperature"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

type DeepSeekConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	Model       string        `mapstructure:"model"`
	BaseURL     string        `mapstructure:"base_url"`
	Temperature float64       `mapstructure:"temperature"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

type YouTubeConfig struct {
	APIKey             string        `mapstructure:"api_key"`
	Languages          []string      `mapstructure:"languages"`
	RequestTimeout     time.Duration `mapstructure:"request_timeout"`
	TranscriptCacheTTL time.Duration `mapstructure:"transcript_cache_ttl"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type AuthConfig struct {
	Enabled           bool     `mapstructure:"enabled"`
	ClerkJWKSURL      string   `mapstructure:"clerk_jwks_url"`
	ClerkIssuer       string   `mapstructure:"clerk_issuer"`
	AuthorizedParties []string `mapstructure:"authorized_parties"`
	JWTSecret         string   `mapstructure:"jwt_secret"`
}

type SecurityConfig struct {
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

type RateLimitConfig struct {
	RequestsPerMinute int `mapstructure:"requests_per_minute"`
	Burst             int `mapstructure:"burst"`
}

type LoggingConfig struct {
	Level        string        `mapstructure:"level"`
	Format       string        `mapstructure:"format"`
	File         string        `mapstructure:"file"`
	MaxAge       time.Duration `mapstructure:"max_age"`
	RotationTime time.Duration `mapstructure:"rotation_time"`
}

type TelemetryConfig struct {
	Enabled      bool           `mapstructure:"enabled"`
	ServiceName  string         `mapstructure:"service_name"`
	OTLPEndpoint string         `mapstructure:"otlp_endpoint"`
	Langfuse     LangfuseConfig `mapstructure:"langfuse"`
}

type LangfuseConfig struct {
	PublicKey string `mapstructure:"public_key"`
	SecretKey string `mapstructure:"secret_key"`
	Host      string `mapstructure:"host"`
}

// Configured reports whether both Langfuse keys are present
func (c LangfuseConfig) Configured() bool {
	return c.PublicKey != "" && c.SecretKey != ""
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

	// Override with environment variables
	v.AutomaticEnv()
	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
		if cfg.IsProduction() {
			cfg.Logging.Format = "json"
		}
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "development")

	// Server
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "120s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "15s")
	v.SetDefault("server.middleware_timeout", "120s")

	// CORS
	v.SetDefault("cors.allowed_origins", []string{"http://localhost:3000", "http://localhost:3001"})

	// Sessions
	v.SetDefault("session.ttl_seconds", 3600)
	v.SetDefault("session.reap_interval", "5m")

	// Ingest
	v.SetDefault("ingest.max_urls", 10)

	// LLM
	v.SetDefault("llm.default_provider", "openai")
	v.SetDefault("llm.openai.model", "gpt-4o")
	v.SetDefault("llm.openai.temperature", 0.7)
	v.SetDefault("llm.openai.timeout", "120s")
	v.SetDefault("llm.anthropic.model", "claude-3-5-haiku-latest")
	v.SetDefault("llm.anthropic.temperature", 0.1)
	v.SetDefault("llm.anthropic.timeout", "60s")
	v.SetDefault("llm.anthropic.max_tokens", 4096)
	v.SetDefault("llm.gemini.model", "gemini-2.5-flash")
	v.SetDefault("llm.gemini.temperature", 0.2)
	v.SetDefault("llm.gemini.timeout", "120s")
	v.SetDefault("llm.ollama.model", "llama3.1")
	v.SetDefault("llm.ollama.temperature", 0.2)
	v.SetDefault("llm.ollama.timeout", "300s")
	v.SetDefault("llm.deepseek.model", "deepseek-chat")
	v.SetDefault("llm.deepseek.temperature", 0.7)
	v.SetDefault("llm.deepseek.timeout", "120s")

	// YouTube
	v.SetDefault("youtube.languages", []string{"en"})
	v.SetDefault("youtube.request_timeout", "20s")
	v.SetDefault("youtube.transcript_cache_ttl", "24h")

	// Redis
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)

	// Auth
	v.SetDefault("auth.enabled", true)

	// Security
	v.SetDefault("security.rate_limit.requests_per_minute", 60)
	v.SetDefault("security.rate_limit.burst", 10)

	// Logging
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.max_age", "168h")
	v.SetDefault("logging.rotation_time", "24h")

	// Telemetry
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "travel-planner")
	v.SetDefault("telemetry.langfuse.host", "https://cloud.langfuse.com")
}

func bindEnvVars(v *viper.Viper) {
	v.BindEnv("env", "ENVIRONMENT")
	v.BindEnv("server.port", "PORT")
	v.BindEnv("cors.allowed_origins", "CORS_ORIGINS")
	v.BindEnv("session.ttl_seconds", "SESSION_TTL_SECONDS")

	// Redis
	v.BindEnv("redis.enabled", "REDIS_ENABLED")
	v.BindEnv("redis.host", "REDIS_HOST")
	v.BindEnv("redis.password", "REDIS_PASSWORD")

	// Auth
	v.BindEnv("auth.enabled", "AUTH_ENABLED")
	v.BindEnv("auth.clerk_jwks_url", "CLERK_JWKS_URL")
	v.BindEnv("auth.clerk_issuer", "CLERK_ISSUER")
	v.BindEnv("auth.jwt_secret", "JWT_SECRET")

	// LLM API Keys
	v.BindEnv("llm.default_provider", "LLM_PROVIDER")
	v.BindEnv("llm.openai.api_key", "OPENAI_API_KEY")
	v.BindEnv("llm.anthropic.api_key", "ANTHROPIC_API_KEY")
	v.BindEnv("llm.gemini.api_key", "GEMINI_API_KEY")
	v.BindEnv("llm.deepseek.api_key", "DEEPSEEK_API_KEY")
	v.BindEnv("llm.ollama.host", "OLLAMA_HOST")

	// YouTube
	v.BindEnv("youtube.api_key", "YOUTUBE_API_KEY")

	// Logging
	v.BindEnv("logging.level", "LOG_LEVEL")
	v.BindEnv("logging.file", "LOG_FILE")

	// Observability
	v.BindEnv("telemetry.enabled", "TELEMETRY_ENABLED")
	v.BindEnv("telemetry.otlp_endpoint", "OTEL_EXPORTER_OTLP_ENDPOINT")
	v.BindEnv("telemetry.langfuse.public_key", "LANGFUSE_PUBLIC_KEY")
	v.BindEnv("telemetry.langfuse.secret_key", "LANGFUSE_SECRET_KEY")
	v.BindEnv("telemetry.langfuse.host", "LANGFUSE_HOST")
}
