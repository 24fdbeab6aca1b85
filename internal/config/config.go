package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"kavak-agent/internal/service"
)

// Config holds all configuration for the application
type Config struct {
	PostgreSQL   PostgreSQLConfig
	Redis        RedisConfig
	Server       ServerConfig
	Catalog      CatalogConfig
	Conversation ConversationConfig
	Finance      FinanceConfig
	Matching     MatchingConfig
	Aliases      AliasConfig
	Knowledge    KnowledgeConfig
	Webhook      WebhookConfig
	Logging      LoggingConfig
	OpenAI       OpenAIConfig
}

// PostgreSQLConfig holds PostgreSQL database configuration
type PostgreSQLConfig struct {
	DSN                string
	Host               string
	Port               int
	User               string
	Password           string
	Database           string
	SSLMode            string
	MaxConnections     int
	MaxIdleConnections int
	Enabled            bool
}

// RedisConfig holds the Redis connection used for conversation state
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           int
	Host           string
	GinMode        string
	AllowedOrigins string
	AllowedMethods string
	AllowedHeaders string
}

// CatalogConfig selects where the car catalog is loaded from
type CatalogConfig struct {
	Source string // csv | postgres
	Path   string
	Watch  bool
}

// ConversationConfig controls per-channel state
type ConversationConfig struct {
	PageSize   int
	Backend    string // memory | redis
	TTL        time.Duration
	MaxRetries int
	KeyPrefix  string
}

// FinanceConfig holds loan defaults
type FinanceConfig struct {
	AnnualRate   float64
	DefaultTerm  int
	AllowedTerms []int
}

// FieldMatching holds the acceptance thresholds for one entity field
type FieldMatching struct {
	Phrase   float64
	TokenSet float64
	Token    float64
}

// MatchingConfig holds fuzzy matching thresholds per field
type MatchingConfig struct {
	Brand   FieldMatching
	Model   FieldMatching
	Version FieldMatching
}

// AliasConfig points at an optional alias override file
type AliasConfig struct {
	File string
}

// KnowledgeConfig controls knowledge-base answering
type KnowledgeConfig struct {
	TopK    int
	Timeout time.Duration
}

// WebhookConfig holds WhatsApp (Twilio) webhook settings
type WebhookConfig struct {
	ValidateSignature bool
	AuthToken         string
	PublicBaseURL     string
	ChunkSize         int
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// OpenAIConfig holds OpenAI-compatible API configuration
type OpenAIConfig struct {
	APIKey              string
	APIBase             string
	ChatModel           string
	ChatTemperature     float64
	ChatMaxTokens       int
	EmbeddingModel      string
	EmbeddingDimensions int
	BatchSize           int
	Timeout             int
	Enabled             bool
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (optional)
	_ = godotenv.Load()

	cfg := &Config{
		PostgreSQL: PostgreSQLConfig{
			DSN:                getEnv("DATABASE_URL", getEnv("POSTGRESQL_URI", getEnv("PG_DSN", ""))),
			Host:               getEnv("PG_HOST", "localhost"),
			Port:               getEnvAsInt("PG_PORT", 5432),
			User:               getEnv("PG_USER", "postgres"),
			Password:           getEnv("PG_PASSWORD", ""),
			Database:           getEnv("PG_DATABASE", "kavak"),
			SSLMode:            getEnv("PG_SSLMODE", "disable"),
			MaxConnections:     getEnvAsInt("PG_MAX_CONNECTIONS", 25),
			MaxIdleConnections: getEnvAsInt("PG_MAX_IDLE_CONNECTIONS", 5),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Server: ServerConfig{
			Port:           getEnvAsInt("SERVER_PORT", 8080),
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			GinMode:        getEnv("GIN_MODE", "release"),
			AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			AllowedMethods: getEnv("CORS_ALLOWED_METHODS", "GET,POST,OPTIONS"),
			AllowedHeaders: getEnv("CORS_ALLOWED_HEADERS", "Content-Type,Authorization,X-Request-ID"),
		},
		Catalog: CatalogConfig{
			Source: strings.ToLower(getEnv("CATALOG_SOURCE", "csv")),
			Path:   getEnv("CATALOG_PATH", "data/catalog.csv"),
			Watch:  getEnvAsBool("CATALOG_WATCH", true),
		},
		Conversation: ConversationConfig{
			PageSize:   getEnvAsInt("PAGE_SIZE", 5),
			Backend:    strings.ToLower(getEnv("STATE_BACKEND", "memory")),
			TTL:        getEnvAsDuration("STATE_TTL", 24*time.Hour),
			MaxRetries: getEnvAsInt("STATE_MAX_RETRIES", 5),
			KeyPrefix:  getEnv("STATE_KEY_PREFIX", "kavak:conv:"),
		},
		Finance: FinanceConfig{
			AnnualRate:   getEnvAsFloat("ANNUAL_RATE", 0.10),
			DefaultTerm:  getEnvAsInt("DEFAULT_TERM", 48),
			AllowedTerms: getEnvAsIntList("ALLOWED_TERMS", []int{36, 48, 60, 72}),
		},
		Matching: MatchingConfig{
			Brand: FieldMatching{
				Phrase:   getEnvAsFloat("MATCH_BRAND_PHRASE", 90),
				TokenSet: getEnvAsFloat("MATCH_BRAND_TOKEN_SET", 88),
				Token:    getEnvAsFloat("MATCH_BRAND_TOKEN", 0.80),
			},
			Model: FieldMatching{
				Phrase:   getEnvAsFloat("MATCH_MODEL_PHRASE", 88),
				TokenSet: getEnvAsFloat("MATCH_MODEL_TOKEN_SET", 86),
				Token:    getEnvAsFloat("MATCH_MODEL_TOKEN", 0.78),
			},
			Version: FieldMatching{
				Phrase:   getEnvAsFloat("MATCH_VERSION_PHRASE", 85),
				TokenSet: getEnvAsFloat("MATCH_VERSION_TOKEN_SET", 85),
				Token:    getEnvAsFloat("MATCH_VERSION_TOKEN", 0.85),
			},
		},
		Aliases: AliasConfig{
			File: getEnv("ALIAS_FILE", ""),
		},
		Knowledge: KnowledgeConfig{
			TopK:    getEnvAsInt("KB_TOP_K", 4),
			Timeout: getEnvAsDuration("KB_TIMEOUT", 20*time.Second),
		},
		Webhook: WebhookConfig{
			ValidateSignature: getEnvAsBool("TWILIO_VALIDATE", false),
			AuthToken:         getEnv("TWILIO_AUTH_TOKEN", ""),
			PublicBaseURL:     strings.TrimRight(getEnv("PUBLIC_BASE_URL", ""), "/"),
			ChunkSize:         getEnvAsInt("WHATSAPP_CHUNK_SIZE", 1200),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		OpenAI: OpenAIConfig{
			APIKey:              getEnv("OPENAI_API_KEY", ""),
			APIBase:             strings.TrimRight(getEnv("OPENAI_API_BASE", "https://api.openai.com/v1"), "/"),
			ChatModel:           getEnv("OPENAI_CHAT_MODEL", "gpt-4o-mini"),
			ChatTemperature:     getEnvAsFloat("OPENAI_CHAT_TEMPERATURE", 0.2),
			ChatMaxTokens:       getEnvAsInt("OPENAI_CHAT_MAX_TOKENS", 600),
			EmbeddingModel:      getEnv("OPENAI_EMBEDDING_MODEL", "text-embedding-3-small"),
			EmbeddingDimensions: getEnvAsInt("OPENAI_EMBEDDING_DIMENSIONS", 1536),
			BatchSize:           getEnvAsInt("OPENAI_BATCH_SIZE", 100),
			Timeout:             getEnvAsInt("OPENAI_TIMEOUT", 30),
			Enabled:             getEnv("OPENAI_API_KEY", "") != "",
		},
	}
	cfg.PostgreSQL.Enabled = cfg.PostgreSQL.DSN != "" || os.Getenv("PG_HOST") != ""

	if cfg.Catalog.Source != "csv" && cfg.Catalog.Source != "postgres" {
		return nil, fmt.Errorf("invalid CATALOG_SOURCE %q: want csv or postgres", cfg.Catalog.Source)
	}
	if cfg.Conversation.Backend != "memory" && cfg.Conversation.Backend != "redis" {
		return nil, fmt.Errorf("invalid STATE_BACKEND %q: want memory or redis", cfg.Conversation.Backend)
	}
	if cfg.Catalog.Source == "postgres" && !cfg.PostgreSQL.Enabled {
		return nil, fmt.Errorf("CATALOG_SOURCE=postgres requires DATABASE_URL or PG_HOST")
	}
	if cfg.Conversation.PageSize <= 0 {
		cfg.Conversation.PageSize = 5
	}

	return cfg, nil
}

// GetPostgreSQLDSN returns PostgreSQL connection string
func (c *Config) GetPostgreSQLDSN() string {
	if c.PostgreSQL.DSN != "" {
		return c.PostgreSQL.DSN
	}

	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgreSQL.Host,
		c.PostgreSQL.Port,
		c.PostgreSQL.User,
		c.PostgreSQL.Password,
		c.PostgreSQL.Database,
		c.PostgreSQL.SSLMode,
	)
}

// MatchingThresholds projects the matching section into resolver options.
func (c *Config) MatchingThresholds() service.MatchThresholds {
	conv := func(f FieldMatching) service.FieldThresholds {
		return service.FieldThresholds{Phrase: f.Phrase, TokenSet: f.TokenSet, Token: f.Token}
	}
	return service.MatchThresholds{
		Brand:   conv(c.Matching.Brand),
		Model:   conv(c.Matching.Model),
		Version: conv(c.Matching.Version),
	}
}

// FinanceSettings projects the finance section into quotation options.
func (c *Config) FinanceSettings() service.FinanceSettings {
	return service.FinanceSettings{
		AnnualRate:   c.Finance.AnnualRate,
		DefaultTerm:  c.Finance.DefaultTerm,
		AllowedTerms: append([]int(nil), c.Finance.AllowedTerms...),
	}
}

// OpenAIOptions projects the OpenAI section into client options.
func (c *Config) OpenAIOptions() service.OpenAIOptions {
	return service.OpenAIOptions{
		APIKey:              c.OpenAI.APIKey,
		APIBase:             c.OpenAI.APIBase,
		ChatModel:           c.OpenAI.ChatModel,
		ChatTemperature:     c.OpenAI.ChatTemperature,
		ChatMaxTokens:       c.OpenAI.ChatMaxTokens,
		EmbeddingModel:      c.OpenAI.EmbeddingModel,
		EmbeddingDimensions: c.OpenAI.EmbeddingDimensions,
		BatchSize:           c.OpenAI.BatchSize,
		Timeout:             time.Duration(c.OpenAI.Timeout) * time.Second,
	}
}

// Helper functions

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer value for %s, using default %d", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Warning: Invalid float value for %s, using default %f", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid boolean value for %s, using default %t", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid duration value for %s, using default %s", key, defaultValue)
		return defaultValue
	}
	return value
}

// getEnvAsIntList parses a comma-separated list such as "36,48,60".
func getEnvAsIntList(key string, defaultValue []int) []int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var out []int
	for _, part := range strings.Split(valueStr, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := strconv.Atoi(part)
		if err != nil || v <= 0 {
			log.Printf("Warning: Invalid integer list for %s, using default %v", key, defaultValue)
			return defaultValue
		}
		out = append(out, v)
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
