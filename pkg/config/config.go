package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig
	SQLite      SQLiteConfig
	Redis       RedisConfig
	Assistant   AssistantConfig
	NLP         NLPConfig
	Catalog     CatalogConfig
	Attachments AttachmentsConfig
	Auth        AuthConfig
	RateLimit   RateLimitConfig
	Logging     LoggingConfig
}

type ServerConfig struct {
	Host             string
	Port             int
	ReadTimeout      int
	WriteTimeout     int
	BodyLimit        int
	MaxMessageLength int
	AllowedOrigins   []string
	Development      bool
}

type SQLiteConfig struct {
	Path string
}

// RedisConfig backs the conversation store. An empty Host keeps chat
// history in process memory.
type RedisConfig struct {
	Host       string
	Port       int
	Password   string
	DB         int
	HistoryTTL int
}

type AssistantConfig struct {
	Provider    string
	Model       string
	APIKey      string
	Temperature float32
	MaxTokens   int
	TimeoutSec  int
}

type NLPConfig struct {
	Polarity    bool
	Linguistic  bool
	KeywordsTop int
}

// CatalogConfig points at an optional YAML file replacing the embedded
// category tables and FAQ corpus.
type CatalogConfig struct {
	Path string
}

type AttachmentsConfig struct {
	Backend  string
	Dir      string
	S3Bucket string
	S3Prefix string
	MaxBytes int
}

type AuthConfig struct {
	JWTSecret   string
	TokenTTLMin int
	Accounts    []Account
}

type Account struct {
	Email        string
	PasswordHash string
	Role         string
}

type RateLimitConfig struct {
	ChatPerMinute int
}

type LoggingConfig struct {
	Level      string
	Format     string
	OutputPath string
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/campus-buddy")

	v.SetEnvPrefix("CAMPUS_BUDDY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Provider keys are commonly exported under their vendor names.
	if config.Assistant.APIKey == "" {
		switch config.Assistant.Provider {
		case "gemini":
			config.Assistant.APIKey = os.Getenv("GEMINI_API_KEY")
		case "openai":
			config.Assistant.APIKey = os.Getenv("OPENAI_API_KEY")
		}
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) Validate() error {
	switch c.Assistant.Provider {
	case "gemini", "openai", "mock":
	default:
		return fmt.Errorf("invalid assistant provider %q", c.Assistant.Provider)
	}

	switch c.Attachments.Backend {
	case "local", "s3":
	default:
		return fmt.Errorf("invalid attachments backend %q", c.Attachments.Backend)
	}

	if c.Attachments.Backend == "s3" && c.Attachments.S3Bucket == "" {
		return errors.New("attachments.s3Bucket is required for the s3 backend")
	}

	if c.Assistant.TimeoutSec <= 0 {
		return errors.New("assistant.timeoutSec must be positive")
	}

	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.readTimeout", 30)
	v.SetDefault("server.writeTimeout", 30)
	v.SetDefault("server.bodyLimit", 10485760)
	v.SetDefault("server.maxMessageLength", 2000)
	v.SetDefault("server.development", false)

	v.SetDefault("sqlite.path", "./data/complaints.db")

	v.SetDefault("redis.host", "")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.historyTTL", 86400)

	v.SetDefault("assistant.provider", "gemini")
	v.SetDefault("assistant.model", "gemini-2.5-flash")
	v.SetDefault("assistant.temperature", 0.3)
	v.SetDefault("assistant.maxTokens", 512)
	v.SetDefault("assistant.timeoutSec", 20)

	v.SetDefault("nlp.polarity", true)
	v.SetDefault("nlp.linguistic", true)
	v.SetDefault("nlp.keywordsTop", 5)

	v.SetDefault("catalog.path", "")

	v.SetDefault("attachments.backend", "local")
	v.SetDefault("attachments.dir", "./uploads")
	v.SetDefault("attachments.maxBytes", 5242880)

	v.SetDefault("auth.jwtSecret", "change-me")
	v.SetDefault("auth.tokenTTLMin", 120)

	v.SetDefault("rateLimit.chatPerMinute", 30)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.outputPath", "stdout")
}
