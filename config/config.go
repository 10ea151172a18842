package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	ProviderGemini = "gemini"
	ProviderGroq   = "groq"
	ProviderOpenAI = "openai"

	DEFAULT_USER_AGENT      = "honestreviews-app/1.0"
	DEFAULT_PORT            = "8000"
	DEFAULT_REQUEST_TIMEOUT = 90 * time.Second
	DEFAULT_CACHE_TTL       = 10 * time.Minute
	DEFAULT_GEMINI_MODEL    = "gemini-2.5-flash"
	DEFAULT_GROQ_MODEL      = "llama-3.3-70b-versatile"
	DEFAULT_OPENAI_MODEL    = "gpt-4o-mini"
	GROQ_BASE_URL           = "https://api.groq.com/openai/v1"
)

// Config is resolved once at process start and handed to constructors.
type Config struct {
	Reddit RedditConfig
	LLM    LLMConfig
	Server ServerConfig
	Valkey ValkeyConfig
	Kafka  KafkaConfig

	FetchWorkers   int
	RequestTimeout time.Duration
	CategoriesFile string
	LogLevel       slog.Level
}

type RedditConfig struct {
	ClientID     string
	ClientSecret string
	UserAgent    string
	CacheTTL     time.Duration
}

type LLMConfig struct {
	Provider string
	APIKey   string
	BaseURL  string
	Model    string
}

type ServerConfig struct {
	Port string
}

type ValkeyConfig struct {
	Address  string
	Password string
	UseTLS   bool
}

// Enabled reports whether a Valkey address was configured.
func (v ValkeyConfig) Enabled() bool { return v.Address != "" }

type KafkaConfig struct {
	Broker string
	Topic  string
}

func (k KafkaConfig) Enabled() bool { return k.Broker != "" }

func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		// plain integers are seconds, like the interval settings in the producer
		secs, convErr := strconv.Atoi(raw)
		if convErr != nil {
			slog.Warn("[Config] Invalid duration, using default",
				slog.String("key", key),
				slog.String("value", raw))
			return defaultValue
		}
		return time.Duration(secs) * time.Second
	}
	return d
}

func getInt(key string, defaultValue int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		slog.Warn("[Config] Invalid integer, using default",
			slog.String("key", key),
			slog.String("value", raw))
		return defaultValue
	}
	return n
}

// ParseLevel maps LOG_LEVEL values onto slog levels. Unknown values mean info.
func ParseLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Load resolves the process environment into a Config.
func Load() Config {
	cfg := Config{
		Reddit: RedditConfig{
			ClientID:     os.Getenv("REDDIT_CLIENT_ID"),
			ClientSecret: os.Getenv("REDDIT_CLIENT_SECRET"),
			UserAgent:    getEnv("REDDIT_USER_AGENT", DEFAULT_USER_AGENT),
			CacheTTL:     getDuration("REDDIT_CACHE_TTL", DEFAULT_CACHE_TTL),
		},
		Server: ServerConfig{
			Port: getEnv("PORT", DEFAULT_PORT),
		},
		Valkey: ValkeyConfig{
			Address:  os.Getenv("VALKEY_INIT_ADDRESS"),
			Password: os.Getenv("VALKEY_PASSWORD"),
			UseTLS:   os.Getenv("VALKEY_TLS") == "true",
		},
		Kafka: KafkaConfig{
			Broker: os.Getenv("KAFKA_BROKER"),
			Topic:  getEnv("KAFKA_ANALYSIS_TOPIC", "analysis-completed"),
		},
		FetchWorkers:   getInt("FETCH_WORKERS", 1),
		RequestTimeout: getDuration("REQUEST_TIMEOUT", DEFAULT_REQUEST_TIMEOUT),
		CategoriesFile: os.Getenv("CATEGORIES_FILE"),
		LogLevel:       ParseLevel(os.Getenv("LOG_LEVEL")),
	}
	cfg.LLM = resolveLLM()
	return cfg
}

// resolveLLM picks the generation backend. An explicit LLM_PROVIDER wins,
// otherwise the first provider with a key set is used.
func resolveLLM() LLMConfig {
	provider := strings.ToLower(os.Getenv("LLM_PROVIDER"))
	if provider == "" {
		switch {
		case os.Getenv("GEMINI_API_KEY") != "":
			provider = ProviderGemini
		case os.Getenv("GROQ_API_KEY") != "":
			provider = ProviderGroq
		default:
			provider = ProviderOpenAI
		}
	}

	switch provider {
	case ProviderGemini:
		return LLMConfig{
			Provider: ProviderGemini,
			APIKey:   os.Getenv("GEMINI_API_KEY"),
			Model:    getEnv("GEMINI_MODEL", DEFAULT_GEMINI_MODEL),
		}
	case ProviderGroq:
		return LLMConfig{
			Provider: ProviderGroq,
			APIKey:   os.Getenv("GROQ_API_KEY"),
			BaseURL:  GROQ_BASE_URL,
			Model:    getEnv("OPENAI_MODEL", DEFAULT_GROQ_MODEL),
		}
	default:
		return LLMConfig{
			Provider: provider,
			APIKey:   os.Getenv("OPENAI_API_KEY"),
			BaseURL:  os.Getenv("OPENAI_BASE_URL"),
			Model:    getEnv("OPENAI_MODEL", DEFAULT_OPENAI_MODEL),
		}
	}
}

// Validate reports every missing credential at once.
func (c Config) Validate() error {
	var errs []error
	if c.Reddit.ClientID == "" || c.Reddit.ClientSecret == "" {
		errs = append(errs, errors.New("REDDIT_CLIENT_ID and REDDIT_CLIENT_SECRET are required"))
	}
	switch c.LLM.Provider {
	case ProviderGemini, ProviderGroq, ProviderOpenAI:
	default:
		errs = append(errs, fmt.Errorf("unknown LLM_PROVIDER %q", c.LLM.Provider))
	}
	if c.LLM.APIKey == "" {
		errs = append(errs, fmt.Errorf("missing API key for provider %q", c.LLM.Provider))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, errors.New("REQUEST_TIMEOUT must be positive"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("[Config] invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}
