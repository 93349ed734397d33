// Package config reads service settings from the environment. A .env file in
// the working directory is loaded first when present.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"
)

const (
	BackendOpenAI = "openai"
	BackendLlama  = "llama"

	DefaultPrompt = "Describe the content of these images."
)

type Config struct {
	Port string

	// model
	Backend       string
	OpenAIKey     string
	OpenAIBaseURL string
	ModelName     string
	LlamaServer   string
	LlamaSeed     int
	MaxNewTokens  int
	Temperature   float32
	ModelTimeout  time.Duration
	ModelRPM      int
	MaxImageSide  int
	DefaultPrompt string

	MaxUploadBytes int64

	// optional collaborators, disabled when empty
	DatabaseURL string
	S3          S3Config

	TelegramToken string
	AdminChatID   int64

	APIToken           string
	RateLimitPerMinute int
}

type S3Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	Secure    bool
}

func (c S3Config) Enabled() bool { return c.Endpoint != "" && c.Bucket != "" }

// Load reads .env (if any) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds a Config from the process environment only.
func FromEnv() (*Config, error) {
	p := &parser{}

	cfg := &Config{
		Port: str("PORT", "8000"),

		Backend:       strings.ToLower(str("MODEL_BACKEND", BackendOpenAI)),
		OpenAIKey:     os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL: os.Getenv("OPENAI_BASE_URL"),
		ModelName:     str("MODEL_NAME", "gpt-4o-mini"),
		LlamaServer:   str("LLAMA_SERVER", "http://localhost:8080"),
		LlamaSeed:     p.int("LLAMA_SEED", 0),
		MaxNewTokens:  p.int("MAX_NEW_TOKENS", 1000),
		Temperature:   float32(p.float("TEMPERATURE", 0)),
		ModelTimeout:  p.duration("MODEL_TIMEOUT", 120*time.Second),
		ModelRPM:      p.int("MODEL_RPM", 0),
		MaxImageSide:  p.int("MAX_IMAGE_SIDE", 1344),
		DefaultPrompt: str("DEFAULT_PROMPT", DefaultPrompt),

		MaxUploadBytes: p.bytes("MAX_UPLOAD_BYTES", 32<<20),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		S3: S3Config{
			Endpoint:  os.Getenv("S3_ENDPOINT"),
			AccessKey: os.Getenv("S3_ACCESS_KEY"),
			SecretKey: os.Getenv("S3_SECRET_KEY"),
			Bucket:    os.Getenv("S3_BUCKET"),
			Region:    os.Getenv("S3_REGION"),
			Secure:    p.bool("S3_SECURE", true),
		},

		TelegramToken: os.Getenv("TELEGRAM_TOKEN"),
		AdminChatID:   p.int64("ADMIN_CHAT_ID", 0),

		APIToken:           os.Getenv("API_TOKEN"),
		RateLimitPerMinute: p.int("RATE_LIMIT_PER_MINUTE", 60),
	}
	if p.err != nil {
		return nil, p.err
	}

	switch cfg.Backend {
	case BackendOpenAI:
		if cfg.OpenAIKey == "" && cfg.OpenAIBaseURL == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY not set")
		}
	case BackendLlama:
		if cfg.LlamaServer == "" {
			return nil, fmt.Errorf("LLAMA_SERVER not set")
		}
	default:
		return nil, fmt.Errorf("unknown MODEL_BACKEND %q", cfg.Backend)
	}

	return cfg, nil
}

func str(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// parser keeps the first conversion error so FromEnv can report it once.
type parser struct {
	err error
}

func (p *parser) fail(key, v string, err error) {
	if p.err == nil {
		p.err = fmt.Errorf("invalid %s=%q: %w", key, v, err)
	}
}

func (p *parser) int(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.fail(key, v, err)
		return def
	}
	return n
}

func (p *parser) int64(key string, def int64) int64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		p.fail(key, v, err)
		return def
	}
	return n
}

func (p *parser) float(key string, def float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 32)
	if err != nil {
		p.fail(key, v, err)
		return def
	}
	return f
}

func (p *parser) bool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.fail(key, v, err)
		return def
	}
	return b
}

// duration accepts Go durations ("90s") or a bare number of seconds.
func (p *parser) duration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		p.fail(key, v, err)
		return def
	}
	return d
}

// bytes accepts plain byte counts or sizes like "20MB" and "32MiB".
func (p *parser) bytes(key string, def int64) int64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := humanize.ParseBytes(v)
	if err != nil {
		p.fail(key, v, err)
		return def
	}
	return int64(n)
}
