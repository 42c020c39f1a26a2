package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server ServerConfig
	DB     DBConfig
	OCR    OCRConfig
	LLM    LLMConfig
	Upload UploadConfig
	Match  MatchConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr         string        `mapstructure:"addr"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// StrictMode reports whether validation warnings escalate to hard issues.
// Production runs strict; development is lenient about noisy scans.
func (s *ServerConfig) StrictMode() bool {
	return strings.EqualFold(s.Environment, "production")
}

// DBConfig holds database connection settings. URL accepts postgres:// DSNs
// (pgx) and sqlite: DSNs (modernc) for local runs.
type DBConfig struct {
	URL             string        `mapstructure:"url"`
	MaxConns        int           `mapstructure:"max_conns"`
	MaxIdle         int           `mapstructure:"max_idle"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	DialTimeout     time.Duration `mapstructure:"dial_timeout"`
}

// OCRConfig holds OCR-related settings.
type OCRConfig struct {
	Tesseract     string `mapstructure:"tesseract"`      // binary name or absolute path
	Pdftotext     string `mapstructure:"pdftotext"`      // binary name or absolute path
	Language      string `mapstructure:"language"`       // single tesseract language code
	TessdataDir   string `mapstructure:"tessdata_dir"`
	HeicConverter string `mapstructure:"heic_converter"` // heif-convert | magick | sips
}

// LLMConfig holds settings for the Groq chat-completions extractor.
type LLMConfig struct {
	UseAI       bool          `mapstructure:"use_ai"`
	APIKey      string        `mapstructure:"api_key"`
	Model       string        `mapstructure:"model"`
	BaseURL     string        `mapstructure:"base_url"`
	Temperature float32       `mapstructure:"temperature"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// UploadConfig holds upload handling settings.
type UploadConfig struct {
	Dir       string `mapstructure:"dir"`
	MaxSizeMB int64  `mapstructure:"max_size_mb"`
}

// MatchConfig holds donor matching settings.
type MatchConfig struct {
	MaxDistanceKM float64 `mapstructure:"max_distance_km"`
}

// Load reads configuration from environment variables. Well-known flat names
// (USE_AI_EXTRACTION, GROQ_API_KEY, ...) are bound explicitly; everything else
// uses the BLOODBRIDGE_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("BLOODBRIDGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Flat env names consumed by the pipeline.
	bindings := map[string]string{
		"llm.use_ai":         "USE_AI_EXTRACTION",
		"llm.api_key":        "GROQ_API_KEY",
		"llm.model":          "GROQ_MODEL",
		"ocr.language":       "OCR_LANG",
		"ocr.tessdata_dir":   "TESSDATA_PREFIX",
		"server.environment": "APP_ENV",
		"db.url":             "DB_URL",
		"server.addr":        "HTTP_ADDR",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	// Server defaults
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.url", "")
	v.SetDefault("db.max_conns", 20)
	v.SetDefault("db.max_idle", 5)
	v.SetDefault("db.max_conn_lifetime", "30m")
	v.SetDefault("db.dial_timeout", "3s")

	// OCR defaults
	v.SetDefault("ocr.tesseract", "tesseract")
	v.SetDefault("ocr.pdftotext", "pdftotext")
	v.SetDefault("ocr.language", "eng")
	v.SetDefault("ocr.tessdata_dir", "")
	v.SetDefault("ocr.heic_converter", "")

	// LLM defaults
	v.SetDefault("llm.use_ai", false)
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.model", "llama-3.3-70b-versatile")
	v.SetDefault("llm.base_url", "https://api.groq.com/openai/v1")
	v.SetDefault("llm.temperature", 0.1)
	v.SetDefault("llm.timeout", "45s")

	// Upload defaults
	v.SetDefault("upload.dir", "uploads")
	v.SetDefault("upload.max_size_mb", 10)

	// Match defaults
	v.SetDefault("match.max_distance_km", 20)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Validate checks settings that have no usable default.
func (c *Config) Validate() error {
	if c.DB.URL == "" {
		return fmt.Errorf("DB_URL is required")
	}
	if c.LLM.UseAI && c.LLM.APIKey == "" {
		return fmt.Errorf("GROQ_API_KEY is required when USE_AI_EXTRACTION is enabled")
	}
	return nil
}
