package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port string `mapstructure:"port" json:"port"`

	// Auth. Empty disables bearer checks.
	APIKey string `mapstructure:"api_key" json:"-"`

	// Run artifacts
	OutputDir string `mapstructure:"output_dir" json:"output_dir"`

	// Summarization server (OpenAI-compatible, LM Studio by default)
	LMStudioURL    string        `mapstructure:"lm_studio_url" json:"lm_studio_url"`
	LMStudioModel  string        `mapstructure:"lm_studio_model" json:"lm_studio_model"`
	LMStudioAPIKey string        `mapstructure:"lm_studio_api_key" json:"-"`
	SystemPrompt   string        `mapstructure:"system_prompt" json:"system_prompt"`
	Temperature    float64       `mapstructure:"temperature" json:"temperature"`
	MaxTokens      int           `mapstructure:"max_tokens" json:"max_tokens"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" json:"request_timeout"`
	PaceDelay      time.Duration `mapstructure:"pace_delay" json:"pace_delay"`
	ProbeAttempts  uint          `mapstructure:"probe_attempts" json:"probe_attempts"`

	// Segmentation and chunking
	MaxChunkSize      int      `mapstructure:"max_chunk_size" json:"max_chunk_size"`
	SplitKeywords     []string `mapstructure:"split_keywords" json:"split_keywords"`
	StopPhrases       []string `mapstructure:"stop_phrases" json:"stop_phrases"`
	MinChapterLength  int      `mapstructure:"min_chapter_length" json:"min_chapter_length"`
	MaxPreambleLength int      `mapstructure:"max_preamble_length" json:"max_preamble_length"`
	KeepPreamble      bool     `mapstructure:"keep_preamble" json:"keep_preamble"`
	ChapterHeading    string   `mapstructure:"chapter_heading" json:"chapter_heading"`

	// Upload limits
	MaxUploadBytes int64 `mapstructure:"max_upload_bytes" json:"max_upload_bytes"`

	// PDF
	PDFFallbackPdftotext bool `mapstructure:"pdf_fallback_pdftotext" json:"pdf_fallback_pdftotext"`

	// Export
	PandocPath         string `mapstructure:"pandoc_path" json:"pandoc_path"`
	DOCXFallbackNative bool   `mapstructure:"docx_fallback_native" json:"docx_fallback_native"`
}

var defaults = map[string]any{
	"port":                   "8000",
	"api_key":                "",
	"output_dir":             "output",
	"lm_studio_url":          "http://localhost:1234",
	"lm_studio_model":        "local-model",
	"lm_studio_api_key":      "lm-studio",
	"system_prompt":          "",
	"temperature":            0.7,
	"max_tokens":             2000,
	"request_timeout":        300 * time.Second,
	"pace_delay":             500 * time.Millisecond,
	"probe_attempts":         3,
	"max_chunk_size":         15000,
	"split_keywords":         []string{},
	"stop_phrases":           []string{},
	"min_chapter_length":     100,
	"max_preamble_length":    2000,
	"keep_preamble":          false,
	"chapter_heading":        "Chapter",
	"max_upload_bytes":       int64(52428800), // 50MB
	"pdf_fallback_pdftotext": true,
	"pandoc_path":            "pandoc",
	"docx_fallback_native":   true,
}

// Load reads defaults, an optional config file and DOCSUM_* environment
// variables, in increasing order of precedence. An empty cfgFile searches
// for config.{json,yaml} in the working directory.
func Load(cfgFile string) (Config, error) {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	v.SetEnvPrefix("DOCSUM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.SplitKeywords = compact(cfg.SplitKeywords)
	cfg.StopPhrases = compact(cfg.StopPhrases)
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("port is required")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output_dir is required")
	}
	if c.LMStudioURL == "" {
		return fmt.Errorf("lm_studio_url is required")
	}
	if c.MaxChunkSize <= 0 {
		return fmt.Errorf("max_chunk_size must be positive, got %d", c.MaxChunkSize)
	}
	if c.MinChapterLength < 0 {
		return fmt.Errorf("min_chapter_length must not be negative, got %d", c.MinChapterLength)
	}
	if c.MaxPreambleLength < 0 {
		return fmt.Errorf("max_preamble_length must not be negative, got %d", c.MaxPreambleLength)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive, got %s", c.RequestTimeout)
	}
	if c.PaceDelay < 0 {
		return fmt.Errorf("pace_delay must not be negative, got %s", c.PaceDelay)
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("temperature must be within [0, 2], got %g", c.Temperature)
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("max_tokens must be positive, got %d", c.MaxTokens)
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("max_upload_bytes must be positive, got %d", c.MaxUploadBytes)
	}
	return nil
}

// compact trims entries and drops empty ones.
func compact(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
