package config

import (
	_ "embed"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/kozaktomas/frushion/internal/constants"
	"gopkg.in/yaml.v3"
)

//go:embed trends.yaml
var trendsYAML []byte

//go:embed prices.yaml
var pricesYAML []byte

type Config struct {
	Web      WebConfig
	Camera   CameraConfig
	Capture  CaptureConfig
	Analysis AnalysisConfig
	OpenAI   OpenAIConfig
	Gemini   GeminiConfig
	Ollama   OllamaConfig
	LlamaCpp LlamaCppConfig
	Database DatabaseConfig
	Trends   TrendsConfig
	Prices   PricesConfig
}

type WebConfig struct {
	AllowedOrigins []string // CORS allowlist, localhost is always allowed
}

type CameraConfig struct {
	Source      string // "dir" or "snapshot"
	Dir         string // directory replayed by the dir source
	SnapshotURL string // JPEG snapshot endpoint of an IP camera
	Width       int
	Height      int
}

type CaptureConfig struct {
	Trigger   string        // "interval", "continuous" or "manual"
	Interval  time.Duration // used by the interval trigger, 0 picks the mode default
	FrameRate int           // used by the continuous trigger
	Mode      string        // "skin", "expression", "score" or "brightness"
}

type AnalysisConfig struct {
	ServiceURL         string // external analysis service, e.g. http://localhost:5000
	ExpressionProvider string // "simulated", "openai", "gemini", "ollama", "llamacpp" or "remote"
	SkinSource         string // "frame" derives values from pixels, "random" simulates them
}

type OpenAIConfig struct {
	Token string
}

type GeminiConfig struct {
	APIKey string
}

type OllamaConfig struct {
	URL   string // defaults to http://localhost:11434
	Model string // defaults to llama3.2-vision:11b
}

type LlamaCppConfig struct {
	URL   string // defaults to http://localhost:8080
	Model string // defaults to llava
}

type DatabaseConfig struct {
	URL          string // PostgreSQL connection URL
	MariaDBDSN   string // MariaDB DSN, used when URL is empty
	MaxOpenConns int    // Maximum open connections (default 25)
	MaxIdleConns int    // Maximum idle connections (default 5)
}

type PricesConfig struct {
	Models map[string]ModelPricing `yaml:"models"`
}

type ModelPricing struct {
	Standard RequestPricing `yaml:"standard"`
}

// RequestPricing holds per 1M token prices in USD
type RequestPricing struct {
	Input  float64 `yaml:"input"`
	Output float64 `yaml:"output"`
}

type TrendsConfig struct {
	Delay time.Duration // artificial latency of the feed
	Items []TrendItem   `yaml:"trends"`
}

type TrendItem struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Category    string `yaml:"category"`
	Tag         string `yaml:"tag"`
	Icon        string `yaml:"icon"`
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envDuration reads an environment variable as a Go duration ("100ms", "10s").
// Returns the default value if the env var is unset, empty, invalid, or not positive.
func envDuration(key string, defaultVal time.Duration) time.Duration {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d
	}
	return defaultVal
}

// envString reads an environment variable, lowercased and trimmed, with a default.
func envString(key, defaultVal string) string {
	s := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if s == "" {
		return defaultVal
	}
	return s
}

// envList reads a comma-separated environment variable, dropping empty entries.
func envList(key string) []string {
	var out []string
	for item := range strings.SplitSeq(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func Load() *Config {
	var trends TrendsConfig
	if err := yaml.Unmarshal(trendsYAML, &trends); err != nil {
		// This is an embedded file so this error should never happen in practice
		panic("failed to unmarshal embedded trends.yaml: " + err.Error())
	}
	trends.Delay = envDuration("TRENDS_DELAY", constants.DefaultTrendsDelay)

	var prices PricesConfig
	if err := yaml.Unmarshal(pricesYAML, &prices); err != nil {
		panic("failed to unmarshal embedded prices.yaml: " + err.Error())
	}

	return &Config{
		Web: WebConfig{
			AllowedOrigins: envList("WEB_ALLOWED_ORIGINS"),
		},
		Camera: CameraConfig{
			Source:      envString("CAMERA_SOURCE", "dir"),
			Dir:         os.Getenv("CAMERA_DIR"),
			SnapshotURL: os.Getenv("CAMERA_SNAPSHOT_URL"),
			Width:       envInt("CAMERA_WIDTH", constants.DefaultCameraWidth),
			Height:      envInt("CAMERA_HEIGHT", constants.DefaultCameraHeight),
		},
		Capture: CaptureConfig{
			Trigger:   envString("CAPTURE_TRIGGER", "interval"),
			Interval:  envDuration("CAPTURE_INTERVAL", 0),
			FrameRate: envInt("CAPTURE_FPS", constants.DefaultFrameRate),
			Mode:      envString("CAPTURE_MODE", "skin"),
		},
		Analysis: AnalysisConfig{
			ServiceURL:         os.Getenv("ANALYSIS_SERVICE_URL"),
			ExpressionProvider: envString("EXPRESSION_PROVIDER", "simulated"),
			SkinSource:         envString("SKIN_SOURCE", "frame"),
		},
		OpenAI: OpenAIConfig{
			Token: os.Getenv("OPENAI_TOKEN"),
		},
		Gemini: GeminiConfig{
			APIKey: os.Getenv("GEMINI_API_KEY"),
		},
		Ollama: OllamaConfig{
			URL:   os.Getenv("OLLAMA_URL"),
			Model: os.Getenv("OLLAMA_MODEL"),
		},
		LlamaCpp: LlamaCppConfig{
			URL:   os.Getenv("LLAMACPP_URL"),
			Model: os.Getenv("LLAMACPP_MODEL"),
		},
		Database: DatabaseConfig{
			URL:          os.Getenv("DATABASE_URL"),
			MariaDBDSN:   os.Getenv("MARIADB_DSN"),
			MaxOpenConns: envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns: envInt("DATABASE_MAX_IDLE_CONNS", 5),
		},
		Trends: trends,
		Prices: prices,
	}
}

// GetModelPricing returns pricing for a specific model, zero pricing for unknown models
func (c *Config) GetModelPricing(modelName string) ModelPricing {
	if pricing, ok := c.Prices.Models[modelName]; ok {
		return pricing
	}
	return ModelPricing{}
}

// HasStorage reports whether a durable analysis store is configured
func (c *Config) HasStorage() bool {
	return c.Database.URL != "" || c.Database.MariaDBDSN != ""
}
