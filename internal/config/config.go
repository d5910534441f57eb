package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is loaded once at startup and treated as read-only afterwards.
// Every component receives it (or a slice of it) by injection.
type Config struct {
	Server struct {
		Port           int    `yaml:"port"`
		Version        string `yaml:"version"`
		AllowedOrigins string `yaml:"allowedOrigins"` // comma list or "*"
		APIKey         string `yaml:"apiKey"`         // optional; empty disables auth
	} `yaml:"server"`

	Upload struct {
		MaxFileSizeMB int `yaml:"maxFileSizeMB"`
	} `yaml:"upload"`

	OpenAI struct {
		Endpoint        string  `yaml:"endpoint"` // Azure endpoint; empty means api.openai.com
		APIKey          string  `yaml:"apiKey"`
		Deployment      string  `yaml:"deployment"`
		Temperature     float32 `yaml:"temperature"`
		MaxOutputTokens int     `yaml:"maxOutputTokens"`
		MaxInputTokens  int     `yaml:"maxInputTokens"`
		CharsPerToken   int     `yaml:"charsPerToken"`
	} `yaml:"openai"`

	Storage struct {
		Endpoint             string `yaml:"endpoint"`
		Region               string `yaml:"region"`
		AccessKey            string `yaml:"accessKey"`
		SecretKey            string `yaml:"secretKey"`
		Bucket               string `yaml:"bucket"`
		UseSSL               bool   `yaml:"useSSL"`
		PresignExpiryMinutes int    `yaml:"presignExpiryMinutes"` // 0 disables signing
	} `yaml:"storage"`

	Report struct {
		MaxPlanHours float64 `yaml:"maxPlanHours"`
	} `yaml:"report"`

	Timeouts struct {
		ExtractSeconds int `yaml:"extractSeconds"`
		AnalyzeSeconds int `yaml:"analyzeSeconds"`
		RenderSeconds  int `yaml:"renderSeconds"`
		UploadSeconds  int `yaml:"uploadSeconds"`
	} `yaml:"timeouts"`

	RateLimit struct {
		Capacity   int `yaml:"capacity"`
		RefillRate int `yaml:"refillRate"` // tokens per second
	} `yaml:"rateLimit"`
}

// Load reads the yaml file (optional) and applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := defaults()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// env-only deployments run without a config file
	default:
		return nil, err
	}

	applyEnv(cfg)

	if cfg.Server.Port <= 0 {
		return nil, fmt.Errorf("invalid server port: %d", cfg.Server.Port)
	}
	if cfg.Upload.MaxFileSizeMB <= 0 {
		return nil, fmt.Errorf("invalid max file size: %dMB", cfg.Upload.MaxFileSizeMB)
	}
	return cfg, nil
}

func defaults() *Config {
	cfg := &Config{}
	cfg.Server.Port = 3000
	cfg.Server.Version = "1.0.0"
	cfg.Server.AllowedOrigins = "*"
	cfg.Upload.MaxFileSizeMB = 20
	cfg.OpenAI.Deployment = "gpt-4o"
	cfg.OpenAI.Temperature = 0.7
	cfg.OpenAI.MaxOutputTokens = 16000
	cfg.OpenAI.MaxInputTokens = 50000
	cfg.OpenAI.CharsPerToken = 4
	cfg.Storage.Bucket = "devopsbireports"
	cfg.Storage.Region = "us-east-1"
	cfg.Report.MaxPlanHours = 400
	cfg.Timeouts.ExtractSeconds = 30
	cfg.Timeouts.AnalyzeSeconds = 120
	cfg.Timeouts.RenderSeconds = 30
	cfg.Timeouts.UploadSeconds = 30
	cfg.RateLimit.Capacity = 10
	cfg.RateLimit.RefillRate = 1
	return cfg
}

func applyEnv(cfg *Config) {
	setInt(&cfg.Server.Port, "PORT")
	setString(&cfg.Server.AllowedOrigins, "ALLOWED_ORIGINS")
	setString(&cfg.Server.APIKey, "API_KEY")
	setInt(&cfg.Upload.MaxFileSizeMB, "MAX_FILE_SIZE_MB")
	setString(&cfg.OpenAI.Endpoint, "AZURE_OPENAI_ENDPOINT")
	setString(&cfg.OpenAI.APIKey, "AZURE_OPENAI_API_KEY")
	setString(&cfg.OpenAI.Deployment, "AZURE_OPENAI_DEPLOYMENT")
	setInt(&cfg.OpenAI.MaxInputTokens, "MAX_INPUT_TOKENS")
	setString(&cfg.Storage.Endpoint, "STORAGE_ENDPOINT")
	setString(&cfg.Storage.Region, "STORAGE_REGION")
	setString(&cfg.Storage.AccessKey, "STORAGE_ACCESS_KEY")
	setString(&cfg.Storage.SecretKey, "STORAGE_SECRET_KEY")
	setString(&cfg.Storage.Bucket, "STORAGE_BUCKET")
	setBool(&cfg.Storage.UseSSL, "STORAGE_USE_SSL")
	setFloat(&cfg.Report.MaxPlanHours, "REPORT_MAX_PLAN_HOURS")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

// MaxUploadBytes is the upload ceiling in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.Upload.MaxFileSizeMB) * 1024 * 1024
}

// MaxInputChars is the character budget forwarded to the analyzer, derived
// from the token limit and the chars-per-token approximation.
func (c *Config) MaxInputChars() int {
	return c.OpenAI.MaxInputTokens * c.OpenAI.CharsPerToken
}
