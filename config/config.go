package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const ENV_FILE = ".env"
const CONFIG_FILE = "config.yaml"

// Environment variable names for required secrets/endpoints.
const (
	EnvMongoURI      = "MONGODB_URI"
	EnvMongoDBName   = "MONGODB_DB"
	EnvGeminiAPIKey  = "GEMINI_API_KEY"
	EnvTriggerSecret = "REFRESH_TRIGGER_SECRET"
)

type AppConfig struct {
	Logging     LoggingConfig `yaml:"logging"`
	GeminiModel string        `yaml:"gemini_model"`
	Refresh     RefreshConfig `yaml:"refresh"`

	// Secrets are loaded from the environment, never from config.yaml.
	MongoURI      string `yaml:"-"`
	MongoDBName   string `yaml:"-"`
	GeminiAPIKey  string `yaml:"-"`
	TriggerSecret string `yaml:"-"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// RefreshConfig tunes the daily quote refresh pipeline.
type RefreshConfig struct {
	// TotalTarget is the number of quotes one refresh run must produce.
	TotalTarget int `yaml:"total_target"`

	// BatchSize is the number of quotes requested per generation call.
	BatchSize int `yaml:"batch_size"`

	// MaxRetries is the number of additional attempts per batch after the
	// first failure.
	MaxRetries int `yaml:"max_retries"`

	InitialRetryDelayMS int `yaml:"initial_retry_delay_ms"`
	InterBatchDelayMS   int `yaml:"inter_batch_delay_ms"`

	GenerationTimeoutSeconds  int `yaml:"generation_timeout_seconds"`
	PersistenceTimeoutSeconds int `yaml:"persistence_timeout_seconds"`

	// LanguageMix is prompt-level guidance only; no ratio is enforced on the
	// generator's output.
	LanguageMix []LanguageShare `yaml:"language_mix"`
}

// LanguageShare is a soft hint for how many quotes of a language to request.
type LanguageShare struct {
	Code  string `yaml:"code"`
	Share int    `yaml:"share"`
}

func (r RefreshConfig) InitialRetryDelay() time.Duration {
	return time.Duration(r.InitialRetryDelayMS) * time.Millisecond
}

func (r RefreshConfig) InterBatchDelay() time.Duration {
	return time.Duration(r.InterBatchDelayMS) * time.Millisecond
}

func (r RefreshConfig) GenerationTimeout() time.Duration {
	return time.Duration(r.GenerationTimeoutSeconds) * time.Second
}

func (r RefreshConfig) PersistenceTimeout() time.Duration {
	return time.Duration(r.PersistenceTimeoutSeconds) * time.Second
}

var config *AppConfig

func InitApp() {
	// load environment variables
	godotenv.Load(filepath.Join(GetBasePath(), ENV_FILE))

	// config.yaml is optional; every tunable has a default
	var c AppConfig
	if data, err := os.ReadFile(filepath.Join(GetBasePath(), CONFIG_FILE)); err == nil {
		if err := yaml.Unmarshal(data, &c); err != nil {
			panic(err)
		}
	}

	c.MongoURI = os.Getenv(EnvMongoURI)
	c.MongoDBName = os.Getenv(EnvMongoDBName)
	c.GeminiAPIKey = os.Getenv(EnvGeminiAPIKey)
	c.TriggerSecret = os.Getenv(EnvTriggerSecret)

	c.applyDefaults()
	config = &c
}

func GetConfig() AppConfig {
	if config == nil {
		InitApp()
	}

	return *config
}

func (c *AppConfig) applyDefaults() {
	if c.GeminiModel == "" {
		c.GeminiModel = "gemini-2.0-flash"
	}
	r := &c.Refresh
	if r.TotalTarget <= 0 {
		r.TotalTarget = 30
	}
	if r.BatchSize <= 0 {
		r.BatchSize = 5
	}
	if r.MaxRetries <= 0 {
		r.MaxRetries = 3
	}
	if r.InitialRetryDelayMS <= 0 {
		r.InitialRetryDelayMS = 1000
	}
	if r.InterBatchDelayMS <= 0 {
		r.InterBatchDelayMS = 500
	}
	if r.GenerationTimeoutSeconds <= 0 {
		r.GenerationTimeoutSeconds = 30
	}
	if r.PersistenceTimeoutSeconds <= 0 {
		r.PersistenceTimeoutSeconds = 10
	}
	if len(r.LanguageMix) == 0 {
		r.LanguageMix = []LanguageShare{
			{Code: "en", Share: 2},
			{Code: "fr", Share: 1},
			{Code: "es", Share: 1},
			{Code: "zh", Share: 1},
		}
	}
}

func GetBasePath() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	dir := cwd
	for {
		cfgPath := filepath.Join(dir, CONFIG_FILE)
		if info, err := os.Stat(cfgPath); err == nil && !info.IsDir() {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}
