// Load envs from .env
// Load YAML config
// Validate config
// Provide default values

package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	//Search criteria
	Keywords         []string `yaml:"keywords"`
	Locations        []string `yaml:"locations"`
	ExperienceYears  int      `yaml:"experience_years"`
	PostedWithinDays int      `yaml:"posted_within_days"`

	//Queue pacing
	MaxApplicationsPerSession int `yaml:"max_applications_per_session"`
	ApplicationDelayMs        int `yaml:"application_delay_ms"`
	LoginTimeoutMs            int `yaml:"login_timeout_ms"`

	//LLM settings
	LLMModel  string `yaml:"llm_model"`
	LLMAPIKey string `yaml:"-" env:"LLM_API_KEY"`

	//Optional reporting / persistence
	TelegramToken  string `yaml:"telegram_token" env:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID int64  `yaml:"telegram_chat_id" env:"TELEGRAM_CHAT_ID"`
	DatabaseURL    string `yaml:"-" env:"DATABASE_URL"`

	//Paths
	ProfilePath string `yaml:"profile_path"`
	CookiesPath string `yaml:"cookies_path"`
	CachePath   string `yaml:"cache_path"`

	//Browser must stay visible so a human can log in and supervise
	Headless bool `yaml:"headless"`
}

func Load() *Config {
	_ = godotenv.Load()

	//Load yaml config
	cfg := &Config{}

	data, err := os.ReadFile("configs/config.yaml")
	if err != nil {
		log.Printf("Warning: Could not read config.yaml: %v", err)
	} else {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			log.Fatalf("Error parsing config.yaml: %v", err)
		}
	}

	//Override with env vars
	if key := os.Getenv("LLM_API_KEY"); key != "" {
		cfg.LLMAPIKey = key
	}

	if model := os.Getenv("LLM_MODEL"); model != "" {
		cfg.LLMModel = model
	}

	if token := os.Getenv("TELEGRAM_BOT_TOKEN"); token != "" {
		cfg.TelegramToken = token
	}

	if chatID := os.Getenv("TELEGRAM_CHAT_ID"); chatID != "" {
		id, err := strconv.ParseInt(chatID, 10, 64)
		if err != nil {
			log.Fatalf("Invalid TELEGRAM_CHAT_ID: %v", err)
		}
		cfg.TelegramChatID = id
	}

	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		cfg.DatabaseURL = dbURL
	}

	//Set default values if not set
	if cfg.MaxApplicationsPerSession == 0 {
		cfg.MaxApplicationsPerSession = 50
	}

	if cfg.ApplicationDelayMs == 0 {
		cfg.ApplicationDelayMs = 5000
	}

	if cfg.LoginTimeoutMs == 0 {
		cfg.LoginTimeoutMs = 300000
	}

	if cfg.LLMModel == "" {
		cfg.LLMModel = "llama-3.3-70b-versatile"
	}

	if cfg.ProfilePath == "" {
		cfg.ProfilePath = "configs/profile.json"
	}

	if cfg.CookiesPath == "" {
		cfg.CookiesPath = ".cookies"
	}

	if cfg.CachePath == "" {
		cfg.CachePath = ".cache"
	}

	//Validate required fields
	if cfg.LLMAPIKey == "" {
		log.Fatal("LLM_API_KEY is required")
	}

	if len(cfg.Keywords) == 0 {
		log.Fatal("at least one search keyword is required")
	}

	return cfg
}

// ApplicationDelay is the pause between consecutive apply attempts.
func (c *Config) ApplicationDelay() time.Duration {
	return time.Duration(c.ApplicationDelayMs) * time.Millisecond
}

// LoginTimeout bounds WaitForManualLogin.
func (c *Config) LoginTimeout() time.Duration {
	return time.Duration(c.LoginTimeoutMs) * time.Millisecond
}
