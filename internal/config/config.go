// Load envs from .env
// Load YAML config
// Validate config
// Provide default values

package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	//paths
	SelectorsDir string `yaml:"selectors_dir"`
	AnswersPath  string `yaml:"answers_path"`
	CookiesPath  string `yaml:"cookies_path"`
	ArtifactsDir string `yaml:"artifacts_dir"`
	QueueDir     string `yaml:"queue_dir"`

	//browser
	Headless bool `yaml:"headless"`

	//protection thresholds, per platform
	FailureThreshold int `yaml:"failure_threshold"`
	HourlyCap        int `yaml:"hourly_cap"`
	DailyCap         int `yaml:"daily_cap"`

	//secrets, env only
	DatabaseURL    string `env:"DATABASE_URL"`
	TelegramToken  string `env:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID int64  `env:"TELEGRAM_CHAT_ID"`
}

func Load(path string) *Config {
	_ = godotenv.Load()

	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("Warning: Could not read %s: %v", path, err)
	} else {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			log.Fatalf("Error parsing %s: %v", path, err)
		}
	}

	//secrets only ever come from the environment
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.TelegramToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	if chatID := os.Getenv("TELEGRAM_CHAT_ID"); chatID != "" {
		id, err := strconv.ParseInt(chatID, 10, 64)
		if err != nil {
			log.Fatalf("Invalid TELEGRAM_CHAT_ID: %v", err)
		}
		cfg.TelegramChatID = id
	}

	//defaults
	if cfg.SelectorsDir == "" {
		cfg.SelectorsDir = "configs/selectors"
	}
	if cfg.AnswersPath == "" {
		cfg.AnswersPath = "configs/answers.yaml"
	}
	if cfg.CookiesPath == "" {
		cfg.CookiesPath = ".cookies"
	}
	if cfg.ArtifactsDir == "" {
		cfg.ArtifactsDir = "logs/attempts"
	}
	if cfg.QueueDir == "" {
		cfg.QueueDir = ".queue"
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 3
	}
	if cfg.HourlyCap == 0 {
		cfg.HourlyCap = 6
	}
	if cfg.DailyCap == 0 {
		cfg.DailyCap = 20
	}

	//answer bank is required: the engine refuses to guess without it
	if _, err := os.Stat(cfg.AnswersPath); err != nil {
		log.Fatalf("Answer bank not found at %s: %v", cfg.AnswersPath, err)
	}
	if _, err := os.Stat(cfg.SelectorsDir); err != nil {
		log.Fatalf("Selector tables not found at %s: %v", cfg.SelectorsDir, err)
	}

	return cfg
}
