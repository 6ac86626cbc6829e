package config

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/code-100-precent/LingQfight/pkg/constants"
	"github.com/code-100-precent/LingQfight/pkg/logger"
	"github.com/code-100-precent/LingQfight/pkg/utils"
)

// Config represents the system configuration
type Config struct {
	Mode     string `env:"MODE" envDefault:"development"`
	Log      logger.LogConfig
	Server   ServerConfig
	Admin    AdminConfig
	Padder   PadderConfig
	Verifier VerifierConfig
}

// ServerConfig drives the reference game API server
type ServerConfig struct {
	Addr      string `env:"ADDR"       envDefault:":8009"`
	APIPrefix string `env:"API_PREFIX" envDefault:"/api"`
	DBDriver  string `env:"DB_DRIVER"  envDefault:"sqlite"`
	DSN       string `env:"DSN"        envDefault:"./qfight.db"`
}

// AdminConfig is the pre-provisioned admin credential, seeded by the server and used by the verifier
type AdminConfig struct {
	Username string `env:"ADMIN_USERNAME" envDefault:"admin_test"`
	Password string `env:"ADMIN_PASSWORD" envDefault:"admin123456"`
}

// PadderConfig margins keep an explicit 0; only an unset or empty variable falls back to 20
type PadderConfig struct {
	InputDir  string   `env:"PADDER_INPUT_DIR"  envDefault:"images"`
	OutputDir string   `env:"PADDER_OUTPUT_DIR" envDefault:"images_with_transparent_border"`
	Top       int      `env:"BORDER_TOP"        envDefault:"20"`
	Bottom    int      `env:"BORDER_BOTTOM"     envDefault:"20"`
	Left      int      `env:"BORDER_LEFT"       envDefault:"20"`
	Right     int      `env:"BORDER_RIGHT"      envDefault:"20"`
	Formats   []string `env:"IMAGE_FORMATS"     envDefault:"png,jpg,jpeg,bmp,gif" envSeparator:","`
}

type VerifierConfig struct {
	BaseURL        string `env:"QFIGHT_BASE_URL" envDefault:"http://127.0.0.1:8009/api"`
	PlayerPassword string `env:"PLAYER_PASSWORD" envDefault:"player123456"`
	PlayerName     string `env:"PLAYER_NAME"     envDefault:"测试玩家001"`
	Schedule       string `env:"VERIFY_SCHEDULE"`
	MetricsAddr    string `env:"METRICS_ADDR"`
	ReportPath     string `env:"VERIFY_REPORT"`
}

// GlobalConfig is the global configuration instance
var GlobalConfig *Config

// Load loads configuration from environment variables
func Load() error {
	// Load .env file based on APP_ENV
	appEnv := os.Getenv(constants.ENV_APP_ENV)
	err := utils.LoadEnv(appEnv)
	if err != nil {
		// Log warning if .env file not found, but don't fail startup
		log.Printf("Note: .env file not found or failed to load: %v (using default values)", err)
	}

	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: utils.Environ()}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	cfg.Padder.Formats = normalizeFormats(cfg.Padder.Formats)
	cfg.Verifier.BaseURL = strings.TrimRight(cfg.Verifier.BaseURL, "/")

	GlobalConfig = &cfg
	return nil
}

// normalizeFormats lowercases extensions, strips a leading dot and drops blanks
func normalizeFormats(items []string) []string {
	formats := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(item), "."))
		if item != "" {
			formats = append(formats, item)
		}
	}
	return formats
}
