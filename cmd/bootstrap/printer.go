package bootstrap

import (
	"fmt"
	"os"
	"strings"

	"github.com/code-100-precent/LingQfight/pkg/config"
	"github.com/code-100-precent/LingQfight/pkg/logger"
	"go.uber.org/zap"
)

// LogConfigInfo Print global configuration information
func LogConfigInfo() {
	cfg := config.GlobalConfig
	logger.Info("system config load finished", zap.String("mode", cfg.Mode))

	logger.Info("server config",
		zap.String("addr", cfg.Server.Addr),
		zap.String("api_prefix", cfg.Server.APIPrefix),
		zap.String("db_driver", cfg.Server.DBDriver),
		zap.String("dsn", cfg.Server.DSN),
		zap.String("admin_username", cfg.Admin.Username),
	)

	logger.Info("padder config",
		zap.String("input_dir", cfg.Padder.InputDir),
		zap.String("output_dir", cfg.Padder.OutputDir),
		zap.Ints("margins", []int{cfg.Padder.Top, cfg.Padder.Bottom, cfg.Padder.Left, cfg.Padder.Right}),
		zap.Strings("formats", cfg.Padder.Formats),
	)

	logger.Info("verifier config",
		zap.String("base_url", cfg.Verifier.BaseURL),
		zap.String("player_name", cfg.Verifier.PlayerName),
		zap.String("schedule", cfg.Verifier.Schedule),
		zap.String("metrics_addr", cfg.Verifier.MetricsAddr),
		zap.String("report_path", cfg.Verifier.ReportPath),
	)

	logger.Info("log config",
		zap.String("log_level", cfg.Log.Level),
		zap.String("log_filename", cfg.Log.Filename),
		zap.Int("log_max_size", cfg.Log.MaxSize),
		zap.Int("log_max_age", cfg.Log.MaxAge),
		zap.Int("log_max_backups", cfg.Log.MaxBackups),
	)
}

// PrintBannerFromFile Read file and print
func PrintBannerFromFile(filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return err
	}

	lines := strings.Split(string(data), "\n")

	colors := []string{
		"\x1b[38;5;165m",
		"\x1b[38;5;189m",
		"\x1b[38;5;207m",
		"\x1b[38;5;219m",
		"\x1b[38;5;225m",
		"\x1b[38;5;231m",
	}

	for i, line := range lines {
		color := colors[i%len(colors)]
		fmt.Println(color + line + "\x1b[0m")
	}
	return nil
}
