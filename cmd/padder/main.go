package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/code-100-precent/LingQfight/pkg/config"
	"github.com/code-100-precent/LingQfight/pkg/image"
	"github.com/code-100-precent/LingQfight/pkg/logger"
	"go.uber.org/zap"
)

func main() {
	// 1. Load Global Configuration, flags override env
	if err := config.Load(); err != nil {
		panic("config load failed: " + err.Error())
	}
	cfg := config.GlobalConfig.Padder

	inputDir := flag.String("in", cfg.InputDir, "input image directory")
	outputDir := flag.String("out", cfg.OutputDir, "output directory")
	top := flag.Int("top", cfg.Top, "top border in pixels")
	bottom := flag.Int("bottom", cfg.Bottom, "bottom border in pixels")
	left := flag.Int("left", cfg.Left, "left border in pixels")
	right := flag.Int("right", cfg.Right, "right border in pixels")
	formats := flag.String("formats", strings.Join(cfg.Formats, ","), "accepted extensions, comma separated")
	flag.Parse()

	// 2. Load Log Configuration
	if err := logger.Init(&config.GlobalConfig.Log, config.GlobalConfig.Mode); err != nil {
		panic(err)
	}
	defer logger.Lg.Sync()

	border := image.BorderConfig{
		Margins: image.Margins{Top: *top, Bottom: *bottom, Left: *left, Right: *right},
		Formats: splitFormats(*formats),
	}
	padder, err := image.NewPadder(border)
	if err != nil {
		logger.Error("invalid border config", zap.Error(err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("padding images",
		zap.String("input_dir", *inputDir),
		zap.String("output_dir", *outputDir),
		zap.Ints("margins", []int{*top, *bottom, *left, *right}),
		zap.Strings("formats", border.Formats),
	)

	result, err := padder.Run(ctx, *inputDir, *outputDir)
	if err != nil {
		if errors.Is(err, image.ErrInputDirNotFound) {
			logger.Error("input directory does not exist", zap.String("input_dir", *inputDir))
		} else {
			logger.Error("padding aborted", zap.Error(err))
		}
		logger.Lg.Sync()
		os.Exit(1)
	}

	logger.Info("padding finished",
		zap.Int("processed", len(result.Processed)),
		zap.Int("skipped", len(result.Skipped)),
		zap.Int("failed", len(result.Failed)),
		zap.String("output_dir", *outputDir),
	)
}

func splitFormats(raw string) []string {
	var out []string
	for _, f := range strings.Split(raw, ",") {
		f = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(f), "."))
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}
