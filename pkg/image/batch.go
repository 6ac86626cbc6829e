package image

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/code-100-precent/LingQfight/pkg/logger"
	"go.uber.org/zap"
)

// ErrInputDirNotFound is returned when the batch input directory is missing or not a directory
var ErrInputDirNotFound = errors.New("input directory does not exist")

// BorderConfig is fixed for the duration of one batch run
type BorderConfig struct {
	Margins
	// Formats are accepted lowercase extensions without the leading dot
	Formats []string
}

// DefaultBorderConfig mirrors the padder defaults: 20px on every side and the common raster formats
func DefaultBorderConfig() BorderConfig {
	return BorderConfig{
		Margins: UniformMargins(20),
		Formats: []string{"png", "jpg", "jpeg", "bmp", "gif"},
	}
}

func (c BorderConfig) Validate() error {
	if err := c.Margins.Validate(); err != nil {
		return err
	}
	if len(c.Formats) == 0 {
		return errors.New("at least one image format is required")
	}
	for _, f := range c.Formats {
		if _, ok := FormatForExtension(f); !ok {
			return fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
		}
	}
	return nil
}

// Accepts reports whether a file name carries one of the configured extensions
// and that extension maps to a format the padder can write
func (c BorderConfig) Accepts(filename string) bool {
	ext := ExtensionOf(filename)
	if _, ok := FormatForExtension(ext); ext == "" || !ok {
		return false
	}
	for _, f := range c.Formats {
		if strings.ToLower(strings.TrimPrefix(f, ".")) == ext {
			return true
		}
	}
	return false
}

// FileFailure records one file the batch could not process
type FileFailure struct {
	Name string
	Err  string
}

// BatchResult summarizes a batch run
type BatchResult struct {
	Processed []string
	Skipped   []string
	Failed    []FileFailure
}

// Padder adds transparent borders to every accepted image in a directory
type Padder struct {
	cfg       BorderConfig
	processor *Processor
	log       *zap.Logger
}

func NewPadder(cfg BorderConfig) (*Padder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Padder{
		cfg:       cfg,
		processor: NewProcessor(),
		log:       logger.Lg.Named("padder"),
	}, nil
}

// Run scans inputDir once (no recursion) and writes each padded image under outputDir with the same name.
// Only a missing input directory aborts the run, and it does so before outputDir is created.
func (p *Padder) Run(ctx context.Context, inputDir, outputDir string) (*BatchResult, error) {
	info, err := os.Stat(inputDir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrInputDirNotFound, inputDir)
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	entries, err := os.ReadDir(inputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list input directory: %w", err)
	}

	result := &BatchResult{}
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		name := entry.Name()
		srcPath := filepath.Join(inputDir, name)
		if !isRegularFile(srcPath, entry) || !p.cfg.Accepts(name) {
			result.Skipped = append(result.Skipped, name)
			continue
		}

		dstPath := filepath.Join(outputDir, name)
		if err := p.PadFile(srcPath, dstPath); err != nil {
			p.log.Error("process image failed", zap.String("file", name), zap.Error(err))
			result.Failed = append(result.Failed, FileFailure{Name: name, Err: err.Error()})
			continue
		}
		p.log.Info("process image success", zap.String("file", name), zap.String("output", dstPath))
		result.Processed = append(result.Processed, name)
	}
	return result, nil
}

// isRegularFile follows symlinks so a linked image still counts as a file
func isRegularFile(path string, entry fs.DirEntry) bool {
	if entry.Type().IsRegular() {
		return true
	}
	if entry.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// PadFile pads a single image; the output encoding follows dstPath's extension
func (p *Padder) PadFile(srcPath, dstPath string) error {
	img, _, err := DecodeFile(srcPath)
	if err != nil {
		return err
	}
	format, ok := FormatOf(dstPath)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Base(dstPath))
	}
	padded := p.processor.AddTransparentBorder(img, p.cfg.Margins)
	return SaveImage(padded, dstPath, format)
}
