package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/panbanda/defectset/internal/logging"
	"github.com/panbanda/defectset/internal/output"
	"github.com/panbanda/defectset/pkg/config"
)

// loadConfig reads --config, or searches the working directory.
func loadConfig(c *cli.Context) (*config.Config, error) {
	if path := c.String("config"); path != "" {
		return config.Load(path)
	}
	cfg, _, err := config.LoadOrDefault(".")
	return cfg, err
}

// newLogger builds the run logger on stderr. With --log-file every record is also
// written to the file at debug level.
func newLogger(c *cli.Context, cfg *config.Config) (*slog.Logger, io.Closer, error) {
	level := cfg.Log.Level
	if c.Bool("verbose") {
		level = "debug"
	}
	if path := c.String("log-file"); path != "" {
		handler := logging.NewHandler(os.Stderr, logging.LevelFromString(level), cfg.Log.Format)
		logger, closer, err := logging.NewFileLogger(handler, path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		return logger, closer, nil
	}
	return logging.New(os.Stderr, level, cfg.Log.Format), io.NopCloser(nil), nil
}

func newFormatter(c *cli.Context) (*output.Formatter, error) {
	return output.NewFormatter(output.ParseFormat(c.String("format")), c.String("output"), true)
}
