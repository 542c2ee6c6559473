package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/tebeka/atexit"
	"gopkg.in/yaml.v3"

	"github.com/mgomes/bfi/bf"
)

const defaultConfigName = ".bfi.yaml"

// runConfig mirrors the on-disk YAML config. Pointer fields distinguish
// "unset" from an explicit false.
type runConfig struct {
	EOF       string `yaml:"eof"`
	Compress  *bool  `yaml:"compress"`
	Input     *bool  `yaml:"input"`
	StepQuota int    `yaml:"step_quota"`
	LogLevel  string `yaml:"log_level"`
}

// loadConfig reads explicitPath, or .bfi.yaml beside the program when no path
// is given and that file exists.
func loadConfig(explicitPath, programPath string) (runConfig, error) {
	path := explicitPath
	if path == "" {
		if programPath == "-" {
			return runConfig{}, nil
		}
		candidate := filepath.Join(filepath.Dir(programPath), defaultConfigName)
		if _, err := os.Stat(candidate); err != nil {
			return runConfig{}, nil
		}
		path = candidate
	}

	file, err := os.Open(path)
	if err != nil {
		return runConfig{}, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer file.Close()

	var cfg runConfig
	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return runConfig{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

func (c runConfig) engineConfig() (bf.Config, error) {
	policy, err := bf.ParseEOFPolicy(c.EOF)
	if err != nil {
		return bf.Config{}, err
	}
	if c.StepQuota < 0 {
		return bf.Config{}, fmt.Errorf("config: step_quota must not be negative, got %d", c.StepQuota)
	}
	return bf.Config{
		EOFPolicy:          policy,
		DisableCompression: c.Compress != nil && !*c.Compress,
		DisableInput:       c.Input != nil && !*c.Input,
		StepQuota:          c.StepQuota,
	}, nil
}

// openLogger opens path for JSON logging. The file is closed by the atexit
// handlers on the way out of main.
func openLogger(path, level string) (*slog.Logger, error) {
	lvl := slog.LevelDebug
	if level != "" {
		if err := lvl.UnmarshalText([]byte(level)); err != nil {
			return nil, fmt.Errorf("config: log_level: %w", err)
		}
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	atexit.Register(func() {
		_ = file.Close()
	})

	handler := slog.NewJSONHandler(file, &slog.HandlerOptions{Level: lvl})
	return slog.New(handler), nil
}
