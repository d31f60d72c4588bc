// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ericfisherdev/hiddenote/internal/adapter/driven/kdf"
	"github.com/ericfisherdev/hiddenote/internal/application"
	"github.com/ericfisherdev/hiddenote/internal/domain/model"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath        string
	KDFIterations int
	Cipher        model.CipherSuite
	AutoSaveDelay time.Duration
	LogLevel      slog.Level
}

// Load reads configuration from environment variables and returns a validated Config.
// All variables are optional:
// HIDDENOTE_DB_PATH (hiddenote.db under the user config dir),
// HIDDENOTE_KDF_ITERATIONS (600000, minimum 100000; applies to new stores only),
// HIDDENOTE_CIPHER (aes-256-gcm | chacha20-poly1305),
// HIDDENOTE_AUTOSAVE_DELAY (1.5s), HIDDENOTE_LOG_LEVEL (warn).
func Load() (*Config, error) {
	dbPath := defaultDBPath()
	if v, ok := os.LookupEnv("HIDDENOTE_DB_PATH"); ok && v != "" {
		dbPath = v
	}

	iterations := kdf.DefaultIterations
	if v, ok := os.LookupEnv("HIDDENOTE_KDF_ITERATIONS"); ok {
		parsed, err := strconv.Atoi(strings.ReplaceAll(v, "_", ""))
		if err != nil {
			return nil, fmt.Errorf("HIDDENOTE_KDF_ITERATIONS has invalid value %q: %w", v, err)
		}
		if parsed < kdf.MinIterations {
			return nil, fmt.Errorf("HIDDENOTE_KDF_ITERATIONS must be at least %d, got %d", kdf.MinIterations, parsed)
		}
		iterations = parsed
	}

	suite := model.CipherAES256GCM
	if v, ok := os.LookupEnv("HIDDENOTE_CIPHER"); ok && v != "" {
		parsed, ok := model.ParseCipherSuite(strings.ToLower(v))
		if !ok {
			return nil, fmt.Errorf("HIDDENOTE_CIPHER has unsupported value %q", v)
		}
		suite = parsed
	}

	autoSaveDelay := application.DefaultAutoSaveDelay
	if v, ok := os.LookupEnv("HIDDENOTE_AUTOSAVE_DELAY"); ok {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("HIDDENOTE_AUTOSAVE_DELAY has invalid duration %q: %w", v, err)
		}
		if parsed <= 0 {
			return nil, fmt.Errorf("HIDDENOTE_AUTOSAVE_DELAY must be positive, got %s", parsed)
		}
		autoSaveDelay = parsed
	}

	level := slog.LevelWarn
	if v, ok := os.LookupEnv("HIDDENOTE_LOG_LEVEL"); ok && v != "" {
		if err := level.UnmarshalText([]byte(v)); err != nil {
			return nil, fmt.Errorf("HIDDENOTE_LOG_LEVEL has invalid value %q: %w", v, err)
		}
	}

	return &Config{
		DBPath:        dbPath,
		KDFIterations: iterations,
		Cipher:        suite,
		AutoSaveDelay: autoSaveDelay,
		LogLevel:      level,
	}, nil
}

// defaultDBPath places the store in the per-user config directory, falling
// back to the working directory when none is available.
func defaultDBPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "hiddenote.db"
	}
	return filepath.Join(dir, "hiddenote", "hiddenote.db")
}
