package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	apperrors "tally/internal/platform/errors"
)

const (
	BackendSQLite = "sqlite"
	BackendVault  = "vault"
)

type Config struct {
	Home           string
	DBPath         string
	ActivePath     string
	DraftDir       string
	PhotoDir       string
	VaultDir       string
	LogDir         string
	Timezone       *time.Location
	SessionBackend string
	Debug          bool
	LogFile        string
	Notify         bool
}

// Overrides carries flag values; empty fields leave the file/env value alone.
type Overrides struct {
	Timezone string
	Debug    bool
}

type fileConfig struct {
	Timezone       string `yaml:"timezone"`
	SessionBackend string `yaml:"session_backend"`
	Debug          bool   `yaml:"debug"`
	LogFile        string `yaml:"log_file"`
	Notify         *bool  `yaml:"notify"`
}

// DefaultHome resolves TALLY_HOME, falling back to ~/.tally.
func DefaultHome() string {
	if home := os.Getenv("TALLY_HOME"); home != "" {
		return home
	}
	userHome, err := os.UserHomeDir()
	if err != nil {
		return ".tally"
	}
	return filepath.Join(userHome, ".tally")
}

// Load builds the config for home. Precedence: overrides, env, config.yaml, defaults.
func Load(home string, overrides Overrides) (Config, error) {
	if strings.TrimSpace(home) == "" {
		return Config{}, fmt.Errorf("%w: home path is required", apperrors.ErrInvalidInput)
	}
	fc, err := readFile(filepath.Join(home, "config.yaml"))
	if err != nil {
		return Config{}, err
	}

	tzName := fc.Timezone
	if env := os.Getenv("TALLY_TZ"); env != "" {
		tzName = env
	}
	if overrides.Timezone != "" {
		tzName = overrides.Timezone
	}
	loc, err := loadZone(tzName)
	if err != nil {
		return Config{}, err
	}

	backend := strings.ToLower(strings.TrimSpace(fc.SessionBackend))
	switch backend {
	case "":
		backend = BackendSQLite
	case BackendSQLite, BackendVault:
	default:
		return Config{}, fmt.Errorf("%w: unsupported session_backend %q", apperrors.ErrInvalidInput, fc.SessionBackend)
	}

	notify := true
	if fc.Notify != nil {
		notify = *fc.Notify
	}

	return Config{
		Home:           home,
		DBPath:         filepath.Join(home, "tally.db"),
		ActivePath:     filepath.Join(home, "active-session.json"),
		DraftDir:       filepath.Join(home, "drafts"),
		PhotoDir:       filepath.Join(home, "photos"),
		VaultDir:       filepath.Join(home, "vault"),
		LogDir:         filepath.Join(home, "logs"),
		Timezone:       loc,
		SessionBackend: backend,
		Debug:          fc.Debug || overrides.Debug || os.Getenv("TALLY_DEBUG") == "1",
		LogFile:        fc.LogFile,
		Notify:         notify,
	}, nil
}

func readFile(path string) (fileConfig, error) {
	fc := fileConfig{}
	payload, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fc, nil
		}
		return fc, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(payload, &fc); err != nil {
		return fc, fmt.Errorf("%w: decode config: %v", apperrors.ErrInvalidInput, err)
	}
	return fc, nil
}

func loadZone(name string) (*time.Location, error) {
	if name == "" || strings.EqualFold(name, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown timezone %q", apperrors.ErrInvalidInput, name)
	}
	return loc, nil
}
