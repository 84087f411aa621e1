package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

const (
	FileName = "config.yaml"

	DocumentModeProxy  = "proxy"
	DocumentModeDirect = "direct"
)

type Config struct {
	DataDir string `yaml:"-"`
	DBPath  string `yaml:"db_path" env:"LECTERN_DB_PATH"`

	API     APIConfig     `yaml:"api"`
	Reader  ReaderConfig  `yaml:"reader"`
	Session SessionConfig `yaml:"session"`
	Log     LogConfig     `yaml:"log"`
}

type APIConfig struct {
	BaseURL string        `yaml:"base_url" env:"LECTERN_API_BASE_URL"`
	Timeout time.Duration `yaml:"timeout" env:"LECTERN_API_TIMEOUT"`
}

type ReaderConfig struct {
	// DocumentMode selects how PDFs are fetched: through the authenticated
	// backend proxy or straight from the book's document URL.
	DocumentMode string `yaml:"document_mode" env:"LECTERN_DOCUMENT_MODE"`
	CacheDir     string `yaml:"cache_dir" env:"LECTERN_CACHE_DIR"`
	// Opener overrides the desktop default PDF viewer, e.g. "zathura --fork".
	Opener string `yaml:"opener" env:"LECTERN_OPENER"`
}

type SessionConfig struct {
	CloseTimeout time.Duration `yaml:"close_timeout" env:"LECTERN_CLOSE_TIMEOUT"`
	Journal      bool          `yaml:"journal" env:"LECTERN_JOURNAL"`
}

type LogConfig struct {
	Level string `yaml:"level" env:"LECTERN_LOG_LEVEL"`
	File  string `yaml:"file" env:"LECTERN_LOG_FILE"`
}

// Default returns the configuration used when no file or environment
// overrides are present.
func Default(dataDir string) Config {
	return Config{
		DataDir: dataDir,
		DBPath:  filepath.Join(dataDir, "lectern.db"),
		API: APIConfig{
			BaseURL: "http://localhost:8000",
			Timeout: 15 * time.Second,
		},
		Reader: ReaderConfig{
			DocumentMode: DocumentModeProxy,
			CacheDir:     filepath.Join(dataDir, "documents"),
		},
		Session: SessionConfig{
			CloseTimeout: 3 * time.Second,
			Journal:      true,
		},
		Log: LogConfig{
			Level: "info",
			File:  filepath.Join(dataDir, "lectern.log"),
		},
	}
}

// New loads defaults, then <dataDir>/config.yaml if it exists, then LECTERN_*
// environment variables.
func New(dataDir string) (Config, error) {
	if strings.TrimSpace(dataDir) == "" {
		return Config{}, fmt.Errorf("data dir is required")
	}
	cfg := Default(dataDir)

	raw, err := os.ReadFile(filepath.Join(dataDir, FileName))
	switch {
	case err == nil:
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("decode %s: %w", FileName, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return Config{}, fmt.Errorf("read %s: %w", FileName, err)
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.DataDir = dataDir
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.API.BaseURL) == "" {
		return fmt.Errorf("api.base_url is required")
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be positive")
	}
	if c.Session.CloseTimeout <= 0 {
		return fmt.Errorf("session.close_timeout must be positive")
	}
	switch c.Reader.DocumentMode {
	case DocumentModeProxy, DocumentModeDirect:
	default:
		return fmt.Errorf("reader.document_mode must be %q or %q, got %q", DocumentModeProxy, DocumentModeDirect, c.Reader.DocumentMode)
	}
	return nil
}

// ActiveSessionPath is where the open reading session is kept between CLI
// invocations.
func (c Config) ActiveSessionPath() string {
	return filepath.Join(c.DataDir, "active-session.json")
}

func (c Config) AuthPath() string {
	return filepath.Join(c.DataDir, "auth.json")
}

func (c Config) JournalDir() string {
	return filepath.Join(c.DataDir, "journal")
}
