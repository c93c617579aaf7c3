package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	DiscRoot   string `toml:"disc_root"`
	CatalogDir string `toml:"catalog_dir"`
	LogDir     string `toml:"log_dir"`
}

// Decoder controls how navigation files are read.
type Decoder struct {
	// BackupRetry re-reads BDMV/BACKUP copies when the primary file fails.
	BackupRetry bool `toml:"backup_retry"`
	// StrictSignature rejects unknown version tags. When false they only warn.
	StrictSignature bool  `toml:"strict_signature"`
	MaxFileBytes    int64 `toml:"max_file_bytes"`
}

// Catalog contains title enumeration and catalog settings.
type Catalog struct {
	MinTitleSeconds  int  `toml:"min_title_seconds"`
	FilterDuplicates bool `toml:"filter_duplicates"`
	Workers          int  `toml:"workers"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	// DecoderLevel raises the minimum level for decoder diagnostics only.
	DecoderLevel string `toml:"decoder_level"`
}

// Config encapsulates all configuration values for bdnav.
type Config struct {
	Paths   Paths   `toml:"paths"`
	Decoder Decoder `toml:"decoder"`
	Catalog Catalog `toml:"catalog"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	dirs, err := ResolveDirs()
	if err != nil {
		return "", err
	}
	return dirs.ConfigFile(), nil
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	dirs, err := ResolveDirs()
	if err != nil {
		return nil, "", false, err
	}
	return LoadWithDirs(path, dirs)
}

// LoadWithDirs is Load with an explicit directory context.
func LoadWithDirs(path string, dirs Dirs) (*Config, string, bool, error) {
	cfg := DefaultWithDirs(dirs)

	resolvedPath, exists, err := resolveConfigPath(path, dirs)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string, dirs Dirs) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath := dirs.ConfigFile()
	projectPath, err := filepath.Abs("bdnav.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the catalog and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.CatalogDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// CatalogPath returns the SQLite catalog database location.
func (c *Config) CatalogPath() string {
	return filepath.Join(c.Paths.CatalogDir, "catalog.db")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
