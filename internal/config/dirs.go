package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const appName = "bdnav"

// Dirs is the per-user directory context. Build it once with ResolveDirs and
// pass it by value; nothing in bdnav reads XDG variables after that.
type Dirs struct {
	ConfigHome string
	CacheHome  string
	DataHome   string
}

// ResolveDirs derives Dirs from the XDG base-directory variables, falling back
// to the conventional locations under the home directory.
func ResolveDirs() (Dirs, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Dirs{}, fmt.Errorf("resolve home directory: %w", err)
	}
	return Dirs{
		ConfigHome: filepath.Join(xdgBase("XDG_CONFIG_HOME", home, ".config"), appName),
		CacheHome:  filepath.Join(xdgBase("XDG_CACHE_HOME", home, ".cache"), appName),
		DataHome:   filepath.Join(xdgBase("XDG_DATA_HOME", home, ".local", "share"), appName),
	}, nil
}

// ConfigFile is the default config.toml location.
func (d Dirs) ConfigFile() string {
	return filepath.Join(d.ConfigHome, "config.toml")
}

func xdgBase(env, home string, fallback ...string) string {
	if base, ok := os.LookupEnv(env); ok && strings.TrimSpace(base) != "" && filepath.IsAbs(base) {
		return base
	}
	return filepath.Join(append([]string{home}, fallback...)...)
}
