package config

import "path/filepath"

const (
	defaultMaxFileBytes = 16 << 20
	defaultWorkers      = 4
	defaultLogFormat    = "console"
	defaultLogLevel     = "info"
)

// Default returns a Config populated with defaults rooted at the current
// user's directories. When the home directory cannot be resolved the
// directory fields stay empty and normalize fills nothing in.
func Default() Config {
	dirs, err := ResolveDirs()
	if err != nil {
		dirs = Dirs{}
	}
	return DefaultWithDirs(dirs)
}

// DefaultWithDirs returns defaults rooted at dirs.
func DefaultWithDirs(dirs Dirs) Config {
	cfg := Config{
		Decoder: Decoder{
			BackupRetry:     true,
			StrictSignature: true,
			MaxFileBytes:    defaultMaxFileBytes,
		},
		Catalog: Catalog{
			FilterDuplicates: true,
			Workers:          defaultWorkers,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
	if dirs.CacheHome != "" {
		cfg.Paths.CatalogDir = dirs.CacheHome
	}
	if dirs.DataHome != "" {
		cfg.Paths.LogDir = filepath.Join(dirs.DataHome, "logs")
	}
	return cfg
}
