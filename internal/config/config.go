// Package config resolves runtime settings from flags and environment.
package config

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/erazemk/assettrack/internal/store"
)

// Config holds the settings shared by every subcommand.
type Config struct {
	DBPath    string
	Addr      string
	StoreKind string
	PhotoDir  string
	LogPath   string
}

// Load returns the defaults, overridden by ASSETTRACK_* variables from getenv.
// A nil getenv reads the process environment.
func Load(getenv func(string) string) *Config {
	if getenv == nil {
		getenv = os.Getenv
	}
	return &Config{
		DBPath:    getEnv(getenv, "ASSETTRACK_DB", ""),
		Addr:      getEnv(getenv, "ASSETTRACK_ADDR", "127.0.0.1:8080"),
		StoreKind: getEnv(getenv, "ASSETTRACK_STORE", store.KindSQLite),
		PhotoDir:  getEnv(getenv, "ASSETTRACK_PHOTOS", "photos"),
		LogPath:   getEnv(getenv, "ASSETTRACK_LOG", ""),
	}
}

func getEnv(getenv func(string) string, key, fallback string) string {
	if value := getenv(key); value != "" {
		return value
	}
	return fallback
}

// RegisterFlags binds the shared flags, each with its short alias, using the
// current values as defaults.
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	for _, name := range []string{"db", "d"} {
		fs.StringVar(&c.DBPath, name, c.DBPath, "")
	}
	for _, name := range []string{"addr", "a"} {
		fs.StringVar(&c.Addr, name, c.Addr, "")
	}
	for _, name := range []string{"store", "s"} {
		fs.StringVar(&c.StoreKind, name, c.StoreKind, "")
	}
	for _, name := range []string{"photos", "p"} {
		fs.StringVar(&c.PhotoDir, name, c.PhotoDir, "")
	}
	for _, name := range []string{"log", "l"} {
		fs.StringVar(&c.LogPath, name, c.LogPath, "")
	}
}

// Validate normalizes the store kind and fills in the default database path
// for it.
func (c *Config) Validate() error {
	c.StoreKind = strings.ToLower(strings.TrimSpace(c.StoreKind))
	switch c.StoreKind {
	case store.KindSQLite:
		if c.DBPath == "" {
			c.DBPath = "assettrack.sqlite3"
		}
	case store.KindDocument:
		if c.DBPath == "" {
			c.DBPath = "assettrack.json"
		}
	default:
		return fmt.Errorf("unknown store %q (want %s or %s)", c.StoreKind, store.KindSQLite, store.KindDocument)
	}
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("listen address is required")
	}
	if strings.TrimSpace(c.PhotoDir) == "" {
		return fmt.Errorf("photo directory is required")
	}
	return nil
}

// FlagUsage describes the shared flags for help output.
const FlagUsage = `  -d, -db <path>          database file (default: assettrack.sqlite3, or assettrack.json for -store doc)
  -s, -store <kind>       storage backend: sqlite or doc (default: sqlite)
  -a, -addr <host:port>   listen address (default: 127.0.0.1:8080)
  -p, -photos <dir>       photo directory (default: photos)
  -l, -log <path>         log file path (default: no file, stdout/stderr only)
`
