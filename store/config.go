package store

import (
	"os"
	"path/filepath"
	"strings"
)

type SQLiteConfig struct {
	BusyTimeoutMs int
	WAL           bool
}

type Config struct {
	DSN         string
	SQLite      SQLiteConfig
	AutoMigrate bool
}

func DefaultConfig() Config {
	return Config{
		SQLite: SQLiteConfig{
			BusyTimeoutMs: 5000,
			WAL:           true,
		},
		AutoMigrate: true,
	}
}

// ResolveDSN resolves an empty DSN to a stable on-disk location.
// Precedence: explicit DSN, then an existing $HOME/.botmind/botmind.sqlite,
// then an existing ./botmind.sqlite, else create under $HOME/.botmind.
func ResolveDSN(dsn string) (string, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn != "" {
		return dsn, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	homeDir := filepath.Join(home, ".botmind")
	homeDB := filepath.Join(homeDir, "botmind.sqlite")
	localDB := filepath.Clean("./botmind.sqlite")

	if _, err := os.Stat(homeDB); err == nil {
		return homeDB, nil
	}
	if _, err := os.Stat(localDB); err == nil {
		return localDB, nil
	}
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		return "", err
	}
	return homeDB, nil
}
