package profile

import (
	"os"
	"path/filepath"
)

// BaseDir returns ~/.tvoizakaz.
func BaseDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".tvoizakaz")
}

// Dir returns the profile-specific directory.
func Dir(name string) string {
	return filepath.Join(BaseDir(), "profiles", name)
}

// LockPath returns the lock file path for a profile.
func LockPath(name string) string {
	return filepath.Join(Dir(name), "LOCK")
}

// TokenPath returns the default access-token file path.
func TokenPath(name string) string {
	return filepath.Join(Dir(name), "token")
}

// CookiePath returns the cookie file path. The file holds
// ";"-separated cookie pairs as saved by the web client, of which only
// access_token is read.
func CookiePath(name string) string {
	return filepath.Join(Dir(name), "cookies")
}

// LogDir returns the log directory for a profile.
func LogDir(name string) string {
	return filepath.Join(Dir(name), "logs")
}

// LogPath returns the client log file path.
func LogPath(name string) string {
	return filepath.Join(LogDir(name), "tvzchat.log")
}

// ConfigPath returns the global config file path.
func ConfigPath() string {
	return filepath.Join(BaseDir(), "config.toml")
}

// EnsureDir creates the profile directory tree with 0700 permissions.
func EnsureDir(name string) error {
	dirs := []string{
		Dir(name),
		LogDir(name),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0700); err != nil {
			return err
		}
	}
	return nil
}
