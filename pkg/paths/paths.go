// Package paths provides centralized path handling for winify.
// It follows the XDG Base Directory specification, with environment
// overrides for each directory so tests and packagers can relocate them.
package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

// Environment variable names
const (
	// EnvConfigDir overrides the XDG config directory for winify
	EnvConfigDir = "WINIFY_CONFIG_DIR"

	// EnvCacheDir overrides the XDG cache directory for winify
	EnvCacheDir = "WINIFY_CACHE_DIR"

	// EnvStateDir overrides the XDG state directory for winify
	EnvStateDir = "WINIFY_STATE_DIR"

	// EnvHome is the standard home directory variable
	EnvHome = "HOME"
)

// Directory and file names. These are not user-configurable.
const (
	// AppDirName is the directory name used under each XDG base directory
	AppDirName = "winify"

	// ConfigFileName is the name of the user configuration file
	ConfigFileName = "config.toml"

	// DownloadsDir is the cache subdirectory for extension archives
	DownloadsDir = "downloads"

	// LogFileName is the name of the log file
	LogFileName = "winify.log"
)

// Paths provides centralized path management for winify
type Paths interface {
	ConfigDir() string
	CacheDir() string
	StateDir() string
	ConfigFilePath() string
	DownloadsDir() string
	LogFilePath() string
}

type paths struct {
	xdgConfig string
	xdgCache  string
	xdgState  string
}

// New resolves the winify directories, respecting environment overrides.
func New() Paths {
	p := &paths{
		xdgConfig: filepath.Join(xdg.ConfigHome, AppDirName),
		xdgCache:  filepath.Join(xdg.CacheHome, AppDirName),
		xdgState:  filepath.Join(xdg.StateHome, AppDirName),
	}

	if dir := os.Getenv(EnvConfigDir); dir != "" {
		p.xdgConfig = expandHome(dir)
	}
	if dir := os.Getenv(EnvCacheDir); dir != "" {
		p.xdgCache = expandHome(dir)
	}
	if dir := os.Getenv(EnvStateDir); dir != "" {
		p.xdgState = expandHome(dir)
	}

	return p
}

// expandHome expands ~ to the home directory
func expandHome(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = os.Getenv(EnvHome)
		if homeDir == "" {
			return path
		}
	}

	if len(path) == 1 {
		return homeDir
	}

	if path[1] == '/' || path[1] == filepath.Separator {
		return filepath.Join(homeDir, path[2:])
	}

	// ~user is not expanded
	return path
}

// ConfigDir returns the XDG config directory for winify
func (p *paths) ConfigDir() string {
	return p.xdgConfig
}

// CacheDir returns the XDG cache directory for winify
func (p *paths) CacheDir() string {
	return p.xdgCache
}

// StateDir returns the XDG state directory for winify
func (p *paths) StateDir() string {
	return p.xdgState
}

// ConfigFilePath returns the default location of the user config file
func (p *paths) ConfigFilePath() string {
	return filepath.Join(p.xdgConfig, ConfigFileName)
}

// DownloadsDir returns where downloaded extension archives are kept
func (p *paths) DownloadsDir() string {
	return filepath.Join(p.xdgCache, DownloadsDir)
}

// LogFilePath returns the log file location
func (p *paths) LogFilePath() string {
	return filepath.Join(p.xdgState, LogFileName)
}
