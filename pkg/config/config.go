package config

import (
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/arthur-debert/winify/pkg/errors"
)

// Config is the fully merged winify configuration
type Config struct {
	Desktop   Desktop   `koanf:"desktop"`
	Version   Version   `koanf:"version"`
	Compat    Compat    `koanf:"compat"`
	Extension Extension `koanf:"extension"`
	Shell     Shell     `koanf:"shell"`
}

// Desktop configures the session probes
type Desktop struct {
	ProcessName     string   `koanf:"process_name"`
	Binary          string   `koanf:"binary"`
	DesktopVar      string   `koanf:"desktop_var"`
	DesktopMarkers  []string `koanf:"desktop_markers"`
	SessionVar      string   `koanf:"session_var"`
	SessionPrefixes []string `koanf:"session_prefixes"`
}

// Version configures how the shell version is queried and validated
type Version struct {
	Command          []string `koanf:"command"`
	Product          string   `koanf:"product"`
	MinValid         int      `koanf:"min_valid"`
	MaxValid         int      `koanf:"max_valid"`
	MinimumSupported int      `koanf:"minimum_supported"`
	TestedCeiling    int      `koanf:"tested_ceiling"`
}

// CompatEntry maps a range of major versions to a release tag.
// Majors is a semver constraint evaluated against "<major>.0.0".
type CompatEntry struct {
	Majors string `koanf:"majors"`
	Tag    string `koanf:"tag"`
}

// Compat is the compatibility table
type Compat struct {
	Entries    []CompatEntry `koanf:"entries"`
	LatestFrom int           `koanf:"latest_from"`
	LatestTag  string        `koanf:"latest_tag"`
}

// Extension configures the managed extension and the reconcile timings
type Extension struct {
	ID              string        `koanf:"id"`
	CLI             string        `koanf:"cli"`
	InitialWait     time.Duration `koanf:"initial_wait"`
	RetryWait       time.Duration `koanf:"retry_wait"`
	DownloadURL     string        `koanf:"download_url"`
	DownloadTimeout time.Duration `koanf:"download_timeout"`
}

// Shell configures the D-Bus calls sent to the running shell
type Shell struct {
	BusName         string   `koanf:"bus_name"`
	ObjectPath      string   `koanf:"object_path"`
	ReloadOneMethod string   `koanf:"reload_one_method"`
	ReloadAllMethod string   `koanf:"reload_all_method"`
	ReloadAllArgs   []string `koanf:"reload_all_args"`
}

// Validate checks the invariants the rest of winify relies on
func (c *Config) Validate() error {
	v := c.Version
	if len(v.Command) == 0 {
		return errors.New(errors.ErrConfigValid, "version.command must not be empty")
	}
	if v.MinValid < 0 || v.MinValid > v.MaxValid {
		return errors.Newf(errors.ErrConfigValid, "version range [%d, %d] is invalid", v.MinValid, v.MaxValid)
	}

	if c.Compat.LatestTag == "" {
		return errors.New(errors.ErrConfigValid, "compat.latest_tag must be set")
	}
	for i, entry := range c.Compat.Entries {
		if entry.Tag == "" {
			return errors.Newf(errors.ErrConfigValid, "compat.entries[%d] has no tag", i)
		}
		if _, err := semver.NewConstraint(entry.Majors); err != nil {
			return errors.Wrapf(err, errors.ErrConfigValid, "compat.entries[%d] majors %q", i, entry.Majors)
		}
	}

	e := c.Extension
	if e.ID == "" {
		return errors.New(errors.ErrConfigValid, "extension.id must be set")
	}
	if e.InitialWait < 0 || e.RetryWait < 0 {
		return errors.New(errors.ErrConfigValid, "extension waits must not be negative")
	}

	return nil
}
