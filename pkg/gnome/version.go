package gnome

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/arthur-debert/winify/pkg/advisory"
	"github.com/arthur-debert/winify/pkg/config"
	"github.com/arthur-debert/winify/pkg/errors"
	"github.com/arthur-debert/winify/pkg/logging"
	"github.com/arthur-debert/winify/pkg/runner"
	"github.com/rs/zerolog"
)

// ResolvedVersion is a validated shell version
type ResolvedVersion struct {
	Major int    `json:"major"`
	Full  string `json:"full"`
}

func (v ResolvedVersion) String() string {
	return v.Full
}

// Resolution is the outcome of resolving a version string
type Resolution struct {
	Version    ResolvedVersion `json:"version"`
	Strategy   string          `json:"strategy"`
	Advisories advisory.List   `json:"advisories,omitempty"`
	// PreferLatest is set when the version is newer than anything tested
	PreferLatest bool `json:"prefer_latest"`
}

// match is what a single strategy extracts from the raw text
type match struct {
	major string
	full  string
}

type strategy struct {
	name  string
	match func(raw string) (match, bool)
}

// Resolver parses version command output
type Resolver struct {
	cfg        config.Version
	runner     runner.Runner
	strategies []strategy
	logger     zerolog.Logger
}

// NewResolver builds the strategy chain for the configured product name
func NewResolver(cfg config.Version, r runner.Runner) *Resolver {
	return &Resolver{
		cfg:        cfg,
		runner:     r,
		strategies: buildStrategies(cfg.Product),
		logger:     logging.GetLogger("gnome.resolver"),
	}
}

func buildStrategies(product string) []strategy {
	prefix := regexp.QuoteMeta(strings.TrimSpace(product)) + `\s+`

	productDotted := regexp.MustCompile(prefix + `(\d+)\.(\d+)((?:\.\d+)*)`)
	productMajor := regexp.MustCompile(prefix + `(\d+)(?:[^.\d]|$)`)
	bareDotted := regexp.MustCompile(`(\d+)\.(\d+)`)
	bareInteger := regexp.MustCompile(`\d+`)

	return []strategy{
		{
			name: "product-dotted",
			match: func(raw string) (match, bool) {
				m := productDotted.FindStringSubmatch(raw)
				if m == nil {
					return match{}, false
				}
				return match{major: m[1], full: m[1] + "." + m[2] + m[3]}, true
			},
		},
		{
			name: "product-major",
			match: func(raw string) (match, bool) {
				m := productMajor.FindStringSubmatch(raw)
				if m == nil {
					return match{}, false
				}
				return match{major: m[1], full: m[1]}, true
			},
		},
		{
			name: "bare-dotted",
			match: func(raw string) (match, bool) {
				m := bareDotted.FindStringSubmatch(raw)
				if m == nil {
					return match{}, false
				}
				return match{major: m[1], full: m[1] + "." + m[2]}, true
			},
		},
		{
			name: "bare-integer",
			match: func(raw string) (match, bool) {
				m := bareInteger.FindString(raw)
				if m == "" {
					return match{}, false
				}
				return match{major: m, full: m}, true
			},
		},
	}
}

// Query runs the version command and resolves its output
func (r *Resolver) Query(ctx context.Context) (Resolution, error) {
	if r.runner == nil || len(r.cfg.Command) == 0 {
		return Resolution{}, errors.New(errors.ErrInternal, "no version command configured")
	}

	res, err := r.runner.Run(ctx, r.cfg.Command[0], r.cfg.Command[1:], runner.Options{})
	if err != nil {
		return Resolution{}, errors.Wrap(err, errors.ErrCommand, "failed to query shell version")
	}

	raw := strings.TrimSpace(string(res.Stdout))
	r.logger.Debug().Str("raw", raw).Msg("Version command output")
	return r.Resolve(raw)
}

// Resolve applies the strategies in order and validates the first match
func (r *Resolver) Resolve(raw string) (Resolution, error) {
	var (
		found match
		name  string
	)
	for _, s := range r.strategies {
		if m, ok := s.match(raw); ok {
			found, name = m, s.name
			break
		}
	}
	if name == "" {
		return Resolution{}, errors.Newf(errors.ErrUnparseable, "no version found in %q", raw).
			WithDetail("raw", raw)
	}

	major, err := strconv.Atoi(found.major)
	if err != nil || major < r.cfg.MinValid || major > r.cfg.MaxValid {
		return Resolution{}, errors.Newf(errors.ErrOutOfRange,
			"major version %s is outside [%d, %d]", found.major, r.cfg.MinValid, r.cfg.MaxValid).
			WithDetail("raw", raw).
			WithDetail("strategy", name)
	}

	res := Resolution{
		Version:  ResolvedVersion{Major: major, Full: found.full},
		Strategy: name,
	}
	if res.Version.Full == "" {
		res.Version.Full = strconv.Itoa(major)
	}

	switch {
	case major < r.cfg.MinimumSupported:
		res.Advisories.Add(r.logger, advisory.Advisory{
			Code:    advisory.BelowMinimum,
			Message: fmt.Sprintf("%s %s is older than the minimum supported version %d", r.cfg.Product, res.Version.Full, r.cfg.MinimumSupported),
			Remediation: []string{
				fmt.Sprintf("Upgrade to %s %d or later", r.cfg.Product, r.cfg.MinimumSupported),
			},
		})
	case major > r.cfg.TestedCeiling:
		res.PreferLatest = true
		res.Advisories.Add(r.logger, advisory.Advisory{
			Code:    advisory.NewerThanTested,
			Message: fmt.Sprintf("%s %s is newer than the last tested version %d, using the latest release", r.cfg.Product, res.Version.Full, r.cfg.TestedCeiling),
		})
	}

	r.logger.Info().
		Int("major", major).
		Str("full", res.Version.Full).
		Str("strategy", name).
		Msg("Resolved shell version")

	return res, nil
}
