package gnome

import (
	"github.com/Masterminds/semver/v3"
	"github.com/arthur-debert/winify/pkg/config"
	"github.com/arthur-debert/winify/pkg/errors"
	"github.com/arthur-debert/winify/pkg/logging"
	"github.com/rs/zerolog"
)

type compatEntry struct {
	constraint *semver.Constraints
	source     string
	tag        string
}

// Mapper resolves release tags for validated versions
type Mapper struct {
	entries    []compatEntry
	latestFrom int
	latestTag  string
	logger     zerolog.Logger
}

// NewMapper compiles the table and checks that no major in the valid range
// matches more than one entry.
func NewMapper(cfg config.Compat, valid config.Version) (*Mapper, error) {
	if cfg.LatestTag == "" {
		return nil, errors.New(errors.ErrConfigValid, "compatibility table has no latest tag")
	}

	m := &Mapper{
		latestFrom: cfg.LatestFrom,
		latestTag:  cfg.LatestTag,
		logger:     logging.GetLogger("gnome.mapper"),
	}
	for i, e := range cfg.Entries {
		c, err := semver.NewConstraint(e.Majors)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigValid, "compat entry %d: bad majors %q", i, e.Majors)
		}
		m.entries = append(m.entries, compatEntry{constraint: c, source: e.Majors, tag: e.Tag})
	}

	for major := valid.MinValid; major <= valid.MaxValid; major++ {
		matches := m.matching(major)
		if major >= m.latestFrom && len(matches) > 0 {
			return nil, errors.Newf(errors.ErrConfigValid,
				"major %d matches %q and the latest bucket (>= %d)", major, matches[0].source, m.latestFrom)
		}
		if len(matches) > 1 {
			return nil, errors.Newf(errors.ErrConfigValid,
				"major %d matches both %q and %q", major, matches[0].source, matches[1].source)
		}
	}

	return m, nil
}

func (m *Mapper) matching(major int) []compatEntry {
	if major < 0 {
		return nil
	}
	v := semver.New(uint64(major), 0, 0, "", "")
	var out []compatEntry
	for _, e := range m.entries {
		if e.constraint.Check(v) {
			out = append(out, e)
		}
	}
	return out
}

// Latest returns the tag used for every major at or above the latest bucket
func (m *Mapper) Latest() string {
	return m.latestTag
}

// Map returns the release tag for v
func (m *Mapper) Map(v ResolvedVersion) (string, error) {
	if v.Major >= m.latestFrom {
		m.logger.Debug().Int("major", v.Major).Str("tag", m.latestTag).Msg("Using latest release")
		return m.latestTag, nil
	}

	matches := m.matching(v.Major)
	if len(matches) == 0 {
		return "", errors.Newf(errors.ErrUnsupported, "no compatible release for major version %d", v.Major).
			WithDetail("major", v.Major)
	}

	m.logger.Debug().Int("major", v.Major).Str("tag", matches[0].tag).Str("majors", matches[0].source).Msg("Matched release")
	return matches[0].tag, nil
}

// MapResolution honours PreferLatest before consulting the table
func (m *Mapper) MapResolution(r Resolution) (string, error) {
	if r.PreferLatest {
		return m.latestTag, nil
	}
	return m.Map(r.Version)
}
