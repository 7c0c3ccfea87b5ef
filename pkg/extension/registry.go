package extension

import (
	"context"
	"slices"

	"github.com/arthur-debert/winify/pkg/logging"
	"github.com/arthur-debert/winify/pkg/runner"
	"github.com/rs/zerolog"
)

// State is the observed state of one extension
type State int

const (
	NotPresent State = iota
	PresentDisabled
	PresentEnabled
)

func (s State) String() string {
	switch s {
	case PresentDisabled:
		return "present-disabled"
	case PresentEnabled:
		return "present-enabled"
	default:
		return "not-present"
	}
}

// MarshalText renders the state name in JSON output
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Registry is the shell's view of installed extensions
type Registry interface {
	Installed(ctx context.Context) ([]string, error)
	Enabled(ctx context.Context) ([]string, error)
	Enable(ctx context.Context, id string) error
	Install(ctx context.Context, archive string) error
}

// Observe derives the state of id from the two listings. A listing that
// cannot be read counts as not containing id.
func Observe(ctx context.Context, reg Registry, id string, logger zerolog.Logger) State {
	installed, err := reg.Installed(ctx)
	if err != nil {
		logger.Debug().Err(err).Msg("Listing installed extensions failed")
		return NotPresent
	}
	if !slices.Contains(installed, id) {
		return NotPresent
	}

	enabled, err := reg.Enabled(ctx)
	if err != nil {
		logger.Debug().Err(err).Msg("Listing enabled extensions failed")
		return PresentDisabled
	}
	if slices.Contains(enabled, id) {
		return PresentEnabled
	}
	return PresentDisabled
}

// CLIRegistry talks to the registry through the gnome-extensions tool
type CLIRegistry struct {
	cli    string
	runner runner.Runner
	logger zerolog.Logger
}

// NewCLIRegistry creates a registry backed by the named command
func NewCLIRegistry(cli string, r runner.Runner) *CLIRegistry {
	return &CLIRegistry{
		cli:    cli,
		runner: r,
		logger: logging.GetLogger("extension.registry"),
	}
}

func (c *CLIRegistry) list(ctx context.Context, args ...string) ([]string, error) {
	res, err := c.runner.Run(ctx, c.cli, args, runner.Options{})
	if err != nil {
		return nil, err
	}
	return res.Lines(), nil
}

// Installed lists every installed extension id
func (c *CLIRegistry) Installed(ctx context.Context) ([]string, error) {
	return c.list(ctx, "list")
}

// Enabled lists the enabled extension ids
func (c *CLIRegistry) Enabled(ctx context.Context) ([]string, error) {
	return c.list(ctx, "list", "--enabled")
}

// Enable enables id
func (c *CLIRegistry) Enable(ctx context.Context, id string) error {
	_, err := c.runner.Run(ctx, c.cli, []string{"enable", id}, runner.Options{})
	return err
}

// Install installs an extension zip, replacing an existing copy
func (c *CLIRegistry) Install(ctx context.Context, archive string) error {
	_, err := c.runner.Run(ctx, c.cli, []string{"install", "--force", archive}, runner.Options{})
	return err
}

var _ Registry = (*CLIRegistry)(nil)
