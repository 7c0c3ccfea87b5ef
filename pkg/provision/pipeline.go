// Package provision strings the desktop probe, version resolution,
// compatibility mapping, installation and reconciliation into one run.
//
// Resolution and mapping failures end the run with an error. Everything
// after them is best effort and only ever adds advisories to the Report.
package provision

import (
	"context"
	"fmt"

	"github.com/arthur-debert/winify/pkg/advisory"
	"github.com/arthur-debert/winify/pkg/config"
	"github.com/arthur-debert/winify/pkg/desktop"
	"github.com/arthur-debert/winify/pkg/errors"
	"github.com/arthur-debert/winify/pkg/extension"
	"github.com/arthur-debert/winify/pkg/gnome"
	"github.com/arthur-debert/winify/pkg/logging"
	"github.com/arthur-debert/winify/pkg/paths"
	"github.com/arthur-debert/winify/pkg/runner"
	"github.com/rs/zerolog"
)

// Prober reports whether a GNOME-family desktop is running
type Prober interface {
	Detect(ctx context.Context) desktop.Detection
}

// VersionSource queries and resolves the shell version
type VersionSource interface {
	Query(ctx context.Context) (gnome.Resolution, error)
}

// TagMapper picks the release tag for a resolution
type TagMapper interface {
	MapResolution(r gnome.Resolution) (string, error)
}

// Installer installs a tagged release of an extension
type Installer interface {
	Install(ctx context.Context, id, tag string) (string, error)
}

// Ensurer reconciles an extension toward the enabled state
type Ensurer interface {
	Ensure(ctx context.Context, id string) extension.Outcome
}

// ConfirmFunc asks the user a yes/no question
type ConfirmFunc func(prompt string) bool

// Options controls a pipeline run
type Options struct {
	DryRun      bool
	AssumeYes   bool
	SkipInstall bool
	// ExtensionID overrides the configured extension
	ExtensionID string
}

// Pipeline runs the provisioning steps in order
type Pipeline struct {
	Prober      Prober
	Versions    VersionSource
	Mapper      TagMapper
	Installer   Installer
	Reconciler  Ensurer
	Registry    extension.Registry
	Confirm     ConfirmFunc
	ExtensionID string
	Logger      zerolog.Logger
}

// New wires the production collaborators from configuration
func New(cfg *config.Config, p paths.Paths, r runner.Runner) (*Pipeline, error) {
	mapper, err := gnome.NewMapper(cfg.Compat, cfg.Version)
	if err != nil {
		return nil, err
	}

	registry := extension.NewCLIRegistry(cfg.Extension.CLI, r)
	shell := extension.NewDBusShell(cfg.Shell)

	return &Pipeline{
		Prober:      desktop.NewProber(cfg.Desktop, r),
		Versions:    gnome.NewResolver(cfg.Version, r),
		Mapper:      mapper,
		Installer:   extension.NewInstaller(cfg.Extension, registry, p.DownloadsDir()),
		Reconciler:  extension.NewReconciler(registry, shell, cfg.Extension),
		Registry:    registry,
		ExtensionID: cfg.Extension.ID,
		Logger:      logging.GetLogger("provision"),
	}, nil
}

func (p *Pipeline) extensionID(opts Options) string {
	if opts.ExtensionID != "" {
		return opts.ExtensionID
	}
	return p.ExtensionID
}

// Probe runs the desktop detection and applies the override policy. It
// returns ErrDesktopNotFound when no desktop is found and the user declines.
func (p *Pipeline) Probe(ctx context.Context, opts Options, report *Report) error {
	detection := p.Prober.Detect(ctx)
	report.Desktop = &detection
	if detection.Present {
		p.Logger.Info().Str("signal", string(detection.Signal)).Msg("Desktop detected")
		return nil
	}

	report.Advisories.Add(p.Logger, advisory.Advisory{
		Code:    advisory.DesktopNotDetected,
		Message: "No GNOME desktop session was detected",
		Remediation: []string{
			"Run winify from inside a GNOME session",
		},
	})

	switch {
	case opts.AssumeYes:
		report.Overridden = true
	case p.Confirm != nil && p.Confirm("No GNOME desktop detected. Continue anyway?"):
		report.Overridden = true
	default:
		return errors.New(errors.ErrDesktopNotFound, "no GNOME desktop detected")
	}

	p.Logger.Warn().Msg("Continuing without a detected desktop")
	return nil
}

// Detect resolves the shell version and the matching release tag
func (p *Pipeline) Detect(ctx context.Context, report *Report) error {
	res, err := p.Versions.Query(ctx)
	if err != nil {
		return err
	}
	report.Resolution = &res
	report.Advisories = append(report.Advisories, res.Advisories...)

	tag, err := p.Mapper.MapResolution(res)
	if err != nil {
		return err
	}
	report.ReleaseTag = tag

	p.Logger.Info().Str("version", res.Version.Full).Str("tag", tag).Msg("Release selected")
	return nil
}

// Enable reconciles id and folds the outcome into report
func (p *Pipeline) Enable(ctx context.Context, id string, report *Report) {
	outcome := p.Reconciler.Ensure(ctx, id)
	report.ExtensionID = id
	report.Outcome = &outcome
	report.Advisories = append(report.Advisories, outcome.Advisories...)
}

// Inspect records the current state of id without changing it
func (p *Pipeline) Inspect(ctx context.Context, id string, report *Report) {
	state := extension.Observe(ctx, p.Registry, id, p.Logger)
	report.ExtensionID = id
	report.DryRun = true
	report.Observed = &state
	p.Logger.Info().Str("extension", id).Stringer("state", state).Msg("Extension inspected")
}

// Run performs the whole provisioning sequence. A nil error with advisories
// in the report still counts as a successful run.
func (p *Pipeline) Run(ctx context.Context, opts Options) (*Report, error) {
	done := logging.LogOperationStart(p.Logger, "provision")
	defer done()

	id := p.extensionID(opts)
	report := &Report{ExtensionID: id, DryRun: opts.DryRun}

	if err := p.Probe(ctx, opts, report); err != nil {
		return report, err
	}
	if err := p.Detect(ctx, report); err != nil {
		return report, err
	}
	if opts.DryRun {
		report.Archive = p.archiveHint(id, report.ReleaseTag)
		return report, nil
	}

	if opts.SkipInstall {
		report.InstallSkipped = true
	} else {
		archive, err := p.Installer.Install(ctx, id, report.ReleaseTag)
		report.Archive = archive
		if err != nil {
			report.Advisories.Add(p.Logger, advisory.Advisory{
				Code:    advisory.InstallFailed,
				Message: fmt.Sprintf("Installing %s %s failed: %v", id, report.ReleaseTag, err),
				Remediation: []string{
					fmt.Sprintf("Install release %s of %s from extensions.gnome.org", report.ReleaseTag, id),
				},
			})
		} else {
			report.Installed = true
		}
	}

	p.Enable(ctx, id, report)

	if err := ctx.Err(); err != nil {
		return report, err
	}
	return report, nil
}

func (p *Pipeline) archiveHint(id, tag string) string {
	if inst, ok := p.Installer.(interface{ ArchiveURL(id, tag string) string }); ok {
		return inst.ArchiveURL(id, tag)
	}
	return ""
}
