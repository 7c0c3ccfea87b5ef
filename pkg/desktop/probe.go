// Package desktop detects whether a GNOME-family session is running.
//
// Four independent signals are checked in a fixed order and combined with
// OR semantics. A probe that fails is a negative signal; Detect never
// returns an error.
package desktop

import (
	"context"
	"os"
	"os/exec"
	"strings"

	"github.com/arthur-debert/winify/pkg/config"
	"github.com/arthur-debert/winify/pkg/logging"
	"github.com/arthur-debert/winify/pkg/runner"
	"github.com/rs/zerolog"
)

// Signal names one of the desktop probes
type Signal string

const (
	SignalNone    Signal = ""
	SignalProcess Signal = "process"
	SignalDesktop Signal = "desktop_env"
	SignalSession Signal = "session_env"
	SignalBinary  Signal = "binary"
)

// Detection is the outcome of a probe run
type Detection struct {
	Present bool   `json:"present"`
	Signal  Signal `json:"signal,omitempty"`
	Detail  string `json:"detail,omitempty"`
}

// Prober evaluates the desktop signals
type Prober struct {
	cfg      config.Desktop
	runner   runner.Runner
	getenv   func(string) string
	lookPath func(string) (string, error)
	logger   zerolog.Logger
}

// Option customizes a Prober
type Option func(*Prober)

// WithGetenv replaces os.Getenv
func WithGetenv(fn func(string) string) Option {
	return func(p *Prober) { p.getenv = fn }
}

// WithLookPath replaces exec.LookPath
func WithLookPath(fn func(string) (string, error)) Option {
	return func(p *Prober) { p.lookPath = fn }
}

// WithLogger sets the logger
func WithLogger(logger zerolog.Logger) Option {
	return func(p *Prober) { p.logger = logger }
}

// NewProber creates a Prober; r is used for the process lookup
func NewProber(cfg config.Desktop, r runner.Runner, opts ...Option) *Prober {
	p := &Prober{
		cfg:      cfg,
		runner:   r,
		getenv:   os.Getenv,
		lookPath: exec.LookPath,
		logger:   logging.GetLogger("desktop.prober"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Present reports whether any signal is positive
func (p *Prober) Present(ctx context.Context) bool {
	return p.Detect(ctx).Present
}

// Detect evaluates the signals in order and stops at the first positive one
func (p *Prober) Detect(ctx context.Context) Detection {
	checks := []struct {
		signal Signal
		check  func(context.Context) (bool, string)
	}{
		{SignalProcess, p.processRunning},
		{SignalDesktop, p.desktopMatches},
		{SignalSession, p.sessionMatches},
		{SignalBinary, p.binaryAvailable},
	}

	for _, c := range checks {
		ok, detail := c.check(ctx)
		p.logger.Debug().Str("signal", string(c.signal)).Bool("positive", ok).Str("detail", detail).Msg("Desktop probe")
		if ok {
			return Detection{Present: true, Signal: c.signal, Detail: detail}
		}
	}

	return Detection{Present: false}
}

func (p *Prober) processRunning(ctx context.Context) (bool, string) {
	if p.cfg.ProcessName == "" || p.runner == nil {
		return false, ""
	}
	res, err := p.runner.Run(ctx, "pgrep", []string{"-x", p.cfg.ProcessName}, runner.Options{})
	if err != nil {
		// pgrep exits 1 when nothing matches
		return false, ""
	}
	if len(res.Lines()) == 0 {
		return false, ""
	}
	return true, p.cfg.ProcessName
}

func (p *Prober) desktopMatches(_ context.Context) (bool, string) {
	if p.cfg.DesktopVar == "" {
		return false, ""
	}
	value := p.getenv(p.cfg.DesktopVar)
	if value == "" {
		return false, ""
	}
	for _, marker := range p.cfg.DesktopMarkers {
		if marker != "" && strings.Contains(value, marker) {
			return true, p.cfg.DesktopVar + "=" + value
		}
	}
	return false, ""
}

func (p *Prober) sessionMatches(_ context.Context) (bool, string) {
	if p.cfg.SessionVar == "" {
		return false, ""
	}
	value := p.getenv(p.cfg.SessionVar)
	if value == "" {
		return false, ""
	}
	lowered := strings.ToLower(value)
	for _, prefix := range p.cfg.SessionPrefixes {
		if prefix != "" && strings.HasPrefix(lowered, prefix) {
			return true, p.cfg.SessionVar + "=" + value
		}
	}
	return false, ""
}

func (p *Prober) binaryAvailable(_ context.Context) (bool, string) {
	if p.cfg.Binary == "" {
		return false, ""
	}
	path, err := p.lookPath(p.cfg.Binary)
	if err != nil {
		return false, ""
	}
	return true, path
}
