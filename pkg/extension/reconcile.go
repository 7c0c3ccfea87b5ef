package extension

import (
	"context"
	"fmt"
	"time"

	"github.com/arthur-debert/winify/pkg/advisory"
	"github.com/arthur-debert/winify/pkg/config"
	"github.com/arthur-debert/winify/pkg/logging"
	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"
)

// FinalState is where a reconcile run ends
type FinalState int

const (
	Enabled FinalState = iota
	EnabledAfterRetry
	NotFoundAfterRescan
	EnableFailed
)

func (s FinalState) String() string {
	switch s {
	case Enabled:
		return "enabled"
	case EnabledAfterRetry:
		return "enabled-after-retry"
	case NotFoundAfterRescan:
		return "not-found-after-rescan"
	case EnableFailed:
		return "enable-failed"
	default:
		return fmt.Sprintf("FinalState(%d)", int(s))
	}
}

// MarshalText renders the state name in JSON output
func (s FinalState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Succeeded reports whether the extension ended up enabled
func (s FinalState) Succeeded() bool {
	return s == Enabled || s == EnabledAfterRetry
}

// Outcome describes a reconcile run
type Outcome struct {
	ID    string     `json:"id"`
	State FinalState `json:"state"`
	// Observed is the state seen by the last listing before acting
	Observed  State `json:"observed"`
	Rescanned bool  `json:"rescanned"`
	Retried   bool  `json:"retried"`
	// Verified is set when the enabled listing confirms the result
	Verified   bool          `json:"verified"`
	Reloaded   bool          `json:"reloaded"`
	Advisories advisory.List `json:"advisories,omitempty"`
}

// SleepFunc waits for d or until ctx is done
type SleepFunc func(ctx context.Context, d time.Duration) error

// Sleep is the default SleepFunc
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Reconciler enables an extension whose registration may lag behind its
// installation.
type Reconciler struct {
	registry    Registry
	shell       Shell
	initialWait time.Duration
	retryWait   time.Duration
	sleep       SleepFunc
	logger      zerolog.Logger
}

// ReconcilerOption customizes a Reconciler
type ReconcilerOption func(*Reconciler)

// WithSleep replaces the settle wait before each observation
func WithSleep(fn SleepFunc) ReconcilerOption {
	return func(r *Reconciler) { r.sleep = fn }
}

// WithReconcilerLogger sets the logger
func WithReconcilerLogger(logger zerolog.Logger) ReconcilerOption {
	return func(r *Reconciler) { r.logger = logger }
}

// NewReconciler creates a Reconciler using the waits from cfg
func NewReconciler(reg Registry, shell Shell, cfg config.Extension, opts ...ReconcilerOption) *Reconciler {
	r := &Reconciler{
		registry:    reg,
		shell:       shell,
		initialWait: cfg.InitialWait,
		retryWait:   cfg.RetryWait,
		sleep:       Sleep,
		logger:      logging.GetLogger("extension.reconciler"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Ensure drives id toward the enabled state. It performs at most one rescan
// and one enable retry and never returns an error.
func (r *Reconciler) Ensure(ctx context.Context, id string) Outcome {
	logger := r.logger.With().Str("extension", id).Logger()
	done := logging.LogOperationStart(logger, "reconcile")
	defer done()

	out := Outcome{ID: id}

	r.wait(ctx, logger, r.initialWait)
	out.Observed = Observe(ctx, r.registry, id, logger)
	logger.Debug().Stringer("state", out.Observed).Msg("Observed extension")

	if out.Observed == NotPresent {
		out.Rescanned = true
		r.reloadAll(ctx, logger)
		r.wait(ctx, logger, r.initialWait)
		out.Observed = Observe(ctx, r.registry, id, logger)
		logger.Debug().Stringer("state", out.Observed).Msg("Observed extension after rescan")

		if out.Observed == NotPresent {
			out.State = NotFoundAfterRescan
			out.Advisories.Add(logger, advisory.Advisory{
				Code:    advisory.NotFoundAfterScan,
				Message: fmt.Sprintf("Extension %s is not registered with the shell", id),
				Remediation: []string{
					"Log out and back in so the shell picks up new extensions",
					fmt.Sprintf("Then run: gnome-extensions enable %s", id),
				},
			})
			return out
		}
	}

	if out.Observed == PresentEnabled {
		out.State = Enabled
		out.Verified = true
	} else {
		attempts, err := r.enable(ctx, logger, id)
		out.Retried = attempts > 1
		if err != nil {
			out.State = EnableFailed
			out.Advisories.Add(logger, advisory.Advisory{
				Code:    advisory.EnableFailed,
				Message: fmt.Sprintf("Extension %s could not be enabled: %v", id, err),
				Remediation: []string{
					fmt.Sprintf("Run: gnome-extensions enable %s", id),
					"If that fails, log out and back in and try again",
				},
			})
			return out
		}
		out.State = Enabled
		if out.Retried {
			out.State = EnabledAfterRetry
		}
		out.Verified = r.verify(ctx, logger, id)
		if !out.Verified {
			out.Advisories.Add(logger, advisory.Advisory{
				Code:    advisory.NotVerified,
				Message: fmt.Sprintf("Extension %s was enabled but is not listed as enabled yet", id),
				Remediation: []string{
					"Check the Extensions app after logging back in",
				},
			})
		}
	}

	out.Reloaded = r.shell.ReloadOne(ctx, id)
	if !out.Reloaded {
		out.Advisories.Add(logger, advisory.Advisory{
			Code:    advisory.ReloadFailed,
			Message: fmt.Sprintf("The running shell did not reload %s", id),
			Remediation: []string{
				"Log out and back in for settings to take effect",
			},
		})
	}

	logger.Info().Stringer("state", out.State).Bool("verified", out.Verified).Msg("Reconcile finished")
	return out
}

// enable tries once, then reloads the shell, waits and tries exactly once
// more. It returns the number of enable attempts.
func (r *Reconciler) enable(ctx context.Context, logger zerolog.Logger, id string) (int, error) {
	attempts := 0

	// NewConstant rejects a zero wait
	backoff := retry.WithMaxRetries(1, retry.NewConstant(max(r.retryWait, time.Nanosecond)))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempts++
		err := r.registry.Enable(ctx, id)
		if err == nil {
			return nil
		}
		logger.Debug().Err(err).Int("attempt", attempts).Msg("Enable failed")
		if attempts == 1 {
			r.reloadAll(ctx, logger)
		}
		return retry.RetryableError(err)
	})

	return attempts, err
}

func (r *Reconciler) verify(ctx context.Context, logger zerolog.Logger, id string) bool {
	return Observe(ctx, r.registry, id, logger) == PresentEnabled
}

func (r *Reconciler) reloadAll(ctx context.Context, logger zerolog.Logger) {
	if !r.shell.ReloadAll(ctx) {
		logger.Debug().Msg("Shell rescan request was not delivered")
	}
}

func (r *Reconciler) wait(ctx context.Context, logger zerolog.Logger, d time.Duration) {
	if err := r.sleep(ctx, d); err != nil {
		logger.Debug().Err(err).Dur("wait", d).Msg("Wait interrupted")
	}
}
