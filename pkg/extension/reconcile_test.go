// pkg/extension/reconcile_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: MockRegistry, MockShell
// PURPOSE: Test every path of the reconcile state machine

package extension_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/arthur-debert/winify/pkg/advisory"
	"github.com/arthur-debert/winify/pkg/config"
	"github.com/arthur-debert/winify/pkg/extension"
	"github.com/arthur-debert/winify/pkg/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

const extID = "dash-to-panel@jderose9.github.com"

type sleepRecorder struct {
	waits []time.Duration
	fail  func(d time.Duration) error
}

func (s *sleepRecorder) sleep(_ context.Context, d time.Duration) error {
	s.waits = append(s.waits, d)
	if s.fail != nil {
		return s.fail(d)
	}
	return nil
}

func newReconciler(reg *testutil.MockRegistry, shell *testutil.MockShell, sleeper *sleepRecorder) *extension.Reconciler {
	cfg := config.Extension{InitialWait: 3 * time.Second}
	return extension.NewReconciler(reg, shell, cfg,
		extension.WithSleep(sleeper.sleep),
		extension.WithReconcilerLogger(zerolog.Nop()),
	)
}

func listing(ids ...string) func(context.Context) ([]string, error) {
	return func(context.Context) ([]string, error) { return ids, nil }
}

// enablingRegistry lists id as installed and reports it enabled once Enable
// has succeeded.
func enablingRegistry(enableErrs ...error) *testutil.MockRegistry {
	var enabled atomic.Bool
	var calls atomic.Int32
	return &testutil.MockRegistry{
		InstalledFunc: listing(extID),
		EnabledFunc: func(context.Context) ([]string, error) {
			if enabled.Load() {
				return []string{extID}, nil
			}
			return nil, nil
		},
		EnableFunc: func(context.Context, string) error {
			n := int(calls.Add(1))
			if n <= len(enableErrs) && enableErrs[n-1] != nil {
				return enableErrs[n-1]
			}
			enabled.Store(true)
			return nil
		},
	}
}

func TestEnsureAlreadyEnabled(t *testing.T) {
	reg := &testutil.MockRegistry{
		InstalledFunc: listing("other@x", extID),
		EnabledFunc:   listing(extID),
	}
	shell := &testutil.MockShell{}
	sleeper := &sleepRecorder{}

	out := newReconciler(reg, shell, sleeper).Ensure(context.Background(), extID)

	assert.Equal(t, extension.Enabled, out.State)
	assert.Equal(t, extension.PresentEnabled, out.Observed)
	assert.False(t, out.Rescanned)
	assert.False(t, out.Retried)
	assert.True(t, out.Verified)
	assert.True(t, out.Reloaded)
	assert.Empty(t, out.Advisories)

	assert.Equal(t, 0, reg.CallCount("Enable("+extID+")"))
	assert.Equal(t, 0, shell.CallCount("ReloadAll"))
	assert.Equal(t, 1, shell.CallCount("ReloadOne("+extID+")"))
	assert.Equal(t, []time.Duration{3 * time.Second}, sleeper.waits)
}

func TestEnsureEnablesDisabled(t *testing.T) {
	reg := enablingRegistry()
	shell := &testutil.MockShell{}
	sleeper := &sleepRecorder{}

	out := newReconciler(reg, shell, sleeper).Ensure(context.Background(), extID)

	assert.Equal(t, extension.Enabled, out.State)
	assert.Equal(t, extension.PresentDisabled, out.Observed)
	assert.True(t, out.Verified)
	assert.Empty(t, out.Advisories)
	assert.Equal(t, 1, reg.CallCount("Enable("+extID+")"))
	assert.Equal(t, 0, shell.CallCount("ReloadAll"))
	assert.Equal(t, []time.Duration{3 * time.Second}, sleeper.waits)
}

func TestEnsureRescanRecovery(t *testing.T) {
	var listings atomic.Int32
	reg := enablingRegistry()
	reg.InstalledFunc = func(context.Context) ([]string, error) {
		if listings.Add(1) == 1 {
			return nil, nil
		}
		return []string{extID}, nil
	}
	shell := &testutil.MockShell{}
	sleeper := &sleepRecorder{}

	out := newReconciler(reg, shell, sleeper).Ensure(context.Background(), extID)

	assert.True(t, out.State.Succeeded())
	assert.NotEqual(t, extension.NotFoundAfterRescan, out.State)
	assert.True(t, out.Rescanned)
	assert.Equal(t, 1, shell.CallCount("ReloadAll"))
	assert.Equal(t, 1, reg.CallCount("Enable("+extID+")"))
	assert.Equal(t, []time.Duration{3 * time.Second, 3 * time.Second}, sleeper.waits)
}

func TestEnsureRetry(t *testing.T) {
	reg := enablingRegistry(errors.New("extension not ready"))
	shell := &testutil.MockShell{}
	sleeper := &sleepRecorder{}

	out := newReconciler(reg, shell, sleeper).Ensure(context.Background(), extID)

	assert.Equal(t, extension.EnabledAfterRetry, out.State)
	assert.True(t, out.Retried)
	assert.True(t, out.Verified)
	assert.Equal(t, 2, reg.CallCount("Enable("+extID+")"))
	assert.Equal(t, 1, shell.CallCount("ReloadAll"))
	assert.Equal(t, []time.Duration{3 * time.Second}, sleeper.waits)

	calls := shell.Calls()
	assert.Equal(t, []string{"ReloadAll", "ReloadOne(" + extID + ")"}, calls)
}

func TestEnsureExhaustion(t *testing.T) {
	t.Run("enable_always_fails", func(t *testing.T) {
		fail := errors.New("boom")
		reg := enablingRegistry(fail, fail, fail)
		shell := &testutil.MockShell{ReloadAllFunc: func(context.Context) bool { return false }}
		sleeper := &sleepRecorder{}

		out := newReconciler(reg, shell, sleeper).Ensure(context.Background(), extID)

		assert.Equal(t, extension.EnableFailed, out.State)
		assert.False(t, out.State.Succeeded())
		assert.True(t, out.Advisories.Has(advisory.EnableFailed))
		assert.Equal(t, 2, reg.CallCount("Enable("+extID+")"), "exactly one retry")
		assert.Equal(t, 0, shell.CallCount("ReloadOne("+extID+")"))
	})

	t.Run("never_found", func(t *testing.T) {
		reg := &testutil.MockRegistry{InstalledFunc: listing("other@x")}
		shell := &testutil.MockShell{}
		sleeper := &sleepRecorder{}

		out := newReconciler(reg, shell, sleeper).Ensure(context.Background(), extID)

		assert.Equal(t, extension.NotFoundAfterRescan, out.State)
		assert.True(t, out.Rescanned)
		assert.True(t, out.Advisories.Has(advisory.NotFoundAfterScan))
		assert.Equal(t, 0, reg.CallCount("Enable("+extID+")"))
		assert.Equal(t, 1, shell.CallCount("ReloadAll"), "exactly one rescan")
		assert.Equal(t, 2, reg.CallCount("Installed"))
	})

	t.Run("listing_errors_count_as_absent", func(t *testing.T) {
		reg := &testutil.MockRegistry{
			InstalledFunc: func(context.Context) ([]string, error) { return nil, errors.New("no bus") },
		}

		out := newReconciler(reg, &testutil.MockShell{}, &sleepRecorder{}).Ensure(context.Background(), extID)
		assert.Equal(t, extension.NotFoundAfterRescan, out.State)
	})
}

func TestEnsureInterruptedRetryWait(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reg := enablingRegistry()
	reg.EnableFunc = func(context.Context, string) error {
		cancel()
		return errors.New("not ready")
	}
	cfg := config.Extension{RetryWait: time.Hour}
	r := extension.NewReconciler(reg, &testutil.MockShell{}, cfg,
		extension.WithSleep(func(context.Context, time.Duration) error { return nil }),
		extension.WithReconcilerLogger(zerolog.Nop()),
	)

	out := r.Ensure(ctx, extID)

	assert.Equal(t, extension.EnableFailed, out.State)
	assert.Equal(t, 1, reg.CallCount("Enable("+extID+")"))
}

func TestEnsureRetryWaitsConfiguredDuration(t *testing.T) {
	reg := enablingRegistry(errors.New("not ready"))
	cfg := config.Extension{RetryWait: 20 * time.Millisecond}
	r := extension.NewReconciler(reg, &testutil.MockShell{}, cfg,
		extension.WithReconcilerLogger(zerolog.Nop()),
	)

	start := time.Now()
	out := r.Ensure(context.Background(), extID)

	assert.Equal(t, extension.EnabledAfterRetry, out.State)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestEnsureAdvisoriesAfterSuccess(t *testing.T) {
	t.Run("reload_one_fails", func(t *testing.T) {
		shell := &testutil.MockShell{ReloadOneFunc: func(context.Context, string) bool { return false }}

		out := newReconciler(enablingRegistry(), shell, &sleepRecorder{}).Ensure(context.Background(), extID)

		assert.Equal(t, extension.Enabled, out.State)
		assert.False(t, out.Reloaded)
		assert.True(t, out.Advisories.Has(advisory.ReloadFailed))
	})

	t.Run("not_listed_as_enabled", func(t *testing.T) {
		reg := &testutil.MockRegistry{InstalledFunc: listing(extID)}

		out := newReconciler(reg, &testutil.MockShell{}, &sleepRecorder{}).Ensure(context.Background(), extID)

		assert.Equal(t, extension.Enabled, out.State)
		assert.False(t, out.Verified)
		assert.True(t, out.Advisories.Has(advisory.NotVerified))
	})
}

func TestFinalStateString(t *testing.T) {
	assert.Equal(t, "enabled", extension.Enabled.String())
	assert.Equal(t, "enabled-after-retry", extension.EnabledAfterRetry.String())
	assert.Equal(t, "not-found-after-rescan", extension.NotFoundAfterRescan.String())
	assert.Equal(t, "enable-failed", extension.EnableFailed.String())

	text, err := extension.EnabledAfterRetry.MarshalText()
	assert.NoError(t, err)
	assert.Equal(t, "enabled-after-retry", string(text))
}

func TestSleep(t *testing.T) {
	assert.NoError(t, extension.Sleep(context.Background(), 0))
	assert.NoError(t, extension.Sleep(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, extension.Sleep(ctx, time.Hour), context.Canceled)
}
