// pkg/desktop/probe_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: FakeRunner, FakeEnv
// PURPOSE: Test each desktop signal alone and their OR combination

package desktop_test

import (
	"context"
	"testing"

	"github.com/arthur-debert/winify/pkg/config"
	"github.com/arthur-debert/winify/pkg/desktop"
	"github.com/arthur-debert/winify/pkg/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func desktopConfig(t *testing.T) config.Desktop {
	t.Helper()
	cfg, err := config.Default()
	require.NoError(t, err)
	return cfg.Desktop
}

func newProber(t *testing.T, fake *testutil.FakeRunner, env testutil.FakeEnv) *desktop.Prober {
	return desktop.NewProber(desktopConfig(t), fake,
		desktop.WithGetenv(env.Getenv),
		desktop.WithLookPath(env.LookPath),
		desktop.WithLogger(zerolog.Nop()),
	)
}

// failingPgrep makes the process probe error out
func failingPgrep() *testutil.FakeRunner {
	return testutil.NewFakeRunner().On("pgrep -x gnome-shell", testutil.Response{ExitCode: 1})
}

func TestDetectSingleSignal(t *testing.T) {
	tests := []struct {
		name   string
		runner *testutil.FakeRunner
		env    testutil.FakeEnv
		signal desktop.Signal
	}{
		{
			name:   "process_running",
			runner: testutil.NewFakeRunner().On("pgrep -x gnome-shell", testutil.Response{Stdout: "1234\n"}),
			signal: desktop.SignalProcess,
		},
		{
			name:   "desktop_marker",
			runner: failingPgrep(),
			env:    testutil.FakeEnv{Vars: map[string]string{"XDG_CURRENT_DESKTOP": "ubuntu:GNOME"}},
			signal: desktop.SignalDesktop,
		},
		{
			name:   "rebranded_desktop_marker",
			runner: failingPgrep(),
			env:    testutil.FakeEnv{Vars: map[string]string{"XDG_CURRENT_DESKTOP": "pop"}},
			signal: desktop.SignalDesktop,
		},
		{
			name:   "session_prefix_is_case_insensitive",
			runner: failingPgrep(),
			env:    testutil.FakeEnv{Vars: map[string]string{"DESKTOP_SESSION": "Zorin-Desktop"}},
			signal: desktop.SignalSession,
		},
		{
			name:   "binary_on_path",
			runner: failingPgrep(),
			env:    testutil.FakeEnv{Binaries: map[string]string{"gnome-shell": "/usr/bin/gnome-shell"}},
			signal: desktop.SignalBinary,
		},
		{
			name:   "pgrep_missing_is_negative",
			runner: testutil.NewFakeRunner(),
			env:    testutil.FakeEnv{Binaries: map[string]string{"gnome-shell": "/usr/bin/gnome-shell"}},
			signal: desktop.SignalBinary,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newProber(t, tt.runner, tt.env)

			d := p.Detect(context.Background())
			assert.True(t, d.Present)
			assert.Equal(t, tt.signal, d.Signal)
			assert.True(t, p.Present(context.Background()))
		})
	}
}

func TestDetectNegative(t *testing.T) {
	tests := []struct {
		name string
		env  testutil.FakeEnv
	}{
		{name: "nothing_set"},
		{
			name: "other_desktops",
			env: testutil.FakeEnv{Vars: map[string]string{
				"XDG_CURRENT_DESKTOP": "KDE",
				"DESKTOP_SESSION":     "plasma",
			}},
		},
		{
			name: "markers_are_case_sensitive",
			env:  testutil.FakeEnv{Vars: map[string]string{"XDG_CURRENT_DESKTOP": "gnome-classic-lookalike"}},
		},
		{
			name: "session_must_be_prefix",
			env:  testutil.FakeEnv{Vars: map[string]string{"DESKTOP_SESSION": "not-gnome"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newProber(t, failingPgrep(), tt.env).Detect(context.Background())
			assert.False(t, d.Present)
			assert.Equal(t, desktop.SignalNone, d.Signal)
		})
	}
}

func TestDetectOrderAndShortCircuit(t *testing.T) {
	fake := testutil.NewFakeRunner().On("pgrep -x gnome-shell", testutil.Response{Stdout: "42\n"})
	env := testutil.FakeEnv{
		Vars:     map[string]string{"XDG_CURRENT_DESKTOP": "GNOME", "DESKTOP_SESSION": "gnome"},
		Binaries: map[string]string{"gnome-shell": "/usr/bin/gnome-shell"},
	}

	d := newProber(t, fake, env).Detect(context.Background())
	assert.Equal(t, desktop.SignalProcess, d.Signal)
	assert.Equal(t, "gnome-shell", d.Detail)
}

func TestDetectEmptyPgrepOutput(t *testing.T) {
	fake := testutil.NewFakeRunner().On("pgrep -x gnome-shell", testutil.Response{Stdout: "\n"})

	d := newProber(t, fake, testutil.FakeEnv{}).Detect(context.Background())
	assert.False(t, d.Present)
}
