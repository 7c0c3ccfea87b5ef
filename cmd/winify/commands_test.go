// cmd/winify/commands_test.go
// TEST TYPE: Integration Test
// DEPENDENCIES: FakeRunner, temp directories, environment
// PURPOSE: Test the CLI commands end to end against canned desktop commands

package winify

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/winify/pkg/errors"
	"github.com/arthur-debert/winify/pkg/runner"
	"github.com/arthur-debert/winify/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const extID = "dash-to-panel@jderose9.github.com"

// isolate points every external lookup at temp directories and zeroes the
// reconcile waits.
func isolate(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("WINIFY_CONFIG_DIR", filepath.Join(dir, "config"))
	t.Setenv("WINIFY_CACHE_DIR", filepath.Join(dir, "cache"))
	t.Setenv("WINIFY_STATE_DIR", filepath.Join(dir, "state"))
	t.Setenv("WINIFY_EXTENSION__INITIAL_WAIT", "0s")
	t.Setenv("WINIFY_EXTENSION__RETRY_WAIT", "0s")
	t.Setenv("DBUS_SESSION_BUS_ADDRESS", "unix:path="+filepath.Join(dir, "no-bus"))
	t.Setenv("PATH", filepath.Join(dir, "bin"))
	t.Setenv("XDG_CURRENT_DESKTOP", "ubuntu:GNOME")
	t.Setenv("DESKTOP_SESSION", "")
	t.Setenv("NO_COLOR", "1")
}

func desktopRunner(version string) *testutil.FakeRunner {
	return testutil.NewFakeRunner().
		On("pgrep -x gnome-shell", testutil.Response{ExitCode: 1}).
		On("gnome-shell --version", testutil.Response{Stdout: version})
}

func execute(t *testing.T, fake *testutil.FakeRunner, args ...string) (string, error) {
	t.Helper()
	cmd, _ := newRootCmd(func() runner.Runner { return fake })

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestDetectCommand(t *testing.T) {
	isolate(t)

	out, err := execute(t, desktopRunner("GNOME Shell 47.2\n"), "detect")
	require.NoError(t, err)
	assert.Contains(t, out, "47.2 (major 47)")
	assert.Contains(t, out, "v65")

	_, err = execute(t, desktopRunner("no idea"), "detect")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrUnparseable))

	_, err = execute(t, desktopRunner("GNOME Shell 43.9"), "detect")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrUnsupported))
}

func TestRunCommand(t *testing.T) {
	t.Run("dry_run_json", func(t *testing.T) {
		isolate(t)

		out, err := execute(t, desktopRunner("GNOME Shell 50.1"), "run", "--dry-run", "-o", "json")
		require.NoError(t, err)

		var decoded map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(out), &decoded))
		assert.Equal(t, "v68", decoded["release_tag"])
		assert.Equal(t, true, decoded["dry_run"])
		assert.Nil(t, decoded["outcome"])
	})

	t.Run("skip_install_enables", func(t *testing.T) {
		isolate(t)
		fake := desktopRunner("GNOME Shell 46.0").
			On("gnome-extensions list", testutil.Response{Stdout: extID + "\n"}).
			On("gnome-extensions list --enabled", testutil.Response{Stdout: ""}, testutil.Response{Stdout: extID + "\n"}).
			On("gnome-extensions enable "+extID, testutil.Response{})

		out, err := execute(t, fake, "run", "--skip-install")
		require.NoError(t, err)
		assert.Contains(t, out, "Release    v62")
		assert.Contains(t, out, "Install    skipped")
		assert.Contains(t, out, extID+" enabled")
		assert.Equal(t, 1, fake.CallCount("gnome-extensions enable "+extID))
	})

	t.Run("extension_flag_overrides_config", func(t *testing.T) {
		isolate(t)
		fake := desktopRunner("GNOME Shell 46.0").
			On("gnome-extensions list", testutil.Response{Stdout: "arcmenu@arcmenu.com\n"}).
			On("gnome-extensions list --enabled", testutil.Response{Stdout: "arcmenu@arcmenu.com\n"})

		out, err := execute(t, fake, "run", "--skip-install", "--extension", "arcmenu@arcmenu.com")
		require.NoError(t, err)
		assert.Contains(t, out, "arcmenu@arcmenu.com enabled")
	})

	t.Run("no_desktop_declined", func(t *testing.T) {
		isolate(t)
		t.Setenv("XDG_CURRENT_DESKTOP", "KDE")

		_, err := execute(t, desktopRunner("GNOME Shell 47"), "run")
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrDesktopNotFound))
	})

	t.Run("no_desktop_assume_yes", func(t *testing.T) {
		isolate(t)
		t.Setenv("XDG_CURRENT_DESKTOP", "KDE")

		out, err := execute(t, desktopRunner("GNOME Shell 47"), "run", "--assume-yes", "--dry-run")
		require.NoError(t, err)
		assert.Contains(t, out, "not detected, continuing anyway")
	})
}

func TestEnableCommandNeverFound(t *testing.T) {
	isolate(t)
	fake := testutil.NewFakeRunner().
		On("gnome-extensions list", testutil.Response{Stdout: ""})

	out, err := execute(t, fake, "enable")
	require.NoError(t, err, "exhaustion is an advisory, not a failure")
	assert.Contains(t, out, extID+" not-found-after-rescan")
	assert.Contains(t, out, "Manual steps")
	assert.Equal(t, 2, fake.CallCount("gnome-extensions list"))
}

func TestEnableCommandDryRun(t *testing.T) {
	isolate(t)
	fake := testutil.NewFakeRunner().
		On("gnome-extensions list", testutil.Response{Stdout: extID + "\n"}).
		On("gnome-extensions list --enabled", testutil.Response{Stdout: ""}).
		On("gnome-extensions enable "+extID, testutil.Response{})

	out, err := execute(t, fake, "enable", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "DRY RUN")
	assert.Contains(t, out, extID+" present-disabled (unchanged)")
	assert.Equal(t, 0, fake.CallCount("gnome-extensions enable "+extID))
	assert.Equal(t, []string{"gnome-extensions list", "gnome-extensions list --enabled"}, fake.Calls())
}

func TestProbeCommand(t *testing.T) {
	isolate(t)

	out, err := execute(t, desktopRunner(""), "probe")
	require.NoError(t, err)
	assert.Contains(t, out, "detected via desktop_env")

	t.Setenv("XDG_CURRENT_DESKTOP", "")
	_, err = execute(t, desktopRunner(""), "probe")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrDesktopNotFound))
}

func TestConfigCommand(t *testing.T) {
	isolate(t)
	t.Setenv("WINIFY_EXTENSION__RETRY_WAIT", "5s")

	out, err := execute(t, testutil.NewFakeRunner(), "config")
	require.NoError(t, err)
	assert.Contains(t, out, "[extension]")
	assert.Contains(t, out, "retry_wait = '5s'")

	out, err = execute(t, testutil.NewFakeRunner(), "config", "--defaults")
	require.NoError(t, err)
	assert.Contains(t, out, `retry_wait = "2s"`)

	_, err = execute(t, testutil.NewFakeRunner(), "config", "--config", filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigLoad))
}

func TestRootCommand(t *testing.T) {
	isolate(t)

	_, err := execute(t, testutil.NewFakeRunner())
	assert.EqualError(t, err, MsgErrNoCommand)

	_, err = execute(t, desktopRunner("GNOME Shell 47"), "detect", "-o", "yaml")
	assert.Error(t, err)

	out, err := execute(t, testutil.NewFakeRunner(), "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, "winify")

	out, err = execute(t, testutil.NewFakeRunner(), "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "COMMANDS:")
	assert.Contains(t, out, "detect")

	assert.NotNil(t, NewRootCmd())
}

func TestExecuteExitCode(t *testing.T) {
	isolate(t)
	assert.Equal(t, 1, Execute(context.Background(), []string{"no-such-command"}))
}
