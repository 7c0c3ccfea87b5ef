package extension

import (
	"context"

	"github.com/arthur-debert/winify/pkg/config"
	"github.com/arthur-debert/winify/pkg/logging"
	"github.com/godbus/dbus/v5"
	"github.com/rs/zerolog"
)

// Shell sends best-effort reload requests to the running shell. Both calls
// report whether the request was delivered; callers must not depend on it.
type Shell interface {
	ReloadAll(ctx context.Context) bool
	ReloadOne(ctx context.Context, id string) bool
}

// DBusShell calls shell methods over the session bus
type DBusShell struct {
	cfg     config.Shell
	connect func() (*dbus.Conn, error)
	logger  zerolog.Logger
}

// NewDBusShell creates a Shell for the configured bus name and object
func NewDBusShell(cfg config.Shell) *DBusShell {
	return &DBusShell{
		cfg:     cfg,
		connect: func() (*dbus.Conn, error) { return dbus.ConnectSessionBus() },
		logger:  logging.GetLogger("extension.shell"),
	}
}

// ReloadAll asks the shell to rescan its extension directories
func (s *DBusShell) ReloadAll(ctx context.Context) bool {
	args := make([]interface{}, 0, len(s.cfg.ReloadAllArgs))
	for _, a := range s.cfg.ReloadAllArgs {
		args = append(args, a)
	}
	return s.call(ctx, s.cfg.ReloadAllMethod, args...)
}

// ReloadOne asks the shell to reload a single extension
func (s *DBusShell) ReloadOne(ctx context.Context, id string) bool {
	return s.call(ctx, s.cfg.ReloadOneMethod, id)
}

func (s *DBusShell) call(ctx context.Context, method string, args ...interface{}) bool {
	if method == "" {
		return false
	}

	conn, err := s.connect()
	if err != nil {
		s.logger.Debug().Err(err).Str("method", method).Msg("Session bus unavailable")
		return false
	}
	defer func() { _ = conn.Close() }()

	obj := conn.Object(s.cfg.BusName, dbus.ObjectPath(s.cfg.ObjectPath))
	if err := obj.CallWithContext(ctx, method, 0, args...).Err; err != nil {
		s.logger.Debug().Err(err).Str("method", method).Msg("Shell call failed")
		return false
	}

	s.logger.Debug().Str("method", method).Msg("Shell call delivered")
	return true
}

var _ Shell = (*DBusShell)(nil)
