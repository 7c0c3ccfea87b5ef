package testutil

import (
	"context"
	"fmt"
	"sync"
)

// MockRegistry is a function-field mock of extension.Registry. Without
// overrides it reports an empty system and accepts every enable.
type MockRegistry struct {
	InstalledFunc func(ctx context.Context) ([]string, error)
	EnabledFunc   func(ctx context.Context) ([]string, error)
	EnableFunc    func(ctx context.Context, id string) error
	InstallFunc   func(ctx context.Context, archive string) error

	mu    sync.Mutex
	calls []string
}

func (m *MockRegistry) record(call string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, call)
}

// Installed returns the installed extension ids
func (m *MockRegistry) Installed(ctx context.Context) ([]string, error) {
	m.record("Installed")
	if m.InstalledFunc != nil {
		return m.InstalledFunc(ctx)
	}
	return nil, nil
}

// Enabled returns the enabled extension ids
func (m *MockRegistry) Enabled(ctx context.Context) ([]string, error) {
	m.record("Enabled")
	if m.EnabledFunc != nil {
		return m.EnabledFunc(ctx)
	}
	return nil, nil
}

// Enable enables an extension
func (m *MockRegistry) Enable(ctx context.Context, id string) error {
	m.record(fmt.Sprintf("Enable(%s)", id))
	if m.EnableFunc != nil {
		return m.EnableFunc(ctx, id)
	}
	return nil
}

// Install installs an extension archive
func (m *MockRegistry) Install(ctx context.Context, archive string) error {
	m.record(fmt.Sprintf("Install(%s)", archive))
	if m.InstallFunc != nil {
		return m.InstallFunc(ctx, archive)
	}
	return nil
}

// Calls returns the recorded calls in order
func (m *MockRegistry) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// CallCount counts recorded calls equal to call
func (m *MockRegistry) CallCount(call string) int {
	return count(m.Calls(), call)
}

// MockShell is a function-field mock of extension.Shell. Without overrides
// every reload succeeds.
type MockShell struct {
	ReloadAllFunc func(ctx context.Context) bool
	ReloadOneFunc func(ctx context.Context, id string) bool

	mu    sync.Mutex
	calls []string
}

func (m *MockShell) record(call string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, call)
}

// ReloadAll asks the shell to rescan extensions
func (m *MockShell) ReloadAll(ctx context.Context) bool {
	m.record("ReloadAll")
	if m.ReloadAllFunc != nil {
		return m.ReloadAllFunc(ctx)
	}
	return true
}

// ReloadOne asks the shell to reload one extension
func (m *MockShell) ReloadOne(ctx context.Context, id string) bool {
	m.record(fmt.Sprintf("ReloadOne(%s)", id))
	if m.ReloadOneFunc != nil {
		return m.ReloadOneFunc(ctx, id)
	}
	return true
}

// Calls returns the recorded calls in order
func (m *MockShell) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// CallCount counts recorded calls equal to call
func (m *MockShell) CallCount(call string) int {
	return count(m.Calls(), call)
}

func count(calls []string, call string) int {
	n := 0
	for _, c := range calls {
		if c == call {
			n++
		}
	}
	return n
}
