package testutil

import (
	"os/exec"
)

// FakeEnv backs the desktop probes with in-memory data
type FakeEnv struct {
	Vars     map[string]string
	Binaries map[string]string
}

// Getenv looks up Vars
func (e FakeEnv) Getenv(key string) string {
	return e.Vars[key]
}

// LookPath looks up Binaries and fails like exec.LookPath otherwise
func (e FakeEnv) LookPath(file string) (string, error) {
	if path, ok := e.Binaries[file]; ok {
		return path, nil
	}
	return "", &exec.Error{Name: file, Err: exec.ErrNotFound}
}
