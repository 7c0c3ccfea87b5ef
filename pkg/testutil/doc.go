// Package testutil provides fakes for winify's external collaborators.
//
// Key components:
//   - FakeRunner: scripted command output, records every invocation
//   - MockRegistry: extension registry with function-field overrides
//   - MockShell: shell reload calls with function-field overrides
//   - FakeEnv: map-backed getenv and PATH lookup for desktop probes
//
// Every fake records calls so tests can assert on what was (not) invoked.
// None of them touch the real desktop, the session bus or the network.
package testutil
