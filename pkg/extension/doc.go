// Package extension drives a shell extension toward the enabled state.
//
// The shell owns the extension list and updates it asynchronously, so the
// Reconciler observes the Registry, acts, and observes again with fixed
// waits in between. It performs at most one rescan and one enable retry and
// never fails: every problem becomes an advisory in the Outcome.
//
// The Installer fetches a release archive and hands it to the Registry.
// Reload requests go to the running shell through the Shell interface,
// implemented over the session D-Bus by DBusShell.
package extension
