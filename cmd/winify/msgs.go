package winify

import (
	_ "embed"
	"strings"
)

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort       = "Give a GNOME desktop a Windows-style taskbar"
	MsgProbeShort      = "Check whether a GNOME desktop session is running"
	MsgProbeLong       = "Probe evaluates the desktop signals (shell process, XDG_CURRENT_DESKTOP,\nDESKTOP_SESSION, shell binary) and exits non-zero when none of them is positive."
	MsgDetectShort     = "Show the GNOME Shell version and the matching extension release"
	MsgEnableShort     = "Enable an installed extension, rescanning and retrying once"
	MsgEnableLong      = "Enable waits for the shell to register the extension, enables it and asks\nthe running shell to reload it. Failures are reported as advisories."
	MsgRunShort        = "Detect, install and enable the taskbar extension"
	MsgConfigShort     = "Print the effective configuration"
	MsgConfigLong      = "Print the configuration after merging the built-in defaults, the config file\nand WINIFY_* environment variables, as TOML."
	MsgCompletionShort = "Generate shell completion script"

	// Group titles
	MsgGroupCore = "COMMANDS:"
	MsgGroupMisc = "MISC:"

	// Flag descriptions
	MsgFlagVerbose     = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagConfig      = "Config file (default is $XDG_CONFIG_HOME/winify/config.toml)"
	MsgFlagDryRun      = "Report what would happen without changing anything"
	MsgFlagNoColor     = "Disable colors and styling"
	MsgFlagOutput      = "Output format: auto, term, text or json"
	MsgFlagAssumeYes   = "Continue without asking when no GNOME desktop is detected"
	MsgFlagSkipInstall = "Do not download or install, only enable"
	MsgFlagExtension   = "Extension id to manage instead of the configured one"
	MsgFlagDefaults    = "Print the built-in defaults instead of the effective configuration"

	// Error messages
	MsgErrNoCommand  = "no command specified"
	MsgErrLoadConfig = "failed to load configuration: %w"
	MsgErrFormat     = "invalid --output value: %w"
)

// Long messages from embedded files
var (
	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong    = strings.TrimSpace(msgRootLongRaw)

	//go:embed msgs/run-long.txt
	msgRunLongRaw string
	MsgRunLong    = strings.TrimSpace(msgRunLongRaw)

	//go:embed msgs/completion-long.txt
	msgCompletionLongRaw string
	MsgCompletionLong    = strings.TrimSpace(msgCompletionLongRaw)

	//go:embed msgs/usage-template.txt
	msgUsageTemplateRaw string
	MsgUsageTemplate    = strings.TrimSpace(msgUsageTemplateRaw) + "\n"
)
