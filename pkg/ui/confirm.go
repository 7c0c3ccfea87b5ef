package ui

import (
	"os"

	"github.com/arthur-debert/winify/pkg/logging"
	"github.com/pterm/pterm"
)

// Confirm asks a yes/no question on the terminal. It answers no without
// asking when in is not interactive.
func Confirm(in *os.File) func(prompt string) bool {
	logger := logging.GetLogger("ui.confirm")
	return func(prompt string) bool {
		if !IsInteractive(in) {
			logger.Debug().Str("prompt", prompt).Msg("Not a terminal, declining")
			return false
		}
		ok, err := pterm.DefaultInteractiveConfirm.WithDefaultValue(false).Show(prompt)
		if err != nil {
			logger.Debug().Err(err).Msg("Confirmation failed")
			return false
		}
		return ok
	}
}
