// Package ui renders winify reports as styled terminal output, plain text
// or JSON.
package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/arthur-debert/winify/pkg/provision"
)

// Renderer is the common interface of the output formats
type Renderer interface {
	// RenderReport renders the status of a provisioning run
	RenderReport(r *provision.Report) error

	// RenderError renders an error with appropriate formatting
	RenderError(err error) error

	// RenderMessage renders a simple message
	RenderMessage(msg string) error
}

// NewRenderer creates a renderer for format. FormatAuto inspects output
// when it is a file and falls back to plain text otherwise.
func NewRenderer(format Format, output io.Writer) (Renderer, error) {
	switch format {
	case FormatAuto:
		if file, ok := output.(*os.File); ok {
			return NewRenderer(DetectFormat(file), output)
		}
		return NewRenderer(FormatText, output)
	case FormatTerminal:
		return NewTerminalRenderer(output)
	case FormatText:
		return NewTextRenderer(output), nil
	case FormatJSON:
		return NewJSONRenderer(output), nil
	default:
		return nil, fmt.Errorf("unknown format: %v", format)
	}
}
