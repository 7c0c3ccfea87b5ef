package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/arthur-debert/winify/pkg/errors"
	"github.com/arthur-debert/winify/pkg/provision"
)

// TextRenderer writes unstyled output
type TextRenderer struct {
	output io.Writer
}

// NewTextRenderer creates a plain text renderer
func NewTextRenderer(w io.Writer) *TextRenderer {
	return &TextRenderer{output: w}
}

// RenderReport writes one line per section, then advisories and manual steps
func (r *TextRenderer) RenderReport(report *provision.Report) error {
	var b strings.Builder

	if report.DryRun {
		b.WriteString("DRY RUN: no changes were made\n\n")
	}
	for _, l := range summarize(report) {
		fmt.Fprintf(&b, "%-11s%s\n", l.label, l.value)
	}

	if len(report.Advisories) > 0 {
		b.WriteString("\nAdvisories\n")
		for _, a := range report.Advisories {
			fmt.Fprintf(&b, "  - %s\n", a.Message)
		}
	}

	if steps := report.Remediation(); len(steps) > 0 {
		b.WriteString("\nManual steps\n")
		for i, step := range steps {
			fmt.Fprintf(&b, "  %d. %s\n", i+1, step)
		}
	}

	_, err := io.WriteString(r.output, b.String())
	return err
}

// RenderError writes the error and its code
func (r *TextRenderer) RenderError(err error) error {
	code := errors.GetErrorCode(err)
	if code == errors.ErrUnknown {
		_, werr := fmt.Fprintf(r.output, "Error: %v\n", err)
		return werr
	}
	_, werr := fmt.Fprintf(r.output, "Error [%s]: %v\n", code, err)
	return werr
}

// RenderMessage writes msg on its own line
func (r *TextRenderer) RenderMessage(msg string) error {
	_, err := fmt.Fprintln(r.output, msg)
	return err
}
