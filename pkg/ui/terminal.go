package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/arthur-debert/winify/pkg/errors"
	"github.com/arthur-debert/winify/pkg/provision"
	"github.com/charmbracelet/glamour"
	"github.com/pterm/pterm"
)

// TerminalRenderer provides rich terminal output
type TerminalRenderer struct {
	output   io.Writer
	styles   Styles
	wordWrap int
}

// NewTerminalRenderer creates a renderer using the embedded style sheet
func NewTerminalRenderer(w io.Writer) (*TerminalRenderer, error) {
	styles, err := DefaultStyles()
	if err != nil {
		return nil, err
	}
	return &TerminalRenderer{output: w, styles: styles, wordWrap: 80}, nil
}

func (r *TerminalRenderer) prefix(st status) string {
	switch st {
	case statusOK:
		return pterm.Success.Prefix.Text
	case statusWarn:
		return pterm.Warning.Prefix.Text
	case statusFail:
		return pterm.Error.Prefix.Text
	default:
		return pterm.Info.Prefix.Text
	}
}

func (r *TerminalRenderer) prefixStyle(st status) *pterm.Style {
	switch st {
	case statusOK:
		return pterm.Success.Prefix.Style
	case statusWarn:
		return pterm.Warning.Prefix.Style
	case statusFail:
		return pterm.Error.Prefix.Style
	default:
		return pterm.Info.Prefix.Style
	}
}

// RenderReport renders the summary rows, advisories and a markdown block
// with the manual steps.
func (r *TerminalRenderer) RenderReport(report *provision.Report) error {
	var b strings.Builder

	if report.DryRun {
		b.WriteString(r.styles.Get("DryRunBanner").Render("DRY RUN: no changes were made"))
		b.WriteString("\n")
	}

	for _, l := range summarize(report) {
		badge := r.prefixStyle(l.status).Sprint(" " + r.prefix(l.status) + " ")
		fmt.Fprintf(&b, "%s %s%s\n", badge, r.styles.Get("Label").Render(l.label), r.styles.Get("Value").Render(l.value))
	}

	if len(report.Advisories) > 0 {
		b.WriteString("\n")
		for _, a := range report.Advisories {
			fmt.Fprintf(&b, "%s %s\n", r.styles.Get("Warning").Render("!"), a.Message)
		}
	}

	if steps := report.Remediation(); len(steps) > 0 {
		b.WriteString(r.markdown(remediationMarkdown(steps)))
	}

	_, err := io.WriteString(r.output, b.String())
	return err
}

func remediationMarkdown(steps []string) string {
	var md strings.Builder
	md.WriteString("## Manual steps\n\n")
	for i, step := range steps {
		fmt.Fprintf(&md, "%d. %s\n", i+1, codeSpans(step))
	}
	return md.String()
}

// codeSpans marks the command after "Run: " as inline code
func codeSpans(step string) string {
	for _, marker := range []string{"Run: ", "run: "} {
		if i := strings.Index(step, marker); i >= 0 {
			return step[:i+len(marker)] + "`" + step[i+len(marker):] + "`"
		}
	}
	return step
}

// markdown renders md with glamour and falls back to the source on error
func (r *TerminalRenderer) markdown(md string) string {
	options := []glamour.TermRendererOption{glamour.WithAutoStyle()}
	if r.wordWrap > 0 {
		options = append(options, glamour.WithWordWrap(r.wordWrap))
	}

	renderer, err := glamour.NewTermRenderer(options...)
	if err != nil {
		return "\n" + md
	}
	rendered, err := renderer.Render(md)
	if err != nil {
		return "\n" + md
	}
	return rendered
}

// RenderError renders the error with its code
func (r *TerminalRenderer) RenderError(err error) error {
	msg := err.Error()
	if code := errors.GetErrorCode(err); code != errors.ErrUnknown {
		msg = fmt.Sprintf("%s %s", r.styles.Get("Error").Render(string(code)), msg)
	}
	_, werr := io.WriteString(r.output, pterm.Error.Sprintln(msg))
	return werr
}

// RenderMessage renders a simple message
func (r *TerminalRenderer) RenderMessage(msg string) error {
	_, err := io.WriteString(r.output, pterm.Info.Sprintln(msg))
	return err
}
