package ui

import (
	"fmt"
	"strings"

	"github.com/arthur-debert/winify/pkg/extension"
	"github.com/arthur-debert/winify/pkg/provision"
)

type status int

const (
	statusNone status = iota
	statusOK
	statusWarn
	statusFail
)

// line is one labelled row of a report summary
type line struct {
	label  string
	value  string
	status status
}

func summarize(r *provision.Report) []line {
	var lines []line

	if d := r.Desktop; d != nil {
		switch {
		case d.Present:
			value := "detected via " + string(d.Signal)
			if d.Detail != "" {
				value += " (" + d.Detail + ")"
			}
			lines = append(lines, line{"Desktop", value, statusOK})
		case r.Overridden:
			lines = append(lines, line{"Desktop", "not detected, continuing anyway", statusWarn})
		default:
			lines = append(lines, line{"Desktop", "not detected", statusFail})
		}
	}

	if res := r.Resolution; res != nil {
		st := statusOK
		if len(res.Advisories) > 0 {
			st = statusWarn
		}
		lines = append(lines, line{"Version", fmt.Sprintf("%s (major %d)", res.Version.Full, res.Version.Major), st})
	}

	if r.ReleaseTag != "" {
		lines = append(lines, line{"Release", r.ReleaseTag, statusOK})
	}

	switch {
	case r.DryRun && r.ReleaseTag != "":
		value := "dry run, nothing installed"
		if r.Archive != "" {
			value = "would install " + r.Archive
		}
		lines = append(lines, line{"Install", value, statusNone})
	case r.InstallSkipped:
		lines = append(lines, line{"Install", "skipped", statusNone})
	case r.Installed:
		lines = append(lines, line{"Install", "installed " + r.Archive, statusOK})
	case r.Outcome != nil && r.ReleaseTag != "":
		lines = append(lines, line{"Install", "failed", statusWarn})
	}

	if o := r.Outcome; o != nil {
		value := fmt.Sprintf("%s %s", o.ID, o.State)
		var notes []string
		if o.Rescanned {
			notes = append(notes, "after rescan")
		}
		if o.State.Succeeded() && !o.Verified {
			notes = append(notes, "not verified")
		}
		if len(notes) > 0 {
			value += " (" + strings.Join(notes, ", ") + ")"
		}
		st := statusOK
		if !o.State.Succeeded() {
			st = statusWarn
		}
		lines = append(lines, line{"Extension", value, st})
	} else if r.Observed != nil {
		st := statusWarn
		if *r.Observed == extension.PresentEnabled {
			st = statusOK
		}
		lines = append(lines, line{"Extension", fmt.Sprintf("%s %s (unchanged)", r.ExtensionID, *r.Observed), st})
	}

	return lines
}
