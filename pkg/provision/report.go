package provision

import (
	"github.com/arthur-debert/winify/pkg/advisory"
	"github.com/arthur-debert/winify/pkg/desktop"
	"github.com/arthur-debert/winify/pkg/extension"
	"github.com/arthur-debert/winify/pkg/gnome"
)

// Report is the final status of a run
type Report struct {
	Desktop        *desktop.Detection `json:"desktop,omitempty"`
	Overridden     bool               `json:"overridden,omitempty"`
	Resolution     *gnome.Resolution  `json:"resolution,omitempty"`
	ReleaseTag     string             `json:"release_tag,omitempty"`
	ExtensionID    string             `json:"extension_id,omitempty"`
	DryRun         bool               `json:"dry_run,omitempty"`
	Archive        string             `json:"archive,omitempty"`
	Installed      bool               `json:"installed"`
	InstallSkipped bool               `json:"install_skipped,omitempty"`
	Observed       *extension.State   `json:"observed,omitempty"`
	Outcome        *extension.Outcome `json:"outcome,omitempty"`
	Advisories     advisory.List      `json:"advisories,omitempty"`
}

// Enabled reports whether the extension ended up enabled
func (r *Report) Enabled() bool {
	return r.Outcome != nil && r.Outcome.State.Succeeded()
}

// Remediation flattens the manual steps of every advisory, dropping
// duplicates while keeping order.
func (r *Report) Remediation() []string {
	seen := make(map[string]bool)
	var steps []string
	for _, a := range r.Advisories {
		for _, step := range a.Remediation {
			if !seen[step] {
				seen[step] = true
				steps = append(steps, step)
			}
		}
	}
	return steps
}
