package ui

import (
	"encoding/json"
	"io"

	"github.com/arthur-debert/winify/pkg/errors"
	"github.com/arthur-debert/winify/pkg/provision"
)

// JSONRenderer provides output for machine consumption
type JSONRenderer struct {
	encoder *json.Encoder
}

// NewJSONRenderer creates a JSON renderer
func NewJSONRenderer(output io.Writer) *JSONRenderer {
	encoder := json.NewEncoder(output)
	encoder.SetIndent("", "  ")
	return &JSONRenderer{encoder: encoder}
}

// RenderReport encodes the report together with its manual steps
func (r *JSONRenderer) RenderReport(report *provision.Report) error {
	return r.encoder.Encode(struct {
		*provision.Report
		Enabled     bool     `json:"enabled"`
		Remediation []string `json:"remediation,omitempty"`
	}{
		Report:      report,
		Enabled:     report.Enabled(),
		Remediation: report.Remediation(),
	})
}

// RenderError renders an error as JSON
func (r *JSONRenderer) RenderError(err error) error {
	obj := map[string]interface{}{
		"error": err.Error(),
		"code":  errors.GetErrorCode(err),
	}
	if details := errors.GetErrorDetails(err); len(details) > 0 {
		obj["details"] = details
	}
	return r.encoder.Encode(obj)
}

// RenderMessage renders a simple message as JSON
func (r *JSONRenderer) RenderMessage(msg string) error {
	return r.encoder.Encode(map[string]string{"message": msg})
}
