package broadcast

import (
	"fmt"
	"strings"
	"text/template"
)

// announceData is what a start announcement template may reference.
type announceData struct {
	VideoLink       string
	FormLink        string
	SpreadsheetLink string
}

// renderAnnouncement expands the operator's announcement template. The text
// is operator-supplied, so parse errors are reported rather than panicking.
func renderAnnouncement(text string, data announceData) (string, error) {
	tmpl, err := template.New("announcement").Option("missingkey=error").Parse(text)
	if err != nil {
		return "", fmt.Errorf("failed to parse announcement template: %w", err)
	}

	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("failed to render announcement template: %w", err)
	}
	return sb.String(), nil
}
