package tui

import (
	"fmt"
	"strings"

	"reqpanel/internal/models"
)

// View implements tea.Model.
func (m Model) View() string {
	if m.State == StateSettings {
		return m.renderSettings()
	}

	var b strings.Builder

	b.WriteString(TitleStyle.Render(m.msg("PanelTitle", nil)))
	b.WriteString("\n\n")

	if m.Status != "" {
		b.WriteString(StatusStyle.Render(m.Status))
		b.WriteString("\n\n")
	}

	if m.LastError != nil {
		failure := m.msg("MsgExternalFailure", map[string]interface{}{"Reason": m.LastError.Error()})
		b.WriteString(ErrorStyle.Render(failure))
		b.WriteString("\n\n")
	}

	switch m.State {
	case StateDetecting:
		b.WriteString(MutedStyle.Render(m.msg("MsgDetecting", nil)))
		b.WriteString("\n")
	case StateReady:
		b.WriteString(MutedStyle.Render(m.msg("MsgStartPrompt", nil)))
		b.WriteString("\n")
	case StateReviewing:
		if m.Pick != nil {
			b.WriteString(PickBoxStyle.Render(m.renderPick(*m.Pick)))
			b.WriteString("\n\n")
		}
	}

	if m.streaming() {
		b.WriteString(m.renderToggles())
		b.WriteString("\n")
		b.WriteString(MutedStyle.Render(m.msg("HelpStreaming", nil)))
		b.WriteString("\n")
	}

	return b.String()
}

// renderPick formats the request under review, one labeled line per field.
func (m Model) renderPick(pick models.Pick) string {
	req := pick.Request
	var b strings.Builder

	header := m.msg("LabelRequestHeader", map[string]interface{}{"ID": pick.BotRequestID})
	b.WriteString(header)
	if pick.Source == models.PickSourceBot {
		b.WriteString(" " + BotMarkerStyle.Render(m.msg("LabelFromBot", nil)))
	}
	b.WriteString("\n\n")

	b.WriteString(fmt.Sprintf("%s: %s\n", m.msg("LabelLanguage", nil), req.Language))
	b.WriteString(fmt.Sprintf("%s: %d\n", m.msg("LabelLevelID", nil), req.LevelID))
	b.WriteString(fmt.Sprintf("%s: %s by %s\n", m.msg("LabelLevel", nil), req.LevelName, req.Creator))

	stars := m.msg("LabelStarsNotRequested", nil)
	if req.Stars > 0 {
		stars = m.msg("LabelStarsRequested", map[string]interface{}{"Stars": req.Stars})
	}
	b.WriteString(fmt.Sprintf("%s: %s (%s)\n", m.msg("LabelDifficulty", nil), req.Difficulty, stars))

	showcase := req.ShowcaseLink
	if showcase == "" {
		showcase = m.msg("LabelNotProvided", nil)
	}
	b.WriteString(fmt.Sprintf("%s: %s\n", m.msg("LabelShowcase", nil), showcase))
	b.WriteString(fmt.Sprintf("%s: %s", m.msg("LabelSubmitted", nil), req.SubmittedAt.Format("2006-01-02 15:04:05")))

	return b.String()
}

func (m Model) renderToggles() string {
	order := m.msg("LabelPickRandom", nil)
	if m.Requests.PickOldest() {
		order = m.msg("LabelPickOldest", nil)
	}

	parts := []string{
		ToggleOnStyle.Render(order),
		renderToggle(m.msg("LabelAlternate", nil), m.Requests.Alternate()),
		renderToggle(m.msg("LabelDumpRemaining", nil), m.Dump),
	}
	return strings.Join(parts, MutedStyle.Render("  |  "))
}

func renderToggle(label string, on bool) string {
	if on {
		return ToggleOnStyle.Render("[x] " + label)
	}
	return ToggleOffStyle.Render("[ ] " + label)
}
