package tui

import (
	"log"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"reqpanel/internal/session"
)

// Order of the editable fields in the settings view.
var settingFields = []string{
	"SettingAPIRootURL",
	"SettingAPIToken",
	"SettingYouTubeChannelID",
	"SettingTwitchLogin",
	"SettingFormLink",
	"SettingSpreadsheetLink",
	"SettingStartAnnouncement",
	"SettingEndGoodbye",
}

func settingValues(s session.Settings) []string {
	return []string{
		s.APIRootURL,
		s.APIToken,
		s.YouTubeChannelID,
		s.TwitchLogin,
		s.FormLink,
		s.SpreadsheetLink,
		s.StartAnnouncementText,
		s.EndGoodbyeText,
	}
}

func settingsFromValues(values []string) session.Settings {
	return session.Settings{
		APIRootURL:            values[0],
		APIToken:              values[1],
		YouTubeChannelID:      values[2],
		TwitchLogin:           values[3],
		FormLink:              values[4],
		SpreadsheetLink:       values[5],
		StartAnnouncementText: values[6],
		EndGoodbyeText:        values[7],
	}
}

// enterSettings builds the input form from the stored settings and moves the
// panel into the settings view, remembering where to return to.
func (m Model) enterSettings() Model {
	values := settingValues(m.Session.Settings())

	m.Inputs = make([]textinput.Model, len(settingFields))
	for i := range m.Inputs {
		input := textinput.New()
		input.SetValue(values[i])
		input.CharLimit = 0
		input.Width = 60
		if i == 1 {
			input.EchoMode = textinput.EchoPassword
		}
		m.Inputs[i] = input
	}
	m.Inputs[0].Focus()
	m.FocusIndex = 0
	m.ReturnState = m.State
	m.State = StateSettings
	return m
}

// leaveSettings persists the edited values and propagates the bot API
// credentials, then returns to the previous view.
func (m Model) leaveSettings() Model {
	values := make([]string, len(m.Inputs))
	for i, input := range m.Inputs {
		values[i] = input.Value()
	}
	settings := settingsFromValues(values)

	m.Session.SetSettings(settings)
	if err := m.Session.Save(); err != nil {
		log.Printf("[Settings] failed to persist settings: %v", err)
		m.LastError = err
	} else {
		m.Status = m.msg("MsgSettingsSaved", nil)
	}
	if m.Bot != nil {
		m.Bot.SetCredentials(settings.APIRootURL, settings.APIToken)
	}

	m.Inputs = nil
	m.State = m.ReturnState
	return m
}

func (m Model) handleSettingsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		return m.leaveSettings(), nil
	case "tab", "down":
		return m.focusInput(m.FocusIndex + 1), nil
	case "shift+tab", "up":
		return m.focusInput(m.FocusIndex - 1), nil
	}

	var cmd tea.Cmd
	m.Inputs[m.FocusIndex], cmd = m.Inputs[m.FocusIndex].Update(msg)
	return m, cmd
}

func (m Model) focusInput(index int) Model {
	if index < 0 {
		index = len(m.Inputs) - 1
	}
	if index >= len(m.Inputs) {
		index = 0
	}
	m.Inputs[m.FocusIndex].Blur()
	m.Inputs[index].Focus()
	m.FocusIndex = index
	return m
}

func (m Model) renderSettings() string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render(m.msg("SettingsTitle", nil)))
	b.WriteString("\n\n")
	for i, input := range m.Inputs {
		label := m.msg(settingFields[i], nil)
		if i == m.FocusIndex {
			b.WriteString(ToggleOnStyle.Render(label))
		} else {
			b.WriteString(MutedStyle.Render(label))
		}
		b.WriteString("\n")
		b.WriteString(input.View())
		b.WriteString("\n\n")
	}
	b.WriteString(MutedStyle.Render(m.msg("HelpSettings", nil)))
	b.WriteString("\n")
	return b.String()
}
