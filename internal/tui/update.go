package tui

import (
	"errors"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"reqpanel/internal/broadcast"
	"reqpanel/internal/models"
	"reqpanel/internal/requests"
)

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.State == StateSettings {
			return m.handleSettingsKey(msg)
		}
		return m.handleKeyPress(msg)
	case DetectResultMsg:
		return m.handleDetectResult(msg)
	case StartDoneMsg:
		return m.handleStartDone(msg)
	case PickResultMsg:
		return m.handlePickResult(msg)
	case DecisionDoneMsg:
		return m.handleDecisionDone(msg)
	case EndDoneMsg:
		return m.handleEndDone(msg)
	case FormLinkDoneMsg:
		return m.handleFormLinkDone(msg)
	case QueueClearedMsg:
		return m.handleQueueCleared(msg)
	}
	return m, nil
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "s":
		switch m.State {
		case StateNoBroadcast:
			m.State = StateDetecting
			m.Status = m.msg("MsgDetecting", nil)
			return m, detectBroadcast(m.Broadcast)
		case StateReady:
			m.State = StateStarting
			m.Status = m.msg("MsgStarting", nil)
			return m, startStream(m.Broadcast, m.Found, m.Resumed)
		}
	case "p":
		if m.State == StateStreaming {
			m.State = StatePicking
			m.Status = m.msg("MsgPicking", nil)
			return m, pickNext(m.Requests)
		}
	case "1", "2", "3", "4", "5", "r":
		if m.State == StateReviewing {
			m.State = StateResolving
			m.Status = m.msg("MsgResolving", nil)
			return m, resolvePick(m.Requests, decisionForKey(msg.String()))
		}
	case "l":
		if m.State == StateReviewing {
			m.State = StateResolving
			m.Status = m.msg("MsgResolving", nil)
			return m, deferPick(m.Requests)
		}
	case "o":
		if m.streaming() {
			m.Requests.SetPickOldest(!m.Requests.PickOldest())
		}
	case "a":
		if m.streaming() {
			m.Requests.SetAlternate(!m.Requests.Alternate())
		}
	case "d":
		if m.streaming() {
			m.Dump = !m.Dump
		}
	case "f":
		if m.streaming() {
			return m, resendFormLink(m.Broadcast)
		}
	case "c":
		if m.streaming() {
			return m, clearQueue(m.Broadcast)
		}
	case "t":
		switch m.State {
		case StateNoBroadcast, StateReady, StateStreaming:
			return m.enterSettings(), textinput.Blink
		}
	case "e":
		if m.streaming() && m.State != StateResolving && m.State != StatePicking {
			m.State = StateEnding
			m.Status = m.msg("MsgEnding", nil)
			return m, endStream(m.Broadcast, m.Dump)
		}
	}
	return m, nil
}

// streaming reports whether a stream session is active, in any sub-state.
func (m Model) streaming() bool {
	switch m.State {
	case StateStreaming, StatePicking, StateReviewing, StateResolving:
		return true
	}
	return false
}

func decisionForKey(key string) models.Decision {
	switch key {
	case "1":
		return models.DecisionStarrate
	case "2":
		return models.DecisionFeature
	case "3":
		return models.DecisionEpic
	case "4":
		return models.DecisionLegendary
	case "5":
		return models.DecisionMythic
	default:
		return models.DecisionReject
	}
}

func (m Model) handleDetectResult(msg DetectResultMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.State = StateNoBroadcast
		m.LastError = nil
		m.Status = m.msg("MsgNoBroadcast", nil)
		if !errors.Is(msg.Err, broadcast.ErrNoBroadcast) {
			m.LastError = msg.Err
		}
		return m, nil
	}

	m.Found = msg.Broadcast
	m.Resumed = msg.Resumed
	m.Status = m.msg("MsgBroadcastFound", map[string]interface{}{"Link": m.Found.ID})

	// The broadcast the previous session was handling picks up where it left
	// off, no start ceremony needed.
	if m.Resumed {
		m.State = StateStarting
		return m, startStream(m.Broadcast, m.Found, true)
	}

	m.State = StateReady
	return m, nil
}

func (m Model) handleStartDone(msg StartDoneMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.State = StateReady
		m.LastError = msg.Err
		return m, nil
	}

	m.State = StateStreaming
	m.LastError = nil
	if m.Resumed {
		m.Status = m.msg("MsgResumed", nil)
	} else {
		m.Status = m.msg("MsgStreamStarted", nil)
	}
	return m, nil
}

func (m Model) handlePickResult(msg PickResultMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.State = StateStreaming
		if errors.Is(msg.Err, requests.ErrNoRequests) {
			m.LastError = nil
			m.Status = m.msg("MsgNoRequests", nil)
		} else {
			m.LastError = msg.Err
			m.Status = ""
		}
		return m, nil
	}

	m.Pick = msg.Pick
	m.State = StateReviewing
	m.LastError = nil
	m.Status = ""
	return m, nil
}

func (m Model) handleDecisionDone(msg DecisionDoneMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		// The pick is still current; the operator retries the same key.
		m.State = StateReviewing
		m.LastError = msg.Err
		return m, nil
	}

	m.Pick = nil
	m.State = StateStreaming
	m.LastError = nil
	m.Status = m.msg("MsgDecisionRecorded", nil)
	return m, nil
}

func (m Model) handleEndDone(msg EndDoneMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.State = StateStreaming
		m.LastError = msg.Err
		return m, nil
	}

	m.State = StateDone
	m.LastError = nil
	m.Status = m.msg("MsgStreamEnded", nil)
	return m, tea.Quit
}

func (m Model) handleFormLinkDone(msg FormLinkDoneMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		if errors.Is(msg.Err, broadcast.ErrNoLiveChat) {
			m.Status = m.msg("MsgNoLiveChat", nil)
		} else {
			m.LastError = msg.Err
		}
		return m, nil
	}
	m.Status = m.msg("MsgFormLinkSent", nil)
	return m, nil
}

func (m Model) handleQueueCleared(msg QueueClearedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.LastError = msg.Err
		return m, nil
	}
	m.LastError = nil
	m.Status = m.msg("MsgQueueCleared", nil)
	return m, nil
}
