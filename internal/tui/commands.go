package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"reqpanel/internal/broadcast"
	"reqpanel/internal/models"
	"reqpanel/internal/requests"
)

// callTimeout bounds every network call issued from the panel.
const callTimeout = 2 * time.Minute

func withTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), callTimeout)
}

func detectBroadcast(bc *broadcast.Controller) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := withTimeout()
		defer cancel()
		b, resumed, err := bc.Detect(ctx)
		return DetectResultMsg{Broadcast: b, Resumed: resumed, Err: err}
	}
}

func startStream(bc *broadcast.Controller, b models.Broadcast, resume bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := withTimeout()
		defer cancel()
		var err error
		if resume {
			err = bc.Resume(ctx, b)
		} else {
			err = bc.Start(ctx, b)
		}
		return StartDoneMsg{Err: err}
	}
}

func pickNext(mgr *requests.Manager) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := withTimeout()
		defer cancel()
		pick, err := mgr.PickNext(ctx)
		return PickResultMsg{Pick: pick, Err: err}
	}
}

func resolvePick(mgr *requests.Manager, decision models.Decision) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := withTimeout()
		defer cancel()
		return DecisionDoneMsg{Err: mgr.Resolve(ctx, decision)}
	}
}

func deferPick(mgr *requests.Manager) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := withTimeout()
		defer cancel()
		return DecisionDoneMsg{Err: mgr.Defer(ctx)}
	}
}

func endStream(bc *broadcast.Controller, dump bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := withTimeout()
		defer cancel()
		return EndDoneMsg{Err: bc.End(ctx, dump)}
	}
}

func clearQueue(bc *broadcast.Controller) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := withTimeout()
		defer cancel()
		return QueueClearedMsg{Err: bc.ClearQueue(ctx)}
	}
}

func resendFormLink(bc *broadcast.Controller) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := withTimeout()
		defer cancel()
		return FormLinkDoneMsg{Err: bc.ResendFormLink(ctx)}
	}
}
