package tui

import "reqpanel/internal/models"

// Messages delivered back to the event loop by tea.Cmds.

// DetectResultMsg carries the outcome of broadcast detection.
type DetectResultMsg struct {
	Broadcast models.Broadcast
	Resumed   bool
	Err       error
}

// StartDoneMsg is sent when the stream start (or resume) routine finishes.
type StartDoneMsg struct {
	Err error
}

// PickResultMsg carries the next pick, or the reason there is none.
type PickResultMsg struct {
	Pick *models.Pick
	Err  error
}

// DecisionDoneMsg is sent when a verdict (or deferral) has been recorded.
type DecisionDoneMsg struct {
	Err error
}

// EndDoneMsg is sent when the stream end routine finishes.
type EndDoneMsg struct {
	Err error
}

// FormLinkDoneMsg is sent after re-posting the form link to the live chat.
type FormLinkDoneMsg struct {
	Err error
}

// QueueClearedMsg is sent after the clear-queue action reopened the form.
type QueueClearedMsg struct {
	Err error
}
