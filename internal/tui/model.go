package tui

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/nicksnyder/go-i18n/v2/i18n"

	"reqpanel/internal/broadcast"
	"reqpanel/internal/locales"
	"reqpanel/internal/models"
	"reqpanel/internal/requestbot"
	"reqpanel/internal/requests"
	"reqpanel/internal/session"
)

// State is the panel's top-level state machine.
type State string

const (
	StateDetecting   State = "detecting"
	StateNoBroadcast State = "no_broadcast"
	StateReady       State = "ready"
	StateStarting    State = "starting"
	StateStreaming   State = "streaming"
	StatePicking     State = "picking"
	StateReviewing   State = "reviewing"
	StateResolving   State = "resolving"
	StateEnding      State = "ending"
	StateSettings    State = "settings"
	StateDone        State = "done"
)

// Model is the operator panel: a thin key-driven surface over the picking
// workflow and the broadcast lifecycle. All external calls run as tea.Cmds
// so the event loop never blocks on the network.
type Model struct {
	Requests  *requests.Manager
	Broadcast *broadcast.Controller
	Session   *session.Store
	Bot       *requestbot.Client
	Localizer *i18n.Localizer

	State     State
	Found     models.Broadcast
	Resumed   bool
	Pick      *models.Pick
	Dump      bool
	Status    string
	LastError error

	// Settings view state.
	Inputs      []textinput.Model
	FocusIndex  int
	ReturnState State
}

// NewModel creates the panel model. Dumping the remaining queue at stream
// end defaults to on, matching the checkbox the operator usually leaves set.
func NewModel(reqs *requests.Manager, bc *broadcast.Controller, store *session.Store, bot *requestbot.Client, localizer *i18n.Localizer) Model {
	return Model{
		Requests:  reqs,
		Broadcast: bc,
		Session:   store,
		Bot:       bot,
		Localizer: localizer,
		State:     StateDetecting,
		Dump:      true,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return detectBroadcast(m.Broadcast)
}

func (m Model) msg(id string, data map[string]interface{}) string {
	return locales.GetMessage(m.Localizer, id, data)
}
