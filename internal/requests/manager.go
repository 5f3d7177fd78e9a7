package requests

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"reqpanel/internal/database"
	"reqpanel/internal/models"
)

// ErrNoRequests signals that neither queue currently has a pickable request.
// It is an expected outcome, distinguishable from a transient failure.
var ErrNoRequests = errors.New("no requests available")

// laterLabel is the spreadsheet label for a deferred request.
const laterLabel = "later"

// Manager merges the two request queues into a single picking workflow and
// records operator decisions back into both external systems.
type Manager struct {
	sheet     SheetQueue
	bot       BotQueue
	levels    LevelLookup
	session   Session
	decisions database.DecisionLogger

	mu          sync.Mutex
	pickOldest  bool
	alternate   bool
	streamLink  string
	broadcastID string
	current     *models.Pick
}

// ManagerDeps holds the dependencies required by the Manager.
type ManagerDeps struct {
	Sheet     SheetQueue
	Bot       BotQueue
	Levels    LevelLookup
	Session   Session
	Decisions database.DecisionLogger
}

// NewManager creates a new request manager from its dependencies.
// Picking defaults to oldest-first with auto-alternation on, matching the
// panel's initial toggles.
func NewManager(deps ManagerDeps) (*Manager, error) {
	if deps.Sheet == nil {
		return nil, fmt.Errorf("sheet queue cannot be nil")
	}
	if deps.Bot == nil {
		return nil, fmt.Errorf("bot queue cannot be nil")
	}
	if deps.Levels == nil {
		return nil, fmt.Errorf("level lookup cannot be nil")
	}
	if deps.Session == nil {
		return nil, fmt.Errorf("session cannot be nil")
	}
	if deps.Decisions == nil {
		return nil, fmt.Errorf("decision logger cannot be nil")
	}

	return &Manager{
		sheet:      deps.Sheet,
		bot:        deps.Bot,
		levels:     deps.Levels,
		session:    deps.Session,
		decisions:  deps.Decisions,
		pickOldest: true,
		alternate:  true,
	}, nil
}

// SetStreamContext records the active stream's link and broadcast id, used in
// bot payloads and the decision log.
func (m *Manager) SetStreamContext(streamLink, broadcastID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.streamLink = streamLink
	m.broadcastID = broadcastID
}

// StreamLink returns the active stream's link.
func (m *Manager) StreamLink() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.streamLink
}

// PickOldest reports the current value of the oldest-vs-random policy bit.
func (m *Manager) PickOldest() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pickOldest
}

// SetPickOldest sets the oldest-vs-random policy bit.
func (m *Manager) SetPickOldest(oldest bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pickOldest = oldest
}

// Alternate reports whether the policy bit flips after each successful pick.
func (m *Manager) Alternate() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.alternate
}

// SetAlternate enables or disables auto-alternation.
func (m *Manager) SetAlternate(alternate bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.alternate = alternate
}

// Current returns the pick awaiting an operator decision, if any.
func (m *Manager) Current() *models.Pick {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// CurrentLevelID returns the level id of the current pick, or 0 when idle.
func (m *Manager) CurrentLevelID() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return 0
	}
	return m.current.Request.LevelID
}

// PickNext draws the next request for review. It ingests fresh form
// responses first, prefers the spreadsheet queue, and falls back to the bot
// queue. A sheet-sourced pick is registered with the bot API so all later
// resolution calls can use the bot's request id. Returns ErrNoRequests when
// both queues are exhausted.
func (m *Manager) PickNext(ctx context.Context) (*models.Pick, error) {
	if err := m.IngestNewResponses(ctx); err != nil {
		return nil, err
	}

	m.mu.Lock()
	oldest := m.pickOldest
	m.current = nil
	m.mu.Unlock()

	pick, err := m.drawPick(ctx, oldest)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.current = pick
	if m.alternate {
		m.pickOldest = !oldest
	}
	m.mu.Unlock()

	return pick, nil
}

func (m *Manager) drawPick(ctx context.Context, oldest bool) (*models.Pick, error) {
	picked, err := m.sheet.PickOpenRequest(ctx, oldest)
	if err != nil {
		return nil, fmt.Errorf("spreadsheet queue: %w", err)
	}

	if picked != nil {
		requestID, err := m.bot.CreateRequest(ctx, *picked, m.StreamLink())
		if err != nil {
			// The sheet already served the row; the two queues may now
			// disagree until the operator retries.
			return nil, fmt.Errorf("failed to register pick with the bot: %w", err)
		}
		return &models.Pick{
			Request:      *picked,
			Source:       models.PickSourceSheet,
			BotRequestID: requestID,
		}, nil
	}

	botReq, err := m.bot.PickRequest(ctx, oldest)
	if err != nil {
		return nil, fmt.Errorf("bot queue: %w", err)
	}
	if botReq == nil {
		return nil, ErrNoRequests
	}

	normalized, err := m.NormalizeBotRequest(ctx, botReq)
	if err != nil {
		return nil, err
	}
	if normalized == nil {
		// The pick call already removed the entry from the bot's queue, so
		// it stays claimed there while being invisible to the operator.
		log.Printf("[PickNext] bot request %d (level %d) could not be resolved, remains claimed bot-side", botReq.ID, botReq.LevelID)
		return nil, ErrNoRequests
	}

	return &models.Pick{
		Request:      *normalized,
		Source:       models.PickSourceBot,
		BotRequestID: botReq.ID,
	}, nil
}

// Resolve records a terminal verdict for the current pick in both external
// systems. Neither call is rolled back on failure; the operator is informed
// and may need to reconcile manually.
func (m *Manager) Resolve(ctx context.Context, decision models.Decision) error {
	pick := m.Current()
	if pick == nil {
		return errors.New("no request is currently picked")
	}

	if err := m.bot.ResolveRequest(ctx, pick.BotRequestID, decision, m.StreamLink()); err != nil {
		return fmt.Errorf("bot API: %w", err)
	}
	if err := m.sheet.ResolveRequest(ctx, pick.Request.LevelID, decision.SpreadsheetValue()); err != nil {
		return fmt.Errorf("spreadsheet: %w", err)
	}

	m.logDecision(ctx, pick, string(decision))
	m.clearCurrent()
	return nil
}

// Defer marks the current pick for later: the bot pre-approves it (so it is
// neither resolved nor re-served) and the sheet row is labeled "later".
func (m *Manager) Defer(ctx context.Context) error {
	pick := m.Current()
	if pick == nil {
		return errors.New("no request is currently picked")
	}

	if err := m.bot.PreApproveRequest(ctx, pick.BotRequestID); err != nil {
		return fmt.Errorf("bot API: %w", err)
	}
	if err := m.sheet.ResolveRequest(ctx, pick.Request.LevelID, laterLabel); err != nil {
		return fmt.Errorf("spreadsheet: %w", err)
	}

	m.logDecision(ctx, pick, laterLabel)
	m.clearCurrent()
	return nil
}

func (m *Manager) clearCurrent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = nil
}

func (m *Manager) logDecision(ctx context.Context, pick *models.Pick, verdict string) {
	m.mu.Lock()
	broadcastID := m.broadcastID
	m.mu.Unlock()

	entry := database.DecisionEntry{
		LevelID:      pick.Request.LevelID,
		BotRequestID: pick.BotRequestID,
		Source:       pick.Source,
		Verdict:      verdict,
		BroadcastID:  broadcastID,
		DecidedAt:    time.Now(),
	}
	if err := m.decisions.LogDecision(ctx, entry); err != nil {
		log.Printf("[Decide] failed to log decision for level %d: %v", pick.Request.LevelID, err)
	}
}
