package database

import (
	"context"
	"time"

	"reqpanel/internal/models"
)

// DecisionEntry is one operator verdict, as written to the audit log.
type DecisionEntry struct {
	LevelID      int64             `bson:"level_id" json:"level_id"`
	BotRequestID int64             `bson:"bot_request_id" json:"bot_request_id"`
	Source       models.PickSource `bson:"source" json:"source"`
	Verdict      string            `bson:"verdict" json:"verdict"`
	BroadcastID  string            `bson:"broadcast_id" json:"broadcast_id"`
	DecidedAt    time.Time         `bson:"decided_at" json:"decided_at"`
}

// DecisionLogger defines the interface for recording operator decisions.
// Logging is best effort; callers treat a failure as non-fatal.
type DecisionLogger interface {
	LogDecision(ctx context.Context, entry DecisionEntry) error
}
