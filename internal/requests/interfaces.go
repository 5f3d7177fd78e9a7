package requests

import (
	"context"

	"reqpanel/internal/gd"
	"reqpanel/internal/models"
)

// SheetQueue is the spreadsheet-backed side of the request workflow: the
// staging area for raw form responses and the durable open-request queue.
type SheetQueue interface {
	NewResponses(ctx context.Context) ([]models.FormResponse, error)
	ClearNewResponses(ctx context.Context) error
	AppendOpenRequests(ctx context.Context, reqs []models.OpenRequest) error
	PickOpenRequest(ctx context.Context, oldest bool) (*models.OpenRequest, error)
	ResolveRequest(ctx context.Context, levelID int64, label string) error
}

// BotQueue is the request bot's queue and resolution API.
type BotQueue interface {
	CreateRequest(ctx context.Context, req models.OpenRequest, streamLink string) (int64, error)
	PickRequest(ctx context.Context, oldest bool) (*models.BotRequest, error)
	ResolveRequest(ctx context.Context, requestID int64, decision models.Decision, streamLink string) error
	PreApproveRequest(ctx context.Context, requestID int64) error
}

// LevelLookup resolves level metadata. A (nil, nil) return means the level
// does not exist.
type LevelLookup interface {
	GetLevel(ctx context.Context, levelID int64) (*gd.Level, error)
}

// Session is the per-broadcast durable memory the manager consults for
// de-duplication.
type Session interface {
	IsProcessed(levelID int64) bool
	MarkProcessed(levelID int64)
	Save() error
}
