package requests

import (
	"context"
	"fmt"
	"log"

	"reqpanel/internal/gd"
	"reqpanel/internal/models"

	sentry "github.com/getsentry/sentry-go"
)

// IngestNewResponses pulls all pending form responses, folds the valid new
// ones into the spreadsheet-backed open-request queue, and clears the
// staging area.
//
// Each level id is added to the processed-set before any fallible step, so a
// response is handled at most once per broadcast: a transient failure may
// silently drop it, but it can never be enqueued twice. Clearing the staging
// area is best effort for the same reason: a redelivered response is caught
// by the guard on the next pull. The session is persisted at the end
// unconditionally, since the processed-set must reflect every response
// examined.
func (m *Manager) IngestNewResponses(ctx context.Context) error {
	responses, err := m.sheet.NewResponses(ctx)
	if err != nil {
		return fmt.Errorf("failed to pull new responses: %w", err)
	}

	rows := make([]models.OpenRequest, 0, len(responses))
	for _, resp := range responses {
		if m.session.IsProcessed(resp.LevelID) {
			continue
		}
		m.session.MarkProcessed(resp.LevelID)

		level, err := m.levels.GetLevel(ctx, resp.LevelID)
		if err != nil {
			log.Printf("[Ingest] level %d lookup failed, response dropped: %v", resp.LevelID, err)
			sentry.CaptureException(err)
			continue
		}
		if level == nil || level.Grade != gd.GradeUnrated {
			continue
		}

		rows = append(rows, models.OpenRequest{
			SubmittedAt:  resp.SubmittedAt,
			Language:     resp.Language,
			LevelName:    level.Name,
			Creator:      level.Author,
			LevelID:      resp.LevelID,
			Stars:        level.StarsRequested,
			Difficulty:   gd.RequestedDifficultyLabel(level.StarsRequested),
			ShowcaseLink: resp.ShowcaseLink,
		})
	}

	appendErr := m.sheet.AppendOpenRequests(ctx, rows)

	if clearErr := m.sheet.ClearNewResponses(ctx); clearErr != nil {
		// Swallowed: the processed-set guard makes redelivery safe, and a
		// retry here could race with the next pull.
		log.Printf("[Ingest] clearing staging area failed: %v", clearErr)
		sentry.CaptureException(clearErr)
	}

	saveErr := m.session.Save()

	if appendErr != nil {
		return fmt.Errorf("failed to append open requests: %w", appendErr)
	}
	if saveErr != nil {
		return fmt.Errorf("failed to persist session state: %w", saveErr)
	}
	return nil
}
