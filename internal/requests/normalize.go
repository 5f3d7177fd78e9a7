package requests

import (
	"context"
	"fmt"
	"time"

	"reqpanel/internal/gd"
	"reqpanel/internal/models"
)

// NormalizeBotRequest converts a bot-sourced request into the shape the
// spreadsheet queue produces by resolving its level metadata. It returns
// (nil, nil) when the level cannot be resolved (deleted level); the caller
// must treat that as "no request available", not a failure.
func (m *Manager) NormalizeBotRequest(ctx context.Context, botReq *models.BotRequest) (*models.OpenRequest, error) {
	level, err := m.levels.GetLevel(ctx, botReq.LevelID)
	if err != nil {
		return nil, fmt.Errorf("level lookup for bot request %d: %w", botReq.ID, err)
	}
	if level == nil {
		return nil, nil
	}

	submittedAt := botReq.CreatedAt
	if botReq.RequestedAt != nil {
		submittedAt = *botReq.RequestedAt
	}
	if submittedAt.IsZero() {
		submittedAt = time.Now()
	}

	return &models.OpenRequest{
		SubmittedAt:  submittedAt,
		Language:     models.LanguageFromBotAPI(botReq.Language),
		LevelName:    level.Name,
		Creator:      level.Author,
		LevelID:      botReq.LevelID,
		Stars:        level.StarsRequested,
		Difficulty:   gd.RequestedDifficultyLabel(level.StarsRequested),
		ShowcaseLink: botReq.ShowcaseLink,
	}, nil
}
