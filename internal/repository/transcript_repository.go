package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"advisorbot/internal/model"
)

type TranscriptRepository struct {
	db *gorm.DB
}

func NewTranscriptRepository(db *gorm.DB) *TranscriptRepository {
	return &TranscriptRepository{db: db}
}

func (r *TranscriptRepository) Create(ctx context.Context, transcript *model.Transcript) error {
	if err := r.db.WithContext(ctx).Create(transcript).Error; err != nil {
		return fmt.Errorf("create transcript failed: %w", err)
	}
	return nil
}

// List returns archived exchanges oldest first. An empty sessionID lists all
// sessions.
func (r *TranscriptRepository) List(ctx context.Context, sessionID string, limit int) ([]model.Transcript, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	query := r.db.WithContext(ctx).Model(&model.Transcript{})
	if sessionID != "" {
		query = query.Where("session_id = ?", sessionID)
	}

	var transcripts []model.Transcript
	if err := query.Order("occurred_at ASC, id ASC").Limit(limit).Find(&transcripts).Error; err != nil {
		return nil, fmt.Errorf("list transcripts failed: %w", err)
	}
	return transcripts, nil
}
