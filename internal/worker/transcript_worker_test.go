package worker

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"advisorbot/internal/events"
	"advisorbot/internal/model"
	"advisorbot/internal/repository"
)

func newTranscriptRepo(t *testing.T) *repository.TranscriptRepository {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&model.Transcript{}))
	return repository.NewTranscriptRepository(db)
}

func TestHandleStoresTranscript(t *testing.T) {
	repo := newTranscriptRepo(t)
	w := NewTranscriptWorker(nil, repo, "q", nil)
	ctx := context.Background()

	body, err := events.Encode(model.ExchangeEvent{
		SessionID:  "s1",
		Email:      "a@b.c",
		Query:      "hi",
		Reply:      "hello",
		OccurredAt: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.NoError(t, w.Handle(ctx, body))

	rows, err := repo.List(ctx, "s1", 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "hi", rows[0].Query)
	assert.Equal(t, "hello", rows[0].Reply)
	assert.Equal(t, "a@b.c", rows[0].Email)
}

func TestHandleRejectsBadPayload(t *testing.T) {
	repo := newTranscriptRepo(t)
	w := NewTranscriptWorker(nil, repo, "q", nil)

	assert.Error(t, w.Handle(context.Background(), []byte("{")))

	rows, err := repo.List(context.Background(), "", 0)
	require.NoError(t, err)
	assert.Empty(t, rows)
}
