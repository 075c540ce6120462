package app

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"advisorbot/internal/model"
)

type HistorySource interface {
	History(ctx context.Context, token string) ([]model.HistoryRecord, error)
}

// Synchronizer rebuilds the local session list from the server's chat
// history. It runs once per token value; Sync forces another run.
type Synchronizer struct {
	source   HistorySource
	sessions *SessionController
	logger   *zap.Logger
	location *time.Location

	mu        sync.Mutex
	lastToken string
}

func NewSynchronizer(source HistorySource, sessions *SessionController, logger *zap.Logger) *Synchronizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Synchronizer{
		source:   source,
		sessions: sessions,
		logger:   logger,
		location: time.Local,
	}
}

// SyncIfNeeded syncs when token differs from the last token seen. It reports
// whether a sync was attempted. Failures are logged and leave local sessions
// as they were; the token still counts as seen.
func (s *Synchronizer) SyncIfNeeded(ctx context.Context, token string) bool {
	if token == "" {
		return false
	}

	s.mu.Lock()
	if token == s.lastToken {
		s.mu.Unlock()
		return false
	}
	s.lastToken = token
	s.mu.Unlock()

	if err := s.Sync(ctx, token); err != nil {
		s.logger.Warn("chat history sync failed, keeping local sessions", zap.Error(err))
	}
	return true
}

// Sync fetches the history and replaces the session list with one session
// per server session id. The last session becomes active. An empty history
// leaves the local sessions alone.
func (s *Synchronizer) Sync(ctx context.Context, token string) error {
	records, err := s.source.History(ctx, token)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		s.logger.Debug("server history empty, nothing to sync")
		return nil
	}

	sessions := GroupHistory(records, s.location)
	s.sessions.ReplaceAll(ctx, sessions, sessions[len(sessions)-1].ID)
	s.logger.Info("chat history synced",
		zap.Int("records", len(records)),
		zap.Int("sessions", len(sessions)),
	)
	return nil
}

// GroupHistory groups flat records by session id in order of first
// appearance. Each record becomes a user message followed by a bot message.
func GroupHistory(records []model.HistoryRecord, loc *time.Location) []model.Session {
	var order []string
	groups := make(map[string][]model.Message)
	for _, rec := range records {
		key := strings.TrimSpace(rec.SessionID)
		if key == "" {
			key = DefaultSessionID
		}
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		stamp := formatRecordTime(rec.Time, loc)
		groups[key] = append(groups[key],
			model.Message{Text: rec.User, Sender: model.SenderUser, Time: stamp},
			model.Message{Text: rec.Bot, Sender: model.SenderBot, Time: stamp},
		)
	}

	sessions := make([]model.Session, 0, len(order))
	for _, key := range order {
		messages := groups[key]
		title := SyncedTitle
		if len(messages) > 0 {
			if t := truncateTitle(messages[0].Text); t != "" {
				title = t
			}
		}
		sessions = append(sessions, model.Session{
			ID:       key,
			Title:    title,
			Messages: messages,
		})
	}
	return sessions
}
