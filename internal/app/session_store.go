package app

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"advisorbot/internal/model"
	"advisorbot/internal/storage"
)

// SessionStore mirrors the session list and the active session id to durable
// storage.
type SessionStore struct {
	kv     storage.Store
	logger *zap.Logger
	now    func() time.Time
}

func NewSessionStore(kv storage.Store, logger *zap.Logger) *SessionStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionStore{kv: kv, logger: logger, now: time.Now}
}

// Load reads the persisted sessions. A missing, empty or unreadable list
// yields a single default session. The active id is restored when it still
// names a session, otherwise the first session is active.
func (s *SessionStore) Load(ctx context.Context) ([]model.Session, string, error) {
	raw, ok, err := s.kv.Get(ctx, storage.KeySessions)
	if err != nil {
		return nil, "", fmt.Errorf("load sessions failed: %w", err)
	}

	var sessions []model.Session
	if ok && raw != "" {
		if err := json.Unmarshal([]byte(raw), &sessions); err != nil {
			s.logger.Warn("stored sessions unreadable, starting fresh", zap.Error(err))
			sessions = nil
		}
	}
	if len(sessions) == 0 {
		session := s.defaultSession()
		return []model.Session{session}, session.ID, nil
	}
	for i := range sessions {
		normalizeSession(&sessions[i])
	}

	activeID := sessions[0].ID
	stored, ok, err := s.kv.Get(ctx, storage.KeyActiveSession)
	if err != nil {
		return nil, "", fmt.Errorf("load active session failed: %w", err)
	}
	if ok && indexOf(sessions, stored) >= 0 {
		activeID = stored
	}
	return sessions, activeID, nil
}

// Persist writes the full list and the active id. Failures are not retried.
func (s *SessionStore) Persist(ctx context.Context, sessions []model.Session, activeID string) error {
	if sessions == nil {
		sessions = []model.Session{}
	}
	payload, err := json.Marshal(sessions)
	if err != nil {
		return fmt.Errorf("marshal sessions failed: %w", err)
	}
	if err := s.kv.Set(ctx, storage.KeySessions, string(payload)); err != nil {
		return fmt.Errorf("persist sessions failed: %w", err)
	}
	if err := s.kv.Set(ctx, storage.KeyActiveSession, activeID); err != nil {
		return fmt.Errorf("persist active session failed: %w", err)
	}
	return nil
}

func (s *SessionStore) defaultSession() model.Session {
	return model.Session{
		ID:       strconv.FormatInt(s.now().UnixMilli(), 10),
		Title:    DefaultTitle,
		Messages: []model.Message{},
	}
}

// normalizeSession back-fills fields older stored records may lack. Missing
// pinned/archived flags already decode as false.
func normalizeSession(session *model.Session) {
	if session.Messages == nil {
		session.Messages = []model.Message{}
	}
	if session.Title == "" {
		session.Title = DefaultTitle
	}
}

func indexOf(sessions []model.Session, id string) int {
	if id == "" {
		return -1
	}
	for i := range sessions {
		if sessions[i].ID == id {
			return i
		}
	}
	return -1
}
