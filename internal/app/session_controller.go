package app

import (
	"context"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"advisorbot/internal/model"
)

// ConfirmFunc asks the user to approve a destructive action.
type ConfirmFunc func(prompt string) bool

// Confirmed approves without asking. Front ends use it once the user has
// already confirmed through their own UI.
func Confirmed(string) bool { return true }

const deletePrompt = "Delete this chat permanently?"

// SessionController owns the session list and the active session id. Every
// mutation is persisted before the lock is released.
type SessionController struct {
	mu       sync.Mutex
	store    *SessionStore
	sessions []model.Session
	activeID string
	logger   *zap.Logger
	now      func() time.Time
}

func NewSessionController(ctx context.Context, store *SessionStore, logger *zap.Logger) (*SessionController, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	sessions, activeID, err := store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return &SessionController{
		store:    store,
		sessions: sessions,
		activeID: activeID,
		logger:   logger,
		now:      time.Now,
	}, nil
}

// CreateSession inserts an empty session at the front of the list and makes
// it active.
func (c *SessionController) CreateSession(ctx context.Context) model.Session {
	c.mu.Lock()
	defer c.mu.Unlock()

	session := model.Session{
		ID:       c.newIDLocked(),
		Title:    DefaultTitle,
		Messages: []model.Message{},
	}
	c.sessions = append([]model.Session{session}, c.sessions...)
	c.activeID = session.ID
	c.persistLocked(ctx)
	return session.Clone()
}

// SelectSession makes id active. Unknown ids are ignored.
func (c *SessionController) SelectSession(ctx context.Context, id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if indexOf(c.sessions, id) < 0 {
		return false
	}
	if c.activeID == id {
		return true
	}
	c.activeID = id
	c.persistLocked(ctx)
	return true
}

// DeleteSession removes id after confirm approves. Deleting the active
// session activates the first remaining one.
func (c *SessionController) DeleteSession(ctx context.Context, id string, confirm ConfirmFunc) error {
	c.mu.Lock()
	idx := indexOf(c.sessions, id)
	c.mu.Unlock()
	if idx < 0 {
		return ErrSessionNotFound
	}
	if confirm == nil || !confirm(deletePrompt) {
		return ErrDeleteDeclined
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// The list may have changed while the user was deciding.
	idx = indexOf(c.sessions, id)
	if idx < 0 {
		return ErrSessionNotFound
	}
	c.sessions = slices.Delete(c.sessions, idx, idx+1)
	if c.activeID == id {
		c.activeID = ""
		if len(c.sessions) > 0 {
			c.activeID = c.sessions[0].ID
		}
	}
	c.persistLocked(ctx)
	return nil
}

// RenameSession sets a trimmed, non-empty title. Blank titles are ignored.
func (c *SessionController) RenameSession(ctx context.Context, id, title string) bool {
	title = strings.TrimSpace(title)
	if title == "" {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	idx := indexOf(c.sessions, id)
	if idx < 0 {
		return false
	}
	c.sessions[idx].Title = title
	c.persistLocked(ctx)
	return true
}

func (c *SessionController) TogglePin(ctx context.Context, id string) (model.Session, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := indexOf(c.sessions, id)
	if idx < 0 {
		return model.Session{}, false
	}
	c.sessions[idx].Pinned = !c.sessions[idx].Pinned
	c.persistLocked(ctx)
	return c.sessions[idx].Clone(), true
}

// ToggleArchive flips the archived flag. Archiving the active session moves
// the selection to the first non-archived session, or clears it.
func (c *SessionController) ToggleArchive(ctx context.Context, id string) (model.Session, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := indexOf(c.sessions, id)
	if idx < 0 {
		return model.Session{}, false
	}
	c.sessions[idx].Archived = !c.sessions[idx].Archived
	if c.activeID == id && c.sessions[idx].Archived {
		c.activeID = ""
		for _, s := range c.sessions {
			if s.ID != id && !s.Archived {
				c.activeID = s.ID
				break
			}
		}
	}
	c.persistLocked(ctx)
	return c.sessions[idx].Clone(), true
}

// UpdateMessages replaces the message list of id and recomputes its title.
// A list equal to the current one leaves the store untouched and reports
// false, so repeated calls never persist twice.
func (c *SessionController) UpdateMessages(ctx context.Context, id string, messages []model.Message) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.updateMessagesLocked(ctx, id, messages)
}

// AppendMessages adds messages to the end of id's list.
func (c *SessionController) AppendMessages(ctx context.Context, id string, messages ...model.Message) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := indexOf(c.sessions, id)
	if idx < 0 {
		return false
	}
	next := make([]model.Message, 0, len(c.sessions[idx].Messages)+len(messages))
	next = append(next, c.sessions[idx].Messages...)
	next = append(next, messages...)
	return c.updateMessagesLocked(ctx, id, next)
}

// ReplaceAll swaps in a new session list, as the history synchronizer does.
// An activeID that names no session falls back to the first one.
func (c *SessionController) ReplaceAll(ctx context.Context, sessions []model.Session, activeID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := make([]model.Session, 0, len(sessions))
	for _, s := range sessions {
		s = s.Clone()
		normalizeSession(&s)
		next = append(next, s)
	}
	c.sessions = next
	c.activeID = ""
	if indexOf(next, activeID) >= 0 {
		c.activeID = activeID
	} else if len(next) > 0 {
		c.activeID = next[0].ID
	}
	c.persistLocked(ctx)
}

// Snapshot returns a copy of every session and the active id.
func (c *SessionController) Snapshot() ([]model.Session, string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]model.Session, len(c.sessions))
	for i, s := range c.sessions {
		out[i] = s.Clone()
	}
	return out, c.activeID
}

func (c *SessionController) ActiveID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.activeID
}

func (c *SessionController) Active() (model.Session, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := indexOf(c.sessions, c.activeID)
	if idx < 0 {
		return model.Session{}, false
	}
	return c.sessions[idx].Clone(), true
}

func (c *SessionController) Session(id string) (model.Session, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := indexOf(c.sessions, id)
	if idx < 0 {
		return model.Session{}, false
	}
	return c.sessions[idx].Clone(), true
}

// List returns the non-archived sessions whose title contains query, pinned
// ones first, each group in list order.
func (c *SessionController) List(query string) []model.Session {
	c.mu.Lock()
	defer c.mu.Unlock()

	query = strings.ToLower(strings.TrimSpace(query))
	var pinned, regular []model.Session
	for _, s := range c.sessions {
		if s.Archived || !strings.Contains(strings.ToLower(s.Title), query) {
			continue
		}
		if s.Pinned {
			pinned = append(pinned, s.Clone())
		} else {
			regular = append(regular, s.Clone())
		}
	}
	return append(pinned, regular...)
}

func (c *SessionController) Archived() []model.Session {
	c.mu.Lock()
	defer c.mu.Unlock()

	var out []model.Session
	for _, s := range c.sessions {
		if s.Archived {
			out = append(out, s.Clone())
		}
	}
	return out
}

func (c *SessionController) updateMessagesLocked(ctx context.Context, id string, messages []model.Message) bool {
	idx := indexOf(c.sessions, id)
	if idx < 0 {
		return false
	}
	if slices.Equal(c.sessions[idx].Messages, messages) {
		return false
	}

	c.sessions[idx].Messages = append([]model.Message{}, messages...)
	c.sessions[idx].Title = titleFor(messages)
	c.persistLocked(ctx)
	return true
}

func (c *SessionController) newIDLocked() string {
	next := c.now().UnixMilli()
	for indexOf(c.sessions, strconv.FormatInt(next, 10)) >= 0 {
		next++
	}
	return strconv.FormatInt(next, 10)
}

func (c *SessionController) persistLocked(ctx context.Context) {
	if err := c.store.Persist(ctx, c.sessions, c.activeID); err != nil {
		c.logger.Error("persist sessions failed",
			zap.Int("sessions", len(c.sessions)),
			zap.Error(err),
		)
	}
}

func titleFor(messages []model.Message) string {
	if len(messages) == 0 {
		return DefaultTitle
	}
	if title := truncateTitle(messages[0].Text); title != "" {
		return title
	}
	return DefaultTitle
}
