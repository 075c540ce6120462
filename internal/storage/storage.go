// Package storage is the durable key-value port behind the session store,
// the auth token and the view preferences.
package storage

import "context"

const (
	KeySessions         = "chat_sessions"
	KeyActiveSession    = "active_session_id"
	KeyToken            = "token"
	KeyTheme            = "theme"
	KeySidebarCollapsed = "sidebar_collapsed"
)

// Store persists plain string values. Get reports whether the key exists.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	Ping(ctx context.Context) error
}
