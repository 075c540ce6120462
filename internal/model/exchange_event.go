package model

import "time"

// ExchangeEvent is published after every completed exchange.
type ExchangeEvent struct {
	SessionID  string    `json:"session_id"`
	Email      string    `json:"email,omitempty"`
	Query      string    `json:"query"`
	Reply      string    `json:"reply"`
	Failed     bool      `json:"failed"`
	OccurredAt time.Time `json:"occurred_at"`
}
