package model

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// HistoryRecord is one server-side exchange as returned by the chat history
// endpoint.
type HistoryRecord struct {
	SessionID string `json:"session_id"`
	User      string `json:"user"`
	Bot       string `json:"bot"`
	Time      string `json:"time"`
}

// UnmarshalJSON accepts the object form and the older [user, bot] tuple form.
// Numeric session ids and times are kept as their decimal text.
func (r *HistoryRecord) UnmarshalJSON(data []byte) error {
	var tuple []json.RawMessage
	if err := json.Unmarshal(data, &tuple); err == nil {
		if len(tuple) < 2 {
			return fmt.Errorf("history tuple has %d elements, want 2", len(tuple))
		}
		var user, bot string
		if err := json.Unmarshal(tuple[0], &user); err != nil {
			return fmt.Errorf("decode history tuple user failed: %w", err)
		}
		if err := json.Unmarshal(tuple[1], &bot); err != nil {
			return fmt.Errorf("decode history tuple bot failed: %w", err)
		}
		*r = HistoryRecord{User: user, Bot: bot}
		return nil
	}

	var obj struct {
		SessionID json.RawMessage `json:"session_id"`
		User      string          `json:"user"`
		Bot       string          `json:"bot"`
		Time      json.RawMessage `json:"time"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("decode history record failed: %w", err)
	}
	*r = HistoryRecord{
		SessionID: scalarText(obj.SessionID),
		User:      obj.User,
		Bot:       obj.Bot,
		Time:      scalarText(obj.Time),
	}
	return nil
}

func scalarText(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		if i, err := n.Int64(); err == nil {
			return strconv.FormatInt(i, 10)
		}
		return n.String()
	}
	return string(raw)
}
