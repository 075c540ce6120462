package backend

import (
	"encoding/json"
	"fmt"
	"strings"

	"advisorbot/internal/model"
)

// ReplyFields lists the chat reply fields in precedence order.
var ReplyFields = []string{"response", "message", "answer"}

type ChatReply struct {
	Text  string
	Field string
}

// DecodeChatReply picks the first non-empty string field of ReplyFields.
func DecodeChatReply(raw []byte) (*ChatReply, error) {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnrecognizedResponse, err)
	}
	for _, field := range ReplyFields {
		value, ok := payload[field]
		if !ok {
			continue
		}
		var text string
		if err := json.Unmarshal(value, &text); err != nil {
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		return &ChatReply{Text: text, Field: field}, nil
	}
	return nil, ErrUnrecognizedResponse
}

func decodeHistory(raw []byte) ([]model.HistoryRecord, error) {
	var payload struct {
		History []model.HistoryRecord `json:"history"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decode history failed: %w", err)
	}
	if payload.History == nil {
		return []model.HistoryRecord{}, nil
	}
	return payload.History, nil
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type UploadResult struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
}
