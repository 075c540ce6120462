package app

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	DefaultTitle     = "New Chat"
	SyncedTitle      = "Chat"
	DefaultSessionID = "default"
	titleMaxRunes    = 30
	clockLayout      = "15:04"
)

var recordTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05.999999",
	"2006-01-02 15:04:05",
}

// FormatClock renders t as the hour:minute stamp shown next to messages.
func FormatClock(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(clockLayout)
}

// formatRecordTime converts a server timestamp to a clock stamp. Values that
// do not parse are shown as sent.
func formatRecordTime(raw string, loc *time.Location) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	for _, layout := range recordTimeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return FormatClock(t, loc)
		}
	}
	if secs, err := strconv.ParseFloat(raw, 64); err == nil {
		whole := int64(secs)
		nanos := int64((secs - float64(whole)) * float64(time.Second))
		return FormatClock(time.Unix(whole, nanos), loc)
	}
	return raw
}

func truncateTitle(text string) string {
	if utf8.RuneCountInString(text) <= titleMaxRunes {
		return text
	}
	runes := []rune(text)
	return string(runes[:titleMaxRunes])
}
