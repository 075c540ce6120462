package model

import "time"

// Transcript is one archived exchange: a user query and the bot reply shown
// for it.
type Transcript struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	SessionID  string    `gorm:"size:64;not null;index" json:"session_id"`
	Email      string    `gorm:"size:255;index" json:"email"`
	Query      string    `gorm:"type:text;not null" json:"query"`
	Reply      string    `gorm:"type:text;not null" json:"reply"`
	Failed     bool      `gorm:"not null;default:false" json:"failed"`
	OccurredAt time.Time `gorm:"index" json:"occurred_at"`
	CreatedAt  time.Time `json:"created_at"`
}
