package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	MoodHappy      = "happy"
	MoodSad        = "sad"
	MoodExcited    = "excited"
	MoodCalm       = "calm"
	MoodAnxious    = "anxious"
	MoodGrateful   = "grateful"
	MoodNeutral    = "neutral"
	MoodReflective = "reflective"
)

func ValidMood(mood string) bool {
	switch mood {
	case MoodHappy, MoodSad, MoodExcited, MoodCalm,
		MoodAnxious, MoodGrateful, MoodNeutral, MoodReflective:
		return true
	default:
		return false
	}
}

// JournalEntry is read-only to the risk pipeline once analyzed.
type JournalEntry struct {
	ID        uuid.UUID                   `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID    uuid.UUID                   `gorm:"type:uuid;not null;index" json:"user_id"`
	User      *User                       `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	Title     string                      `gorm:"not null;column:title" json:"title"`
	Content   string                      `gorm:"not null;column:content" json:"content"`
	Mood      string                      `gorm:"not null;default:neutral;index;column:mood" json:"mood"`
	Tags      datatypes.JSONSlice[string] `gorm:"type:jsonb;column:tags" json:"tags,omitempty"`
	Date      time.Time                   `gorm:"not null;default:now();index" json:"date"`
	CreatedAt time.Time                   `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time                   `gorm:"not null;default:now()" json:"updated_at"`
}

func (JournalEntry) TableName() string {
	return "journal_entry"
}
