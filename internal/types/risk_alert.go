package types

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	RiskLevelNone     = "none"
	RiskLevelLow      = "low"
	RiskLevelMedium   = "medium"
	RiskLevelHigh     = "high"
	RiskLevelCritical = "critical"
)

const (
	AlertStatusNew        = "new"
	AlertStatusViewed     = "viewed"
	AlertStatusInProgress = "in_progress"
	AlertStatusResolved   = "resolved"
	AlertStatusEscalated  = "escalated"
)

const (
	TriggerSourceJournal      = "journal"
	TriggerSourceMoodPattern  = "mood_pattern"
	TriggerSourceGoalProgress = "goal_progress"
	TriggerSourceChat         = "chat"
)

const (
	FactorMoodDecline        = "mood_decline"
	FactorNegativeKeywords   = "negative_keywords"
	FactorIsolationPattern   = "isolation_pattern"
	FactorStressIncrease     = "stress_increase"
	FactorSleepIssues        = "sleep_issues"
	FactorAcademicStruggle   = "academic_struggle"
	FactorSelfHarmIndication = "self_harm_indication"
	FactorSuicidalIdeation   = "suicidal_ideation"
)

const (
	NoteActionContacted  = "contacted"
	NoteActionScheduled  = "scheduled"
	NoteActionReferred   = "referred"
	NoteActionMonitoring = "monitoring"
	NoteActionResolved   = "resolved"
)

const (
	ChannelInApp = "in_app"
	ChannelEmail = "email"
	ChannelSMS   = "sms"
)

func ValidAlertStatus(status string) bool {
	switch status {
	case AlertStatusNew, AlertStatusViewed, AlertStatusInProgress,
		AlertStatusResolved, AlertStatusEscalated:
		return true
	default:
		return false
	}
}

func ValidNoteAction(action string) bool {
	switch action {
	case NoteActionContacted, NoteActionScheduled, NoteActionReferred,
		NoteActionMonitoring, NoteActionResolved:
		return true
	default:
		return false
	}
}

// RiskFactor is a value object, only ever embedded in an alert.
type RiskFactor struct {
	Type        string `json:"type"`
	Severity    string `json:"severity"`
	Description string `json:"description"`
}

// AIAnalysis is the classifier verdict embedded in an alert, whichever
// classifier produced it.
type AIAnalysis struct {
	Summary         string   `json:"summary"`
	KeyPhrases      []string `json:"key_phrases,omitempty"`
	MoodTrend       string   `json:"mood_trend,omitempty"`
	Recommendations []string `json:"recommendations,omitempty"`
	Confidence      float64  `json:"confidence"`
}

type CounselorAssignment struct {
	CounselorID uuid.UUID `json:"counselor_id"`
	AssignedAt  time.Time `json:"assigned_at"`
}

type CounselorNote struct {
	CounselorID uuid.UUID `json:"counselor_id"`
	Note        string    `json:"note"`
	Action      string    `json:"action,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type NotificationRecord struct {
	Channel   string    `json:"channel"`
	SentAt    time.Time `json:"sent_at"`
	Recipient string    `json:"recipient"`
}

type RiskAlert struct {
	ID                 uuid.UUID                                `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	StudentID          uuid.UUID                                `gorm:"type:uuid;not null;index:idx_risk_alert_student_status" json:"student_id"`
	Student            *User                                    `gorm:"constraint:OnDelete:CASCADE;foreignKey:StudentID;references:ID" json:"student,omitempty"`
	RiskLevel          string                                   `gorm:"not null;index:idx_risk_alert_level_status" json:"risk_level"`
	RiskFactors        datatypes.JSONSlice[RiskFactor]          `gorm:"type:jsonb" json:"risk_factors,omitempty"`
	TriggerSource      string                                   `gorm:"not null" json:"trigger_source"`
	TriggerEntryID     *uuid.UUID                               `gorm:"type:uuid" json:"trigger_entry_id,omitempty"`
	AIAnalysis         datatypes.JSONType[AIAnalysis]           `gorm:"type:jsonb;column:ai_analysis" json:"ai_analysis"`
	Status             string                                   `gorm:"not null;default:new;index:idx_risk_alert_student_status;index:idx_risk_alert_level_status" json:"status"`
	AssignedCounselors datatypes.JSONSlice[CounselorAssignment] `gorm:"type:jsonb" json:"assigned_counselors,omitempty"`
	CounselorNotes     datatypes.JSONSlice[CounselorNote]       `gorm:"type:jsonb" json:"counselor_notes,omitempty"`
	NotificationsSent  datatypes.JSONSlice[NotificationRecord]  `gorm:"type:jsonb" json:"notifications_sent,omitempty"`
	FollowUpDate       *time.Time                               `json:"follow_up_date,omitempty"`
	ResolvedAt         *time.Time                               `json:"resolved_at,omitempty"`
	CreatedAt          time.Time                                `gorm:"not null;default:now();index" json:"created_at"`
	UpdatedAt          time.Time                                `gorm:"not null;default:now()" json:"updated_at"`
}

func (RiskAlert) TableName() string {
	return "risk_alert"
}

func (a *RiskAlert) IsAssignedCounselor(counselorID uuid.UUID) bool {
	for _, assignment := range a.AssignedCounselors {
		if assignment.CounselorID == counselorID {
			return true
		}
	}
	return false
}

// SetStatus applies a counselor-initiated status transition. The machine is
// deliberately permissive: any valid status may follow any other, including
// moves away from resolved. ResolvedAt is written once and never cleared.
func (a *RiskAlert) SetStatus(status string, followUpDate *time.Time, now time.Time) error {
	if !ValidAlertStatus(status) {
		return fmt.Errorf("invalid alert status %q", status)
	}
	a.Status = status
	if followUpDate != nil {
		a.FollowUpDate = followUpDate
	}
	if status == AlertStatusResolved && a.ResolvedAt == nil {
		t := now
		a.ResolvedAt = &t
	}
	return nil
}

// AppendNote adds a counselor note. Notes are append-only; existing entries
// are never modified or reordered.
func (a *RiskAlert) AppendNote(counselorID uuid.UUID, note string, action string, now time.Time) error {
	note = strings.TrimSpace(note)
	if note == "" {
		return fmt.Errorf("note text required")
	}
	if action != "" && !ValidNoteAction(action) {
		return fmt.Errorf("invalid note action %q", action)
	}
	a.CounselorNotes = append(a.CounselorNotes, CounselorNote{
		CounselorID: counselorID,
		Note:        note,
		Action:      action,
		CreatedAt:   now,
	})
	return nil
}

// RecordNotification appends a delivery attempt. Attempted, not confirmed.
func (a *RiskAlert) RecordNotification(channel string, recipient string, at time.Time) {
	a.NotificationsSent = append(a.NotificationsSent, NotificationRecord{
		Channel:   channel,
		SentAt:    at,
		Recipient: recipient,
	})
}
