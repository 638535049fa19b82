package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	RoleStudent   = "student"
	RoleCounselor = "counselor"
	RoleAdmin     = "admin"
)

const (
	ShareLevelSummary  = "summary"
	ShareLevelModerate = "moderate"
	ShareLevelDetailed = "detailed"
)

func ValidShareLevel(level string) bool {
	switch level {
	case ShareLevelSummary, ShareLevelModerate, ShareLevelDetailed:
		return true
	default:
		return false
	}
}

// RiskConsent is the student-controlled risk monitoring setting. It gates
// whether the analyzers run at all and how much alert detail counselors see.
type RiskConsent struct {
	Enabled     bool       `gorm:"column:risk_monitoring_enabled;not null;default:false" json:"enabled"`
	ShareLevel  string     `gorm:"column:share_level;not null;default:summary" json:"share_level"`
	ConsentDate *time.Time `gorm:"column:consent_date" json:"consent_date,omitempty"`
}

type User struct {
	ID               uuid.UUID                     `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Email            string                        `gorm:"uniqueIndex;not null;column:email" json:"email"`
	Password         string                        `gorm:"not null;column:password" json:"-"`
	Name             string                        `gorm:"not null;column:name" json:"name"`
	Role             string                        `gorm:"not null;default:student;index;column:role" json:"role"`
	Phone            string                        `gorm:"column:phone" json:"phone,omitempty"`
	StudentProfile   datatypes.JSON                `gorm:"type:jsonb;column:student_profile" json:"student_profile,omitempty"`
	CounselorProfile datatypes.JSON                `gorm:"type:jsonb;column:counselor_profile" json:"counselor_profile,omitempty"`
	RiskConsent      RiskConsent                   `gorm:"embedded" json:"risk_consent"`
	// Counselors the student has chosen for their care team. Snapshot-free:
	// read live for access checks, never for existing alert assignments.
	AssignedCounselors datatypes.JSONSlice[uuid.UUID] `gorm:"type:jsonb;column:assigned_counselors" json:"assigned_counselors,omitempty"`
	CreatedAt          time.Time                      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt          time.Time                      `gorm:"not null;default:now()" json:"updated_at"`
}

func (User) TableName() string {
	return "user"
}

func (u *User) HasAssignedCounselor(counselorID uuid.UUID) bool {
	for _, id := range u.AssignedCounselors {
		if id == counselorID {
			return true
		}
	}
	return false
}
