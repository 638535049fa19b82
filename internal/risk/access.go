package risk

import (
	"time"

	"github.com/google/uuid"

	"github.com/reflecta/reflecta-backend/internal/types"
)

// CanAccessSubject gates counselor reads of a student's overview. Both
// conditions are evaluated at query time, never at alert-creation time:
// revoking consent blocks new overview reads immediately, while alerts that
// already exist stay readable by their assigned counselors.
func CanAccessSubject(counselorID uuid.UUID, subject *types.User) bool {
	if subject == nil || subject.Role != types.RoleStudent {
		return false
	}
	if !subject.RiskConsent.Enabled {
		return false
	}
	return subject.HasAssignedCounselor(counselorID)
}

// AlertView is the consent-filtered projection of an alert served to
// counselor-facing reads.
type AlertView struct {
	ID        uuid.UUID `json:"id"`
	RiskLevel string    `json:"risk_level"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	Summary   string    `json:"summary"`

	// moderate and above
	MoodTrend string `json:"mood_trend,omitempty"`

	// detailed only
	TriggerSource  string             `json:"trigger_source,omitempty"`
	TriggerEntryID *uuid.UUID         `json:"trigger_entry_id,omitempty"`
	RiskFactors    []types.RiskFactor `json:"risk_factors,omitempty"`
	Analysis       *types.AIAnalysis  `json:"ai_analysis,omitempty"`
}

// FilterAlertView redacts alert fields by the subject's share level. Each
// level is a strict field-wise superset of the one below it. No level ever
// exposes entries other than the one that triggered the alert.
func FilterAlertView(alert *types.RiskAlert, shareLevel string) AlertView {
	analysis := alert.AIAnalysis.Data()

	view := AlertView{
		ID:        alert.ID,
		RiskLevel: alert.RiskLevel,
		Status:    alert.Status,
		CreatedAt: alert.CreatedAt,
		Summary:   analysis.Summary,
	}

	// Unknown share levels redact like summary: ambiguity resolves toward
	// the most restrictive view.
	switch shareLevel {
	case types.ShareLevelModerate:
		view.MoodTrend = analysis.MoodTrend
	case types.ShareLevelDetailed:
		view.MoodTrend = analysis.MoodTrend
		view.TriggerSource = alert.TriggerSource
		view.TriggerEntryID = alert.TriggerEntryID
		view.RiskFactors = alert.RiskFactors
		full := analysis
		view.Analysis = &full
	}
	return view
}
