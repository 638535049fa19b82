package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/reflecta/reflecta-backend/internal/platform/apierr"
	"github.com/reflecta/reflecta-backend/internal/platform/logger"
	"github.com/reflecta/reflecta-backend/internal/repos"
	"github.com/reflecta/reflecta-backend/internal/risk"
	"github.com/reflecta/reflecta-backend/internal/types"
)

const (
	entryContextDays  = 7
	entryContextCap   = 10
	patternWindowDays = 30
)

// RiskDetectionService runs the two analyzers. Both return a nil alert for
// the defined no-op cases (consent disabled, no risk, insufficient data);
// only storage failures surface as errors.
type RiskDetectionService interface {
	AnalyzeJournalEntry(ctx context.Context, studentID uuid.UUID, entryID uuid.UUID) (*types.RiskAlert, error)
	AnalyzeMoodPattern(ctx context.Context, studentID uuid.UUID) (*types.RiskAlert, error)
}

type riskDetectionService struct {
	db         *gorm.DB
	log        *logger.Logger
	userRepo   repos.UserRepo
	entryRepo  repos.JournalEntryRepo
	alertRepo  repos.RiskAlertRepo
	classifier *risk.Classifier
	notifier   NotificationService
	now        func() time.Time
}

func NewRiskDetectionService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	entryRepo repos.JournalEntryRepo,
	alertRepo repos.RiskAlertRepo,
	classifier *risk.Classifier,
	notifier NotificationService,
) RiskDetectionService {
	serviceLog := log.With("service", "RiskDetectionService")
	return &riskDetectionService{
		db:         db,
		log:        serviceLog,
		userRepo:   userRepo,
		entryRepo:  entryRepo,
		alertRepo:  alertRepo,
		classifier: classifier,
		notifier:   notifier,
		now:        time.Now,
	}
}

func (rs *riskDetectionService) AnalyzeJournalEntry(ctx context.Context, studentID uuid.UUID, entryID uuid.UUID) (*types.RiskAlert, error) {
	entry, err := rs.entryRepo.GetByID(ctx, nil, entryID)
	if err != nil {
		return nil, fmt.Errorf("fetch journal entry: %w", err)
	}
	if entry.UserID != studentID {
		return nil, fmt.Errorf("journal entry %s: %w", entryID, apierr.ErrNotFound)
	}

	// Consent is authoritative and read fresh on every call.
	student, err := rs.userRepo.GetByID(ctx, nil, studentID)
	if err != nil {
		return nil, fmt.Errorf("fetch student: %w", err)
	}
	if !student.RiskConsent.Enabled {
		return nil, nil
	}

	since := rs.now().AddDate(0, 0, -entryContextDays)
	recent, err := rs.entryRepo.ListRecent(ctx, nil, studentID, since, entryContextCap)
	if err != nil {
		return nil, fmt.Errorf("fetch recent entries: %w", err)
	}

	history := risk.HistorySummary(derefEntries(recent))
	verdict := rs.classifier.Classify(ctx, entry.Content, entry.Mood, history)
	if verdict.None() {
		return nil, nil
	}

	triggerID := entry.ID
	alert := &types.RiskAlert{
		StudentID:      studentID,
		RiskLevel:      verdict.RiskLevel,
		RiskFactors:    datatypes.JSONSlice[types.RiskFactor](verdict.RiskFactors),
		TriggerSource:  types.TriggerSourceJournal,
		TriggerEntryID: &triggerID,
		AIAnalysis:     datatypes.NewJSONType(verdict.Analysis()),
		Status:         types.AlertStatusNew,
	}

	return rs.materializeAlert(ctx, alert)
}

func (rs *riskDetectionService) AnalyzeMoodPattern(ctx context.Context, studentID uuid.UUID) (*types.RiskAlert, error) {
	student, err := rs.userRepo.GetByID(ctx, nil, studentID)
	if err != nil {
		return nil, fmt.Errorf("fetch student: %w", err)
	}
	if !student.RiskConsent.Enabled {
		return nil, nil
	}

	since := rs.now().AddDate(0, 0, -patternWindowDays)
	entries, err := rs.entryRepo.ListSince(ctx, nil, studentID, since)
	if err != nil {
		return nil, fmt.Errorf("fetch entries: %w", err)
	}

	moods := make([]string, 0, len(entries))
	for _, e := range entries {
		moods = append(moods, e.Mood)
	}

	result := risk.AnalyzeMoodWindow(moods)
	if result == nil {
		return nil, nil
	}

	alert := &types.RiskAlert{
		StudentID:     studentID,
		RiskLevel:     result.RiskLevel,
		RiskFactors:   datatypes.JSONSlice[types.RiskFactor]{result.Factor()},
		TriggerSource: types.TriggerSourceMoodPattern,
		AIAnalysis:    datatypes.NewJSONType(result.Analysis()),
		Status:        types.AlertStatusNew,
	}

	return rs.materializeAlert(ctx, alert)
}

// materializeAlert snapshots the current counselor roster onto the alert
// (broadcast assignment), commits it in one write, and dispatches
// notifications. Notification failures never unwind the created alert.
func (rs *riskDetectionService) materializeAlert(ctx context.Context, alert *types.RiskAlert) (*types.RiskAlert, error) {
	counselors, err := rs.userRepo.ListByRole(ctx, nil, types.RoleCounselor)
	if err != nil {
		return nil, fmt.Errorf("fetch counselor roster: %w", err)
	}

	now := rs.now()
	assignments := make([]types.CounselorAssignment, 0, len(counselors))
	for _, c := range counselors {
		assignments = append(assignments, types.CounselorAssignment{
			CounselorID: c.ID,
			AssignedAt:  now,
		})
	}
	alert.ID = uuid.New()
	alert.AssignedCounselors = datatypes.JSONSlice[types.CounselorAssignment](assignments)

	created, err := rs.alertRepo.Create(ctx, nil, []*types.RiskAlert{alert})
	if err != nil {
		return nil, fmt.Errorf("create risk alert: %w", err)
	}

	if err := rs.notifier.Dispatch(ctx, created[0], counselors); err != nil {
		rs.log.Warn("Notification dispatch failed", "alert_id", created[0].ID, "error", err)
	}

	return created[0], nil
}

func derefEntries(entries []*types.JournalEntry) []types.JournalEntry {
	out := make([]types.JournalEntry, 0, len(entries))
	for _, e := range entries {
		if e != nil {
			out = append(out, *e)
		}
	}
	return out
}
