package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/reflecta/reflecta-backend/internal/platform/apierr"
	"github.com/reflecta/reflecta-backend/internal/platform/logger"
	"github.com/reflecta/reflecta-backend/internal/repos"
	"github.com/reflecta/reflecta-backend/internal/risk"
	"github.com/reflecta/reflecta-backend/internal/types"
)

const studentOverviewAlertCap = 20

// AlertList is the counselor dashboard payload: share-level-filtered alert
// views alongside queue-wide stats.
type AlertList struct {
	Alerts []risk.AlertView  `json:"alerts"`
	Total  int64             `json:"total"`
	Stats  *repos.AlertStats `json:"stats"`
}

// StudentOverview aggregates a student's alert history for an assigned
// counselor. Mood trend data rides along only at moderate share or above.
type StudentOverview struct {
	StudentID   uuid.UUID        `json:"student_id"`
	StudentName string           `json:"student_name"`
	ShareLevel  string           `json:"share_level"`
	Alerts      []risk.AlertView `json:"alerts"`
	MoodTrends  []string         `json:"mood_trends,omitempty"`
}

type AlertService interface {
	List(ctx context.Context, counselorID uuid.UUID, filter repos.AlertFilter) (*AlertList, error)
	Get(ctx context.Context, counselorID uuid.UUID, alertID uuid.UUID) (*risk.AlertView, error)
	SetStatus(ctx context.Context, counselorID uuid.UUID, alertID uuid.UUID, status string, followUpDate *time.Time) (*risk.AlertView, error)
	AppendNote(ctx context.Context, counselorID uuid.UUID, alertID uuid.UUID, text string, action string) (*risk.AlertView, error)
	GetStudentOverview(ctx context.Context, counselorID uuid.UUID, studentID uuid.UUID) (*StudentOverview, error)
}

type alertService struct {
	db        *gorm.DB
	log       *logger.Logger
	userRepo  repos.UserRepo
	alertRepo repos.RiskAlertRepo
	now       func() time.Time
}

func NewAlertService(db *gorm.DB, log *logger.Logger, userRepo repos.UserRepo, alertRepo repos.RiskAlertRepo) AlertService {
	serviceLog := log.With("service", "AlertService")
	return &alertService{
		db:        db,
		log:       serviceLog,
		userRepo:  userRepo,
		alertRepo: alertRepo,
		now:       time.Now,
	}
}

// shareLevelFor reads the subject's current share level. Filtering always
// uses the live setting, so a student tightening their share level narrows
// every later read of alerts that already exist.
func (as *alertService) shareLevelFor(ctx context.Context, studentID uuid.UUID) (string, error) {
	student, err := as.userRepo.GetByID(ctx, nil, studentID)
	if err != nil {
		return "", fmt.Errorf("fetch alert subject: %w", err)
	}
	return student.RiskConsent.ShareLevel, nil
}

func (as *alertService) List(ctx context.Context, counselorID uuid.UUID, filter repos.AlertFilter) (*AlertList, error) {
	alerts, total, err := as.alertRepo.List(ctx, nil, filter)
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	stats, err := as.alertRepo.Stats(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("alert stats: %w", err)
	}

	// One share-level lookup per distinct student on the page.
	levels := make(map[uuid.UUID]string)
	views := make([]risk.AlertView, 0, len(alerts))
	for _, alert := range alerts {
		if !alert.IsAssignedCounselor(counselorID) {
			continue
		}
		level, ok := levels[alert.StudentID]
		if !ok {
			level, err = as.shareLevelFor(ctx, alert.StudentID)
			if err != nil {
				return nil, err
			}
			levels[alert.StudentID] = level
		}
		views = append(views, risk.FilterAlertView(alert, level))
	}

	return &AlertList{Alerts: views, Total: total, Stats: stats}, nil
}

func (as *alertService) Get(ctx context.Context, counselorID uuid.UUID, alertID uuid.UUID) (*risk.AlertView, error) {
	alert, err := as.authorizedAlert(ctx, counselorID, alertID)
	if err != nil {
		return nil, err
	}
	level, err := as.shareLevelFor(ctx, alert.StudentID)
	if err != nil {
		return nil, err
	}
	view := risk.FilterAlertView(alert, level)
	return &view, nil
}

func (as *alertService) SetStatus(ctx context.Context, counselorID uuid.UUID, alertID uuid.UUID, status string, followUpDate *time.Time) (*risk.AlertView, error) {
	alert, err := as.authorizedAlert(ctx, counselorID, alertID)
	if err != nil {
		return nil, err
	}
	if err := alert.SetStatus(status, followUpDate, as.now()); err != nil {
		return nil, fmt.Errorf("%v: %w", err, apierr.ErrInvalidArgument)
	}
	if err := as.alertRepo.UpdateMutableFields(ctx, nil, alert); err != nil {
		return nil, fmt.Errorf("update alert status: %w", err)
	}
	as.log.Info("Alert status updated", "alert_id", alertID, "counselor_id", counselorID, "status", status)

	level, err := as.shareLevelFor(ctx, alert.StudentID)
	if err != nil {
		return nil, err
	}
	view := risk.FilterAlertView(alert, level)
	return &view, nil
}

func (as *alertService) AppendNote(ctx context.Context, counselorID uuid.UUID, alertID uuid.UUID, text string, action string) (*risk.AlertView, error) {
	alert, err := as.authorizedAlert(ctx, counselorID, alertID)
	if err != nil {
		return nil, err
	}
	if err := alert.AppendNote(counselorID, text, action, as.now()); err != nil {
		return nil, fmt.Errorf("%v: %w", err, apierr.ErrInvalidArgument)
	}
	if err := as.alertRepo.UpdateMutableFields(ctx, nil, alert); err != nil {
		return nil, fmt.Errorf("append alert note: %w", err)
	}
	as.log.Info("Alert note added", "alert_id", alertID, "counselor_id", counselorID, "action", action)

	level, err := as.shareLevelFor(ctx, alert.StudentID)
	if err != nil {
		return nil, err
	}
	view := risk.FilterAlertView(alert, level)
	return &view, nil
}

func (as *alertService) GetStudentOverview(ctx context.Context, counselorID uuid.UUID, studentID uuid.UUID) (*StudentOverview, error) {
	student, err := as.userRepo.GetByID(ctx, nil, studentID)
	if err != nil {
		return nil, fmt.Errorf("fetch student: %w", err)
	}
	if !risk.CanAccessSubject(counselorID, student) {
		return nil, fmt.Errorf("student %s: %w", studentID, apierr.ErrForbidden)
	}

	alerts, err := as.alertRepo.ListByStudent(ctx, nil, studentID, studentOverviewAlertCap)
	if err != nil {
		return nil, fmt.Errorf("list student alerts: %w", err)
	}

	level := student.RiskConsent.ShareLevel
	overview := &StudentOverview{
		StudentID:   studentID,
		StudentName: student.Name,
		ShareLevel:  level,
		Alerts:      make([]risk.AlertView, 0, len(alerts)),
	}
	for _, alert := range alerts {
		view := risk.FilterAlertView(alert, level)
		overview.Alerts = append(overview.Alerts, view)
		if view.MoodTrend != "" {
			overview.MoodTrends = append(overview.MoodTrends, view.MoodTrend)
		}
	}
	return overview, nil
}

// authorizedAlert loads an alert and verifies the caller sits on its
// assignment snapshot. Unassigned counselors get not-found rather than
// forbidden so alert IDs leak nothing.
func (as *alertService) authorizedAlert(ctx context.Context, counselorID uuid.UUID, alertID uuid.UUID) (*types.RiskAlert, error) {
	alert, err := as.alertRepo.GetByID(ctx, nil, alertID)
	if err != nil {
		return nil, fmt.Errorf("fetch alert: %w", err)
	}
	if !alert.IsAssignedCounselor(counselorID) {
		return nil, fmt.Errorf("alert %s: %w", alertID, apierr.ErrNotFound)
	}
	return alert, nil
}
