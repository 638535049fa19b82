package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/reflecta/reflecta-backend/internal/platform/apierr"
	"github.com/reflecta/reflecta-backend/internal/platform/logger"
	"github.com/reflecta/reflecta-backend/internal/types"
)

type AlertFilter struct {
	Status    string
	RiskLevel string
	Limit     int
	Offset    int
}

// AlertStats is the aggregate block served with the counselor dashboard
// list: total plus per-bucket counts over all alerts.
type AlertStats struct {
	Total    int64 `json:"total"`
	New      int64 `json:"new"`
	Critical int64 `json:"critical"`
	High     int64 `json:"high"`
	Medium   int64 `json:"medium"`
	Low      int64 `json:"low"`
}

type RiskAlertRepo interface {
	Create(ctx context.Context, tx *gorm.DB, alerts []*types.RiskAlert) ([]*types.RiskAlert, error)
	GetByID(ctx context.Context, tx *gorm.DB, alertID uuid.UUID) (*types.RiskAlert, error)
	List(ctx context.Context, tx *gorm.DB, filter AlertFilter) ([]*types.RiskAlert, int64, error)
	ListByStudent(ctx context.Context, tx *gorm.DB, studentID uuid.UUID, limit int) ([]*types.RiskAlert, error)
	Stats(ctx context.Context, tx *gorm.DB) (*AlertStats, error)
	// UpdateMutableFields persists the counselor-mutable fields of an
	// alert: status, notes, notifications, follow-up and resolution times.
	UpdateMutableFields(ctx context.Context, tx *gorm.DB, alert *types.RiskAlert) error
}

type riskAlertRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRiskAlertRepo(db *gorm.DB, baseLog *logger.Logger) RiskAlertRepo {
	repoLog := baseLog.With("repo", "RiskAlertRepo")
	return &riskAlertRepo{db: db, log: repoLog}
}

func (rr *riskAlertRepo) Create(ctx context.Context, tx *gorm.DB, alerts []*types.RiskAlert) ([]*types.RiskAlert, error) {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}

	if len(alerts) == 0 {
		return []*types.RiskAlert{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&alerts).Error; err != nil {
		return nil, err
	}
	return alerts, nil
}

func (rr *riskAlertRepo) GetByID(ctx context.Context, tx *gorm.DB, alertID uuid.UUID) (*types.RiskAlert, error) {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}

	var result types.RiskAlert
	if err := transaction.WithContext(ctx).
		Where("id = ?", alertID).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.ErrNotFound
		}
		return nil, err
	}
	return &result, nil
}

func (rr *riskAlertRepo) List(ctx context.Context, tx *gorm.DB, filter AlertFilter) ([]*types.RiskAlert, int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}

	query := transaction.WithContext(ctx).Model(&types.RiskAlert{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.RiskLevel != "" {
		query = query.Where("risk_level = ?", filter.RiskLevel)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("created_at DESC")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var results []*types.RiskAlert
	if err := query.Find(&results).Error; err != nil {
		return nil, 0, err
	}
	return results, total, nil
}

func (rr *riskAlertRepo) ListByStudent(ctx context.Context, tx *gorm.DB, studentID uuid.UUID, limit int) ([]*types.RiskAlert, error) {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}

	query := transaction.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var results []*types.RiskAlert
	if err := query.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (rr *riskAlertRepo) Stats(ctx context.Context, tx *gorm.DB) (*AlertStats, error) {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}

	var stats AlertStats
	row := transaction.WithContext(ctx).
		Model(&types.RiskAlert{}).
		Select(`
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE status = 'new') AS new,
			COUNT(*) FILTER (WHERE risk_level = 'critical') AS critical,
			COUNT(*) FILTER (WHERE risk_level = 'high') AS high,
			COUNT(*) FILTER (WHERE risk_level = 'medium') AS medium,
			COUNT(*) FILTER (WHERE risk_level = 'low') AS low
		`).
		Row()
	if err := row.Scan(&stats.Total, &stats.New, &stats.Critical, &stats.High, &stats.Medium, &stats.Low); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (rr *riskAlertRepo) UpdateMutableFields(ctx context.Context, tx *gorm.DB, alert *types.RiskAlert) error {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}

	return transaction.WithContext(ctx).
		Model(&types.RiskAlert{}).
		Where("id = ?", alert.ID).
		Updates(map[string]interface{}{
			"status":             alert.Status,
			"counselor_notes":    alert.CounselorNotes,
			"notifications_sent": alert.NotificationsSent,
			"follow_up_date":     alert.FollowUpDate,
			"resolved_at":        alert.ResolvedAt,
		}).Error
}
