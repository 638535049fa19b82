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
	"github.com/reflecta/reflecta-backend/internal/types"
)

// PrivacySettings is the student-facing view of their monitoring consent.
type PrivacySettings struct {
	RiskMonitoringEnabled bool       `json:"risk_monitoring_enabled"`
	ShareLevel            string     `json:"share_level"`
	ConsentDate           *time.Time `json:"consent_date,omitempty"`
}

// CounselorSummary is the directory entry students see when choosing who
// to reach out to. No contact channel details beyond email.
type CounselorSummary struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

type UserService interface {
	GetPrivacySettings(ctx context.Context, userID uuid.UUID) (*PrivacySettings, error)
	UpdatePrivacySettings(ctx context.Context, userID uuid.UUID, enabled bool, shareLevel string) (*PrivacySettings, error)
	ListCounselors(ctx context.Context) ([]CounselorSummary, error)
	AssignCounselors(ctx context.Context, studentID uuid.UUID, counselorIDs []uuid.UUID) error
}

type userService struct {
	db       *gorm.DB
	log      *logger.Logger
	userRepo repos.UserRepo
	now      func() time.Time
}

func NewUserService(db *gorm.DB, log *logger.Logger, userRepo repos.UserRepo) UserService {
	serviceLog := log.With("service", "UserService")
	return &userService{
		db:       db,
		log:      serviceLog,
		userRepo: userRepo,
		now:      time.Now,
	}
}

func (us *userService) GetPrivacySettings(ctx context.Context, userID uuid.UUID) (*PrivacySettings, error) {
	user, err := us.userRepo.GetByID(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("fetch user: %w", err)
	}
	if user.Role != types.RoleStudent {
		return nil, fmt.Errorf("privacy settings are student-only: %w", apierr.ErrForbidden)
	}
	return &PrivacySettings{
		RiskMonitoringEnabled: user.RiskConsent.Enabled,
		ShareLevel:            user.RiskConsent.ShareLevel,
		ConsentDate:           user.RiskConsent.ConsentDate,
	}, nil
}

func (us *userService) UpdatePrivacySettings(ctx context.Context, userID uuid.UUID, enabled bool, shareLevel string) (*PrivacySettings, error) {
	if !types.ValidShareLevel(shareLevel) {
		return nil, fmt.Errorf("unknown share level %q: %w", shareLevel, apierr.ErrInvalidArgument)
	}

	user, err := us.userRepo.GetByID(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("fetch user: %w", err)
	}
	if user.Role != types.RoleStudent {
		return nil, fmt.Errorf("privacy settings are student-only: %w", apierr.ErrForbidden)
	}

	consent := types.RiskConsent{
		Enabled:     enabled,
		ShareLevel:  shareLevel,
		ConsentDate: user.RiskConsent.ConsentDate,
	}
	// Consent date marks the most recent opt-in. Disabling keeps the old
	// date around as a record of when monitoring was last granted.
	if enabled && !user.RiskConsent.Enabled {
		now := us.now()
		consent.ConsentDate = &now
	}

	if err := us.userRepo.UpdateRiskConsent(ctx, nil, userID, consent); err != nil {
		return nil, fmt.Errorf("update consent: %w", err)
	}
	us.log.Info("Privacy settings updated", "user_id", userID, "enabled", enabled, "share_level", shareLevel)

	return &PrivacySettings{
		RiskMonitoringEnabled: consent.Enabled,
		ShareLevel:            consent.ShareLevel,
		ConsentDate:           consent.ConsentDate,
	}, nil
}

func (us *userService) ListCounselors(ctx context.Context) ([]CounselorSummary, error) {
	counselors, err := us.userRepo.ListByRole(ctx, nil, types.RoleCounselor)
	if err != nil {
		return nil, fmt.Errorf("list counselors: %w", err)
	}
	out := make([]CounselorSummary, 0, len(counselors))
	for _, c := range counselors {
		out = append(out, CounselorSummary{ID: c.ID, Name: c.Name, Email: c.Email})
	}
	return out, nil
}

func (us *userService) AssignCounselors(ctx context.Context, studentID uuid.UUID, counselorIDs []uuid.UUID) error {
	student, err := us.userRepo.GetByID(ctx, nil, studentID)
	if err != nil {
		return fmt.Errorf("fetch student: %w", err)
	}
	if student.Role != types.RoleStudent {
		return fmt.Errorf("assignments apply to students only: %w", apierr.ErrInvalidArgument)
	}

	counselors, err := us.userRepo.GetByIDs(ctx, nil, counselorIDs)
	if err != nil {
		return fmt.Errorf("fetch counselors: %w", err)
	}
	found := make(map[uuid.UUID]bool, len(counselors))
	for _, c := range counselors {
		if c.Role != types.RoleCounselor {
			return fmt.Errorf("user %s is not a counselor: %w", c.ID, apierr.ErrInvalidArgument)
		}
		found[c.ID] = true
	}
	for _, id := range counselorIDs {
		if !found[id] {
			return fmt.Errorf("counselor %s: %w", id, apierr.ErrNotFound)
		}
	}

	return us.userRepo.UpdateAssignedCounselors(ctx, nil, studentID, counselorIDs)
}
