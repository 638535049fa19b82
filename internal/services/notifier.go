package services

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	redisclient "github.com/reflecta/reflecta-backend/internal/clients/redis"
	"github.com/reflecta/reflecta-backend/internal/platform/logger"
	"github.com/reflecta/reflecta-backend/internal/platform/sendgrid"
	"github.com/reflecta/reflecta-backend/internal/platform/twilio"
	"github.com/reflecta/reflecta-backend/internal/repos"
	"github.com/reflecta/reflecta-backend/internal/risk"
	"github.com/reflecta/reflecta-backend/internal/types"
)

// NotificationService fans alert notifications out to the channels the risk
// level warrants, for every assigned counselor. Each send is attempted and
// recorded independently; transport failures are logged and never roll back
// the alert or block other sends.
type NotificationService interface {
	Dispatch(ctx context.Context, alert *types.RiskAlert, counselors []*types.User) error
}

type notificationService struct {
	db        *gorm.DB
	log       *logger.Logger
	alertRepo repos.RiskAlertRepo
	email     sendgrid.Client
	sms       twilio.Client
	bus       redisclient.AlertBus
	now       func() time.Time
}

func NewNotificationService(
	db *gorm.DB,
	log *logger.Logger,
	alertRepo repos.RiskAlertRepo,
	email sendgrid.Client,
	sms twilio.Client,
	bus redisclient.AlertBus,
) NotificationService {
	serviceLog := log.With("service", "NotificationService")
	return &notificationService{
		db:        db,
		log:       serviceLog,
		alertRepo: alertRepo,
		email:     email,
		sms:       sms,
		bus:       bus,
		now:       time.Now,
	}
}

func (ns *notificationService) Dispatch(ctx context.Context, alert *types.RiskAlert, counselors []*types.User) error {
	if alert == nil {
		return fmt.Errorf("alert required")
	}
	if len(counselors) == 0 {
		ns.log.Warn("No counselors assigned to alert, nothing to dispatch", "alert_id", alert.ID)
		return nil
	}

	channels := risk.ChannelsFor(alert.RiskLevel)

	for _, channel := range channels {
		for _, counselor := range counselors {
			recipient := ns.send(ctx, channel, alert, counselor)
			alert.RecordNotification(channel, recipient, ns.now())
		}
	}

	if err := ns.alertRepo.UpdateMutableFields(ctx, nil, alert); err != nil {
		return fmt.Errorf("persist notification records: %w", err)
	}
	return nil
}

// send attempts one delivery and returns the recipient address recorded for
// it. Failures are logged only; partial failure across the fan-out is
// expected and tolerated.
func (ns *notificationService) send(ctx context.Context, channel string, alert *types.RiskAlert, counselor *types.User) string {
	switch channel {
	case types.ChannelEmail:
		if ns.email == nil {
			ns.log.Warn("Email transport not configured", "alert_id", alert.ID)
			return counselor.Email
		}
		_, err := ns.email.Send(ctx, sendgrid.SendEmailRequest{
			To:      []sendgrid.EmailAddress{{Email: counselor.Email, Name: counselor.Name}},
			Subject: fmt.Sprintf("Reflecta risk alert (%s)", alert.RiskLevel),
			Text: fmt.Sprintf(
				"A %s risk alert requires your attention. Sign in to the counselor dashboard to review alert %s.",
				alert.RiskLevel, alert.ID,
			),
		})
		if err != nil {
			ns.log.Warn("Email notification failed", "alert_id", alert.ID, "counselor_id", counselor.ID, "error", err)
		}
		return counselor.Email

	case types.ChannelSMS:
		recipient := counselor.Phone
		if recipient == "" {
			ns.log.Warn("Counselor has no phone on file, skipping SMS send", "alert_id", alert.ID, "counselor_id", counselor.ID)
			return counselor.Email
		}
		if ns.sms == nil {
			ns.log.Warn("SMS transport not configured", "alert_id", alert.ID)
			return recipient
		}
		_, err := ns.sms.SendSMS(ctx, recipient, fmt.Sprintf(
			"Reflecta: a %s risk alert requires your immediate attention. Check the counselor dashboard.",
			alert.RiskLevel,
		))
		if err != nil {
			ns.log.Warn("SMS notification failed", "alert_id", alert.ID, "counselor_id", counselor.ID, "error", err)
		}
		return recipient

	default: // in_app
		if ns.bus != nil {
			err := ns.bus.Publish(ctx, redisclient.AlertNotice{
				AlertID:     alert.ID.String(),
				CounselorID: counselor.ID.String(),
				RiskLevel:   alert.RiskLevel,
				Status:      alert.Status,
				SentAt:      ns.now(),
			})
			if err != nil {
				ns.log.Warn("In-app notification failed", "alert_id", alert.ID, "counselor_id", counselor.ID, "error", err)
			}
		}
		return counselor.Email
	}
}
