package services

import (
	"context"
	"testing"
	"time"

	"github.com/reflecta/reflecta-backend/internal/types"
)

func newNotifier(t *testing.T, alerts *fakeRiskAlertRepo) *notificationService {
	t.Helper()
	return &notificationService{
		log:       testLogger(t),
		alertRepo: alerts,
		now:       time.Now,
	}
}

func TestDispatchRecordsPerChannelPerCounselor(t *testing.T) {
	student := monitoredStudent()
	c1, c2 := testCounselor("c1"), testCounselor("c2")
	alert := alertFor(student, c1, c2)
	alert.RiskLevel = types.RiskLevelCritical
	alertRepo := newFakeRiskAlertRepo(alert)
	ns := newNotifier(t, alertRepo)

	if err := ns.Dispatch(context.Background(), alert, []*types.User{c1, c2}); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	// critical: in_app + email + sms, for each of 2 counselors.
	stored := alertRepo.alerts[alert.ID]
	if len(stored.NotificationsSent) != 6 {
		t.Fatalf("NotificationsSent = %d, want 6", len(stored.NotificationsSent))
	}
	counts := map[string]int{}
	for _, rec := range stored.NotificationsSent {
		counts[rec.Channel]++
		if rec.Recipient == "" {
			t.Fatalf("record with empty recipient: %+v", rec)
		}
	}
	for _, ch := range []string{types.ChannelInApp, types.ChannelEmail, types.ChannelSMS} {
		if counts[ch] != 2 {
			t.Fatalf("channel %q recorded %d times, want 2", ch, counts[ch])
		}
	}
}

func TestDispatchMediumUsesInAppOnly(t *testing.T) {
	student := monitoredStudent()
	counselor := testCounselor("c1")
	alert := alertFor(student, counselor)
	alert.RiskLevel = types.RiskLevelMedium
	alertRepo := newFakeRiskAlertRepo(alert)
	ns := newNotifier(t, alertRepo)

	if err := ns.Dispatch(context.Background(), alert, []*types.User{counselor}); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	stored := alertRepo.alerts[alert.ID]
	if len(stored.NotificationsSent) != 1 || stored.NotificationsSent[0].Channel != types.ChannelInApp {
		t.Fatalf("NotificationsSent = %+v, want single in_app record", stored.NotificationsSent)
	}
}

func TestDispatchNoCounselors(t *testing.T) {
	student := monitoredStudent()
	alert := alertFor(student)
	alertRepo := newFakeRiskAlertRepo(alert)
	ns := newNotifier(t, alertRepo)

	if err := ns.Dispatch(context.Background(), alert, nil); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if len(alertRepo.alerts[alert.ID].NotificationsSent) != 0 {
		t.Fatal("records written with no counselors")
	}
}
