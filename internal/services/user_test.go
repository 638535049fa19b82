package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/reflecta/reflecta-backend/internal/platform/apierr"
	"github.com/reflecta/reflecta-backend/internal/types"
)

func newUserService(t *testing.T, users *fakeUserRepo) *userService {
	t.Helper()
	return &userService{
		log:      testLogger(t),
		userRepo: users,
		now:      time.Now,
	}
}

func TestUpdatePrivacySettingsConsentDate(t *testing.T) {
	student := monitoredStudent()
	student.RiskConsent.Enabled = false
	student.RiskConsent.ConsentDate = nil
	svc := newUserService(t, newFakeUserRepo(student))
	ctx := context.Background()

	// Enabling stamps a consent date.
	settings, err := svc.UpdatePrivacySettings(ctx, student.ID, true, types.ShareLevelModerate)
	if err != nil {
		t.Fatalf("UpdatePrivacySettings: %v", err)
	}
	if !settings.RiskMonitoringEnabled || settings.ShareLevel != types.ShareLevelModerate {
		t.Fatalf("settings = %+v", settings)
	}
	if settings.ConsentDate == nil {
		t.Fatal("ConsentDate not set on enable")
	}
	firstConsent := *settings.ConsentDate

	// Disabling preserves the last consent date.
	settings, err = svc.UpdatePrivacySettings(ctx, student.ID, false, types.ShareLevelModerate)
	if err != nil {
		t.Fatalf("UpdatePrivacySettings: %v", err)
	}
	if settings.RiskMonitoringEnabled {
		t.Fatal("still enabled after disable")
	}
	if settings.ConsentDate == nil || !settings.ConsentDate.Equal(firstConsent) {
		t.Fatalf("ConsentDate = %v after disable, want %v", settings.ConsentDate, firstConsent)
	}

	// Changing share level while enabled does not re-stamp the date.
	if _, err = svc.UpdatePrivacySettings(ctx, student.ID, true, types.ShareLevelDetailed); err != nil {
		t.Fatalf("UpdatePrivacySettings: %v", err)
	}
	settings, err = svc.UpdatePrivacySettings(ctx, student.ID, true, types.ShareLevelSummary)
	if err != nil {
		t.Fatalf("UpdatePrivacySettings: %v", err)
	}
	if settings.ShareLevel != types.ShareLevelSummary {
		t.Fatalf("ShareLevel = %q", settings.ShareLevel)
	}
}

func TestUpdatePrivacySettingsValidation(t *testing.T) {
	student := monitoredStudent()
	counselor := testCounselor("c1")
	svc := newUserService(t, newFakeUserRepo(student, counselor))
	ctx := context.Background()

	if _, err := svc.UpdatePrivacySettings(ctx, student.ID, true, "full"); !errors.Is(err, apierr.ErrInvalidArgument) {
		t.Fatalf("err = %v, want invalid argument for unknown share level", err)
	}
	if _, err := svc.UpdatePrivacySettings(ctx, counselor.ID, true, types.ShareLevelSummary); !errors.Is(err, apierr.ErrForbidden) {
		t.Fatalf("err = %v, want forbidden for non-student", err)
	}
	if _, err := svc.GetPrivacySettings(ctx, counselor.ID); !errors.Is(err, apierr.ErrForbidden) {
		t.Fatalf("err = %v, want forbidden for non-student", err)
	}
}

func TestListCounselors(t *testing.T) {
	student := monitoredStudent()
	c1, c2 := testCounselor("c1"), testCounselor("c2")
	svc := newUserService(t, newFakeUserRepo(student, c1, c2))

	out, err := svc.ListCounselors(context.Background())
	if err != nil {
		t.Fatalf("ListCounselors: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("counselors = %+v, want 2", out)
	}
	for _, c := range out {
		if c.Name == "" || c.Email == "" {
			t.Fatalf("incomplete summary: %+v", c)
		}
	}
}

func TestAssignCounselors(t *testing.T) {
	student := monitoredStudent()
	c1 := testCounselor("c1")
	users := newFakeUserRepo(student, c1)
	svc := newUserService(t, users)
	ctx := context.Background()

	if err := svc.AssignCounselors(ctx, student.ID, []uuid.UUID{c1.ID}); err != nil {
		t.Fatalf("AssignCounselors: %v", err)
	}
	if !users.users[student.ID].HasAssignedCounselor(c1.ID) {
		t.Fatal("assignment not persisted")
	}

	if err := svc.AssignCounselors(ctx, student.ID, []uuid.UUID{uuid.New()}); !errors.Is(err, apierr.ErrNotFound) {
		t.Fatalf("err = %v, want not found for unknown counselor", err)
	}
	if err := svc.AssignCounselors(ctx, student.ID, []uuid.UUID{student.ID}); err == nil {
		t.Fatal("assigning a non-counselor should fail")
	}
}
