package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/reflecta/reflecta-backend/internal/platform/apierr"
	"github.com/reflecta/reflecta-backend/internal/platform/logger"
	"github.com/reflecta/reflecta-backend/internal/risk"
	"github.com/reflecta/reflecta-backend/internal/types"
)

type countingAI struct {
	calls int
}

func (c *countingAI) GenerateJSON(ctx context.Context, system string, user string) (string, error) {
	c.calls++
	return "", errors.New("model unavailable")
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return log
}

func testCounselor(name string) *types.User {
	return &types.User{
		ID:    uuid.New(),
		Email: name + "@school.example",
		Name:  name,
		Role:  types.RoleCounselor,
	}
}

func monitoredStudent() *types.User {
	now := time.Now()
	return &types.User{
		ID:    uuid.New(),
		Email: "student@school.example",
		Name:  "Student",
		Role:  types.RoleStudent,
		RiskConsent: types.RiskConsent{
			Enabled:     true,
			ShareLevel:  types.ShareLevelSummary,
			ConsentDate: &now,
		},
	}
}

func newRiskService(t *testing.T, ai risk.AIClient, users *fakeUserRepo, entries *fakeJournalEntryRepo, alerts *fakeRiskAlertRepo, notifier *fakeNotifier) *riskDetectionService {
	t.Helper()
	log := testLogger(t)
	return &riskDetectionService{
		log:        log,
		userRepo:   users,
		entryRepo:  entries,
		alertRepo:  alerts,
		classifier: risk.NewClassifier(log, ai),
		notifier:   notifier,
		now:        time.Now,
	}
}

func TestAnalyzeJournalEntryCreatesAlert(t *testing.T) {
	student := monitoredStudent()
	c1, c2 := testCounselor("c1"), testCounselor("c2")
	entry := &types.JournalEntry{
		ID:      uuid.New(),
		UserID:  student.ID,
		Content: "I can't do this anymore, I want to end it all",
		Mood:    types.MoodSad,
		Date:    time.Now(),
	}

	users := newFakeUserRepo(student, c1, c2)
	entries := newFakeJournalEntryRepo(entry)
	alerts := newFakeRiskAlertRepo()
	notifier := &fakeNotifier{}
	svc := newRiskService(t, nil, users, entries, alerts, notifier)

	alert, err := svc.AnalyzeJournalEntry(context.Background(), student.ID, entry.ID)
	if err != nil {
		t.Fatalf("AnalyzeJournalEntry: %v", err)
	}
	if alert == nil {
		t.Fatal("expected an alert")
	}
	if alert.RiskLevel != types.RiskLevelCritical {
		t.Fatalf("RiskLevel = %q, want critical", alert.RiskLevel)
	}
	if alert.TriggerSource != types.TriggerSourceJournal {
		t.Fatalf("TriggerSource = %q", alert.TriggerSource)
	}
	if alert.TriggerEntryID == nil || *alert.TriggerEntryID != entry.ID {
		t.Fatalf("TriggerEntryID = %v, want %s", alert.TriggerEntryID, entry.ID)
	}
	if alert.Status != types.AlertStatusNew {
		t.Fatalf("Status = %q, want new", alert.Status)
	}

	// Broadcast assignment covers every counselor, never the student.
	if len(alert.AssignedCounselors) != 2 {
		t.Fatalf("AssignedCounselors = %+v, want 2", alert.AssignedCounselors)
	}
	if !alert.IsAssignedCounselor(c1.ID) || !alert.IsAssignedCounselor(c2.ID) {
		t.Fatalf("counselors missing from assignment: %+v", alert.AssignedCounselors)
	}

	if len(alerts.alerts) != 1 {
		t.Fatalf("persisted alerts = %d, want 1", len(alerts.alerts))
	}
	if len(notifier.dispatched) != 1 || notifier.dispatched[0].ID != alert.ID {
		t.Fatalf("notifier.dispatched = %+v", notifier.dispatched)
	}
	if len(notifier.recipients[0]) != 2 {
		t.Fatalf("dispatch recipients = %d, want 2", len(notifier.recipients[0]))
	}
}

func TestAnalyzeJournalEntryNoRisk(t *testing.T) {
	student := monitoredStudent()
	entry := &types.JournalEntry{
		ID:      uuid.New(),
		UserID:  student.ID,
		Content: "great practice today, coach was proud of me",
		Mood:    types.MoodHappy,
		Date:    time.Now(),
	}

	alerts := newFakeRiskAlertRepo()
	notifier := &fakeNotifier{}
	svc := newRiskService(t, nil, newFakeUserRepo(student, testCounselor("c1")), newFakeJournalEntryRepo(entry), alerts, notifier)

	alert, err := svc.AnalyzeJournalEntry(context.Background(), student.ID, entry.ID)
	if err != nil {
		t.Fatalf("AnalyzeJournalEntry: %v", err)
	}
	if alert != nil {
		t.Fatalf("alert = %+v, want nil", alert)
	}
	if len(alerts.alerts) != 0 || len(notifier.dispatched) != 0 {
		t.Fatal("no-risk analysis must not persist or notify")
	}
}

// Disabled consent is a silent no-op and the entry content never reaches
// the classifier.
func TestAnalyzeJournalEntryConsentDisabled(t *testing.T) {
	student := monitoredStudent()
	student.RiskConsent.Enabled = false
	entry := &types.JournalEntry{
		ID:      uuid.New(),
		UserID:  student.ID,
		Content: "I want to end it all",
		Mood:    types.MoodSad,
		Date:    time.Now(),
	}

	ai := &countingAI{}
	alerts := newFakeRiskAlertRepo()
	svc := newRiskService(t, ai, newFakeUserRepo(student), newFakeJournalEntryRepo(entry), alerts, &fakeNotifier{})

	alert, err := svc.AnalyzeJournalEntry(context.Background(), student.ID, entry.ID)
	if err != nil {
		t.Fatalf("AnalyzeJournalEntry: %v", err)
	}
	if alert != nil {
		t.Fatalf("alert = %+v, want nil", alert)
	}
	if ai.calls != 0 {
		t.Fatalf("classifier called %d times with consent disabled", ai.calls)
	}
	if len(alerts.alerts) != 0 {
		t.Fatal("alert persisted with consent disabled")
	}
}

func TestAnalyzeJournalEntryWrongOwner(t *testing.T) {
	student := monitoredStudent()
	other := monitoredStudent()
	other.ID = uuid.New()
	entry := &types.JournalEntry{
		ID:      uuid.New(),
		UserID:  other.ID,
		Content: "private thoughts",
		Mood:    types.MoodNeutral,
		Date:    time.Now(),
	}

	svc := newRiskService(t, nil, newFakeUserRepo(student, other), newFakeJournalEntryRepo(entry), newFakeRiskAlertRepo(), &fakeNotifier{})

	_, err := svc.AnalyzeJournalEntry(context.Background(), student.ID, entry.ID)
	if !errors.Is(err, apierr.ErrNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
}

func entriesWithMoods(studentID uuid.UUID, moods []string) []*types.JournalEntry {
	out := make([]*types.JournalEntry, len(moods))
	base := time.Now().AddDate(0, 0, -len(moods))
	for i, mood := range moods {
		out[i] = &types.JournalEntry{
			ID:      uuid.New(),
			UserID:  studentID,
			Content: "entry",
			Mood:    mood,
			Date:    base.AddDate(0, 0, i),
		}
	}
	return out
}

func TestAnalyzeMoodPatternCreatesAlert(t *testing.T) {
	student := monitoredStudent()
	counselor := testCounselor("c1")
	moods := []string{
		types.MoodHappy, types.MoodHappy, types.MoodHappy, types.MoodHappy,
		types.MoodHappy, types.MoodHappy, types.MoodHappy,
		types.MoodSad, types.MoodSad, types.MoodSad, types.MoodSad,
		types.MoodSad, types.MoodSad, types.MoodSad,
	}

	entries := newFakeJournalEntryRepo(entriesWithMoods(student.ID, moods)...)
	alerts := newFakeRiskAlertRepo()
	notifier := &fakeNotifier{}
	svc := newRiskService(t, nil, newFakeUserRepo(student, counselor), entries, alerts, notifier)

	alert, err := svc.AnalyzeMoodPattern(context.Background(), student.ID)
	if err != nil {
		t.Fatalf("AnalyzeMoodPattern: %v", err)
	}
	if alert == nil {
		t.Fatal("expected an alert")
	}
	if alert.TriggerSource != types.TriggerSourceMoodPattern {
		t.Fatalf("TriggerSource = %q", alert.TriggerSource)
	}
	if alert.TriggerEntryID != nil {
		t.Fatalf("TriggerEntryID = %v, want nil for pattern alerts", alert.TriggerEntryID)
	}
	if alert.RiskLevel != types.RiskLevelHigh {
		t.Fatalf("RiskLevel = %q, want high", alert.RiskLevel)
	}
	if len(alert.RiskFactors) != 1 || alert.RiskFactors[0].Type != types.FactorMoodDecline {
		t.Fatalf("RiskFactors = %+v", alert.RiskFactors)
	}
	if len(notifier.dispatched) != 1 {
		t.Fatalf("notifier.dispatched = %d, want 1", len(notifier.dispatched))
	}
}

func TestAnalyzeMoodPatternInsufficientEntries(t *testing.T) {
	student := monitoredStudent()
	entries := newFakeJournalEntryRepo(entriesWithMoods(student.ID, []string{
		types.MoodSad, types.MoodSad, types.MoodSad, types.MoodSad,
	})...)
	alerts := newFakeRiskAlertRepo()
	svc := newRiskService(t, nil, newFakeUserRepo(student), entries, alerts, &fakeNotifier{})

	alert, err := svc.AnalyzeMoodPattern(context.Background(), student.ID)
	if err != nil {
		t.Fatalf("AnalyzeMoodPattern: %v", err)
	}
	if alert != nil {
		t.Fatalf("alert = %+v, want nil with fewer than 5 entries", alert)
	}
	if len(alerts.alerts) != 0 {
		t.Fatal("alert persisted for insufficient data")
	}
}

func TestAnalyzeMoodPatternStableMood(t *testing.T) {
	student := monitoredStudent()
	moods := make([]string, 12)
	for i := range moods {
		moods[i] = types.MoodCalm
	}
	svc := newRiskService(t, nil, newFakeUserRepo(student), newFakeJournalEntryRepo(entriesWithMoods(student.ID, moods)...), newFakeRiskAlertRepo(), &fakeNotifier{})

	alert, err := svc.AnalyzeMoodPattern(context.Background(), student.ID)
	if err != nil {
		t.Fatalf("AnalyzeMoodPattern: %v", err)
	}
	if alert != nil {
		t.Fatalf("alert = %+v, want nil for stable mood", alert)
	}
}

func TestAnalyzeUsesRecentHistory(t *testing.T) {
	student := monitoredStudent()
	entry := &types.JournalEntry{
		ID:      uuid.New(),
		UserID:  student.ID,
		Content: "everything feels hopeless",
		Mood:    types.MoodSad,
		Date:    time.Now(),
	}
	old := &types.JournalEntry{
		ID:      uuid.New(),
		UserID:  student.ID,
		Content: "old entry",
		Mood:    types.MoodHappy,
		Date:    time.Now().AddDate(0, 0, -30),
		Tags:    datatypes.JSONSlice[string]{"old"},
	}

	alerts := newFakeRiskAlertRepo()
	svc := newRiskService(t, nil, newFakeUserRepo(student, testCounselor("c1")), newFakeJournalEntryRepo(entry, old), alerts, &fakeNotifier{})

	alert, err := svc.AnalyzeJournalEntry(context.Background(), student.ID, entry.ID)
	if err != nil {
		t.Fatalf("AnalyzeJournalEntry: %v", err)
	}
	// One high keyword plus sad mood trips the fallback's high branch.
	if alert == nil || alert.RiskLevel != types.RiskLevelHigh {
		t.Fatalf("alert = %+v, want high", alert)
	}
}
