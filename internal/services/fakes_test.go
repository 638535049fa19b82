package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/reflecta/reflecta-backend/internal/platform/apierr"
	"github.com/reflecta/reflecta-backend/internal/repos"
	"github.com/reflecta/reflecta-backend/internal/types"
)

// In-memory repo fakes. Maps keyed by ID, no tx support needed because the
// services under test pass nil transactions.

type fakeUserRepo struct {
	users map[uuid.UUID]*types.User
}

func newFakeUserRepo(users ...*types.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[uuid.UUID]*types.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) Create(ctx context.Context, tx *gorm.DB, users []*types.User) ([]*types.User, error) {
	for _, u := range users {
		r.users[u.ID] = u
	}
	return users, nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.User, error) {
	u, ok := r.users[userID]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", userID, apierr.ErrNotFound)
	}
	return u, nil
}

func (r *fakeUserRepo) GetByIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) ([]*types.User, error) {
	var out []*types.User
	for _, id := range userIDs {
		if u, ok := r.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*types.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, fmt.Errorf("user %s: %w", email, apierr.ErrNotFound)
}

func (r *fakeUserRepo) EmailExists(ctx context.Context, tx *gorm.DB, email string) (bool, error) {
	for _, u := range r.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeUserRepo) ListByRole(ctx context.Context, tx *gorm.DB, role string) ([]*types.User, error) {
	var out []*types.User
	for _, u := range r.users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out, nil
}

func (r *fakeUserRepo) UpdateRiskConsent(ctx context.Context, tx *gorm.DB, userID uuid.UUID, consent types.RiskConsent) error {
	u, ok := r.users[userID]
	if !ok {
		return apierr.ErrNotFound
	}
	u.RiskConsent = consent
	return nil
}

func (r *fakeUserRepo) UpdateAssignedCounselors(ctx context.Context, tx *gorm.DB, userID uuid.UUID, counselorIDs []uuid.UUID) error {
	u, ok := r.users[userID]
	if !ok {
		return apierr.ErrNotFound
	}
	u.AssignedCounselors = datatypes.JSONSlice[uuid.UUID](counselorIDs)
	return nil
}

type fakeJournalEntryRepo struct {
	entries map[uuid.UUID]*types.JournalEntry
}

func newFakeJournalEntryRepo(entries ...*types.JournalEntry) *fakeJournalEntryRepo {
	r := &fakeJournalEntryRepo{entries: make(map[uuid.UUID]*types.JournalEntry)}
	for _, e := range entries {
		r.entries[e.ID] = e
	}
	return r
}

func (r *fakeJournalEntryRepo) Create(ctx context.Context, tx *gorm.DB, entries []*types.JournalEntry) ([]*types.JournalEntry, error) {
	for _, e := range entries {
		r.entries[e.ID] = e
	}
	return entries, nil
}

func (r *fakeJournalEntryRepo) GetByID(ctx context.Context, tx *gorm.DB, entryID uuid.UUID) (*types.JournalEntry, error) {
	e, ok := r.entries[entryID]
	if !ok {
		return nil, fmt.Errorf("entry %s: %w", entryID, apierr.ErrNotFound)
	}
	return e, nil
}

func (r *fakeJournalEntryRepo) byUser(userID uuid.UUID) []*types.JournalEntry {
	var out []*types.JournalEntry
	for _, e := range r.entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

func (r *fakeJournalEntryRepo) ListRecent(ctx context.Context, tx *gorm.DB, userID uuid.UUID, since time.Time, limit int) ([]*types.JournalEntry, error) {
	all := r.byUser(userID)
	var out []*types.JournalEntry
	for i := len(all) - 1; i >= 0 && len(out) < limit; i-- {
		if all[i].Date.After(since) {
			out = append(out, all[i])
		}
	}
	return out, nil
}

func (r *fakeJournalEntryRepo) ListSince(ctx context.Context, tx *gorm.DB, userID uuid.UUID, since time.Time) ([]*types.JournalEntry, error) {
	var out []*types.JournalEntry
	for _, e := range r.byUser(userID) {
		if e.Date.After(since) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeJournalEntryRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit, offset int) ([]*types.JournalEntry, error) {
	all := r.byUser(userID)
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

type fakeRiskAlertRepo struct {
	alerts map[uuid.UUID]*types.RiskAlert
}

func newFakeRiskAlertRepo(alerts ...*types.RiskAlert) *fakeRiskAlertRepo {
	r := &fakeRiskAlertRepo{alerts: make(map[uuid.UUID]*types.RiskAlert)}
	for _, a := range alerts {
		r.alerts[a.ID] = a
	}
	return r
}

func (r *fakeRiskAlertRepo) Create(ctx context.Context, tx *gorm.DB, alerts []*types.RiskAlert) ([]*types.RiskAlert, error) {
	for _, a := range alerts {
		r.alerts[a.ID] = a
	}
	return alerts, nil
}

func (r *fakeRiskAlertRepo) GetByID(ctx context.Context, tx *gorm.DB, alertID uuid.UUID) (*types.RiskAlert, error) {
	a, ok := r.alerts[alertID]
	if !ok {
		return nil, fmt.Errorf("alert %s: %w", alertID, apierr.ErrNotFound)
	}
	return a, nil
}

func (r *fakeRiskAlertRepo) List(ctx context.Context, tx *gorm.DB, filter repos.AlertFilter) ([]*types.RiskAlert, int64, error) {
	var out []*types.RiskAlert
	for _, a := range r.alerts {
		if filter.Status != "" && a.Status != filter.Status {
			continue
		}
		if filter.RiskLevel != "" && a.RiskLevel != filter.RiskLevel {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, int64(len(out)), nil
}

func (r *fakeRiskAlertRepo) ListByStudent(ctx context.Context, tx *gorm.DB, studentID uuid.UUID, limit int) ([]*types.RiskAlert, error) {
	var out []*types.RiskAlert
	for _, a := range r.alerts {
		if a.StudentID == studentID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeRiskAlertRepo) Stats(ctx context.Context, tx *gorm.DB) (*repos.AlertStats, error) {
	stats := &repos.AlertStats{}
	for _, a := range r.alerts {
		stats.Total++
		if a.Status == types.AlertStatusNew {
			stats.New++
		}
		switch a.RiskLevel {
		case types.RiskLevelCritical:
			stats.Critical++
		case types.RiskLevelHigh:
			stats.High++
		case types.RiskLevelMedium:
			stats.Medium++
		case types.RiskLevelLow:
			stats.Low++
		}
	}
	return stats, nil
}

func (r *fakeRiskAlertRepo) UpdateMutableFields(ctx context.Context, tx *gorm.DB, alert *types.RiskAlert) error {
	if _, ok := r.alerts[alert.ID]; !ok {
		return apierr.ErrNotFound
	}
	r.alerts[alert.ID] = alert
	return nil
}

type fakeNotifier struct {
	dispatched []*types.RiskAlert
	recipients [][]*types.User
}

func (n *fakeNotifier) Dispatch(ctx context.Context, alert *types.RiskAlert, counselors []*types.User) error {
	n.dispatched = append(n.dispatched, alert)
	n.recipients = append(n.recipients, counselors)
	return nil
}
