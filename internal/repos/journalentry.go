package repos

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/reflecta/reflecta-backend/internal/platform/apierr"
	"github.com/reflecta/reflecta-backend/internal/platform/logger"
	"github.com/reflecta/reflecta-backend/internal/types"
)

type JournalEntryRepo interface {
	Create(ctx context.Context, tx *gorm.DB, entries []*types.JournalEntry) ([]*types.JournalEntry, error)
	GetByID(ctx context.Context, tx *gorm.DB, entryID uuid.UUID) (*types.JournalEntry, error)
	// ListRecent returns entries for a user since the given time,
	// most-recent-first, capped at limit (0 means no cap).
	ListRecent(ctx context.Context, tx *gorm.DB, userID uuid.UUID, since time.Time, limit int) ([]*types.JournalEntry, error)
	// ListSince returns entries for a user since the given time,
	// oldest-first, for window computations.
	ListSince(ctx context.Context, tx *gorm.DB, userID uuid.UUID, since time.Time) ([]*types.JournalEntry, error)
	ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit, offset int) ([]*types.JournalEntry, error)
}

type journalEntryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewJournalEntryRepo(db *gorm.DB, baseLog *logger.Logger) JournalEntryRepo {
	repoLog := baseLog.With("repo", "JournalEntryRepo")
	return &journalEntryRepo{db: db, log: repoLog}
}

func (jr *journalEntryRepo) Create(ctx context.Context, tx *gorm.DB, entries []*types.JournalEntry) ([]*types.JournalEntry, error) {
	transaction := tx
	if transaction == nil {
		transaction = jr.db
	}

	if len(entries) == 0 {
		return []*types.JournalEntry{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (jr *journalEntryRepo) GetByID(ctx context.Context, tx *gorm.DB, entryID uuid.UUID) (*types.JournalEntry, error) {
	transaction := tx
	if transaction == nil {
		transaction = jr.db
	}

	var result types.JournalEntry
	if err := transaction.WithContext(ctx).
		Where("id = ?", entryID).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.ErrNotFound
		}
		return nil, err
	}
	return &result, nil
}

func (jr *journalEntryRepo) ListRecent(ctx context.Context, tx *gorm.DB, userID uuid.UUID, since time.Time, limit int) ([]*types.JournalEntry, error) {
	transaction := tx
	if transaction == nil {
		transaction = jr.db
	}

	query := transaction.WithContext(ctx).
		Where("user_id = ? AND date >= ?", userID, since).
		Order("date DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var results []*types.JournalEntry
	if err := query.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (jr *journalEntryRepo) ListSince(ctx context.Context, tx *gorm.DB, userID uuid.UUID, since time.Time) ([]*types.JournalEntry, error) {
	transaction := tx
	if transaction == nil {
		transaction = jr.db
	}

	var results []*types.JournalEntry
	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND date >= ?", userID, since).
		Order("date ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (jr *journalEntryRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit, offset int) ([]*types.JournalEntry, error) {
	transaction := tx
	if transaction == nil {
		transaction = jr.db
	}

	query := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var results []*types.JournalEntry
	if err := query.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
