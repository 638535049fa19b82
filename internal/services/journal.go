package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/reflecta/reflecta-backend/internal/platform/apierr"
	"github.com/reflecta/reflecta-backend/internal/platform/logger"
	"github.com/reflecta/reflecta-backend/internal/repos"
	"github.com/reflecta/reflecta-backend/internal/types"
)

const journalPageCap = 50

// CreateEntryInput carries the writable fields of a journal entry. Date
// defaults to now when the client omits it (backdating is allowed).
type CreateEntryInput struct {
	Title   string     `json:"title"`
	Content string     `json:"content"`
	Mood    string     `json:"mood"`
	Tags    []string   `json:"tags"`
	Date    *time.Time `json:"date"`
}

type JournalService interface {
	CreateEntry(ctx context.Context, userID uuid.UUID, input CreateEntryInput) (*types.JournalEntry, error)
	GetEntry(ctx context.Context, userID uuid.UUID, entryID uuid.UUID) (*types.JournalEntry, error)
	ListEntries(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*types.JournalEntry, error)
}

type journalService struct {
	db        *gorm.DB
	log       *logger.Logger
	entryRepo repos.JournalEntryRepo
	now       func() time.Time
}

func NewJournalService(db *gorm.DB, log *logger.Logger, entryRepo repos.JournalEntryRepo) JournalService {
	serviceLog := log.With("service", "JournalService")
	return &journalService{
		db:        db,
		log:       serviceLog,
		entryRepo: entryRepo,
		now:       time.Now,
	}
}

func (js *journalService) CreateEntry(ctx context.Context, userID uuid.UUID, input CreateEntryInput) (*types.JournalEntry, error) {
	if strings.TrimSpace(input.Content) == "" {
		return nil, fmt.Errorf("content required: %w", apierr.ErrInvalidArgument)
	}
	if !types.ValidMood(input.Mood) {
		return nil, fmt.Errorf("unknown mood %q: %w", input.Mood, apierr.ErrInvalidArgument)
	}

	date := js.now()
	if input.Date != nil {
		date = *input.Date
	}

	entry := &types.JournalEntry{
		ID:      uuid.New(),
		UserID:  userID,
		Title:   strings.TrimSpace(input.Title),
		Content: input.Content,
		Mood:    input.Mood,
		Tags:    datatypes.JSONSlice[string](input.Tags),
		Date:    date,
	}

	created, err := js.entryRepo.Create(ctx, nil, []*types.JournalEntry{entry})
	if err != nil {
		return nil, fmt.Errorf("create journal entry: %w", err)
	}
	return created[0], nil
}

func (js *journalService) GetEntry(ctx context.Context, userID uuid.UUID, entryID uuid.UUID) (*types.JournalEntry, error) {
	entry, err := js.entryRepo.GetByID(ctx, nil, entryID)
	if err != nil {
		return nil, fmt.Errorf("fetch journal entry: %w", err)
	}
	if entry.UserID != userID {
		return nil, fmt.Errorf("journal entry %s: %w", entryID, apierr.ErrNotFound)
	}
	return entry, nil
}

func (js *journalService) ListEntries(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*types.JournalEntry, error) {
	if limit <= 0 || limit > journalPageCap {
		limit = journalPageCap
	}
	if offset < 0 {
		offset = 0
	}
	return js.entryRepo.ListByUser(ctx, nil, userID, limit, offset)
}
