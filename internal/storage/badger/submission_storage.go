package badger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/ternarybob/redmine-mcp/internal/interfaces"
	"github.com/ternarybob/redmine-mcp/internal/models"
)

// SubmissionStorage implements the SubmissionStorage interface for Badger
type SubmissionStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewSubmissionStorage creates a new SubmissionStorage instance
func NewSubmissionStorage(db *BadgerDB, logger arbor.ILogger) *SubmissionStorage {
	return &SubmissionStorage{
		db:     db,
		logger: logger,
	}
}

// Record stores a submission, assigning an id and timestamp when missing
func (s *SubmissionStorage) Record(ctx context.Context, submission *models.Submission) error {
	if submission.ID == "" {
		submission.ID = uuid.New().String()
	}
	if submission.CreatedAt.IsZero() {
		submission.CreatedAt = time.Now()
	}

	if err := s.db.Store().Upsert(submission.ID, submission); err != nil {
		return fmt.Errorf("failed to record submission: %w", err)
	}

	s.logger.Debug().
		Str("submission_id", submission.ID).
		Str("operation", submission.Operation).
		Str("issue_id", submission.IssueID).
		Bool("success", submission.Success).
		Msg("Submission recorded")

	return nil
}

func (s *SubmissionStorage) Get(ctx context.Context, id string) (*models.Submission, error) {
	var submission models.Submission
	err := s.db.Store().Get(id, &submission)
	if errors.Is(err, badgerhold.ErrNotFound) {
		return nil, interfaces.ErrSubmissionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}
	return &submission, nil
}

// ListRecent returns the newest submissions first. An empty issueID matches all.
func (s *SubmissionStorage) ListRecent(ctx context.Context, issueID string, limit int) ([]models.Submission, error) {
	query := badgerhold.Where("ID").Ne("")
	if issueID != "" {
		query = query.And("IssueID").Eq(issueID)
	}
	query = query.SortBy("CreatedAt").Reverse()
	if limit > 0 {
		query = query.Limit(limit)
	}

	var submissions []models.Submission
	if err := s.db.Store().Find(&submissions, query); err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	return submissions, nil
}

func (s *SubmissionStorage) Close() error {
	return s.db.Close()
}

var _ interfaces.SubmissionStorage = (*SubmissionStorage)(nil)
