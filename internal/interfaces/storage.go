package interfaces

import (
	"context"
	"errors"

	"github.com/ternarybob/redmine-mcp/internal/models"
)

// SubmissionStorage - interface for the create/update submission journal
type SubmissionStorage interface {
	Record(ctx context.Context, submission *models.Submission) error
	Get(ctx context.Context, id string) (*models.Submission, error)

	// ListRecent returns the newest submissions first. An empty issueID matches all.
	ListRecent(ctx context.Context, issueID string, limit int) ([]models.Submission, error)

	Close() error
}

// ErrSubmissionNotFound is returned by Get for unknown ids
var ErrSubmissionNotFound = errors.New("submission not found")
