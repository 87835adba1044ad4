package ports

import (
	"context"
	"errors"

	"github.com/tjfontaine/react-app-plugin/internal/core/domain"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// HistoryStore records plugin invocations and the tasks they resolved.
type HistoryStore interface {
	// RecordInvocation saves inv and its tasks. CreatedAt is set when zero.
	RecordInvocation(ctx context.Context, inv *domain.Invocation) error

	// GetInvocation returns the invocation with its tasks, or an error
	// wrapping ErrNotFound.
	GetInvocation(ctx context.Context, id string) (*domain.Invocation, error)

	// ListInvocations returns summaries, newest first.
	ListInvocations(ctx context.Context, opts ListOptions) ([]*domain.InvocationSummary, error)

	Close() error
}

// ListOptions filters and pages ListInvocations.
type ListOptions struct {
	Command domain.Command
	RootDir string
	Limit   int
	Offset  int
}
