// Package storage records plugin invocations. The sqlite subpackage
// persists them; memory keeps them for the life of the process.
package storage

import (
	"github.com/tjfontaine/react-app-plugin/internal/core/domain"
	"github.com/tjfontaine/react-app-plugin/internal/core/ports"
)

// Re-export storage interfaces and types from core.
type (
	HistoryStore      = ports.HistoryStore
	ListOptions       = ports.ListOptions
	Invocation        = domain.Invocation
	InvocationSummary = domain.InvocationSummary
)

// DefaultListLimit caps ListInvocations when no limit is given.
const DefaultListLimit = 100

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = ports.ErrNotFound
