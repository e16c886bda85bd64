package store

import (
	"context"
	"errors"

	"github.com/offboardhq/offboard/internal/model"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// SessionStore defines the contract for workflow session tracking. The
// orchestrator owns every mutation; reads return independent copies so
// API readers never observe a phase mid-write. Result slots on a stored
// session are replaced wholesale, never mutated through, which keeps the
// shallow copies handed out by GetByID and List race-free.
type SessionStore interface {
	Create(ctx context.Context, session *model.WorkflowSession) error
	GetByID(ctx context.Context, sessionID string) (*model.WorkflowSession, error)
	Update(ctx context.Context, session *model.WorkflowSession) error
	List(ctx context.Context) ([]model.WorkflowSession, error)
}
