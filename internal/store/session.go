package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/offboardhq/offboard/internal/model"
)

// memorySessionStore keeps workflow sessions in a mutex-guarded map.
// Sessions are never evicted within process lifetime; durable persistence
// is an explicit non-goal of the workflow registry.
type memorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]model.WorkflowSession
}

func NewMemorySessionStore() SessionStore {
	return &memorySessionStore{
		sessions: make(map[string]model.WorkflowSession),
	}
}

var _ SessionStore = &memorySessionStore{}

func (s *memorySessionStore) Create(_ context.Context, session *model.WorkflowSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[session.SessionID]; exists {
		return fmt.Errorf("session %s already registered", session.SessionID)
	}
	s.sessions[session.SessionID] = *session
	return nil
}

func (s *memorySessionStore) GetByID(_ context.Context, sessionID string) (*model.WorkflowSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	return &session, nil
}

func (s *memorySessionStore) Update(_ context.Context, session *model.WorkflowSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[session.SessionID]; !ok {
		return ErrNotFound
	}
	s.sessions[session.SessionID] = *session
	return nil
}

// List returns every registered session ordered by trigger time, session
// id breaking ties for deterministic output.
func (s *memorySessionStore) List(_ context.Context) ([]model.WorkflowSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := make([]model.WorkflowSession, 0, len(s.sessions))
	for _, session := range s.sessions {
		sessions = append(sessions, session)
	}

	sort.Slice(sessions, func(i, j int) bool {
		ti, tj := sessions[i].Progress.TriggeredAt, sessions[j].Progress.TriggeredAt
		if ti.Equal(tj) {
			return sessions[i].SessionID < sessions[j].SessionID
		}
		return ti.Before(tj)
	})

	return sessions, nil
}
