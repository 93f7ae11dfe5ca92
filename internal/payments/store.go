package payments

import (
	"context"
	"database/sql"
	"sync"
	"time"
)

// Event is a processed checkout, recorded once per session.
type Event struct {
	EventID   string
	SessionID string
	UserID    string
	Credits   int
	CreatedAt time.Time
}

// EventStore remembers which checkout sessions have been fulfilled.
type EventStore interface {
	// Record stores ev and reports false when the session was already recorded.
	Record(ctx context.Context, ev Event) (bool, error)
}

type memoryEvents struct {
	mu       sync.Mutex
	sessions map[string]Event
}

func NewMemoryEventStore() EventStore {
	return &memoryEvents{sessions: make(map[string]Event)}
}

func (s *memoryEvents) Record(ctx context.Context, ev Event) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[ev.SessionID]; ok {
		return false, nil
	}
	s.sessions[ev.SessionID] = ev
	return true, nil
}

type pgEvents struct {
	DB *sql.DB
}

func NewPGEventStore(db *sql.DB) EventStore {
	return &pgEvents{DB: db}
}

func (s *pgEvents) Record(ctx context.Context, ev Event) (bool, error) {
	const query = `
INSERT INTO payment_events (event_id, session_id, user_id, credits, created_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT DO NOTHING`
	result, err := s.DB.ExecContext(ctx, query, ev.EventID, ev.SessionID, ev.UserID, ev.Credits, ev.CreatedAt)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
