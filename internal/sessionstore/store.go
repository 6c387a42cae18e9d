// Package sessionstore persists navigator sessions and their agent logs to
// Postgres and fans stage changes out to the message bus.
package sessionstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/muhammadolammi/careernavigator/internal/agentlog"
	"github.com/muhammadolammi/careernavigator/internal/database"
	"github.com/muhammadolammi/careernavigator/internal/navigator"
	"github.com/muhammadolammi/careernavigator/internal/retry"
)

var ErrNotFound = errors.New("navigator session not found")

type Store struct {
	q *database.Queries
}

func New(db database.DBTX) *Store {
	return &Store{q: database.New(db)}
}

// SaveSnapshot upserts the session row, retrying transient failures.
func (s *Store) SaveSnapshot(ctx context.Context, sessionID string, snap navigator.Snapshot) error {
	params, err := encodeSnapshot(sessionID, snap)
	if err != nil {
		return err
	}
	_, err = retry.Do(ctx, 3, func(ctx context.Context) (database.NavigatorSession, error) {
		return s.q.UpsertNavigatorSession(ctx, params)
	})
	if err != nil {
		return fmt.Errorf("error saving navigator session %s: %w", sessionID, err)
	}
	return nil
}

func (s *Store) AppendLog(ctx context.Context, sessionID string, e agentlog.Entry) error {
	params, err := encodeEntry(sessionID, e)
	if err != nil {
		return err
	}
	return s.q.CreateAgentLog(ctx, params)
}

// Load restores a session's state and its full agent log.
func (s *Store) Load(ctx context.Context, sessionID string) (navigator.State, []agentlog.Entry, error) {
	id, err := uuid.Parse(sessionID)
	if err != nil {
		return navigator.State{}, nil, ErrNotFound
	}

	row, err := s.q.GetNavigatorSession(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return navigator.State{}, nil, ErrNotFound
	}
	if err != nil {
		return navigator.State{}, nil, fmt.Errorf("error getting navigator session %s: %w", sessionID, err)
	}
	state, err := decodeSession(row)
	if err != nil {
		return navigator.State{}, nil, err
	}

	rows, err := s.q.GetAgentLogsBySession(ctx, id)
	if err != nil {
		return navigator.State{}, nil, fmt.Errorf("error getting agent logs for %s: %w", sessionID, err)
	}
	return state, entriesOf(rows), nil
}

type ResumeUpload struct {
	ID        uuid.UUID
	SessionID string
	Filename  string
	Mime      string
	Size      int64
	Provider  string
	ObjectKey string
	URL       string
}

func (s *Store) RecordResume(ctx context.Context, r ResumeUpload) (database.Resume, error) {
	sid, err := uuid.Parse(r.SessionID)
	if err != nil {
		return database.Resume{}, fmt.Errorf("invalid session id %q: %w", r.SessionID, err)
	}
	return s.q.CreateResume(ctx, database.CreateResumeParams{
		ID:               r.ID,
		OriginalFilename: r.Filename,
		Mime:             r.Mime,
		SizeBytes:        r.Size,
		StorageProvider:  r.Provider,
		ObjectKey:        r.ObjectKey,
		StorageUrl:       r.URL,
		UploadStatus:     "uploaded",
		SessionID:        sid,
	})
}

// Resume returns one of the session's uploads, or ErrNotFound.
func (s *Store) Resume(ctx context.Context, sessionID string, id uuid.UUID) (database.Resume, error) {
	sid, err := uuid.Parse(sessionID)
	if err != nil {
		return database.Resume{}, ErrNotFound
	}
	r, err := s.q.GetResume(ctx, database.GetResumeParams{ID: id, SessionID: sid})
	if errors.Is(err, sql.ErrNoRows) {
		return database.Resume{}, ErrNotFound
	}
	return r, err
}

func (s *Store) Resumes(ctx context.Context, sessionID string) ([]database.Resume, error) {
	sid, err := uuid.Parse(sessionID)
	if err != nil {
		return nil, ErrNotFound
	}
	return s.q.GetResumesBySession(ctx, sid)
}

func encodeSnapshot(sessionID string, snap navigator.Snapshot) (database.UpsertNavigatorSessionParams, error) {
	id, err := uuid.Parse(sessionID)
	if err != nil {
		return database.UpsertNavigatorSessionParams{}, fmt.Errorf("invalid session id %q: %w", sessionID, err)
	}
	state, err := json.Marshal(snap)
	if err != nil {
		return database.UpsertNavigatorSessionParams{}, fmt.Errorf("encode snapshot: %w", err)
	}
	// The state travels as text: lib/pq would send []byte as bytea.
	return database.UpsertNavigatorSessionParams{ID: id, Stage: string(snap.Stage), State: string(state)}, nil
}

// encodeEntry stores timestamps in UTC so they restore to the same instant
// whatever the host zone.
func encodeEntry(sessionID string, e agentlog.Entry) (database.CreateAgentLogParams, error) {
	id, err := uuid.Parse(sessionID)
	if err != nil {
		return database.CreateAgentLogParams{}, fmt.Errorf("invalid session id %q: %w", sessionID, err)
	}
	return database.CreateAgentLogParams{
		ID:        uuid.New(),
		SessionID: id,
		Agent:     e.Agent,
		Message:   e.Message,
		CreatedAt: e.Timestamp.UTC(),
	}, nil
}

func decodeSession(row database.NavigatorSession) (navigator.State, error) {
	var snap navigator.Snapshot
	if err := json.Unmarshal(row.State, &snap); err != nil {
		return navigator.State{}, fmt.Errorf("decode snapshot of %s: %w", row.ID, err)
	}
	state, err := snap.Restore()
	if err != nil {
		return navigator.State{}, fmt.Errorf("restore %s: %w", row.ID, err)
	}
	return state, nil
}

func entriesOf(rows []database.AgentLog) []agentlog.Entry {
	entries := make([]agentlog.Entry, len(rows))
	for i, r := range rows {
		entries[i] = agentlog.Entry{Agent: r.Agent, Message: r.Message, Timestamp: r.CreatedAt}
	}
	return entries
}
