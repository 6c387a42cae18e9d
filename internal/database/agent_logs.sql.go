package database

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const createAgentLog = `-- name: CreateAgentLog :exec
INSERT INTO agent_logs (id, session_id, agent, message, created_at)
VALUES ($1, $2, $3, $4, $5)
`

type CreateAgentLogParams struct {
	ID        uuid.UUID
	SessionID uuid.UUID
	Agent     string
	Message   string
	CreatedAt time.Time
}

func (q *Queries) CreateAgentLog(ctx context.Context, arg CreateAgentLogParams) error {
	_, err := q.db.ExecContext(ctx, createAgentLog,
		arg.ID,
		arg.SessionID,
		arg.Agent,
		arg.Message,
		arg.CreatedAt,
	)
	return err
}

const getAgentLogsBySession = `-- name: GetAgentLogsBySession :many
SELECT id, seq, session_id, agent, message, created_at FROM agent_logs WHERE session_id=$1 ORDER BY seq
`

func (q *Queries) GetAgentLogsBySession(ctx context.Context, sessionID uuid.UUID) ([]AgentLog, error) {
	rows, err := q.db.QueryContext(ctx, getAgentLogsBySession, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []AgentLog
	for rows.Next() {
		var i AgentLog
		if err := rows.Scan(
			&i.ID,
			&i.Seq,
			&i.SessionID,
			&i.Agent,
			&i.Message,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
