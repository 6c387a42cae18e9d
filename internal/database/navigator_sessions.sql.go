package database

import (
	"context"

	"github.com/google/uuid"
)

const getNavigatorSession = `-- name: GetNavigatorSession :one
SELECT id, stage, state, created_at, updated_at FROM navigator_sessions WHERE id=$1
`

func (q *Queries) GetNavigatorSession(ctx context.Context, id uuid.UUID) (NavigatorSession, error) {
	row := q.db.QueryRowContext(ctx, getNavigatorSession, id)
	var i NavigatorSession
	err := row.Scan(
		&i.ID,
		&i.Stage,
		&i.State,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const upsertNavigatorSession = `-- name: UpsertNavigatorSession :one
INSERT INTO navigator_sessions (id, stage, state)
VALUES ($1, $2, $3::text::jsonb)
ON CONFLICT (id) DO UPDATE
SET stage=EXCLUDED.stage, state=EXCLUDED.state, updated_at=NOW()
RETURNING id, stage, state, created_at, updated_at
`

type UpsertNavigatorSessionParams struct {
	ID    uuid.UUID
	Stage string
	State string
}

func (q *Queries) UpsertNavigatorSession(ctx context.Context, arg UpsertNavigatorSessionParams) (NavigatorSession, error) {
	row := q.db.QueryRowContext(ctx, upsertNavigatorSession, arg.ID, arg.Stage, arg.State)
	var i NavigatorSession
	err := row.Scan(
		&i.ID,
		&i.Stage,
		&i.State,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}
