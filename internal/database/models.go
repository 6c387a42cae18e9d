package database

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type AgentLog struct {
	ID        uuid.UUID
	Seq       int64
	SessionID uuid.UUID
	Agent     string
	Message   string
	CreatedAt time.Time
}

type NavigatorSession struct {
	ID        uuid.UUID
	Stage     string
	State     json.RawMessage
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Resume struct {
	ID               uuid.UUID
	OriginalFilename string
	Mime             string
	SizeBytes        int64
	StorageProvider  string
	ObjectKey        string
	StorageUrl       string
	UploadStatus     string
	CreatedAt        time.Time
	SessionID        uuid.UUID
}
