package main

import (
	"context"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/muhammadolammi/careernavigator/internal/content"
	"github.com/muhammadolammi/careernavigator/internal/database"
	"github.com/muhammadolammi/careernavigator/internal/navigator"
	"github.com/muhammadolammi/careernavigator/internal/sessionstore"
	"go.uber.org/zap"
)

// ObjectStore keeps uploaded resume files.
type ObjectStore interface {
	Upload(ctx context.Context, key, mime string, data []byte) error
	Download(ctx context.Context, key string) ([]byte, error)
	URL(key string) string
}

// ResumeStore records uploads so they can be extracted again later.
type ResumeStore interface {
	RecordResume(ctx context.Context, r sessionstore.ResumeUpload) (database.Resume, error)
	Resume(ctx context.Context, sessionID string, id uuid.UUID) (database.Resume, error)
	Resumes(ctx context.Context, sessionID string) ([]database.Resume, error)
}

type ServerConfig struct {
	Registry *Registry
	Content  *content.Content
	Cookies  sessions.Store
	Objects  ObjectStore
	Resumes  ResumeStore
	Logger   *zap.Logger
	// MaxUpload bounds resume uploads, in bytes.
	MaxUpload int64
	// Draining is cancelled when the server starts shutting down; open long
	// polls return at once.
	Draining context.Context
}

type nameRequest struct {
	Name string `json:"name"`
}

type ageRequest struct {
	Age *int `json:"age"`
}

type quizRequest struct {
	Answers []string `json:"answers"`
}

type profileRequest struct {
	LinkedinText string `json:"linkedinText"`
	GithubInfo   string `json:"githubInfo"`
	ResumeText   string `json:"resumeText"`
}

func (r profileRequest) sources() navigator.Sources {
	return navigator.Sources{
		LinkedinText: r.LinkedinText,
		GithubInfo:   r.GithubInfo,
		ResumeText:   r.ResumeText,
	}
}

type roleRequest struct {
	Role string `json:"role"`
}

type pacingRequest struct {
	SelfPaced bool `json:"selfPaced"`
}

type resumeResponse struct {
	ID       string `json:"id,omitempty"`
	Filename string `json:"filename"`
	Mime     string `json:"mime"`
	Text     string `json:"text"`
	Stored   bool   `json:"stored"`
}

type resumeItem struct {
	ID        string `json:"id"`
	Filename  string `json:"filename"`
	Mime      string `json:"mime"`
	SizeBytes int64  `json:"sizeBytes"`
	URL       string `json:"url"`
	CreatedAt string `json:"createdAt"`
}

type logItem struct {
	Agent     string `json:"agent"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

type errorResponse struct {
	Error string `json:"error"`
}
