package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/muhammadolammi/careernavigator/internal/extract"
	"github.com/muhammadolammi/careernavigator/internal/navigator"
	"github.com/muhammadolammi/careernavigator/internal/sessionstore"
	"github.com/muhammadolammi/careernavigator/internal/storage"
	"go.uber.org/zap"
)

const (
	cookieName    = "navigator"
	cookieKey     = "id"
	sessionHeader = "X-Session-ID"
	controllerKey = "controller"

	// longPollTimeout bounds GET /api/view?wait=true. It stays below
	// shutdownTimeout.
	longPollTimeout = 15 * time.Second
)

// withSession resolves the navigator session of a request: the X-Session-ID
// header first, then the cookie. A request with neither starts a new one.
func (cfg *ServerConfig) withSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		if id := c.Request().Header.Get(sessionHeader); id != "" {
			ctrl, err := cfg.Registry.Get(ctx, id)
			if err != nil {
				return respondError(c, cfg.Logger, err)
			}
			return cfg.serve(c, ctrl, next)
		}

		// A cookie that fails to decode yields a fresh session value.
		sess, _ := cfg.Cookies.Get(c.Request(), cookieName)
		if id, ok := sess.Values[cookieKey].(string); ok {
			ctrl, err := cfg.Registry.Get(ctx, id)
			if err == nil {
				return cfg.serve(c, ctrl, next)
			}
			if !errors.Is(err, sessionstore.ErrNotFound) {
				return respondError(c, cfg.Logger, err)
			}
		}

		ctrl := cfg.Registry.Create()
		sess.Values[cookieKey] = ctrl.ID()
		if err := sess.Save(c.Request(), c.Response()); err != nil {
			return respondError(c, cfg.Logger, fmt.Errorf("save session cookie: %w", err))
		}
		return cfg.serve(c, ctrl, next)
	}
}

func (cfg *ServerConfig) serve(c echo.Context, ctrl *navigator.Controller, next echo.HandlerFunc) error {
	c.Set(controllerKey, ctrl)
	c.Response().Header().Set(sessionHeader, ctrl.ID())
	return next(c)
}

func controllerOf(c echo.Context) *navigator.Controller {
	return c.Get(controllerKey).(*navigator.Controller)
}

func (cfg *ServerConfig) view(ctrl *navigator.Controller) View {
	return buildView(ctrl.ID(), ctrl.State(), ctrl.Log(), cfg.Content)
}

// dispatch applies ev and answers with the resulting view; 202 while a
// collaborator call is running.
func (cfg *ServerConfig) dispatch(c echo.Context, ev navigator.Event) error {
	ctrl := controllerOf(c)
	if err := ctrl.Dispatch(ev); err != nil {
		return respondError(c, cfg.Logger, err)
	}
	v := cfg.view(ctrl)
	if v.Busy {
		return c.JSON(http.StatusAccepted, v)
	}
	return c.JSON(http.StatusOK, v)
}

func bindError(err error) error {
	return fmt.Errorf("%w: malformed request body: %v", navigator.ErrValidation, err)
}

func (cfg *ServerConfig) handlerGetView(c echo.Context) error {
	ctrl := controllerOf(c)
	if c.QueryParam("wait") == "true" {
		ctx, cancel := context.WithTimeout(c.Request().Context(), longPollTimeout)
		defer cancel()
		if cfg.Draining != nil {
			stop := context.AfterFunc(cfg.Draining, cancel)
			defer stop()
		}
		// A timeout just returns the still-busy view.
		_ = ctrl.Wait(ctx)
	}
	return c.JSON(http.StatusOK, cfg.view(ctrl))
}

func (cfg *ServerConfig) handlerSubmitName(c echo.Context) error {
	req := nameRequest{}
	if err := c.Bind(&req); err != nil {
		return respondError(c, cfg.Logger, bindError(err))
	}
	return cfg.dispatch(c, navigator.SubmitName{Name: req.Name})
}

func (cfg *ServerConfig) handlerSubmitAge(c echo.Context) error {
	req := ageRequest{}
	if err := c.Bind(&req); err != nil {
		return respondError(c, cfg.Logger, bindError(err))
	}
	if req.Age == nil {
		return respondError(c, cfg.Logger, fmt.Errorf("%w: age is required", navigator.ErrValidation))
	}
	return cfg.dispatch(c, navigator.SubmitAge{Age: *req.Age})
}

func (cfg *ServerConfig) handlerSubmitQuiz(c echo.Context) error {
	req := quizRequest{}
	if err := c.Bind(&req); err != nil {
		return respondError(c, cfg.Logger, bindError(err))
	}
	return cfg.dispatch(c, navigator.SubmitQuiz{Answers: req.Answers})
}

func (cfg *ServerConfig) handlerSubmitProfile(c echo.Context) error {
	req := profileRequest{}
	if err := c.Bind(&req); err != nil {
		return respondError(c, cfg.Logger, bindError(err))
	}
	return cfg.dispatch(c, navigator.SubmitProfile{Sources: req.sources()})
}

func (cfg *ServerConfig) handlerSubmitRole(c echo.Context) error {
	req := roleRequest{}
	if err := c.Bind(&req); err != nil {
		return respondError(c, cfg.Logger, bindError(err))
	}
	return cfg.dispatch(c, navigator.SubmitRole{Role: req.Role})
}

func (cfg *ServerConfig) handlerToggleTask(c echo.Context) error {
	day, err := strconv.Atoi(c.Param("day"))
	if err != nil {
		return respondError(c, cfg.Logger, fmt.Errorf("%w: day must be a number", navigator.ErrValidation))
	}
	return cfg.dispatch(c, navigator.ToggleTask{Day: day})
}

func (cfg *ServerConfig) handlerSetPacing(c echo.Context) error {
	req := pacingRequest{}
	if err := c.Bind(&req); err != nil {
		return respondError(c, cfg.Logger, bindError(err))
	}
	return cfg.dispatch(c, navigator.SetPacing{SelfPaced: req.SelfPaced})
}

func (cfg *ServerConfig) handlerToggleArchitecture(c echo.Context) error {
	return cfg.dispatch(c, navigator.ToggleArchitecture{})
}

func (cfg *ServerConfig) handlerRestart(c echo.Context) error {
	return cfg.dispatch(c, navigator.Restart{})
}

func (cfg *ServerConfig) handlerGetArchitecture(c echo.Context) error {
	return c.JSON(http.StatusOK, cfg.Content.Architecture)
}

func (cfg *ServerConfig) handlerGetLogs(c echo.Context) error {
	last := 0
	if raw := c.QueryParam("last"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return respondError(c, cfg.Logger, fmt.Errorf("%w: last must be a non-negative number", navigator.ErrValidation))
		}
		last = n
	}
	return c.JSON(http.StatusOK, logItems(controllerOf(c).Log().Last(last)))
}

// handlerUploadResume extracts the text of an uploaded resume and, when
// object storage is configured, keeps the file. It never changes the stage.
func (cfg *ServerConfig) handlerUploadResume(c echo.Context) error {
	ctrl := controllerOf(c)

	header, err := c.FormFile("file")
	if err != nil {
		return respondError(c, cfg.Logger, fmt.Errorf("%w: a file field is required", navigator.ErrValidation))
	}
	if cfg.MaxUpload > 0 && header.Size > cfg.MaxUpload {
		return respondError(c, cfg.Logger, fmt.Errorf("%w: file exceeds %d bytes", navigator.ErrValidation, cfg.MaxUpload))
	}
	f, err := header.Open()
	if err != nil {
		return respondError(c, cfg.Logger, fmt.Errorf("open upload: %w", err))
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return respondError(c, cfg.Logger, fmt.Errorf("read upload: %w", err))
	}

	mime := extract.DetectMime(header.Header.Get("Content-Type"), header.Filename)
	text, err := extract.Text(mime, data)
	if err != nil {
		return respondError(c, cfg.Logger, err)
	}

	resp := resumeResponse{Filename: header.Filename, Mime: mime, Text: text}
	if cfg.Objects != nil {
		id, err := cfg.storeResume(c.Request().Context(), ctrl.ID(), header.Filename, mime, data)
		if err != nil {
			cfg.Logger.Warn("failed to store resume",
				zap.String("session_id", ctrl.ID()),
				zap.String("filename", header.Filename),
				zap.Error(err))
		} else {
			resp.ID = id
			resp.Stored = true
		}
	}
	return c.JSON(http.StatusOK, resp)
}

func (cfg *ServerConfig) storeResume(ctx context.Context, sessionID, filename, mime string, data []byte) (string, error) {
	id := uuid.New()
	key := storage.ResumeKey(sessionID, id, filename)
	if err := cfg.Objects.Upload(ctx, key, mime, data); err != nil {
		return "", err
	}
	if cfg.Resumes == nil {
		return "", nil
	}
	_, err := cfg.Resumes.RecordResume(ctx, sessionstore.ResumeUpload{
		ID:        id,
		SessionID: sessionID,
		Filename:  filename,
		Mime:      mime,
		Size:      int64(len(data)),
		Provider:  storage.Provider,
		ObjectKey: key,
		URL:       cfg.Objects.URL(key),
	})
	if err != nil {
		return "", fmt.Errorf("record resume: %w", err)
	}
	return id.String(), nil
}

func (cfg *ServerConfig) handlerListResumes(c echo.Context) error {
	items := []resumeItem{}
	if cfg.Resumes == nil {
		return c.JSON(http.StatusOK, items)
	}
	resumes, err := cfg.Resumes.Resumes(c.Request().Context(), controllerOf(c).ID())
	if err != nil {
		return respondError(c, cfg.Logger, err)
	}
	for _, r := range resumes {
		items = append(items, resumeItem{
			ID:        r.ID.String(),
			Filename:  r.OriginalFilename,
			Mime:      r.Mime,
			SizeBytes: r.SizeBytes,
			URL:       r.StorageUrl,
			CreatedAt: r.CreatedAt.Format(time.RFC3339),
		})
	}
	return c.JSON(http.StatusOK, items)
}

// handlerExtractStoredResume re-extracts a previously uploaded resume.
func (cfg *ServerConfig) handlerExtractStoredResume(c echo.Context) error {
	if cfg.Objects == nil || cfg.Resumes == nil {
		return respondError(c, cfg.Logger, sessionstore.ErrNotFound)
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return respondError(c, cfg.Logger, sessionstore.ErrNotFound)
	}
	ctx := c.Request().Context()

	resume, err := cfg.Resumes.Resume(ctx, controllerOf(c).ID(), id)
	if err != nil {
		return respondError(c, cfg.Logger, err)
	}
	data, err := cfg.Objects.Download(ctx, resume.ObjectKey)
	if err != nil {
		return respondError(c, cfg.Logger, fmt.Errorf("download %s: %w", resume.ObjectKey, err))
	}
	text, err := extract.Text(resume.Mime, data)
	if err != nil {
		return respondError(c, cfg.Logger, err)
	}
	return c.JSON(http.StatusOK, resumeResponse{
		ID:       resume.ID.String(),
		Filename: resume.OriginalFilename,
		Mime:     resume.Mime,
		Text:     text,
		Stored:   true,
	})
}

func handlerHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, navigator.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, navigator.ErrWrongStage), errors.Is(err, navigator.ErrBusy):
		return http.StatusConflict
	case errors.Is(err, extract.ErrExtraction):
		return http.StatusUnprocessableEntity
	case errors.Is(err, sessionstore.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c echo.Context, logger *zap.Logger, err error) error {
	status := statusOf(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		logger.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
		msg = "internal server error"
	}
	return c.JSON(status, errorResponse{Error: msg})
}
