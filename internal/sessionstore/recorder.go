package sessionstore

import (
	"context"
	"reflect"
	"time"

	"github.com/muhammadolammi/careernavigator/internal/agentlog"
	"github.com/muhammadolammi/careernavigator/internal/navigator"
	"github.com/muhammadolammi/careernavigator/internal/notify"
	"github.com/muhammadolammi/careernavigator/internal/worker"
	"go.uber.org/zap"
)

// Saver is the persistence side of a Recorder.
type Saver interface {
	SaveSnapshot(ctx context.Context, sessionID string, snap navigator.Snapshot) error
	AppendLog(ctx context.Context, sessionID string, e agentlog.Entry) error
}

// Publisher is the message-bus side of a Recorder.
type Publisher interface {
	Publish(u notify.Update) error
}

// Recorder observes controllers and session logs and turns what it sees into
// background jobs. Either side may be nil.
type Recorder struct {
	pool      *worker.Pool
	saver     Saver
	publisher Publisher
	logger    *zap.Logger
	now       func() time.Time
}

func NewRecorder(pool *worker.Pool, saver Saver, publisher Publisher, logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{pool: pool, saver: saver, publisher: publisher, logger: logger, now: time.Now}
}

// Created records a brand new session.
func (r *Recorder) Created(sessionID string, s navigator.State) {
	r.save(sessionID, s.Snapshot())
	r.publish(sessionID, s)
}

// StateChanged implements navigator.Observer. It runs under the controller
// lock, so the work itself is only queued.
func (r *Recorder) StateChanged(sessionID string, prev, next navigator.State) {
	snap := next.Snapshot()
	if !reflect.DeepEqual(prev.Snapshot(), snap) {
		r.save(sessionID, snap)
	}
	if prev.Stage.Name() != next.Stage.Name() {
		r.publish(sessionID, next)
	}
}

// LogHook mirrors a session's log entries to the logger and the store.
func (r *Recorder) LogHook(sessionID string) agentlog.Hook {
	return func(e agentlog.Entry) {
		r.logger.Info(e.Message, zap.String("session_id", sessionID), zap.String("agent", e.Agent))
		if r.saver == nil {
			return
		}
		r.pool.Submit(worker.Job{Name: "append-log", SessionID: sessionID, Run: func(ctx context.Context) error {
			return r.saver.AppendLog(ctx, sessionID, e)
		}})
	}
}

func (r *Recorder) save(sessionID string, snap navigator.Snapshot) {
	if r.saver == nil {
		return
	}
	r.pool.Submit(worker.Job{Name: "save-snapshot", SessionID: sessionID, Run: func(ctx context.Context) error {
		return r.saver.SaveSnapshot(ctx, sessionID, snap)
	}})
}

func (r *Recorder) publish(sessionID string, s navigator.State) {
	if r.publisher == nil {
		return
	}
	u := notify.Update{
		SessionID: sessionID,
		Stage:     string(s.Stage.Name()),
		Message:   StageMessage(s.Stage),
		Timestamp: r.now(),
	}
	r.pool.Submit(worker.Job{Name: "publish-update", SessionID: sessionID, Run: func(context.Context) error {
		return r.publisher.Publish(u)
	}})
}

// StageMessage is the human-readable status of a stage.
func StageMessage(s navigator.Stage) string {
	switch st := s.(type) {
	case navigator.NameInput:
		return "session started"
	case navigator.AgeInput:
		return "waiting for age"
	case navigator.Quiz:
		return "curiosity quiz ready"
	case navigator.ProfileInput:
		return "waiting for profile sources"
	case navigator.DreamRole:
		return "profile analyzed"
	case navigator.Analyzing:
		return "analysis started: " + st.Task
	case navigator.Dashboard:
		return "career plan ready"
	default:
		return "stage changed"
	}
}
