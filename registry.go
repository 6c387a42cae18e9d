package main

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/muhammadolammi/careernavigator/internal/agentlog"
	"github.com/muhammadolammi/careernavigator/internal/navigator"
	"github.com/muhammadolammi/careernavigator/internal/sessionstore"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Loader restores persisted sessions.
type Loader interface {
	Load(ctx context.Context, sessionID string) (navigator.State, []agentlog.Entry, error)
}

// DefaultIdleTTL is how long an untouched session stays in memory.
const DefaultIdleTTL = 30 * time.Minute

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithIdleTTL sets how long a session may go untouched before Evict drops it.
func WithIdleTTL(ttl time.Duration) RegistryOption {
	return func(r *Registry) { r.idleTTL = ttl }
}

func WithClock(now func() time.Time) RegistryOption {
	return func(r *Registry) { r.now = now }
}

type liveSession struct {
	ctrl     *navigator.Controller
	lastSeen time.Time
}

// Registry owns the live navigator controllers, one per browser session.
// Idle sessions are evicted; with a loader they are restored on next use.
type Registry struct {
	ctx      context.Context
	collab   navigator.Collaborator
	opts     navigator.Options
	recorder *sessionstore.Recorder
	loader   Loader
	logger   *zap.Logger
	restores singleflight.Group
	idleTTL  time.Duration
	now      func() time.Time

	mu       sync.Mutex
	sessions map[string]*liveSession
}

// NewRegistry builds a registry. ctx is the base context of every
// collaborator call; loader may be nil.
func NewRegistry(ctx context.Context, collab navigator.Collaborator, opts navigator.Options, recorder *sessionstore.Recorder, loader Loader, logger *zap.Logger, options ...RegistryOption) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Registry{
		ctx:      ctx,
		collab:   collab,
		opts:     opts,
		recorder: recorder,
		loader:   loader,
		logger:   logger,
		idleTTL:  DefaultIdleTTL,
		now:      time.Now,
		sessions: make(map[string]*liveSession),
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// Create starts a fresh session.
func (r *Registry) Create() *navigator.Controller {
	id := uuid.NewString()
	c := r.build(id, navigator.Initial(), nil)

	r.mu.Lock()
	r.sessions[id] = &liveSession{ctrl: c, lastSeen: r.now()}
	r.mu.Unlock()

	if r.recorder != nil {
		r.recorder.Created(id, c.State())
	}
	r.logger.Info("navigator session created", zap.String("session_id", id))
	return c
}

// Get returns a live session, restoring it from the loader when it is not in
// memory. Unknown ids report sessionstore.ErrNotFound.
func (r *Registry) Get(ctx context.Context, id string) (*navigator.Controller, error) {
	if c, ok := r.touch(id); ok {
		return c, nil
	}
	if r.loader == nil {
		return nil, sessionstore.ErrNotFound
	}

	// Concurrent requests for the same unknown id share one restore.
	v, err, _ := r.restores.Do(id, func() (any, error) {
		return r.restore(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return v.(*navigator.Controller), nil
}

// Len is the number of sessions in memory.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Evict drops sessions untouched for longer than the idle TTL. A session with
// a collaborator call in flight is kept until the call lands.
func (r *Registry) Evict() int {
	cutoff := r.now().Add(-r.idleTTL)

	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, s := range r.sessions {
		if s.lastSeen.After(cutoff) || s.ctrl.State().Busy() {
			continue
		}
		delete(r.sessions, id)
		n++
	}
	return n
}

// Sweep runs Evict every interval until ctx is done.
func (r *Registry) Sweep(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Evict(); n > 0 {
				r.logger.Debug("evicted idle navigator sessions", zap.Int("count", n), zap.Int("live", r.Len()))
			}
		}
	}
}

func (r *Registry) touch(id string) (*navigator.Controller, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, false
	}
	s.lastSeen = r.now()
	return s.ctrl, true
}

func (r *Registry) restore(ctx context.Context, id string) (*navigator.Controller, error) {
	if c, ok := r.touch(id); ok {
		return c, nil
	}

	state, entries, err := r.loader.Load(ctx, id)
	if err != nil {
		if !errors.Is(err, sessionstore.ErrNotFound) {
			r.logger.Error("failed to restore navigator session", zap.String("session_id", id), zap.Error(err))
		}
		return nil, fmt.Errorf("restore session %s: %w", id, err)
	}

	c := r.build(id, state, entries)
	r.mu.Lock()
	r.sessions[id] = &liveSession{ctrl: c, lastSeen: r.now()}
	r.mu.Unlock()
	r.logger.Info("navigator session restored",
		zap.String("session_id", id),
		zap.String("stage", string(state.Stage.Name())),
		zap.Int("log_entries", len(entries)))
	return c, nil
}

// Wait blocks until every live session is idle.
func (r *Registry) Wait(ctx context.Context) error {
	r.mu.Lock()
	controllers := make([]*navigator.Controller, 0, len(r.sessions))
	for _, s := range r.sessions {
		controllers = append(controllers, s.ctrl)
	}
	r.mu.Unlock()

	g, gctx := errgroup.WithContext(ctx)
	for _, c := range controllers {
		g.Go(func() error { return c.Wait(gctx) })
	}
	return g.Wait()
}

func (r *Registry) build(id string, state navigator.State, entries []agentlog.Entry) *navigator.Controller {
	logOpts := []agentlog.Option{agentlog.WithEntries(entries)}
	opts := []navigator.ControllerOption{
		navigator.WithLogger(r.logger),
		navigator.WithOptions(r.opts),
		navigator.WithState(state),
	}
	if r.recorder != nil {
		logOpts = append(logOpts, agentlog.WithHook(r.recorder.LogHook(id)))
		opts = append(opts, navigator.WithObserver(r.recorder))
	}
	opts = append(opts, navigator.WithAgentLog(agentlog.New(logOpts...)))
	return navigator.NewController(r.ctx, id, r.collab, opts...)
}
