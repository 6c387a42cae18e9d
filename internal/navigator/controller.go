package navigator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/muhammadolammi/careernavigator/internal/agentlog"
	"go.uber.org/zap"
)

// Observer is told about every adopted state, in order, while the
// controller's lock is held. Implementations must not call back into the
// controller.
type Observer interface {
	StateChanged(sessionID string, prev, next State)
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

func WithLogger(l *zap.Logger) ControllerOption {
	return func(c *Controller) { c.logger = l }
}

func WithObserver(o Observer) ControllerOption {
	return func(c *Controller) { c.observer = o }
}

func WithOptions(o Options) ControllerOption {
	return func(c *Controller) { c.opts = o }
}

// WithState starts the controller from a restored state.
func WithState(s State) ControllerOption {
	return func(c *Controller) { c.state = s }
}

// WithAgentLog uses an existing Session Log.
func WithAgentLog(l *agentlog.Log) ControllerOption {
	return func(c *Controller) { c.log = l }
}

// Controller owns one session's State and applies events one at a time.
// Collaborator calls run on their own goroutine; their completion is applied
// like any other event.
type Controller struct {
	id       string
	ctx      context.Context
	collab   Collaborator
	opts     Options
	logger   *zap.Logger
	observer Observer

	mu    sync.Mutex
	state State
	log   *agentlog.Log
	idle  chan struct{}
}

// NewController builds a controller. ctx bounds every collaborator call the
// controller issues; there is no per-call cancellation.
func NewController(ctx context.Context, id string, collab Collaborator, opts ...ControllerOption) *Controller {
	idle := make(chan struct{})
	close(idle)
	c := &Controller{
		id:     id,
		ctx:    ctx,
		collab: collab,
		logger: zap.NewNop(),
		state:  Initial(),
		idle:   idle,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = agentlog.New()
	}
	return c
}

func (c *Controller) ID() string { return c.id }

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Log is the session's agent log.
func (c *Controller) Log() *agentlog.Log {
	return c.log
}

// Dispatch applies a user event. Rejected events leave the state untouched
// and return an error wrapping ErrValidation, ErrWrongStage or ErrBusy.
func (c *Controller) Dispatch(ev Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.apply(ev)
}

// Wait blocks until no collaborator call is outstanding or ctx is done.
func (c *Controller) Wait(ctx context.Context) error {
	c.mu.Lock()
	idle := c.idle
	c.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// apply must be called with mu held.
func (c *Controller) apply(ev Event) error {
	prev := c.state
	next, eff, err := Reduce(prev, ev, c.opts)
	if err != nil {
		return err
	}
	c.state = next

	for _, line := range eff.Logs {
		c.log.Append(line.Agent, line.Message)
	}
	if c.observer != nil {
		c.observer.StateChanged(c.id, prev, next)
	}
	if eff.Call != nil {
		c.start(eff.Call)
	}
	return nil
}

// start must be called with mu held.
func (c *Controller) start(call *Call) {
	done := make(chan struct{})
	c.idle = done

	go func() {
		defer close(done)

		started := time.Now()
		c.logger.Info("collaborator call started",
			zap.String("session_id", c.id), zap.String("call", call.Name))

		ev := c.run(call)

		if err := failureOf(ev); err != nil {
			c.logger.Warn("collaborator call failed",
				zap.String("session_id", c.id),
				zap.String("call", call.Name),
				zap.Duration("duration", time.Since(started)),
				zap.Error(err))
		} else {
			c.logger.Info("collaborator call finished",
				zap.String("session_id", c.id),
				zap.String("call", call.Name),
				zap.Duration("duration", time.Since(started)))
		}

		c.mu.Lock()
		defer c.mu.Unlock()
		if err := c.apply(ev); err != nil {
			c.logger.Error("dropping call result", zap.String("session_id", c.id), zap.Error(err))
		}
	}()
}

// run converts a panicking collaborator into an ordinary call failure.
func (c *Controller) run(call *Call) (ev Event) {
	defer func() {
		if r := recover(); r != nil {
			ev = callFailed{err: fmt.Errorf("%w: %s panicked: %v", ErrCollaborator, call.Name, r)}
		}
	}()
	return call.Run(c.ctx, c.collab)
}
