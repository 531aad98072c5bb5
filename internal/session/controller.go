// Package session owns the conversation state machine: it turns user input into
// store appends and backend requests, and backend results into bot messages.
//
// A Controller is driven from one logical thread (the TUI update loop or a
// caller's goroutine). Only Dispatch may run elsewhere; it never touches state.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/dixit-research/dixit/internal/api"
	apierrors "github.com/dixit-research/dixit/internal/errors"
	"github.com/dixit-research/dixit/internal/history"
	"github.com/dixit-research/dixit/internal/models"
)

// State is the request lifecycle state
type State int

const (
	StateIdle State = iota
	StateSending
)

// String returns the state name
func (s State) String() string {
	if s == StateSending {
		return "sending"
	}
	return "idle"
}

// Outcome describes what Complete did with a result
type Outcome int

const (
	// OutcomeIgnored means the submission or result was not accepted
	OutcomeIgnored Outcome = iota
	// OutcomeAnswered means a bot answer was appended
	OutcomeAnswered
	// OutcomeFailed means a diagnostic bot message was appended
	OutcomeFailed
	// OutcomeStale means the result arrived after a reset and was dropped
	OutcomeStale
)

// String returns the outcome name
func (o Outcome) String() string {
	switch o {
	case OutcomeAnswered:
		return "answered"
	case OutcomeFailed:
		return "failed"
	case OutcomeStale:
		return "stale"
	default:
		return "ignored"
	}
}

// Status line texts
const (
	StatusThinking = "Thinking…"
	StatusFailed   = "Error — backend unavailable or invalid response."
)

// Sender is the request client as seen by the controller
type Sender interface {
	Send(ctx context.Context, question string) (*models.Answer, error)
}

// Request is one outstanding question, tagged with the generation it was sent in
type Request struct {
	Question   string
	Generation uint64
	StartedAt  time.Time
}

// Result is what Dispatch hands back to Complete
type Result struct {
	Request  *Request
	Answer   *models.Answer
	Err      error
	Duration time.Duration
}

// Controller is the session object: store, loading flag, sources, status line
type Controller struct {
	mu         sync.RWMutex
	sender     Sender
	store      *history.Store
	state      State
	generation uint64
	inflight   *Request
	sources    []models.Source
	status     string
	lastErr    error
	logf       func(format string, args ...any)
}

// Option configures a Controller
type Option func(*Controller)

// WithStore uses an existing store instead of creating one
func WithStore(store *history.Store) Option {
	return func(c *Controller) {
		c.store = store
	}
}

// WithGreeting sets the greeting of the store the controller creates
func WithGreeting(greeting string) Option {
	return func(c *Controller) {
		if c.store == nil {
			c.store = history.NewStore(greeting)
		}
	}
}

// WithLogf routes controller diagnostics to logf
func WithLogf(logf func(format string, args ...any)) Option {
	return func(c *Controller) {
		if logf != nil {
			c.logf = logf
		}
	}
}

// New creates a controller in StateIdle with a freshly seeded conversation
func New(sender Sender, opts ...Option) *Controller {
	c := &Controller{
		sender:  sender,
		state:   StateIdle,
		sources: []models.Source{},
		logf:    func(string, ...any) {},
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.store == nil {
		c.store = history.NewStore(models.DefaultGreeting)
	}

	return c
}

// Submit accepts user input. It returns false, changing nothing, when a request
// is already in flight or the input is blank after normalization. Otherwise it
// appends the user message, enters StateSending and returns the request to dispatch.
func (c *Controller) Submit(input string) (*Request, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateSending {
		c.logf("submit ignored: request in flight")
		return nil, false
	}

	msg := models.NewUserMessage(input)
	if msg.Text == "" {
		return nil, false
	}

	if err := c.store.Append(msg); err != nil {
		return nil, false
	}

	req := &Request{
		Question:   msg.Text,
		Generation: c.generation,
		StartedAt:  time.Now(),
	}
	c.inflight = req
	c.state = StateSending
	c.status = StatusThinking
	c.lastErr = nil

	c.logf("sending question (generation %d, %d chars)", req.Generation, len(req.Question))
	return req, true
}

// Dispatch performs the network call for req. It does not read or write
// controller state and may run on any goroutine.
func (c *Controller) Dispatch(ctx context.Context, req *Request) Result {
	start := time.Now()
	answer, err := c.sender.Send(ctx, req.Question)
	return Result{
		Request:  req,
		Answer:   answer,
		Err:      err,
		Duration: time.Since(start),
	}
}

// Complete applies a dispatch result. The controller always returns to
// StateIdle for the in-flight request; the result itself is dropped when the
// conversation was reset after the request was sent.
func (c *Controller) Complete(res Result) Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()

	if res.Request == nil || res.Request != c.inflight {
		return OutcomeIgnored
	}

	c.inflight = nil
	c.state = StateIdle

	if res.Request.Generation != c.generation {
		c.logf("dropping stale result (generation %d, current %d)", res.Request.Generation, c.generation)
		return OutcomeStale
	}

	err := res.Err
	if err == nil && (res.Answer == nil || res.Answer.Text == "") {
		err = apierrors.NewInvalidResponseShapeError(api.AnswerPaths())
	}

	if err != nil {
		c.lastErr = err
		c.sources = []models.Source{}
		c.status = StatusFailed
		_ = c.store.Append(models.NewBotMessage(FailureText(err)))
		c.logf("request failed after %s: %v", res.Duration.Round(time.Millisecond), err)
		return OutcomeFailed
	}

	c.sources = models.CopySources(res.Answer.Sources)
	c.status = ""
	_ = c.store.Append(models.NewBotMessage(res.Answer.Text))
	c.logf("answer received after %s (%d sources)", res.Duration.Round(time.Millisecond), len(c.sources))
	return OutcomeAnswered
}

// Ask runs Submit, Dispatch and Complete in sequence on the caller's goroutine
func (c *Controller) Ask(ctx context.Context, input string) (Outcome, error) {
	req, ok := c.Submit(input)
	if !ok {
		return OutcomeIgnored, nil
	}
	res := c.Dispatch(ctx, req)
	return c.Complete(res), res.Err
}

// Reset clears the conversation back to the greeting and invalidates any
// in-flight request. It does not cancel that request and does not leave
// StateSending: the late result will be dropped by Complete.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.store.Reset()
	c.generation++
	c.sources = []models.Source{}
	c.lastErr = nil
	if c.state == StateSending {
		c.status = StatusThinking
	} else {
		c.status = ""
	}
}

// State returns the current lifecycle state
func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Sending reports whether a request is in flight
func (c *Controller) Sending() bool {
	return c.State() == StateSending
}

// Messages returns a snapshot of the conversation
func (c *Controller) Messages() []models.Message {
	return c.store.Snapshot()
}

// Sources returns a copy of the sources of the most recent answer
func (c *Controller) Sources() []models.Source {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return models.CopySources(c.sources)
}

// Status returns the status line text
func (c *Controller) Status() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status
}

// LastError returns the error of the most recent failed request, if any
func (c *Controller) LastError() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastErr
}

// Generation returns the reset counter
func (c *Controller) Generation() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.generation
}

// Store returns the underlying conversation store
func (c *Controller) Store() *history.Store {
	return c.store
}
