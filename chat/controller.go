package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

// State is the turn controller's position in the request cycle.
type State int

const (
	Idle State = iota
	AwaitingReply
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitingReply:
		return "awaiting-reply"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// DefaultTimeout bounds a single warehouse round trip.
const DefaultTimeout = 90 * time.Second

var (
	// ErrEmptyInput is returned by Begin for blank submissions. No turn is created.
	ErrEmptyInput = errors.New("empty message")
	// ErrBusy is returned while a reply is still outstanding.
	ErrBusy = errors.New("still waiting for the previous answer")
	// ErrEmptyAnswer is recorded when the answerer succeeds with blank text.
	ErrEmptyAnswer = errors.New("the service returned an empty answer")
	// ErrTimeout wraps a round trip that outlived the controller timeout.
	ErrTimeout = errors.New("timed out waiting for the service")
	// ErrStalePending is returned by Resolve for a request that is not outstanding.
	ErrStalePending = errors.New("no such outstanding request")
)

// Answerer turns a question and the preceding user history into an answer.
// Implementations own query building and the outbound call.
type Answerer interface {
	Answer(ctx context.Context, question string, history []Turn) (string, error)
}

// Pending is an outstanding request created by Begin.
type Pending struct {
	ThreadID string
	Question string
	History  []Turn // prior user turns, current question excluded
}

// Controller drives one session through Idle → AwaitingReply → Idle.
// At most one request is outstanding at a time.
type Controller struct {
	session  *Session
	answerer Answerer
	timeout  time.Duration

	mu      sync.Mutex
	state   State
	pending *Pending
	lastErr error
}

// NewController binds a session to an answerer. A zero timeout selects DefaultTimeout.
func NewController(session *Session, answerer Answerer, timeout time.Duration) *Controller {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Controller{session: session, answerer: answerer, timeout: timeout}
}

// Session returns the session this controller mutates.
func (c *Controller) Session() *Session { return c.session }

// State returns the current controller state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// LastError returns the error of the most recent failed turn, cleared by
// the next accepted submission.
func (c *Controller) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Begin records text as a user turn and moves to AwaitingReply.
func (c *Controller) Begin(text string) (*Pending, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyInput
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == AwaitingReply {
		return nil, ErrBusy
	}

	threadID, history := c.session.beginTurn(text)
	c.pending = &Pending{ThreadID: threadID, Question: text, History: history}
	c.state = AwaitingReply
	c.lastErr = nil
	return c.pending, nil
}

// Ask performs the outbound call for p under the controller timeout.
// It does not touch session state and may run off the UI goroutine.
func (c *Controller) Ask(ctx context.Context, p *Pending) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	answer, err := c.answerer.Answer(ctx, p.Question, p.History)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("%w after %s: %v", ErrTimeout, c.timeout, err)
		}
		return "", err
	}
	if strings.TrimSpace(answer) == "" {
		return "", ErrEmptyAnswer
	}
	return answer, nil
}

// Resolve finishes p. On success the answer is appended as an assistant
// turn and returned; on failure nothing is appended and the error becomes
// LastError. Either way the controller returns to Idle.
func (c *Controller) Resolve(p *Pending, answer string, err error) (Turn, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p == nil || c.pending != p {
		return Turn{}, ErrStalePending
	}
	c.pending = nil
	c.state = Idle

	if err == nil && strings.TrimSpace(answer) == "" {
		err = ErrEmptyAnswer
	}
	if err != nil {
		c.lastErr = err
		return Turn{}, err
	}
	if aerr := c.session.appendTo(p.ThreadID, RoleAssistant, answer); aerr != nil {
		c.lastErr = aerr
		return Turn{}, aerr
	}
	return Turn{Role: RoleAssistant, Text: answer}, nil
}

// Submit runs a complete turn synchronously: Begin, Ask, Resolve.
func (c *Controller) Submit(ctx context.Context, text string) (Turn, error) {
	p, err := c.Begin(text)
	if err != nil {
		return Turn{}, err
	}
	answer, err := c.Ask(ctx, p)
	return c.Resolve(p, answer, err)
}

// NewChat starts a fresh thread on the next submission.
func (c *Controller) NewChat() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == AwaitingReply {
		return ErrBusy
	}
	c.session.NewChat()
	c.lastErr = nil
	return nil
}

// Select switches the current thread. Switching is refused while a reply
// is outstanding so the answer lands in the thread it belongs to.
func (c *Controller) Select(threadID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == AwaitingReply {
		return ErrBusy
	}
	if err := c.session.Select(threadID); err != nil {
		return err
	}
	c.lastErr = nil
	return nil
}

// DismissError clears the error banner.
func (c *Controller) DismissError() {
	c.mu.Lock()
	c.lastErr = nil
	c.mu.Unlock()
}
