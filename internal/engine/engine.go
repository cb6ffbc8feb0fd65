package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/qmuntal/stateless"
	"github.com/tatianab/text-adventure/internal/models"
	"go.uber.org/zap"
)

// Turn states.
const (
	StateIdle          = "Idle"
	StateAwaitingReply = "AwaitingReply"
	StateFailed        = "Failed"
)

const (
	triggerSend    = "Send"
	triggerReply   = "Reply"
	triggerFail    = "Fail"
	triggerRecover = "Recover"
)

// ErrTurnInProgress is returned when a turn starts while another one is still
// waiting for its reply.
var ErrTurnInProgress = errors.New("a reply is still pending")

// Completer produces the next assistant reply for a history.
type Completer interface {
	Complete(ctx context.Context, apiKey string, history []models.Message) (string, error)
}

// Engine runs the turns of a single session against a Completer.
type Engine struct {
	completer Completer
	session   *models.Session
	apiKey    string
	log       *zap.Logger

	mu  sync.Mutex
	fsm *stateless.StateMachine
}

func NewEngine(completer Completer, session *models.Session, apiKey string, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	e := &Engine{
		completer: completer,
		session:   session,
		apiKey:    apiKey,
		log:       log.With(zap.String("session", session.ID)),
	}

	fsm := stateless.NewStateMachine(StateIdle)
	fsm.Configure(StateIdle).
		Permit(triggerSend, StateAwaitingReply)
	fsm.Configure(StateAwaitingReply).
		Permit(triggerReply, StateIdle).
		Permit(triggerFail, StateFailed)
	fsm.Configure(StateFailed).
		Permit(triggerRecover, StateIdle)
	fsm.OnTransitioned(func(_ context.Context, t stateless.Transition) {
		e.log.Debug("turn state", zap.Any("from", t.Source), zap.Any("to", t.Destination))
	})
	e.fsm = fsm
	return e
}

func (e *Engine) Session() *models.Session {
	return e.session
}

// State reports the current turn state.
func (e *Engine) State() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.fsm.MustState().(string)
}

// Begin adds the Game Master instructions to the history and asks for the
// opening scene. Calling it again after a failed opening retries with the
// instructions already in the history.
func (e *Engine) Begin(ctx context.Context) (string, error) {
	prompt, err := e.session.SystemPrompt()
	if err != nil {
		return "", fmt.Errorf("failed to build system prompt: %w", err)
	}
	return e.turn(ctx, models.RoleSystem, prompt)
}

// Send records the player's message and returns the Game Master's reply.
// On failure the message stays in the history and the session is ready for
// the next attempt.
func (e *Engine) Send(ctx context.Context, text string) (string, error) {
	return e.turn(ctx, models.RoleUser, text)
}

func (e *Engine) turn(ctx context.Context, role models.Role, content string) (string, error) {
	history, err := e.start(ctx, role, content)
	if err != nil {
		return "", err
	}

	started := time.Now()
	reply, err := e.completer.Complete(ctx, e.apiKey, history)
	if err != nil {
		e.log.Warn("completion failed",
			zap.Error(err),
			zap.Int("messages", len(history)),
			zap.Duration("elapsed", time.Since(started)))
		e.finish(ctx, triggerFail, "")
		return "", err
	}

	e.log.Info("turn completed",
		zap.Stringer("role", role),
		zap.Int("messages", len(history)+1),
		zap.Int("reply_chars", len(reply)),
		zap.Duration("elapsed", time.Since(started)))
	e.finish(ctx, triggerReply, reply)
	return reply, nil
}

// start moves to AwaitingReply, appends the new message and snapshots the
// history for the request.
func (e *Engine) start(ctx context.Context, role models.Role, content string) ([]models.Message, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if ok, _ := e.fsm.CanFireCtx(ctx, triggerSend); !ok {
		return nil, ErrTurnInProgress
	}
	if err := e.fsm.FireCtx(ctx, triggerSend); err != nil {
		return nil, err
	}
	// Instructions are appended once per session.
	if role != models.RoleSystem || !e.session.HasSystemMessage() {
		e.session.Append(role, content)
	}
	return e.session.History(), nil
}

func (e *Engine) finish(ctx context.Context, trigger string, reply string) {
	ctx = context.WithoutCancel(ctx)
	e.mu.Lock()
	defer e.mu.Unlock()

	if trigger == triggerReply {
		e.session.Append(models.RoleAssistant, reply)
	}
	if err := e.fsm.FireCtx(ctx, trigger); err != nil {
		e.log.Error("turn state transition failed", zap.String("trigger", trigger), zap.Error(err))
	}
	if trigger == triggerFail {
		if err := e.fsm.FireCtx(ctx, triggerRecover); err != nil {
			e.log.Error("turn state transition failed", zap.String("trigger", triggerRecover), zap.Error(err))
		}
	}
}
