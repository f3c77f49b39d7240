package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// ErrInvalidMessage is returned when outgoing text fails validation.
var ErrInvalidMessage = errors.New("chat: invalid message")

// Transport talks to the assistant backend.
type Transport interface {
	Open(ctx context.Context) (string, error)
	Send(ctx context.Context, text string) (Message, error)
	UpdateContext(ctx context.Context, payload map[string]any) error
}

// Translator resolves localized strings.
type Translator interface {
	Translate(ctx context.Context, key, locale string, args map[string]any) (string, error)
}

// SessionOptions configures a Session.
type SessionOptions struct {
	Transport    Transport
	Translator   Translator
	Logger       *zap.Logger
	Locale       string
	HistoryLimit int
	Now          func() time.Time
}

// Session couples a store with a transport. Every state change goes
// through the store.
type Session struct {
	store      *Store
	transport  Transport
	translator Translator
	logger     *zap.Logger
	locale     string
	now        func() time.Time
	validate   *validator.Validate
	sendMu     sync.Mutex
}

type outgoing struct {
	Text string `validate:"required,max=4000"`
}

// NewSession builds a session. A nil logger discards output.
func NewSession(opts SessionOptions) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Session{
		store:      NewStore(opts.HistoryLimit),
		transport:  opts.Transport,
		translator: opts.Translator,
		logger:     logger,
		locale:     opts.Locale,
		now:        now,
		validate:   validator.New(),
	}
}

// Store exposes the session's state store.
func (s *Session) Store() *Store { return s.store }

// State returns the current snapshot.
func (s *Session) State() State { return s.store.State() }

// OpenChat opens a backend session. Calling it on an open session is a no-op.
func (s *Session) OpenChat(ctx context.Context) (State, error) {
	if state := s.store.State(); state.Open {
		return state, nil
	}
	if s.transport == nil {
		return s.fail(errors.New("chat: no transport configured"))
	}
	id, err := s.transport.Open(ctx)
	if err != nil {
		s.logger.Warn("chat open failed", zap.Error(err))
		return s.fail(fmt.Errorf("chat: open session: %w", err))
	}
	s.logger.Debug("chat session opened", zap.String("session_id", id))
	return s.store.Dispatch(Action{Kind: ActionOpened, SessionID: id}), nil
}

// SendMessage appends the user's message, sends it and appends the reply.
// On failure a system message describing the error is appended and the
// error is returned.
func (s *Session) SendMessage(ctx context.Context, text string) (State, error) {
	text = strings.TrimSpace(text)
	if err := s.validate.Struct(outgoing{Text: text}); err != nil {
		return s.store.State(), fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	s.sendMu.Lock()
	defer s.sendMu.Unlock()

	if _, err := s.OpenChat(ctx); err != nil {
		return s.systemError(ctx, err)
	}

	s.store.Dispatch(Action{Kind: ActionMessageAppended, Message: NewMessage(SenderUser, text, s.now())})
	s.store.Dispatch(Action{Kind: ActionSending})

	reply, err := s.transport.Send(ctx, text)
	if err != nil {
		s.logger.Warn("chat send failed", zap.Error(err))
		return s.systemError(ctx, fmt.Errorf("chat: send message: %w", err))
	}
	reply = reply.normalize(SenderAssistant, s.now())
	return s.store.Dispatch(Action{Kind: ActionMessageAppended, Message: reply}), nil
}

// UpdateContext forwards page context to the assistant and records it.
func (s *Session) UpdateContext(ctx context.Context, payload map[string]any) (State, error) {
	if s.transport == nil {
		return s.fail(errors.New("chat: no transport configured"))
	}
	if err := s.transport.UpdateContext(ctx, payload); err != nil {
		s.logger.Warn("chat context update failed", zap.Error(err))
		return s.fail(fmt.Errorf("chat: update context: %w", err))
	}
	return s.store.Dispatch(Action{Kind: ActionContextUpdated, Context: payload}), nil
}

// Close marks the session closed.
func (s *Session) Close() State {
	return s.store.Dispatch(Action{Kind: ActionClosed})
}

func (s *Session) fail(err error) (State, error) {
	return s.store.Dispatch(Action{Kind: ActionFailed, Error: err.Error()}), err
}

func (s *Session) systemError(ctx context.Context, err error) (State, error) {
	text := s.errorText(ctx, err)
	s.store.Dispatch(Action{Kind: ActionMessageAppended, Message: NewMessage(SenderSystem, text, s.now())})
	return s.fail(err)
}

func (s *Session) errorText(ctx context.Context, err error) string {
	if msg := rootMessage(err); msg != "" {
		return msg
	}
	if s.translator != nil {
		if out, terr := s.translator.Translate(ctx, "chat.error.generic", s.locale, nil); terr == nil && out != "" {
			return out
		}
	}
	return "The assistant is unavailable right now. Please try again."
}

// rootMessage returns the innermost error text.
func rootMessage(err error) string {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return strings.TrimSpace(err.Error())
		}
		err = next
	}
}

// TransportFactory builds a transport for a viewer.
type TransportFactory func(viewerID string) Transport

// Manager keeps one session per viewer.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	factory  TransportFactory
	opts     SessionOptions
}

// NewManager builds a manager. opts.Transport is ignored; factory supplies
// one per viewer.
func NewManager(factory TransportFactory, opts SessionOptions) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		factory:  factory,
		opts:     opts,
	}
}

// Session returns the viewer's session, creating it on first use.
func (m *Manager) Session(viewerID string) *Session {
	if viewerID == "" {
		viewerID = "anonymous"
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if sess, ok := m.sessions[viewerID]; ok {
		return sess
	}
	opts := m.opts
	if m.factory != nil {
		opts.Transport = m.factory(viewerID)
	}
	if opts.Logger != nil {
		opts.Logger = opts.Logger.With(zap.String("viewer_id", viewerID))
	}
	sess := NewSession(opts)
	m.sessions[viewerID] = sess
	return sess
}

// Forget drops the viewer's session.
func (m *Manager) Forget(viewerID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if sess, ok := m.sessions[viewerID]; ok {
		sess.Close()
		delete(m.sessions, viewerID)
	}
}
