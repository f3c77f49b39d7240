package chat

import (
	"maps"
	"sync"
)

// ActionKind names a state transition.
type ActionKind string

const (
	ActionOpened          ActionKind = "opened"
	ActionSending         ActionKind = "sending"
	ActionMessageAppended ActionKind = "message_appended"
	ActionContextUpdated  ActionKind = "context_updated"
	ActionFailed          ActionKind = "failed"
	ActionClosed          ActionKind = "closed"
)

// Action is a message sent to the store.
type Action struct {
	Kind      ActionKind
	SessionID string
	Message   Message
	Context   map[string]any
	Error     string
}

// State is a snapshot of the conversation.
type State struct {
	SessionID string         `json:"session_id,omitempty"`
	Open      bool           `json:"open"`
	Pending   bool           `json:"pending"`
	Messages  []Message      `json:"messages"`
	Context   map[string]any `json:"context,omitempty"`
	LastError string         `json:"last_error,omitempty"`
	Version   uint64         `json:"version"`
}

// DefaultHistoryLimit caps the number of retained messages.
const DefaultHistoryLimit = 200

// Reduce applies action to state and returns the next state. It never
// mutates state.
func Reduce(state State, action Action, historyLimit int) State {
	next := state
	next.Messages = append([]Message(nil), state.Messages...)
	next.Context = maps.Clone(state.Context)

	switch action.Kind {
	case ActionOpened:
		next.SessionID = action.SessionID
		next.Open = true
		next.LastError = ""
	case ActionSending:
		next.Pending = true
	case ActionMessageAppended:
		next.Messages = append(next.Messages, action.Message)
		if action.Message.Sender != SenderUser {
			next.Pending = false
		}
		if historyLimit > 0 && len(next.Messages) > historyLimit {
			next.Messages = next.Messages[len(next.Messages)-historyLimit:]
		}
	case ActionContextUpdated:
		if next.Context == nil {
			next.Context = map[string]any{}
		}
		maps.Copy(next.Context, action.Context)
	case ActionFailed:
		next.Pending = false
		next.LastError = action.Error
	case ActionClosed:
		next.Open = false
		next.Pending = false
		next.SessionID = ""
	default:
		return state
	}
	next.Version = state.Version + 1
	return next
}

// Store serializes every state change through Dispatch and notifies
// subscribers with the resulting snapshot.
type Store struct {
	mu    sync.Mutex
	state State
	limit int
	subs  map[int]chan State
	next  int
}

// NewStore builds an empty store. historyLimit <= 0 uses DefaultHistoryLimit.
func NewStore(historyLimit int) *Store {
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}
	return &Store{limit: historyLimit, subs: make(map[int]chan State)}
}

// Dispatch applies action and returns the new state.
func (s *Store) Dispatch(action Action) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := Reduce(s.state, action, s.limit)
	if next.Version == s.state.Version {
		return s.snapshot()
	}
	s.state = next
	snap := s.snapshot()
	for _, ch := range s.subs {
		select {
		case ch <- snap:
		default:
		}
	}
	return snap
}

// State returns a snapshot safe to read without locking.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// Subscribe delivers a snapshot after every state change. Slow subscribers
// miss intermediate snapshots.
func (s *Store) Subscribe() (<-chan State, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.next
	s.next++
	ch := make(chan State, 4)
	s.subs[id] = ch
	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if sub, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(sub)
		}
	}
}

func (s *Store) snapshot() State {
	snap := s.state
	snap.Messages = append([]Message(nil), s.state.Messages...)
	snap.Context = maps.Clone(s.state.Context)
	return snap
}
