package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"

	"github.com/goliatone/go-bizdash/components/chat"
	dashboard "github.com/goliatone/go-bizdash/components/dashboard"
)

// ChatHistoryInput selects a viewer's conversation.
type ChatHistoryInput struct {
	Viewer dashboard.ViewerContext
}

// ChatHistory is a rendered conversation.
type ChatHistory struct {
	SessionID string                 `json:"session_id,omitempty"`
	Open      bool                   `json:"open"`
	Pending   bool                   `json:"pending"`
	Messages  []chat.RenderedMessage `json:"messages"`
	Version   uint64                 `json:"version"`
}

type chatSessions interface {
	Session(viewerID string) *chat.Session
}

// ChatHistoryQuery renders the viewer's conversation.
type ChatHistoryQuery struct {
	sessions chatSessions
	renderer *chat.Renderer
}

// NewChatHistoryQuery builds the query.
func NewChatHistoryQuery(sessions chatSessions, renderer *chat.Renderer) *ChatHistoryQuery {
	if renderer == nil {
		renderer = chat.NewRenderer(chat.RendererOptions{})
	}
	return &ChatHistoryQuery{sessions: sessions, renderer: renderer}
}

var _ gocommand.Querier[ChatHistoryInput, ChatHistory] = (*ChatHistoryQuery)(nil)

// Query renders every message of the conversation.
func (q *ChatHistoryQuery) Query(_ context.Context, in ChatHistoryInput) (ChatHistory, error) {
	return RenderHistory(q.renderer, q.sessions.Session(in.Viewer.UserID).State())
}

// RenderHistory renders a conversation snapshot.
func RenderHistory(renderer *chat.Renderer, state chat.State) (ChatHistory, error) {
	messages, err := renderer.RenderAll(state.Messages)
	if err != nil {
		return ChatHistory{}, err
	}
	return ChatHistory{
		SessionID: state.SessionID,
		Open:      state.Open,
		Pending:   state.Pending,
		Messages:  messages,
		Version:   state.Version,
	}, nil
}
