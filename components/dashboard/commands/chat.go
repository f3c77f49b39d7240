package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	"github.com/goliatone/go-bizdash/components/chat"
	dashboard "github.com/goliatone/go-bizdash/components/dashboard"
)

// SendChatMessageInput sends a viewer's message to the assistant. State
// receives the conversation after the exchange when set.
type SendChatMessageInput struct {
	Viewer dashboard.ViewerContext
	Page   dashboard.PageCode
	Text   string
	State  *chat.State
}

type chatSessions interface {
	Session(viewerID string) *chat.Session
}

// SendChatMessageCommand routes messages to the viewer's chat session.
type SendChatMessageCommand struct {
	sessions  chatSessions
	service   notifier
	telemetry Telemetry
}

// NewSendChatMessageCommand creates the command.
func NewSendChatMessageCommand(sessions chatSessions, service notifier, telemetry Telemetry) *SendChatMessageCommand {
	return &SendChatMessageCommand{sessions: sessions, service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SendChatMessageInput] = (*SendChatMessageCommand)(nil)

// Execute sends the message. The conversation state is delivered even when
// the assistant fails, since the failure is part of the transcript.
func (c *SendChatMessageCommand) Execute(ctx context.Context, msg SendChatMessageInput) error {
	if c.sessions == nil {
		return errors.New("chat command requires sessions")
	}
	session := c.sessions.Session(msg.Viewer.UserID)
	if msg.Page != "" {
		if _, err := session.UpdateContext(ctx, map[string]any{"page": string(msg.Page)}); err != nil {
			return err
		}
	}
	state, err := session.SendMessage(ctx, msg.Text)
	if msg.State != nil {
		*msg.State = state
	}
	c.telemetry.Record(ctx, "bizdash.chat.message", map[string]any{
		"messages": len(state.Messages),
		"failed":   err != nil,
	})
	if err != nil {
		return err
	}
	if c.service == nil {
		return nil
	}
	return c.service.NotifyPageUpdated(ctx, dashboard.PageEvent{
		Kind:     dashboard.EventChatMessage,
		Page:     msg.Page,
		ViewerID: msg.Viewer.UserID,
		Payload:  map[string]any{"messages": len(state.Messages), "version": state.Version},
	})
}
