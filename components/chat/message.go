// Package chat holds the assistant panel: the message model, a reducer
// store, the session that talks to the chat transport and the message
// renderer.
package chat

import (
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-bizdash/components/dashboard"
)

// Sender identifies who wrote a message.
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
	SenderSystem    Sender = "system"
)

// Message is one entry of the conversation. Chart and Table are optional
// attachments and independent of each other.
type Message struct {
	ID          string           `json:"id"`
	Sender      Sender           `json:"sender"`
	Text        string           `json:"text"`
	Timestamp   time.Time        `json:"timestamp"`
	Chart       *ChartAttachment `json:"chart,omitempty"`
	Table       *TableAttachment `json:"table,omitempty"`
	Suggestions []string         `json:"suggestions,omitempty"`
}

// ChartAttachment is a chart embedded in a message.
type ChartAttachment struct {
	Type   dashboard.ChartType    `json:"type"`
	Title  string                 `json:"title,omitempty"`
	Data   []map[string]any       `json:"data"`
	XKey   string                 `json:"xKey,omitempty"`
	Series []dashboard.SeriesSpec `json:"series,omitempty"`
	Layout dashboard.ChartLayout  `json:"layout,omitempty"`
}

// TableAttachment is a table embedded in a message. Rows are either arrays
// of cells or objects keyed by header.
type TableAttachment struct {
	Title   string   `json:"title,omitempty"`
	Headers []string `json:"headers,omitempty"`
	Rows    []any    `json:"rows"`
}

// NewMessage builds a message with a fresh id.
func NewMessage(sender Sender, text string, at time.Time) Message {
	return Message{
		ID:        uuid.NewString(),
		Sender:    sender,
		Text:      text,
		Timestamp: at,
	}
}

// normalize fills the id, sender and timestamp a transport may omit.
func (m Message) normalize(fallback Sender, now time.Time) Message {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.Sender == "" {
		m.Sender = fallback
	}
	if m.Timestamp.IsZero() {
		m.Timestamp = now
	}
	return m
}
