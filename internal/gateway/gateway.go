// Package gateway abstracts the chat transport: outbound prompts and
// keyboards, inbound text/photo/callback events.
package gateway

import "context"

// EventKind is the shape of an inbound event
type EventKind string

const (
	EventText     EventKind = "text"
	EventPhoto    EventKind = "photo"
	EventCallback EventKind = "callback"
)

// Event is one inbound user action delivered by the transport.
type Event struct {
	UserID int64
	Kind   EventKind

	// Text of the message for text events
	Text string

	// PhotoFileID identifies the attachment of a photo event on the
	// transport side. The file is fetched only by a handler that actually
	// consumes it; stray photos never touch disk.
	PhotoFileID string

	// Callback fields: the tap's stable data identifier plus the message
	// that carried the inline keyboard, so handlers can edit it in place.
	CallbackID   string
	CallbackData string
	MessageID    int
	MessageText  string
}

// Button is one keyboard button. Data is set for inline buttons and empty
// for reply-keyboard buttons, whose press comes back as a plain text event.
type Button struct {
	Text string
	Data string
}

// Keyboard is a reply or inline keyboard attached to an outbound message
type Keyboard struct {
	Inline bool
	Rows   [][]Button
}

// Reply builds a reply keyboard from rows of button labels
func Reply(rows ...[]string) *Keyboard {
	kb := &Keyboard{}
	for _, row := range rows {
		buttons := make([]Button, 0, len(row))
		for _, label := range row {
			buttons = append(buttons, Button{Text: label})
		}
		kb.Rows = append(kb.Rows, buttons)
	}
	return kb
}

// Inline builds an inline keyboard from rows of buttons
func Inline(rows ...[]Button) *Keyboard {
	return &Keyboard{Inline: true, Rows: rows}
}

// Sender delivers outbound messages. Errors are surfaced to the caller and
// never retried here.
type Sender interface {
	SendText(ctx context.Context, chatID int64, text string, kb *Keyboard) error
	SendPhoto(ctx context.Context, chatID int64, photoPath, caption string, kb *Keyboard) error
	EditMessageText(ctx context.Context, chatID int64, messageID int, text string) error
	AnswerCallback(ctx context.Context, callbackID, text string) error
}

// PhotoFetcher downloads a photo attachment into local storage and returns
// its path.
type PhotoFetcher interface {
	FetchPhoto(ctx context.Context, fileID string) (string, error)
}
