package ports

import "context"

// Messenger delivers rendered text to a chat. Message ids are the ones
// assigned by the transport.
type Messenger interface {
	Send(ctx context.Context, chatID int64, text string) (int, error)
	Edit(ctx context.Context, chatID int64, messageID int, text string) error
	Delete(ctx context.Context, chatID int64, messageID int) error
	Pin(ctx context.Context, chatID int64, messageID int) error
}
