package testmode

import (
	"context"
	"sync"

	"weatherbot.app/internal/ports"
	"weatherbot.app/pkg/errors"
)

// LogMessenger logs messages instead of delivering them. Used in test mode
// when no bot token is configured.
type LogMessenger struct {
	mu     sync.Mutex
	nextID int
	texts  map[int]string
	pinned int
	logger ports.Logger
}

func NewLogMessenger(logger ports.Logger) *LogMessenger {
	return &LogMessenger{texts: make(map[int]string), logger: logger}
}

func (m *LogMessenger) Send(ctx context.Context, chatID int64, text string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	m.texts[m.nextID] = text
	m.logger.Info("Message sent", ports.F("chat_id", chatID), ports.F("message_id", m.nextID), ports.F("text", text))
	return m.nextID, nil
}

func (m *LogMessenger) Edit(ctx context.Context, chatID int64, messageID int, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.texts[messageID]; !ok {
		return errors.NewDispatchError("message to edit not found", nil)
	}
	m.texts[messageID] = text
	m.logger.Info("Message edited", ports.F("chat_id", chatID), ports.F("message_id", messageID), ports.F("text", text))
	return nil
}

func (m *LogMessenger) Delete(ctx context.Context, chatID int64, messageID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.texts[messageID]; !ok {
		return errors.NewDispatchError("message to delete not found", nil)
	}
	delete(m.texts, messageID)
	m.logger.Info("Message deleted", ports.F("chat_id", chatID), ports.F("message_id", messageID))
	return nil
}

func (m *LogMessenger) Pin(ctx context.Context, chatID int64, messageID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.texts[messageID]; !ok {
		return errors.NewDispatchError("message to pin not found", nil)
	}
	m.pinned = messageID
	m.logger.Info("Message pinned", ports.F("chat_id", chatID), ports.F("message_id", messageID))
	return nil
}

// Ping always succeeds
func (m *LogMessenger) Ping(ctx context.Context) error { return nil }

// Text returns the current text of a message, if it still exists
func (m *LogMessenger) Text(messageID int) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	text, ok := m.texts[messageID]
	return text, ok
}

func (m *LogMessenger) Pinned() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pinned
}
