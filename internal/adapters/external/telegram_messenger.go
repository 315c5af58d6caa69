package external

import (
	"context"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"weatherbot.app/internal/ports"
	"weatherbot.app/pkg/errors"
)

const notModified = "message is not modified"

// TelegramMessenger implements the Messenger port over the Bot API.
// Messages are sent in HTML parse mode.
type TelegramMessenger struct {
	api    *tgbotapi.BotAPI
	logger ports.Logger
}

// TelegramMessengerParams holds parameters for creating the messenger
type TelegramMessengerParams struct {
	Token       string
	APIEndpoint string
	Timeout     time.Duration
	Client      tgbotapi.HTTPClient
	Logger      ports.Logger
}

// NewTelegramMessenger authenticates the token with getMe before returning
func NewTelegramMessenger(params TelegramMessengerParams) (*TelegramMessenger, error) {
	if params.Token == "" {
		return nil, errors.NewConfigurationError("telegram bot token is required", nil)
	}
	endpoint := params.APIEndpoint
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}
	client := params.Client
	if client == nil {
		timeout := params.Timeout
		if timeout <= 0 {
			timeout = defaultRequestTimeout
		}
		client = &http.Client{Timeout: timeout}
	}

	api, err := tgbotapi.NewBotAPIWithClient(params.Token, endpoint, client)
	if err != nil {
		return nil, errors.NewUnavailableError("failed to authorize telegram bot", err)
	}

	if params.Logger != nil {
		params.Logger.Info("Telegram bot authorized", ports.F("username", api.Self.UserName))
	}
	return &TelegramMessenger{api: api, logger: params.Logger}, nil
}

func (m *TelegramMessenger) Send(ctx context.Context, chatID int64, text string) (int, error) {
	if err := validateMessage(ctx, chatID, text); err != nil {
		return 0, err
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	sent, err := m.api.Send(msg)
	if err != nil {
		return 0, errors.NewDispatchError("failed to send telegram message", err)
	}
	return sent.MessageID, nil
}

// Edit replaces the text of a sent message. Telegram rejects edits that
// leave the text unchanged; those count as success.
func (m *TelegramMessenger) Edit(ctx context.Context, chatID int64, messageID int, text string) error {
	if err := validateMessage(ctx, chatID, text); err != nil {
		return err
	}
	if messageID <= 0 {
		return errors.NewValidationError("message id must be positive")
	}

	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = tgbotapi.ModeHTML
	if _, err := m.api.Request(edit); err != nil {
		if strings.Contains(err.Error(), notModified) {
			return nil
		}
		return errors.NewDispatchError("failed to edit telegram message", err)
	}
	return nil
}

func (m *TelegramMessenger) Delete(ctx context.Context, chatID int64, messageID int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if messageID <= 0 {
		return errors.NewValidationError("message id must be positive")
	}

	if _, err := m.api.Request(tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
		return errors.NewDispatchError("failed to delete telegram message", err)
	}
	return nil
}

// Pin pins silently, without notifying chat members
func (m *TelegramMessenger) Pin(ctx context.Context, chatID int64, messageID int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if messageID <= 0 {
		return errors.NewValidationError("message id must be positive")
	}

	pin := tgbotapi.PinChatMessageConfig{
		ChatID:              chatID,
		MessageID:           messageID,
		DisableNotification: true,
	}
	if _, err := m.api.Request(pin); err != nil {
		return errors.NewDispatchError("failed to pin telegram message", err)
	}
	return nil
}

// Ping verifies the token is still accepted
func (m *TelegramMessenger) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := m.api.GetMe(); err != nil {
		return errors.NewUnavailableError("telegram getMe failed", err)
	}
	return nil
}

func validateMessage(ctx context.Context, chatID int64, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if chatID == 0 {
		return errors.NewValidationError("chat id cannot be zero")
	}
	if strings.TrimSpace(text) == "" {
		return errors.NewValidationError("message text cannot be empty")
	}
	return nil
}
