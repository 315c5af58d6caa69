package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// Messenger is a testify mock of ports.Messenger
type Messenger struct {
	mock.Mock
}

// NewMessenger creates a Messenger mock and asserts its expectations on cleanup
func NewMessenger(t interface {
	mock.TestingT
	Cleanup(func())
}) *Messenger {
	m := &Messenger{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *Messenger) Send(ctx context.Context, chatID int64, text string) (int, error) {
	args := m.Called(ctx, chatID, text)
	return args.Int(0), args.Error(1)
}

func (m *Messenger) Edit(ctx context.Context, chatID int64, messageID int, text string) error {
	args := m.Called(ctx, chatID, messageID, text)
	return args.Error(0)
}

func (m *Messenger) Delete(ctx context.Context, chatID int64, messageID int) error {
	args := m.Called(ctx, chatID, messageID)
	return args.Error(0)
}

func (m *Messenger) Pin(ctx context.Context, chatID int64, messageID int) error {
	args := m.Called(ctx, chatID, messageID)
	return args.Error(0)
}
