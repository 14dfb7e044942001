//go:generate go run go.uber.org/mock/mockgen -source=ports.go -destination=../mocks/mock_ports.go -package=mocks
package domain

import "context"

// MessageSender delivers a text reply to a chat (implemented by the Telegram adapter).
type MessageSender interface {
	SendText(chatID int64, text string) error
}

// Completer turns a single prompt into a single completion.
type Completer interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
