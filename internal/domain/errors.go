package domain

import (
	"errors"
	"fmt"
)

// ConfigError reports missing or invalid startup configuration. It is fatal.
type ConfigError struct {
	Key string
	Err error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config %s: %v", e.Key, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// LLMCallError reports a failed, timed out or unusable completion.
type LLMCallError struct {
	Err error
}

func (e *LLMCallError) Error() string {
	return fmt.Sprintf("llm call: %v", e.Err)
}

func (e *LLMCallError) Unwrap() error { return e.Err }

// DeliveryError reports that a reply could not be sent back to the chat.
type DeliveryError struct {
	ChatID int64
	Err    error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("deliver to chat %d: %v", e.ChatID, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

// ErrEmptyCompletion is returned when the model answers without any text.
var ErrEmptyCompletion = errors.New("completion has no text")
