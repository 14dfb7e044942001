package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/shlee-lab/telegram-simple-llm-bot/internal/domain"
)

// Fixed replies, independent of Telegram.
const (
	GreetingText  = "Hello! I am an LLM-based chatbot using Google Gemini. Ask me anything."
	RejectionText = "Sorry, you are not authorized to use this bot."
	FallbackText  = "Sorry, I couldn't process that right now. Please try again later."
)

const DefaultLLMTimeout = 30 * time.Second

const tracerName = "github.com/shlee-lab/telegram-simple-llm-bot/internal/usecase"

// Relay answers inbound events: a greeting for the start command and a
// single-turn LLM completion for plain text.
type Relay struct {
	llm     domain.Completer
	sender  domain.MessageSender
	auth    Authorizer
	timeout time.Duration
	logger  *slog.Logger
	tracer  trace.Tracer
}

type RelayOption func(*Relay)

// WithAuthorizer gates Reply behind a. Without it every sender reaches the LLM.
func WithAuthorizer(a Authorizer) RelayOption {
	return func(r *Relay) { r.auth = a }
}

func WithTimeout(d time.Duration) RelayOption {
	return func(r *Relay) {
		if d > 0 {
			r.timeout = d
		}
	}
}

func WithLogger(l *slog.Logger) RelayOption {
	return func(r *Relay) {
		if l != nil {
			r.logger = l
		}
	}
}

func NewRelay(llm domain.Completer, sender domain.MessageSender, opts ...RelayOption) *Relay {
	r := &Relay{
		llm:     llm,
		sender:  sender,
		timeout: DefaultLLMTimeout,
		logger:  slog.Default(),
		tracer:  otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Greet sends the fixed greeting. It never consults the authorizer.
func (r *Relay) Greet(_ context.Context, ev domain.Event) error {
	return r.send(ev.ChatID, GreetingText)
}

// Reply forwards ev.Text to the LLM and sends the completion back.
// LLM failures end in FallbackText and are not returned; only a
// *domain.DeliveryError can come out of here.
func (r *Relay) Reply(ctx context.Context, ev domain.Event) error {
	log := r.logger.With("chat_id", ev.ChatID, "sender_id", ev.SenderID)

	if r.auth != nil && !r.auth.IsAuthorized(ev.SenderID) {
		log.Warn("sender not in allow-list")
		return r.send(ev.ChatID, RejectionText)
	}

	text, err := r.generate(ctx, ev.Text)
	if err != nil {
		log.Error("llm call failed", "error", err)
		return r.send(ev.ChatID, FallbackText)
	}
	log.Info("llm replied", "prompt_len", len(ev.Text), "reply_len", len(text))
	return r.send(ev.ChatID, text)
}

type completion struct {
	text string
	err  error
}

// generate bounds the call by r.timeout even if the completer ignores ctx.
// A completer that returns after the deadline has its result dropped. A
// panicking completer is reported as an *domain.LLMCallError.
func (r *Relay) generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	ctx, span := r.tracer.Start(ctx, "llm.generate",
		trace.WithAttributes(attribute.Int("prompt.length", len(prompt))))
	defer span.End()

	done := make(chan completion, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- completion{err: fmt.Errorf("completer panicked: %v", p)}
			}
		}()
		text, err := r.llm.Generate(ctx, prompt)
		done <- completion{text: text, err: err}
	}()

	var res completion
	select {
	case res = <-done:
	case <-ctx.Done():
		res.err = ctx.Err()
	}

	if res.err == nil && strings.TrimSpace(res.text) == "" {
		res.err = domain.ErrEmptyCompletion
	}
	if res.err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			res.err = fmt.Errorf("no answer within %s: %w", r.timeout, res.err)
		}
		span.RecordError(res.err)
		span.SetStatus(codes.Error, "llm call failed")
		return "", &domain.LLMCallError{Err: res.err}
	}
	span.SetAttributes(attribute.Int("completion.length", len(res.text)))
	return res.text, nil
}

func (r *Relay) send(chatID int64, text string) error {
	err := r.sender.SendText(chatID, text)
	if err == nil {
		return nil
	}
	var de *domain.DeliveryError
	if errors.As(err, &de) {
		return err
	}
	return &domain.DeliveryError{ChatID: chatID, Err: err}
}
