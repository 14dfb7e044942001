package telegram

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"

	"github.com/shlee-lab/telegram-simple-llm-bot/internal/domain"
)

// StartCommand is the command answered with the greeting.
const StartCommand = "start"

const defaultPollTimeout = 30

// DefaultShutdownGrace is how long in-flight events may keep running after
// Run's context is done.
const DefaultShutdownGrace = 10 * time.Second

// BotAPI is the part of *tgbotapi.BotAPI the adapter uses.
type BotAPI interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Responder answers dispatched events (implemented by usecase.Relay).
type Responder interface {
	Greet(ctx context.Context, ev domain.Event) error
	Reply(ctx context.Context, ev domain.Event) error
}

type Handler struct {
	bot         BotAPI
	responder   Responder
	logger      *slog.Logger
	pollTimeout int
	grace       time.Duration

	inflight sync.WaitGroup
}

func NewHandler(bot BotAPI, responder Responder, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		bot:         bot,
		responder:   responder,
		logger:      logger,
		pollTimeout: defaultPollTimeout,
		grace:       DefaultShutdownGrace,
	}
}

// SetPollTimeout sets the long-poll timeout in seconds.
func (h *Handler) SetPollTimeout(seconds int) { h.pollTimeout = seconds }

// SetShutdownGrace sets how long in-flight events keep their context after
// Run's context is done. Zero cancels them immediately.
func (h *Handler) SetShutdownGrace(d time.Duration) {
	if d >= 0 {
		h.grace = d
	}
}

// Run long-polls Telegram and dispatches every event on its own goroutine.
// It returns once ctx is done or the update channel closes, after the
// in-flight events have finished. Events still running when ctx is done
// are cancelled after the shutdown grace.
func (h *Handler) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = h.pollTimeout
	updates := h.bot.GetUpdatesChan(u)

	unitCtx, cancelUnits := context.WithCancel(context.WithoutCancel(ctx))
	defer cancelUnits()
	defer h.inflight.Wait()

	for {
		select {
		case <-ctx.Done():
			h.bot.StopReceivingUpdates()
			time.AfterFunc(h.grace, cancelUnits)
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			ev, ok := ToEvent(update)
			if !ok {
				continue
			}
			h.inflight.Add(1)
			go func() {
				defer h.inflight.Done()
				h.dispatch(unitCtx, ev)
			}()
		}
	}
}

// dispatch is the per-event boundary: nothing that happens here reaches the loop.
func (h *Handler) dispatch(ctx context.Context, ev domain.Event) {
	log := h.logger.With("request_id", uuid.NewString(), "chat_id", ev.ChatID, "kind", ev.Kind.String())
	defer func() {
		if r := recover(); r != nil {
			log.Error("event handler panicked", "panic", r)
		}
	}()

	var err error
	switch {
	case ev.Kind == domain.EventCommand && ev.Command == StartCommand:
		err = h.responder.Greet(ctx, ev)
	case ev.Kind == domain.EventText:
		err = h.responder.Reply(ctx, ev)
	default:
		log.Debug("event ignored", "command", ev.Command)
		return
	}
	if err != nil {
		log.Error("reply not delivered", "error", err)
		return
	}
	log.Debug("event handled")
}

// ToEvent maps a Telegram update to a domain event. Updates without a
// message, and messages with neither a command nor text, are dropped.
func ToEvent(update tgbotapi.Update) (domain.Event, bool) {
	m := update.Message
	if m == nil || m.Chat == nil {
		return domain.Event{}, false
	}
	ev := domain.Event{ChatID: m.Chat.ID}
	if m.From != nil {
		ev.SenderID = m.From.ID
	}
	if m.IsCommand() {
		ev.Kind = domain.EventCommand
		ev.Command = m.Command()
		ev.Text = m.CommandArguments()
		return ev, true
	}
	if strings.TrimSpace(m.Text) == "" {
		return domain.Event{}, false
	}
	ev.Kind = domain.EventText
	ev.Text = m.Text
	return ev, true
}

// Sender implements domain.MessageSender on top of the Bot API.
type Sender struct{ bot BotAPI }

func NewSender(bot BotAPI) *Sender { return &Sender{bot: bot} }

func (s *Sender) SendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := s.bot.Send(msg); err != nil {
		return &domain.DeliveryError{ChatID: chatID, Err: err}
	}
	return nil
}
