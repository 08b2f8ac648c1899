// Package bot handles inbound Telegram commands: subscribing, unsubscribing,
// status and adding search sources at runtime.
package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"mkowalczyk/olxwatch/internal/notify"
	"mkowalczyk/olxwatch/internal/store"
	"mkowalczyk/olxwatch/logger"
)

const pollTimeoutSeconds = 30

// UpdatesClient is the Telegram surface the bot needs
type UpdatesClient interface {
	notify.Sender
	GetUpdates(ctx context.Context, offset int64, timeoutSeconds int) ([]notify.Update, error)
}

// SourceAdder lets the bot append a search source at runtime
type SourceAdder interface {
	AddSource(url string)
}

// Bot dispatches inbound commands to the stores and the worker
type Bot struct {
	client      UpdatesClient
	subscribers *store.SubscriberStore
	seen        *store.SeenStore
	sources     SourceAdder
	log         *logger.Logger
}

// New creates a command bot
func New(client UpdatesClient, subscribers *store.SubscriberStore, seen *store.SeenStore, sources SourceAdder) *Bot {
	return &Bot{
		client:      client,
		subscribers: subscribers,
		seen:        seen,
		sources:     sources,
		log:         logger.ForBot(),
	}
}

// Run long-polls for updates until the context is cancelled
func (b *Bot) Run(ctx context.Context) {
	var offset int64
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		updates, err := b.client.GetUpdates(ctx, offset, pollTimeoutSeconds)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			b.log.Warn().Err(err).Msg("Failed to poll updates")
			time.Sleep(3 * time.Second)
			continue
		}

		for _, update := range updates {
			if update.UpdateID >= offset {
				offset = update.UpdateID + 1
			}
			b.Handle(ctx, update)
		}
	}
}

// Handle dispatches one update
func (b *Bot) Handle(ctx context.Context, update notify.Update) {
	if update.Message == nil {
		return
	}

	chatID := update.Message.Chat.ID
	command, args := splitCommand(update.Message.Text)

	switch command {
	case "/start":
		b.handleStart(ctx, chatID)
	case "/stop":
		b.handleStop(ctx, chatID)
	case "/status":
		b.handleStatus(ctx, chatID)
	case "/addquery":
		b.handleAddQuery(ctx, chatID, args)
	}
}

func (b *Bot) handleStart(ctx context.Context, chatID int64) {
	added, err := b.subscribers.Add(chatID)
	if err != nil {
		b.log.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to persist subscription")
	}
	if added {
		b.reply(ctx, chatID, "Subskrypcja aktywowana. Będziesz otrzymywać powiadomienia o nowych ofertach.")
	} else {
		b.reply(ctx, chatID, "Już jesteś subskrybentem.")
	}
}

func (b *Bot) handleStop(ctx context.Context, chatID int64) {
	removed, err := b.subscribers.Remove(chatID)
	if err != nil {
		b.log.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to persist unsubscription")
	}
	if removed {
		b.reply(ctx, chatID, "Subskrypcja została wyłączona.")
	} else {
		b.reply(ctx, chatID, "Nie byłeś subskrybentem.")
	}
}

func (b *Bot) handleStatus(ctx context.Context, chatID int64) {
	b.reply(ctx, chatID, fmt.Sprintf("Zapisane oferty: %d\nSubskrybentów: %d",
		b.seen.Count(), b.subscribers.Count()))
}

func (b *Bot) handleAddQuery(ctx context.Context, chatID int64, args string) {
	if args == "" {
		b.reply(ctx, chatID, "Użycie: /addquery <url lub fraza wyszukiwania>")
		return
	}
	b.sources.AddSource(args)
	b.reply(ctx, chatID, fmt.Sprintf("Dodano zapytanie: %s. Restart bota nie jest wymagany.", args))
}

func (b *Bot) reply(ctx context.Context, chatID int64, text string) {
	if err := b.client.SendMessage(ctx, chatID, text); err != nil {
		b.log.Warn().Err(err).Int64("chat_id", chatID).Msg("Failed to send reply")
	}
}

// splitCommand separates the command word from its arguments, stripping a
// trailing @botname from the command.
func splitCommand(text string) (string, string) {
	text = strings.TrimSpace(text)
	command, args, _ := strings.Cut(text, " ")
	command, _, _ = strings.Cut(command, "@")
	return command, strings.TrimSpace(args)
}
