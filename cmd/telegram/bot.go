// Package telegram runs the chat dispatcher as a Telegram bot using long polling.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/sync/errgroup"

	"github.com/lepinkainen/bookbot/internal/chat"
)

// ErrMissingToken is returned when no bot token is configured.
var ErrMissingToken = errors.New("telegram bot token is required (set TELEGRAM_BOT_TOKEN or telegram.token in config)")

// DefaultWorkers is how many updates are handled at once by default.
const DefaultWorkers = 4

// BotAPI is the subset of *tgbotapi.BotAPI the bot uses.
type BotAPI interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

var newBotAPI = func(token string) (BotAPI, string, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, "", err
	}
	return bot, bot.Self.UserName, nil
}

// Options configures Run.
type Options struct {
	Token       string
	Workers     int
	PollTimeout int
}

// Handler answers one chat message.
type Handler interface {
	Handle(ctx context.Context, text string, reply chat.Replier) error
}

// Run polls Telegram for updates until ctx is cancelled and hands every
// message to handler. At most opts.Workers messages are handled concurrently.
func Run(ctx context.Context, opts Options, handler Handler) error {
	if opts.Token == "" {
		return ErrMissingToken
	}
	if opts.Workers < 1 {
		opts.Workers = DefaultWorkers
	}

	bot, username, err := newBotAPI(opts.Token)
	if err != nil {
		return fmt.Errorf("failed to connect to telegram: %w", err)
	}
	slog.Info("Bot started", "username", username, "workers", opts.Workers)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = opts.PollTimeout
	updates := bot.GetUpdatesChan(u)

	var g errgroup.Group
	g.SetLimit(opts.Workers)

	for {
		select {
		case <-ctx.Done():
			slog.Info("Stopping bot")
			bot.StopReceivingUpdates()
			return g.Wait()
		case update, ok := <-updates:
			if !ok {
				return g.Wait()
			}
			if update.Message == nil || update.Message.Chat == nil {
				continue
			}
			msg := update.Message
			g.Go(func() error {
				handleMessage(ctx, bot, handler, msg)
				return nil
			})
		}
	}
}

func handleMessage(ctx context.Context, bot BotAPI, handler Handler, msg *tgbotapi.Message) {
	reply := func(_ context.Context, text string) error {
		out := tgbotapi.NewMessage(msg.Chat.ID, text)
		out.ReplyToMessageID = msg.MessageID
		if _, err := bot.Send(out); err != nil {
			return fmt.Errorf("sending reply to chat %d: %w", msg.Chat.ID, err)
		}
		return nil
	}

	err := handler.Handle(ctx, msg.Text, reply)
	switch {
	case err == nil:
	case errors.Is(err, chat.ErrNotCommand), errors.Is(err, chat.ErrUnknownCommand):
		slog.Debug("Ignoring message", "chat_id", msg.Chat.ID, "reason", err)
	default:
		slog.Error("Failed to handle message", "chat_id", msg.Chat.ID, "error", err)
	}
}
