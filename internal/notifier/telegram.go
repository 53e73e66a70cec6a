package notifier

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog/log"
)

const pollTimeout = 30 * time.Second

// CommandHandler is called when a user command is received.
type CommandHandler func(command string) string

// TelegramNotifier sends messages via the Telegram Bot API.
type TelegramNotifier struct {
	bot       *bot.Bot
	chatID    string
	retryBase time.Duration
}

type TelegramOptions struct {
	BotToken  string
	ChatID    string
	ProxyURL  string
	ServerURL string // overrides api.telegram.org, used by tests
}

// NewTelegramNotifier creates a notifier with optional proxy support.
func NewTelegramNotifier(opts TelegramOptions) (*TelegramNotifier, error) {
	transport := &http.Transport{}
	if opts.ProxyURL != "" {
		if u, err := url.Parse(opts.ProxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	client := &http.Client{
		Timeout:   pollTimeout + 5*time.Second,
		Transport: transport,
	}

	botOpts := []bot.Option{
		bot.WithSkipGetMe(),
		bot.WithHTTPClient(pollTimeout, client),
		bot.WithDefaultHandler(func(context.Context, *bot.Bot, *models.Update) {}),
	}
	if opts.ServerURL != "" {
		botOpts = append(botOpts, bot.WithServerURL(opts.ServerURL))
	}

	b, err := bot.New(opts.BotToken, botOpts...)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	return &TelegramNotifier{bot: b, chatID: opts.ChatID, retryBase: time.Second}, nil
}

// Send sends a message to the configured chat.
func (t *TelegramNotifier) Send(ctx context.Context, text string) error {
	return t.sendTo(ctx, t.chatID, text)
}

func (t *TelegramNotifier) sendTo(ctx context.Context, chatID any, text string) error {
	_, err := t.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      text,
		ParseMode: models.ParseModeHTML,
	})
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

// SendWithRetry sends a message with exponential backoff retry.
func (t *TelegramNotifier) SendWithRetry(ctx context.Context, text string, maxRetries int) error {
	var lastErr error
	for i := 0; i <= maxRetries; i++ {
		if err := t.Send(ctx, text); err != nil {
			lastErr = err
			backoff := time.Duration(1<<uint(i)) * t.retryBase
			log.Warn().Err(err).Str("component", "notifier").
				Int("attempt", i+1).Int("max", maxRetries+1).Dur("backoff", backoff).
				Msg("telegram send failed, retrying")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
				continue
			}
		}
		return nil
	}
	return fmt.Errorf("all %d retries exhausted: %w", maxRetries+1, lastErr)
}

// StartPolling long-polls for commands and replies in the chat they came from.
// Blocks until ctx is cancelled.
func (t *TelegramNotifier) StartPolling(ctx context.Context, handler CommandHandler) {
	t.bot.RegisterHandler(bot.HandlerTypeMessageText, "/", bot.MatchTypePrefix,
		func(ctx context.Context, _ *bot.Bot, update *models.Update) {
			if update.Message == nil {
				return
			}
			text := strings.TrimSpace(update.Message.Text)
			log.Info().Str("component", "notifier").Str("command", text).Msg("received command")
			reply := handler(text)
			if reply == "" {
				return
			}
			if err := t.sendTo(ctx, update.Message.Chat.ID, reply); err != nil {
				log.Error().Err(err).Str("component", "notifier").Msg("send reply")
			}
		})

	t.bot.Start(ctx)
	log.Info().Str("component", "notifier").Msg("telegram polling stopped")
}
