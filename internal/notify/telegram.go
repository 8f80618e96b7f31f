package notify

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"nba_props/refresh/internal/models"
)

// Sender is the subset of the bot API used to post a message.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramSink posts a plain-text summary of the edges to one chat.
type TelegramSink struct {
	bot    Sender
	chatID int64
}

// NewTelegramSink creates a sink over an existing sender.
func NewTelegramSink(bot Sender, chatID int64) *TelegramSink {
	return &TelegramSink{bot: bot, chatID: chatID}
}

// DialTelegram authenticates the bot token against the Telegram API.
func DialTelegram(token string, chatID int64) (*TelegramSink, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	bot.Debug = false
	return NewTelegramSink(bot, chatID), nil
}

func (s *TelegramSink) Name() string { return "telegram" }

// Notify sends the summary. An empty result still sends a short notice.
func (s *TelegramSink) Notify(ctx context.Context, records []models.EdgeRecord, _ []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(s.chatID, Summary(records))
	msg.DisableWebPagePreview = true

	if _, err := s.bot.Send(msg); err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	return nil
}

// Summary renders records as plain text, one edge per line.
func Summary(records []models.EdgeRecord) string {
	if len(records) == 0 {
		return "NBA points props: no edges today."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "NBA points props: top %d edges\n", len(records))
	for i, r := range records {
		fmt.Fprintf(&b, "%d. %s (%s) %s mu %.1f edge %+.1f %s conf %d",
			i+1, r.Player, r.Game, r.Prop, r.PredictedValue, r.Edge, r.Side, r.Confidence)
		if r.Book != "" {
			fmt.Fprintf(&b, " [%s]", r.Book)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
