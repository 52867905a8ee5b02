package tg

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"

	"github.com/Mathoholic/exchange-updater/internal/model/rates"
)

type config interface {
	Token() string
	ChatID() int64
}

// Client posts a run summary to a single chat.
type Client struct {
	client *tgbotapi.BotAPI
	chatID int64
}

func New(config config) (*Client, error) {
	client, err := tgbotapi.NewBotAPI(config.Token())
	if err != nil {
		return nil, errors.Wrap(err, "cannot NewBotApi")
	}
	return &Client{client: client, chatID: config.ChatID()}, nil
}

func (c *Client) NotifyUpdate(_ context.Context, summary rates.Summary) error {
	_, err := c.client.Send(tgbotapi.NewMessage(c.chatID, formatSummary(summary)))
	if err != nil {
		return errors.Wrap(err, "client.Send")
	}
	return nil
}

func formatSummary(summary rates.Summary) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s rates: %d added, %d skipped", summary.Base, len(summary.Added), len(summary.Skipped))
	if summary.Latest != "" {
		fmt.Fprintf(&sb, ", latest %s", summary.Latest)
	}
	if len(summary.Skipped) > 0 {
		fmt.Fprintf(&sb, "\nskipped: %s", strings.Join(summary.Skipped, ", "))
	}
	return sb.String()
}
