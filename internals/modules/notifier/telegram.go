package notifier

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"watchpost/config"
	"watchpost/internals/modules/event"
)

// TelegramNotifier sends events to a chat via the Bot API, using HTML parse
// mode for the markup.
type TelegramNotifier struct {
	bot    *bot.Bot
	chatID string
}

func NewTelegramNotifier(cfg config.TelegramConfig, opts ...bot.Option) (*TelegramNotifier, error) {
	opts = append([]bot.Option{bot.WithSkipGetMe()}, opts...)
	b, err := bot.New(cfg.Token, opts...)
	if err != nil {
		return nil, err
	}
	return &TelegramNotifier{bot: b, chatID: cfg.ChatID}, nil
}

func (n *TelegramNotifier) Name() string { return "telegram" }

func (n *TelegramNotifier) Notify(ctx context.Context, ev event.Emitted) error {
	var text string
	switch e := ev.(type) {
	case event.RedirectEvent:
		text = RenderRedirect(telegramFormatter{}, e)
	case event.Transition:
		text = RenderText(telegramFormatter{}, e)
	default:
		return nil
	}

	_, err := n.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    n.chatID,
		Text:      text,
		ParseMode: models.ParseModeHTML,
		LinkPreviewOptions: &models.LinkPreviewOptions{
			IsDisabled: bot.True(),
		},
	})
	return err
}
