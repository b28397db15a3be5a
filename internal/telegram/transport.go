// Package telegram adapts the chat platform's wire protocol to the bot core.
// The core only ever sees Inbound/Reply values; no Telegram types leak past
// this package.
package telegram

import (
	"context"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"git.home.luguber.info/inful/homebot/internal/bot"
	boterrors "git.home.luguber.info/inful/homebot/internal/errors"
	"git.home.luguber.info/inful/homebot/internal/logfields"
)

// Transport runs the long-polling loop against the Telegram Bot API.
type Transport struct {
	api     *tgbotapi.BotAPI
	service *bot.Service
}

// New authenticates against the Bot API.
func New(token string, service *bot.Service) (*Transport, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, boterrors.Wrap(err, boterrors.CategoryTransport, boterrors.SeverityFatal, "failed to create bot API client")
	}
	slog.Info("Telegram transport authorized", logfields.Username(api.Self.UserName))
	return &Transport{api: api, service: service}, nil
}

// Run polls for updates until the context is canceled. Messages are handled
// one at a time; the household is small and handlers are fast.
func (t *Transport) Run(ctx context.Context) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 30

	updates := t.api.GetUpdatesChan(cfg)

	for {
		select {
		case <-ctx.Done():
			t.api.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			t.handleUpdate(ctx, update)
		}
	}
}

func (t *Transport) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil || msg.Text == "" {
		return
	}

	in := bot.Inbound{
		UserID:    msg.From.ID,
		Username:  msg.From.UserName,
		FirstName: msg.From.FirstName,
		Text:      msg.Text,
		IsStart:   msg.IsCommand() && msg.Command() == "start",
	}

	reply := t.service.Handle(ctx, in)

	out := tgbotapi.NewMessage(msg.Chat.ID, reply.Text)
	out.ReplyMarkup = t.keyboard(reply.Keyboard)
	if reply.Markdown {
		out.ParseMode = tgbotapi.ModeMarkdown
	}

	if _, err := t.api.Send(out); err != nil {
		slog.Error("Failed to send reply",
			logfields.ChatID(msg.Chat.ID),
			logfields.UserID(msg.From.ID),
			logfields.Error(err))
	}
}

// keyboard renders the core's declarative layout as a reply keyboard.
func (t *Transport) keyboard(k bot.Keyboard) tgbotapi.ReplyKeyboardMarkup {
	rows := t.service.KeyboardRows(k)
	keyboardRows := make([][]tgbotapi.KeyboardButton, 0, len(rows))
	for _, row := range rows {
		buttons := make([]tgbotapi.KeyboardButton, 0, len(row))
		for _, text := range row {
			buttons = append(buttons, tgbotapi.NewKeyboardButton(text))
		}
		keyboardRows = append(keyboardRows, buttons)
	}
	markup := tgbotapi.NewReplyKeyboard(keyboardRows...)
	markup.ResizeKeyboard = true
	return markup
}
