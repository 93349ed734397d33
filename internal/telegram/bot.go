package telegram

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const (
	helpText = "Send me a PDF and I will describe the images inside it.\n" +
		"Put your question in the file caption to use it as the prompt."
	notPDFText = "📄 Please send a PDF document."
)

// runBotLoop is the main update loop.
func (app *BotApp) runBotLoop(ctx context.Context, bot *tgbotapi.BotAPI) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30

	updates := bot.GetUpdatesChan(u)
	app.log.Info("bot loop started", zap.String("username", bot.Self.UserName))

	for {
		select {
		case <-ctx.Done():
			bot.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil {
				continue
			}
			// one slow model call must not block the other chats
			go app.handleMessage(ctx, update.Message)
		}
	}
}

func (app *BotApp) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	if d := msg.Document; d != nil {
		if isPDF(d) {
			app.handlePDF(ctx, msg)
			return
		}
		app.reply(chatID, notPDFText)
		return
	}

	switch {
	case msg.IsCommand() && (msg.Command() == "start" || msg.Command() == "help"):
		app.reply(chatID, helpText)
	default:
		app.reply(chatID, notPDFText+"\n\n"+helpText)
	}
}

func isPDF(d *tgbotapi.Document) bool {
	return d.MimeType == "application/pdf" || strings.HasSuffix(strings.ToLower(d.FileName), ".pdf")
}

func (app *BotApp) reply(chatID int64, text string) {
	if _, err := app.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		app.log.Warn("send failed", zap.Int64("chat", chatID), zap.Error(err))
	}
}
