package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/dustin/go-humanize"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/Vovarama1992/pdf_vision/internal/domain"
	"github.com/Vovarama1992/pdf_vision/internal/pdf"
)

// maxMessageRunes is Telegram's limit for one text message.
const maxMessageRunes = 4096

func (app *BotApp) handlePDF(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	d := msg.Document
	log := app.log.With(zap.Int64("chat", chatID), zap.String("file", d.FileName))

	log.Info("pdf received", zap.String("mime", d.MimeType), zap.String("size", humanize.IBytes(uint64(d.FileSize))))

	if app.maxUpload > 0 && int64(d.FileSize) > app.maxUpload {
		app.reply(chatID, "⚠️ The PDF is too large. Limit is "+humanize.IBytes(uint64(app.maxUpload))+".")
		return
	}

	// 1. download
	url, err := app.api.GetFileDirectURL(d.FileID)
	if err != nil {
		log.Warn("get file failed", zap.Error(err))
		app.reply(chatID, "⚠️ Could not get the PDF.")
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		app.reply(chatID, "⚠️ Could not download the PDF.")
		return
	}
	resp, err := app.httpClient.Do(req)
	if err != nil {
		log.Warn("download failed", zap.Error(err))
		app.reply(chatID, "⚠️ Could not download the PDF.")
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		log.Warn("download failed", zap.Int("status", resp.StatusCode))
		app.reply(chatID, "⚠️ Could not download the PDF.")
		return
	}

	// 2. describe
	thinking := tgbotapi.NewMessage(chatID, "🤖 Reading the PDF…")
	thinking.ReplyToMessageID = msg.MessageID
	sentThinking, thinkErr := app.api.Send(thinking)
	defer func() {
		if thinkErr == nil {
			app.api.Request(tgbotapi.NewDeleteMessage(chatID, sentThinking.MessageID))
		}
	}()

	res, err := app.Describer.Describe(ctx, domain.DescribeRequest{
		Source:   domain.SourceTelegram,
		FileName: d.FileName,
		Prompt:   msg.Caption,
		PDF:      resp.Body,
	})
	if err != nil {
		log.Warn("describe failed", zap.Error(err))
		app.reply(chatID, userError(err))
		return
	}

	// 3. answer
	for _, part := range splitMessage(res.Response, maxMessageRunes) {
		app.reply(chatID, part)
	}
	if res.Skipped > 0 {
		app.reply(chatID, fmt.Sprintf("ℹ️ %d image(s) could not be decoded and were skipped.", res.Skipped))
	}

	log.Info("pdf answered", zap.String("request_id", res.RequestID), zap.Int("images", res.Images))
}

func userError(err error) string {
	var malformed *pdf.MalformedInputError
	switch {
	case errors.Is(err, domain.ErrNoImages):
		return "🖼 No images found in the PDF."
	case errors.As(err, &malformed):
		return "⚠️ This file is not a readable PDF."
	case errors.Is(err, pdf.ErrTooLarge):
		return "⚠️ The PDF is too large."
	}
	return "⚠️ An error occurred while processing the PDF."
}

// splitMessage cuts text into parts of at most limit runes, preferring line
// breaks.
func splitMessage(text string, limit int) []string {
	runes := []rune(text)
	if len(runes) == 0 {
		return []string{"(empty response)"}
	}

	var parts []string
	for len(runes) > limit {
		cut := limit
		for i := limit; i > limit/2; i-- {
			if runes[i-1] == '\n' {
				cut = i
				break
			}
		}
		parts = append(parts, string(runes[:cut]))
		runes = runes[cut:]
	}
	return append(parts, string(runes))
}
