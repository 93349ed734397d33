package error_notificator

import (
	"context"
	"errors"
	"fmt"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Sender is the part of *tgbotapi.BotAPI used for notifications.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

var errNoBot = errors.New("admin bot not configured")

// TelegramInfra sends notifications to an admin chat.
type TelegramInfra struct {
	mu     sync.RWMutex
	bot    Sender
	chatID int64
}

func NewTelegramInfra(bot Sender, chatID int64) *TelegramInfra {
	return &TelegramInfra{bot: bot, chatID: chatID}
}

// SetBot allows the bot to be attached after it has been initialized.
func (i *TelegramInfra) SetBot(bot Sender) {
	i.mu.Lock()
	i.bot = bot
	i.mu.Unlock()
}

func (i *TelegramInfra) Notify(ctx context.Context, err error, details string) error {
	i.mu.RLock()
	bot := i.bot
	i.mu.RUnlock()

	if bot == nil || i.chatID == 0 {
		return errNoBot
	}

	text := fmt.Sprintf("❗ pdf_vision error\n\nError: %v\n\nDetails: %s", err, details)
	if _, sendErr := bot.Send(tgbotapi.NewMessage(i.chatID, text)); sendErr != nil {
		return fmt.Errorf("send to admin chat: %w", sendErr)
	}
	return nil
}

// LogInfra writes notifications to the log only.
type LogInfra struct {
	log *zap.Logger
}

func NewLogInfra(log *zap.Logger) *LogInfra {
	return &LogInfra{log: log}
}

func (i *LogInfra) Notify(_ context.Context, err error, details string) error {
	i.log.Error("operational error", zap.Error(err), zap.String("details", details))
	return nil
}
