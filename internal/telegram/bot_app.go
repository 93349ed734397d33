package telegram

import (
	"context"
	"fmt"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/Vovarama1992/pdf_vision/internal/domain"
	"github.com/Vovarama1992/pdf_vision/internal/error_notificator"
)

// BotAPI is the subset of *tgbotapi.BotAPI the handlers use.
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
}

type Describer interface {
	Describe(ctx context.Context, req domain.DescribeRequest) (*domain.DescribeResult, error)
}

type BotApp struct {
	Describer   Describer
	ErrorNotify error_notificator.Notificator

	bot        *tgbotapi.BotAPI
	api        BotAPI
	httpClient *http.Client
	maxUpload  int64
	log        *zap.Logger
}

// NewBotApp logs in with token. maxUpload bounds accepted documents; zero
// means no limit beyond Telegram's own.
func NewBotApp(token string, svc Describer, notifier error_notificator.Notificator, maxUpload int64, log *zap.Logger) (*BotApp, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram login: %w", err)
	}

	app := newBotApp(bot, svc, notifier, maxUpload, log)
	app.bot = bot
	app.log.Info("telegram bot ready", zap.String("username", bot.Self.UserName))
	return app, nil
}

func newBotApp(api BotAPI, svc Describer, notifier error_notificator.Notificator, maxUpload int64, log *zap.Logger) *BotApp {
	if log == nil {
		log = zap.NewNop()
	}
	return &BotApp{
		Describer:   svc,
		ErrorNotify: notifier,
		api:         api,
		httpClient:  &http.Client{Timeout: 2 * time.Minute},
		maxUpload:   maxUpload,
		log:         log.Named("telegram"),
	}
}

// Bot exposes the logged in client, e.g. for the admin notifier.
func (app *BotApp) Bot() *tgbotapi.BotAPI {
	return app.bot
}

// Run processes updates until ctx is done.
func (app *BotApp) Run(ctx context.Context) {
	if app.bot == nil {
		return
	}
	app.runBotLoop(ctx, app.bot)
}
