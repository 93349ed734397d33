package error_notificator

import (
	"context"
	"errors"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeSender struct {
	sent []tgbotapi.MessageConfig
	err  error
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if f.err != nil {
		return tgbotapi.Message{}, f.err
	}
	f.sent = append(f.sent, c.(tgbotapi.MessageConfig))
	return tgbotapi.Message{MessageID: len(f.sent)}, nil
}

func TestNotifySendsToAdminChat(t *testing.T) {
	bot := &fakeSender{}
	svc := NewService(NewTelegramInfra(bot, 777), nil)

	err := svc.Notify(context.Background(), errors.New("model down"), "request abc")
	require.NoError(t, err)

	require.Len(t, bot.sent, 1)
	assert.Equal(t, int64(777), bot.sent[0].ChatID)
	assert.Contains(t, bot.sent[0].Text, "model down")
	assert.Contains(t, bot.sent[0].Text, "request abc")
}

func TestNotifyFallsBackToLog(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)

	tests := []struct {
		name  string
		infra Notificator
	}{
		{"no infra", nil},
		{"bot not attached", NewTelegramInfra(nil, 777)},
		{"send fails", NewTelegramInfra(&fakeSender{err: errors.New("forbidden")}, 777)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logs.TakeAll()
			svc := NewService(tt.infra, zap.New(core))

			require.NoError(t, svc.Notify(context.Background(), errors.New("boom"), "details"))

			entries := logs.FilterMessage("operational error").All()
			require.Len(t, entries, 1)
			assert.Equal(t, "details", entries[0].ContextMap()["details"])
		})
	}
}

func TestSetBotAttachesLater(t *testing.T) {
	infra := NewTelegramInfra(nil, 5)
	require.Error(t, infra.Notify(context.Background(), errors.New("x"), ""))

	bot := &fakeSender{}
	infra.SetBot(bot)
	require.NoError(t, infra.Notify(context.Background(), errors.New("x"), ""))
	assert.Len(t, bot.sent, 1)
}
