// Package bot is the Telegram consumer of the pipeline: any text message is
// treated as a position query.
package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/Boniole/test-task-candidates-scraper/internal/pipeline"
)

const (
	// maxReplies caps how many resumes one query answers with, for readability.
	maxReplies = 5

	greetingMessage  = "Hello! Send me a job title, and I'll fetch resumes for you."
	noResumesMessage = "⚠️ <b>No resumes found for the given position.</b>"
)

// Runner is the part of the pipeline the bot needs.
type Runner interface {
	Run(ctx context.Context, query string) *pipeline.Result
}

type Bot struct {
	api    *tgbotapi.BotAPI
	runner Runner
	logger *zap.Logger
}

func New(token string, runner Runner, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}

	return &Bot{
		api:    api,
		runner: runner,
		logger: logger,
	}, nil
}

// Run polls for updates until the context is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 30

	updates := b.api.GetUpdatesChan(updateConfig)

	b.logger.Info("telegram bot started", zap.String("username", b.api.Self.UserName))

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil || strings.TrimSpace(update.Message.Text) == "" {
				continue
			}
			go b.handleMessage(ctx, update.Message)
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("message handling panicked", zap.Any("panic", r))
			b.reply(message, fmt.Sprintf("❌ <b>An error occurred:</b> %v", r))
		}
	}()

	text := strings.TrimSpace(message.Text)
	if text == "/start" {
		b.reply(message, greetingMessage)
		return
	}

	b.logger.Info("resumes requested via telegram", zap.String("position", text))
	b.reply(message, fmt.Sprintf("🔍 <b>Fetching resumes for:</b> %s", text))

	result := b.runner.Run(ctx, text)
	if result.Len() == 0 {
		b.reply(message, noResumesMessage)
		return
	}

	for _, resume := range result.Top(maxReplies) {
		b.reply(message, FormatResume(resume))
	}
}

func (b *Bot) reply(message *tgbotapi.Message, text string) {
	reply := tgbotapi.NewMessage(message.Chat.ID, text)
	reply.ParseMode = tgbotapi.ModeHTML
	reply.DisableWebPagePreview = true
	reply.ReplyToMessageID = message.MessageID

	if _, err := b.api.Send(reply); err != nil {
		b.logger.Warn("sending telegram reply failed", zap.Error(err))
	}
}
