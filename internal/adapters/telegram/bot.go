package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/Zinko5/newsbot/internal/adapters/config"
	"github.com/Zinko5/newsbot/pkg/logger"
)

// Telegram cuts messages above 4096 chars; stay under it
const maxMessageChars = 4000

// Answerer produces an answer for a question within a session
type Answerer interface {
	Answer(ctx context.Context, question, sessionID string) string
}

// Bot represents the Telegram front-end of the assistant
type Bot struct {
	api      *tgbotapi.BotAPI
	answerer Answerer
}

// NewBot creates new Telegram bot
func NewBot(cfg *config.TelegramConfig, answerer Answerer) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	logger.Info("telegram bot initialized",
		zap.String("username", api.Self.UserName),
	)

	return &Bot{
		api:      api,
		answerer: answerer,
	}, nil
}

// Start starts long polling for messages
func (b *Bot) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	logger.Info("telegram bot started, listening for messages")

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return ctx.Err()
		case update := <-updates:
			if update.Message == nil || update.Message.Text == "" {
				continue
			}

			go b.handleMessage(ctx, update.Message)
		}
	}
}

// handleMessage answers a single incoming message
func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID

	logger.Debug("received telegram message",
		zap.Int64("chat_id", chatID),
		zap.Int("length", len(message.Text)),
	)

	if message.IsCommand() {
		b.handleCommand(message)
		return
	}

	// Show "typing..." while the answer is prepared
	b.api.Send(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping))

	answer := b.answerer.Answer(ctx, message.Text, sessionID(chatID))
	b.reply(chatID, answer)
}

func (b *Bot) handleCommand(message *tgbotapi.Message) {
	switch message.Command() {
	case "start":
		b.reply(message.Chat.ID, welcomeMessage)
	default:
		b.reply(message.Chat.ID, "❓ Solo entiendo /start y preguntas en texto. Pregúntame sobre las noticias de hoy.")
	}
}

func (b *Bot) reply(chatID int64, text string) {
	if runes := []rune(text); len(runes) > maxMessageChars {
		text = string(runes[:maxMessageChars]) + "..."
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown

	if _, err := b.api.Send(msg); err != nil {
		// Markdown parse failures are common with scraped titles;
		// retry as plain text before giving up
		msg.ParseMode = ""
		if _, err := b.api.Send(msg); err != nil {
			logger.Error("failed to send telegram message",
				zap.Int64("chat_id", chatID),
				zap.Error(err),
			)
		}
	}
}

// sessionID derives the conversation key for a chat
func sessionID(chatID int64) string {
	return fmt.Sprintf("tg:%d", chatID)
}

const welcomeMessage = `¡Hola! 👋 Soy tu asistente de noticias bolivianas.

Leo las últimas noticias de El Deber y puedo:
• Buscar noticias sobre cualquier tema
• Contarte qué noticias son positivas o negativas
• Darte el clima de las capitales del país

Pregúntame, por ejemplo: "¿qué pasó en la economía?"`
