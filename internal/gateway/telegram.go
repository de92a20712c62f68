package gateway

import (
	"context"
	"fmt"
	"log"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/mxsafiri/ubongo.os/internal/agent"
)

// TelegramGateway runs the assistant behind a Telegram bot. Each chat is
// its own session, so follow-ups like "move it to Documents" resolve
// against that chat's history only.
type TelegramGateway struct {
	Bot       *tgbotapi.BotAPI
	Assistant *agent.Assistant
}

func NewTelegramGateway(token string, assistant *agent.Assistant) (*TelegramGateway, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	log.Printf("Authorized on account %s", bot.Self.UserName)

	return &TelegramGateway{
		Bot:       bot,
		Assistant: assistant,
	}, nil
}

func (tg *TelegramGateway) Start() error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := tg.Bot.GetUpdatesChan(u)

	for update := range updates {
		if update.Message == nil || update.Message.Text == "" {
			continue
		}

		log.Printf("[%s] %s", update.Message.From.UserName, update.Message.Text)

		text := update.Message.Text
		sessionID := fmt.Sprintf("telegram:%d", update.Message.Chat.ID)

		var reply string
		if strings.HasPrefix(text, "/") {
			reply = tg.handleCommand(text)
		} else {
			report, err := tg.Assistant.Handle(context.Background(), sessionID, text)
			reply = FormatReply(report, err)
		}

		msg := tgbotapi.NewMessage(update.Message.Chat.ID, reply)
		if _, err := tg.Bot.Send(msg); err != nil {
			log.Printf("send failed: %v", err)
		}
	}
	return nil
}

func (tg *TelegramGateway) handleCommand(text string) string {
	switch strings.Fields(text)[0] {
	case "/start", "/help":
		return "Tell me what to do in plain words, for example:\n" +
			"- create a folder called Projects on my desktop\n" +
			"- organize my downloads\n" +
			"- how much disk space do I have"
	default:
		return "Unknown command. Try /help."
	}
}

func (tg *TelegramGateway) Send(chatID string, text string) error {
	id := 0
	fmt.Sscanf(chatID, "%d", &id)
	if id == 0 {
		return fmt.Errorf("invalid chat ID: %s", chatID)
	}

	msg := tgbotapi.NewMessage(int64(id), text)
	_, err := tg.Bot.Send(msg)
	return err
}

func (tg *TelegramGateway) Stop() error {
	tg.Bot.StopReceivingUpdates()
	return nil
}
