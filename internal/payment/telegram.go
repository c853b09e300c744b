package payment

import (
	"encoding/base64"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramBot sends donation receipts and builds deep links into the payment
// bot chat.
type TelegramBot struct {
	bot *tgbotapi.BotAPI
}

func NewTelegramBot(token string) (*TelegramBot, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize bot: %w", err)
	}
	return &TelegramBot{bot: bot}, nil
}

// PaymentLink returns a t.me deep link opening the bot chat with the donation
// amount encoded in the start payload.
func (t *TelegramBot) PaymentLink(telegramID int64, amount int64) string {
	payload := base64.URLEncoding.EncodeToString(
		[]byte(fmt.Sprintf("%d:%d", telegramID, amount)))
	return fmt.Sprintf("https://t.me/%s?start=%s", t.bot.Self.UserName, payload)
}

func (t *TelegramBot) SendReceipt(telegramID int64, amount int64) error {
	msg := tgbotapi.NewMessage(telegramID,
		fmt.Sprintf("Платёж на %d ₽ успешно выполнен! Спасибо за поддержку.", amount))
	_, err := t.bot.Send(msg)
	return err
}
