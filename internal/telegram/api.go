package telegram

import tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type botAPISender struct{ api *tgbotapi.BotAPI }

func (s botAPISender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	return s.api.Send(c)
}

// Request is used for calls that do not return a message (callback answers, chat actions).
func (s botAPISender) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	return s.api.Request(c)
}
