package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type Client struct {
	Bot          *tgbotapi.BotAPI
	UpdateConfig tgbotapi.UpdateConfig
}

func NewClient(token string, debug bool) (*Client, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	bot.Debug = debug

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updateConfig.AllowedUpdates = []string{"message", "callback_query"}

	return &Client{
		Bot:          bot,
		UpdateConfig: updateConfig,
	}, nil
}

// Updates открывает long polling
func (c *Client) Updates() tgbotapi.UpdatesChannel {
	return c.Bot.GetUpdatesChan(c.UpdateConfig)
}

// SendMessage отправляет текстовое сообщение в чат
func (c *Client) SendMessage(chatID int64, text string) error {
	_, err := c.Bot.Send(tgbotapi.NewMessage(chatID, text))
	return err
}

// Stop останавливает получение обновлений
func (c *Client) Stop() {
	c.Bot.StopReceivingUpdates()
}
