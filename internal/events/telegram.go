package events

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"go-jobpilot-automation/internal/models"
)

// TelegramReporter mirrors application lifecycle events into a Telegram chat
// so a run can be supervised from a phone.
type TelegramReporter struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

func NewTelegramReporter(token string, chatID int64) (*TelegramReporter, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram bot: %w", err)
	}

	return &TelegramReporter{
		bot:    bot,
		chatID: chatID,
	}, nil
}

func (t *TelegramReporter) send(text string) error {
	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.ParseMode = "HTML" //use HTML for bold/italic
	_, err := t.bot.Send(msg)
	return err
}

// Sink returns an event sink reporting per-application results, errors and
// the session summary. Send failures are ignored; reporting is best effort.
func (t *TelegramReporter) Sink() *Sink {
	return &Sink{
		OnApplicationComplete: func(job models.JobListing, success bool) {
			icon := "✅"
			if !success {
				icon = "❌"
			}
			t.send(fmt.Sprintf(
				"%s <b>%s</b>\n🏢 %s\n📍 %s\n🔗 <a href=\"%s\">View posting</a>",
				icon, job.Title, job.Company, job.Location, job.URL,
			))
		},
		OnError: func(err error, job *models.JobListing) {
			text := fmt.Sprintf("⚠️ <b>Autopilot Error</b>:\n%v", err)
			if job != nil {
				text += fmt.Sprintf("\n(%s @ %s)", job.Title, job.Company)
			}
			t.send(text)
		},
		OnSessionComplete: func(applied, failed int) {
			t.send(fmt.Sprintf("🏁 Session complete: %d applied, %d failed.", applied, failed))
		},
	}
}
