// Operator-facing alerts. Circuit-open and safety-pause events must reach a
// human; everything here is best effort and never blocks an attempt.

package reporter

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/ZoeDepthTokyo/jseeker-sub000/internal/apply"
)

type TelegramReporter struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

func NewTelegramReporter(token string, chatID int64) (*TelegramReporter, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram bot: %w", err)
	}
	return &TelegramReporter{bot: bot, chatID: chatID}, nil
}

func (t *TelegramReporter) SendMessage(text string) error {
	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.ParseMode = "HTML"
	_, err := t.bot.Send(msg)
	return err
}

// AlertCircuitOpen tells the operator a platform is disabled until they
// re-enable it.
func (t *TelegramReporter) AlertCircuitOpen(platform apply.Platform, reason string) error {
	return t.SendMessage(fmt.Sprintf(
		"🚨 <b>Circuit open: %s</b>\n%s\nNo more attempts until re-enabled.", platform, reason))
}

// NotifyPause surfaces a safety pause for human review.
func (t *TelegramReporter) NotifyPause(result *apply.AttemptResult) error {
	text := fmt.Sprintf(
		"⏸️ <b>Attempt paused (%s)</b>\n🔗 %s\n🏷 %s",
		result.Status, result.URL, result.Platform)
	if result.PausedQuestion != "" {
		text += fmt.Sprintf("\n❓ %s", result.PausedQuestion)
	}
	return t.SendMessage(text)
}

// NotifyResult reports a terminal attempt outcome.
func (t *TelegramReporter) NotifyResult(result *apply.AttemptResult) error {
	icon := "✅"
	if result.Status.Failed() {
		icon = "❌"
	} else if result.Status.Paused() {
		icon = "⏸️"
	}
	text := fmt.Sprintf("%s <b>%s</b>\n🔗 %s", icon, result.Status, result.URL)
	if result.NeedsReview {
		text += "\n👀 Soft success: review the after-submit screenshot."
	}
	return t.SendMessage(text)
}
