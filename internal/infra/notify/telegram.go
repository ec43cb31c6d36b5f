// Package notify pushes moderation events to the admin Telegram chat.
// With no token configured every call is a no-op, so handlers never have
// to care whether notifications are on.
package notify

import (
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/ratatoing/ratatoing-server/internal/domain/users"
)

type AdminChat struct {
	api    *tgbotapi.BotAPI
	chatID int64
	log    *slog.Logger
}

func New(token string, chatID int64, log *slog.Logger) (*AdminChat, error) {
	if token == "" {
		return &AdminChat{log: log}, nil
	}
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("notify: telegram init: %w", err)
	}
	return &AdminChat{api: api, chatID: chatID, log: log}, nil
}

// Disabled returns a notifier that drops everything. Used in tests.
func Disabled() *AdminChat { return &AdminChat{log: slog.Default()} }

func (n *AdminChat) SignupReceived(u *users.User) {
	n.send(fmt.Sprintf("New signup awaiting review: %s (%s)", u.Username, u.Email))
}

func (n *AdminChat) ApplicationReceived(username string, job users.Job) {
	n.send(fmt.Sprintf("New job application: %s wants to be %s", username, job))
}

func (n *AdminChat) DecisionMade(kind, name, decision string) {
	n.send(fmt.Sprintf("Moderation: %s %q %s", kind, name, decision))
}

func (n *AdminChat) send(text string) {
	if n.api == nil {
		return
	}
	if _, err := n.api.Send(tgbotapi.NewMessage(n.chatID, text)); err != nil {
		n.log.Error("admin chat send failed", "err", err)
	}
}
