// Package notify sends admin notifications about ticket activity.
package notify

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/lumina-events/invitation-api/internal/domain"
)

const queueSize = 32

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram posts messages to one admin chat from a background worker so
// request handlers never wait on the Bot API.
type Telegram struct {
	bot    sender
	chatID int64
	queue  chan string
}

func NewTelegram(token string, chatID int64) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("tgbotapi.NewBotAPI -> %w", err)
	}
	zap.L().Info("telegram notifier authorized", zap.String("bot", bot.Self.UserName))

	return newTelegram(bot, chatID), nil
}

func newTelegram(bot sender, chatID int64) *Telegram {
	return &Telegram{
		bot:    bot,
		chatID: chatID,
		queue:  make(chan string, queueSize),
	}
}

// Run delivers queued messages until ctx is done.
func (t *Telegram) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case text := <-t.queue:
			if _, err := t.bot.Send(tgbotapi.NewMessage(t.chatID, text)); err != nil {
				zap.L().Warn("telegram notification failed", zap.Error(err))
			}
		}
	}
}

func (t *Telegram) enqueue(text string) {
	select {
	case t.queue <- text:
	default:
		zap.L().Warn("telegram queue full, notification dropped")
	}
}

func (t *Telegram) TicketsIssued(rsvp domain.Rsvp, tier domain.TicketTier) {
	t.enqueue(fmt.Sprintf("🎟 %s reclamó %s (%d pax)\n%s",
		rsvp.FullName(), tier.Name, rsvp.Pax(), strings.Join(rsvp.TicketIDs, "\n")))
}

func (t *Telegram) TicketScanned(result domain.ScanResult) {
	name := ""
	if result.Rsvp != nil {
		name = result.Rsvp.FullName()
	}
	t.enqueue(fmt.Sprintf("✅ Ingreso: %s · %s · %s", name, result.TierName, result.TicketID))
}

// Nop discards every notification.
type Nop struct{}

func (Nop) TicketsIssued(domain.Rsvp, domain.TicketTier) {}

func (Nop) TicketScanned(domain.ScanResult) {}
