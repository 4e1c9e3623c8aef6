// Package telegram forwards complaint events to a Telegram chat so hostel
// staff get notified without keeping the dashboard open.
package telegram

import (
	"context"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"hostelfix/backend/internal/localization"
	"hostelfix/backend/internal/models"
)

const queueSize = 128

// Sender is the part of *tgbotapi.BotAPI used by the notifier.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Notifier implements complaint.Publisher. Publish only queues the event;
// Run performs the actual Bot API calls.
type Notifier struct {
	bot    Sender
	chatID int64
	lang   string
	loc    *localization.Localizer
	queue  chan models.ComplaintEvent
	log    *slog.Logger
}

// NewNotifier authorizes the bot token against the Bot API.
func NewNotifier(token string, chatID int64, lang string, logger *slog.Logger) (*Notifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram authorize: %w", err)
	}
	bot.Debug = false
	n := NewNotifierWithSender(bot, chatID, lang, logger)
	n.log.Info("telegram bot authorized", "account", bot.Self.UserName)
	return n, nil
}

func NewNotifierWithSender(bot Sender, chatID int64, lang string, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	if lang == "" {
		lang = localization.DefaultLang
	}
	return &Notifier{
		bot:    bot,
		chatID: chatID,
		lang:   lang,
		loc:    localization.Default(),
		queue:  make(chan models.ComplaintEvent, queueSize),
		log:    logger.With("component", "telegram"),
	}
}

// Publish queues created and status_updated events. Other events are ignored.
func (n *Notifier) Publish(_ context.Context, e models.ComplaintEvent) error {
	if e.Type != models.EventCreated && e.Type != models.EventStatusUpdated {
		return nil
	}
	select {
	case n.queue <- e:
		return nil
	default:
		return fmt.Errorf("telegram queue full, dropping %s event for %s", e.Type, e.ComplaintID)
	}
}

// Run sends queued events until ctx is done. Send failures are logged.
func (n *Notifier) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case e := <-n.queue:
			n.send(e)
		}
	}
}

func (n *Notifier) send(e models.ComplaintEvent) {
	text := FormatEvent(n.loc, n.lang, e)
	if text == "" {
		return
	}
	msg := tgbotapi.NewMessage(n.chatID, text)
	msg.LinkPreviewOptions.IsDisabled = true
	if _, err := n.bot.Send(msg); err != nil {
		n.log.Error("failed to send telegram message", "error", err, "complaint_id", e.ComplaintID)
	}
}

// FormatEvent renders the notification for an event in lang, or "" when
// the event type is not announced.
func FormatEvent(loc *localization.Localizer, lang string, e models.ComplaintEvent) string {
	switch e.Type {
	case models.EventCreated, models.EventStatusUpdated:
	default:
		return ""
	}
	return loc.Format(lang, "event."+string(e.Type), map[string]string{
		"hostel":   e.HostelCode,
		"title":    e.Title,
		"category": loc.GetString(lang, "category."+string(e.Category)),
		"status":   loc.GetString(lang, "status."+string(e.Status)),
	})
}
