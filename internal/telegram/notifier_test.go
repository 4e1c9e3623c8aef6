package telegram_test

import (
	"context"
	"errors"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"hostelfix/backend/internal/localization"
	"hostelfix/backend/internal/models"
	"hostelfix/backend/internal/telegram"
)

type MockSender struct {
	mock.Mock
}

func (m *MockSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	args := m.Called(c)
	return args.Get(0).(tgbotapi.Message), args.Error(1)
}

func TestFormatEvent(t *testing.T) {
	loc := localization.Default()
	created := telegram.FormatEvent(loc, "en", models.ComplaintEvent{
		Type:       models.EventCreated,
		HostelCode: "HST001",
		Title:      "Broken window",
		Category:   models.CategoryElectrical,
	})
	assert.Contains(t, created, "New complaint in HST001")
	assert.Contains(t, created, "Broken window")
	assert.Contains(t, created, "Category: electrical")

	updated := telegram.FormatEvent(loc, "en", models.ComplaintEvent{
		Type:       models.EventStatusUpdated,
		HostelCode: "HST001",
		Title:      "Broken window",
		Status:     models.StatusInProgress,
	})
	assert.Contains(t, updated, "Status: in progress")

	assert.Empty(t, telegram.FormatEvent(loc, "en", models.ComplaintEvent{Type: models.EventDeleted}))

	uk := telegram.FormatEvent(loc, "uk", models.ComplaintEvent{
		Type:       models.EventStatusUpdated,
		HostelCode: "HST001",
		Title:      "Broken window",
		Status:     models.StatusResolved,
	})
	assert.Contains(t, uk, "Статус: вирішено")
}

func TestNotifier_SendsQueuedEvents(t *testing.T) {
	sender := new(MockSender)
	sent := make(chan tgbotapi.MessageConfig, 1)
	sender.On("Send", mock.AnythingOfType("tgbotapi.MessageConfig")).
		Run(func(args mock.Arguments) { sent <- args.Get(0).(tgbotapi.MessageConfig) }).
		Return(tgbotapi.Message{}, nil)

	n := telegram.NewNotifierWithSender(sender, 42, "en", nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go n.Run(ctx)

	require.NoError(t, n.Publish(ctx, models.ComplaintEvent{Type: models.EventCreated, HostelCode: "HST001", Title: "No hot water"}))

	select {
	case msg := <-sent:
		assert.Equal(t, int64(42), msg.ChatID)
		assert.Contains(t, msg.Text, "No hot water")
	case <-time.After(time.Second):
		t.Fatal("message not sent")
	}
}

func TestNotifier_IgnoresDeletes(t *testing.T) {
	sender := new(MockSender)
	n := telegram.NewNotifierWithSender(sender, 42, "en", nil)

	require.NoError(t, n.Publish(context.Background(), models.ComplaintEvent{Type: models.EventDeleted}))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	n.Run(ctx)
	sender.AssertNotCalled(t, "Send", mock.Anything)
}

func TestNotifier_SendErrorIsSwallowed(t *testing.T) {
	sender := new(MockSender)
	done := make(chan struct{})
	sender.On("Send", mock.Anything).
		Run(func(mock.Arguments) { close(done) }).
		Return(tgbotapi.Message{}, errors.New("bad gateway"))

	n := telegram.NewNotifierWithSender(sender, 42, "en", nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go n.Run(ctx)

	require.NoError(t, n.Publish(ctx, models.ComplaintEvent{Type: models.EventStatusUpdated, Status: models.StatusResolved}))
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("send not attempted")
	}
}
