package services

import (
	"context"
	"encoding/json"
	"log/slog"

	"event-portal-client/models"

	pubnub "github.com/pubnub/go"
)

// NotifyListener subscribes to the payment gateway's notification channel
// and feeds terminal status pushes into the payment flow's snapshot cache.
// Purely an optimisation: the outcome screens still fetch authoritative
// state from the backend.
type NotifyListener struct {
	pn       *pubnub.PubNub
	payments *PaymentService
	channel  string
}

func NewNotifyListener(pn *pubnub.PubNub, payments *PaymentService, channel string) *NotifyListener {
	return &NotifyListener{
		pn:       pn,
		payments: payments,
		channel:  channel,
	}
}

// Subscribe blocks until ctx is cancelled.
func (l *NotifyListener) Subscribe(ctx context.Context) {
	listener := pubnub.NewListener()

	l.pn.AddListener(listener)
	l.pn.Subscribe().
		Channels([]string{l.channel}).
		Execute()

	l.run(ctx, listener.Message)
	l.pn.UnsubscribeAll()
}

// run drains the message channel, one push at a time, until ctx is
// cancelled. Split from Subscribe so the parse-and-apply path can be
// driven without a live PubNub connection.
func (l *NotifyListener) run(ctx context.Context, messages <-chan *pubnub.PNMessage) {
	for {
		select {
		case <-ctx.Done():
			return

		case message := <-messages:
			l.handle(ctx, message)
		}
	}
}

func (l *NotifyListener) handle(ctx context.Context, message *pubnub.PNMessage) {
	var notification struct {
		OrderID string `json:"order_id"`
		Status  string `json:"payment_status"`
	}

	data, ok := message.Message.(map[string]any)
	if !ok {
		return
	}

	jsonData, _ := json.Marshal(data)
	if err := json.Unmarshal(jsonData, &notification); err != nil {
		slog.Warn("notify: unparseable gateway notification", "error", err)
		return
	}

	l.payments.ApplyGatewayNotification(ctx, notification.OrderID, models.PaymentStatus(notification.Status))
}
