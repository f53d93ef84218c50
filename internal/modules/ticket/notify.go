// README: Purchase notifications (Firebase Cloud Messaging or log only).
package ticket

import (
	"context"
	"fmt"
	"strconv"

	"firebase.google.com/go/v4/messaging"

	"ridepass/internal/utils"
)

type Notifier interface {
	PurchaseConfirmed(ctx context.Context, p *Purchase) error
}

// LogNotifier only writes the event to the log.
type LogNotifier struct{}

func (LogNotifier) PurchaseConfirmed(_ context.Context, p *Purchase) error {
	utils.LogEvent("ticket", "notify", "order=%s rides=%d (log only)", p.OrderID, p.Quote.GrantedRides)
	return nil
}

// FCMNotifier pushes to the per-user topic "user-<uid>" the app subscribes to.
type FCMNotifier struct {
	client *messaging.Client
}

func NewFCMNotifier(client *messaging.Client) *FCMNotifier {
	return &FCMNotifier{client: client}
}

func (n *FCMNotifier) PurchaseConfirmed(ctx context.Context, p *Purchase) error {
	msg := &messaging.Message{
		Topic: "user-" + string(p.UserID),
		Data: map[string]string{
			"type":          "purchase_confirmed",
			"order_id":      p.OrderID,
			"granted_rides": strconv.Itoa(p.Quote.GrantedRides),
			"amount":        strconv.FormatInt(p.Amount.Amount, 10),
		},
		Notification: &messaging.Notification{
			Title: "결제가 완료되었습니다",
			Body:  fmt.Sprintf("%s (%d회 이용 가능)", p.Quote.Summary(), p.Quote.GrantedRides),
		},
	}
	messageID, err := n.client.Send(ctx, msg)
	if err != nil {
		return fmt.Errorf("sending FCM for order %s: %w", p.OrderID, err)
	}
	utils.LogEvent("ticket", "notify", "order=%s message_id=%s", p.OrderID, messageID)
	return nil
}
