// Package notifier delivers completed orders to the administrator and
// handles the confirmation round-trip.
package notifier

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Anya-Gubskay/Shop-bot/internal/broker"
	"github.com/Anya-Gubskay/Shop-bot/internal/gateway"
	"github.com/Anya-Gubskay/Shop-bot/internal/models"
	"github.com/Anya-Gubskay/Shop-bot/internal/util"
)

// CallbackConfirm is the callback data of the confirm button attached to
// every order summary.
const CallbackConfirm = "confirm_order"

const confirmedMarker = "✅ **Заказ подтвержден!**"

// Notifier formats orders and sends them to the configured admin chat.
type Notifier struct {
	gw      gateway.Sender
	adminID int64
	events  *broker.EventPublisher
	logger  *zap.Logger
}

// New creates a notifier bound to the admin identity
func New(gw gateway.Sender, adminID int64, events *broker.EventPublisher) *Notifier {
	return &Notifier{
		gw:      gw,
		adminID: adminID,
		events:  events,
		logger:  util.GetLogger(),
	}
}

// FormatOrder renders the order summary: customer fields, itemized cart
// and the computed total.
func FormatOrder(o *models.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🛍️ **Новый заказ!**\n👤 ФИО: %s\n📞 Телефон: %s\n🏡 Адрес: %s\n💬 Комментарий: %s\n\n**Товары:**\n",
		o.Name, o.Phone, o.Address, o.Comment)
	for i, item := range o.Items {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "🔹 %s (x%d) - %d руб.", item.Product.Name, item.Quantity, item.Subtotal())
	}
	fmt.Fprintf(&b, "\n💰 **Общая сумма:** %d руб.", o.Total)
	return b.String()
}

// SubmitOrder sends the summary with a confirm button to the admin. A
// delivery failure is returned to the caller; the order is not retried.
func (n *Notifier) SubmitOrder(ctx context.Context, order *models.Order) error {
	ctx, span := util.StartSpan(ctx, "Notifier.SubmitOrder")
	defer span.End()

	kb := gateway.Inline([]gateway.Button{{Text: "✅ Подтвердить заказ", Data: CallbackConfirm}})
	if err := n.gw.SendText(ctx, n.adminID, FormatOrder(order), kb); err != nil {
		return fmt.Errorf("failed to notify admin: %w", err)
	}

	util.OrdersSubmittedTotal.Inc()
	n.logger.Info("Order submitted",
		zap.Int64("user_id", order.UserID),
		zap.Int("items", len(order.Items)),
		zap.Int64("total", order.Total))

	event := &models.OrderSubmittedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderSubmitted,
			Timestamp: time.Now(),
		},
		UserID:  order.UserID,
		Name:    order.Name,
		Phone:   order.Phone,
		Address: order.Address,
		Comment: order.Comment,
		Items:   order.Items,
		Total:   order.Total,
	}
	if err := n.events.PublishOrderSubmitted(ctx, event); err != nil {
		n.logger.Error("Failed to publish OrderSubmitted event", zap.Error(err))
	}
	return nil
}

// Confirm appends the confirmed marker to the order message. Confirming an
// already-confirmed order only re-answers the callback, so a double tap
// cannot stack markers.
func (n *Notifier) Confirm(ctx context.Context, ev gateway.Event) error {
	ctx, span := util.StartSpan(ctx, "Notifier.Confirm")
	defer span.End()

	if strings.Contains(ev.MessageText, confirmedMarker) {
		return n.gw.AnswerCallback(ctx, ev.CallbackID, "✅ Заказ подтвержден!")
	}

	if err := n.gw.EditMessageText(ctx, n.adminID, ev.MessageID, ev.MessageText+"\n"+confirmedMarker); err != nil {
		return fmt.Errorf("failed to mark order confirmed: %w", err)
	}

	util.OrdersConfirmedTotal.Inc()
	n.logger.Info("Order confirmed", zap.Int("message_id", ev.MessageID))

	event := &models.OrderConfirmedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderConfirmed,
			Timestamp: time.Now(),
		},
		AdminID:   n.adminID,
		MessageID: ev.MessageID,
	}
	if err := n.events.PublishOrderConfirmed(ctx, event); err != nil {
		n.logger.Error("Failed to publish OrderConfirmed event", zap.Error(err))
	}

	return n.gw.AnswerCallback(ctx, ev.CallbackID, "✅ Заказ подтвержден!")
}
