package dialog

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Anya-Gubskay/Shop-bot/internal/cart"
	"github.com/Anya-Gubskay/Shop-bot/internal/gateway"
	"github.com/Anya-Gubskay/Shop-bot/internal/models"
	"github.com/Anya-Gubskay/Shop-bot/internal/phone"
	"github.com/Anya-Gubskay/Shop-bot/internal/session"
	"github.com/Anya-Gubskay/Shop-bot/internal/util"
)

func (s *Service) startCheckout(ctx context.Context, userID int64) error {
	entries, err := s.carts.Entries(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to read cart: %w", err)
	}
	if len(entries) == 0 {
		return s.gw.SendText(ctx, userID, textCartEmpty, nil)
	}

	s.sessions.SetState(userID, session.StateOrderName)
	return s.gw.SendText(ctx, userID, textEnterName, nil)
}

func (s *Service) handleOrderName(ctx context.Context, ev gateway.Event) error {
	s.sessions.UpdateForm(ev.UserID, func(f *session.Form) { f.Name = ev.Text })
	s.sessions.SetState(ev.UserID, session.StateOrderPhone)
	return s.gw.SendText(ctx, ev.UserID, textEnterPhone, nil)
}

func (s *Service) handleOrderPhone(ctx context.Context, ev gateway.Event) error {
	normalized, err := phone.Normalize(ev.Text)
	if errors.Is(err, phone.ErrInvalid) {
		return s.reprompt(ctx, ev.UserID, session.StateOrderPhone, textBadPhone)
	}
	if err != nil {
		return err
	}

	s.sessions.UpdateForm(ev.UserID, func(f *session.Form) { f.Phone = normalized })
	s.sessions.SetState(ev.UserID, session.StateOrderAddress)
	return s.gw.SendText(ctx, ev.UserID, textEnterAddress, nil)
}

func (s *Service) handleOrderAddress(ctx context.Context, ev gateway.Event) error {
	s.sessions.UpdateForm(ev.UserID, func(f *session.Form) { f.Address = ev.Text })
	s.sessions.SetState(ev.UserID, session.StateOrderComment)
	return s.gw.SendText(ctx, ev.UserID, textEnterComment, nil)
}

// handleOrderComment is the terminal checkout step: assemble the order
// from the form and the cart, hand it to the notifier, then clear both
// session and cart.
func (s *Service) handleOrderComment(ctx context.Context, ev gateway.Event) error {
	ctx, span := util.StartSpan(ctx, "Dialog.SubmitOrder")
	defer span.End()

	comment := ev.Text
	if comment == "-" {
		comment = textNoComment
	}

	entries, err := s.carts.Entries(ctx, ev.UserID)
	if err != nil {
		return fmt.Errorf("failed to read cart: %w", err)
	}

	form := s.sessions.Form(ev.UserID)
	order := &models.Order{
		UserID:  ev.UserID,
		Name:    form.Name,
		Phone:   form.Phone,
		Address: form.Address,
		Comment: comment,
		Items:   entries,
		Total:   cart.Total(entries),
	}

	if err := s.notifier.SubmitOrder(ctx, order); err != nil {
		// Keep the state so the user can resend the comment and retry.
		if sendErr := s.gw.SendText(ctx, ev.UserID, textOrderSendFailed, nil); sendErr != nil {
			s.logger.Error("Failed to report order failure", zap.Error(sendErr))
		}
		return err
	}

	if err := s.carts.Clear(ctx, ev.UserID); err != nil {
		s.logger.Error("Failed to clear cart after order",
			zap.Int64("user_id", ev.UserID),
			zap.Error(err))
	}
	s.sessions.Clear(ev.UserID)
	return s.gw.SendText(ctx, ev.UserID, textOrderSent, nil)
}
