// Package dialog is the conversation state machine: it resolves each
// inbound event against the user's current state and drives the checkout,
// quantity-entry and admin add-product flows.
package dialog

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Anya-Gubskay/Shop-bot/internal/broker"
	"github.com/Anya-Gubskay/Shop-bot/internal/cart"
	"github.com/Anya-Gubskay/Shop-bot/internal/catalog"
	"github.com/Anya-Gubskay/Shop-bot/internal/gateway"
	"github.com/Anya-Gubskay/Shop-bot/internal/notifier"
	"github.com/Anya-Gubskay/Shop-bot/internal/session"
	"github.com/Anya-Gubskay/Shop-bot/internal/util"
)

// Service wires the dialogue handlers to their collaborators.
type Service struct {
	catalog  catalog.Store
	carts    cart.Ledger
	sessions *session.Store
	gw       gateway.Sender
	photos   gateway.PhotoFetcher
	notifier *notifier.Notifier
	events   *broker.EventPublisher
	adminID  int64
	logger   *zap.Logger
}

// NewService creates the dialogue service
func NewService(
	catalogStore catalog.Store,
	carts cart.Ledger,
	sessions *session.Store,
	gw gateway.Sender,
	photos gateway.PhotoFetcher,
	orderNotifier *notifier.Notifier,
	events *broker.EventPublisher,
	adminID int64,
) *Service {
	return &Service{
		catalog:  catalogStore,
		carts:    carts,
		sessions: sessions,
		gw:       gw,
		photos:   photos,
		notifier: orderNotifier,
		events:   events,
		adminID:  adminID,
		logger:   util.GetLogger(),
	}
}

// transition describes the single input shape a state accepts and the
// handler that consumes it. An event of any other kind re-prompts with
// mismatch and leaves the state untouched.
type transition struct {
	accepts  gateway.EventKind
	handle   func(*Service, context.Context, gateway.Event) error
	mismatch string
}

var transitions = map[session.State]transition{
	session.StateOrderName:      {gateway.EventText, (*Service).handleOrderName, textEnterName},
	session.StateOrderPhone:     {gateway.EventText, (*Service).handleOrderPhone, textEnterPhone},
	session.StateOrderAddress:   {gateway.EventText, (*Service).handleOrderAddress, textEnterAddress},
	session.StateOrderComment:   {gateway.EventText, (*Service).handleOrderComment, textEnterComment},
	session.StateQuantity:       {gateway.EventText, (*Service).handleQuantity, textBadQuantity},
	session.StateAddCategory:    {gateway.EventText, (*Service).handleAddCategory, textChooseCategory},
	session.StateAddNewCategory: {gateway.EventText, (*Service).handleAddNewCategory, textEnterNewCategory},
	session.StateAddName:        {gateway.EventText, (*Service).handleAddName, textEnterProductName},
	session.StateAddPrice:       {gateway.EventText, (*Service).handleAddPrice, textBadPrice},
	session.StateAddDescription: {gateway.EventText, (*Service).handleAddDescription, textEnterDescription},
	session.StateAddPhoto:       {gateway.EventPhoto, (*Service).handleAddPhoto, textNeedPhoto},
}

// HandleEvent is the single entry point for inbound events. Per-user
// ordering is the dispatcher's responsibility; this method assumes no two
// events for the same user run concurrently.
func (s *Service) HandleEvent(ctx context.Context, ev gateway.Event) error {
	ctx, span := util.StartSpan(ctx, "Dialog.HandleEvent")
	defer span.End()

	util.EventsTotal.WithLabelValues(string(ev.Kind)).Inc()
	start := time.Now()
	defer func() {
		util.EventHandleLatency.Observe(time.Since(start).Seconds())
	}()

	if ev.Kind == gateway.EventCallback {
		return s.handleCallback(ctx, ev)
	}

	// Commands work in any state.
	if ev.Kind == gateway.EventText {
		switch ev.Text {
		case cmdStart:
			return s.showWelcome(ctx, ev.UserID)
		case cmdCancel:
			return s.cancel(ctx, ev.UserID)
		case cmdAddProduct:
			return s.startAddProduct(ctx, ev.UserID)
		}
	}

	if st := s.sessions.State(ev.UserID); st != session.StateIdle {
		return s.dispatchState(ctx, st, ev)
	}

	// A stray photo outside any flow has no meaning.
	if ev.Kind != gateway.EventText {
		return nil
	}
	return s.handleIdleText(ctx, ev)
}

func (s *Service) dispatchState(ctx context.Context, st session.State, ev gateway.Event) error {
	tr, ok := transitions[st]
	if !ok {
		s.logger.Warn("Unknown dialogue state, resetting",
			zap.Int64("user_id", ev.UserID),
			zap.String("state", string(st)))
		s.sessions.Clear(ev.UserID)
		return nil
	}

	if ev.Kind != tr.accepts {
		util.DialogueRepromptsTotal.WithLabelValues(string(st)).Inc()
		return s.gw.SendText(ctx, ev.UserID, tr.mismatch, nil)
	}

	s.logger.Debug("Dialogue input",
		zap.Int64("user_id", ev.UserID),
		zap.String("state", string(st)))
	return tr.handle(s, ctx, ev)
}

// reprompt keeps the state and repeats the given error message.
func (s *Service) reprompt(ctx context.Context, userID int64, st session.State, text string) error {
	util.DialogueRepromptsTotal.WithLabelValues(string(st)).Inc()
	return s.gw.SendText(ctx, userID, text, nil)
}

func (s *Service) handleCallback(ctx context.Context, ev gateway.Event) error {
	switch {
	case strings.HasPrefix(ev.CallbackData, callbackAddPrefix):
		return s.startQuantity(ctx, ev)

	case ev.CallbackData == notifier.CallbackConfirm:
		if ev.UserID != s.adminID {
			return s.gw.AnswerCallback(ctx, ev.CallbackID, textNoPermission)
		}
		return s.notifier.Confirm(ctx, ev)

	default:
		s.logger.Warn("Unhandled callback", zap.String("data", ev.CallbackData))
		return s.gw.AnswerCallback(ctx, ev.CallbackID, "")
	}
}

func (s *Service) cancel(ctx context.Context, userID int64) error {
	s.sessions.Clear(userID)

	kb, err := s.mainMenuKeyboard(ctx)
	if err != nil {
		return err
	}
	return s.gw.SendText(ctx, userID, textCancelled, kb)
}
