package dialog

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Anya-Gubskay/Shop-bot/internal/catalog"
	"github.com/Anya-Gubskay/Shop-bot/internal/gateway"
	"github.com/Anya-Gubskay/Shop-bot/internal/models"
	"github.com/Anya-Gubskay/Shop-bot/internal/session"
	"github.com/Anya-Gubskay/Shop-bot/internal/util"
)

// startAddProduct enters the admin wizard. Non-admins are rejected with a
// fixed message and no state change.
func (s *Service) startAddProduct(ctx context.Context, userID int64) error {
	if userID != s.adminID {
		return s.gw.SendText(ctx, userID, textNoPermission, nil)
	}

	cats, err := s.catalog.Categories(ctx)
	if err != nil {
		return fmt.Errorf("failed to list categories: %w", err)
	}

	rows := make([][]string, 0, len(cats)+1)
	for _, c := range cats {
		rows = append(rows, []string{c.Name})
	}
	rows = append(rows, []string{btnNewCategory})

	s.sessions.SetState(userID, session.StateAddCategory)
	return s.gw.SendText(ctx, userID, textChooseCategory, gateway.Reply(rows...))
}

// handleAddCategory consumes the category pick. While this state is
// active it intercepts what would otherwise be a plain category browse.
func (s *Service) handleAddCategory(ctx context.Context, ev gateway.Event) error {
	if ev.Text == btnNewCategory {
		s.sessions.SetState(ev.UserID, session.StateAddNewCategory)
		return s.gw.SendText(ctx, ev.UserID, textEnterNewCategory, nil)
	}

	cat, err := s.catalog.CategoryByName(ctx, ev.Text)
	if errors.Is(err, catalog.ErrCategoryNotFound) {
		return s.reprompt(ctx, ev.UserID, session.StateAddCategory, textCategoryNotFound)
	}
	if err != nil {
		return err
	}

	s.sessions.UpdateForm(ev.UserID, func(f *session.Form) { f.CategoryKey = cat.Key })
	s.sessions.SetState(ev.UserID, session.StateAddName)
	return s.gw.SendText(ctx, ev.UserID, textEnterProductName, nil)
}

func (s *Service) handleAddNewCategory(ctx context.Context, ev gateway.Event) error {
	cat, err := s.catalog.CreateCategory(ctx, ev.Text)
	if errors.Is(err, catalog.ErrCategoryExists) {
		return s.reprompt(ctx, ev.UserID, session.StateAddNewCategory, textCategoryExists)
	}
	if err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}

	s.sessions.UpdateForm(ev.UserID, func(f *session.Form) { f.CategoryKey = cat.Key })
	s.sessions.SetState(ev.UserID, session.StateAddName)
	return s.gw.SendText(ctx, ev.UserID, fmt.Sprintf(fmtCategoryCreated, cat.Name), nil)
}

func (s *Service) handleAddName(ctx context.Context, ev gateway.Event) error {
	s.sessions.UpdateForm(ev.UserID, func(f *session.Form) { f.ProductName = ev.Text })
	s.sessions.SetState(ev.UserID, session.StateAddPrice)
	return s.gw.SendText(ctx, ev.UserID, textEnterPrice, nil)
}

func (s *Service) handleAddPrice(ctx context.Context, ev gateway.Event) error {
	price, err := strconv.ParseInt(strings.TrimSpace(ev.Text), 10, 64)
	if err != nil || price <= 0 {
		return s.reprompt(ctx, ev.UserID, session.StateAddPrice, textBadPrice)
	}

	s.sessions.UpdateForm(ev.UserID, func(f *session.Form) { f.Price = price })
	s.sessions.SetState(ev.UserID, session.StateAddDescription)
	return s.gw.SendText(ctx, ev.UserID, textEnterDescription, nil)
}

func (s *Service) handleAddDescription(ctx context.Context, ev gateway.Event) error {
	s.sessions.UpdateForm(ev.UserID, func(f *session.Form) { f.Description = ev.Text })
	s.sessions.SetState(ev.UserID, session.StateAddPhoto)
	return s.gw.SendText(ctx, ev.UserID, textSendPhoto, nil)
}

// handleAddPhoto is the terminal wizard step: fetch the photo, append the
// product and persist the catalog. The photo is downloaded only here, so a
// stray photo outside this state never reaches disk.
func (s *Service) handleAddPhoto(ctx context.Context, ev gateway.Event) error {
	path, err := s.photos.FetchPhoto(ctx, ev.PhotoFileID)
	if err != nil {
		// State is kept so the admin can resend the photo.
		return fmt.Errorf("failed to fetch product photo: %w", err)
	}

	form := s.sessions.Form(ev.UserID)
	product := models.Product{
		Name:        form.ProductName,
		Price:       form.Price,
		Description: form.Description,
		PhotoPath:   path,
	}

	err = s.catalog.AddProduct(ctx, form.CategoryKey, product)
	if errors.Is(err, catalog.ErrCategoryNotFound) {
		s.sessions.Clear(ev.UserID)
		return s.gw.SendText(ctx, ev.UserID, textCategoryMissing, nil)
	}
	if err != nil {
		return fmt.Errorf("failed to add product: %w", err)
	}

	util.ProductsAddedTotal.Inc()
	event := &models.ProductAddedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeProductAdded,
			Timestamp: time.Now(),
		},
		CategoryKey: form.CategoryKey,
		Product:     product,
	}
	if err := s.events.PublishProductAdded(ctx, event); err != nil {
		s.logger.Error("Failed to publish ProductAdded event", zap.Error(err))
	}

	kb, err := s.mainMenuKeyboard(ctx)
	if err != nil {
		return err
	}
	s.sessions.Clear(ev.UserID)
	return s.gw.SendText(ctx, ev.UserID,
		fmt.Sprintf(fmtProductAdded, product.Name, form.CategoryKey), kb)
}
