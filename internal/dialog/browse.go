package dialog

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/Anya-Gubskay/Shop-bot/internal/cart"
	"github.com/Anya-Gubskay/Shop-bot/internal/catalog"
	"github.com/Anya-Gubskay/Shop-bot/internal/gateway"
	"github.com/Anya-Gubskay/Shop-bot/internal/models"
	"github.com/Anya-Gubskay/Shop-bot/internal/session"
	"github.com/Anya-Gubskay/Shop-bot/internal/util"
)

// mainMenuKeyboard builds the reply keyboard: one row per category, then
// the cart and order buttons.
func (s *Service) mainMenuKeyboard(ctx context.Context) (*gateway.Keyboard, error) {
	cats, err := s.catalog.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	rows := make([][]string, 0, len(cats)+1)
	for _, c := range cats {
		rows = append(rows, []string{c.Name})
	}
	rows = append(rows, []string{btnCart, btnOrder})
	return gateway.Reply(rows...), nil
}

func (s *Service) showWelcome(ctx context.Context, userID int64) error {
	kb, err := s.mainMenuKeyboard(ctx)
	if err != nil {
		return err
	}
	return s.gw.SendText(ctx, userID, textWelcome, kb)
}

// handleIdleText resolves free text from an idle user: menu buttons first,
// then category and product display names. Anything else is ignored.
func (s *Service) handleIdleText(ctx context.Context, ev gateway.Event) error {
	switch ev.Text {
	case btnCart:
		return s.showCart(ctx, ev.UserID)
	case btnOrder:
		return s.startCheckout(ctx, ev.UserID)
	}

	if cat, err := s.catalog.CategoryByName(ctx, ev.Text); err == nil {
		return s.showCategory(ctx, ev.UserID, cat)
	} else if !errors.Is(err, catalog.ErrCategoryNotFound) {
		return err
	}

	if key, product, err := s.catalog.FindProductByName(ctx, ev.Text); err == nil {
		_, idx, err := s.productIndex(ctx, key, product.Name)
		if err != nil {
			return err
		}
		return s.sendProductCard(ctx, ev.UserID, key, idx, product)
	} else if !errors.Is(err, catalog.ErrProductNotFound) {
		return err
	}

	return nil
}

// productIndex locates a product's position within its category so that
// callback data can reference it by stable index.
func (s *Service) productIndex(ctx context.Context, key, name string) (*models.Category, int, error) {
	cat, err := s.catalog.Category(ctx, key)
	if err != nil {
		return nil, 0, err
	}
	for i := range cat.Products {
		if cat.Products[i].Name == name {
			return cat, i, nil
		}
	}
	return nil, 0, catalog.ErrProductNotFound
}

func (s *Service) showCategory(ctx context.Context, userID int64, cat *models.Category) error {
	if err := s.gw.SendText(ctx, userID, fmt.Sprintf(fmtCategoryHeader, cat.Name), nil); err != nil {
		return err
	}

	for i := range cat.Products {
		if err := s.sendProductCard(ctx, userID, cat.Key, i, &cat.Products[i]); err != nil {
			return err
		}
	}
	return nil
}

// sendProductCard sends the photo card with an inline add-to-cart button.
// Callback data identifies the product by category key and index rather
// than display name, so renamed-alike products cannot collide.
func (s *Service) sendProductCard(ctx context.Context, userID int64, key string, index int, p *models.Product) error {
	kb := gateway.Inline([]gateway.Button{{
		Text: fmtAddToCartButton,
		Data: fmt.Sprintf("%s%s:%d", callbackAddPrefix, key, index),
	}})
	caption := fmt.Sprintf(fmtProductCaption, p.Name, p.Description, p.Price)
	return s.gw.SendPhoto(ctx, userID, p.PhotoPath, caption, kb)
}

func (s *Service) showCart(ctx context.Context, userID int64) error {
	entries, err := s.carts.Entries(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to read cart: %w", err)
	}
	if len(entries) == 0 {
		return s.gw.SendText(ctx, userID, textCartEmpty, nil)
	}

	var b strings.Builder
	b.WriteString(cartHeader)
	for i, e := range entries {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, fmtCartLine, e.Product.Name, e.Quantity, e.Subtotal())
	}
	fmt.Fprintf(&b, fmtCartTotal, cart.Total(entries))
	return s.gw.SendText(ctx, userID, b.String(), nil)
}

// startQuantity reacts to an add-to-cart tap: remember the product and ask
// for a quantity.
func (s *Service) startQuantity(ctx context.Context, ev gateway.Event) error {
	ref := strings.TrimPrefix(ev.CallbackData, callbackAddPrefix)
	sep := strings.LastIndex(ref, ":")
	if sep < 0 {
		return s.gw.AnswerCallback(ctx, ev.CallbackID, textProductNotFound)
	}
	key := ref[:sep]
	index, err := strconv.Atoi(ref[sep+1:])
	if err != nil {
		return s.gw.AnswerCallback(ctx, ev.CallbackID, textProductNotFound)
	}

	if _, err := s.catalog.Product(ctx, key, index); err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) || errors.Is(err, catalog.ErrCategoryNotFound) {
			return s.gw.AnswerCallback(ctx, ev.CallbackID, textProductNotFound)
		}
		return err
	}

	s.sessions.UpdateForm(ev.UserID, func(f *session.Form) {
		f.CategoryKey = key
		f.ProductIndex = index
	})
	s.sessions.SetState(ev.UserID, session.StateQuantity)

	if err := s.gw.AnswerCallback(ctx, ev.CallbackID, ""); err != nil {
		return err
	}
	return s.gw.SendText(ctx, ev.UserID, textEnterQuantity, nil)
}

func (s *Service) handleQuantity(ctx context.Context, ev gateway.Event) error {
	quantity, err := strconv.Atoi(strings.TrimSpace(ev.Text))
	if err != nil || quantity <= 0 {
		return s.reprompt(ctx, ev.UserID, session.StateQuantity, textBadQuantity)
	}

	form := s.sessions.Form(ev.UserID)
	product, err := s.catalog.Product(ctx, form.CategoryKey, form.ProductIndex)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) || errors.Is(err, catalog.ErrCategoryNotFound) {
			s.sessions.Clear(ev.UserID)
			return s.gw.SendText(ctx, ev.UserID, textProductNotFound, nil)
		}
		return err
	}

	if err := s.carts.Add(ctx, ev.UserID, models.CartEntry{Product: *product, Quantity: quantity}); err != nil {
		return fmt.Errorf("failed to add cart entry: %w", err)
	}

	util.CartAddsTotal.Inc()
	s.logger.Info("Added to cart",
		zap.Int64("user_id", ev.UserID),
		zap.String("category", form.CategoryKey),
		zap.String("product", product.Name),
		zap.Int("quantity", quantity))

	s.sessions.Clear(ev.UserID)
	return s.gw.SendText(ctx, ev.UserID, fmt.Sprintf(fmtAddedToCart, product.Name, quantity), nil)
}
