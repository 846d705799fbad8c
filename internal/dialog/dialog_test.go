package dialog

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Anya-Gubskay/Shop-bot/internal/broker"
	"github.com/Anya-Gubskay/Shop-bot/internal/cart"
	"github.com/Anya-Gubskay/Shop-bot/internal/catalog"
	"github.com/Anya-Gubskay/Shop-bot/internal/gateway"
	"github.com/Anya-Gubskay/Shop-bot/internal/notifier"
	"github.com/Anya-Gubskay/Shop-bot/internal/session"
)

const (
	adminID int64 = 42
	buyerID int64 = 7
	strayID int64 = 99
)

type sentText struct {
	chatID int64
	text   string
	kb     *gateway.Keyboard
}

type sentPhoto struct {
	chatID  int64
	path    string
	caption string
	kb      *gateway.Keyboard
}

type fakeGateway struct {
	texts   []sentText
	photos  []sentPhoto
	edits   []string
	fetches []string
}

func (f *fakeGateway) SendText(_ context.Context, chatID int64, text string, kb *gateway.Keyboard) error {
	f.texts = append(f.texts, sentText{chatID, text, kb})
	return nil
}

func (f *fakeGateway) SendPhoto(_ context.Context, chatID int64, path, caption string, kb *gateway.Keyboard) error {
	f.photos = append(f.photos, sentPhoto{chatID, path, caption, kb})
	return nil
}

func (f *fakeGateway) EditMessageText(_ context.Context, _ int64, _ int, text string) error {
	f.edits = append(f.edits, text)
	return nil
}

func (f *fakeGateway) AnswerCallback(context.Context, string, string) error {
	return nil
}

func (f *fakeGateway) FetchPhoto(_ context.Context, fileID string) (string, error) {
	f.fetches = append(f.fetches, fileID)
	return filepath.Join("images", fileID+".jpg"), nil
}

func (f *fakeGateway) lastText() sentText {
	return f.texts[len(f.texts)-1]
}

type testEnv struct {
	svc      *Service
	gw       *fakeGateway
	carts    cart.Ledger
	sessions *session.Store
	catalog  *catalog.FileStore
	dataFile string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dataFile := filepath.Join(t.TempDir(), "data.json")
	store, err := catalog.NewFileStore(dataFile)
	require.NoError(t, err)

	gw := &fakeGateway{}
	carts := cart.NewMemoryLedger()
	sessions := session.NewStore()
	events := broker.NewEventPublisher(nil)
	orderNotifier := notifier.New(gw, adminID, events)

	return &testEnv{
		svc:      NewService(store, carts, sessions, gw, gw, orderNotifier, events, adminID),
		gw:       gw,
		carts:    carts,
		sessions: sessions,
		catalog:  store,
		dataFile: dataFile,
	}
}

func text(userID int64, s string) gateway.Event {
	return gateway.Event{UserID: userID, Kind: gateway.EventText, Text: s}
}

func photo(userID int64, fileID string) gateway.Event {
	return gateway.Event{UserID: userID, Kind: gateway.EventPhoto, PhotoFileID: fileID}
}

func callback(userID int64, data string) gateway.Event {
	return gateway.Event{UserID: userID, Kind: gateway.EventCallback, CallbackID: "cb", CallbackData: data}
}

func (e *testEnv) send(t *testing.T, ev gateway.Event) {
	t.Helper()
	require.NoError(t, e.svc.HandleEvent(context.Background(), ev))
}

func TestStartShowsMainMenu(t *testing.T) {
	e := newTestEnv(t)

	e.send(t, text(buyerID, "/start"))

	require.Len(t, e.gw.texts, 1)
	msg := e.gw.texts[0]
	assert.Equal(t, buyerID, msg.chatID)
	assert.Equal(t, textWelcome, msg.text)

	require.NotNil(t, msg.kb)
	assert.False(t, msg.kb.Inline)
	// 3 seeded category rows plus the cart/order row.
	require.Len(t, msg.kb.Rows, 4)
	assert.Equal(t, btnCart, msg.kb.Rows[3][0].Text)
	assert.Equal(t, btnOrder, msg.kb.Rows[3][1].Text)
}

func TestBrowseCategorySendsProductCards(t *testing.T) {
	e := newTestEnv(t)

	e.send(t, text(buyerID, "👕 Футболки"))

	require.Len(t, e.gw.texts, 1)
	assert.Equal(t, fmt.Sprintf(fmtCategoryHeader, "👕 Футболки"), e.gw.texts[0].text)

	require.Len(t, e.gw.photos, 2)
	first := e.gw.photos[0]
	assert.Equal(t, "images/t-shirt1.jpg", first.path)
	assert.Contains(t, first.caption, "Футболка белая")
	assert.Contains(t, first.caption, "1000")

	require.NotNil(t, first.kb)
	assert.True(t, first.kb.Inline)
	assert.Equal(t, "add:t-shirts:0", first.kb.Rows[0][0].Data)
	assert.Equal(t, "add:t-shirts:1", e.gw.photos[1].kb.Rows[0][0].Data)
}

func TestProductNameShowsCard(t *testing.T) {
	e := newTestEnv(t)

	e.send(t, text(buyerID, "Джинсы синие"))

	require.Len(t, e.gw.photos, 1)
	assert.Equal(t, "add:jeans:0", e.gw.photos[0].kb.Rows[0][0].Data)
}

func TestUnrecognizedIdleTextIsIgnored(t *testing.T) {
	e := newTestEnv(t)

	e.send(t, text(buyerID, "что-то непонятное"))
	assert.Empty(t, e.gw.texts)
	assert.Empty(t, e.gw.photos)
}

func TestAddToCartFlow(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	e.send(t, callback(buyerID, "add:t-shirts:0"))
	assert.Equal(t, session.StateQuantity, e.sessions.State(buyerID))
	assert.Equal(t, textEnterQuantity, e.gw.lastText().text)

	e.send(t, text(buyerID, "2"))
	assert.Equal(t, session.StateIdle, e.sessions.State(buyerID))
	assert.Equal(t, fmt.Sprintf(fmtAddedToCart, "Футболка белая", 2), e.gw.lastText().text)

	entries, err := e.carts.Entries(ctx, buyerID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Футболка белая", entries[0].Product.Name)
	assert.Equal(t, 2, entries[0].Quantity)
}

func TestInvalidQuantityReprompts(t *testing.T) {
	e := newTestEnv(t)

	e.send(t, callback(buyerID, "add:t-shirts:0"))
	for _, bad := range []string{"abc", "0", "-3", "1.5"} {
		e.send(t, text(buyerID, bad))
		assert.Equal(t, textBadQuantity, e.gw.lastText().text, "input %q", bad)
		assert.Equal(t, session.StateQuantity, e.sessions.State(buyerID), "input %q", bad)
	}

	entries, err := e.carts.Entries(context.Background(), buyerID)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRepeatedAddsAreNotMerged(t *testing.T) {
	e := newTestEnv(t)

	e.send(t, callback(buyerID, "add:t-shirts:0"))
	e.send(t, text(buyerID, "2"))
	e.send(t, callback(buyerID, "add:t-shirts:0"))
	e.send(t, text(buyerID, "3"))

	entries, err := e.carts.Entries(context.Background(), buyerID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, int64(5*1000), cart.Total(entries))
}

func TestShowCart(t *testing.T) {
	e := newTestEnv(t)

	e.send(t, text(buyerID, btnCart))
	assert.Equal(t, textCartEmpty, e.gw.lastText().text)

	e.send(t, callback(buyerID, "add:jeans:0"))
	e.send(t, text(buyerID, "2"))

	e.send(t, text(buyerID, btnCart))
	got := e.gw.lastText().text
	assert.Contains(t, got, "Джинсы синие (x2) - 4000 руб.")
	assert.Contains(t, got, "**Общая сумма:** 4000 руб.")
}

func TestCheckoutRequiresNonEmptyCart(t *testing.T) {
	e := newTestEnv(t)

	e.send(t, text(buyerID, btnOrder))
	assert.Equal(t, textCartEmpty, e.gw.lastText().text)
	assert.Equal(t, session.StateIdle, e.sessions.State(buyerID))
}

func TestCheckoutFlow(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	e.send(t, callback(buyerID, "add:t-shirts:0"))
	e.send(t, text(buyerID, "2"))
	e.send(t, callback(buyerID, "add:jeans:0"))
	e.send(t, text(buyerID, "1"))

	e.send(t, text(buyerID, btnOrder))
	assert.Equal(t, textEnterName, e.gw.lastText().text)

	e.send(t, text(buyerID, "Иван Иванов"))
	assert.Equal(t, textEnterPhone, e.gw.lastText().text)

	e.send(t, text(buyerID, "291234567"))
	assert.Equal(t, textEnterAddress, e.gw.lastText().text)

	e.send(t, text(buyerID, "Минск, пр. Независимости 1"))
	assert.Equal(t, textEnterComment, e.gw.lastText().text)

	e.send(t, text(buyerID, "-"))

	// The order went to the admin with a confirm button.
	var adminMsg *sentText
	for i := range e.gw.texts {
		if e.gw.texts[i].chatID == adminID {
			adminMsg = &e.gw.texts[i]
		}
	}
	require.NotNil(t, adminMsg)
	assert.Contains(t, adminMsg.text, "Иван Иванов")
	assert.Contains(t, adminMsg.text, "+375 (29) 123-45-67")
	assert.Contains(t, adminMsg.text, "Без комментария")
	assert.Contains(t, adminMsg.text, "**Общая сумма:** 4000 руб.")
	require.NotNil(t, adminMsg.kb)
	assert.Equal(t, notifier.CallbackConfirm, adminMsg.kb.Rows[0][0].Data)

	// The buyer got the confirmation, the session is idle again and the
	// cart is cleared.
	assert.Equal(t, textOrderSent, e.gw.lastText().text)
	assert.Equal(t, session.StateIdle, e.sessions.State(buyerID))
	entries, err := e.carts.Entries(ctx, buyerID)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCheckoutRejectsInvalidPhone(t *testing.T) {
	e := newTestEnv(t)

	e.send(t, callback(buyerID, "add:t-shirts:0"))
	e.send(t, text(buyerID, "1"))
	e.send(t, text(buyerID, btnOrder))
	e.send(t, text(buyerID, "Иван Иванов"))

	e.send(t, text(buyerID, "12345"))
	assert.Equal(t, textBadPhone, e.gw.lastText().text)
	assert.Equal(t, session.StateOrderPhone, e.sessions.State(buyerID))
	assert.Empty(t, e.sessions.Form(buyerID).Phone)

	e.send(t, text(buyerID, "80291234567"))
	assert.Equal(t, textEnterAddress, e.gw.lastText().text)
	assert.Equal(t, "+375 (29) 123-45-67", e.sessions.Form(buyerID).Phone)
}

func TestCancelResetsFlow(t *testing.T) {
	e := newTestEnv(t)

	e.send(t, callback(buyerID, "add:t-shirts:0"))
	e.send(t, text(buyerID, "1"))
	e.send(t, text(buyerID, btnOrder))
	e.send(t, text(buyerID, "Иван Иванов"))
	require.Equal(t, session.StateOrderPhone, e.sessions.State(buyerID))

	e.send(t, text(buyerID, "/cancel"))
	assert.Equal(t, session.StateIdle, e.sessions.State(buyerID))
	assert.Equal(t, session.Form{}, e.sessions.Form(buyerID))
	assert.Equal(t, textCancelled, e.gw.lastText().text)
}

func TestAddProductRejectedForNonAdmin(t *testing.T) {
	e := newTestEnv(t)

	e.send(t, text(strayID, "/add_product"))
	assert.Equal(t, textNoPermission, e.gw.lastText().text)
	assert.Equal(t, session.StateIdle, e.sessions.State(strayID))
}

func TestAdminAddProductToNewCategory(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	e.send(t, text(adminID, "/add_product"))
	assert.Equal(t, textChooseCategory, e.gw.lastText().text)
	kb := e.gw.lastText().kb
	require.NotNil(t, kb)
	assert.Equal(t, btnNewCategory, kb.Rows[len(kb.Rows)-1][0].Text)

	e.send(t, text(adminID, btnNewCategory))
	assert.Equal(t, textEnterNewCategory, e.gw.lastText().text)

	e.send(t, text(adminID, "Hats"))
	assert.Equal(t, fmt.Sprintf(fmtCategoryCreated, "Hats"), e.gw.lastText().text)

	e.send(t, text(adminID, "Cap"))
	assert.Equal(t, textEnterPrice, e.gw.lastText().text)

	e.send(t, text(adminID, "500"))
	assert.Equal(t, textEnterDescription, e.gw.lastText().text)

	e.send(t, text(adminID, "Отличная кепка"))
	assert.Equal(t, textSendPhoto, e.gw.lastText().text)

	e.send(t, photo(adminID, "cap"))
	assert.Equal(t, fmt.Sprintf(fmtProductAdded, "Cap", "hats"), e.gw.lastText().text)
	assert.Equal(t, session.StateIdle, e.sessions.State(adminID))
	assert.Equal(t, []string{"cap"}, e.gw.fetches)

	// The new category ended up in the persisted catalog.
	reopened, err := catalog.NewFileStore(e.dataFile)
	require.NoError(t, err)
	cat, err := reopened.Category(ctx, "hats")
	require.NoError(t, err)
	assert.Equal(t, "Hats", cat.Name)
	require.Len(t, cat.Products, 1)
	assert.Equal(t, "Cap", cat.Products[0].Name)
	assert.Equal(t, int64(500), cat.Products[0].Price)
	assert.Equal(t, "images/cap.jpg", cat.Products[0].PhotoPath)

	// Any user browsing the new category sees the product.
	e.send(t, text(buyerID, "Hats"))
	require.Len(t, e.gw.photos, 1)
	assert.Contains(t, e.gw.photos[0].caption, "Cap")
	assert.Contains(t, e.gw.photos[0].caption, "500")
}

func TestAdminAddProductToExistingCategory(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	e.send(t, text(adminID, "/add_product"))

	// While selecting, a category button press feeds the wizard rather
	// than browsing the category.
	e.send(t, text(adminID, "👕 Футболки"))
	assert.Equal(t, textEnterProductName, e.gw.lastText().text)
	assert.Empty(t, e.gw.photos)

	e.send(t, text(adminID, "Поло"))
	e.send(t, text(adminID, "1500"))
	e.send(t, text(adminID, "Поло с воротником"))
	e.send(t, photo(adminID, "polo"))

	cat, err := e.catalog.Category(ctx, "t-shirts")
	require.NoError(t, err)
	require.Len(t, cat.Products, 3)
	assert.Equal(t, "Поло", cat.Products[2].Name)
}

func TestAdminWizardReprompts(t *testing.T) {
	e := newTestEnv(t)

	e.send(t, text(adminID, "/add_product"))

	e.send(t, text(adminID, "Нет такой категории"))
	assert.Equal(t, textCategoryNotFound, e.gw.lastText().text)
	assert.Equal(t, session.StateAddCategory, e.sessions.State(adminID))

	e.send(t, text(adminID, "👖 Джинсы"))
	e.send(t, text(adminID, "Джинсы рваные"))

	for _, bad := range []string{"дорого", "0", "-100"} {
		e.send(t, text(adminID, bad))
		assert.Equal(t, textBadPrice, e.gw.lastText().text, "input %q", bad)
		assert.Equal(t, session.StateAddPrice, e.sessions.State(adminID), "input %q", bad)
	}

	e.send(t, text(adminID, "2500"))
	e.send(t, text(adminID, "Модные джинсы"))

	// The photo step keeps re-prompting on text input.
	e.send(t, text(adminID, "вот фото"))
	assert.Equal(t, textNeedPhoto, e.gw.lastText().text)
	assert.Equal(t, session.StateAddPhoto, e.sessions.State(adminID))
}

func TestDuplicateCategoryNameReprompts(t *testing.T) {
	e := newTestEnv(t)

	e.send(t, text(adminID, "/add_product"))
	e.send(t, text(adminID, btnNewCategory))
	e.send(t, text(adminID, "Hats"))
	e.send(t, text(adminID, "/cancel"))

	e.send(t, text(adminID, "/add_product"))
	e.send(t, text(adminID, btnNewCategory))
	e.send(t, text(adminID, "HATS"))
	assert.Equal(t, textCategoryExists, e.gw.lastText().text)
	assert.Equal(t, session.StateAddNewCategory, e.sessions.State(adminID))
}

func TestConfirmOrderCallback(t *testing.T) {
	e := newTestEnv(t)

	orderText := "🛍️ **Новый заказ!**\n..."
	ev := gateway.Event{
		UserID:       adminID,
		Kind:         gateway.EventCallback,
		CallbackID:   "cb",
		CallbackData: notifier.CallbackConfirm,
		MessageID:    5,
		MessageText:  orderText,
	}
	e.send(t, ev)

	require.Len(t, e.gw.edits, 1)
	assert.Contains(t, e.gw.edits[0], "Заказ подтвержден")

	// Confirming again over the edited text does not stack markers.
	ev.MessageText = e.gw.edits[0]
	e.send(t, ev)
	assert.Len(t, e.gw.edits, 1)
}

func TestConfirmOrderCallbackRejectsNonAdmin(t *testing.T) {
	e := newTestEnv(t)

	ev := gateway.Event{
		UserID:       strayID,
		Kind:         gateway.EventCallback,
		CallbackID:   "cb",
		CallbackData: notifier.CallbackConfirm,
		MessageID:    5,
		MessageText:  "order",
	}
	e.send(t, ev)
	assert.Empty(t, e.gw.edits)
}

func TestStrayPhotoOutsideFlowIsIgnored(t *testing.T) {
	e := newTestEnv(t)

	// Photos outside the add-product flow are dropped without ever being
	// downloaded, so non-admin users cannot fill the disk.
	e.send(t, photo(buyerID, "spam1"))
	e.send(t, photo(buyerID, "spam2"))
	e.send(t, photo(strayID, "spam3"))
	assert.Empty(t, e.gw.texts)
	assert.Empty(t, e.gw.photos)
	assert.Empty(t, e.gw.fetches)
}
