package gateway

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Anya-Gubskay/Shop-bot/internal/util"
)

// Telegram adapts the Telegram Bot API to the Sender interface and pumps
// long-poll updates into Events. Photo events carry only the file ID;
// FetchPhoto downloads the attachment into imagesDir on demand.
type Telegram struct {
	api       *tgbotapi.BotAPI
	imagesDir string
	logger    *zap.Logger
}

// NewTelegram authorizes the bot and ensures the images directory exists
func NewTelegram(token, imagesDir string) (*Telegram, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to authorize bot: %w", err)
	}

	if err := os.MkdirAll(imagesDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create images dir: %w", err)
	}

	t := &Telegram{
		api:       api,
		imagesDir: imagesDir,
		logger:    util.GetLogger(),
	}
	t.logger.Info("Telegram bot authorized", zap.String("username", api.Self.UserName))
	return t, nil
}

// Updates starts long polling and returns the inbound event stream. The
// channel closes when ctx is cancelled.
func (t *Telegram) Updates(ctx context.Context) <-chan Event {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := t.api.GetUpdatesChan(u)

	events := make(chan Event)
	go func() {
		defer close(events)
		for {
			select {
			case <-ctx.Done():
				t.api.StopReceivingUpdates()
				return
			case update, ok := <-updates:
				if !ok {
					return
				}
				ev, ok := t.convert(update)
				if !ok {
					continue
				}
				select {
				case events <- ev:
				case <-ctx.Done():
					t.api.StopReceivingUpdates()
					return
				}
			}
		}
	}()
	return events
}

func (t *Telegram) convert(update tgbotapi.Update) (Event, bool) {
	switch {
	case update.CallbackQuery != nil:
		cb := update.CallbackQuery
		ev := Event{
			UserID:       cb.From.ID,
			Kind:         EventCallback,
			CallbackID:   cb.ID,
			CallbackData: cb.Data,
		}
		if cb.Message != nil {
			ev.MessageID = cb.Message.MessageID
			ev.MessageText = cb.Message.Text
		}
		return ev, true

	case update.Message != nil && len(update.Message.Photo) > 0:
		sizes := update.Message.Photo
		return Event{
			UserID:      update.Message.From.ID,
			Kind:        EventPhoto,
			PhotoFileID: sizes[len(sizes)-1].FileID,
		}, true

	case update.Message != nil && update.Message.Text != "":
		return Event{
			UserID: update.Message.From.ID,
			Kind:   EventText,
			Text:   update.Message.Text,
		}, true
	}
	return Event{}, false
}

// FetchPhoto downloads the file behind fileID into imagesDir under a
// generated name and returns the local path.
func (t *Telegram) FetchPhoto(ctx context.Context, fileID string) (string, error) {
	file, err := t.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return "", fmt.Errorf("failed to resolve file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, file.Link(t.api.Token), nil)
	if err != nil {
		return "", err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status fetching file: %s", resp.Status)
	}

	path := filepath.Join(t.imagesDir, uuid.New().String()+".jpg")
	out, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	return path, nil
}

func markup(kb *Keyboard) interface{} {
	if kb == nil {
		return nil
	}

	if kb.Inline {
		rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(kb.Rows))
		for _, row := range kb.Rows {
			buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
			for _, b := range row {
				buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(b.Text, b.Data))
			}
			rows = append(rows, buttons)
		}
		return tgbotapi.NewInlineKeyboardMarkup(rows...)
	}

	rows := make([][]tgbotapi.KeyboardButton, 0, len(kb.Rows))
	for _, row := range kb.Rows {
		buttons := make([]tgbotapi.KeyboardButton, 0, len(row))
		for _, b := range row {
			buttons = append(buttons, tgbotapi.NewKeyboardButton(b.Text))
		}
		rows = append(rows, buttons)
	}
	return tgbotapi.NewReplyKeyboard(rows...)
}

// SendText sends a text message with an optional keyboard
func (t *Telegram) SendText(_ context.Context, chatID int64, text string, kb *Keyboard) error {
	msg := tgbotapi.NewMessage(chatID, text)
	if m := markup(kb); m != nil {
		msg.ReplyMarkup = m
	}
	if _, err := t.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// SendPhoto sends a local photo file with a caption
func (t *Telegram) SendPhoto(_ context.Context, chatID int64, photoPath, caption string, kb *Keyboard) error {
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FilePath(photoPath))
	photo.Caption = caption
	if m := markup(kb); m != nil {
		photo.ReplyMarkup = m
	}
	if _, err := t.api.Send(photo); err != nil {
		return fmt.Errorf("failed to send photo: %w", err)
	}
	return nil
}

// EditMessageText replaces the text of a previously sent message
func (t *Telegram) EditMessageText(_ context.Context, chatID int64, messageID int, text string) error {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	if _, err := t.api.Send(edit); err != nil {
		return fmt.Errorf("failed to edit message: %w", err)
	}
	return nil
}

// AnswerCallback acknowledges a callback query with a short notification
func (t *Telegram) AnswerCallback(_ context.Context, callbackID, text string) error {
	cb := tgbotapi.NewCallback(callbackID, text)
	if _, err := t.api.Request(cb); err != nil {
		return fmt.Errorf("failed to answer callback: %w", err)
	}
	return nil
}
