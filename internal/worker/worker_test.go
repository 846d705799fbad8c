package worker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Anya-Gubskay/Shop-bot/internal/gateway"
)

type recordingHandler struct {
	mu     sync.Mutex
	byUser map[int64][]string
}

func newRecordingHandler() *recordingHandler {
	return &recordingHandler{byUser: make(map[int64][]string)}
}

func (h *recordingHandler) HandleEvent(_ context.Context, ev gateway.Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.byUser[ev.UserID] = append(h.byUser[ev.UserID], ev.Text)
	return nil
}

func (h *recordingHandler) seen(userID int64) []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.byUser[userID]...)
}

func TestDispatcherPreservesPerUserOrder(t *testing.T) {
	handler := newRecordingHandler()
	d := NewDispatcher(handler)

	events := make(chan gateway.Event)
	done := make(chan error, 1)
	go func() {
		done <- d.Start(context.Background(), events)
	}()

	const perUser = 50
	users := []int64{1, 2, 3}
	for i := 0; i < perUser; i++ {
		for _, u := range users {
			events <- gateway.Event{
				UserID: u,
				Kind:   gateway.EventText,
				Text:   string(rune('a' + i%26)),
			}
		}
	}
	close(events)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("dispatcher did not drain the event channel")
	}
	d.Stop()

	for _, u := range users {
		got := handler.seen(u)
		require.Len(t, got, perUser, "user %d", u)
		for i, text := range got {
			assert.Equal(t, string(rune('a'+i%26)), text, "user %d event %d", u, i)
		}
	}
}

func TestDispatcherStopsOnContextCancel(t *testing.T) {
	d := NewDispatcher(newRecordingHandler())

	ctx, cancel := context.WithCancel(context.Background())
	events := make(chan gateway.Event)
	done := make(chan error, 1)
	go func() {
		done <- d.Start(ctx, events)
	}()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("dispatcher did not stop on cancel")
	}
	d.Stop()
}

func TestDispatcherDropsEventsAfterStop(t *testing.T) {
	handler := newRecordingHandler()
	d := NewDispatcher(handler)

	events := make(chan gateway.Event)
	done := make(chan error, 1)
	go func() {
		done <- d.Start(context.Background(), events)
	}()

	events <- gateway.Event{UserID: 7, Kind: gateway.EventText, Text: "before"}
	require.Eventually(t, func() bool {
		return len(handler.seen(7)) == 1
	}, 5*time.Second, 5*time.Millisecond)

	d.Stop()

	// The context is still live and Start is still pumping; the late event
	// must be dropped, not handled on a freshly created queue.
	events <- gateway.Event{UserID: 7, Kind: gateway.EventText, Text: "after"}
	close(events)
	require.NoError(t, <-done)

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, []string{"before"}, handler.seen(7))
}

func TestDispatcherStopWaitsForInFlight(t *testing.T) {
	handler := newRecordingHandler()
	d := NewDispatcher(handler)

	events := make(chan gateway.Event)
	done := make(chan error, 1)
	go func() {
		done <- d.Start(context.Background(), events)
	}()

	events <- gateway.Event{UserID: 7, Kind: gateway.EventText, Text: "hello"}
	close(events)
	require.NoError(t, <-done)

	// Stop returns only after the queued event has been handled.
	d.Stop()
	assert.Equal(t, []string{"hello"}, handler.seen(7))
}
