package server

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tyrowin/minirpg/internal/room"
)

func attach(t *testing.T, gw *Gateway, id string) *Client {
	t.Helper()
	c := NewClient(nil, gw, id, "test:"+id)
	require.NoError(t, gw.Hub().Register(c, Attachment{}))
	return c
}

func chatEvent(text string) room.Event {
	return room.Event{Type: room.TypeChat, Payload: room.ChatMessage{From: "x", Text: text}}
}

func TestHubRegisterDeliversAttachEventFirst(t *testing.T) {
	gw := newTestGateway(t, room.DefaultConfig())
	hub := gw.Hub()

	c := NewClient(nil, gw, "a", "test")
	require.NoError(t, hub.Register(c, Attachment{
		Welcome: func() room.Event {
			return room.Event{Type: room.TypeInitState, Payload: room.InitState{SelfID: "a"}}
		},
	}))
	hub.BroadcastAll(chatEvent("after"))

	first := receive(t, c)
	assert.Equal(t, room.TypeInitState, first.Type)
	assert.Equal(t, "a", decodePayload[room.InitState](t, first).SelfID)

	second := receive(t, c)
	assert.Equal(t, "after", decodePayload[room.ChatMessage](t, second).Text)
}

func TestHubRegisterAnnouncesToOthersBeforeLaterEvents(t *testing.T) {
	gw := newTestGateway(t, room.DefaultConfig())
	hub := gw.Hub()
	watcher := attach(t, gw, "watcher")

	c := NewClient(nil, gw, "b", "test")
	require.NoError(t, hub.Register(c, Attachment{
		Welcome:  func() room.Event { return chatEvent("welcome") },
		Announce: func() room.Event { return room.Event{Type: room.TypePlayerJoined, Payload: room.PlayerInfo{ID: "b"}} },
	}))
	hub.BroadcastAll(room.Event{Type: room.TypePlayerLeft, Payload: room.PlayerLeft{ID: "b"}})

	assert.Equal(t, room.TypePlayerJoined, receive(t, watcher).Type)
	assert.Equal(t, room.TypePlayerLeft, receive(t, watcher).Type)

	assert.Equal(t, "welcome", decodePayload[room.ChatMessage](t, receive(t, c)).Text)
	assert.Equal(t, room.TypePlayerLeft, receive(t, c).Type)
}

func TestHubRegisterRejectsDuplicateID(t *testing.T) {
	gw := newTestGateway(t, room.DefaultConfig())
	hub := gw.Hub()
	first := attach(t, gw, "a")

	second := NewClient(nil, gw, "a", "second")
	assert.ErrorIs(t, hub.Register(second, Attachment{
		Announce: func() room.Event { return chatEvent("should not be sent") },
	}), ErrClientExists)

	assert.Equal(t, 1, hub.ClientCount())
	expectNoEvent(t, first, 50*time.Millisecond)

	hub.BroadcastAll(chatEvent("to first"))
	assert.Equal(t, "to first", decodePayload[room.ChatMessage](t, receive(t, first)).Text)
}

func TestHubBroadcastVariants(t *testing.T) {
	gw := newTestGateway(t, room.DefaultConfig())
	hub := gw.Hub()
	a := attach(t, gw, "a")
	b := attach(t, gw, "b")

	hub.BroadcastAll(chatEvent("all"))
	assert.Equal(t, "all", decodePayload[room.ChatMessage](t, receive(t, a)).Text)
	assert.Equal(t, "all", decodePayload[room.ChatMessage](t, receive(t, b)).Text)

	hub.BroadcastExcept("a", chatEvent("not a"))
	assert.Equal(t, "not a", decodePayload[room.ChatMessage](t, receive(t, b)).Text)
	expectNoEvent(t, a, 50*time.Millisecond)

	hub.SendTo("a", chatEvent("only a"))
	assert.Equal(t, "only a", decodePayload[room.ChatMessage](t, receive(t, a)).Text)
	expectNoEvent(t, b, 50*time.Millisecond)

	hub.SendTo("nobody", chatEvent("lost"))
	expectNoEvent(t, a, 50*time.Millisecond)
}

func TestHubPreservesOrderPerClient(t *testing.T) {
	gw := newTestGateway(t, room.DefaultConfig())
	c := attach(t, gw, "a")

	texts := []string{"1", "2", "3", "4", "5"}
	for _, text := range texts {
		gw.Hub().BroadcastAll(chatEvent(text))
	}
	for _, want := range texts {
		assert.Equal(t, want, decodePayload[room.ChatMessage](t, receive(t, c)).Text)
	}
}

func TestHubDropsSlowClientWithoutBlockingOthers(t *testing.T) {
	withConfig(t, func(cfg *Config) {
		cfg.SendBufferSize = 1
	})
	gw := newTestGateway(t, room.DefaultConfig())
	hub := gw.Hub()
	slow := attach(t, gw, "slow")
	fast := attach(t, gw, "fast")

	for _, text := range []string{"1", "2", "3"} {
		hub.BroadcastAll(chatEvent(text))
		assert.Equal(t, text, decodePayload[room.ChatMessage](t, receive(t, fast)).Text)
	}

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	// The slow client keeps what was queued, then sees its queue closed.
	assert.Equal(t, "1", decodePayload[room.ChatMessage](t, receive(t, slow)).Text)
	_, ok := <-slow.GetSendChan()
	assert.False(t, ok)
}

func TestHubUnregisterIsIdempotent(t *testing.T) {
	gw := newTestGateway(t, room.DefaultConfig())
	hub := gw.Hub()
	c := attach(t, gw, "a")

	hub.Unregister(c)
	hub.Unregister(c)

	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 5*time.Millisecond)
	_, ok := <-c.GetSendChan()
	assert.False(t, ok)
}

func TestHubUnregisterIgnoresStaleClientWithSameID(t *testing.T) {
	gw := newTestGateway(t, room.DefaultConfig())
	hub := gw.Hub()
	current := attach(t, gw, "a")

	stale := NewClient(nil, gw, "a", "stale")
	hub.Unregister(stale)
	hub.BroadcastAll(chatEvent("still here"))

	assert.Equal(t, "still here", decodePayload[room.ChatMessage](t, receive(t, current)).Text)
	assert.Equal(t, 1, hub.ClientCount())
}

func TestHubShutdown(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	require.NoError(t, hub.Shutdown(time.Second))

	// Operations after shutdown return instead of blocking.
	c := NewClient(nil, nil, "late", "test")
	assert.ErrorIs(t, hub.Register(c, Attachment{}), ErrHubClosed)
	hub.Unregister(c)
	hub.BroadcastAll(chatEvent("nobody listens"))
}
