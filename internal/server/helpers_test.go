package server

import (
	"encoding/json"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/Tyrowin/minirpg/internal/room"
)

const receiveTimeout = 2 * time.Second

// newTestGateway returns a gateway whose hub is running and is shut down at
// the end of the test.
func newTestGateway(t *testing.T, cfg room.Config) *Gateway {
	t.Helper()

	hub := NewHub()
	go hub.Run()
	t.Cleanup(func() {
		_ = hub.Shutdown(time.Second)
	})

	rm := room.New(cfg, room.WithRand(rand.New(rand.NewPCG(1, 2))))
	return NewGateway(rm, hub)
}

// withConfig applies cfg for the duration of the test.
func withConfig(t *testing.T, mutate func(cfg *Config)) {
	t.Helper()
	cfg := NewConfig()
	if mutate != nil {
		mutate(cfg)
	}
	SetConfig(cfg)
	t.Cleanup(func() { SetConfig(nil) })
}

// receive reads the next queued event of a connection-less client.
func receive(t *testing.T, c *Client) room.Envelope {
	t.Helper()
	select {
	case data, ok := <-c.GetSendChan():
		require.True(t, ok, "send channel closed")
		var env room.Envelope
		require.NoError(t, json.Unmarshal(data, &env))
		return env
	case <-time.After(receiveTimeout):
		t.Fatalf("timed out waiting for an event on client %s", c.ID())
		return room.Envelope{}
	}
}

func expectNoEvent(t *testing.T, c *Client, wait time.Duration) {
	t.Helper()
	select {
	case data, ok := <-c.GetSendChan():
		if ok {
			t.Fatalf("unexpected event on client %s: %s", c.ID(), data)
		}
	case <-time.After(wait):
	}
}

func decodePayload[T any](t *testing.T, env room.Envelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Payload, &v))
	return v
}

func frame(t *testing.T, typ string, payload any) []byte {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	data, err := json.Marshal(room.Envelope{Type: typ, Payload: raw})
	require.NoError(t, err)
	return data
}

// startTestServer serves the application routes for gw.
func startTestServer(t *testing.T, gw *Gateway) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(SetupRoutes(gw))
	t.Cleanup(srv.Close)
	return srv
}

// dial opens a game connection with the given display name.
func dial(t *testing.T, srv *httptest.Server, name string) *websocket.Conn {
	t.Helper()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?name=" + url.QueryEscape(name)
	header := http.Header{}
	header.Set("Origin", srv.URL)

	dialer := websocket.Dialer{HandshakeTimeout: 5 * time.Second}
	conn, resp, err := dialer.Dial(wsURL, header)
	if resp != nil {
		_ = resp.Body.Close()
	}
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) room.Envelope {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(receiveTimeout)))
	var env room.Envelope
	require.NoError(t, conn.ReadJSON(&env))
	return env
}

// readUntil skips events until one of type typ arrives.
func readUntil(t *testing.T, conn *websocket.Conn, typ string) room.Envelope {
	t.Helper()
	for {
		env := readEvent(t, conn)
		if env.Type == typ {
			return env
		}
	}
}

func expectSilence(t *testing.T, conn *websocket.Conn, wait time.Duration) {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(wait)))
	_, data, err := conn.ReadMessage()
	require.Error(t, err, "unexpected event: %s", data)
}
