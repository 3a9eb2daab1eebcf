// Package server runs the per-connection lifecycle: admission, routing of
// inbound frames to the room, and teardown.
package server

import (
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/Tyrowin/minirpg/internal/room"
)

// Gateway connects WebSocket clients to a room. Room handlers compute events;
// the gateway publishes them through the hub outside of any registry lock.
type Gateway struct {
	room *room.Room
	hub  *Hub
}

// NewGateway creates a gateway for rm that publishes through hub.
func NewGateway(rm *room.Room, hub *Hub) *Gateway {
	return &Gateway{room: rm, hub: hub}
}

// Room returns the room served by the gateway.
func (g *Gateway) Room() *room.Room {
	return g.room
}

// Hub returns the hub used for fan-out.
func (g *Gateway) Hub() *Hub {
	return g.hub
}

// Connect admits a freshly upgraded connection. When the room is full the
// connection receives a server_error event and is closed without ever
// entering the registry; room.ErrRoomFull is returned in that case.
//
// On success the client is attached to the hub, gets init_state as its first
// event, and everybody else is told about the new participant before any
// event the newcomer causes.
func (g *Gateway) Connect(conn *websocket.Conn, rawName, addr string) (*Client, error) {
	id := uuid.NewString()

	participant, err := g.room.Admit(id, rawName)
	if err != nil {
		if errors.Is(err, room.ErrRoomFull) {
			log.Printf("Rejected %s from %s: room is full", room.SanitizeName(rawName), addr)
			reject(conn, room.ServerFullEvent())
		} else {
			closeConn(conn)
		}
		return nil, err
	}

	client := NewClient(conn, g, id, addr)
	err = g.hub.Register(client, Attachment{
		Welcome:  func() room.Event { return g.room.InitState(id) },
		Announce: func() room.Event { return room.Joined(participant) },
	})
	if err != nil {
		log.Printf("Could not attach %s from %s: %v", id, addr, err)
		g.room.Leave(id)
		closeConn(conn)
		return nil, err
	}

	log.Printf("Player %q (%s) joined from %s", participant.Name, id, addr)
	return client, nil
}

// Route hands one inbound frame to the room and publishes the outcome.
// Movement and chat are echoed to the sender as well.
func (g *Gateway) Route(c *Client, raw []byte) {
	if event, ok := g.room.Dispatch(c.id, raw); ok {
		g.hub.BroadcastAll(event)
	}
}

// Disconnect tears down c. It is safe to call more than once; player_left is
// only broadcast by the call that actually removed the participant.
func (g *Gateway) Disconnect(c *Client) {
	g.hub.Unregister(c)

	event, ok := g.room.Leave(c.id)
	if !ok {
		return
	}
	log.Printf("Player %s left. Players online: %d", c.id, g.room.Registry().Len())
	g.hub.BroadcastAll(event)
}

// reject writes event directly to an unregistered connection and closes it.
func reject(conn *websocket.Conn, event room.Event) {
	if conn == nil {
		return
	}
	defer closeConn(conn)

	data, err := event.Marshal()
	if err != nil {
		log.Printf("Error encoding %s event: %v", event.Type, err)
		return
	}

	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		log.Printf("Error setting write deadline for rejection: %v", err)
		return
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		log.Printf("Error writing rejection: %v", err)
		return
	}
	closeMsg := websocket.FormatCloseMessage(websocket.CloseTryAgainLater, room.ErrorServerFull)
	if err := conn.WriteMessage(websocket.CloseMessage, closeMsg); err != nil && !isExpectedCloseError(err) {
		log.Printf("Error writing close message for rejection: %v", err)
	}
}

func closeConn(conn *websocket.Conn) {
	if conn == nil {
		return
	}
	if err := conn.Close(); err != nil && !isExpectedCloseError(err) {
		log.Printf("Error closing connection: %v", err)
	}
}
