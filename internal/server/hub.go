// Package server coordinates client registration, event fan-out, and
// connection cleanup for the Mini RPG WebSocket system via the Hub type.
package server

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/Tyrowin/minirpg/internal/room"
)

const hubQueueSize = 256

var (
	// ErrHubClosed is returned by Register once the hub has shut down.
	ErrHubClosed = errors.New("hub is shut down")
	// ErrClientExists is returned by Register when the id is already attached.
	ErrClientExists = errors.New("client already registered")
)

// Attachment lists the events the hub queues while attaching a client. Both
// hooks run on the hub goroutine, before the client's pumps start, so nothing
// the client does can be delivered ahead of them.
type Attachment struct {
	// Welcome is the first event the client itself receives.
	Welcome func() room.Event
	// Announce is delivered to every other attached client.
	Announce func() room.Event
}

// Hub is the broadcast bus. A single goroutine (Run) owns client
// registration and performs every enqueue, so each client receives events in
// the order they reached the hub. Enqueueing never blocks: a client whose
// outbound queue is full is dropped and its connection closed.
type Hub struct {
	clients    map[string]*Client
	deliveries chan delivery
	register   chan registration
	unregister chan *Client
	mutex      sync.RWMutex
	wg         sync.WaitGroup
	ctx        context.Context
	cancel     context.CancelFunc
	done       chan struct{}
}

// NewHub creates and initializes a new Hub instance with all necessary channels
// and client map. Run must be started before clients are registered.
func NewHub() *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		clients:    make(map[string]*Client),
		deliveries: make(chan delivery, hubQueueSize),
		register:   make(chan registration),
		unregister: make(chan *Client),
		ctx:        ctx,
		cancel:     cancel,
		done:       make(chan struct{}),
	}
}

// Register attaches client to the hub and waits until the hub has done so.
// It returns ErrHubClosed after shutdown and ErrClientExists when another
// client is attached under the same id; the caller owns the connection then.
func (h *Hub) Register(client *Client, att Attachment) error {
	if client == nil {
		return errors.New("nil client")
	}

	reg := registration{
		client:   client,
		welcome:  encodeHook(att.Welcome),
		announce: encodeHook(att.Announce),
		result:   make(chan error, 1),
	}

	select {
	case h.register <- reg:
		// Run replies from attach before it reads anything else.
		return <-reg.result
	case <-h.ctx.Done():
		return ErrHubClosed
	}
}

func encodeHook(hook func() room.Event) func() []byte {
	if hook == nil {
		return nil
	}
	return func() []byte { return encodeEvent(hook()) }
}

// Unregister detaches client and closes its outbound queue. Unregistering a
// client that is not attached is a no-op.
func (h *Hub) Unregister(client *Client) {
	if client == nil {
		return
	}
	select {
	case h.unregister <- client:
	case <-h.ctx.Done():
	}
}

// SendTo queues event for a single client.
func (h *Hub) SendTo(id string, event room.Event) {
	h.enqueue(delivery{To: id, Payload: encodeEvent(event)})
}

// BroadcastAll queues event for every registered client.
func (h *Hub) BroadcastAll(event room.Event) {
	h.enqueue(delivery{Payload: encodeEvent(event)})
}

// BroadcastExcept queues event for every registered client but id.
func (h *Hub) BroadcastExcept(id string, event room.Event) {
	h.enqueue(delivery{Except: id, Payload: encodeEvent(event)})
}

func (h *Hub) enqueue(d delivery) {
	if d.Payload == nil {
		return
	}
	select {
	case h.deliveries <- d:
	case <-h.ctx.Done():
	}
}

func encodeEvent(event room.Event) []byte {
	data, err := event.Marshal()
	if err != nil {
		log.Printf("Error encoding %s event: %v", event.Type, err)
		return nil
	}
	return data
}

// ClientCount returns the number of attached clients.
func (h *Hub) ClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// Run starts the hub's main event loop, handling client registration,
// unregistration, and event delivery. It returns after Shutdown.
func (h *Hub) Run() {
	defer close(h.done)

	for {
		select {
		case <-h.ctx.Done():
			h.shutdownClients()
			return

		case reg := <-h.register:
			h.attach(reg)

		case client := <-h.unregister:
			h.detach(client, "disconnected")

		case d := <-h.deliveries:
			h.deliver(d)
		}
	}
}

func (h *Hub) attach(reg registration) {
	client := reg.client

	h.mutex.Lock()
	if _, exists := h.clients[client.id]; exists {
		h.mutex.Unlock()
		log.Printf("Client %s is already registered; rejecting %s", client.id, client.addr)
		reg.result <- ErrClientExists
		return
	}
	h.clients[client.id] = client
	clientCount := len(h.clients)
	h.mutex.Unlock()

	if reg.welcome != nil {
		if payload := reg.welcome(); payload != nil {
			h.push(client, payload)
		}
	}
	if reg.announce != nil {
		h.deliver(delivery{Except: client.id, Payload: reg.announce()})
	}
	reg.result <- nil
	log.Printf("Client %s registered from %s. Total clients: %d", client.id, client.addr, clientCount)

	if client.conn == nil {
		return
	}
	h.wg.Add(2)
	go func() {
		defer h.wg.Done()
		client.writePump()
	}()
	go func() {
		defer h.wg.Done()
		client.readPump()
	}()
}

// detach removes client if it is still the one registered under its id and
// closes its queue, which makes the write pump close the connection.
func (h *Hub) detach(client *Client, reason string) {
	h.mutex.Lock()
	current, ok := h.clients[client.id]
	if !ok || current != client {
		h.mutex.Unlock()
		return
	}
	delete(h.clients, client.id)
	clientCount := len(h.clients)
	h.mutex.Unlock()

	close(client.send)
	log.Printf("Client %s %s. Total clients: %d", client.id, reason, clientCount)
}

func (h *Hub) deliver(d delivery) {
	if d.Payload == nil {
		return
	}
	if d.To != "" {
		h.mutex.RLock()
		client, ok := h.clients[d.To]
		h.mutex.RUnlock()
		if ok {
			h.push(client, d.Payload)
		}
		return
	}

	for _, client := range h.getClientSnapshot() {
		if client.id == d.Except {
			continue
		}
		h.push(client, d.Payload)
	}
}

// push queues payload on client without blocking. A full queue means the
// peer is not keeping up; it is dropped so nobody else waits on it.
func (h *Hub) push(client *Client, payload []byte) {
	select {
	case client.send <- payload:
	default:
		h.detach(client, "removed due to full send buffer")
	}
}

// getClientSnapshot returns a thread-safe snapshot of all current clients
func (h *Hub) getClientSnapshot() []*Client {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	clients := make([]*Client, 0, len(h.clients))
	for _, client := range h.clients {
		clients = append(clients, client)
	}
	return clients
}

// shutdownClients closes all active client connections; their read pumps then
// run the normal teardown.
func (h *Hub) shutdownClients() {
	log.Println("Shutting down all client connections...")

	clients := h.getClientSnapshot()
	for _, client := range clients {
		if client.conn == nil {
			continue
		}
		if err := client.conn.Close(); err != nil && !isExpectedCloseError(err) {
			log.Printf("Error closing client connection from %s: %v", client.addr, err)
		}
	}

	log.Printf("Closed %d client connections", len(clients))
}

// Shutdown stops the hub and waits for all client goroutines to complete.
// It returns context.DeadlineExceeded when the timeout is reached first.
func (h *Hub) Shutdown(timeout time.Duration) error {
	log.Println("Initiating hub shutdown...")

	h.cancel()
	<-h.done

	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Println("Hub shutdown completed successfully")
		return nil
	case <-time.After(timeout):
		log.Println("Hub shutdown timeout reached, some goroutines may still be running")
		return context.DeadlineExceeded
	}
}
