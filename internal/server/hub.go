package server

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Tyrowin/roomchat/internal/chat"
)

const (
	defaultSendBufferSize = 256
	defaultMaxMessageSize = 4096
)

// Hub owns every live websocket connection. Its Run loop is the single
// context in which inbound frames are handled and connections are
// registered and unregistered, so chat handlers never interleave.
//
// Hub implements chat.Gateway.
type Hub struct {
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	inbound    chan inboundMessage
	protocol   Protocol
	logger     *slog.Logger

	sendBufferSize int
	maxMessageSize int64

	mutex  sync.RWMutex
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// HubOption configures a Hub.
type HubOption func(*Hub)

// WithSendBufferSize sets the per-connection outbound queue length.
func WithSendBufferSize(n int) HubOption {
	return func(h *Hub) {
		if n > 0 {
			h.sendBufferSize = n
		}
	}
}

// WithMaxMessageSize sets the largest inbound frame accepted, in bytes.
func WithMaxMessageSize(n int64) HubOption {
	return func(h *Hub) {
		if n > 0 {
			h.maxMessageSize = n
		}
	}
}

// WithHubLogger sets the hub's logger.
func WithHubLogger(logger *slog.Logger) HubOption {
	return func(h *Hub) {
		h.logger = logger
	}
}

// NewHub creates a hub with no protocol attached. Call SetProtocol before Run.
func NewHub(opts ...HubOption) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	h := &Hub{
		clients:        make(map[string]*Client),
		register:       make(chan *Client),
		unregister:     make(chan *Client),
		inbound:        make(chan inboundMessage),
		logger:         slog.Default(),
		sendBufferSize: defaultSendBufferSize,
		maxMessageSize: defaultMaxMessageSize,
		ctx:            ctx,
		cancel:         cancel,
		done:           make(chan struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.logger = h.logger.With("component", "hub")
	return h
}

// SetProtocol attaches the handler for decoded client events.
func (h *Hub) SetProtocol(p Protocol) {
	h.protocol = p
}

// Register hands a new client to the Run loop. It returns false if the hub
// is shutting down.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.ctx.Done():
		return false
	}
}

// ClientCount reports the number of registered connections.
func (h *Hub) ClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// Emit encodes event and queues it for connID without blocking. A connection
// whose queue is full is dropped: its socket is closed and the usual
// disconnect flow follows from its read pump.
func (h *Hub) Emit(connID string, event chat.Event) error {
	payload, err := encodeEvent(event)
	if err != nil {
		return err
	}
	return h.deliver(connID, payload)
}

func (h *Hub) deliver(connID string, payload []byte) error {
	h.mutex.RLock()
	client, ok := h.clients[connID]
	if !ok || client.closed {
		h.mutex.RUnlock()
		return ErrUnknownConnection
	}
	if h.safeSend(client, payload) {
		h.mutex.RUnlock()
		return nil
	}
	h.mutex.RUnlock()

	h.logger.Warn("dropping client with full send buffer",
		"conn_id", connID, "remote_addr", client.addr)
	client.drop()
	return ErrSendBufferFull
}

// safeSend must be called with h.mutex held. The send channel is only closed
// under the write lock after closed is set, so it is open here.
func (h *Hub) safeSend(client *Client, message []byte) bool {
	select {
	case client.send <- message:
		return true
	default:
		return false
	}
}

// Run is the hub's event loop. It returns after Shutdown.
func (h *Hub) Run() {
	defer close(h.done)

	for {
		select {
		case <-h.ctx.Done():
			h.shutdownClients()
			return

		case client := <-h.register:
			if client == nil {
				h.logger.Warn("received nil client registration; skipping")
				continue
			}
			h.addClient(client)

		case client := <-h.unregister:
			h.removeClient(client)

		case msg := <-h.inbound:
			h.handleInbound(msg)
		}
	}
}

func (h *Hub) addClient(client *Client) {
	h.mutex.Lock()
	client.closed = false
	h.clients[client.id] = client
	clientCount := len(h.clients)
	h.mutex.Unlock()
	h.logger.Info("client registered",
		"conn_id", client.id, "remote_addr", client.addr, "clients", clientCount)

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

func (h *Hub) removeClient(client *Client) {
	h.mutex.Lock()
	if current, ok := h.clients[client.id]; !ok || current != client {
		h.mutex.Unlock()
		return
	}
	delete(h.clients, client.id)
	client.closed = true
	clientCount := len(h.clients)
	h.mutex.Unlock()

	// Resolve the name before Disconnect removes the session.
	username := h.displayName(client.id)
	if h.protocol != nil {
		h.protocol.Disconnect(client.id)
	}
	// The write pump sends a close frame once send is closed.
	close(client.send)
	h.logger.Info("client unregistered",
		"conn_id", client.id, "username", username, "remote_addr", client.addr, "clients", clientCount)
}

func (h *Hub) handleInbound(msg inboundMessage) {
	client := msg.client
	req, err := decodeRequest(msg.payload)
	if err == nil {
		err = h.route(client.id, req)
	}
	if err != nil {
		h.logger.Debug("request failed",
			"conn_id", client.id, "username", h.displayName(client.id), "event", req.event, "error", err)
	}
	if req.ack == nil {
		return
	}

	ack, encErr := encodeAck(*req.ack, err)
	if encErr != nil {
		h.logger.Error("encoding ack", "conn_id", client.id, "error", encErr)
		return
	}
	if err := h.deliver(client.id, ack); err != nil {
		h.logger.Debug("ack not delivered", "conn_id", client.id, "error", err)
	}
}

// displayName is the session username for connID, or connID itself before
// the connection joins.
func (h *Hub) displayName(connID string) string {
	if h.protocol == nil {
		return connID
	}
	return h.protocol.DisplayName(connID)
}

func (h *Hub) route(connID string, req request) error {
	if h.protocol == nil {
		return chat.ErrUnsupportedEvent
	}
	switch req.event {
	case EventJoin:
		return h.protocol.Join(connID, req.join.Username, req.join.Room)
	case EventSendMessage:
		return h.protocol.SendMessage(connID, req.text)
	case EventSendLocation:
		return h.protocol.SendLocation(connID, req.location)
	default:
		return chat.ErrUnsupportedEvent
	}
}

// shutdownClients closes every socket; the pumps then exit on their own.
func (h *Hub) shutdownClients() {
	h.logger.Info("shutting down all client connections")

	h.mutex.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for _, client := range h.clients {
		clients = append(clients, client)
	}
	h.mutex.Unlock()

	for _, client := range clients {
		client.drop()
	}

	h.logger.Info("closed client connections", "count", len(clients))
}

// Shutdown stops the Run loop and waits for client goroutines to finish,
// or for timeout.
func (h *Hub) Shutdown(timeout time.Duration) error {
	h.logger.Info("initiating hub shutdown")

	h.cancel()
	<-h.done

	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		h.logger.Info("hub shutdown completed")
		return nil
	case <-time.After(timeout):
		h.logger.Warn("hub shutdown timeout reached, some goroutines may still be running")
		return context.DeadlineExceeded
	}
}
