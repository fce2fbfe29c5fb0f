package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"wardenbot/internal/core/domain"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Should be configured properly for production
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Envelope is the wire frame exchanged with platform adapter clients.
type Envelope struct {
	Type    string          `json:"type"`
	ID      string          `json:"id,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// EventSink receives chat events decoded from adapter connections.
type EventSink interface {
	HandleEvent(ctx context.Context, event *domain.InboundEvent)
}

type adapterConn struct {
	conn *websocket.Conn
	mu   sync.Mutex // guards writes
}

func (a *adapterConn) writeJSON(timeout time.Duration, v interface{}) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.conn.SetWriteDeadline(time.Now().Add(timeout))
	return a.conn.WriteJSON(v)
}

type WebSocketServer struct {
	auth *TokenAuthenticator
	sink EventSink

	connections map[string]*adapterConn
	mu          sync.RWMutex

	pending   map[string]chan json.RawMessage
	pendingMu sync.Mutex

	pingInterval   time.Duration
	pongTimeout    time.Duration
	writeTimeout   time.Duration
	requestTimeout time.Duration

	logger *zap.SugaredLogger
}

func NewWebSocketServer(auth *TokenAuthenticator, logger *zap.SugaredLogger) *WebSocketServer {
	return &WebSocketServer{
		auth:           auth,
		connections:    make(map[string]*adapterConn),
		pending:        make(map[string]chan json.RawMessage),
		pingInterval:   30 * time.Second,
		pongTimeout:    60 * time.Second,
		writeTimeout:   10 * time.Second,
		requestTimeout: 10 * time.Second,
		logger:         logger,
	}
}

// SetEventSink wires the dispatcher that consumes inbound chat events.
func (s *WebSocketServer) SetEventSink(sink EventSink) {
	s.sink = sink
}

// SetPingInterval sets ping interval for WebSocket connections
func (s *WebSocketServer) SetPingInterval(interval time.Duration) {
	s.pingInterval = interval
}

// SetPongTimeout sets pong timeout for WebSocket connections
func (s *WebSocketServer) SetPongTimeout(timeout time.Duration) {
	s.pongTimeout = timeout
}

// SetRequestTimeout bounds how long outbound queries wait for an adapter reply.
func (s *WebSocketServer) SetRequestTimeout(timeout time.Duration) {
	s.requestTimeout = timeout
}

func (s *WebSocketServer) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "token required", http.StatusUnauthorized)
		return
	}
	claims, err := s.auth.Validate(token)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}
	clientID := claims.ClientID
	if clientID == "" {
		http.Error(w, "client_id required", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Errorw("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	ac := &adapterConn{conn: conn}

	s.mu.Lock()
	existing, isReconnect := s.connections[clientID]
	if isReconnect && existing != nil {
		existing.conn.Close()
		s.logger.Infow("closing old connection for reconnecting adapter", "client_id", clientID)
	}
	s.connections[clientID] = ac
	s.mu.Unlock()

	s.logger.Infow("adapter connected", "client_id", clientID, "reconnect", isReconnect)

	conn.SetReadDeadline(time.Now().Add(s.pongTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(s.pongTimeout))
		return nil
	})

	pingTicker := time.NewTicker(s.pingInterval)
	defer pingTicker.Stop()

	messageChan := make(chan Envelope, 16)
	errorChan := make(chan error, 1)

	go func() {
		for {
			var msg Envelope
			if err := conn.ReadJSON(&msg); err != nil {
				errorChan <- err
				return
			}
			conn.SetReadDeadline(time.Now().Add(s.pongTimeout))
			messageChan <- msg
		}
	}()

	for {
		select {
		case msg := <-messageChan:
			if err := s.handleMessage(context.Background(), clientID, msg); err != nil {
				s.logger.Infow("error handling message from adapter", "client_id", clientID, "error", err)
				s.sendError(ac, err.Error())
			}

		case <-pingTicker.C:
			ac.mu.Lock()
			conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
			err := conn.WriteMessage(websocket.PingMessage, nil)
			ac.mu.Unlock()
			if err != nil {
				s.logger.Infow("error sending ping", "client_id", clientID, "error", err)
				goto cleanup
			}

		case err := <-errorChan:
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				s.logger.Infow("error reading message from adapter", "client_id", clientID, "error", err)
			}
			goto cleanup
		}
	}

cleanup:
	s.mu.Lock()
	if cur, ok := s.connections[clientID]; ok && cur == ac {
		delete(s.connections, clientID)
	}
	s.mu.Unlock()

	s.logger.Infow("adapter disconnected", "client_id", clientID)
}

func (s *WebSocketServer) handleMessage(ctx context.Context, clientID string, msg Envelope) error {
	if msg.Type == "" {
		return fmt.Errorf("message type is required")
	}

	switch msg.Type {
	case "event":
		return s.handleEvent(ctx, msg)
	case "response":
		return s.handleResponse(msg)
	default:
		return fmt.Errorf("unknown message type: %s", msg.Type)
	}
}

func (s *WebSocketServer) handleEvent(ctx context.Context, msg Envelope) error {
	var event domain.InboundEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		return fmt.Errorf("invalid event payload: %w", err)
	}
	if event.Group == "" {
		return fmt.Errorf("group_id is required")
	}
	if s.sink == nil {
		return fmt.Errorf("no event sink configured")
	}

	// Events are handled off the read loop so a slow command cannot
	// stall ping/pong traffic.
	go s.sink.HandleEvent(ctx, &event)
	return nil
}

func (s *WebSocketServer) handleResponse(msg Envelope) error {
	if msg.ID == "" {
		return fmt.Errorf("response id is required")
	}

	s.pendingMu.Lock()
	ch, exists := s.pending[msg.ID]
	if exists {
		delete(s.pending, msg.ID)
	}
	s.pendingMu.Unlock()

	if !exists {
		// Late reply for a request that already timed out.
		return nil
	}
	ch <- msg.Payload
	return nil
}

// request sends an envelope to a connected adapter and waits for the
// correlated response.
func (s *WebSocketServer) request(ctx context.Context, env Envelope) (json.RawMessage, error) {
	ac, err := s.anyConnection()
	if err != nil {
		return nil, err
	}

	ch := make(chan json.RawMessage, 1)
	s.pendingMu.Lock()
	s.pending[env.ID] = ch
	s.pendingMu.Unlock()

	cleanup := func() {
		s.pendingMu.Lock()
		delete(s.pending, env.ID)
		s.pendingMu.Unlock()
	}

	if err := ac.writeJSON(s.writeTimeout, env); err != nil {
		cleanup()
		return nil, fmt.Errorf("failed to send request to adapter: %w", err)
	}

	timer := time.NewTimer(s.requestTimeout)
	defer timer.Stop()

	select {
	case payload := <-ch:
		return payload, nil
	case <-timer.C:
		cleanup()
		return nil, fmt.Errorf("adapter request %s timed out", env.Type)
	case <-ctx.Done():
		cleanup()
		return nil, ctx.Err()
	}
}

// send delivers a fire-and-forget envelope to a connected adapter.
func (s *WebSocketServer) send(env Envelope) error {
	ac, err := s.anyConnection()
	if err != nil {
		return err
	}
	return ac.writeJSON(s.writeTimeout, env)
}

func (s *WebSocketServer) anyConnection() (*adapterConn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, ac := range s.connections {
		return ac, nil
	}
	return nil, fmt.Errorf("no adapter connected")
}

func (s *WebSocketServer) sendError(ac *adapterConn, message string) {
	ac.writeJSON(s.writeTimeout, Envelope{
		Type:    "error",
		Payload: mustMarshal(map[string]string{"message": message}),
	})
}

func (s *WebSocketServer) ConnectedClients() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	clients := make([]string, 0, len(s.connections))
	for id := range s.connections {
		clients = append(clients, id)
	}
	return clients
}

func mustMarshal(v interface{}) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return data
}
