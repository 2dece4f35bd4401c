// SPDX-License-Identifier: MIT
package transport

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"spectrum/internal/log"
	"spectrum/internal/spectrum"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	// WebSocketPath is the endpoint clients connect to.
	WebSocketPath = "/ws"

	broadcastBuffer = 8
	writeTimeout    = time.Second
)

// Message is the JSON document sent per result.
type Message struct {
	Type          string    `json:"type"`
	Sequence      uint64    `json:"seq"`
	Timestamp     int64     `json:"ts"`
	PeakHz        float64   `json:"peak_hz"`
	PeakMagnitude float64   `json:"peak_magnitude"`
	Frequencies   []float64 `json:"frequencies"`
	Magnitudes    []float64 `json:"magnitudes"`
}

// NewMessage converts a result to its wire form. The slices are shared with
// the result.
func NewMessage(r spectrum.Result) Message {
	return Message{
		Type:          "spectrum",
		Sequence:      r.Sequence,
		Timestamp:     r.Time.UnixNano(),
		PeakHz:        r.Peak.Frequency,
		PeakMagnitude: r.Peak.Magnitude,
		Frequencies:   r.Frame.Frequencies,
		Magnitudes:    r.Frame.Magnitudes,
	}
}

// WebSocketTransport broadcasts results as JSON to every connected client.
// Present never blocks; when the broadcast queue is full the result is
// dropped.
type WebSocketTransport struct {
	logger    *zap.SugaredLogger
	upgrader  websocket.Upgrader
	listener  net.Listener
	server    *http.Server
	clients   map[*websocket.Conn]struct{}
	clientsMu sync.Mutex
	broadcast chan Message
	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
	closed    atomic.Bool
	dropped   atomic.Uint64
}

// NewWebSocketTransport listens on addr and serves WebSocketPath.
func NewWebSocketTransport(addr string) (*WebSocketTransport, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	wst := &WebSocketTransport{
		logger: log.Named("websocket"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // Local visualisers are served from anywhere.
			},
		},
		listener:  ln,
		clients:   make(map[*websocket.Conn]struct{}),
		broadcast: make(chan Message, broadcastBuffer),
		done:      make(chan struct{}),
	}

	mux := http.NewServeMux()
	mux.HandleFunc(WebSocketPath, wst.handleWebSocket)
	wst.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	wst.wg.Add(2)
	go func() {
		defer wst.wg.Done()
		wst.logger.Infow("serving", "addr", "ws://"+ln.Addr().String()+WebSocketPath)
		if err := wst.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			wst.logger.Errorw("server error", "error", err)
		}
	}()
	go wst.handleBroadcasts()

	return wst, nil
}

// Addr returns the listening address.
func (wst *WebSocketTransport) Addr() net.Addr { return wst.listener.Addr() }

// handleWebSocket upgrades HTTP connections to WebSocket
func (wst *WebSocketTransport) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := wst.upgrader.Upgrade(w, r, nil)
	if err != nil {
		wst.logger.Warnw("upgrade failed", "error", err)
		return
	}

	wst.clientsMu.Lock()
	wst.clients[conn] = struct{}{}
	total := len(wst.clients)
	wst.clientsMu.Unlock()
	wst.logger.Infow("client connected", "remote", conn.RemoteAddr().String(), "clients", total)

	// Drain and discard client frames until the connection closes.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				wst.removeClient(conn)
				return
			}
		}
	}()
}

func (wst *WebSocketTransport) removeClient(conn *websocket.Conn) {
	wst.clientsMu.Lock()
	_, ok := wst.clients[conn]
	delete(wst.clients, conn)
	total := len(wst.clients)
	wst.clientsMu.Unlock()
	if ok {
		conn.Close()
		wst.logger.Infow("client disconnected", "clients", total)
	}
}

// Clients returns the number of connected clients.
func (wst *WebSocketTransport) Clients() int {
	wst.clientsMu.Lock()
	defer wst.clientsMu.Unlock()
	return len(wst.clients)
}

// handleBroadcasts sends messages to all connected clients
func (wst *WebSocketTransport) handleBroadcasts() {
	defer wst.wg.Done()
	for {
		select {
		case <-wst.done:
			return
		case msg := <-wst.broadcast:
			wst.clientsMu.Lock()
			clients := make([]*websocket.Conn, 0, len(wst.clients))
			for c := range wst.clients {
				clients = append(clients, c)
			}
			wst.clientsMu.Unlock()

			for _, c := range clients {
				c.SetWriteDeadline(time.Now().Add(writeTimeout))
				if err := c.WriteJSON(msg); err != nil {
					wst.logger.Debugw("write failed", "error", err)
					wst.removeClient(c)
				}
			}
		}
	}
}

// Present queues r for broadcast.
func (wst *WebSocketTransport) Present(r spectrum.Result) error {
	if wst.closed.Load() {
		return ErrClosed
	}
	select {
	case wst.broadcast <- NewMessage(r):
	default:
		wst.dropped.Add(1)
	}
	return nil
}

// Dropped returns the number of results discarded because the broadcast
// queue was full.
func (wst *WebSocketTransport) Dropped() uint64 { return wst.dropped.Load() }

// Close disconnects every client and shuts the server down.
func (wst *WebSocketTransport) Close() error {
	var err error
	wst.closeOnce.Do(func() {
		wst.closed.Store(true)
		close(wst.done)
		err = wst.server.Close()

		wst.clientsMu.Lock()
		for c := range wst.clients {
			c.Close()
		}
		clear(wst.clients)
		wst.clientsMu.Unlock()

		wst.wg.Wait()
		wst.logger.Info("closed")
	})
	return err
}

// Ensure WebSocketTransport satisfies the interface
var _ Transport = (*WebSocketTransport)(nil)
