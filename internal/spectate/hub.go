package spectate

import (
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBufSize    = 16
	maxViewers     = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true // Non-browser clients don't send Origin
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return u.Host == r.Host
	},
}

// viewer is one connected spectator.
type viewer struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	addr string
}

// Hub fans encoded frames out to every connected viewer.
// Viewers that fall behind miss frames instead of slowing the game down.
type Hub struct {
	mu      sync.RWMutex
	viewers map[*viewer]struct{}
	log     *log.Logger
}

// NewHub creates an empty hub.
func NewHub(logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.Default()
	}
	return &Hub{viewers: make(map[*viewer]struct{}), log: logger}
}

// ViewerCount returns the number of connected viewers.
func (h *Hub) ViewerCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.viewers)
}

// Publish encodes f once and queues it for every viewer.
func (h *Hub) Publish(f Frame) error {
	h.mu.RLock()
	empty := len(h.viewers) == 0
	h.mu.RUnlock()
	if empty {
		return nil
	}

	data, err := Encode(f)
	if err != nil {
		return err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for v := range h.viewers {
		select {
		case v.send <- data:
		default:
			// Viewer too slow, drop frame
		}
	}
	return nil
}

// Close disconnects every viewer.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for v := range h.viewers {
		delete(h.viewers, v)
		close(v.send)
	}
}

// ServeHTTP upgrades the request to a WebSocket and registers the viewer.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.ViewerCount() >= maxViewers {
		http.Error(w, "too many viewers", http.StatusServiceUnavailable)
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("upgrade failed", "remote", r.RemoteAddr, "err", err)
		return
	}

	v := &viewer{hub: h, conn: conn, send: make(chan []byte, sendBufSize), addr: remoteIP(r)}
	h.mu.Lock()
	h.viewers[v] = struct{}{}
	h.mu.Unlock()
	h.log.Debug("viewer connected", "remote", v.addr)

	go v.writePump()
	go v.readPump()
}

func (h *Hub) unregister(v *viewer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.viewers[v]; ok {
		delete(h.viewers, v)
		close(v.send)
		h.log.Debug("viewer disconnected", "remote", v.addr)
	}
}

// readPump discards incoming messages and notices disconnects.
func (v *viewer) readPump() {
	defer func() {
		v.hub.unregister(v)
		v.conn.Close()
	}()

	v.conn.SetReadLimit(maxMessageSize)
	v.conn.SetReadDeadline(time.Now().Add(pongWait))
	v.conn.SetPongHandler(func(string) error {
		v.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := v.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				v.hub.log.Debug("viewer read", "remote", v.addr, "err", err)
			}
			return
		}
	}
}

// writePump writes queued frames and keeps the connection alive.
func (v *viewer) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		v.conn.Close()
	}()

	for {
		select {
		case data, ok := <-v.send:
			v.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				v.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := v.conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			v.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := v.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
