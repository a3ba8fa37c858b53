package event

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/nexora/nexora/pkg/utils"
)

const (
	wsSendBuffer    = 64
	wsPingInterval  = 30 * time.Second
	wsReadDeadline  = 60 * time.Second
	wsWriteDeadline = 5 * time.Second
)

// WSMessage is the JSON frame pushed to websocket clients.
type WSMessage struct {
	Event string         `json:"event"`          // e.g. "chat.completed"
	Data  map[string]any `json:"data,omitempty"` // exported event fields
	TS    int64          `json:"ts"`             // Unix ms
}

// WSHandler streams emitter events to websocket clients.
type WSHandler struct {
	emitter  *Emitter
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

// NewWSHandler creates a websocket handler over the global emitter.
func NewWSHandler() *WSHandler {
	return &WSHandler{
		emitter: Global(),
		logger:  utils.GetLogger(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Handle upgrades the connection and forwards events until the client
// goes away. The optional `events` query param is a comma-separated
// list of event names to subscribe to; empty means all.
//
// Example: /ws/events?events=chat.completed,conversation.archived
func (h *WSHandler) Handle(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	var filter map[string]bool
	if raw := c.Query("events"); raw != "" {
		filter = make(map[string]bool)
		for _, name := range strings.Split(raw, ",") {
			if name = strings.TrimSpace(name); name != "" {
				filter[name] = true
			}
		}
	}

	// Slow clients drop frames instead of blocking the emitter.
	sendCh := make(chan WSMessage, wsSendBuffer)
	done := make(chan struct{})

	unsubscribe := h.emitter.OnAny(func(ev Event) {
		if filter != nil && !filter[ev.EventName()] {
			return
		}
		msg := WSMessage{
			Event: ev.EventName(),
			Data:  eventToData(ev),
			TS:    time.Now().UnixMilli(),
		}
		select {
		case sendCh <- msg:
		default:
			h.logger.Debug("Dropped websocket event, send buffer full", "event", ev.EventName())
		}
	})
	defer unsubscribe()

	// Reader goroutine keeps the connection alive and detects closes.
	go func() {
		defer close(done)
		conn.SetReadLimit(4096)
		_ = conn.SetReadDeadline(time.Now().Add(wsReadDeadline))
		conn.SetPongHandler(func(string) error {
			_ = conn.SetReadDeadline(time.Now().Add(wsReadDeadline))
			return nil
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()

	var writeMu sync.Mutex
	write := func(fn func() error) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteDeadline))
		return fn()
	}

	for {
		select {
		case <-c.Request.Context().Done():
			return
		case <-done:
			return
		case <-ticker.C:
			if err := write(func() error {
				return conn.WriteMessage(websocket.PingMessage, nil)
			}); err != nil {
				return
			}
		case msg := <-sendCh:
			if err := write(func() error {
				return conn.WriteJSON(msg)
			}); err != nil {
				return
			}
		}
	}
}

// eventToData flattens an event's exported fields into a map.
func eventToData(ev Event) map[string]any {
	data, err := json.Marshal(ev)
	if err != nil {
		return nil
	}
	var result map[string]any
	if err := json.Unmarshal(data, &result); err != nil {
		return nil
	}
	return result
}
