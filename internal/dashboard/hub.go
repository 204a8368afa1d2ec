package dashboard

import (
	"context"
	"net/http"
	"sync"
	"time"

	"distress-service/internal/alert"
	"distress-service/internal/monitor"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	TypeWelcome      = "welcome"
	TypePatientState = "patient_state"
	TypeAlert        = "alert_recorded"

	sendBuffer = 64
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

type Message struct {
	Type      string `json:"type"`
	Payload   any    `json:"payload"`
	Timestamp int64  `json:"timestamp"`
}

type client struct {
	id   string
	conn *websocket.Conn
	send chan Message
	once sync.Once
}

func (c *client) close() {
	c.once.Do(func() { close(c.send) })
}

// Hub pushes session and alert changes to every connected clinician
// dashboard. Slow clients are dropped instead of blocking the broadcaster.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*client

	upgrader  websocket.Upgrader
	snapshots func() []monitor.Snapshot
	logger    *zap.SugaredLogger
}

func NewHub(logger *zap.SugaredLogger, snapshots func() []monitor.Snapshot) *Hub {
	return &Hub{
		clients: make(map[string]*client),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		snapshots: snapshots,
		logger:    logger,
	}
}

func (h *Hub) SessionUpdated(s monitor.Snapshot) {
	h.broadcast(Message{Type: TypePatientState, Payload: s, Timestamp: time.Now().Unix()})
}

func (h *Hub) AlertRecorded(_ context.Context, a alert.Alert) {
	h.broadcast(Message{Type: TypeAlert, Payload: a, Timestamp: time.Now().Unix()})
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeWS upgrades the request and greets the client with every live session.
func (h *Hub) ServeWS(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warnf("Websocket upgrade failed: %v", err)
		return
	}

	cl := &client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan Message, sendBuffer),
	}

	var initial []monitor.Snapshot
	if h.snapshots != nil {
		initial = h.snapshots()
	}
	cl.send <- Message{Type: TypeWelcome, Payload: initial, Timestamp: time.Now().Unix()}

	h.mu.Lock()
	h.clients[cl.id] = cl
	h.mu.Unlock()

	h.logger.Infof("Dashboard client %s connected", cl.id)

	go h.writePump(cl)
	go h.readPump(cl)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, cl := range h.clients {
		cl.close()
		delete(h.clients, id)
	}
}

func (h *Hub) broadcast(msg Message) {
	h.mu.RLock()
	var slow []*client
	for _, cl := range h.clients {
		select {
		case cl.send <- msg:
		default:
			slow = append(slow, cl)
		}
	}
	h.mu.RUnlock()

	for _, cl := range slow {
		h.logger.Warnf("Dropping slow dashboard client %s", cl.id)
		h.unregister(cl)
	}
}

func (h *Hub) unregister(cl *client) {
	h.mu.Lock()
	if _, ok := h.clients[cl.id]; ok {
		delete(h.clients, cl.id)
	}
	h.mu.Unlock()
	cl.close()
}

// readPump only services control frames; dashboards never send data.
func (h *Hub) readPump(cl *client) {
	defer func() {
		h.unregister(cl)
		cl.conn.Close()
		h.logger.Infof("Dashboard client %s disconnected", cl.id)
	}()

	cl.conn.SetReadLimit(512)
	cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	cl.conn.SetPongHandler(func(string) error {
		return cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := cl.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Warnf("Dashboard client %s read error: %v", cl.id, err)
			}
			return
		}
	}
}

func (h *Hub) writePump(cl *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		cl.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-cl.send:
			cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				cl.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := cl.conn.WriteJSON(msg); err != nil {
				return
			}

		case <-ticker.C:
			cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := cl.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
