package notify

import (
	"context"
	"sync"
	"time"

	"BB_donate_backend/pkg/logger"
	"go.uber.org/zap"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
)

const channel = "bb:events"

// Event mirrors the socket payload the front-end listens for. Delivery is
// best-effort: a slow or gone client is dropped, never waited on.
type Event struct {
	Type      string    `json:"type"`
	UserID    int64     `json:"user_id"`
	Amount    int64     `json:"amount"`
	Timestamp time.Time `json:"timestamp"`
}

type Hub struct {
	mu      sync.RWMutex
	writeMu sync.Mutex
	conns   map[*websocket.Conn]int64
	rdb     *redis.Client
}

// NewHub creates a hub. With a Redis client events pass through a pub/sub
// channel so every instance sees every event; without one they are delivered
// to local connections only.
func NewHub(rdb *redis.Client) *Hub {
	return &Hub{
		conns: make(map[*websocket.Conn]int64),
		rdb:   rdb,
	}
}

func (h *Hub) Register(telegramID int64, conn *websocket.Conn) {
	h.mu.Lock()
	h.conns[conn] = telegramID
	h.mu.Unlock()
}

func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.conns, conn)
	h.mu.Unlock()
	conn.Close()
}

func (h *Hub) Publish(ctx context.Context, e Event) {
	payload, err := json.Marshal(e)
	if err != nil {
		logger.Logger().Error("failed to marshal event", zap.Error(err))
		return
	}

	if h.rdb != nil {
		if err := h.rdb.Publish(ctx, channel, payload).Err(); err != nil {
			logger.Logger().Error("failed to publish event to redis", zap.Error(err))
		}
		return
	}

	h.broadcast(payload)
}

// Run consumes the Redis channel and fans messages out to local connections.
// No-op without Redis; Publish then broadcasts directly.
func (h *Hub) Run(ctx context.Context) {
	if h.rdb == nil {
		return
	}

	sub := h.rdb.Subscribe(ctx, channel)
	go func() {
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				h.broadcast([]byte(msg.Payload))
			}
		}
	}()
}

func (h *Hub) broadcast(payload []byte) {
	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.conns))
	for conn := range h.conns {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	// gorilla conns allow a single concurrent writer
	h.writeMu.Lock()
	defer h.writeMu.Unlock()

	for _, conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			logger.Logger().Info("dropping websocket client", zap.Error(err))
			h.Unregister(conn)
		}
	}
}
