package realtime

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// PingInterval and PongWait are used for heartbeat.
	PingInterval = 30
	PongWait     = 60
)

// Hub maintains organizer_id -> set of connections and fans out dashboard
// events (RSVP responses) to every open session of that organizer. Redis
// pub/sub carries events across instances.
type Hub struct {
	// organizer userID -> map[clientID]*Client
	organizers map[uuid.UUID]map[string]*Client
	subs       map[uuid.UUID]func() // cancel Redis subscription per organizer
	mu         sync.RWMutex
	logger     *zap.Logger
	redis      RedisPublisher
	redisSub   RedisSubscriber
}

// RedisPublisher publishes organizer events for cross-instance broadcast.
type RedisPublisher interface {
	PublishOrganizerEvent(userID uuid.UUID, event string, payload []byte) error
}

// RedisSubscriber subscribes to an organizer's channel and invokes handler for incoming events.
type RedisSubscriber interface {
	SubscribeOrganizer(userID uuid.UUID, handler func(event string, payload []byte)) (cancel func(), err error)
}

// NewHub creates a new WebSocket hub.
func NewHub(logger *zap.Logger, redisPub RedisPublisher, redisSub RedisSubscriber) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		organizers: make(map[uuid.UUID]map[string]*Client),
		subs:       make(map[uuid.UUID]func()),
		logger:     logger,
		redis:      redisPub,
		redisSub:   redisSub,
	}
}

// Register adds a client to its organizer's room. Starts the Redis
// subscription when the first session connects.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	if h.organizers[c.UserID] == nil {
		h.organizers[c.UserID] = make(map[string]*Client)
		if h.redisSub != nil {
			cancel, err := h.redisSub.SubscribeOrganizer(c.UserID, func(event string, payload []byte) {
				h.broadcastLocal(c.UserID, event, json.RawMessage(payload))
			})
			if err == nil {
				h.subs[c.UserID] = cancel
			}
		}
	}
	h.organizers[c.UserID][c.ID] = c
	h.mu.Unlock()
	h.logger.Debug("dashboard session connected", zap.String("client_id", c.ID), zap.String("user_id", c.UserID.String()))
}

// Unregister removes a client. Cancels the Redis subscription when the
// organizer's last session disconnects.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if m, ok := h.organizers[c.UserID]; ok {
		delete(m, c.ID)
		if len(m) == 0 {
			delete(h.organizers, c.UserID)
			if cancel, ok := h.subs[c.UserID]; ok {
				cancel()
				delete(h.subs, c.UserID)
			}
		}
	}
	h.mu.Unlock()
	h.logger.Debug("dashboard session closed", zap.String("client_id", c.ID), zap.String("user_id", c.UserID.String()))
}

// broadcastLocal sends a message to this instance's sessions for one organizer.
func (h *Hub) broadcastLocal(userID uuid.UUID, event string, payload interface{}) {
	var data []byte
	switch v := payload.(type) {
	case []byte:
		data = v
	case json.RawMessage:
		data = v
	default:
		data, _ = json.Marshal(payload)
	}
	msg := WSMessage{Event: event, Data: data}

	h.mu.RLock()
	clients := h.organizers[userID]
	h.mu.RUnlock()

	for _, c := range clients {
		select {
		case c.send <- msg:
		default:
			// buffer full, skip
		}
	}
}

// PublishToOrganizer delivers an event to all of an organizer's sessions on
// every instance. With Redis configured it publishes only; the subscriber
// callback performs the single local broadcast, so sessions never see the
// event twice. Without Redis it broadcasts locally.
func (h *Hub) PublishToOrganizer(userID uuid.UUID, event string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	if h.redis != nil {
		if err := h.redis.PublishOrganizerEvent(userID, event, data); err == nil {
			return
		}
		h.logger.Warn("redis publish failed, falling back to local broadcast", zap.String("event", event))
	}
	h.broadcastLocal(userID, event, json.RawMessage(data))
}

// SessionCount returns the number of connected sessions for an organizer.
func (h *Hub) SessionCount(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.organizers[userID])
}
