package realtime

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// PingInterval and PongWait are used for heartbeat (seconds).
	PingInterval = 30
	PongWait     = 60
)

// Change-feed events pushed to viewers of an event's seat map.
const (
	EventSeatUpdate     = "seat_update"
	EventRegistroUpdate = "registro_update"
	EventImportDone     = "import_completed"
)

// Hub maintains template_id -> set of viewer connections and broadcasts seat
// mutations. The feed is informational only: viewers re-fetch authoritative
// rows, the hub never carries state of record. Redis pub/sub bridges
// instances for horizontal scaling.
type Hub struct {
	// templateID -> map[clientID]*Client
	rooms  map[uuid.UUID]map[string]*Client
	subs   map[uuid.UUID]func() // cancel Redis subscription per template
	mu     sync.RWMutex
	logger *zap.Logger
	pub    Publisher
	sub    Subscriber
}

// Publisher publishes template events to Redis for cross-instance broadcast.
type Publisher interface {
	PublishTemplateEvent(templateID uuid.UUID, event string, payload []byte) error
}

// Subscriber subscribes to a template channel and invokes handler per event.
type Subscriber interface {
	SubscribeTemplate(templateID uuid.UUID, handler func(event string, payload []byte)) (cancel func(), err error)
}

// NewHub creates a change-feed hub.
func NewHub(logger *zap.Logger, pub Publisher, sub Subscriber) *Hub {
	return &Hub{
		rooms:  make(map[uuid.UUID]map[string]*Client),
		subs:   make(map[uuid.UUID]func()),
		logger: logger,
		pub:    pub,
		sub:    sub,
	}
}

// Register adds a viewer to a template room. The first viewer starts the
// Redis subscription for that template.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	if h.rooms[c.TemplateID] == nil {
		h.rooms[c.TemplateID] = make(map[string]*Client)
		if h.sub != nil {
			cancel, err := h.sub.SubscribeTemplate(c.TemplateID, func(event string, payload []byte) {
				h.broadcastLocal(c.TemplateID, event, json.RawMessage(payload))
			})
			if err == nil {
				h.subs[c.TemplateID] = cancel
			}
		}
	}
	h.rooms[c.TemplateID][c.ID] = c
	h.mu.Unlock()
	h.logger.Debug("viewer joined", zap.String("client_id", c.ID), zap.String("template_id", c.TemplateID.String()))
}

// Unregister removes a viewer. The last viewer leaving cancels the Redis
// subscription for the template.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if m, ok := h.rooms[c.TemplateID]; ok {
		delete(m, c.ID)
		if len(m) == 0 {
			delete(h.rooms, c.TemplateID)
			if cancel, ok := h.subs[c.TemplateID]; ok {
				cancel()
				delete(h.subs, c.TemplateID)
			}
		}
	}
	h.mu.Unlock()
	h.logger.Debug("viewer left", zap.String("client_id", c.ID), zap.String("template_id", c.TemplateID.String()))
}

func (h *Hub) broadcastLocal(templateID uuid.UUID, event string, payload interface{}) {
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
	clients := h.rooms[templateID]
	h.mu.RUnlock()

	for _, c := range clients {
		select {
		case c.send <- msg:
		default:
			// buffer full, skip
		}
	}
}

// Broadcast sends an event to local viewers of the template and publishes it
// to Redis for other instances. Fire-and-forget.
func (h *Hub) Broadcast(templateID uuid.UUID, event string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	h.broadcastLocal(templateID, event, data)
	if h.pub != nil {
		_ = h.pub.PublishTemplateEvent(templateID, event, data)
	}
}

// ViewerCount returns the number of connected viewers for a template.
func (h *Hub) ViewerCount(templateID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[templateID])
}
