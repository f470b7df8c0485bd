package realtime

import (
	"encoding/json"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/businessbook/directory/internal/catalog"
)

const (
	// PingInterval and PongWait are used for heartbeat, in seconds.
	PingInterval = 30
	PongWait     = 60

	EventCatalogChanged = "catalog_changed"
)

// Publisher fans catalog events out to other instances.
type Publisher interface {
	PublishCatalogEvent(event string, payload []byte) error
}

// Replica is the local catalog that remote changes are replayed on.
type Replica interface {
	Apply(ch catalog.Change) error
}

// Hub tracks open live-search connections and tells them when the catalog
// changed so every stream re-runs its last query.
type Hub struct {
	clients map[string]*Client
	mu      sync.RWMutex
	logger  *zap.Logger
	pub     Publisher
	replica Replica
}

// NewHub creates a hub. pub may be nil for a single instance; replica may be
// nil when remote changes need no replay.
func NewHub(logger *zap.Logger, pub Publisher, replica Replica) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{clients: make(map[string]*Client), logger: logger, pub: pub, replica: replica}
}

// Register adds a client.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c.ID] = c
	n := len(h.clients)
	h.mu.Unlock()
	openStreams.Set(float64(n))
	h.logger.Debug("live search opened", zap.String("client_id", c.ID), zap.String("scope", string(c.scope)))
}

// Unregister removes a client.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	delete(h.clients, c.ID)
	n := len(h.clients)
	h.mu.Unlock()
	openStreams.Set(float64(n))
	h.logger.Debug("live search closed", zap.String("client_id", c.ID))
}

// Len returns the number of open connections.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// CatalogChanged refreshes local streams and publishes ch for other
// instances. ch has already been applied to the local catalog.
func (h *Hub) CatalogChanged(ch catalog.Change) {
	h.refreshLocal(ch)
	if h.pub == nil {
		return
	}
	payload, err := json.Marshal(ch)
	if err != nil {
		h.logger.Warn("encode catalog change failed", zap.Error(err))
		return
	}
	if err := h.pub.PublishCatalogEvent(EventCatalogChanged, payload); err != nil {
		h.logger.Warn("publish catalog event failed", zap.Error(err))
	}
}

// HandleRemote replays a change made on another instance, then refreshes
// local streams. A change whose enterprise is already gone still refreshes.
func (h *Hub) HandleRemote(event string, payload []byte) {
	if event != EventCatalogChanged {
		return
	}
	var ch catalog.Change
	if err := json.Unmarshal(payload, &ch); err != nil {
		h.logger.Warn("bad remote catalog change", zap.Error(err))
		return
	}
	if h.replica != nil {
		err := h.replica.Apply(ch)
		switch {
		case err == nil:
			remoteApplied.WithLabelValues(string(ch.Op), "applied").Inc()
		case errors.Is(err, catalog.ErrNotFound):
			remoteApplied.WithLabelValues(string(ch.Op), "not_found").Inc()
		default:
			remoteApplied.WithLabelValues(string(ch.Op), "failed").Inc()
			h.logger.Warn("apply remote catalog change failed",
				zap.String("op", string(ch.Op)), zap.String("enterprise_id", ch.ID), zap.Error(err))
			return
		}
	}
	h.refreshLocal(ch)
}

func (h *Hub) refreshLocal(ch catalog.Change) {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		c.push(EventCatalogChanged, ch)
		c.stream.Refresh()
	}
}

func encode(event string, payload interface{}) WSMessage {
	msg := WSMessage{Event: event}
	if payload == nil {
		return msg
	}
	switch v := payload.(type) {
	case json.RawMessage:
		msg.Data = v
	default:
		msg.Data, _ = json.Marshal(v)
	}
	return msg
}
