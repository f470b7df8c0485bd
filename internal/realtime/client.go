package realtime

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/businessbook/directory/internal/middleware"
	"github.com/businessbook/directory/internal/models"
	"github.com/businessbook/directory/internal/navigation"
	"github.com/businessbook/directory/internal/search"
	"github.com/businessbook/directory/internal/session"
)

const (
	EventQuery   = "query"
	EventRefresh = "refresh"
	EventResults = "results"
	EventError   = "error"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // clients authenticate with the token query parameter
	},
}

// WSMessage is the WebSocket message envelope.
type WSMessage struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// ResultsPayload is the data of a results event.
type ResultsPayload struct {
	Seq         uint64              `json:"seq"`
	Enterprises []models.Enterprise `json:"enterprises"`
}

// ErrorPayload is the data of an error event.
type ErrorPayload struct {
	Seq   uint64 `json:"seq,omitempty"`
	Error string `json:"error"`
}

// Client is one live-search connection. It owns one search stream.
type Client struct {
	ID      string
	session *session.State
	scope   search.Scope
	screen  models.Screen
	hub     *Hub
	stream  *search.Stream
	conn    *websocket.Conn
	send    chan WSMessage
	done    chan struct{}
	logger  *zap.Logger
}

// SearchConfig wires the live-search endpoint.
type SearchConfig struct {
	Hub         *Hub
	Engine      *search.Engine
	Tokens      *session.TokenService
	Registry    *session.Registry
	QuietPeriod time.Duration
	Scheduler   search.Scheduler
	Logger      *zap.Logger
}

// ServeSearch handles GET /ws/search?token=&scope=: it upgrades the connection
// and runs a debounced stream fed by query events.
func ServeSearch(cfg SearchConfig) gin.HandlerFunc {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "token required"})
			return
		}
		_, st, ok := middleware.Resolve(cfg.Tokens, cfg.Registry, token)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		scope := search.ParseScope(c.DefaultQuery("scope", string(search.ScopeSearch)))
		screen := screenFor(scope)
		if !allowed(st, screen) {
			c.JSON(http.StatusForbidden, gin.H{"error": "screen " + string(screen) + " not available"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Warn("websocket upgrade failed", zap.Error(err))
			return
		}

		client := &Client{
			ID:      uuid.New().String(),
			session: st,
			scope:   scope,
			screen:  screen,
			hub:     cfg.Hub,
			conn:    conn,
			send:    make(chan WSMessage, 64),
			done:    make(chan struct{}),
			logger:  logger,
		}
		client.stream = search.NewStream(cfg.Engine, search.StreamConfig{
			Scope:       scope,
			QuietPeriod: cfg.QuietPeriod,
			Scheduler:   cfg.Scheduler,
			OnResult:    client.deliver,
			Logger:      logger,
		})
		cfg.Hub.Register(client)
		go client.writePump()
		client.readPump()
	}
}

func screenFor(scope search.Scope) models.Screen {
	if scope == search.ScopeHome {
		return models.ScreenHome
	}
	return models.ScreenSearch
}

func allowed(st *session.State, screen models.Screen) bool {
	role := st.Role()
	return role != models.RoleUnauthenticated && navigation.Allows(role, screen)
}

// deliver runs under the stream lock, so it only queues.
func (c *Client) deliver(r search.Result) {
	if r.Err != nil {
		c.push(EventError, ErrorPayload{Seq: r.Seq, Error: r.Err.Error()})
		return
	}
	c.push(EventResults, ResultsPayload{Seq: r.Seq, Enterprises: r.Enterprises})
}

func (c *Client) push(event string, payload interface{}) {
	select {
	case <-c.done:
		return
	default:
	}
	select {
	case c.send <- encode(event, payload):
	default:
		droppedMessages.Inc()
	}
}

func (c *Client) readPump() {
	defer func() {
		c.stream.Close()
		c.hub.Unregister(c)
		close(c.done)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(8192)
	_ = c.conn.SetReadDeadline(time.Now().Add(PongWait * time.Second))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(PongWait * time.Second))
	})

	for {
		var msg WSMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			break
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(PongWait * time.Second))

		if !allowed(c.session, c.screen) {
			c.push(EventError, ErrorPayload{Error: "screen " + string(c.screen) + " not available"})
			continue
		}
		switch msg.Event {
		case EventQuery:
			var q search.Criteria
			if len(msg.Data) > 0 {
				if err := json.Unmarshal(msg.Data, &q); err != nil {
					c.push(EventError, ErrorPayload{Error: "invalid query"})
					continue
				}
			}
			c.stream.Update(q)
		case EventRefresh:
			c.stream.Refresh()
		default:
			c.logger.Debug("ignored live search event", zap.String("event", msg.Event))
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(PingInterval * time.Second)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
