package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/businessbook/directory/internal/backend"
	"github.com/businessbook/directory/internal/catalog"
	"github.com/businessbook/directory/internal/search"
	"github.com/businessbook/directory/internal/session"
	"github.com/businessbook/directory/internal/traffic"
)

type liveFixture struct {
	server   *httptest.Server
	hub      *Hub
	store    *catalog.Store
	tokens   *session.TokenService
	registry *session.Registry
}

func newLiveFixture(t *testing.T) *liveFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	store, err := catalog.Load(context.Background(), catalog.EmbeddedSource{})
	require.NoError(t, err)
	b := backend.NewSimulated(store, traffic.NewMemory(), backend.WithLatency(backend.DefaultLatency().Scaled(0)))

	f := &liveFixture{
		hub:      NewHub(nil, nil, nil),
		store:    store,
		tokens:   session.NewTokenService("test-secret", 1),
		registry: session.NewRegistry(""),
	}
	r := gin.New()
	r.GET("/ws/search", ServeSearch(SearchConfig{
		Hub:         f.hub,
		Engine:      search.NewEngine(b, time.Second, nil),
		Tokens:      f.tokens,
		Registry:    f.registry,
		QuietPeriod: 100 * time.Millisecond,
	}))
	f.server = httptest.NewServer(r)
	t.Cleanup(f.server.Close)
	return f
}

func (f *liveFixture) token(t *testing.T, prepare func(*session.State)) string {
	t.Helper()
	id, st := f.registry.Create()
	if prepare != nil {
		prepare(st)
	}
	token, err := f.tokens.Generate(id)
	require.NoError(t, err)
	return token
}

func (f *liveFixture) url(token, scope string) string {
	return "ws" + strings.TrimPrefix(f.server.URL, "http") + "/ws/search?token=" + token + "&scope=" + scope
}

func visitor(st *session.State) { st.EnterAsVisitor() }

func readEvent(t *testing.T, conn *websocket.Conn) WSMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg WSMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func readResults(t *testing.T, conn *websocket.Conn) ResultsPayload {
	t.Helper()
	msg := readEvent(t, conn)
	require.Equal(t, EventResults, msg.Event)
	var p ResultsPayload
	require.NoError(t, json.Unmarshal(msg.Data, &p))
	return p
}

func resultIDs(p ResultsPayload) []string {
	out := make([]string, 0, len(p.Enterprises))
	for _, e := range p.Enterprises {
		out = append(out, e.ID)
	}
	return out
}

func TestServeSearch_RejectsBeforeUpgrade(t *testing.T) {
	f := newLiveFixture(t)

	_, resp, err := websocket.DefaultDialer.Dial(f.url("garbage", "search"), nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	_, resp, err = websocket.DefaultDialer.Dial(f.url(f.token(t, nil), "search"), nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestServeSearch_DebouncedQuery(t *testing.T) {
	f := newLiveFixture(t)
	conn, _, err := websocket.DefaultDialer.Dial(f.url(f.token(t, visitor), "search"), nil)
	require.NoError(t, err)
	defer conn.Close()

	for _, text := range []string{"t", "te", "tech"} {
		data, _ := json.Marshal(search.Criteria{Text: text})
		require.NoError(t, conn.WriteJSON(WSMessage{Event: EventQuery, Data: data}))
	}
	p := readResults(t, conn)
	assert.Equal(t, []string{"1"}, resultIDs(p))
}

func TestServeSearch_CatalogChangedRefreshes(t *testing.T) {
	f := newLiveFixture(t)
	conn, _, err := websocket.DefaultDialer.Dial(f.url(f.token(t, visitor), "home"), nil)
	require.NoError(t, err)
	defer conn.Close()

	data, _ := json.Marshal(search.Criteria{DomainIDs: []string{"domain-llc"}})
	require.NoError(t, conn.WriteJSON(WSMessage{Event: EventQuery, Data: data}))
	first := readResults(t, conn)
	assert.Equal(t, []string{"1", "3", "6"}, resultIDs(first))

	require.Eventually(t, func() bool { return f.hub.Len() == 1 }, time.Second, time.Millisecond)
	require.NoError(t, f.store.Remove("3"))
	f.hub.CatalogChanged(catalog.Change{Op: catalog.OpRemove, ID: "3"})

	ev := readEvent(t, conn)
	assert.Equal(t, EventCatalogChanged, ev.Event)
	assert.JSONEq(t, `{"op":"remove","id":"3"}`, string(ev.Data))
	second := readResults(t, conn)
	assert.Greater(t, second.Seq, first.Seq)
	assert.Equal(t, []string{"1", "6"}, resultIDs(second))
}

func TestServeSearch_LoggedOutSessionGetsError(t *testing.T) {
	f := newLiveFixture(t)
	var st *session.State
	conn, _, err := websocket.DefaultDialer.Dial(f.url(f.token(t, func(s *session.State) {
		s.EnterAsVisitor()
		st = s
	}), "search"), nil)
	require.NoError(t, err)
	defer conn.Close()

	st.Logout()
	require.NoError(t, conn.WriteJSON(WSMessage{Event: EventRefresh}))
	assert.Equal(t, EventError, readEvent(t, conn).Event)
}

// loopback delivers published events to peer hubs, skipping the sender.
type loopback struct {
	from  *Hub
	peers []*Hub
	sent  int
}

func (l *loopback) PublishCatalogEvent(event string, payload []byte) error {
	l.sent++
	for _, p := range l.peers {
		if p != l.from {
			p.HandleRemote(event, payload)
		}
	}
	return nil
}

func loadStore(t *testing.T) *catalog.Store {
	t.Helper()
	store, err := catalog.Load(context.Background(), catalog.EmbeddedSource{})
	require.NoError(t, err)
	return store
}

func TestHub_ReplaysChangesOnOtherInstance(t *testing.T) {
	storeA, storeB := loadStore(t), loadStore(t)
	pubA := &loopback{}
	hubA := NewHub(nil, pubA, storeA)
	hubB := NewHub(nil, nil, storeB)
	pubA.from, pubA.peers = hubA, []*Hub{hubA, hubB}

	_, err := storeA.Suspend("2")
	require.NoError(t, err)
	hubA.CatalogChanged(catalog.Change{Op: catalog.OpSuspend, ID: "2"})

	got, err := storeB.GetByID("2")
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	require.NoError(t, storeA.Remove("3"))
	hubA.CatalogChanged(catalog.Change{Op: catalog.OpRemove, ID: "3"})
	_, err = storeB.GetByID("3")
	assert.ErrorIs(t, err, catalog.ErrNotFound)
	assert.Equal(t, storeA.Len(), storeB.Len())
	assert.Equal(t, 2, pubA.sent)
}

func TestHub_RemoteChangeToleratesMissingEnterprise(t *testing.T) {
	store := loadStore(t)
	pub := &loopback{}
	h := NewHub(nil, pub, store)
	require.NoError(t, store.Remove("3"))

	h.HandleRemote(EventCatalogChanged, []byte(`{"op":"remove","id":"3"}`))
	h.HandleRemote(EventCatalogChanged, []byte(`not json`))
	h.HandleRemote("other", nil)

	assert.Equal(t, 5, store.Len())
	assert.Zero(t, pub.sent, "remote events are not re-published")
}

func TestServeSearch_RemoteChangeRefreshesStream(t *testing.T) {
	f := newLiveFixture(t)
	f.hub.replica = f.store
	conn, _, err := websocket.DefaultDialer.Dial(f.url(f.token(t, visitor), "home"), nil)
	require.NoError(t, err)
	defer conn.Close()

	data, _ := json.Marshal(search.Criteria{DomainIDs: []string{"domain-llc"}})
	require.NoError(t, conn.WriteJSON(WSMessage{Event: EventQuery, Data: data}))
	assert.Equal(t, []string{"1", "3", "6"}, resultIDs(readResults(t, conn)))
	require.Eventually(t, func() bool { return f.hub.Len() == 1 }, time.Second, time.Millisecond)

	f.hub.HandleRemote(EventCatalogChanged, []byte(`{"op":"remove","id":"6"}`))
	assert.Equal(t, EventCatalogChanged, readEvent(t, conn).Event)
	assert.Equal(t, []string{"1", "3"}, resultIDs(readResults(t, conn)))
}
