package realtime

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katrohit/nutrifolio/internal/auth"
)

func newTestServer(t *testing.T, hub *Hub, userID string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r.WithContext(auth.WithUserID(r.Context(), userID)))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	return conn
}

func TestFoodLogUpdatedReachesUserConnections(t *testing.T) {
	hub := NewHub()
	srv := newTestServer(t, hub, "user-a")
	other := newTestServer(t, hub, "user-b")

	connA := dial(t, srv)
	defer connA.Close()
	connB := dial(t, other)
	defer connB.Close()

	require.Eventually(t, func() bool {
		return hub.Count("user-a") == 1 && hub.Count("user-b") == 1
	}, time.Second, 10*time.Millisecond)

	hub.FoodLogUpdated("user-a")

	require.NoError(t, connA.SetReadDeadline(time.Now().Add(time.Second)))
	_, data, err := connA.ReadMessage()
	require.NoError(t, err)

	var ev Event
	require.NoError(t, json.Unmarshal(data, &ev))
	assert.Equal(t, EventFoodLogUpdated, ev.Kind)
	assert.Equal(t, "user-a", ev.UserID)

	require.NoError(t, connB.SetReadDeadline(time.Now().Add(100*time.Millisecond)))
	_, _, err = connB.ReadMessage()
	assert.Error(t, err)
}

func TestClientCloseUnregisters(t *testing.T) {
	hub := NewHub()
	srv := newTestServer(t, hub, "user-a")

	conn := dial(t, srv)
	require.Eventually(t, func() bool { return hub.Count("user-a") == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return hub.Count("user-a") == 0 }, time.Second, 10*time.Millisecond)
}

func TestServeWSRequiresUser(t *testing.T) {
	hub := NewHub()
	rec := httptest.NewRecorder()
	hub.ServeWS(rec, httptest.NewRequest(http.MethodGet, "/api/events", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPublishWithoutClientsIsNoop(t *testing.T) {
	hub := NewHub()
	assert.NotPanics(t, func() { hub.FoodLogUpdated("nobody") })
}
