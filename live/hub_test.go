package live

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
	"github.com/yeremiapane/restaurant-booking/services"
)

// dialHub starts a websocket endpoint registering every connection on hub
// and returns a connected client.
func dialHub(t *testing.T, hub *Hub) *websocket.Conn {
	t.Helper()
	upgrader := websocket.Upgrader{}
	registered := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.Register(conn, "admin")
		close(registered)
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	select {
	case <-registered:
	case <-time.After(2 * time.Second):
		t.Fatal("connection was not registered")
	}
	return client
}

func TestHub_PublishReachesClients(t *testing.T) {
	hub := NewHub()
	client := dialHub(t, hub)
	assert.Equal(t, 1, hub.ClientCount())

	hub.Publish(services.EventReservationCreated, map[string]interface{}{"id": 7})

	require.NoError(t, client.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, msg, err := client.ReadMessage()
	require.NoError(t, err)

	var evt struct {
		Event string                 `json:"event"`
		Data  map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(msg, &evt))
	assert.Equal(t, services.EventReservationCreated, evt.Event)
	assert.EqualValues(t, 7, evt.Data["id"])
}

func TestHub_BroadcastRawAndUnregister(t *testing.T) {
	hub := NewHub()
	client := dialHub(t, hub)

	hub.BroadcastRaw([]byte(`{"event":"table.updated"}`))
	require.NoError(t, client.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, msg, err := client.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"event":"table.updated"}`, string(msg))

	hub.mutex.Lock()
	var conn *websocket.Conn
	for c := range hub.clients {
		conn = c
	}
	hub.mutex.Unlock()

	hub.Unregister(conn)
	assert.Zero(t, hub.ClientCount())
	hub.Unregister(conn)
	hub.Publish(services.EventTableUpdated, nil)
}
