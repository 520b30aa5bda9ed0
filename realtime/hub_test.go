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

	"github.com/kaungmyatmindfulness/origin-food-house-backend/utils"
)

// dialHub spins an upgrade endpoint bound to a store's room and returns
// a connected client.
func dialHub(t *testing.T, hub *Hub, storeID uint) *websocket.Conn {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		hub.Register(storeID, conn)
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	waitForObservers(t, hub, storeID, 1)
	return client
}

// waitForObservers blocks until the store's room has at least n
// registered connections; registration happens in the server handler
// after the dial returns.
func waitForObservers(t *testing.T, hub *Hub, storeID uint, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		rm := hub.getRoom(storeID)
		rm.mu.Lock()
		count := len(rm.conns)
		rm.mu.Unlock()
		if count >= n {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("observer never registered")
}

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var event Event
	require.NoError(t, json.Unmarshal(data, &event))
	return event
}

func TestHubDeliversInPublishOrder(t *testing.T) {
	hub := NewHub(utils.NewTestLogger())
	client := dialHub(t, hub, 1)

	hub.Publish(1, Event{Event: EventTableCreated, Data: "a"})
	hub.Publish(1, Event{Event: EventTableStatusChanged, Data: "b"})
	hub.Publish(1, Event{Event: EventSessionStarted, Data: "c"})

	assert.Equal(t, EventTableCreated, readEvent(t, client).Event)
	assert.Equal(t, EventTableStatusChanged, readEvent(t, client).Event)
	assert.Equal(t, EventSessionStarted, readEvent(t, client).Event)
}

func TestHubScopesEventsToStore(t *testing.T) {
	hub := NewHub(utils.NewTestLogger())
	client1 := dialHub(t, hub, 1)
	client2 := dialHub(t, hub, 2)

	hub.Publish(2, Event{Event: EventSessionClosed})

	assert.Equal(t, EventSessionClosed, readEvent(t, client2).Event)

	// Store 1's observer sees nothing.
	client1.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	_, _, err := client1.ReadMessage()
	assert.Error(t, err)
}

func TestHubEvictsDeadObserverAndKeepsDelivering(t *testing.T) {
	hub := NewHub(utils.NewTestLogger())
	dead := dialHub(t, hub, 3)
	healthy := dialHub(t, hub, 3)
	waitForObservers(t, hub, 3, 2)

	// Kill one connection underneath the hub; delivery to the healthy
	// observer must continue and the dead one gets evicted on its failed
	// deadline-bounded write.
	require.NoError(t, dead.Close())

	hub.Publish(3, Event{Event: EventTableUpdated})
	hub.Publish(3, Event{Event: EventSessionUpdated})

	assert.Equal(t, EventTableUpdated, readEvent(t, healthy).Event)
	assert.Equal(t, EventSessionUpdated, readEvent(t, healthy).Event)

	// Keep publishing until the write to the closed socket surfaces an
	// error and the hub drops it.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		rm := hub.getRoom(3)
		rm.mu.Lock()
		count := len(rm.conns)
		rm.mu.Unlock()
		if count == 1 {
			return
		}
		hub.Publish(3, Event{Event: EventCartUpdated})
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("dead observer was never evicted")
}

func TestHubPublishWithoutObserversDoesNotBlock(t *testing.T) {
	hub := NewHub(utils.NewTestLogger())
	done := make(chan struct{})
	go func() {
		for i := 0; i < roomBufferSize*2; i++ {
			hub.Publish(7, Event{Event: EventCartUpdated})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked with no observers")
	}
}
