package realtime

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Event types carried over the store channel.
const (
	EventTableCreated       = "table_created"
	EventTableUpdated       = "table_updated"
	EventTableDeleted       = "table_deleted"
	EventTableStatusChanged = "table_status_changed"
	EventTablesSynced       = "tables_synced"
	EventSessionStarted     = "session_started"
	EventSessionUpdated     = "session_updated"
	EventSessionClosed      = "session_closed"
	EventCartUpdated        = "cart_updated"
)

type Event struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Broadcaster is what the write path publishes committed changes through.
type Broadcaster interface {
	Publish(storeID uint, event Event)
}

// Hub fans committed events out to websocket observers, one room per
// store. Each room drains its own event channel from a single goroutine,
// so observers of a store see events in publish order.
type Hub struct {
	log   *logrus.Logger
	mu    sync.Mutex
	rooms map[uint]*room
}

func NewHub(log *logrus.Logger) *Hub {
	return &Hub{
		log:   log,
		rooms: make(map[uint]*room),
	}
}

// roomBufferSize bounds how far a store's event backlog may grow before
// publishes start being dropped instead of blocking the write path.
const roomBufferSize = 256

// writeWait bounds a single observer write, so one wedged connection
// cannot stall delivery to the rest of the room.
const writeWait = 10 * time.Second

type room struct {
	storeID uint
	log     *logrus.Logger
	events  chan Event

	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

func (h *Hub) getRoom(storeID uint) *room {
	h.mu.Lock()
	defer h.mu.Unlock()

	rm, ok := h.rooms[storeID]
	if !ok {
		rm = &room{
			storeID: storeID,
			log:     h.log,
			events:  make(chan Event, roomBufferSize),
			conns:   make(map[*websocket.Conn]struct{}),
		}
		h.rooms[storeID] = rm
		go rm.run()
	}
	return rm
}

// Register subscribes a connection to a store's events. The caller must
// have been authenticated before registering; the hub does not check
// credentials.
func (h *Hub) Register(storeID uint, conn *websocket.Conn) {
	rm := h.getRoom(storeID)
	rm.mu.Lock()
	defer rm.mu.Unlock()
	rm.conns[conn] = struct{}{}
}

// Unregister drops a connection and closes it.
func (h *Hub) Unregister(storeID uint, conn *websocket.Conn) {
	rm := h.getRoom(storeID)
	rm.mu.Lock()
	defer rm.mu.Unlock()
	delete(rm.conns, conn)
	conn.Close()
}

// Publish queues an event for a store. Publish is called after the
// writing transaction commits, so observers never see uncommitted state.
func (h *Hub) Publish(storeID uint, event Event) {
	rm := h.getRoom(storeID)
	select {
	case rm.events <- event:
	default:
		rm.log.Warnf("realtime: store %d event buffer full, dropping %s", storeID, event.Event)
	}
}

func (rm *room) run() {
	for event := range rm.events {
		data, err := json.Marshal(event)
		if err != nil {
			rm.log.Errorf("realtime: marshal event %s: %v", event.Event, err)
			continue
		}

		rm.mu.Lock()
		for conn := range rm.conns {
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				rm.log.Warnf("realtime: dropping store %d observer: %v", rm.storeID, err)
				delete(rm.conns, conn)
				conn.Close()
			}
		}
		rm.mu.Unlock()
	}
}
