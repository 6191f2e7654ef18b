package sse

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/gin-gonic/gin"
)

// event is a named payload pushed to one user's open connections.
type event struct {
	userID string
	name   string
	data   map[string]interface{}
}

type client struct {
	userID string
	ch     chan event
}

// Manager fans out server-sent events to per-user client connections.
// Used for new_post notifications from the fetch cycle and suggestion_ready
// from the background suggestion worker.
type Manager struct {
	mu         sync.RWMutex
	clients    map[string]map[*client]struct{} // userID -> connections
	register   chan *client
	unregister chan *client
	events     chan event
}

func NewManager() *Manager {
	return &Manager{
		clients:    make(map[string]map[*client]struct{}),
		register:   make(chan *client),
		unregister: make(chan *client),
		events:     make(chan event, 256),
	}
}

// Run processes register/unregister/event traffic. Call once in a goroutine.
func (m *Manager) Run() {
	for {
		select {
		case c := <-m.register:
			m.mu.Lock()
			if m.clients[c.userID] == nil {
				m.clients[c.userID] = make(map[*client]struct{})
			}
			m.clients[c.userID][c] = struct{}{}
			m.mu.Unlock()

		case c := <-m.unregister:
			m.mu.Lock()
			if conns, ok := m.clients[c.userID]; ok {
				if _, ok := conns[c]; ok {
					delete(conns, c)
					close(c.ch)
					if len(conns) == 0 {
						delete(m.clients, c.userID)
					}
				}
			}
			m.mu.Unlock()

		case ev := <-m.events:
			m.mu.RLock()
			for c := range m.clients[ev.userID] {
				select {
				case c.ch <- ev:
				default:
					// Slow consumer, drop rather than block the hub
				}
			}
			m.mu.RUnlock()
		}
	}
}

// SendToUser queues an event for all of a user's connections (non-blocking).
func (m *Manager) SendToUser(userID, name string, data map[string]interface{}) {
	select {
	case m.events <- event{userID: userID, name: name, data: data}:
	default:
		log.Printf("[SSE] Event queue full, dropping %s for user %s", name, userID)
	}
}

// ServeHTTP streams events for the authenticated user until the client disconnects.
func (m *Manager) ServeHTTP(c *gin.Context, userID string) {
	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	cl := &client{userID: userID, ch: make(chan event, 16)}
	m.register <- cl
	defer func() { m.unregister <- cl }()

	c.Writer.Flush()

	for {
		select {
		case ev, ok := <-cl.ch:
			if !ok {
				return
			}
			payload, err := json.Marshal(ev.data)
			if err != nil {
				continue
			}
			fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", ev.name, payload)
			c.Writer.Flush()
		case <-c.Request.Context().Done():
			return
		}
	}
}
