package ws

import (
	"sync"

	"recipebook_backend/internal/logger"
)

// Manager tracks connected clients by user ID and fans events out to them.
// It implements services.RealtimePusher.
type Manager struct {
	clients    map[string][]*Client
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{
		clients:    make(map[string][]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run processes connect/disconnect events. Start it once, in its own
// goroutine.
func (m *Manager) Run() {
	log := logger.GetLogger()
	for {
		select {
		case client := <-m.register:
			m.mu.Lock()
			m.clients[client.UserID] = append(m.clients[client.UserID], client)
			m.mu.Unlock()
			log.Debug("websocket client connected", "user_id", client.UserID)

		case client := <-m.unregister:
			m.mu.Lock()
			conns := m.clients[client.UserID]
			for i, c := range conns {
				if c == client {
					m.clients[client.UserID] = append(conns[:i], conns[i+1:]...)
					close(client.send)
					break
				}
			}
			if len(m.clients[client.UserID]) == 0 {
				delete(m.clients, client.UserID)
			}
			m.mu.Unlock()
			log.Debug("websocket client disconnected", "user_id", client.UserID)
		}
	}
}

// PushToUser delivers an event to every open connection of the user. A slow
// connection is dropped rather than blocking the caller. The read lock is
// held across the sends: Run closes send channels under the write lock, so
// a send can never race the close.
func (m *Manager) PushToUser(userID string, event interface{}) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, client := range m.clients[userID] {
		select {
		case client.send <- event:
		default:
			go func(c *Client) { m.unregister <- c }(client)
		}
	}
}

// ClientCount returns the number of open connections.
func (m *Manager) ClientCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	total := 0
	for _, conns := range m.clients {
		total += len(conns)
	}
	return total
}
