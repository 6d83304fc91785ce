package gateway

import (
	"sync"
)

// ConnManager indexes live connections by connection id and by user. It only
// tracks presence on this node; cross-node state lives in the presence keys.
type ConnManager struct {
	mu     sync.RWMutex
	byConn map[string]*Client
	byUser map[string]map[string]*Client // userID -> connID -> client
}

func NewConnManager() *ConnManager {
	return &ConnManager{
		byConn: make(map[string]*Client),
		byUser: make(map[string]map[string]*Client),
	}
}

// Add registers a client and reports whether it is the user's first
// connection on this node.
func (m *ConnManager) Add(c *Client) (first bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byConn[c.ConnID] = c
	if m.byUser[c.UserID] == nil {
		m.byUser[c.UserID] = make(map[string]*Client)
	}
	first = len(m.byUser[c.UserID]) == 0
	m.byUser[c.UserID][c.ConnID] = c
	return first
}

// Remove unregisters a client and reports whether it was the user's last
// connection on this node.
func (m *ConnManager) Remove(c *Client) (last bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byConn, c.ConnID)
	if conns := m.byUser[c.UserID]; conns != nil {
		delete(conns, c.ConnID)
		if len(conns) == 0 {
			delete(m.byUser, c.UserID)
			return true
		}
	}
	return false
}

// User returns the user's live connections on this node.
func (m *ConnManager) User(userID string) []*Client {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Client, 0, len(m.byUser[userID]))
	for _, c := range m.byUser[userID] {
		out = append(out, c)
	}
	return out
}

// Count returns the number of live connections on this node.
func (m *ConnManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byConn)
}
