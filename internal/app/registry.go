package app

import "sync"

// Connection is a live channel to one subscriber. The registry owns the
// mapping from fan identity to connection; the connection itself belongs to
// the transport that created it.
type Connection interface {
	Send(event NotificationEvent) error
}

// Subscriber is one (fan, connection) pair from a registry snapshot.
type Subscriber struct {
	FanID string
	Conn  Connection
}

// ConnectionRegistry maps fan identity to the fan's active connection.
// Registry state lives for the daemon process only; nothing is persisted.
type ConnectionRegistry struct {
	mu    sync.RWMutex
	conns map[string]Connection
}

func NewConnectionRegistry() *ConnectionRegistry {
	return &ConnectionRegistry{conns: make(map[string]Connection)}
}

// Subscribe registers the connection for a fan. A second subscribe for the
// same fan replaces the previous connection.
func (r *ConnectionRegistry) Subscribe(fanID string, conn Connection) {
	r.mu.Lock()
	r.conns[fanID] = conn
	r.mu.Unlock()
}

// Unsubscribe removes the fan's mapping. Absent fans are a no-op.
func (r *ConnectionRegistry) Unsubscribe(fanID string) {
	r.mu.Lock()
	delete(r.conns, fanID)
	r.mu.Unlock()
}

// UnsubscribeConn removes the mapping holding the given connection. The
// transport calls this on low-level disconnect, when only the dying
// connection is known and the fan identity has to be found by scanning.
func (r *ConnectionRegistry) UnsubscribeConn(conn Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for fanID, candidate := range r.conns {
		if candidate == conn {
			delete(r.conns, fanID)
			return
		}
	}
}

// Snapshot returns a point-in-time copy of the subscriber set. Iterating the
// copy is unaffected by concurrent subscribe and unsubscribe calls.
func (r *ConnectionRegistry) Snapshot() []Subscriber {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Subscriber, 0, len(r.conns))
	for fanID, conn := range r.conns {
		out = append(out, Subscriber{FanID: fanID, Conn: conn})
	}
	return out
}

func (r *ConnectionRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}
