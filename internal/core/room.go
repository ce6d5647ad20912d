package core

// Scope is the live set of connections joined to one room.
type Scope struct {
	Room    int64
	clients map[*Client]struct{}
}

// NewScope constructs a scope with no clients.
func NewScope(room int64) *Scope {
	return &Scope{
		Room:    room,
		clients: make(map[*Client]struct{}),
	}
}

// Add inserts a client into the scope. Returns true if newly added.
func (s *Scope) Add(c *Client) bool {
	if _, exists := s.clients[c]; exists {
		return false
	}
	s.clients[c] = struct{}{}
	return true
}

// Remove deletes a client from the scope. Returns true if removed.
func (s *Scope) Remove(c *Client) bool {
	if _, exists := s.clients[c]; !exists {
		return false
	}
	delete(s.clients, c)
	return true
}

// Has reports whether the client is in the scope.
func (s *Scope) Has(c *Client) bool {
	_, exists := s.clients[c]
	return exists
}

// Broadcast sends an event to every client in the scope, the sender included.
// Returns the number of clients that accepted the event.
func (s *Scope) Broadcast(event *Event) int {
	delivered := 0
	for client := range s.clients {
		// Slow consumers miss the event.
		if client.deliver(event) {
			delivered++
		}
	}
	return delivered
}

// Len returns the number of clients in the scope.
func (s *Scope) Len() int {
	return len(s.clients)
}

// Empty returns true if no clients are in the scope.
func (s *Scope) Empty() bool {
	return len(s.clients) == 0
}
