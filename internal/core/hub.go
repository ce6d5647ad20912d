package core

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/roomchat/internal/session"
)

// Memberships validates a join request and records the membership.
type Memberships interface {
	Join(ctx context.Context, roomID int64, identity, password string) error
}

// Stats is a snapshot of live hub state.
type Stats struct {
	Connections int
	Bound       int
	Rooms       int
}

// Hub owns live connections and room scopes and routes messages between them.
//
// Connection and scope tables are touched only by the Run loop. Each client
// gets its own goroutine that performs blocking work (session admission,
// membership checks against the store) before handing the in-memory part to
// the loop, so a slow store call never delays other clients' messages.
type Hub struct {
	sessions *session.Registry
	rooms    Memberships
	log      *zerolog.Logger

	ops  chan func()
	done chan struct{}

	clients map[*Client]struct{}
	scopes  map[int64]*Scope
}

// NewHub creates a hub. A nil rooms accepts every join without validation.
func NewHub(sessions *session.Registry, rooms Memberships, logger *zerolog.Logger) *Hub {
	if sessions == nil {
		sessions = session.NewRegistry()
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Hub{
		sessions: sessions,
		rooms:    rooms,
		log:      logger,
		ops:      make(chan func()),
		done:     make(chan struct{}),
		clients:  make(map[*Client]struct{}),
		scopes:   make(map[int64]*Scope),
	}
}

// Run processes hub operations until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			return
		case op := <-h.ops:
			op()
		}
	}
}

// submit hands op to the loop. It gives up if ctx ends or the hub stops.
func (h *Hub) submit(ctx context.Context, op func()) bool {
	select {
	case h.ops <- op:
		return true
	case <-ctx.Done():
		return false
	case <-h.done:
		return false
	}
}

// exec runs op on the loop and waits for it to finish.
func (h *Hub) exec(op func()) bool {
	finished := make(chan struct{})
	if !h.submit(context.Background(), func() {
		op()
		close(finished)
	}) {
		return false
	}
	select {
	case <-finished:
		return true
	case <-h.done:
		return false
	}
}

// RegisterClient adds a freshly opened connection and starts serving its
// commands. Returns false if the hub is no longer running.
func (h *Hub) RegisterClient(c *Client) bool {
	return h.exec(func() {
		h.clients[c] = struct{}{}
		c.registered.Store(true)
		go h.serveClient(c)
		h.log.Debug().Str("conn_id", c.ID).Int("connections", len(h.clients)).Msg("client registered")
	})
}

// UnregisterClient closes the connection: it stops command processing,
// removes the client from every room scope and releases its identity. It runs
// at most once per client and returns after cleanup finished.
func (h *Hub) UnregisterClient(c *Client) {
	c.closeOnce.Do(func() {
		c.cancel()
		if c.registered.Load() {
			<-c.served
		}

		h.exec(func() {
			h.removeClient(c)
		})

		identity := c.Identity()
		if identity != "" {
			h.sessions.Release(identity, c.ID)
		}
		c.markClosed()

		h.log.Debug().Str("conn_id", c.ID).Str("identity", identity).Msg("client unregistered")
	})
}

// Stats returns counts of live connections, bound identities and room scopes.
func (h *Hub) Stats() Stats {
	var st Stats
	h.exec(func() {
		st.Connections = len(h.clients)
		for c := range h.clients {
			if c.bound() {
				st.Bound++
			}
		}
		st.Rooms = len(h.scopes)
	})
	return st
}

func (h *Hub) removeClient(c *Client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	for room := range c.rooms {
		scope, ok := h.scopes[room]
		if !ok {
			continue
		}
		scope.Remove(c)
		if scope.Empty() {
			delete(h.scopes, room)
		}
	}
	c.rooms = make(map[int64]struct{})
}

func (h *Hub) serveClient(c *Client) {
	defer close(c.served)
	for {
		select {
		case cmd := <-c.Commands:
			if cmd != nil {
				h.handleCommand(c, cmd)
			}
		case <-c.ctx.Done():
			return
		case <-h.done:
			return
		}
	}
}

func (h *Hub) handleCommand(c *Client, cmd *Command) {
	switch cmd.Kind {
	case CommandHello:
		h.bindIdentity(c, cmd.Identity)
	case CommandSendGlobalMessage:
		h.broadcastGlobal(c, cmd.Text)
	case CommandJoinRoom:
		h.joinRoom(c, cmd.Room, cmd.Password)
	case CommandSendRoomMessage:
		h.broadcastRoom(c, cmd.Room, cmd.Text)
	default:
		h.reject(c, coreError(ErrCodeBadRequest, "unknown command"))
	}
}

func (h *Hub) reject(c *Client, err *CoreError) {
	c.reply(&Event{Kind: EventError, Error: err})
}

// bindIdentity moves an Open client to Bound. A rejected admission leaves the
// client Open; rebinding a Bound client is refused.
func (h *Hub) bindIdentity(c *Client, identity string) {
	if c.bound() {
		h.reject(c, coreError(ErrCodeAlreadyBound, "identity already bound to this connection"))
		return
	}
	if identity == "" {
		h.reject(c, coreError(ErrCodeBadRequest, "identity is required"))
		return
	}
	if err := h.sessions.Admit(identity, c.ID); err != nil {
		h.log.Info().Str("conn_id", c.ID).Str("identity", identity).Msg("duplicate session rejected")
		h.reject(c, ErrorFrom(err))
		return
	}

	c.bind(identity)
	h.log.Info().Str("conn_id", c.ID).Str("identity", identity).Msg("identity bound")
	c.reply(&Event{Kind: EventIdentityBound, User: identity})
}

func (h *Hub) joinRoom(c *Client, room int64, password string) {
	identity := c.Identity()
	if identity == "" {
		h.reject(c, coreError(ErrCodeUnauthorized, "send hello before joining rooms"))
		return
	}
	if room <= 0 {
		h.reject(c, coreError(ErrCodeBadRequest, "room is required"))
		return
	}

	if h.rooms != nil {
		if err := h.rooms.Join(c.ctx, room, identity, password); err != nil {
			if c.ctx.Err() != nil {
				return
			}
			ce := ErrorFrom(err)
			if ce.Code == ErrCodeServerError {
				h.log.Error().Err(err).Str("conn_id", c.ID).Int64("room_id", room).Msg("join room failed")
			}
			h.reject(c, ce)
			return
		}
	}

	h.submit(c.ctx, func() {
		if _, ok := h.clients[c]; !ok {
			return
		}
		scope, ok := h.scopes[room]
		if !ok {
			scope = NewScope(room)
			h.scopes[room] = scope
		}
		scope.Add(c)
		c.rooms[room] = struct{}{}
		c.deliver(&Event{Kind: EventRoomJoined, Room: room, User: identity})
		h.log.Debug().Str("identity", identity).Int64("room_id", room).Int("scope_size", scope.Len()).Msg("joined room scope")
	})
}

// broadcastGlobal delivers to every other bound client. The sender renders its
// own copy locally, so it is skipped.
func (h *Hub) broadcastGlobal(c *Client, text string) {
	identity := c.Identity()
	if identity == "" {
		h.reject(c, coreError(ErrCodeUnauthorized, "send hello before sending messages"))
		return
	}
	if text == "" {
		h.reject(c, coreError(ErrCodeBadRequest, "message text is required"))
		return
	}

	ev := &Event{
		Kind: EventGlobalMessage,
		User: identity,
		Message: Message{
			From:      identity,
			Text:      text,
			CreatedAt: time.Now(),
		},
	}
	h.submit(c.ctx, func() {
		for other := range h.clients {
			if other == c || !other.bound() {
				continue
			}
			other.deliver(ev)
		}
	})
}

// broadcastRoom delivers to every client in the room scope, the sender
// included. Clients drop their own echo by comparing identities.
func (h *Hub) broadcastRoom(c *Client, room int64, text string) {
	identity := c.Identity()
	if identity == "" {
		h.reject(c, coreError(ErrCodeUnauthorized, "send hello before sending messages"))
		return
	}
	if text == "" {
		h.reject(c, coreError(ErrCodeBadRequest, "message text is required"))
		return
	}

	ev := &Event{
		Kind: EventRoomMessage,
		Room: room,
		User: identity,
		Message: Message{
			Room:      room,
			From:      identity,
			Text:      text,
			CreatedAt: time.Now(),
		},
	}
	h.submit(c.ctx, func() {
		scope, ok := h.scopes[room]
		if !ok || !scope.Has(c) {
			c.deliver(&Event{Kind: EventError, Error: coreError(ErrCodeNotInRoom, "join the room before sending messages")})
			return
		}
		scope.Broadcast(ev)
	})
}
