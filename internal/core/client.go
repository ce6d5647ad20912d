package core

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

const defaultBufferSize = 16

// State is a connection's position in its lifecycle.
type State int32

const (
	// StateOpen means connected but no identity bound yet.
	StateOpen State = iota
	// StateBound means an identity is bound for the rest of the connection.
	StateBound
	// StateClosed is terminal; all resources were released.
	StateClosed
)

// Client is one live connection as seen by the core layer.
type Client struct {
	ID       string
	Commands chan *Command
	Events   chan *Event

	mu       sync.RWMutex
	identity string
	state    State

	// rooms is owned by the hub loop.
	rooms map[int64]struct{}

	ctx        context.Context
	cancel     context.CancelFunc
	registered atomic.Bool
	served     chan struct{}
	closeOnce  sync.Once
}

// NewClient constructs a client with initialized channels. An empty id is
// replaced with a random UUID; a non-positive buffer uses the default size.
func NewClient(id string, buffer int) *Client {
	if id == "" {
		id = uuid.NewString()
	}
	if buffer <= 0 {
		buffer = defaultBufferSize
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		ID:       id,
		Commands: make(chan *Command, buffer),
		Events:   make(chan *Event, buffer),
		rooms:    make(map[int64]struct{}),
		ctx:      ctx,
		cancel:   cancel,
		served:   make(chan struct{}),
	}
}

// Identity returns the bound identity, or "" while the client is Open.
func (c *Client) Identity() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.identity
}

// State returns the current lifecycle state.
func (c *Client) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

func (c *Client) bound() bool {
	return c.State() == StateBound
}

func (c *Client) bind(identity string) {
	c.mu.Lock()
	c.identity = identity
	c.state = StateBound
	c.mu.Unlock()
}

func (c *Client) markClosed() {
	c.mu.Lock()
	c.state = StateClosed
	c.mu.Unlock()
}

// deliver queues an event without blocking; a full buffer drops it.
func (c *Client) deliver(ev *Event) bool {
	select {
	case c.Events <- ev:
		return true
	default:
		return false
	}
}

// reply queues an event for this client, waiting for buffer space until the
// client goes away.
func (c *Client) reply(ev *Event) {
	select {
	case c.Events <- ev:
	case <-c.ctx.Done():
	}
}
