package core

import "time"

// Message is a chat message as delivered to clients. Room is zero for the
// global stream.
type Message struct {
	Room      int64
	From      string
	Text      string
	CreatedAt time.Time
}
