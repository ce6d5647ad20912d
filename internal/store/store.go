package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// User represents a registered user.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// Room represents a chat room with bounded occupancy.
type Room struct {
	ID           int64
	Title        string
	MaxOccupancy int
	IsPrivate    bool
	PasswordHash string // empty for public rooms
	CreatorName  string
	MemberCount  int
	CreatedAt    time.Time
}

// NewRoom holds the fields required to persist a room.
type NewRoom struct {
	Title        string
	MaxOccupancy int
	IsPrivate    bool
	PasswordHash string
	CreatorName  string
}

// UserStore handles user persistence.
type UserStore interface {
	// CreateUser creates a new user with hashed password.
	CreateUser(ctx context.Context, username, passwordHash string) (*User, error)

	// GetUserByUsername retrieves a user by username.
	GetUserByUsername(ctx context.Context, username string) (*User, error)
}

// RoomStore handles room and membership persistence.
type RoomStore interface {
	// CreateRoom inserts a room and returns it with its new identifier.
	CreateRoom(ctx context.Context, room NewRoom) (*Room, error)

	// GetRoomByID retrieves a room by ID, including its member count.
	GetRoomByID(ctx context.Context, id int64) (*Room, error)

	// ListRooms lists all rooms, newest first.
	ListRooms(ctx context.Context) ([]*Room, error)

	// CountMembers returns the number of membership rows of a room.
	CountMembers(ctx context.Context, roomID int64) (int, error)

	// AddMember records one more membership row for username in the room.
	AddMember(ctx context.Context, roomID int64, username string) error

	// DeleteRoom removes the room and all its membership rows in one transaction.
	DeleteRoom(ctx context.Context, roomID int64) error
}

// Store aggregates all storage interfaces.
type Store interface {
	UserStore
	RoomStore

	// Close closes the underlying database connection.
	Close() error
}
