// Package rooms validates room creation, joins and deletion against the room store.
package rooms

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/vovakirdan/roomchat/internal/auth"
	"github.com/vovakirdan/roomchat/internal/store"
)

// Common errors for room operations.
var (
	ErrRoomNotFound  = errors.New("room not found")
	ErrWrongPassword = errors.New("wrong room password")
	ErrRoomFull      = errors.New("room is full")
	ErrForbidden     = errors.New("only the creator can delete the room")
	ErrValidation    = errors.New("validation error")
)

const maxTitleLength = 64

// CreateParams describes a room to create.
type CreateParams struct {
	Title        string
	MaxOccupancy int
	IsPrivate    bool
	Password     string
	Creator      string
}

// Service provides room membership business logic.
type Service struct {
	store store.RoomStore
	locks *roomLocks
	list  singleflight.Group
}

// New creates a new room Service.
func New(st store.RoomStore) *Service {
	return &Service{
		store: st,
		locks: newRoomLocks(),
	}
}

// Create validates and persists a new room. The creator is not joined.
func (s *Service) Create(ctx context.Context, p CreateParams) (*store.Room, error) {
	title := strings.TrimSpace(p.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if len(title) > maxTitleLength {
		return nil, fmt.Errorf("%w: title is longer than %d characters", ErrValidation, maxTitleLength)
	}
	if p.MaxOccupancy < 1 {
		return nil, fmt.Errorf("%w: max occupancy must be at least 1", ErrValidation)
	}
	if p.Creator == "" {
		return nil, fmt.Errorf("%w: creator is required", ErrValidation)
	}

	room := store.NewRoom{
		Title:        title,
		MaxOccupancy: p.MaxOccupancy,
		IsPrivate:    p.IsPrivate,
		CreatorName:  p.Creator,
	}
	if p.IsPrivate {
		if p.Password == "" {
			return nil, fmt.Errorf("%w: private rooms require a password", ErrValidation)
		}
		if len(p.Password) > auth.MaxPasswordBytes {
			return nil, fmt.Errorf("%w: password is longer than %d bytes", ErrValidation, auth.MaxPasswordBytes)
		}
		hash, err := auth.HashPassword(p.Password)
		if err != nil {
			return nil, err
		}
		room.PasswordHash = hash
	}

	created, err := s.store.CreateRoom(ctx, room)
	if err != nil {
		return nil, fmt.Errorf("create room: %w", err)
	}
	return created, nil
}

// List returns all rooms. Concurrent callers share one store query.
func (s *Service) List(ctx context.Context) ([]*store.Room, error) {
	v, err, _ := s.list.Do("rooms", func() (any, error) {
		return s.store.ListRooms(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	return v.([]*store.Room), nil
}

// Get returns a single room.
func (s *Service) Get(ctx context.Context, roomID int64) (*store.Room, error) {
	room, err := s.store.GetRoomByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, fmt.Errorf("get room: %w", err)
	}
	return room, nil
}

// Join records identity as a member of the room. Checks run in order:
// existence, password (private rooms), capacity. The capacity check and the
// insert hold the room lock, so concurrent joins cannot exceed MaxOccupancy.
// Every accepted join adds a row, so a repeat join by a member needs a free
// slot like any other.
func (s *Service) Join(ctx context.Context, roomID int64, identity, password string) error {
	unlock := s.locks.lock(roomID)
	defer unlock()

	room, err := s.Get(ctx, roomID)
	if err != nil {
		return err
	}

	if room.IsPrivate {
		if password == "" || auth.ComparePassword(room.PasswordHash, password) != nil {
			return ErrWrongPassword
		}
	}

	count, err := s.store.CountMembers(ctx, roomID)
	if err != nil {
		return fmt.Errorf("count members: %w", err)
	}
	if count >= room.MaxOccupancy {
		return ErrRoomFull
	}

	if err := s.store.AddMember(ctx, roomID, identity); err != nil {
		return fmt.Errorf("add member: %w", err)
	}
	return nil
}

// Delete removes the room and all its membership rows. Only the creator may delete.
func (s *Service) Delete(ctx context.Context, roomID int64, requester string) error {
	unlock := s.locks.lock(roomID)
	defer unlock()

	room, err := s.Get(ctx, roomID)
	if err != nil {
		return err
	}
	if room.CreatorName != requester {
		return ErrForbidden
	}

	if err := s.store.DeleteRoom(ctx, roomID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrRoomNotFound
		}
		return fmt.Errorf("delete room: %w", err)
	}
	return nil
}
