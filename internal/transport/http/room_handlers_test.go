package http

import (
	stdhttp "net/http"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/roomchat/internal/core"
)

func roomPath(id int64) string {
	return "/api/rooms/" + strconv.FormatInt(id, 10)
}

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t, nil)
	env.register(t, "alice")

	var errResp ErrorResponse
	status := env.doJSON(t, stdhttp.MethodPost, "/api/register", "", RegisterRequest{Username: "alice", Password: "secret123"}, &errResp)
	assert.Equal(t, stdhttp.StatusConflict, status)

	status = env.doJSON(t, stdhttp.MethodPost, "/api/register", "", RegisterRequest{Username: "al", Password: "secret123"}, &errResp)
	assert.Equal(t, stdhttp.StatusBadRequest, status)

	var login AuthResponse
	status = env.doJSON(t, stdhttp.MethodPost, "/api/login", "", LoginRequest{Username: "alice", Password: "secret123"}, &login)
	require.Equal(t, stdhttp.StatusOK, status)
	assert.Equal(t, "alice", login.Username)

	claims, err := env.auth.ValidateToken(login.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)

	status = env.doJSON(t, stdhttp.MethodPost, "/api/login", "", LoginRequest{Username: "alice", Password: "nope-nope"}, &errResp)
	assert.Equal(t, stdhttp.StatusUnauthorized, status)
}

func TestRoomsRequireToken(t *testing.T) {
	env := newTestEnv(t, nil)

	var errResp ErrorResponse
	status := env.doJSON(t, stdhttp.MethodGet, "/api/rooms", "", nil, &errResp)
	assert.Equal(t, stdhttp.StatusUnauthorized, status)
	assert.Equal(t, core.ErrCodeUnauthorized, errResp.Code)

	status = env.doJSON(t, stdhttp.MethodGet, "/api/rooms", "garbage", nil, &errResp)
	assert.Equal(t, stdhttp.StatusUnauthorized, status)
}

func TestCreateListGetRoom(t *testing.T) {
	env := newTestEnv(t, nil)
	token := env.register(t, "alice")

	room := env.createRoom(t, token, CreateRoomRequest{Title: "  Lobby  ", MaxOccupancy: 5})
	assert.Equal(t, "Lobby", room.Title)
	assert.Equal(t, "alice", room.Creator)
	assert.Zero(t, room.MemberCount, "creator is not joined")

	var list []RoomResponse
	status := env.doJSON(t, stdhttp.MethodGet, "/api/rooms", token, nil, &list)
	require.Equal(t, stdhttp.StatusOK, status)
	require.Len(t, list, 1)
	assert.Equal(t, room.ID, list[0].ID)

	var got RoomResponse
	status = env.doJSON(t, stdhttp.MethodGet, roomPath(room.ID), token, nil, &got)
	require.Equal(t, stdhttp.StatusOK, status)
	assert.Equal(t, 5, got.MaxOccupancy)

	var errResp ErrorResponse
	status = env.doJSON(t, stdhttp.MethodGet, roomPath(room.ID+1), token, nil, &errResp)
	assert.Equal(t, stdhttp.StatusNotFound, status)
	assert.Equal(t, core.ErrCodeRoomNotFound, errResp.Code)

	status = env.doJSON(t, stdhttp.MethodGet, "/api/rooms/abc", token, nil, &errResp)
	assert.Equal(t, stdhttp.StatusBadRequest, status)
}

func TestCreateRoomValidation(t *testing.T) {
	env := newTestEnv(t, nil)
	token := env.register(t, "alice")

	tests := []struct {
		name string
		req  CreateRoomRequest
	}{
		{"empty title", CreateRoomRequest{Title: " ", MaxOccupancy: 2}},
		{"zero occupancy", CreateRoomRequest{Title: "room", MaxOccupancy: 0}},
		{"private without password", CreateRoomRequest{Title: "room", MaxOccupancy: 2, IsPrivate: true}},
		{"password too long", CreateRoomRequest{Title: "room", MaxOccupancy: 2, IsPrivate: true, Password: strings.Repeat("p", 80)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var errResp ErrorResponse
			status := env.doJSON(t, stdhttp.MethodPost, "/api/rooms", token, tt.req, &errResp)
			assert.Equal(t, stdhttp.StatusBadRequest, status)
			assert.Equal(t, core.ErrCodeValidation, errResp.Code)
		})
	}
}

func TestJoinRoomOverHTTP(t *testing.T) {
	env := newTestEnv(t, nil)
	aliceToken := env.register(t, "alice")
	bobToken := env.register(t, "bob")
	carolToken := env.register(t, "carol")

	room := env.createRoom(t, aliceToken, CreateRoomRequest{Title: "duo", MaxOccupancy: 2, IsPrivate: true, Password: "pw"})

	var errResp ErrorResponse
	status := env.doJSON(t, stdhttp.MethodPost, roomPath(room.ID)+"/join", bobToken, JoinRoomRequest{Password: "bad"}, &errResp)
	assert.Equal(t, stdhttp.StatusUnauthorized, status)
	assert.Equal(t, core.ErrCodeWrongPassword, errResp.Code)

	status = env.doJSON(t, stdhttp.MethodPost, roomPath(room.ID)+"/join", bobToken, JoinRoomRequest{Password: "pw"}, nil)
	assert.Equal(t, stdhttp.StatusOK, status)
	status = env.doJSON(t, stdhttp.MethodPost, roomPath(room.ID)+"/join", aliceToken, JoinRoomRequest{Password: "pw"}, nil)
	assert.Equal(t, stdhttp.StatusOK, status)

	status = env.doJSON(t, stdhttp.MethodPost, roomPath(room.ID)+"/join", carolToken, JoinRoomRequest{Password: "pw"}, &errResp)
	assert.Equal(t, stdhttp.StatusConflict, status)
	assert.Equal(t, core.ErrCodeRoomFull, errResp.Code)

	var got RoomResponse
	env.doJSON(t, stdhttp.MethodGet, roomPath(room.ID), bobToken, nil, &got)
	assert.Equal(t, 2, got.MemberCount)
}

func TestDeleteRoom(t *testing.T) {
	env := newTestEnv(t, nil)
	aliceToken := env.register(t, "alice")
	bobToken := env.register(t, "bob")

	room := env.createRoom(t, aliceToken, CreateRoomRequest{Title: "temp", MaxOccupancy: 3})

	var errResp ErrorResponse
	status := env.doJSON(t, stdhttp.MethodDelete, roomPath(room.ID), bobToken, nil, &errResp)
	assert.Equal(t, stdhttp.StatusForbidden, status)
	assert.Equal(t, core.ErrCodeForbidden, errResp.Code)

	status = env.doJSON(t, stdhttp.MethodDelete, roomPath(room.ID), aliceToken, nil, nil)
	assert.Equal(t, stdhttp.StatusNoContent, status)

	status = env.doJSON(t, stdhttp.MethodDelete, roomPath(room.ID), aliceToken, nil, &errResp)
	assert.Equal(t, stdhttp.StatusNotFound, status)
}
