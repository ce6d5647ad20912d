package http

import (
	"bytes"
	"context"
	"encoding/json"
	stdhttp "net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/roomchat/internal/auth"
	"github.com/vovakirdan/roomchat/internal/config"
	"github.com/vovakirdan/roomchat/internal/core"
	"github.com/vovakirdan/roomchat/internal/proto"
	"github.com/vovakirdan/roomchat/internal/service/rooms"
	"github.com/vovakirdan/roomchat/internal/session"
	"github.com/vovakirdan/roomchat/internal/store/sqlite"
)

type testEnv struct {
	ts       *httptest.Server
	auth     *auth.Service
	sessions *session.Registry
	hub      *core.Hub
}

func newTestEnv(t *testing.T, tweak func(*config.Config)) *testEnv {
	t.Helper()

	cfg := config.Default()
	cfg.CORSOrigins = []string{"*"}
	cfg.RateLimitPerMinute = 0
	cfg.JWTSecret = "test-secret"
	if tweak != nil {
		tweak(&cfg)
	}

	st, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	logger := zerolog.Nop()
	authService := auth.NewService(st, &auth.JWTConfig{
		Secret:   []byte(cfg.JWTSecret),
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
		TTL:      cfg.JWTTTL,
	})
	roomService := rooms.New(st)
	sessions := session.NewRegistry()
	hub := core.NewHub(sessions, roomService, &logger)

	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)

	server := NewServer(hub, authService, roomService, sessions, &cfg, &logger)
	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)

	return &testEnv{ts: ts, auth: authService, sessions: sessions, hub: hub}
}

// doJSON sends a JSON request and decodes the response body into out when out is non-nil.
func (e *testEnv) doJSON(t *testing.T, method, path, token string, body, out any) int {
	t.Helper()

	var payload bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&payload).Encode(body))
	}
	req, err := stdhttp.NewRequest(method, e.ts.URL+path, &payload)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil && resp.StatusCode != stdhttp.StatusNoContent {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (e *testEnv) register(t *testing.T, username string) string {
	t.Helper()

	var resp AuthResponse
	status := e.doJSON(t, stdhttp.MethodPost, "/api/register", "", RegisterRequest{Username: username, Password: "secret123"}, &resp)
	require.Equal(t, stdhttp.StatusCreated, status)
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func (e *testEnv) createRoom(t *testing.T, token string, req CreateRoomRequest) RoomResponse {
	t.Helper()

	var room RoomResponse
	status := e.doJSON(t, stdhttp.MethodPost, "/api/rooms", token, req, &room)
	require.Equal(t, stdhttp.StatusCreated, status)
	return room
}

func (e *testEnv) dial(t *testing.T) *websocket.Conn {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wsURL := strings.Replace(e.ts.URL, "http", "ws", 1) + "/ws"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "done") })
	return conn
}

type outboundFrame struct {
	Type  string          `json:"type"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
	Error *proto.Error    `json:"error"`
}

func send(t *testing.T, conn *websocket.Conn, typ string, data any) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	payload, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, wsjson.Write(ctx, conn, proto.Inbound{Type: typ, Data: payload}))
}

func read(t *testing.T, conn *websocket.Conn) outboundFrame {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var frame outboundFrame
	require.NoError(t, wsjson.Read(ctx, conn, &frame))
	return frame
}

func readEvent(t *testing.T, conn *websocket.Conn, event string, out any) {
	t.Helper()

	frame := read(t, conn)
	require.Equal(t, proto.OutboundTypeEvent, frame.Type, "unexpected frame: %+v", frame.Error)
	require.Equal(t, event, frame.Event)
	if out != nil {
		require.NoError(t, json.Unmarshal(frame.Data, out))
	}
}

func readError(t *testing.T, conn *websocket.Conn, code string) {
	t.Helper()

	frame := read(t, conn)
	require.Equal(t, proto.OutboundTypeError, frame.Type, "unexpected event %q", frame.Event)
	require.NotNil(t, frame.Error)
	require.Equal(t, code, frame.Error.Code)
}

func hello(t *testing.T, conn *websocket.Conn, token string) {
	t.Helper()

	send(t, conn, proto.InboundTypeHello, proto.HelloData{Token: token, Protocol: proto.ProtocolVersion})
	readEvent(t, conn, proto.EventNameHello, nil)
}
