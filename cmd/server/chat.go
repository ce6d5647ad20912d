package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/roomchat/internal/proto"
)

type chatOptions struct {
	server   string
	user     string
	password string
	room     int64
	roomPass string
}

func newChatCmd() *cobra.Command {
	opts := &chatOptions{}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Interactive terminal chat client",
		Long: `Logs in over HTTP, connects to the WebSocket endpoint and sends each input line.
Lines go to the global stream unless a room is active.
  /join <id> [password]  join a room and make it active
  /global                send to the global stream again`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runChat(ctx, opts, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.server, "server", "http://localhost:8080", "server base URL")
	flags.StringVarP(&opts.user, "user", "u", "", "username")
	flags.StringVarP(&opts.password, "password", "p", "", "password")
	flags.Int64Var(&opts.room, "room", 0, "room to join on connect")
	flags.StringVar(&opts.roomPass, "room-password", "", "password for a private room")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func runChat(parent context.Context, opts *chatOptions, in io.Reader, out io.Writer) error {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	token, err := login(ctx, opts.server, opts.user, opts.password)
	if err != nil {
		return err
	}

	wsURL, err := websocketURL(opts.server)
	if err != nil {
		return err
	}
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	if err := sendFrame(ctx, conn, proto.InboundTypeHello, proto.HelloData{Token: token, Protocol: proto.ProtocolVersion}); err != nil {
		return err
	}

	session := &chatSession{self: opts.user, out: out}
	if opts.room > 0 {
		session.room = opts.room
		if err := sendFrame(ctx, conn, proto.InboundTypeJoin, proto.JoinData{RoomID: opts.room, Password: opts.roomPass}); err != nil {
			return err
		}
	}

	fmt.Fprintf(out, "Connected to %s as %s. Ctrl+C to exit.\n", wsURL, opts.user)

	go func() {
		defer cancel()
		readLoop(ctx, conn, session)
	}()

	writeLoop(ctx, conn, session, in)
	return nil
}

type loginResponse struct {
	Token string `json:"token"`
	Error string `json:"error"`
}

func login(ctx context.Context, server, user, password string) (string, error) {
	body, err := json.Marshal(map[string]string{"username": user, "password": password})
	if err != nil {
		return "", err
	}

	reqCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, strings.TrimRight(server, "/")+"/api/login", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("login: %w", err)
	}
	defer resp.Body.Close()

	var lr loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return "", fmt.Errorf("decode login response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("login failed (%d): %s", resp.StatusCode, lr.Error)
	}
	return lr.Token, nil
}

func websocketURL(server string) (string, error) {
	u, err := url.Parse(server)
	if err != nil {
		return "", fmt.Errorf("parse server url: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws"
	return u.String(), nil
}

func sendFrame(ctx context.Context, conn *websocket.Conn, typ string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", typ, err)
	}
	if err := wsjson.Write(ctx, conn, proto.Inbound{Type: typ, Data: payload}); err != nil {
		return fmt.Errorf("send %s: %w", typ, err)
	}
	return nil
}

// chatSession tracks the active room and renders server frames.
type chatSession struct {
	self string
	room int64
	out  io.Writer
}

type inboundFrame struct {
	Type  string          `json:"type"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
	Error *proto.Error    `json:"error"`
}

// render writes one server frame. Room messages from self are the server echo
// of a line already shown locally, so they are skipped.
func (s *chatSession) render(frame inboundFrame) {
	if frame.Type == proto.OutboundTypeError && frame.Error != nil {
		fmt.Fprintf(s.out, "! %s: %s\n", frame.Error.Code, frame.Error.Msg)
		return
	}

	switch frame.Event {
	case proto.EventNameHello:
		var evt proto.EventHelloData
		if json.Unmarshal(frame.Data, &evt) == nil {
			fmt.Fprintf(s.out, "* signed in as %s\n", evt.User)
		}
	case proto.EventNameJoined:
		var evt proto.EventJoinedData
		if json.Unmarshal(frame.Data, &evt) == nil {
			fmt.Fprintf(s.out, "* joined room %d\n", evt.RoomID)
		}
	case proto.EventNameMessage:
		var evt proto.EventMessage
		if json.Unmarshal(frame.Data, &evt) == nil {
			fmt.Fprintf(s.out, "[global] %s: %s\n", evt.From, evt.Body)
		}
	case proto.EventNameRoomMessage:
		var evt proto.EventMessage
		if json.Unmarshal(frame.Data, &evt) == nil && evt.From != s.self {
			fmt.Fprintf(s.out, "[room %d] %s: %s\n", evt.RoomID, evt.From, evt.Body)
		}
	default:
		fmt.Fprintf(s.out, "event=%s data=%s\n", frame.Event, frame.Data)
	}
}

// parseLine turns one input line into a frame to send. It returns an empty
// type for blank lines.
func (s *chatSession) parseLine(line string) (string, any) {
	text := strings.TrimSpace(line)
	switch {
	case text == "":
		return "", nil
	case text == "/global":
		s.room = 0
		return "", nil
	case strings.HasPrefix(text, "/join "):
		fields := strings.Fields(text)
		roomID, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			fmt.Fprintf(s.out, "! bad room id %q\n", fields[1])
			return "", nil
		}
		join := proto.JoinData{RoomID: roomID}
		if len(fields) > 2 {
			join.Password = fields[2]
		}
		s.room = roomID
		return proto.InboundTypeJoin, join
	case s.room > 0:
		return proto.InboundTypeRoomMsg, proto.RoomMsgData{RoomID: s.room, Text: text}
	default:
		return proto.InboundTypeMsg, proto.MsgData{Text: text}
	}
}

func readLoop(ctx context.Context, conn *websocket.Conn, session *chatSession) {
	for {
		var frame inboundFrame
		if err := wsjson.Read(ctx, conn, &frame); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return
			}
			fmt.Fprintf(os.Stderr, "read error: %v\n", err)
			return
		}
		session.render(frame)
	}
}

func writeLoop(ctx context.Context, conn *websocket.Conn, session *chatSession, in io.Reader) {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			typ, data := session.parseLine(line)
			if typ == "" {
				continue
			}
			if err := sendFrame(ctx, conn, typ, data); err != nil {
				fmt.Fprintf(os.Stderr, "%v\n", err)
				return
			}
		}
	}
}
