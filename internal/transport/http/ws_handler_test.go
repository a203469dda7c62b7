package http

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/vovakirdan/relay-server/internal/config"
	"github.com/vovakirdan/relay-server/internal/core"
	"github.com/vovakirdan/relay-server/internal/proto"
)

func startTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	hub := core.NewHub("general", nil)
	server := NewServer(hub, config.Config{
		Addr:              ":0",
		ReadHeaderTimeout: time.Second,
		ShutdownTimeout:   time.Second,
	}, nil)

	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)
	return ts
}

func dial(ctx context.Context, t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()

	wsURL := strings.Replace(ts.URL, "http", "ws", 1) + "/ws"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", wsURL, err)
	}
	return conn
}

// readFrame reads frames until one of the wanted type arrives.
func readFrame(ctx context.Context, t *testing.T, conn *websocket.Conn, wantType string) map[string]any {
	t.Helper()

	for {
		var frame map[string]any
		if err := wsjson.Read(ctx, conn, &frame); err != nil {
			t.Fatalf("read frame of type %q: %v", wantType, err)
		}
		if frame["type"] == wantType {
			return frame
		}
	}
}

func TestHealthEndpoint(t *testing.T) {
	ts := startTestServer(t)

	resp, err := ts.Client().Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
}

func TestWebSocketJoinChatAndDisconnect(t *testing.T) {
	ts := startTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	connA := dial(ctx, t, ts)
	defer connA.Close(websocket.StatusNormalClosure, "done")

	sendFrame := func(conn *websocket.Conn, in proto.Inbound) {
		if err := wsjson.Write(ctx, conn, in); err != nil {
			t.Fatalf("write frame: %v", err)
		}
	}

	sendFrame(connA, proto.Inbound{Type: proto.TypeJoin, Name: "Alice", Room: "general"})
	joined := readFrame(ctx, t, connA, "joined")
	if joined["name"] != "Alice" || joined["room"] != "general" {
		t.Fatalf("unexpected joined frame: %v", joined)
	}

	connB := dial(ctx, t, ts)
	sendFrame(connB, proto.Inbound{Type: proto.TypeJoin, Name: "Bob", Room: "general"})
	readFrame(ctx, t, connB, "joined")

	if got := readFrame(ctx, t, connA, "system")["text"]; got != "Bob joined general" {
		t.Fatalf("unexpected join notice: %v", got)
	}

	sendFrame(connB, proto.Inbound{Type: proto.TypeChat, Text: "hi there"})
	for _, conn := range []*websocket.Conn{connA, connB} {
		chat := readFrame(ctx, t, conn, "chat")
		from := chat["from"].(map[string]any)
		if from["name"] != "Bob" || chat["text"] != "hi there" {
			t.Fatalf("unexpected chat frame: %v", chat)
		}
		if _, ok := chat["ts"].(float64); !ok {
			t.Fatalf("chat frame without server ts: %v", chat)
		}
	}

	sendFrame(connA, proto.Inbound{Type: proto.TypePM, To: "Bob", Text: "yo"})
	pm := readFrame(ctx, t, connB, "pm")
	if pm["from"].(map[string]any)["name"] != "Alice" || pm["text"] != "yo" {
		t.Fatalf("unexpected pm frame: %v", pm)
	}

	connB.Close(websocket.StatusNormalClosure, "done")
	if got := readFrame(ctx, t, connA, "system")["text"]; got != "Bob left general" {
		t.Fatalf("unexpected leave notice: %v", got)
	}
}

func TestWebSocketErrorReplyKeepsConnectionOpen(t *testing.T) {
	ts := startTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn := dial(ctx, t, ts)
	defer conn.Close(websocket.StatusNormalClosure, "done")

	if err := conn.Write(ctx, websocket.MessageText, []byte("{not json")); err != nil {
		t.Fatalf("write malformed frame: %v", err)
	}
	if got := readFrame(ctx, t, conn, "error")["text"]; got != "Invalid JSON" {
		t.Fatalf("unexpected error text: %v", got)
	}

	// The connection is still usable after the error reply.
	if err := wsjson.Write(ctx, conn, proto.Inbound{Type: proto.TypeJoin, Name: "Alice"}); err != nil {
		t.Fatalf("write join after error: %v", err)
	}
	readFrame(ctx, t, conn, "joined")
}
