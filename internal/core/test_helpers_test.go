package core

import (
	"encoding/json"
	"testing"
	"time"
)

// nextFrame waits for the next frame of the wanted type on the client's
// outbox, skipping frames of other types.
func nextFrame(t *testing.T, c *Client, wantType string) map[string]any {
	t.Helper()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case raw := <-c.Outbox():
			var frame map[string]any
			if err := json.Unmarshal(raw, &frame); err != nil {
				t.Fatalf("undecodable frame %q: %v", raw, err)
			}
			if frame["type"] == wantType {
				return frame
			}
		case <-deadline:
			t.Fatalf("frame of type %q not received", wantType)
		}
	}
}

// noFrame asserts the client's outbox is empty. Valid because the hub
// queues frames synchronously from Handle.
func noFrame(t *testing.T, c *Client) {
	t.Helper()

	select {
	case raw := <-c.Outbox():
		t.Fatalf("unexpected frame: %s", raw)
	default:
	}
}

// drain discards everything queued on the client's outbox so far.
func drain(c *Client) {
	for {
		select {
		case <-c.Outbox():
		default:
			return
		}
	}
}
