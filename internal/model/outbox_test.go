package model

import (
	"testing"
	"time"

	"github.com/gofiber/websocket/v2"
)

func TestOutboxCloseFlushes(t *testing.T) {
	conn := &fakeConn{}
	out := NewOutbox(conn, 4)
	out.Send("hello")
	out.Send(CloseFrame{Code: websocket.CloseNormalClosure, Text: "bye"})
	out.Close()

	if n := conn.count(); n != 2 {
		t.Fatalf("%d writes, want 2", n)
	}
	if got := conn.last(); got != websocket.CloseMessage {
		t.Errorf("last write = %v, want a close message", got)
	}
	if out.Send("late") {
		t.Error("Send succeeded after Close")
	}
	if conn.isClosed() {
		t.Error("Close closed the connection; the handler owns it")
	}
}

func TestOutboxDropsSlowConnection(t *testing.T) {
	conn := &fakeConn{delay: 50 * time.Millisecond}
	out := NewOutbox(conn, 1)

	dropped := false
	for i := 0; i < 3 && !dropped; i++ {
		dropped = !out.Send(i)
	}
	if !dropped {
		t.Fatal("full outbox accepted every message")
	}
	select {
	case <-out.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("writer did not stop")
	}
	if !conn.isClosed() {
		t.Error("dropped connection was not closed")
	}
}
