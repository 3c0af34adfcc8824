package model

import (
	"sync"
	"sync/atomic"

	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/websocket/v2"
)

// Conn is the part of a WebSocket connection an Outbox writes to.
type Conn interface {
	WriteJSON(v interface{}) error
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// CloseFrame queued on an Outbox is written as a WebSocket close message.
type CloseFrame struct {
	Code int
	Text string
}

// Outbox is the only writer of one connection. Messages are written by a
// single goroutine in the order they were queued.
type Outbox struct {
	conn    Conn
	send    chan interface{}
	quit    chan struct{}
	stopped chan struct{}
	once    sync.Once
	dropped atomic.Bool
}

func NewOutbox(conn Conn, size int) *Outbox {
	o := &Outbox{
		conn:    conn,
		send:    make(chan interface{}, size),
		quit:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go o.run()
	return o
}

// Send queues v without blocking. It reports false if the outbox is closed
// or full; a full outbox is dropped and its connection closed.
func (o *Outbox) Send(v interface{}) bool {
	select {
	case <-o.quit:
		return false
	default:
	}
	select {
	case o.send <- v:
		return true
	default:
		log.Warnf("outbox full, dropping connection")
		o.dropped.Store(true)
		o.stop()
		return false
	}
}

// Close writes what is already queued and waits for the writer to exit.
func (o *Outbox) Close() {
	o.stop()
	<-o.stopped
}

// Done is closed once the writer has exited.
func (o *Outbox) Done() <-chan struct{} {
	return o.stopped
}

func (o *Outbox) stop() {
	o.once.Do(func() { close(o.quit) })
}

func (o *Outbox) run() {
	defer close(o.stopped)

	for {
		select {
		case v := <-o.send:
			if err := o.write(v); err != nil {
				log.Debugf("outbox write: %v", err)
				o.dropped.Store(true)
				o.stop()
				o.conn.Close()
				return
			}
		case <-o.quit:
			if o.dropped.Load() {
				o.conn.Close()
				return
			}
			for {
				select {
				case v := <-o.send:
					if err := o.write(v); err != nil {
						return
					}
				default:
					return
				}
			}
		}
	}
}

func (o *Outbox) write(v interface{}) error {
	if f, ok := v.(CloseFrame); ok {
		return o.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(f.Code, f.Text))
	}
	return o.conn.WriteJSON(v)
}
