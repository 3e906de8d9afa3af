package http

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"

	presenceDomain "github.com/allisson/filedrop/internal/presence/domain"
)

const (
	writeWait      = 10 * time.Second
	maxInboundSize = 4096
)

// wsConnection adapts a websocket to presenceDomain.Connection. Events are
// queued on a bounded channel and written by a single writer goroutine.
type wsConnection struct {
	id        string
	conn      *websocket.Conn
	send      chan presenceDomain.Event
	done      chan struct{}
	closeOnce sync.Once
}

func newWSConnection(id string, conn *websocket.Conn, buffer int) *wsConnection {
	return &wsConnection{
		id:   id,
		conn: conn,
		send: make(chan presenceDomain.Event, buffer),
		done: make(chan struct{}),
	}
}

func (w *wsConnection) ID() string {
	return w.id
}

func (w *wsConnection) Send(ev presenceDomain.Event) bool {
	select {
	case <-w.done:
		return false
	default:
	}

	select {
	case w.send <- ev:
		return true
	default:
		return false
	}
}

func (w *wsConnection) Close() {
	w.closeOnce.Do(func() {
		close(w.done)
	})
}

// writePump drains the queue until Close, pinging the peer every pingInterval.
// Events queued before Close are flushed ahead of the close frame. It owns all
// writes to the socket and closes it on exit, which also unblocks the reader.
func (w *wsConnection) writePump(pingInterval time.Duration) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = w.conn.Close()
	}()

	for {
		select {
		case ev := <-w.send:
			_ = w.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := w.conn.WriteJSON(ev); err != nil {
				w.Close()
				return
			}
		case <-ticker.C:
			_ = w.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := w.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				w.Close()
				return
			}
		case <-w.done:
			w.flush()
			_ = w.conn.WriteControl(
				websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait),
			)
			return
		}
	}
}

// flush writes whatever is still queued without blocking on the channel. It
// stops at the first write error.
func (w *wsConnection) flush() {
	for {
		select {
		case ev := <-w.send:
			_ = w.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := w.conn.WriteJSON(ev); err != nil {
				return
			}
		default:
			return
		}
	}
}

// readPump discards inbound frames and returns when the peer goes away or
// stops answering pings.
func (w *wsConnection) readPump(pongWait time.Duration) {
	w.conn.SetReadLimit(maxInboundSize)
	_ = w.conn.SetReadDeadline(time.Now().Add(pongWait))
	w.conn.SetPongHandler(func(string) error {
		return w.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := w.conn.ReadMessage(); err != nil {
			return
		}
	}
}
