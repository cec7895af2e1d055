// Package notifier pushes progress lines to the one real-time subscriber
// currently connected.
package notifier

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rusq/dlog"
)

// DefaultWriteTimeout bounds a single write to the subscriber.
const DefaultWriteTimeout = 5 * time.Second

// Conn is the part of *websocket.Conn the notifier uses.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// subscriber serializes writes to one connection.
type subscriber struct {
	mu   sync.Mutex
	conn Conn
}

// Notifier holds at most one subscriber. A new subscriber replaces the
// previous reference without closing it.
//
// Publish is fire-and-forget: lines sent while nobody is subscribed, or that
// fail to write, are dropped. A subscriber whose write fails or times out is
// closed and removed.
type Notifier struct {
	mu           sync.Mutex
	sub          *subscriber
	writeTimeout time.Duration
}

// Option configures a Notifier.
type Option func(*Notifier)

// WithWriteTimeout sets the per-write deadline. A value <= 0 keeps the default.
func WithWriteTimeout(d time.Duration) Option {
	return func(n *Notifier) {
		if d > 0 {
			n.writeTimeout = d
		}
	}
}

// New returns a Notifier without a subscriber.
func New(opts ...Option) *Notifier {
	n := &Notifier{writeTimeout: DefaultWriteTimeout}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Subscribe records conn as the current subscriber.
func (n *Notifier) Subscribe(conn Conn) {
	n.mu.Lock()
	n.sub = &subscriber{conn: conn}
	n.mu.Unlock()
}

// Unsubscribe clears the subscriber if it is still conn.
func (n *Notifier) Unsubscribe(conn Conn) {
	n.mu.Lock()
	if n.sub != nil && n.sub.conn == conn {
		n.sub = nil
	}
	n.mu.Unlock()
}

// Subscribed reports whether a subscriber is recorded.
func (n *Notifier) Subscribed() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.sub != nil
}

// Publish sends text to the current subscriber, if any.
func (n *Notifier) Publish(text string) {
	n.mu.Lock()
	sub := n.sub
	n.mu.Unlock()

	if sub == nil {
		dlog.Debugf("[WebSocket] no subscriber, dropped: %q", text)
		return
	}

	// スロットのロックは書き込み中に保持しない（購読者の差し替えを止めないため）
	// gorilla/websocket は並行書き込み不可なので接続ごとにロックする
	sub.mu.Lock()
	defer sub.mu.Unlock()

	sub.conn.SetWriteDeadline(time.Now().Add(n.writeTimeout))
	if err := sub.conn.WriteMessage(websocket.TextMessage, []byte(text)); err != nil {
		dlog.Printf("[WebSocket] write failed, dropping subscriber: %v", err)
		sub.conn.Close()
		n.mu.Lock()
		if n.sub == sub {
			n.sub = nil
		}
		n.mu.Unlock()
	}
}
