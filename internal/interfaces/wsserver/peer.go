package wsserver

import (
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/net/websocket"
)

var (
	errPeerClosed = errors.New("connection closed")
	errQueueFull  = errors.New("outbound queue full")
)

// peer is one websocket client. Events are queued and written by a single goroutine so
// per-connection order is kept and a slow socket never blocks the sender.
type peer struct {
	id           string
	conn         *websocket.Conn
	queue        chan outboundFrame
	writeTimeout time.Duration
	log          zerolog.Logger

	flush      chan struct{}
	done       chan struct{}
	writerDone chan struct{}
	flushOnce  sync.Once
	closeOnce  sync.Once
}

func newPeer(id string, conn *websocket.Conn, buffer int, writeTimeout time.Duration, log zerolog.Logger) *peer {
	return &peer{
		id:           id,
		conn:         conn,
		queue:        make(chan outboundFrame, buffer),
		writeTimeout: writeTimeout,
		log:          log.With().Str("conn_id", id).Logger(),
		flush:        make(chan struct{}),
		done:         make(chan struct{}),
		writerDone:   make(chan struct{}),
	}
}

func (p *peer) ID() string { return p.id }

// Send queues an event without blocking.
func (p *peer) Send(event string, payload any) error {
	select {
	case <-p.done:
		return errPeerClosed
	default:
	}

	select {
	case p.queue <- outboundFrame{Event: event, Data: payload}:
		return nil
	case <-p.done:
		return errPeerClosed
	default:
		return errQueueFull
	}
}

func (p *peer) writeLoop() {
	defer close(p.writerDone)
	for {
		select {
		case frame := <-p.queue:
			if !p.write(frame) {
				return
			}
		case <-p.flush:
			for {
				select {
				case frame := <-p.queue:
					if !p.write(frame) {
						return
					}
				default:
					return
				}
			}
		case <-p.done:
			return
		}
	}
}

func (p *peer) write(frame outboundFrame) bool {
	if p.writeTimeout > 0 {
		_ = p.conn.SetWriteDeadline(time.Now().Add(p.writeTimeout))
	}
	if err := websocket.JSON.Send(p.conn, frame); err != nil {
		p.log.Debug().Err(err).Str("event", frame.Event).Msg("write failed, closing connection")
		p.close()
		return false
	}
	return true
}

// finish writes whatever is still queued, then closes the connection.
func (p *peer) finish() {
	p.flushOnce.Do(func() { close(p.flush) })
	select {
	case <-p.writerDone:
	case <-p.done:
	}
	p.close()
}

// close drops queued events and closes the connection immediately.
func (p *peer) close() {
	p.closeOnce.Do(func() {
		close(p.done)
		_ = p.conn.Close()
	})
}
