// Package link implements the private RPC bridge between the proxy and
// world daemons. Both sides speak the same protocol over a single
// websocket connection: either peer may originate a call, and every call
// receives exactly one reply.
package link

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/porchlightgames/titandawn/internal/logger"
)

// ErrLinkClosed is returned for calls issued, or still in flight, after
// the underlying connection goes away.
var ErrLinkClosed = errors.New("link: connection closed")

// ErrNotConnected is returned when a call is attempted before the remote
// peer has connected, or while a reconnect is in progress.
var ErrNotConnected = errors.New("link: peer not connected")

// HandlerFunc services one inbound call. The returned value is marshaled
// as the reply payload; a returned error is sent to the caller as a
// string and surfaced there as a RemoteError.
type HandlerFunc func(payload json.RawMessage) (any, error)

// RemoteError wraps an error string reported by the other daemon.
type RemoteError struct {
	Cmd     string
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("link: remote error from %q: %s", e.Cmd, e.Message)
}

const (
	kindCall  = "call"
	kindReply = "reply"
)

// envelope is the wire format. Calls carry cmd and payload; replies
// carry payload or error, matched to the call by id.
type envelope struct {
	ID      uint64          `json:"id"`
	Kind    string          `json:"kind"`
	Cmd     string          `json:"cmd,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// Peer wraps one websocket connection and multiplexes calls in both
// directions over it. Inbound calls are handled one at a time, in
// arrival order, on a dedicated dispatch goroutine so that handlers may
// themselves issue calls back over the same connection.
type Peer struct {
	conn    *websocket.Conn
	timeout time.Duration

	handlers map[string]HandlerFunc

	writeMu sync.Mutex // Serializes writes to the websocket

	mu      sync.Mutex
	nextID  uint64
	pending map[uint64]chan *envelope

	inbound   chan *envelope
	closed    chan struct{}
	closeOnce sync.Once
	onClose   func()
}

// NewPeer wraps an established websocket connection. The handler map
// services inbound calls; timeout bounds outbound round-trips. onClose,
// if non-nil, runs once when the connection dies for any reason.
func NewPeer(conn *websocket.Conn, timeout time.Duration, handlers map[string]HandlerFunc, onClose func()) *Peer {
	p := &Peer{
		conn:     conn,
		timeout:  timeout,
		handlers: handlers,
		pending:  make(map[uint64]chan *envelope),
		inbound:  make(chan *envelope, 64),
		closed:   make(chan struct{}),
		onClose:  onClose,
	}

	go p.readLoop()
	go p.dispatchLoop()

	return p
}

// Call sends cmd with the given payload and waits for the reply,
// unmarshaling it into result when result is non-nil. It fails with
// ErrLinkClosed if the connection drops while waiting.
func (p *Peer) Call(ctx context.Context, cmd string, payload any, result any) error {
	select {
	case <-p.closed:
		return ErrLinkClosed
	default:
	}

	var data json.RawMessage
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("link: marshaling %q payload: %w", cmd, err)
		}
		data = encoded
	}

	p.mu.Lock()
	p.nextID++
	id := p.nextID
	replyCh := make(chan *envelope, 1)
	p.pending[id] = replyCh
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		delete(p.pending, id)
		p.mu.Unlock()
	}()

	err := p.write(&envelope{ID: id, Kind: kindCall, Cmd: cmd, Payload: data})
	if err != nil {
		p.close()
		return ErrLinkClosed
	}

	timer := time.NewTimer(p.timeout)
	defer timer.Stop()

	select {
	case reply := <-replyCh:
		if reply.Error != "" {
			return &RemoteError{Cmd: cmd, Message: reply.Error}
		}
		if result != nil {
			if err := json.Unmarshal(reply.Payload, result); err != nil {
				return fmt.Errorf("link: unmarshaling %q reply: %w", cmd, err)
			}
		}
		return nil
	case <-p.closed:
		return ErrLinkClosed
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return fmt.Errorf("link: call %q timed out after %s", cmd, p.timeout)
	}
}

// Close tears the connection down, failing all in-flight calls.
func (p *Peer) Close() {
	p.close()
}

// Done is closed once the connection is gone.
func (p *Peer) Done() <-chan struct{} {
	return p.closed
}

func (p *Peer) write(env *envelope) error {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	return p.conn.WriteJSON(env)
}

func (p *Peer) close() {
	p.closeOnce.Do(func() {
		close(p.closed)
		p.conn.Close()

		// Pending callers are woken by the closed channel; dropping the
		// map just lets late replies fall on the floor.
		p.mu.Lock()
		p.pending = make(map[uint64]chan *envelope)
		p.mu.Unlock()

		if p.onClose != nil {
			p.onClose()
		}
	})
}

func (p *Peer) readLoop() {
	defer p.close()

	for {
		var env envelope
		if err := p.conn.ReadJSON(&env); err != nil {
			select {
			case <-p.closed:
			default:
				logger.Info("Link connection lost", "error", err)
			}
			return
		}

		switch env.Kind {
		case kindReply:
			p.mu.Lock()
			replyCh, ok := p.pending[env.ID]
			p.mu.Unlock()
			if ok {
				replyCh <- &env
			}
		case kindCall:
			select {
			case p.inbound <- &env:
			case <-p.closed:
				return
			}
		default:
			logger.Warning("Link peer sent unknown envelope kind", "kind", env.Kind)
		}
	}
}

func (p *Peer) dispatchLoop() {
	for {
		select {
		case env := <-p.inbound:
			p.handleCall(env)
		case <-p.closed:
			return
		}
	}
}

func (p *Peer) handleCall(env *envelope) {
	reply := &envelope{ID: env.ID, Kind: kindReply}

	handler, ok := p.handlers[env.Cmd]
	if !ok {
		reply.Error = fmt.Sprintf("unknown command %q", env.Cmd)
	} else if result, err := handler(env.Payload); err != nil {
		reply.Error = err.Error()
	} else if result != nil {
		encoded, err := json.Marshal(result)
		if err != nil {
			reply.Error = fmt.Sprintf("marshaling reply: %s", err)
		} else {
			reply.Payload = encoded
		}
	}

	if err := p.write(reply); err != nil {
		p.close()
	}
}
