package link

import (
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/porchlightgames/titandawn/internal/logger"
)

const (
	initialRedialDelay = 1 * time.Second
	maxRedialDelay     = 5 * time.Second
)

// Dialer is the proxy daemon's end of the link. It connects to the world
// daemon's link server and keeps reconnecting forever, doubling the
// retry delay up to a cap and resetting it after a successful connect.
type Dialer struct {
	addr     string
	timeout  time.Duration
	handlers map[string]HandlerFunc

	// onConnect, if set, runs after each successful (re)connect.
	onConnect func()

	mu   sync.Mutex
	peer *Peer
	stop chan struct{}
	once sync.Once
}

// NewDialer builds a link dialer that services inbound calls through the
// given proxy handler. addr is host:port of the world's link listener.
func NewDialer(addr string, timeout time.Duration, handler ProxyHandler) *Dialer {
	return &Dialer{
		addr:     addr,
		timeout:  timeout,
		handlers: proxyHandlerTable(handler),
		stop:     make(chan struct{}),
	}
}

// OnConnect registers a callback to run after every successful connect.
// Must be called before Start.
func (d *Dialer) OnConnect(fn func()) {
	d.onConnect = fn
}

// Start launches the connect loop in the background.
func (d *Dialer) Start() {
	go d.run()
}

// World returns the typed client for calling the world daemon. The
// client is valid across reconnects; calls made while disconnected fail
// with ErrNotConnected.
func (d *Dialer) World() *WorldClient {
	return &WorldClient{source: d}
}

// Connected reports whether the world peer is currently attached.
func (d *Dialer) Connected() bool {
	_, err := d.currentPeer()
	return err == nil
}

// Close stops reconnecting and drops the current peer.
func (d *Dialer) Close() {
	d.once.Do(func() {
		close(d.stop)
	})

	d.mu.Lock()
	peer := d.peer
	d.peer = nil
	d.mu.Unlock()

	if peer != nil {
		peer.Close()
	}
}

func (d *Dialer) currentPeer() (*Peer, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.peer == nil {
		return nil, ErrNotConnected
	}
	return d.peer, nil
}

func (d *Dialer) run() {
	wsURL := url.URL{Scheme: "ws", Host: d.addr, Path: "/link"}
	delay := initialRedialDelay

	for {
		select {
		case <-d.stop:
			return
		default:
		}

		conn, _, err := websocket.DefaultDialer.Dial(wsURL.String(), nil)
		if err != nil {
			logger.Info("World link unavailable, retrying", "address", d.addr, "delay", delay.String())
			select {
			case <-time.After(delay):
			case <-d.stop:
				return
			}
			delay *= 2
			if delay > maxRedialDelay {
				delay = maxRedialDelay
			}
			continue
		}

		delay = initialRedialDelay
		peer := NewPeer(conn, d.timeout, d.handlers, nil)

		d.mu.Lock()
		d.peer = peer
		d.mu.Unlock()

		logger.Info("Connected to world link", "address", d.addr)
		if d.onConnect != nil {
			d.onConnect()
		}

		select {
		case <-peer.Done():
			d.mu.Lock()
			if d.peer == peer {
				d.peer = nil
			}
			d.mu.Unlock()
		case <-d.stop:
			peer.Close()
			return
		}
	}
}
