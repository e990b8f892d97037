package link

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/porchlightgames/titandawn/internal/logger"
)

// Server is the world daemon's end of the link. It accepts the proxy's
// websocket connection and keeps at most one peer alive; a fresh
// connection from a restarted proxy replaces the old one.
type Server struct {
	timeout  time.Duration
	handlers map[string]HandlerFunc

	httpServer *http.Server
	listener   net.Listener

	mu   sync.Mutex
	peer *Peer
}

// NewServer builds a link server that services inbound calls through
// the given world handler.
func NewServer(timeout time.Duration, handler WorldHandler) *Server {
	return &Server{
		timeout:  timeout,
		handlers: worldHandlerTable(handler),
	}
}

// Start begins listening on addr and serving in the background. It
// returns once the listener is bound so callers know the port is live.
func (s *Server) Start(addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.listener = listener

	mux := http.NewServeMux()
	mux.HandleFunc("/link", s.handleUpgrade)
	s.httpServer = &http.Server{Handler: mux}

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			logger.Error("Link server stopped", "error", err)
		}
	}()

	logger.Info("Link server listening", "address", listener.Addr().String())
	return nil
}

// Addr reports the bound listen address. Useful when addr was ":0".
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Proxy returns the typed client for calling the proxy daemon. The
// client is valid across proxy reconnects.
func (s *Server) Proxy() *ProxyClient {
	return &ProxyClient{source: s}
}

// Connected reports whether a proxy peer is currently attached.
func (s *Server) Connected() bool {
	_, err := s.currentPeer()
	return err == nil
}

// Close shuts the listener down and drops the current peer.
func (s *Server) Close() {
	if s.httpServer != nil {
		s.httpServer.Close()
	}

	s.mu.Lock()
	peer := s.peer
	s.peer = nil
	s.mu.Unlock()

	if peer != nil {
		peer.Close()
	}
}

func (s *Server) currentPeer() (*Peer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.peer == nil {
		return nil, ErrNotConnected
	}
	return s.peer, nil
}

func (s *Server) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			// The link listens on a private interface; the proxy is the
			// only expected client.
			return true
		},
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("Link upgrade failed", "error", err, "remote", r.RemoteAddr)
		return
	}

	peer := NewPeer(conn, s.timeout, s.handlers, func() {
		s.mu.Lock()
		if s.peer != nil && s.peer.conn == conn {
			s.peer = nil
		}
		s.mu.Unlock()
		logger.Info("Proxy disconnected from link")
	})

	s.mu.Lock()
	old := s.peer
	s.peer = peer
	s.mu.Unlock()

	if old != nil {
		logger.Warning("Replacing existing proxy link connection")
		old.Close()
	}

	logger.Info("Proxy connected to link", "remote", conn.RemoteAddr().String())
}
