// Package proxy implements the client-facing daemon. It owns the telnet
// listener and the account database, authenticates connections, and
// pipes player input over the link to the world daemon. Because the
// proxy holds the sessions, the world can restart without players
// losing their connections.
package proxy

import (
	"context"
	"errors"
	"net"
	"strings"
	"sync"

	"github.com/porchlightgames/titandawn/internal/config"
	"github.com/porchlightgames/titandawn/internal/database"
	"github.com/porchlightgames/titandawn/internal/link"
	"github.com/porchlightgames/titandawn/internal/logger"
	"github.com/porchlightgames/titandawn/internal/session"
)

// Proxy is the running proxy daemon.
type Proxy struct {
	cfg      *config.Config
	db       *database.Database
	sessions *session.Manager
	dialer   *link.Dialer
	world    *link.WorldClient

	listener net.Listener
	shutdown chan struct{}
	once     sync.Once
}

// New wires a proxy from its configuration and account database. Call
// Start to begin serving.
func New(cfg *config.Config, db *database.Database) *Proxy {
	p := &Proxy{
		cfg:      cfg,
		db:       db,
		shutdown: make(chan struct{}),
	}
	p.dialer = link.NewDialer(cfg.Link.DialAddr, cfg.CallTimeout(), p)
	p.world = p.dialer.World()
	p.sessions = session.NewManager(p.world)
	return p
}

// Start connects to the world link and begins accepting telnet clients.
func (p *Proxy) Start() error {
	p.dialer.Start()

	listener, err := net.Listen("tcp", p.cfg.Proxy.ListenAddr)
	if err != nil {
		return err
	}
	p.listener = listener

	p.sessions.StartIdleReaper(p.cfg.IdleTimeout(), p.shutdown)

	go p.acceptLoop()

	logger.Info("Proxy listening", "address", listener.Addr().String())
	return nil
}

// Addr reports the bound telnet listen address.
func (p *Proxy) Addr() string {
	if p.listener == nil {
		return ""
	}
	return p.listener.Addr().String()
}

// Shutdown stops the listener, drops all sessions, and closes the link.
func (p *Proxy) Shutdown() {
	p.once.Do(func() {
		logger.Info("Proxy shutting down")
		close(p.shutdown)
		if p.listener != nil {
			p.listener.Close()
		}
		p.sessions.CloseAll()
		p.dialer.Close()
	})
}

// Done is closed once Shutdown has run.
func (p *Proxy) Done() <-chan struct{} {
	return p.shutdown
}

// Sessions exposes the session manager.
func (p *Proxy) Sessions() *session.Manager {
	return p.sessions
}

func (p *Proxy) acceptLoop() {
	for {
		conn, err := p.listener.Accept()
		if err != nil {
			select {
			case <-p.shutdown:
				return
			default:
				logger.Error("Accept failed", "error", err)
				continue
			}
		}
		go p.handleConnection(conn)
	}
}

func (p *Proxy) handleConnection(conn net.Conn) {
	client := NewTelnetClient(conn)
	defer client.Close()

	logger.Info("Client connected", "remote", client.RemoteAddr())

	result, err := p.authenticate(client)
	if err != nil {
		logger.Info("Client left before authenticating", "remote", client.RemoteAddr(), "reason", err)
		return
	}

	logger.Info("Client authenticated",
		"remote", client.RemoteAddr(),
		"username", result.Username,
		"object_id", result.ObjectID)

	sess := p.sessions.Bind(client, result.Username, result.ObjectID)
	defer p.sessions.Unbind(sess)

	for {
		line, err := client.ReadLine()
		if err != nil {
			return
		}
		sess.Touch()

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		err = p.world.SendThroughObject(context.Background(), result.ObjectID, line)
		switch {
		case err == nil:
		case errors.Is(err, link.ErrNotConnected), errors.Is(err, link.ErrLinkClosed):
			client.WriteLine(worldUnavailableMessage())
		default:
			logger.Error("Input forwarding failed",
				"username", result.Username,
				"object_id", result.ObjectID,
				"error", err)
			client.WriteLine("Something went wrong with that command.")
		}
	}
}

// EmitToObject delivers world output to the sessions controlling an
// object. Part of the link's inbound command surface.
func (p *Proxy) EmitToObject(objectID int64, message string) error {
	p.sessions.EmitToObject(objectID, message)
	return nil
}

// WhoConnected reports the usernames of all live sessions.
func (p *Proxy) WhoConnected() ([]string, error) {
	return p.sessions.WhoConnected(), nil
}

// DisconnectSessionsOnObject force-closes every session controlling an
// object.
func (p *Proxy) DisconnectSessionsOnObject(objectID int64) (int, error) {
	return p.sessions.DisconnectSessionsOnObject(objectID), nil
}

// ShutdownProxy exits the proxy at the world's request. The shutdown
// runs after the reply is written so the world gets its answer.
func (p *Proxy) ShutdownProxy() error {
	go p.Shutdown()
	return nil
}
