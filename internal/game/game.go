// Package game wires the world daemon together: persistence, the object
// store, the parent registry, the command handler, and the link server
// the proxy connects to.
package game

import (
	"context"
	"errors"
	"sync"

	"github.com/porchlightgames/titandawn/internal/command"
	"github.com/porchlightgames/titandawn/internal/config"
	"github.com/porchlightgames/titandawn/internal/database"
	"github.com/porchlightgames/titandawn/internal/link"
	"github.com/porchlightgames/titandawn/internal/logger"
	"github.com/porchlightgames/titandawn/internal/object"
	"github.com/porchlightgames/titandawn/internal/parent"
	"github.com/porchlightgames/titandawn/internal/store"
)

// Version is reported by the in-game version command.
const Version = "0.1.0"

// Game is the running world daemon.
type Game struct {
	cfg     *config.Config
	db      *database.Database
	parents *parent.Registry
	svc     *object.Services
	store   *store.Store
	handler *command.Handler

	linkServer  *link.Server
	proxyClient *link.ProxyClient

	// mu serializes every mutation entry point arriving over the link,
	// keeping a single logical writer over the object store.
	mu sync.Mutex

	shutdown chan struct{}
	once     sync.Once
}

// New builds the world service and loads the object store from the
// database, bootstrapping a first room into an empty world.
func New(cfg *config.Config, db *database.Database) (*Game, error) {
	g := &Game{
		cfg:      cfg,
		db:       db,
		parents:  parent.Default(),
		svc:      &object.Services{},
		shutdown: make(chan struct{}),
	}

	g.store = store.New(db, g.parents, g.svc)
	g.handler = command.NewHandler(g, command.GlobalTable(), command.AdminTable())
	g.svc.Emitter = g
	g.svc.Commander = g.handler

	g.linkServer = link.NewServer(cfg.CallTimeout(), g)
	g.proxyClient = g.linkServer.Proxy()

	if err := g.store.Load(); err != nil {
		return nil, err
	}

	return g, nil
}

// Start begins listening for the proxy on the link address.
func (g *Game) Start() error {
	return g.linkServer.Start(g.cfg.Link.ListenAddr)
}

// LinkAddr reports the bound link listen address.
func (g *Game) LinkAddr() string {
	return g.linkServer.Addr()
}

// Shutdown stops the link server and releases the world. The process
// supervisor is expected to restart the daemon.
func (g *Game) Shutdown() {
	g.once.Do(func() {
		logger.Info("World shutting down")
		g.linkServer.Close()
		close(g.shutdown)
	})
}

// Done is closed once Shutdown has run.
func (g *Game) Done() <-chan struct{} {
	return g.shutdown
}

// Store returns the object store.
func (g *Game) Store() *store.Store {
	return g.store
}

// Parents returns the parent registry.
func (g *Game) Parents() *parent.Registry {
	return g.parents
}

// Proxy returns the command layer's handle on the proxy daemon.
func (g *Game) Proxy() command.Proxy {
	return &proxyBridge{client: g.proxyClient}
}

// Version reports the world daemon version.
func (g *Game) Version() string {
	return Version
}

// EmitToObject sends output to whatever sessions control the object.
// Output to objects nobody controls is silently dropped, as is output
// while the proxy is away.
func (g *Game) EmitToObject(id int64, message string) {
	err := g.proxyClient.EmitToObject(context.Background(), id, message)
	switch {
	case err == nil:
	case errors.Is(err, link.ErrNotConnected), errors.Is(err, link.ErrLinkClosed):
		logger.Debug("Dropped emit, proxy not connected", "object_id", id)
	default:
		logger.Warning("Emit failed", "object_id", id, "error", err)
	}
}

// SendThroughObject runs a line of player input through the named
// object's command pipeline. Part of the link's inbound surface.
func (g *Game) SendThroughObject(objectID int64, input string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	obj, err := g.store.Get(objectID)
	if err != nil {
		return err
	}

	obj.ExecuteCommand(input)
	return nil
}

// CreatePlayerObject provisions a player object for a new account and
// places it in the configured starting room.
func (g *Game) CreatePlayerObject(username string) (int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	startRoom := g.cfg.Game.NewPlayerRoom
	if _, err := g.store.Get(startRoom); err != nil {
		logger.Warning("Configured starting room does not exist", "room_id", startRoom)
	}

	obj, err := g.store.Create(parent.Player, object.Doc{
		Name:         username,
		LocationID:   startRoom,
		ControlledBy: username,
	})
	if err != nil {
		return 0, err
	}

	logger.Info("Player object created", "username", username, "object_id", obj.ID())
	return obj.ID(), nil
}

// NotifyFirstSessionConnectedOnObject fires the object's connect hook.
func (g *Game) NotifyFirstSessionConnectedOnObject(objectID int64) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	obj, err := g.store.Get(objectID)
	if err != nil {
		return err
	}

	obj.AfterSessionConnect()
	return nil
}

// TriggerAfterSessionDisconnectForObject fires the object's disconnect
// hook.
func (g *Game) TriggerAfterSessionDisconnectForObject(objectID int64) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	obj, err := g.store.Get(objectID)
	if err != nil {
		return err
	}

	obj.AfterSessionDisconnect()
	return nil
}

// proxyBridge adapts the link's proxy client to the command layer,
// which does not deal in contexts.
type proxyBridge struct {
	client *link.ProxyClient
}

func (b *proxyBridge) WhoConnected() ([]string, error) {
	return b.client.WhoConnected(context.Background())
}

func (b *proxyBridge) DisconnectSessionsOnObject(id int64) (int, error) {
	return b.client.DisconnectSessionsOnObject(context.Background(), id)
}

func (b *proxyBridge) ShutdownProxy() error {
	return b.client.ShutdownProxy(context.Background())
}
