package game_test

import (
	"bufio"
	"fmt"
	"net"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/porchlightgames/titandawn/internal/config"
	"github.com/porchlightgames/titandawn/internal/database"
	"github.com/porchlightgames/titandawn/internal/game"
	"github.com/porchlightgames/titandawn/internal/proxy"
)

// testClient drives a raw telnet connection against the proxy and
// collects everything the server sends.
type testClient struct {
	conn net.Conn

	mu     sync.Mutex
	output strings.Builder
}

func dialTestClient(t *testing.T, addr string) *testClient {
	t.Helper()

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("dialing proxy: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	c := &testClient{conn: conn}
	go func() {
		reader := bufio.NewReader(conn)
		buf := make([]byte, 4096)
		for {
			n, err := reader.Read(buf)
			if n > 0 {
				c.mu.Lock()
				c.output.Write(buf[:n])
				c.mu.Unlock()
			}
			if err != nil {
				return
			}
		}
	}()
	return c
}

func (c *testClient) send(t *testing.T, line string) {
	t.Helper()
	if _, err := fmt.Fprintf(c.conn, "%s\r\n", line); err != nil {
		t.Fatalf("sending %q: %v", line, err)
	}
}

func (c *testClient) sawText(text string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return strings.Contains(c.output.String(), text)
}

func (c *testClient) expect(t *testing.T, text string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if c.sawText(text) {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	t.Fatalf("never saw %q in output:\n%s", text, c.output.String())
}

// startStack brings up a world daemon and a proxy daemon joined by a
// real link on loopback ports.
func startStack(t *testing.T) (*game.Game, *proxy.Proxy) {
	t.Helper()
	dir := t.TempDir()

	worldCfg := config.DefaultConfig()
	worldCfg.Link.ListenAddr = "127.0.0.1:0"
	worldCfg.Database.Path = filepath.Join(dir, "world.db")

	worldDB, err := database.Open(worldCfg.Database.Path)
	if err != nil {
		t.Fatalf("opening world db: %v", err)
	}
	t.Cleanup(func() { worldDB.Close() })

	world, err := game.New(worldCfg, worldDB)
	if err != nil {
		t.Fatalf("building world: %v", err)
	}
	if err := world.Start(); err != nil {
		t.Fatalf("starting world: %v", err)
	}
	t.Cleanup(world.Shutdown)

	proxyCfg := config.DefaultConfig()
	proxyCfg.Proxy.ListenAddr = "127.0.0.1:0"
	proxyCfg.Link.DialAddr = world.LinkAddr()
	proxyCfg.Database.Path = filepath.Join(dir, "proxy.db")

	proxyDB, err := database.Open(proxyCfg.Database.Path)
	if err != nil {
		t.Fatalf("opening proxy db: %v", err)
	}
	t.Cleanup(func() { proxyDB.Close() })

	p := proxy.New(proxyCfg, proxyDB)
	if err := p.Start(); err != nil {
		t.Fatalf("starting proxy: %v", err)
	}
	t.Cleanup(p.Shutdown)

	return world, p
}

func register(t *testing.T, client *testClient, username, password string) {
	t.Helper()
	client.expect(t, "Enter choice:")
	client.send(t, "c")
	client.expect(t, "Username:")
	client.send(t, username)
	client.expect(t, "Password:")
	client.send(t, password)
	client.expect(t, "Password (again):")
	client.send(t, password)
	client.expect(t, "Email (optional):")
	client.send(t, "")
	client.expect(t, "Welcome, "+username+"!")
}

func TestNewPlayerLandsInBootstrapRoom(t *testing.T) {
	_, p := startStack(t)

	client := dialTestClient(t, p.Addr())
	register(t, client, "alice", "sekrit99")

	// The connect hook forces a look at the starting room.
	client.expect(t, "And so it begins...")
}

func TestPlayersInSameRoomHearEachOther(t *testing.T) {
	_, p := startStack(t)

	alice := dialTestClient(t, p.Addr())
	register(t, alice, "alice", "sekrit99")
	alice.expect(t, "And so it begins...")

	bob := dialTestClient(t, p.Addr())
	register(t, bob, "bob", "hunter22")
	bob.expect(t, "And so it begins...")
	alice.expect(t, "bob has connected.")

	alice.send(t, "say Hello there")
	alice.expect(t, `You say, "Hello there"`)
	bob.expect(t, `alice says, "Hello there"`)

	bob.send(t, "pose waves.")
	alice.expect(t, "bob waves.")
}

func TestLoginReusesExistingPlayerObject(t *testing.T) {
	world, p := startStack(t)

	first := dialTestClient(t, p.Addr())
	register(t, first, "alice", "sekrit99")
	first.expect(t, "And so it begins...")

	first.send(t, "quit")
	first.expect(t, "Disconnecting. See you soon.")

	// Count player objects after a fresh login of the same account.
	second := dialTestClient(t, p.Addr())
	second.expect(t, "Enter choice:")
	second.send(t, "l")
	second.expect(t, "Username:")
	second.send(t, "alice")
	second.expect(t, "Password:")
	second.send(t, "sekrit99")
	second.expect(t, "And so it begins...")

	players := 0
	for range world.Store().GlobalNameSearch("alice") {
		players++
	}
	if players != 1 {
		t.Errorf("found %d objects named alice, want 1", players)
	}
}

func TestWhoAndQuit(t *testing.T) {
	_, p := startStack(t)

	client := dialTestClient(t, p.Addr())
	register(t, client, "alice", "sekrit99")
	client.expect(t, "And so it begins...")

	client.send(t, "who")
	client.expect(t, "alice")

	client.send(t, "quit")
	client.expect(t, "Disconnecting. See you soon.")

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if p.Sessions().Count() == 0 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("session still registered after quit")
}

func TestUnknownCommandGetsHuh(t *testing.T) {
	_, p := startStack(t)

	client := dialTestClient(t, p.Addr())
	register(t, client, "alice", "sekrit99")
	client.expect(t, "And so it begins...")

	client.send(t, "frobnicate")
	client.expect(t, "Huh?")
}
