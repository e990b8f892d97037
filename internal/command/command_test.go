package command

import (
	"fmt"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/porchlightgames/titandawn/internal/database"
	"github.com/porchlightgames/titandawn/internal/object"
	"github.com/porchlightgames/titandawn/internal/parent"
	"github.com/porchlightgames/titandawn/internal/store"
)

type recordingEmitter struct {
	lines map[int64][]string
}

func newRecordingEmitter() *recordingEmitter {
	return &recordingEmitter{lines: make(map[int64][]string)}
}

func (e *recordingEmitter) EmitToObject(id int64, message string) {
	e.lines[id] = append(e.lines[id], message)
}

type fakeProxy struct {
	connected    []string
	disconnected []int64
	shutdowns    int
}

func (p *fakeProxy) WhoConnected() ([]string, error) { return p.connected, nil }

func (p *fakeProxy) DisconnectSessionsOnObject(id int64) (int, error) {
	p.disconnected = append(p.disconnected, id)
	return 1, nil
}

func (p *fakeProxy) ShutdownProxy() error {
	p.shutdowns++
	return nil
}

type testWorld struct {
	store     *store.Store
	parents   *parent.Registry
	proxy     *fakeProxy
	shutdowns int
}

func (w *testWorld) Store() *store.Store       { return w.store }
func (w *testWorld) Parents() *parent.Registry { return w.parents }
func (w *testWorld) Proxy() Proxy              { return w.proxy }
func (w *testWorld) Shutdown()                 { w.shutdowns++ }
func (w *testWorld) Version() string           { return "test" }

func newTestGame(t *testing.T) (*testWorld, *Handler, *recordingEmitter) {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "world.db"))
	if err != nil {
		t.Fatalf("database.Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })

	emitter := newRecordingEmitter()
	svc := &object.Services{Emitter: emitter}
	registry := parent.Default()
	world := &testWorld{
		store:   store.New(db, registry, svc),
		parents: registry,
		proxy:   &fakeProxy{connected: []string{"bob"}},
	}
	handler := NewHandler(world, GlobalTable(), AdminTable())
	svc.Commander = handler

	if err := world.store.Load(); err != nil {
		t.Fatalf("store.Load() error = %v", err)
	}
	return world, handler, emitter
}

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		verb      string
		args      []string
		argString string
		switches  []string
	}{
		{"bare verb", "look", "look", nil, "", nil},
		{"verb and args", "say hello there", "say", []string{"hello", "there"}, "hello there", nil},
		{"switch on verb", "@describe/internal me=gears", "@describe", []string{"me=gears"}, "me=gears", []string{"internal"}},
		{"two switches on verb", "@dig/teleport/quiet Great Hall", "@dig", []string{"Great", "Hall"}, "Great Hall", []string{"teleport", "quiet"}},
		{"slashes in speech survive", "say I am 50/50 on this", "say", []string{"I", "am", "50/50", "on", "this"}, "I am 50/50 on this", nil},
		{"slashes in args survive", "@zmo tower/raze", "@zmo", []string{"tower/raze"}, "tower/raze", nil},
		{"slashes after equals survive", "@describe me=a /strange/ scar", "@describe", []string{"me=a", "/strange/", "scar"}, "me=a /strange/ scar", nil},
		{"empty input", "   ", "", nil, "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed := Parse(tt.raw)
			if parsed.Verb != tt.verb {
				t.Errorf("Verb = %q, want %q", parsed.Verb, tt.verb)
			}
			if !reflect.DeepEqual(parsed.Args, tt.args) {
				t.Errorf("Args = %v, want %v", parsed.Args, tt.args)
			}
			if parsed.ArgString != tt.argString {
				t.Errorf("ArgString = %q, want %q", parsed.ArgString, tt.argString)
			}
			if !reflect.DeepEqual(parsed.Switches, tt.switches) {
				t.Errorf("Switches = %v, want %v", parsed.Switches, tt.switches)
			}
		})
	}
}

func TestExtractSwitches(t *testing.T) {
	arg, switches := ExtractSwitches("tower/raze")
	if arg != "tower" || !reflect.DeepEqual(switches, []string{"raze"}) {
		t.Errorf("ExtractSwitches(tower/raze) = %q, %v", arg, switches)
	}

	arg, switches = ExtractSwitches("tower")
	if arg != "tower" || switches != nil {
		t.Errorf("ExtractSwitches(tower) = %q, %v", arg, switches)
	}
}

func TestSayKeepsSlashesIntact(t *testing.T) {
	world, handler, emitter := newTestGame(t)

	player, err := world.store.Create(parent.Player, object.Doc{Name: "Bob", LocationID: 1})
	if err != nil {
		t.Fatalf("Create(player) error = %v", err)
	}

	if !handler.HandleInput(player, "say I am 50/50 on this") {
		t.Fatal("say did not match")
	}
	lines := emitter.lines[player.ID()]
	if len(lines) != 1 || lines[0] != `You say, "I am 50/50 on this"` {
		t.Errorf("say emitted %v, want the speech verbatim", lines)
	}
}

func TestHelpWorksWithoutDataFiles(t *testing.T) {
	world, handler, emitter := newTestGame(t)

	player, _ := world.store.Create(parent.Player, object.Doc{Name: "Bob", LocationID: 1})
	admin, _ := world.store.Create(parent.Admin, object.Doc{Name: "Staff", LocationID: 1})

	if !handler.HandleInput(player, "help") {
		t.Fatal("help did not match")
	}
	lines := emitter.lines[player.ID()]
	if len(lines) != 1 || !strings.Contains(lines[0], "say") {
		t.Errorf("help overview = %v, want the built-in command list", lines)
	}
	if strings.Contains(lines[0], "@dig") {
		t.Error("non-admin overview includes staff commands")
	}

	handler.HandleInput(admin, "help")
	adminLines := emitter.lines[admin.ID()]
	if len(adminLines) != 1 || !strings.Contains(adminLines[0], "@dig") {
		t.Errorf("admin overview = %v, want the staff section appended", adminLines)
	}

	emitter.lines = map[int64][]string{}
	handler.HandleInput(player, "help quit")
	lines = emitter.lines[player.ID()]
	if len(lines) != 1 || !strings.Contains(lines[0], "Disconnects you") {
		t.Errorf("help quit = %v, want the built-in topic", lines)
	}
}

func TestTableLookup(t *testing.T) {
	table := GlobalTable()

	tests := []struct {
		verb string
		want string
	}{
		{"look", "look"},
		{"LOOK", "look"},
		{"l", "look"},
		{"ex", "examine"},
		{"loo", ""},
		{"", ""},
	}
	for _, tt := range tests {
		cmd := table.Lookup(&Parsed{Verb: tt.verb})
		got := ""
		if cmd != nil {
			got = cmd.Name
		}
		if got != tt.want {
			t.Errorf("Lookup(%q) = %q, want %q", tt.verb, got, tt.want)
		}
	}
}

func TestNoMatchIsNotAnError(t *testing.T) {
	world, handler, emitter := newTestGame(t)

	player, err := world.store.Create(parent.Player, object.Doc{Name: "Bob", LocationID: 1})
	if err != nil {
		t.Fatalf("Create(player) error = %v", err)
	}

	if handler.HandleInput(player, "frobnicate wildly") {
		t.Error("HandleInput() = true for unmatched verb, want false")
	}
	if len(emitter.lines[player.ID()]) != 0 {
		t.Errorf("no-match emitted %v, want nothing (caller owns the fallback)", emitter.lines[player.ID()])
	}

	// A declared failure is a match that executed.
	if !handler.HandleInput(player, "go nowhere-at-all") {
		t.Error("HandleInput() = false for matched command with declared error")
	}
}

func TestStaffTableRequiresAdmin(t *testing.T) {
	world, handler, _ := newTestGame(t)

	player, _ := world.store.Create(parent.Player, object.Doc{Name: "Bob", LocationID: 1})
	admin, _ := world.store.Create(parent.Admin, object.Doc{Name: "Staff", LocationID: 1})

	if handler.HandleInput(player, "@dig Cellar") {
		t.Error("non-admin reached the staff table")
	}
	if !handler.HandleInput(admin, "@dig Cellar") {
		t.Error("admin did not reach the staff table")
	}
}

func TestLocalTableWinsOverGlobal(t *testing.T) {
	world, handler, _ := newTestGame(t)

	room, _ := world.store.Get(1)
	localLook := &Command{Name: "look", Func: func(World, object.Object, *Parsed) error { return nil }}
	localOnly := &Command{Name: "pull", Func: func(World, object.Object, *Parsed) error { return nil }}
	adminOnly := &Command{Name: "inspect", Func: func(World, object.Object, *Parsed) error { return nil }}
	location := &localRoom{
		Object:     room,
		table:      NewTable(localLook, localOnly),
		adminTable: NewTable(adminOnly),
	}

	player, _ := world.store.Create(parent.Player, object.Doc{Name: "Bob", LocationID: 1})
	admin, _ := world.store.Create(parent.Admin, object.Doc{Name: "Staff", LocationID: 1})

	invoker := &placedInvoker{Object: player, location: location}
	if got := handler.matchCommand(invoker, Parse("look")); got != localLook {
		t.Errorf("matchCommand(look) = %v, want the local definition", got)
	}
	if got := handler.matchCommand(invoker, Parse("pull")); got != localOnly {
		t.Error("local-only verb did not resolve")
	}
	if got := handler.matchCommand(invoker, Parse("inspect")); got != nil {
		t.Error("non-admin resolved a local admin verb")
	}

	adminInvoker := &placedInvoker{Object: admin, location: location}
	if got := handler.matchCommand(adminInvoker, Parse("inspect")); got != adminOnly {
		t.Error("admin did not resolve the local admin verb")
	}
}

type localRoom struct {
	object.Object
	table      *Table
	adminTable *Table
}

func (r *localRoom) LocalCommandTable() *Table      { return r.table }
func (r *localRoom) LocalAdminCommandTable() *Table { return r.adminTable }

type placedInvoker struct {
	object.Object
	location object.Object
}

func (p *placedInvoker) Location() object.Object { return p.location }

func TestOpenExitAndWalkThrough(t *testing.T) {
	world, handler, _ := newTestGame(t)

	admin, err := world.store.Create(parent.Admin, object.Doc{Name: "Staff", LocationID: 1})
	if err != nil {
		t.Fatalf("Create(admin) error = %v", err)
	}

	if !handler.HandleInput(admin, "@dig Room B") {
		t.Fatal("@dig did not match")
	}
	roomB, err := world.store.Get(3)
	if err != nil {
		t.Fatalf("room B missing: %v", err)
	}
	if roomB.Name() != "Room B" {
		t.Fatalf("room B name = %q", roomB.Name())
	}

	if !handler.HandleInput(admin, fmt.Sprintf("@open north Door=#%d", roomB.ID())) {
		t.Fatal("@open did not match")
	}

	// The bare direction resolves through the exit-alias short circuit.
	if !handler.HandleInput(admin, "north") {
		t.Fatal("typing the exit alias did not match")
	}
	if admin.LocationID() != roomB.ID() {
		t.Errorf("admin location = %d, want %d", admin.LocationID(), roomB.ID())
	}

	room, _ := world.store.Get(1)
	for _, obj := range world.store.ContentsOf(room) {
		if obj.ID() == admin.ID() {
			t.Error("admin still present in origin room contents")
		}
	}
	found := false
	for _, obj := range world.store.ContentsOf(roomB) {
		if obj.ID() == admin.ID() {
			found = true
		}
	}
	if !found {
		t.Error("admin absent from destination room contents")
	}
}

func TestDeclaredAndUnexpectedErrors(t *testing.T) {
	world, _, emitter := newTestGame(t)

	player, _ := world.store.Create(parent.Player, object.Doc{Name: "Bob", LocationID: 1})

	declared := &Command{Name: "fail", Func: func(World, object.Object, *Parsed) error {
		return NewError("You cannot do that.")
	}}
	broken := &Command{Name: "break", Func: func(World, object.Object, *Parsed) error {
		return fmt.Errorf("nil dereference in widget %d", 7)
	}}
	handler := NewHandler(world, NewTable(declared, broken), AdminTable())

	handler.HandleInput(player, "fail")
	lines := emitter.lines[player.ID()]
	if len(lines) != 1 || lines[0] != "You cannot do that." {
		t.Errorf("declared error emitted %v, want only its message", lines)
	}

	emitter.lines = map[int64][]string{}
	handler.HandleInput(player, "break")
	lines = emitter.lines[player.ID()]
	if len(lines) != 2 {
		t.Fatalf("unexpected error emitted %d lines, want notice plus detail", len(lines))
	}
	if lines[0] != "ERROR: A critical error has occurred. Please notify the staff." {
		t.Errorf("first line = %q", lines[0])
	}
	if lines[1] != "nil dereference in widget 7" {
		t.Errorf("detail line = %q", lines[1])
	}
}

func TestPanicInCommandIsContained(t *testing.T) {
	world, _, emitter := newTestGame(t)

	player, _ := world.store.Create(parent.Player, object.Doc{Name: "Bob", LocationID: 1})

	explode := &Command{Name: "explode", Func: func(World, object.Object, *Parsed) error {
		panic("index out of range")
	}}
	handler := NewHandler(world, NewTable(explode), AdminTable())

	if !handler.HandleInput(player, "explode") {
		t.Fatal("panicking command did not match")
	}

	lines := emitter.lines[player.ID()]
	if len(lines) != 2 {
		t.Fatalf("panic emitted %d lines, want notice plus detail", len(lines))
	}
	if lines[0] != "ERROR: A critical error has occurred. Please notify the staff." {
		t.Errorf("first line = %q", lines[0])
	}
	if !strings.Contains(lines[1], "index out of range") {
		t.Errorf("detail line = %q, want the panic value", lines[1])
	}

	// The handler survives for the next command.
	if handler.HandleInput(player, "frobnicate") {
		t.Error("unmatched verb resolved after a panic")
	}
}

func TestZmoSummaryAndRaze(t *testing.T) {
	world, handler, emitter := newTestGame(t)

	admin, _ := world.store.Create(parent.Admin, object.Doc{Name: "Staff", LocationID: 1})
	master, _ := world.store.Create(parent.Thing, object.Doc{Name: "tower", LocationID: 1})
	world.store.Create(parent.Room, object.Doc{Name: "floor one", ZoneID: master.ID()})
	world.store.Create(parent.Room, object.Doc{Name: "floor two", ZoneID: master.ID()})
	world.store.Create(parent.Thing, object.Doc{Name: "furniture", ZoneID: master.ID(), LocationID: 1})

	if !handler.HandleInput(admin, "@zmo tower") {
		t.Fatal("@zmo summary did not match")
	}
	lines := emitter.lines[admin.ID()]
	if len(lines) == 0 {
		t.Fatal("summary emitted nothing")
	}
	summary := lines[len(lines)-1]
	for _, want := range []string{"room: 2", "thing: 1", "exit: 0", "player: 0"} {
		if !strings.Contains(summary, want) {
			t.Errorf("summary missing %q:\n%s", want, summary)
		}
	}

	emitter.lines = map[int64][]string{}
	if !handler.HandleInput(admin, "@zmo tower/raze") {
		t.Fatal("@zmo/raze did not match")
	}
	lines = emitter.lines[admin.ID()]
	if len(lines) == 0 || !strings.Contains(lines[len(lines)-1], "3 member object(s)") {
		t.Errorf("raze report = %v, want member-only count 3", lines)
	}
	if _, err := world.store.Get(master.ID()); err == nil {
		t.Error("zone master survived the raze")
	}
}
