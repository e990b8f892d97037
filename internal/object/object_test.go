package object_test

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/porchlightgames/titandawn/internal/attr"
	"github.com/porchlightgames/titandawn/internal/database"
	"github.com/porchlightgames/titandawn/internal/object"
	"github.com/porchlightgames/titandawn/internal/parent"
	"github.com/porchlightgames/titandawn/internal/store"
)

type recordingEmitter struct {
	lines map[int64][]string
}

func (e *recordingEmitter) EmitToObject(id int64, message string) {
	e.lines[id] = append(e.lines[id], message)
}

type recordingCommander struct {
	executed []string
}

func (c *recordingCommander) HandleInput(invoker object.Object, raw string) bool {
	c.executed = append(c.executed, fmt.Sprintf("%d:%s", invoker.ID(), raw))
	return true
}

func newWorld(t *testing.T, registry *parent.Registry) (*store.Store, *recordingEmitter, *recordingCommander) {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "world.db"))
	if err != nil {
		t.Fatalf("database.Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })

	emitter := &recordingEmitter{lines: make(map[int64][]string)}
	commander := &recordingCommander{}
	svc := &object.Services{Emitter: emitter, Commander: commander}
	s := store.New(db, registry, svc)
	if err := s.Load(); err != nil {
		t.Fatalf("store.Load() error = %v", err)
	}
	return s, emitter, commander
}

// eventRoom records hook invocations along with the actor's location
// at the time, so the hook ordering around the move can be asserted.
type eventRoom struct {
	object.Base
	log *[]string
}

func eventRoomCtor(log *[]string) parent.Constructor {
	return func(svc *object.Services, doc object.Doc) object.Object {
		r := &eventRoom{log: log}
		r.Init(svc, doc, object.TypeRoom, r)
		return r
	}
}

func (r *eventRoom) record(event string, actor object.Object) {
	*r.log = append(*r.log, fmt.Sprintf("%s %s@%d", event, r.Name(), actor.LocationID()))
}

func (r *eventRoom) BeforeObjectLeaves(actor object.Object) { r.record("beforeLeave", actor) }
func (r *eventRoom) AfterObjectLeaves(actor object.Object)  { r.record("afterLeave", actor) }
func (r *eventRoom) BeforeObjectEnters(actor object.Object) { r.record("beforeEnter", actor) }
func (r *eventRoom) AfterObjectEnters(actor object.Object)  { r.record("afterEnter", actor) }

func TestMoveToHookOrder(t *testing.T) {
	var log []string
	registry := parent.Default()
	if err := registry.Register("eventroom", eventRoomCtor(&log)); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	s, _, commander := newWorld(t, registry)

	roomA, _ := s.Create("eventroom", object.Doc{Name: "A"})
	roomB, _ := s.Create("eventroom", object.Doc{Name: "B"})
	mover, _ := s.Create(parent.Thing, object.Doc{Name: "crate", LocationID: roomA.ID()})

	if err := mover.MoveTo(roomB, true); err != nil {
		t.Fatalf("MoveTo() error = %v", err)
	}

	// Both before hooks see pre-move state, both after hooks see
	// post-move state.
	want := []string{
		fmt.Sprintf("beforeLeave A@%d", roomA.ID()),
		fmt.Sprintf("beforeEnter B@%d", roomA.ID()),
		fmt.Sprintf("afterLeave A@%d", roomB.ID()),
		fmt.Sprintf("afterEnter B@%d", roomB.ID()),
	}
	if len(log) != len(want) {
		t.Fatalf("hook log = %v, want %v", log, want)
	}
	for i := range want {
		if log[i] != want[i] {
			t.Errorf("hook %d = %q, want %q", i, log[i], want[i])
		}
	}

	if mover.LocationID() != roomB.ID() {
		t.Errorf("mover location = %d, want %d", mover.LocationID(), roomB.ID())
	}

	// forceLook re-runs a look as the moved object.
	lookFound := false
	for _, executed := range commander.executed {
		if executed == fmt.Sprintf("%d:look", mover.ID()) {
			lookFound = true
		}
	}
	if !lookFound {
		t.Errorf("no forced look recorded: %v", commander.executed)
	}
}

func TestMoveToUpdatesContents(t *testing.T) {
	s, _, _ := newWorld(t, parent.Default())

	roomB, _ := s.Create(parent.Room, object.Doc{Name: "B"})
	mover, _ := s.Create(parent.Thing, object.Doc{Name: "crate", LocationID: 1})
	roomA, _ := s.Get(1)

	if err := mover.MoveTo(roomB, false); err != nil {
		t.Fatalf("MoveTo() error = %v", err)
	}

	for _, obj := range s.ContentsOf(roomA) {
		if obj.ID() == mover.ID() {
			t.Error("mover still listed in origin contents")
		}
	}
	present := false
	for _, obj := range s.ContentsOf(roomB) {
		if obj.ID() == mover.ID() {
			present = true
		}
	}
	if !present {
		t.Error("mover absent from destination contents")
	}
}

func TestRoomsNeverHaveALocation(t *testing.T) {
	s, _, _ := newWorld(t, parent.Default())

	room, _ := s.Create(parent.Room, object.Doc{Name: "attic"})
	room.SetLocationID(1)
	if room.LocationID() != 0 {
		t.Errorf("room location = %d after SetLocationID, want 0", room.LocationID())
	}
}

func TestContextualSearchIDVisibility(t *testing.T) {
	s, _, _ := newWorld(t, parent.Default())

	player, _ := s.Create(parent.Player, object.Doc{Name: "Bob", LocationID: 1})
	admin, _ := s.Create(parent.Admin, object.Doc{Name: "Staff", LocationID: 1})
	nearThing, _ := s.Create(parent.Thing, object.Doc{Name: "lamp", LocationID: 1})
	farRoom, _ := s.Create(parent.Room, object.Doc{Name: "vault"})
	farThing, _ := s.Create(parent.Thing, object.Doc{Name: "gold", LocationID: farRoom.ID()})

	ref := func(obj object.Object) string { return fmt.Sprintf("#%d", obj.ID()) }

	// Non-admins resolve co-located objects and their own location.
	if got := player.ContextualSearch(ref(nearThing)); got == nil || got.ID() != nearThing.ID() {
		t.Error("non-admin failed to resolve a co-located id")
	}
	if got := player.ContextualSearch("#1"); got == nil || got.ID() != 1 {
		t.Error("non-admin failed to resolve their own location's id")
	}

	// Anything elsewhere yields no match even though the id exists.
	if got := player.ContextualSearch(ref(farThing)); got != nil {
		t.Errorf("non-admin resolved %q in another room", ref(farThing))
	}
	if got := player.ContextualSearch(ref(farRoom)); got != nil {
		t.Error("non-admin resolved a room they are not in")
	}

	// Admins resolve everything.
	if got := admin.ContextualSearch(ref(farThing)); got == nil || got.ID() != farThing.ID() {
		t.Error("admin failed to resolve a remote id")
	}

	// Unknown ids are a clean no-match for admins too.
	if got := admin.ContextualSearch("#999"); got != nil {
		t.Error("resolved a nonexistent id")
	}
}

func TestContextualSearchKeywordsAndFuzzy(t *testing.T) {
	s, _, _ := newWorld(t, parent.Default())

	player, _ := s.Create(parent.Player, object.Doc{Name: "Bob", LocationID: 1})
	room, _ := s.Get(1)

	if got := player.ContextualSearch("me"); got == nil || got.ID() != player.ID() {
		t.Error(`"me" did not resolve to self`)
	}
	if got := player.ContextualSearch("HERE"); got == nil || got.ID() != room.ID() {
		t.Error(`"here" did not resolve to the location`)
	}

	// An exact alias always beats a fuzzy name match, even a perfect
	// one found earlier.
	s.Create(parent.Thing, object.Doc{Name: "lantern", LocationID: 1})
	aliased, _ := s.Create(parent.Thing, object.Doc{
		Name: "teapot", Aliases: []string{"lantern"}, LocationID: 1,
	})
	if got := player.ContextualSearch("lantern"); got == nil || got.ID() != aliased.ID() {
		t.Error("alias match lost to a fuzzy name match")
	}

	// Fuzzy falls back to the invoker's own contents.
	pocketed, _ := s.Create(parent.Thing, object.Doc{Name: "brass compass", LocationID: player.ID()})
	if got := player.ContextualSearch("compass"); got == nil || got.ID() != pocketed.ID() {
		t.Error("inventory fallback failed")
	}

	if got := player.ContextualSearch("xyzzy"); got != nil {
		t.Errorf("nonsense resolved to %q", got.Name())
	}
}

func TestAppearance(t *testing.T) {
	s, _, _ := newWorld(t, parent.Default())

	room, _ := s.Get(1)
	room.SetDescription("A bare room.")
	room.SetInternalDescription("Cozy from the inside.")

	player, _ := s.Create(parent.Player, object.Doc{Name: "Bob", LocationID: 1})
	admin, _ := s.Create(parent.Admin, object.Doc{Name: "Staff", LocationID: 1})
	s.Create(parent.Thing, object.Doc{Name: "lamp", LocationID: 1})
	s.Create(parent.Exit, object.Doc{Name: "Door", Aliases: []string{"north", "n"}, LocationID: 1})

	view := player.Location().Appearance(player)

	if !strings.Contains(view, "Cozy from the inside.") {
		t.Error("internal description not used for a viewer inside")
	}
	if !strings.Contains(view, "<north>") {
		t.Error("exit not rendered with its primary alias")
	}
	if !strings.Contains(view, "lamp") {
		t.Error("contents listing missing the lamp")
	}
	if strings.Contains(view, "(#") {
		t.Error("non-admin view carries id tags")
	}

	// The viewer is excluded from the listing; other occupants are not.
	if !strings.Contains(view, "Staff") {
		t.Error("other occupant missing from the listing")
	}
	occurrences := strings.Count(view, "Bob")
	if occurrences != 0 {
		t.Errorf("viewer appears %d times in their own room view", occurrences)
	}

	adminView := admin.Location().Appearance(admin)
	if !strings.Contains(adminView, "(#1R)") {
		t.Errorf("admin view missing room id tag:\n%s", adminView)
	}
	if !strings.Contains(adminView, fmt.Sprintf("(#%dP)", player.ID())) {
		t.Error("admin view missing player id tag")
	}
}

func TestExamineAppearance(t *testing.T) {
	s, _, _ := newWorld(t, parent.Default())

	admin, _ := s.Create(parent.Admin, object.Doc{Name: "Staff", LocationID: 1})
	thing, _ := s.Create(parent.Thing, object.Doc{Name: "idol", LocationID: 1})
	thing.Attributes().Set("weight", attr.Number(12))

	view := thing.ExamineAppearance(admin)
	if !strings.Contains(view, "parent: thing") {
		t.Error("examine missing core parent field")
	}
	if !strings.Contains(view, "location_id: #1") {
		t.Error("examine missing location reference")
	}
	if !strings.Contains(view, "### EXTRA ATTRIBUTES ###") || !strings.Contains(view, "weight: 12") {
		t.Errorf("examine missing extra attributes:\n%s", view)
	}
}

func TestEmitToContentsExcludes(t *testing.T) {
	s, emitter, _ := newWorld(t, parent.Default())

	room, _ := s.Get(1)
	speaker, _ := s.Create(parent.Player, object.Doc{Name: "Bob", LocationID: 1})
	listener, _ := s.Create(parent.Player, object.Doc{Name: "Alice", LocationID: 1})

	room.EmitToContents("Bob waves.", speaker)

	if len(emitter.lines[speaker.ID()]) != 0 {
		t.Error("excluded object received the emit")
	}
	if len(emitter.lines[listener.ID()]) != 1 {
		t.Errorf("listener received %d lines, want 1", len(emitter.lines[listener.ID()]))
	}
}
