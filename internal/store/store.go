// Package store is the in-memory authoritative registry of all world
// objects, keyed by dbref. It owns object lifecycle and the relational
// queries the rest of the game asks about the object graph.
package store

import (
	"fmt"
	"iter"
	"sort"
	"strings"

	"github.com/porchlightgames/titandawn/internal/database"
	"github.com/porchlightgames/titandawn/internal/fuzzy"
	"github.com/porchlightgames/titandawn/internal/logger"
	"github.com/porchlightgames/titandawn/internal/object"
	"github.com/porchlightgames/titandawn/internal/parent"
)

// Name given to the room synthesized on a brand new database.
const bootstrapRoomName = "And so it begins..."

// InvalidObjectIDError is returned when a dbref resolves to nothing.
type InvalidObjectIDError struct {
	ID int64
}

func (e *InvalidObjectIDError) Error() string {
	return fmt.Sprintf("invalid object id: #%d", e.ID)
}

// ZoneMembersError is returned when destroying an object that is still
// some other object's zone master. The zone must be emptied or razed
// first.
type ZoneMembersError struct {
	ID      int64
	Members int
}

func (e *ZoneMembersError) Error() string {
	return fmt.Sprintf("object #%d still has %d zone member(s)", e.ID, e.Members)
}

// Persistence is what the store needs from the database layer.
type Persistence interface {
	LoadObjects() ([]database.ObjectDoc, error)
	LoadObject(id int64) (database.ObjectDoc, error)
	SaveObject(doc database.ObjectDoc) error
	DeleteObject(id int64) error
}

// Store keeps every live object in memory. It is not internally
// locked; the world loop serializes all calls into it.
type Store struct {
	db      Persistence
	parents *parent.Registry
	svc     *object.Services

	objects map[int64]object.Object

	// Next dbref to assign. Strictly increasing, never reused, even
	// across destroy/create cycles.
	nextID int64
}

// New creates a store and registers it on svc so objects constructed
// through it can reach back into the registry.
func New(db Persistence, parents *parent.Registry, svc *object.Services) *Store {
	s := &Store{
		db:      db,
		parents: parents,
		svc:     svc,
		objects: make(map[int64]object.Object),
		nextID:  1,
	}
	svc.Store = s
	return s
}

// Load brings every persisted object into memory. A brand new database
// gets exactly one bootstrap room. An object that fails to load is
// logged and skipped; it never aborts the rest of the load.
func (s *Store) Load() error {
	docs, err := s.db.LoadObjects()
	if err != nil {
		return fmt.Errorf("failed to load world: %w", err)
	}

	if len(docs) == 0 {
		_, err := s.Create(parent.Room, object.Doc{Name: bootstrapRoomName})
		if err != nil {
			return fmt.Errorf("failed to create bootstrap room: %w", err)
		}
		return nil
	}

	for _, doc := range docs {
		if doc.ID >= s.nextID {
			s.nextID = doc.ID + 1
		}
		if _, err := s.loadOne(doc); err != nil {
			logger.Error("Failed to load object", "id", doc.ID, "error", err)
		}
	}

	logger.Info("World loaded", "objects", len(s.objects), "next_id", s.nextID)
	return nil
}

func (s *Store) loadOne(row database.ObjectDoc) (object.Object, error) {
	ctor, err := s.parents.Resolve(row.Parent)
	if err != nil {
		return nil, fmt.Errorf("object #%d: %w", row.ID, err)
	}

	doc, err := object.UnmarshalDoc(row.ID, row.Parent, row.Data)
	if err != nil {
		return nil, err
	}

	obj := ctor(s.svc, doc)
	s.objects[row.ID] = obj
	return obj, nil
}

// Create allocates the next dbref, instantiates the object through the
// parent registry, persists it, and caches it.
func (s *Store) Create(parentName string, doc object.Doc) (object.Object, error) {
	ctor, err := s.parents.Resolve(parentName)
	if err != nil {
		return nil, err
	}

	doc.ID = s.nextID
	doc.Parent = parentName
	obj := ctor(s.svc, doc)

	if err := s.Save(obj); err != nil {
		return nil, err
	}
	s.nextID++
	return obj, nil
}

// Get returns the live object for a dbref.
func (s *Store) Get(id int64) (object.Object, error) {
	obj, ok := s.objects[id]
	if !ok {
		return nil, &InvalidObjectIDError{ID: id}
	}
	return obj, nil
}

// Save persists the object's current in-memory state and refreshes the
// cache entry.
func (s *Store) Save(obj object.Object) error {
	data, err := obj.Doc().MarshalData()
	if err != nil {
		return err
	}
	row := database.ObjectDoc{ID: obj.ID(), Parent: obj.Parent(), Data: data}
	if err := s.db.SaveObject(row); err != nil {
		return err
	}
	s.objects[obj.ID()] = obj
	return nil
}

// Destroy removes an object from the world. Every exit linked to it is
// destroyed first. An object that is still a zone master is refused;
// the zone must be emptied or razed before the master can go.
func (s *Store) Destroy(obj object.Object) error {
	if members := s.FindObjectsInZone(obj); len(members) > 0 {
		return &ZoneMembersError{ID: obj.ID(), Members: len(members)}
	}

	for _, exit := range s.FindExitsLinkedTo(obj) {
		if _, alive := s.objects[exit.ID()]; !alive {
			continue
		}
		if err := s.Destroy(exit); err != nil {
			return err
		}
	}

	if err := s.db.DeleteObject(obj.ID()); err != nil {
		return err
	}
	delete(s.objects, obj.ID())
	return nil
}

// Reload evicts the cached instance and rebuilds it from persistence.
// Used after re-parenting, since the behavior type changed.
func (s *Store) Reload(obj object.Object) (object.Object, error) {
	row, err := s.db.LoadObject(obj.ID())
	if err != nil {
		return nil, err
	}
	delete(s.objects, obj.ID())
	return s.loadOne(row)
}

// ContentsOf returns all objects located inside obj, ordered by dbref.
func (s *Store) ContentsOf(obj object.Object) []object.Object {
	var contents []object.Object
	for _, candidate := range s.objects {
		if candidate.LocationID() == obj.ID() && candidate.ID() != obj.ID() {
			contents = append(contents, candidate)
		}
	}
	sortByID(contents)
	return contents
}

// HighestID reports the largest dbref assigned so far.
func (s *Store) HighestID() int64 {
	return s.nextID - 1
}

// FindControlledBy returns the object bound to the named account, or
// nil when the account controls nothing.
func (s *Store) FindControlledBy(username string) object.Object {
	for _, obj := range s.objects {
		if obj.ControlledBy() != "" && strings.EqualFold(obj.ControlledBy(), username) {
			return obj
		}
	}
	return nil
}

// GlobalNameSearch lazily yields every object whose name fuzzy-matches
// text. The sequence is finite and single-use.
func (s *Store) GlobalNameSearch(text string) iter.Seq[object.Object] {
	return func(yield func(object.Object) bool) {
		for _, obj := range s.objects {
			if fuzzy.PartialRatio(text, obj.Name()) > fuzzy.MatchThreshold {
				if !yield(obj) {
					return
				}
			}
		}
	}
}

// FindExitsLinkedTo returns all exits whose destination is obj, ordered
// by dbref. Exits cannot link to exits, so asking about an exit always
// yields nothing.
func (s *Store) FindExitsLinkedTo(obj object.Object) []object.Object {
	if obj.BaseType() == object.TypeExit {
		return nil
	}

	var linked []object.Object
	for _, candidate := range s.objects {
		exit, ok := candidate.(object.ExitLike)
		if !ok {
			continue
		}
		if exit.DestinationID() == obj.ID() {
			linked = append(linked, exit)
		}
	}
	sortByID(linked)
	return linked
}

// FindObjectsInZone returns all objects whose zone master is obj,
// ordered by dbref.
func (s *Store) FindObjectsInZone(obj object.Object) []object.Object {
	var members []object.Object
	for _, candidate := range s.objects {
		if candidate.ZoneID() == obj.ID() && candidate.ID() != obj.ID() {
			members = append(members, candidate)
		}
	}
	sortByID(members)
	return members
}

// EmptyZone clears the zone on every member of obj's zone, persisting
// each, and returns the cleared set.
func (s *Store) EmptyZone(obj object.Object) ([]object.Object, error) {
	members := s.FindObjectsInZone(obj)
	for _, member := range members {
		member.SetZoneID(0)
		if err := s.Save(member); err != nil {
			return nil, err
		}
	}
	return members, nil
}

// RazeZone destroys every member of obj's zone, then obj itself.
// Returns the full destroyed set, master included and last.
func (s *Store) RazeZone(obj object.Object) ([]object.Object, error) {
	members := s.FindObjectsInZone(obj)

	var destroyed []object.Object
	for _, member := range members {
		if _, alive := s.objects[member.ID()]; !alive {
			// Already gone, cascaded away with an earlier member.
			destroyed = append(destroyed, member)
			continue
		}
		if err := s.Destroy(member); err != nil {
			return destroyed, err
		}
		destroyed = append(destroyed, member)
	}

	if err := s.Destroy(obj); err != nil {
		return destroyed, err
	}
	return append(destroyed, obj), nil
}

func sortByID(objects []object.Object) {
	sort.Slice(objects, func(i, j int) bool {
		return objects[i].ID() < objects[j].ID()
	})
}
