// Package parent maps the string type identifier stored on every
// object to the constructor for its behavior variant. The mapping is
// validated at registration time, so a bad identifier can only come
// from data, never from wiring.
package parent

import (
	"fmt"

	"github.com/porchlightgames/titandawn/internal/object"
)

// Base parent identifiers.
const (
	Room   = "room"
	Player = "player"
	Admin  = "admin"
	Exit   = "exit"
	Thing  = "thing"
)

// Constructor builds a live object from its persisted doc.
type Constructor func(svc *object.Services, doc object.Doc) object.Object

// InvalidParentError is returned when a parent identifier cannot be
// resolved, or a registration is rejected.
type InvalidParentError struct {
	Parent string
	Reason string
}

func (e *InvalidParentError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid parent %q: %s", e.Parent, e.Reason)
	}
	return fmt.Sprintf("invalid parent: %q", e.Parent)
}

// Registry holds the known parent identifiers.
type Registry struct {
	constructors map[string]Constructor
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{constructors: make(map[string]Constructor)}
}

// Register adds a parent identifier. Empty names, nil constructors,
// and duplicate registrations are rejected.
func (r *Registry) Register(name string, ctor Constructor) error {
	if name == "" {
		return &InvalidParentError{Parent: name, Reason: "empty identifier"}
	}
	if ctor == nil {
		return &InvalidParentError{Parent: name, Reason: "nil constructor"}
	}
	if _, exists := r.constructors[name]; exists {
		return &InvalidParentError{Parent: name, Reason: "already registered"}
	}
	r.constructors[name] = ctor
	return nil
}

// Resolve returns the constructor for a parent identifier.
func (r *Registry) Resolve(name string) (Constructor, error) {
	ctor, ok := r.constructors[name]
	if !ok {
		return nil, &InvalidParentError{Parent: name}
	}
	return ctor, nil
}

// Known reports whether a parent identifier resolves.
func (r *Registry) Known(name string) bool {
	_, ok := r.constructors[name]
	return ok
}

// Default returns a registry with the base variants registered.
func Default() *Registry {
	r := NewRegistry()
	r.Register(Room, object.NewRoom)
	r.Register(Player, object.NewPlayer)
	r.Register(Admin, object.NewAdminPlayer)
	r.Register(Exit, object.NewExit)
	r.Register(Thing, object.NewThing)
	return r
}
