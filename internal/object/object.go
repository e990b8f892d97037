// Package object implements the in-game entity model. Every room,
// player, exit, and thing in the world is an Object backed by a shared
// Base implementation.
package object

import (
	"github.com/porchlightgames/titandawn/internal/attr"
)

// Base types for the four top-level variants. These are used for
// display and filtering only, never for behavioral branching.
const (
	TypeRoom   = "room"
	TypePlayer = "player"
	TypeExit   = "exit"
	TypeThing  = "thing"
)

// Object is the capability set shared by every in-game entity.
type Object interface {
	ID() int64
	Name() string
	SetName(name string)
	Aliases() []string
	SetAliases(aliases []string)
	Description() string
	SetDescription(desc string)
	InternalDescription() string
	SetInternalDescription(desc string)
	Parent() string
	SetParent(parent string)
	LocationID() int64
	SetLocationID(id int64)
	Location() Object
	ZoneID() int64
	SetZoneID(id int64)
	Zone() Object
	ControlledBy() string
	SetControlledBy(username string)
	Attributes() *attr.Map
	BaseType() string
	IsAdmin() bool
	Doc() *Doc

	Contents() []Object
	Save() error
	Destroy() error
	MoveTo(destination Object, forceLook bool) error
	ContextualSearch(text string) Object
	Appearance(viewer Object) string
	AppearanceName(viewer Object) string
	ExamineAppearance(viewer Object) string
	DescriptionFor(viewer Object, fromInside bool) string
	EmitTo(message string)
	EmitToContents(message string, exclude ...Object)
	ExecuteCommand(raw string)

	// Lifecycle event hooks. Connect/disconnect hooks are edge
	// triggered: they fire for the first session attaching to the
	// object and the last one detaching, not for every session.
	AfterSessionConnect()
	AfterSessionDisconnect()
	BeforeObjectLeaves(actor Object)
	AfterObjectLeaves(actor Object)
	BeforeObjectEnters(actor Object)
	AfterObjectEnters(actor Object)
}

// ExitLike is implemented by exit objects, which link their location to
// a destination elsewhere in the world. A zero destination is the
// "open but unlinked" state.
type ExitLike interface {
	Object
	DestinationID() int64
	SetDestinationID(id int64)
	Destination() Object
}

// Store is the subset of the object store that objects themselves need.
// Implemented by the store package.
type Store interface {
	Get(id int64) (Object, error)
	Save(obj Object) error
	Destroy(obj Object) error
	ContentsOf(obj Object) []Object
	FindExitsLinkedTo(obj Object) []Object
	FindObjectsInZone(obj Object) []Object
}

// Emitter routes a line of output to every session controlling an
// object. Implemented by the world's proxy link.
type Emitter interface {
	EmitToObject(id int64, message string)
}

// Commander runs a raw input line through the command pipeline on
// behalf of an object. Reports whether any command or exit matched.
type Commander interface {
	HandleInput(invoker Object, raw string) bool
}

// Services carries the collaborators every object needs. One instance
// is constructed at startup and shared by all objects; there are no
// package-level singletons.
type Services struct {
	Store     Store
	Emitter   Emitter
	Commander Commander
}
