package object

import (
	"github.com/porchlightgames/titandawn/internal/attr"
)

// Base is the shared implementation behind every variant. Variants
// embed Base and register themselves as self, so hooks fired from Base
// methods dispatch to the variant's overrides.
type Base struct {
	svc      *Services
	self     Object
	baseType string
	doc      Doc
}

// Init prepares an embedded Base for a variant. Variants pass
// themselves as self so hooks fired from Base methods dispatch to
// their overrides.
func (b *Base) Init(svc *Services, doc Doc, baseType string, self Object) {
	if doc.Attributes == nil {
		doc.Attributes = attr.NewMap()
	}
	b.svc = svc
	b.self = self
	b.baseType = baseType
	b.doc = doc
}

func (b *Base) ID() int64 { return b.doc.ID }
func (b *Base) Name() string { return b.doc.Name }
func (b *Base) SetName(name string) { b.doc.Name = name }

func (b *Base) Aliases() []string { return b.doc.Aliases }
func (b *Base) SetAliases(aliases []string) { b.doc.Aliases = aliases }

// Description returns the object's outside description, with a
// placeholder when none has been set.
func (b *Base) Description() string {
	if b.doc.Description == "" {
		return "You see nothing special."
	}
	return b.doc.Description
}

func (b *Base) SetDescription(desc string) { b.doc.Description = desc }

func (b *Base) InternalDescription() string { return b.doc.InternalDescription }
func (b *Base) SetInternalDescription(desc string) { b.doc.InternalDescription = desc }

func (b *Base) Parent() string { return b.doc.Parent }
func (b *Base) SetParent(parent string) { b.doc.Parent = parent }

func (b *Base) LocationID() int64 { return b.doc.LocationID }

// SetLocationID records the containing object. Rooms are top-level
// containers and silently ignore attempts to place them inside
// anything.
func (b *Base) SetLocationID(id int64) {
	if b.baseType == TypeRoom {
		return
	}
	b.doc.LocationID = id
}

// Location resolves the containing object, or nil when the object has
// no location.
func (b *Base) Location() Object {
	if b.doc.LocationID == 0 {
		return nil
	}
	loc, err := b.svc.Store.Get(b.doc.LocationID)
	if err != nil {
		return nil
	}
	return loc
}

func (b *Base) ZoneID() int64 { return b.doc.ZoneID }
func (b *Base) SetZoneID(id int64) { b.doc.ZoneID = id }

// Zone resolves the zone master object, or nil when the object is
// zone-less.
func (b *Base) Zone() Object {
	if b.doc.ZoneID == 0 {
		return nil
	}
	zone, err := b.svc.Store.Get(b.doc.ZoneID)
	if err != nil {
		return nil
	}
	return zone
}

func (b *Base) ControlledBy() string { return b.doc.ControlledBy }
func (b *Base) SetControlledBy(username string) { b.doc.ControlledBy = username }

func (b *Base) Attributes() *attr.Map { return b.doc.Attributes }

func (b *Base) BaseType() string { return b.baseType }

// IsAdmin reports whether the object has administrative powers. False
// for everything except the admin player variant.
func (b *Base) IsAdmin() bool { return false }

func (b *Base) Doc() *Doc { return &b.doc }

// Contents returns the objects located inside this one.
func (b *Base) Contents() []Object {
	return b.svc.Store.ContentsOf(b.self)
}

// Save persists the object's current in-memory state.
func (b *Base) Save() error {
	return b.svc.Store.Save(b.self)
}

// Destroy removes the object from the world. Exits linked to it are
// destroyed with it; the store refuses if the object still has zone
// members.
func (b *Base) Destroy() error {
	return b.svc.Store.Destroy(b.self)
}

// EmitTo sends a line to every session controlling this object.
func (b *Base) EmitTo(message string) {
	b.svc.Emitter.EmitToObject(b.doc.ID, message)
}

// EmitToContents sends a line to everything inside this object, minus
// the excluded objects.
func (b *Base) EmitToContents(message string, exclude ...Object) {
	excluded := make(map[int64]bool, len(exclude))
	for _, obj := range exclude {
		excluded[obj.ID()] = true
	}
	for _, obj := range b.Contents() {
		if !excluded[obj.ID()] {
			obj.EmitTo(message)
		}
	}
}

// ExecuteCommand runs a raw input line through the command pipeline as
// this object.
func (b *Base) ExecuteCommand(raw string) {
	if !b.svc.Commander.HandleInput(b.self, raw) {
		b.EmitTo("Huh?")
	}
}

// MoveTo relocates this object into destination. The before hooks on
// the old and new locations run against pre-move state, the location is
// then mutated and persisted, and the after hooks run against post-move
// state. With forceLook the object re-runs "look" from its new
// location.
func (b *Base) MoveTo(destination Object, forceLook bool) error {
	oldLocation := b.Location()

	if oldLocation != nil {
		oldLocation.BeforeObjectLeaves(b.self)
	}
	destination.BeforeObjectEnters(b.self)

	b.self.SetLocationID(destination.ID())
	if err := b.Save(); err != nil {
		return err
	}

	if oldLocation != nil {
		oldLocation.AfterObjectLeaves(b.self)
	}
	destination.AfterObjectEnters(b.self)

	if forceLook {
		b.ExecuteCommand("look")
	}
	return nil
}

//
// Event hooks. No-ops by default, overridden per variant.
//

// AfterSessionConnect fires when the first session controlling this
// object logs in.
func (b *Base) AfterSessionConnect() {}

// AfterSessionDisconnect fires when the last session controlling this
// object closes.
func (b *Base) AfterSessionDisconnect() {}

// BeforeObjectLeaves fires before actor leaves this object's contents.
func (b *Base) BeforeObjectLeaves(actor Object) {}

// AfterObjectLeaves fires after actor has left this object's contents.
// The remaining occupants see a departure line.
func (b *Base) AfterObjectLeaves(actor Object) {
	b.EmitToContents(actor.Name()+" has left.", actor)
}

// BeforeObjectEnters fires before actor enters this object's contents.
func (b *Base) BeforeObjectEnters(actor Object) {}

// AfterObjectEnters fires after actor has entered this object's
// contents. The other occupants see an arrival line.
func (b *Base) AfterObjectEnters(actor Object) {
	b.EmitToContents(actor.Name()+" has arrived.", actor)
}
