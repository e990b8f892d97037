package object

// Thing is the generic carryable object, and the usual base for
// further re-parenting.
type Thing struct {
	Base
}

// NewThing constructs a thing from its persisted doc.
func NewThing(svc *Services, doc Doc) Object {
	t := &Thing{}
	t.Init(svc, doc, TypeThing, t)
	return t
}
