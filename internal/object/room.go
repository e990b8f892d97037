package object

// Room is a top-level container. Rooms never have a location
// themselves.
type Room struct {
	Base
}

// NewRoom constructs a room from its persisted doc.
func NewRoom(svc *Services, doc Doc) Object {
	r := &Room{}
	r.Init(svc, doc, TypeRoom, r)
	return r
}
