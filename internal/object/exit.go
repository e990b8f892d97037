package object

// Exit links its location to a destination elsewhere. An exit with no
// destination is open but leads nowhere until linked.
type Exit struct {
	Base
}

// NewExit constructs an exit from its persisted doc.
func NewExit(svc *Services, doc Doc) Object {
	e := &Exit{}
	e.Init(svc, doc, TypeExit, e)
	return e
}

func (e *Exit) DestinationID() int64 { return e.doc.DestinationID }

func (e *Exit) SetDestinationID(id int64) { e.doc.DestinationID = id }

// Destination resolves the exit's destination object, or nil when the
// exit is unlinked.
func (e *Exit) Destination() Object {
	if e.doc.DestinationID == 0 {
		return nil
	}
	destination, err := e.svc.Store.Get(e.doc.DestinationID)
	if err != nil {
		return nil
	}
	return destination
}
