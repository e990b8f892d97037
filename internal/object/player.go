package object

// Player is an object controllable by an account's sessions.
type Player struct {
	Base
}

// NewPlayer constructs a player from its persisted doc.
func NewPlayer(svc *Services, doc Doc) Object {
	p := &Player{}
	p.Init(svc, doc, TypePlayer, p)
	return p
}

// AfterSessionConnect announces the player to their location and shows
// them where they are.
func (p *Player) AfterSessionConnect() {
	if location := p.Location(); location != nil {
		location.EmitToContents(p.Name()+" has connected.", p.self)
	}
	p.ExecuteCommand("look")
}

// AfterSessionDisconnect announces the departure to the player's
// location.
func (p *Player) AfterSessionDisconnect() {
	if location := p.Location(); location != nil {
		location.EmitToContents(p.Name()+" has disconnected.", p.self)
	}
}

// AdminPlayer is a player with administrative powers: staff command
// tables and unrestricted #id resolution.
type AdminPlayer struct {
	Player
}

// NewAdminPlayer constructs an admin player from its persisted doc.
func NewAdminPlayer(svc *Services, doc Doc) Object {
	a := &AdminPlayer{}
	a.Init(svc, doc, TypePlayer, a)
	return a
}

func (a *AdminPlayer) IsAdmin() bool { return true }
