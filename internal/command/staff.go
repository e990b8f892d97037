package command

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/porchlightgames/titandawn/internal/attr"
	"github.com/porchlightgames/titandawn/internal/object"
	"github.com/porchlightgames/titandawn/internal/parent"
	"github.com/porchlightgames/titandawn/internal/store"
)

// AdminTable builds the staff command table. Only admin invokers get
// it consulted.
func AdminTable() *Table {
	return NewTable(
		&Command{Name: "@restart", Func: cmdRestart},
		&Command{Name: "@find", Func: cmdFind},
		&Command{Name: "@dig", Func: cmdDig},
		&Command{Name: "@create", Func: cmdCreate},
		&Command{Name: "@teleport", Aliases: []string{"@tel"}, Func: cmdTeleport},
		&Command{Name: "@describe", Aliases: []string{"@desc"}, Func: cmdDescribe},
		&Command{Name: "@name", Func: cmdName},
		&Command{Name: "@zone", Func: cmdZone},
		&Command{Name: "@zmo", Func: cmdZmo},
		&Command{Name: "@parent", Func: cmdParent},
		&Command{Name: "@alias", Func: cmdAlias},
		&Command{Name: "@destroy", Aliases: []string{"@dest", "@nuke"}, Func: cmdDestroy},
		&Command{Name: "@open", Func: cmdOpen},
		&Command{Name: "@unlink", Func: cmdUnlink},
		&Command{Name: "@link", Func: cmdLink},
		&Command{Name: "@set", Func: cmdSet},
		&Command{Name: "@boot", Func: cmdBoot},
	)
}

// cmdRestart shuts the world process down silently; the supervisor
// brings it back while the proxy holds everyone's connections. With
// the "proxy" argument it restarts the proxy instead.
func cmdRestart(world World, invoker object.Object, parsed *Parsed) error {
	hasArg := func(name string) bool {
		for _, arg := range parsed.Args {
			if arg == name {
				return true
			}
		}
		return false
	}

	if len(parsed.Args) == 0 || hasArg("world") {
		invoker.EmitTo("Restarting world server...")
		world.Shutdown()
	}
	if hasArg("proxy") {
		invoker.EmitTo("Restarting proxy server...")
		if err := world.Proxy().ShutdownProxy(); err != nil {
			return fmt.Errorf("proxy restart: %w", err)
		}
	}
	return nil
}

func cmdFind(world World, invoker object.Object, parsed *Parsed) error {
	search := strings.TrimSpace(parsed.ArgString)
	if search == "" {
		return NewError("@find requires a name to search for.")
	}

	buf := headerStr(fmt.Sprintf("Searching for \"%s\"", search))
	matches := 0
	for obj := range world.Store().GlobalNameSearch(search) {
		buf += fmt.Sprintf("\n  %s", obj.AppearanceName(invoker))
		matches++
	}
	buf += footerStr('-')
	buf += fmt.Sprintf("\n  Matches found: %d", matches)
	buf += footerStr('=')
	invoker.EmitTo(buf)
	return nil
}

func cmdDig(world World, invoker object.Object, parsed *Parsed) error {
	name := strings.TrimSpace(parsed.ArgString)
	if name == "" {
		return NewError("@dig requires a name for the new room.")
	}

	room, err := world.Store().Create(parent.Room, object.Doc{Name: name})
	if err != nil {
		return err
	}
	invoker.EmitTo(fmt.Sprintf("You have dug a new room named \"%s\"",
		room.AppearanceName(invoker)))

	if parsed.HasSwitch("teleport") {
		return invoker.MoveTo(room, true)
	}
	return nil
}

func cmdCreate(world World, invoker object.Object, parsed *Parsed) error {
	name := strings.TrimSpace(parsed.ArgString)
	if name == "" {
		return NewError("You must provide a name for the new Thing.")
	}

	location := invoker.Location()
	if location == nil {
		return NewError("You must be somewhere to create a Thing.")
	}

	thing, err := world.Store().Create(parent.Thing, object.Doc{
		Name:       name,
		LocationID: location.ID(),
	})
	if err != nil {
		return err
	}
	invoker.EmitTo(fmt.Sprintf("You have created a new thing named \"%s\"",
		thing.AppearanceName(invoker)))
	return nil
}

func cmdTeleport(world World, invoker object.Object, parsed *Parsed) error {
	if len(parsed.Args) == 0 {
		return NewError("Teleport what to where?")
	}

	targetStr, destinationStr, hasEquals := strings.Cut(parsed.ArgString, "=")
	if !hasEquals {
		// No target given; teleport the invoker.
		destinationStr = targetStr
		targetStr = "me"
	}

	target := invoker.ContextualSearch(targetStr)
	if target == nil {
		return NewError("Unable to find your target object to teleport.")
	}
	destination := invoker.ContextualSearch(destinationStr)
	if destination == nil {
		return NewError("Unable to find your destination.")
	}

	if target.BaseType() == object.TypeRoom {
		return NewError("Rooms cannot be teleported.")
	}
	if target.ID() == destination.ID() {
		return NewError("Objects can not teleport inside themselves.")
	}

	return target.MoveTo(destination, true)
}

func cmdDescribe(world World, invoker object.Object, parsed *Parsed) error {
	if len(parsed.Args) == 0 {
		return NewError("Describe what?")
	}

	targetStr, description, hasEquals := strings.Cut(parsed.ArgString, "=")
	if !hasEquals {
		return NewError("No description provided.")
	}

	target := invoker.ContextualSearch(targetStr)
	if target == nil {
		return NewError("Unable to find your target object to describe.")
	}

	if parsed.HasAnySwitch("internal", "i", "in") {
		invoker.EmitTo(fmt.Sprintf("You internally describe %s", target.AppearanceName(invoker)))
		target.SetInternalDescription(description)
	} else {
		invoker.EmitTo(fmt.Sprintf("You describe %s", target.AppearanceName(invoker)))
		target.SetDescription(description)
	}
	return target.Save()
}

func cmdName(world World, invoker object.Object, parsed *Parsed) error {
	if len(parsed.Args) == 0 {
		return NewError("Name what?")
	}

	targetStr, name, hasEquals := strings.Cut(parsed.ArgString, "=")
	if !hasEquals {
		return NewError("No name provided.")
	}

	target := invoker.ContextualSearch(targetStr)
	if target == nil {
		return NewError("Unable to find your target object to name.")
	}

	invoker.EmitTo(fmt.Sprintf("You re-name %s", target.AppearanceName(invoker)))
	target.SetName(name)
	return target.Save()
}

func cmdZone(world World, invoker object.Object, parsed *Parsed) error {
	if len(parsed.Args) == 0 {
		return NewError("Set the zone on what?")
	}

	targetStr, zoneStr, hasEquals := strings.Cut(parsed.ArgString, "=")
	if !hasEquals {
		return NewError("No zone provided.")
	}

	target := invoker.ContextualSearch(targetStr)
	if target == nil {
		return NewError("Unable to find your target object to zone.")
	}

	if strings.TrimSpace(zoneStr) == "" {
		target.SetZoneID(0)
		if err := target.Save(); err != nil {
			return err
		}
		invoker.EmitTo(fmt.Sprintf("You clear the zone (if any) on %s",
			target.AppearanceName(invoker)))
		return nil
	}

	zone := invoker.ContextualSearch(zoneStr)
	if zone == nil {
		return NewError("Unable to find your zone master object.")
	}

	target.SetZoneID(zone.ID())
	if err := target.Save(); err != nil {
		return err
	}
	invoker.EmitTo(fmt.Sprintf("You zone %s to %s",
		target.AppearanceName(invoker), zone.AppearanceName(invoker)))
	return nil
}

func cmdZmo(world World, invoker object.Object, parsed *Parsed) error {
	if len(parsed.Args) == 0 {
		return NewError("You must specify a Zone Master Object (ZMO).")
	}

	// The switch may ride on the verb or on the target itself.
	targetStr, switches := ExtractSwitches(parsed.ArgString)
	switches = append(switches, parsed.Switches...)

	zmo := invoker.ContextualSearch(targetStr)
	if zmo == nil {
		return NewError("Unable to find the given Zone Master Object (ZMO).")
	}

	switch {
	case len(switches) == 0:
		return zmoSummary(world, invoker, zmo)
	case slices.Contains(switches, "empty"):
		return zmoEmpty(world, invoker, zmo)
	case slices.Contains(switches, "raze"):
		return zmoRaze(world, invoker, zmo)
	default:
		return NewError("Invalid @zmo switch. Must be one of: empty, raze")
	}
}

func zmoSummary(world World, invoker object.Object, zmo object.Object) error {
	members := world.Store().FindObjectsInZone(zmo)

	counts := map[string]int{
		object.TypeRoom:   0,
		object.TypeThing:  0,
		object.TypeExit:   0,
		object.TypePlayer: 0,
	}
	for _, member := range members {
		counts[member.BaseType()]++
	}

	buf := headerStr(fmt.Sprintf("ZMO Summary: %s", zmo.AppearanceName(invoker)))
	if len(members) == 0 {
		buf += "\nNo members in zone."
	} else {
		buf += "\n Member base types --"
		for _, baseType := range []string{object.TypeRoom, object.TypeThing, object.TypeExit, object.TypePlayer} {
			buf += fmt.Sprintf(" %s: %d  ", baseType, counts[baseType])
		}
	}
	buf += subheaderStr("Zone Members")
	for _, member := range members {
		buf += fmt.Sprintf("\n %s", member.AppearanceName(invoker))
	}
	buf += footerStr('=')
	invoker.EmitTo(buf)
	return nil
}

func zmoEmpty(world World, invoker object.Object, zmo object.Object) error {
	members, err := world.Store().EmptyZone(zmo)
	if err != nil {
		return err
	}
	invoker.EmitTo(fmt.Sprintf("Cleared %d object(s) from ZMO %s.",
		len(members), zmo.AppearanceName(invoker)))
	return nil
}

func zmoRaze(world World, invoker object.Object, zmo object.Object) error {
	appearance := zmo.AppearanceName(invoker)
	destroyed, err := world.Store().RazeZone(zmo)
	if err != nil {
		return err
	}
	invoker.EmitTo(fmt.Sprintf("Deleted ZMO %s and its %d member object(s).",
		appearance, len(destroyed)-1))
	return nil
}

func cmdParent(world World, invoker object.Object, parsed *Parsed) error {
	if len(parsed.Args) == 0 {
		return NewError("Re-parent what?")
	}

	targetStr, parentStr, hasEquals := strings.Cut(parsed.ArgString, "=")
	if !hasEquals || strings.TrimSpace(parentStr) == "" {
		return NewError("No parent provided.")
	}
	parentStr = strings.ToLower(strings.TrimSpace(parentStr))

	target := invoker.ContextualSearch(targetStr)
	if target == nil {
		return NewError("Unable to find your target object to re-parent.")
	}

	// Validated before the mutation is committed.
	if !world.Parents().Known(parentStr) {
		return Errorf("Invalid parent: %q", parentStr)
	}

	target.SetParent(parentStr)
	if err := target.Save(); err != nil {
		return err
	}

	reloaded, err := world.Store().Reload(target)
	if err != nil {
		return err
	}

	invoker.EmitTo(fmt.Sprintf("You re-parent %s", reloaded.AppearanceName(invoker)))
	return nil
}

func cmdAlias(world World, invoker object.Object, parsed *Parsed) error {
	if len(parsed.Args) == 0 {
		return NewError("Alias what?")
	}

	targetStr, aliasStr, hasEquals := strings.Cut(parsed.ArgString, "=")
	if !hasEquals {
		return NewError("No alias(es) provided.")
	}
	aliases := strings.Fields(aliasStr)

	target := invoker.ContextualSearch(targetStr)
	if target == nil {
		return NewError("Unable to find your target object to alias.")
	}

	if len(aliases) == 0 {
		invoker.EmitTo(fmt.Sprintf("You clear all aliases on %s.",
			target.AppearanceName(invoker)))
	} else {
		invoker.EmitTo(fmt.Sprintf("You alias %s to: %s",
			target.AppearanceName(invoker), strings.Join(aliases, ", ")))
	}
	target.SetAliases(aliases)
	return target.Save()
}

func cmdDestroy(world World, invoker object.Object, parsed *Parsed) error {
	if len(parsed.Args) == 0 {
		return NewError("Destroy what?")
	}

	target := invoker.ContextualSearch(parsed.ArgString)
	if target == nil {
		return NewError("Unable to find your target object to destroy.")
	}

	appearance := target.AppearanceName(invoker)
	if err := target.Destroy(); err != nil {
		var zoneMembers *store.ZoneMembersError
		if errors.As(err, &zoneMembers) {
			return NewError(zoneMembers.Error() + " Use @zmo/empty or @zmo/raze first.")
		}
		return err
	}
	invoker.EmitTo(fmt.Sprintf("You destroy %s", appearance))
	return nil
}

func cmdOpen(world World, invoker object.Object, parsed *Parsed) error {
	if len(parsed.Args) == 0 {
		return NewError("Open an exit named what, and to where?")
	}
	if len(parsed.Args) < 2 {
		return NewError("You must at least provide an alias and an exit name.")
	}

	location := invoker.Location()
	if location == nil {
		return NewError("You must be somewhere to open an exit.")
	}

	alias := parsed.Args[0]
	nameAndDest := strings.Join(parsed.Args[1:], " ")
	exitName, destStr, hasDest := strings.Cut(nameAndDest, "=")

	var destination object.Object
	var destinationID int64
	if hasDest && strings.TrimSpace(destStr) != "" {
		destination = invoker.ContextualSearch(destStr)
		if destination == nil {
			return NewError("Unable to find specified destination.")
		}
		if destination.BaseType() == object.TypeExit {
			return NewError("You can't link to other exits.")
		}
		destinationID = destination.ID()
	}

	exit, err := world.Store().Create(parent.Exit, object.Doc{
		Name:          exitName,
		Aliases:       []string{alias},
		LocationID:    location.ID(),
		DestinationID: destinationID,
	})
	if err != nil {
		return err
	}

	if destination != nil {
		invoker.EmitTo(fmt.Sprintf("You have opened a new exit to %s named \"%s\"",
			destination.AppearanceName(invoker), exit.AppearanceName(invoker)))
	} else {
		invoker.EmitTo(fmt.Sprintf("You have opened a new exit (with no destination) named \"%s\"",
			exit.AppearanceName(invoker)))
	}
	return nil
}

func cmdUnlink(world World, invoker object.Object, parsed *Parsed) error {
	if len(parsed.Args) == 0 {
		return NewError("Unlink which exit?")
	}

	target := invoker.ContextualSearch(parsed.ArgString)
	if target == nil {
		return NewError("Unable to find your target exit to unlink.")
	}

	exit, ok := target.(object.ExitLike)
	if !ok {
		return NewError("You may only unlink exits.")
	}

	invoker.EmitTo(fmt.Sprintf("You unlink %s", exit.AppearanceName(invoker)))
	exit.SetDestinationID(0)
	return exit.Save()
}

func cmdLink(world World, invoker object.Object, parsed *Parsed) error {
	if len(parsed.Args) == 0 {
		return NewError("Link which exit?")
	}

	targetStr, destStr, hasEquals := strings.Cut(parsed.ArgString, "=")
	if !hasEquals {
		return NewError("No destination provided.")
	}

	target := invoker.ContextualSearch(targetStr)
	if target == nil {
		return NewError("Unable to find your target exit to link.")
	}
	exit, ok := target.(object.ExitLike)
	if !ok {
		return NewError("You may only link exits.")
	}

	destination := invoker.ContextualSearch(destStr)
	if destination == nil {
		return NewError("Unable to find the specified destination.")
	}
	if destination.BaseType() == object.TypeExit {
		return NewError("You can't link to other exits.")
	}

	invoker.EmitTo(fmt.Sprintf("You link %s to %s.",
		exit.AppearanceName(invoker), destination.AppearanceName(invoker)))
	exit.SetDestinationID(destination.ID())
	return exit.Save()
}

func cmdSet(world World, invoker object.Object, parsed *Parsed) error {
	if len(parsed.Args) == 0 {
		return NewError("Which object do you wish to set?")
	}

	targetStr, setValue, hasEquals := strings.Cut(parsed.ArgString, "=")
	if !hasEquals {
		return NewError("You must specify a target and a value.")
	}

	target := invoker.ContextualSearch(targetStr)
	if target == nil {
		return Errorf("Unable to find target object: %s", targetStr)
	}

	attrName, attrValue, hasColon := strings.Cut(setValue, ":")
	if !hasColon {
		return NewError("Attribute values must be in the form of ATTRIBNAME:VALUE")
	}

	value, err := attr.Parse([]byte(attrValue))
	if err != nil {
		return NewError("Invalid JSON value.")
	}

	target.Attributes().Set(attrName, value)
	if err := target.Save(); err != nil {
		return err
	}

	invoker.EmitTo(fmt.Sprintf("Set %s on %s: %s",
		attrName, target.AppearanceName(invoker), attrValue))
	return nil
}

// cmdBoot forcibly closes every session on a player.
func cmdBoot(world World, invoker object.Object, parsed *Parsed) error {
	if len(parsed.Args) == 0 {
		return NewError("Boot whom?")
	}

	target := invoker.ContextualSearch(parsed.ArgString)
	if target == nil {
		return NewError("Unable to find the player to boot.")
	}

	target.EmitTo("You have been booted by " + invoker.Name() + ".")
	closed, err := world.Proxy().DisconnectSessionsOnObject(target.ID())
	if err != nil {
		return fmt.Errorf("boot: %w", err)
	}
	invoker.EmitTo(fmt.Sprintf("Booted %s (%d session(s) closed).",
		target.AppearanceName(invoker), closed))
	return nil
}
