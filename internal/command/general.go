package command

import (
	"fmt"
	"strings"

	"github.com/porchlightgames/titandawn/internal/help"
	"github.com/porchlightgames/titandawn/internal/object"
)

// GlobalTable builds the command table every object can use.
func GlobalTable() *Table {
	return NewTable(
		&Command{Name: "look", Aliases: []string{"l"}, Func: cmdLook},
		&Command{Name: "go", Func: cmdGo},
		&Command{Name: "say", Func: cmdSay},
		&Command{Name: "pose", Aliases: []string{"emote"}, Func: cmdPose},
		&Command{Name: "examine", Aliases: []string{"ex"}, Func: cmdExamine},
		&Command{Name: "who", Func: cmdWho},
		&Command{Name: "help", Func: cmdHelp},
		&Command{Name: "version", Func: cmdVersion},
		&Command{Name: "quit", Func: cmdQuit},
	)
}

func cmdLook(world World, invoker object.Object, parsed *Parsed) error {
	var target object.Object
	if parsed.ArgString == "" {
		target = invoker.Location()
		if target == nil {
			return NewError("You are nowhere. That's a problem.")
		}
	} else {
		target = invoker.ContextualSearch(parsed.ArgString)
		if target == nil {
			return NewError("You look around, but can't find that.")
		}
	}

	invoker.EmitTo(target.Appearance(invoker))
	return nil
}

func cmdGo(world World, invoker object.Object, parsed *Parsed) error {
	if parsed.ArgString == "" {
		return NewError("Go through which exit?")
	}

	target := invoker.ContextualSearch(parsed.ArgString)
	if target == nil {
		return NewError("You can't go that way.")
	}

	exit, ok := target.(object.ExitLike)
	if !ok {
		return NewError("You can only go through exits.")
	}

	destination := exit.Destination()
	if destination == nil {
		return NewError("That exit leads nowhere.")
	}

	return invoker.MoveTo(destination, true)
}

func cmdSay(world World, invoker object.Object, parsed *Parsed) error {
	speech := strings.TrimSpace(parsed.ArgString)
	if speech == "" {
		return NewError("Say what?")
	}

	invoker.EmitTo(fmt.Sprintf("You say, \"%s\"", speech))
	if location := invoker.Location(); location != nil {
		location.EmitToContents(
			fmt.Sprintf("%s says, \"%s\"", invoker.Name(), speech),
			invoker)
	}
	return nil
}

func cmdPose(world World, invoker object.Object, parsed *Parsed) error {
	action := strings.TrimSpace(parsed.ArgString)
	if action == "" {
		return NewError("Pose what?")
	}

	location := invoker.Location()
	if location == nil {
		return NewError("You are nowhere. That's a problem.")
	}
	location.EmitToContents(fmt.Sprintf("%s %s", invoker.Name(), action))
	return nil
}

func cmdExamine(world World, invoker object.Object, parsed *Parsed) error {
	var target object.Object
	if parsed.ArgString == "" {
		target = invoker.Location()
		if target == nil {
			return NewError("You are nowhere. That's a problem.")
		}
	} else {
		target = invoker.ContextualSearch(parsed.ArgString)
		if target == nil {
			return NewError("Unable to find what you want to examine.")
		}
	}

	invoker.EmitTo(target.ExamineAppearance(invoker))
	return nil
}

func cmdWho(world World, invoker object.Object, parsed *Parsed) error {
	accounts, err := world.Proxy().WhoConnected()
	if err != nil {
		return fmt.Errorf("who: %w", err)
	}

	buf := headerStr("Currently connected")
	for _, account := range accounts {
		buf += fmt.Sprintf("\n  %s", account)
	}
	buf += footerStr('-')
	buf += fmt.Sprintf("\n  Connected accounts: %d", len(accounts))
	buf += footerStr('=')
	invoker.EmitTo(buf)
	return nil
}

func cmdHelp(world World, invoker object.Object, parsed *Parsed) error {
	h := help.GetInstance()
	invoker.EmitTo(h.GetHelpText(strings.TrimSpace(parsed.ArgString), invoker.IsAdmin()))
	return nil
}

func cmdVersion(world World, invoker object.Object, parsed *Parsed) error {
	invoker.EmitTo(world.Version())
	return nil
}

func cmdQuit(world World, invoker object.Object, parsed *Parsed) error {
	invoker.EmitTo("Disconnecting. See you soon.")
	if _, err := world.Proxy().DisconnectSessionsOnObject(invoker.ID()); err != nil {
		return fmt.Errorf("quit: %w", err)
	}
	return nil
}

// Display helpers shared by the larger command outputs.

const displayWidth = 78

func headerStr(title string) string {
	line := fmt.Sprintf("=== %s ", title)
	if pad := displayWidth - len(line); pad > 0 {
		line += strings.Repeat("=", pad)
	}
	return "\n" + line
}

func subheaderStr(title string) string {
	line := fmt.Sprintf("--- %s ", title)
	if pad := displayWidth - len(line); pad > 0 {
		line += strings.Repeat("-", pad)
	}
	return "\n" + line
}

func footerStr(padChar byte) string {
	return "\n" + strings.Repeat(string(padChar), displayWidth)
}
