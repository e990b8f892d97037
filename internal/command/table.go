package command

import (
	"fmt"
	"strings"

	"github.com/porchlightgames/titandawn/internal/object"
)

// Func executes a matched command as invoker. Returning a *Error sends
// its message to the invoker; any other error is handled as an internal
// failure.
type Func func(world World, invoker object.Object, parsed *Parsed) error

// Command couples a verb and its aliases to an implementation.
type Command struct {
	Name    string
	Aliases []string
	Func    Func
}

// Table is an ordered verb lookup. Lookup is exact and
// case-insensitive; commands never fuzzy-match.
type Table struct {
	commands []*Command
	index    map[string]*Command
}

// NewTable builds a table from the given commands. Registering the
// same verb or alias twice is a wiring bug and panics.
func NewTable(commands ...*Command) *Table {
	t := &Table{index: make(map[string]*Command)}
	for _, cmd := range commands {
		t.add(cmd)
	}
	return t
}

func (t *Table) add(cmd *Command) {
	names := append([]string{cmd.Name}, cmd.Aliases...)
	for _, name := range names {
		key := strings.ToLower(name)
		if _, taken := t.index[key]; taken {
			panic(fmt.Sprintf("command table: duplicate verb %q", name))
		}
		t.index[key] = cmd
	}
	t.commands = append(t.commands, cmd)
}

// Lookup resolves a parsed line's verb, or nil when nothing matches.
func (t *Table) Lookup(parsed *Parsed) *Command {
	if t == nil || parsed.Verb == "" {
		return nil
	}
	return t.index[strings.ToLower(parsed.Verb)]
}

// LocalCommands is implemented by objects that carry their own
// per-location command tables. Objects inside them get these tables
// checked before the global ones.
type LocalCommands interface {
	LocalCommandTable() *Table
	LocalAdminCommandTable() *Table
}
