package command

import (
	"errors"
	"fmt"
	"strings"

	"github.com/porchlightgames/titandawn/internal/logger"
	"github.com/porchlightgames/titandawn/internal/object"
	"github.com/porchlightgames/titandawn/internal/parent"
	"github.com/porchlightgames/titandawn/internal/store"
)

// Proxy is the slice of the proxy link that commands call across.
type Proxy interface {
	WhoConnected() ([]string, error)
	DisconnectSessionsOnObject(id int64) (int, error)
	ShutdownProxy() error
}

// World is what commands need from the running game process.
type World interface {
	Store() *store.Store
	Parents() *parent.Registry
	Proxy() Proxy
	Shutdown()
	Version() string
}

// Handler routes each input line through parsing, exit matching, and
// the layered command tables.
type Handler struct {
	world       World
	global      *Table
	globalAdmin *Table
}

// NewHandler builds the handler around the global command tables.
func NewHandler(world World, global, globalAdmin *Table) *Handler {
	return &Handler{world: world, global: global, globalAdmin: globalAdmin}
}

// HandleInput parses raw input from invoker and executes the matching
// command. Reports false when neither an exit nor a command matched,
// which is a normal outcome, not an error; the caller owns the
// fallback message.
func (h *Handler) HandleInput(invoker object.Object, raw string) bool {
	parsed := Parse(raw)

	if exit := h.matchExit(invoker, parsed); exit != nil {
		// Rewrite into a "go" at the matched exit, by absolute id so
		// the lookup can't be diverted by a name collision.
		ref := fmt.Sprintf("#%d", exit.ID())
		parsed.Verb = "go"
		parsed.Args = []string{ref}
		parsed.ArgString = ref
	}

	cmd := h.matchCommand(invoker, parsed)
	if cmd == nil {
		return false
	}

	h.execute(cmd, invoker, parsed)
	return true
}

// matchExit compares the full verb token against the aliases of every
// exit in the invoker's location.
func (h *Handler) matchExit(invoker object.Object, parsed *Parsed) object.Object {
	location := invoker.Location()
	if location == nil || parsed.Verb == "" {
		return nil
	}

	verb := strings.ToLower(parsed.Verb)
	for _, obj := range location.Contents() {
		if obj.BaseType() != object.TypeExit {
			continue
		}
		for _, alias := range obj.Aliases() {
			if strings.ToLower(alias) == verb {
				return obj
			}
		}
	}
	return nil
}

// matchCommand tries the tables in fixed order: the location's admin
// table (admins only), the location's table, the global admin table
// (admins only), then the global table. First hit wins; tables are
// never merged.
func (h *Handler) matchCommand(invoker object.Object, parsed *Parsed) *Command {
	location := invoker.Location()

	if local, ok := location.(LocalCommands); ok {
		if invoker.IsAdmin() {
			if cmd := local.LocalAdminCommandTable().Lookup(parsed); cmd != nil {
				return cmd
			}
		}
		if cmd := local.LocalCommandTable().Lookup(parsed); cmd != nil {
			return cmd
		}
	}

	if invoker.IsAdmin() {
		if cmd := h.globalAdmin.Lookup(parsed); cmd != nil {
			return cmd
		}
	}
	return h.global.Lookup(parsed)
}

// execute runs the command and sorts its failures. A declared *Error
// sends only its message. Anything else, a panic included, sends a
// critical-error notice plus the full detail to the invoker, and also
// lands in the process log with the invoker's identity; both always
// happen. One broken command must never take the world down.
func (h *Handler) execute(cmd *Command, invoker object.Object, parsed *Parsed) {
	defer func() {
		if r := recover(); r != nil {
			h.reportFailure(cmd, invoker, fmt.Errorf("panic: %v", r))
		}
	}()

	if err := cmd.Func(h.world, invoker, parsed); err != nil {
		h.reportFailure(cmd, invoker, err)
	}
}

func (h *Handler) reportFailure(cmd *Command, invoker object.Object, err error) {
	var declared *Error
	if errors.As(err, &declared) {
		invoker.EmitTo(declared.Message)
		return
	}

	invoker.EmitTo("ERROR: A critical error has occurred. Please notify the staff.")
	invoker.EmitTo(err.Error())
	logger.Error("Command execution failed",
		"command", cmd.Name,
		"invoker_id", invoker.ID(),
		"invoker", invoker.Name(),
		"error", err)
}
