package help

// Built-in help content. Operators override or extend it through the
// help YAML file; these defaults keep `help` useful out of the box.

const builtinGeneralHelp = `Commands:
  look [target]        Look at your location, or at something in it.
  examine [target]     Inspect an object's fields in detail.
  go <exit>            Move through an exit. Typing the exit's alias
                       on its own works too.
  say <text>           Speak to everyone in your location.
  pose <action>        Emote an action, shown as "<your name> <action>".
  who                  List the connected accounts.
  version              Show the server version.
  help [topic]         This overview, or help on one command.
  quit                 Disconnect from the game.`

const builtinAdminHelp = `Staff commands:
  @dig <name>              Create a new room. /teleport moves you there.
  @create <name>           Create a thing in your location.
  @open <alias> <name>[=<dest>]  Open an exit here, optionally linked.
  @link <exit>=<dest>      Link an exit to a destination.
  @unlink <exit>           Clear an exit's destination.
  @teleport [obj=]<dest>   Move an object (default: yourself).
  @describe <obj>=<text>   Set a description. /internal for the inside view.
  @name <obj>=<name>       Rename an object.
  @alias <obj>=<aliases>   Replace an object's aliases.
  @parent <obj>=<parent>   Change an object's behavior type.
  @set <obj>=<attr>:<json> Set a free-form attribute.
  @zone <obj>=<zmo>        Zone an object. Empty right side clears it.
  @zmo <zmo>[/empty|/raze] Zone summary, clear, or bulk destroy.
  @destroy <obj>           Destroy an object and its linked exits.
  @find <name>             Fuzzy-search all object names.
  @boot <player>           Force-disconnect a player's sessions.
  @restart [world|proxy]   Restart a daemon.`

var builtinTopics = map[string]Topic{
	"look": {
		Aliases: []string{"l"},
		Text: `look [target]
Shows your location: its description, contents, and exits. With a
target, shows that object instead. Targets may be a name, an alias,
"me", "here", or an absolute #id reference.`,
	},
	"examine": {
		Aliases: []string{"ex"},
		Text: `examine [target]
Shows an object's core fields and extra attributes. Without a target,
examines your location.`,
	},
	"go": {
		Text: `go <exit>
Moves you through an exit in your location. Typing an exit's alias by
itself does the same thing, so "north" works as well as "go north".`,
	},
	"say": {
		Text: `say <text>
Says the text to everyone in your location. The text is delivered
exactly as typed.`,
	},
	"pose": {
		Aliases: []string{"emote"},
		Text: `pose <action>
Shows everyone in your location "<your name> <action>". For example,
"pose waves." becomes "Bob waves."`,
	},
	"who": {
		Text: `who
Lists the accounts currently connected, one line per session.`,
	},
	"version": {
		Text: `version
Shows the server version.`,
	},
	"help": {
		Text: `help [topic]
Without a topic, shows the command overview. With one, shows help for
that command.`,
	},
	"quit": {
		Text: `quit
Disconnects you from the game. Your character stays where it is.`,
	},
}
