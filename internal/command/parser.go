package command

import (
	"regexp"
	"slices"
	"strings"
)

// Parsed is one tokenized input line. ArgString keeps the post-verb
// text verbatim for commands that do their own splitting, typically
// on "=".
type Parsed struct {
	Verb      string
	Args      []string
	ArgString string
	Switches  []string
}

// HasSwitch reports whether the given switch was supplied.
func (p *Parsed) HasSwitch(name string) bool {
	return slices.Contains(p.Switches, name)
}

// HasAnySwitch reports whether any of the given switches was supplied.
func (p *Parsed) HasAnySwitch(names ...string) bool {
	for _, name := range names {
		if p.HasSwitch(name) {
			return true
		}
	}
	return false
}

var switchPattern = regexp.MustCompile(`/([A-Za-z0-9_-]+)`)

// Parse tokenizes a raw input line. The leading token is the verb;
// "/switch" tokens attached to it are pulled into the switch set. The
// remainder is never touched, so free-text commands see exactly what
// the player typed; commands that take switches on an argument peel
// them off themselves with ExtractSwitches.
func Parse(raw string) *Parsed {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return &Parsed{}
	}

	verbToken := raw
	rest := ""
	if i := strings.IndexAny(raw, " \t"); i >= 0 {
		verbToken = raw[:i]
		rest = strings.TrimSpace(raw[i+1:])
	}

	verb, switches := stripSwitches(verbToken)

	return &Parsed{
		Verb:      verb,
		Args:      strings.Fields(rest),
		ArgString: rest,
		Switches:  switches,
	}
}

// ExtractSwitches pulls "/switch" tokens out of a command argument,
// returning the argument without them. For the "@zmo tower/raze" form,
// where the switch rides on the target rather than the verb.
func ExtractSwitches(s string) (string, []string) {
	cleaned, switches := stripSwitches(s)
	return strings.TrimSpace(cleaned), switches
}

func stripSwitches(s string) (string, []string) {
	matches := switchPattern.FindAllStringSubmatch(s, -1)
	if len(matches) == 0 {
		return s, nil
	}
	switches := make([]string, 0, len(matches))
	for _, match := range matches {
		switches = append(switches, strings.ToLower(match[1]))
	}
	cleaned := switchPattern.ReplaceAllString(s, "")
	return cleaned, switches
}
