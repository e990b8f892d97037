package object

import (
	"strconv"
	"strings"

	"github.com/porchlightgames/titandawn/internal/fuzzy"
)

// ContextualSearch resolves a free-form target description using this
// object as the frame of reference. Resolution order: absolute #id
// reference (subject to the admin visibility rule), the keywords "me"
// and "here", then name/alias matching against the current location's
// contents, then against this object's own contents. Returns nil when
// nothing matches.
func (b *Base) ContextualSearch(text string) Object {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	if strings.HasPrefix(text, "#") {
		return b.findObjectIDMatch(text)
	}

	switch strings.ToLower(text) {
	case "me":
		return b.self
	case "here":
		return b.Location()
	}

	if location := b.Location(); location != nil {
		if match := findNameOrAliasMatch(location.Contents(), text); match != nil {
			return match
		}
	}

	return findNameOrAliasMatch(b.Contents(), text)
}

// findObjectIDMatch resolves an absolute "#<id>" reference. Admins can
// resolve any id. Non-admins can only resolve objects sharing their
// location, or their location itself; any other id yields no match even
// when it exists.
func (b *Base) findObjectIDMatch(text string) Object {
	id, err := strconv.ParseInt(text[1:], 10, 64)
	if err != nil {
		return nil
	}

	obj, err := b.svc.Store.Get(id)
	if err != nil {
		return nil
	}

	if b.self.IsAdmin() {
		return obj
	}

	location := b.Location()
	if location == nil {
		return nil
	}
	if location.ID() == obj.ID() || location.ID() == obj.LocationID() {
		return obj
	}
	return nil
}

// findNameOrAliasMatch picks the best match for text among objects. An
// exact case-insensitive alias match wins immediately; otherwise the
// highest fuzzy name score above the threshold wins, first found on
// ties.
func findNameOrAliasMatch(objects []Object, text string) Object {
	lowered := strings.ToLower(text)

	bestRatio := 0
	var best Object
	for _, obj := range objects {
		for _, alias := range obj.Aliases() {
			if strings.ToLower(alias) == lowered {
				return obj
			}
		}

		r := fuzzy.PartialRatio(text, obj.Name())
		if r > fuzzy.MatchThreshold && r > bestRatio {
			bestRatio = r
			best = obj
		}
	}
	return best
}
