package object

import (
	"fmt"
	"strings"
)

const (
	ansiHilight = "\033[1m"
	ansiNormal  = "\033[0m"
)

// DescriptionFor returns the description shown to viewer. When viewed
// from inside, the internal description is preferred if one is set.
func (b *Base) DescriptionFor(viewer Object, fromInside bool) string {
	if fromInside && b.doc.InternalDescription != "" {
		return b.doc.InternalDescription
	}
	return b.Description()
}

// AppearanceName returns the object's display name. Admin viewers also
// see the id and a one-character type tag, like "(#5R)".
func (b *Base) AppearanceName(viewer Object) string {
	extra := ""
	if viewer != nil && viewer.IsAdmin() {
		var typeTag string
		switch b.baseType {
		case TypeRoom:
			typeTag = "R"
		case TypePlayer:
			typeTag = "P"
		case TypeExit:
			typeTag = "E"
		case TypeThing:
			typeTag = "T"
		default:
			typeTag = "U"
		}
		extra = fmt.Sprintf("(#%d%s)", b.doc.ID, typeTag)
	}

	return fmt.Sprintf("%s%s%s%s", ansiHilight, b.doc.Name, ansiNormal, extra)
}

// appearanceContentsAndExits renders the contents and exit listings,
// leaving the viewer itself out. Exits are shown with their primary
// alias.
func (b *Base) appearanceContentsAndExits(viewer Object) string {
	var exits, things strings.Builder

	for _, obj := range b.Contents() {
		if viewer != nil && obj.ID() == viewer.ID() {
			continue
		}

		if obj.BaseType() == TypeExit {
			alias := "_"
			if aliases := obj.Aliases(); len(aliases) > 0 {
				alias = aliases[0]
			}
			fmt.Fprintf(&exits, "<%s> %s\n", alias, obj.AppearanceName(viewer))
		} else {
			fmt.Fprintf(&things, "%s\n", obj.AppearanceName(viewer))
		}
	}

	var out strings.Builder
	if things.Len() > 0 {
		out.WriteString("\nContents:\n")
		out.WriteString(things.String())
	}
	if exits.Len() > 0 {
		out.WriteString("\nExits:\n")
		out.WriteString(exits.String())
	}
	return out.String()
}

// Appearance composes the full view of the object for viewer: name,
// description, and the contents/exits listing. The internal variant of
// the description is used when the viewer is physically inside.
func (b *Base) Appearance(viewer Object) string {
	fromInside := viewer != nil && viewer.LocationID() == b.doc.ID

	return fmt.Sprintf("%s\n%s\n%s",
		b.AppearanceName(viewer),
		b.DescriptionFor(viewer, fromInside),
		b.appearanceContentsAndExits(viewer))
}

// ExamineAppearance renders the object's core fields and extra
// attributes for staff inspection.
func (b *Base) ExamineAppearance(viewer Object) string {
	var out strings.Builder
	out.WriteString(b.AppearanceName(viewer))
	out.WriteString("\n")

	core := []struct {
		key   string
		value string
	}{
		{"aliases", strings.Join(b.doc.Aliases, ", ")},
		{"controlled_by", b.doc.ControlledBy},
		{"description", b.doc.Description},
		{"destination_id", refField(b.doc.DestinationID)},
		{"internal_description", b.doc.InternalDescription},
		{"location_id", refField(b.doc.LocationID)},
		{"name", b.doc.Name},
		{"parent", b.doc.Parent},
		{"zone_id", refField(b.doc.ZoneID)},
	}
	for _, field := range core {
		fmt.Fprintf(&out, " %s: %s\n", field.key, field.value)
	}

	if b.doc.Attributes.Len() > 0 {
		out.WriteString("\n### EXTRA ATTRIBUTES ###\n")
		for _, key := range b.doc.Attributes.Keys() {
			value, _ := b.doc.Attributes.Get(key)
			fmt.Fprintf(&out, " %s: %s\n", key, value.Display())
		}
	}

	return out.String()
}

func refField(id int64) string {
	if id == 0 {
		return ""
	}
	return fmt.Sprintf("#%d", id)
}
