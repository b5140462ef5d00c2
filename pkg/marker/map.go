package marker

import (
	"github.com/agentstation/dotsect/pkg/constants"
	"github.com/agentstation/dotsect/pkg/logging"
)

// Map aggregates parsed markers per section name and validates completeness.
// A section only survives validation when it carries exactly one Begin, one End
// and one Hash marker and no marker kind repeats.
type Map struct {
	markers map[string][]Marker
	order   []string
}

// NewMap returns an empty marker map.
func NewMap() *Map {
	return &Map{markers: make(map[string][]Marker)}
}

// Push appends a marker to its section's list.
func (m *Map) Push(mk Marker) {
	if _, ok := m.markers[mk.Section]; !ok {
		m.order = append(m.order, mk.Section)
	}
	m.markers[mk.Section] = append(m.markers[mk.Section], mk)
}

// RemoveIncomplete drops every section (other than "all") that has a duplicate
// marker kind or is missing one of Begin, End or Hash.
func (m *Map) RemoveIncomplete() {
	var incomplete []string
	for section, markers := range m.markers {
		if section == constants.AllSection {
			continue
		}

		seen := make(map[Kind]bool, len(markers))
		broken := false
		for _, mk := range markers {
			// do not allow multiple definitions of the same attribute
			if seen[mk.Kind] {
				broken = true
				break
			}
			seen[mk.Kind] = true
		}
		if !broken {
			broken = !seen[Begin] || !seen[End] || !seen[Hash]
		}
		if broken {
			incomplete = append(incomplete, section)
		}
	}

	for _, section := range incomplete {
		logging.Warn().Str("section", section).Msg("invalid section")
		m.Remove(section)
	}
}

// Remove deletes a section and its markers.
func (m *Map) Remove(section string) {
	delete(m.markers, section)
	for i, name := range m.order {
		if name == section {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}

// Sections returns all section names except "all", in first-seen order.
func (m *Map) Sections() []string {
	var names []string
	for _, name := range m.order {
		if name != constants.AllSection {
			names = append(names, name)
		}
	}
	return names
}

// Get returns the first marker of the given kind for a section.
func (m *Map) Get(section string, kind Kind) (Marker, bool) {
	for _, mk := range m.markers[section] {
		if mk.Kind == kind {
			return mk, true
		}
	}
	return Marker{}, false
}

// All returns every marker in file order of sections.
func (m *Map) All() []Marker {
	var all []Marker
	for _, name := range m.order {
		all = append(all, m.markers[name]...)
	}
	return all
}
