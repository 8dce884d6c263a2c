package catalog

import "sort"

// Group is one section of a catalogue listing with its subsections in order
// of first appearance.
type Group struct {
	Section     string     `json:"section"`
	Subsections []Subgroup `json:"subsections"`
}

// Subgroup holds the records of one subsection ("" when none).
type Subgroup struct {
	Subsection string   `json:"subsection"`
	Records    []Record `json:"records"`
}

// GroupBySection sorts a copy of records by section, subsection and title and
// groups them. Records without a section go under other.
func GroupBySection(records []Record, other string) []Group {
	sorted := make([]Record, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Section != b.Section {
			return a.Section < b.Section
		}
		if a.Subsection != b.Subsection {
			return a.Subsection < b.Subsection
		}
		return a.Title < b.Title
	})

	var groups []Group
	for _, r := range sorted {
		sec := r.Section
		if sec == "" {
			sec = other
		}
		if len(groups) == 0 || groups[len(groups)-1].Section != sec {
			groups = append(groups, Group{Section: sec})
		}
		g := &groups[len(groups)-1]
		if len(g.Subsections) == 0 || g.Subsections[len(g.Subsections)-1].Subsection != r.Subsection {
			g.Subsections = append(g.Subsections, Subgroup{Subsection: r.Subsection})
		}
		sub := &g.Subsections[len(g.Subsections)-1]
		sub.Records = append(sub.Records, r)
	}
	return groups
}
