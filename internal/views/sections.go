// Package views maps the dashboard's named sections to their fixed queries
// and turns form submissions into gateway calls.
package views

import (
	"fmt"
	"strings"
)

// Section is one of the dashboard's mutually exclusive views.
type Section int

const (
	SectionResults Section = iota
	SectionResultsManipulation
	SectionDrivers
	SectionConstructors
	SectionRaces
	SectionCars
	SectionStatus
	SectionWDC
	SectionWCC
	SectionNestedQuery
	SectionAdminOptions
)

type sectionInfo struct {
	slug      string
	title     string
	subheader string
}

var sectionTable = map[Section]sectionInfo{
	SectionResults:             {"results", "Results", "Race Results"},
	SectionResultsManipulation: {"results-manipulation", "Results Manipulation", "Manage Results"},
	SectionDrivers:             {"drivers", "Drivers", "Driver Information"},
	SectionConstructors:        {"constructors", "Constructors", "Constructors"},
	SectionRaces:               {"races", "Races", "Races Overview"},
	SectionCars:                {"cars", "Cars", "Cars"},
	SectionStatus:              {"status", "Status", "Race Status Types"},
	SectionWDC:                 {"wdc", "WDC", "World Drivers Championship (WDC) Standings"},
	SectionWCC:                 {"wcc", "WCC", "World Constructors Championship (WCC) Standings"},
	SectionNestedQuery:         {"nested-query", "Nested Query", "Drivers who scored points in all their races"},
	SectionAdminOptions:        {"admin-options", "Admin Options", "Create DB User (Admin only)"},
}

// Sections returns every section in sidebar order.
func Sections() []Section {
	out := make([]Section, 0, len(sectionTable))
	for s := SectionResults; s <= SectionAdminOptions; s++ {
		out = append(out, s)
	}
	return out
}

func (s Section) Slug() string      { return sectionTable[s].slug }
func (s Section) Title() string     { return sectionTable[s].title }
func (s Section) Subheader() string { return sectionTable[s].subheader }
func (s Section) String() string    { return s.Title() }

// ParseSection accepts a slug or a title, ignoring case.
func ParseSection(name string) (Section, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for _, s := range Sections() {
		if n == s.Slug() || n == strings.ToLower(s.Title()) {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown section %q", name)
}

// HasQuery reports whether selecting the section fires a query. The
// manipulation and admin sections wait for a command instead.
func (s Section) HasQuery() bool {
	return s != SectionResultsManipulation && s != SectionAdminOptions
}

// IsStandings reports whether the section aggregates points.
func (s Section) IsStandings() bool {
	return s == SectionWDC || s == SectionWCC
}
