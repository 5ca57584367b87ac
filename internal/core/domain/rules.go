package domain

import (
	"fmt"
)

// Rule is a single sanitization entry for a table
type Rule struct {
	Description string `yaml:"description" json:"description"`
	Query       string `yaml:"query" json:"query"`
}

// RuleDocument is a parsed sanitize YML file. Groups maps a machine name to
// the rules it declares, keyed by table name.
type RuleDocument struct {
	Source string
	Groups map[string]map[string]Rule
}

// Tables returns every table name declared under any group
func (d *RuleDocument) Tables() []string {
	var tables []string
	for _, group := range d.Groups {
		for table := range group {
			tables = append(tables, table)
		}
	}
	return tables
}

// TableSet is an unordered set of table names
type TableSet map[string]struct{}

// NewTableSet builds a set from names
func NewTableSet(names ...string) TableSet {
	s := make(TableSet, len(names))
	s.Add(names...)
	return s
}

// Add inserts names into the set
func (s TableSet) Add(names ...string) {
	for _, n := range names {
		s[n] = struct{}{}
	}
}

// Has reports whether name is in the set
func (s TableSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// GeneratedEntry is one table entry of a generated document
type GeneratedEntry struct {
	Table       string
	Description string
	Query       string
}

// GeneratedDocument is a rule document built for tables that no loaded rule
// file covers. Entries keep the order in which the tables were found.
type GeneratedDocument struct {
	MachineName string
	Entries     []GeneratedEntry
}

// Sanitize returns the document as the nested sanitize mapping
func (d *GeneratedDocument) Sanitize() map[string]map[string]map[string]Rule {
	group := make(map[string]Rule, len(d.Entries))
	for _, e := range d.Entries {
		group[e.Table] = Rule{Description: e.Description, Query: e.Query}
	}
	return map[string]map[string]map[string]Rule{
		"sanitize": {d.MachineName: group},
	}
}

// CoverageReport is the result of comparing rule files against a database
type CoverageReport struct {
	Declared int      // Distinct table names declared by rule files
	Total    int      // Tables present in the database
	Missing  []string // Tables present in the database but not declared
}

// AllCovered returns true if every database table has a rule
func (r *CoverageReport) AllCovered() bool {
	return len(r.Missing) == 0
}

// Summary returns a one-line human-readable outcome
func (r *CoverageReport) Summary() string {
	if r.AllCovered() {
		return "All database tables are already specified in sanitize YML files"
	}
	return fmt.Sprintf("There are %d tables not defined on sanitize YML files", len(r.Missing))
}
