package engine

import "strings"

// CompatibilityTable is the explicit faculty-subject compatibility relation:
// a faculty category maps to the subject keywords it may cover. The relation
// is resolved once at constraint-compile time, never during search.
type CompatibilityTable map[string][]string

// DefaultCompatibilityTable returns the built-in broader-category relation.
// Callers may supply their own table to extend or replace it.
func DefaultCompatibilityTable() CompatibilityTable {
	return CompatibilityTable{
		"mathematics":      {"calculus", "algebra", "geometry", "statistics", "math"},
		"physics":          {"mechanics", "thermodynamics", "electromagnetism", "quantum"},
		"chemistry":        {"organic", "inorganic", "physical chemistry", "biochemistry"},
		"biology":          {"cell biology", "genetics", "ecology", "anatomy", "botany", "zoology"},
		"computer science": {"programming", "algorithms", "data structures", "software engineering", "cs"},
		"english":          {"literature", "composition", "writing", "grammar", "linguistics"},
		"history":          {"world history", "american history", "european history", "ancient history"},
		"economics":        {"microeconomics", "macroeconomics", "finance", "business"},
		"psychology":       {"cognitive", "behavioral", "social psychology", "developmental"},
		"engineering":      {"mechanical", "electrical", "civil", "chemical engineering"},
	}
}

// Allows reports whether a faculty labelled with facultySubject may teach
// subjectName: exact match, substring containment in either direction, or a
// category-table hit.
func (t CompatibilityTable) Allows(facultySubject, subjectName string) bool {
	fs := strings.ToLower(strings.TrimSpace(facultySubject))
	sn := strings.ToLower(strings.TrimSpace(subjectName))
	if fs == "" || sn == "" {
		return false
	}
	if fs == sn || strings.Contains(sn, fs) || strings.Contains(fs, sn) {
		return true
	}
	for category, keywords := range t {
		if !strings.Contains(fs, category) {
			continue
		}
		for _, keyword := range keywords {
			if strings.Contains(sn, keyword) {
				return true
			}
		}
	}
	return false
}
