// Package services contains the business logic services.
package services

import (
	"github.com/enunezf/dbsanitize/internal/core/domain"
)

// MissingTables returns the names in all that are absent from declared.
// The result keeps the order of all and lists each name once.
func MissingTables(all []string, declared domain.TableSet) []string {
	var missing []string
	seen := make(domain.TableSet, len(all))

	for _, name := range all {
		if declared.Has(name) || seen.Has(name) {
			continue
		}
		seen.Add(name)
		missing = append(missing, name)
	}

	return missing
}

// Analyze compares the live tables against the declared ones
func Analyze(all []string, declared domain.TableSet) *domain.CoverageReport {
	return &domain.CoverageReport{
		Declared: len(declared),
		Total:    len(domain.NewTableSet(all...)),
		Missing:  MissingTables(all, declared),
	}
}
