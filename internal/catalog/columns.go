package catalog

import (
	"strings"

	"github.com/rotisserie/eris"
)

// ErrColumnNotFound marks a schema-resolution failure: none of the
// candidate names for a required column exist in the snapshot.
var ErrColumnNotFound = eris.New("column not found")

// Candidate column names in priority order. Catalogue snapshots disagree on
// naming; ISO3 codes frequently stand in for a country column.
var (
	CountryCandidates = []string{"country", "iso3", "iso", "alpha3", "country_code"}
	VersionCandidates = []string{"version", "ver", "release", "dataset_version"}
)

// DetectColumn returns the index of the first candidate present in the
// column list. Matching is case-insensitive. The error names every
// candidate tried so the operator can see what the snapshot actually lacks.
func DetectColumn(columns, candidates []string) (int, error) {
	for _, cand := range candidates {
		for i, col := range columns {
			if strings.EqualFold(col, cand) {
				return i, nil
			}
		}
	}
	return -1, eris.Wrapf(ErrColumnNotFound, "catalog: none of [%s] present in columns [%s]",
		strings.Join(candidates, ", "), strings.Join(columns, ", "))
}
