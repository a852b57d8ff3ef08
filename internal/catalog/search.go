package catalog

import (
	"regexp"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Search returns the indices of rows matching the target phrase. The
// primary predicate is an exact case-insensitive phrase match over each
// row's searchable text; when it matches nothing, a looser word-wise
// pattern is tried so near-miss titles ("age-sex gridded population" for
// "gridded population age sex") still surface.
func Search(t *Table, phrase string) []int {
	exclude := identifierColumns(t)

	exact := matchRows(t, exclude, exactPredicate(phrase))
	if len(exact) > 0 {
		return exact
	}

	zap.L().Debug("catalog: exact phrase matched nothing, falling back to pattern",
		zap.String("phrase", phrase),
	)
	return matchRows(t, exclude, patternPredicate(phrase))
}

// exactPredicate reports whether the phrase occurs verbatim
// (case-insensitively) in a row's text.
func exactPredicate(phrase string) func(string) bool {
	needle := strings.ToLower(strings.TrimSpace(phrase))
	return func(text string) bool {
		return needle != "" && strings.Contains(strings.ToLower(text), needle)
	}
}

// patternPredicate matches all words of the phrase in any order.
func patternPredicate(phrase string) func(string) bool {
	words := strings.Fields(strings.ToLower(phrase))
	res := make([]*regexp.Regexp, 0, len(words))
	for _, w := range words {
		res = append(res, regexp.MustCompile(`(?i)`+regexp.QuoteMeta(w)))
	}
	return func(text string) bool {
		if len(res) == 0 {
			return false
		}
		for _, re := range res {
			if !re.MatchString(text) {
				return false
			}
		}
		return true
	}
}

func matchRows(t *Table, exclude map[int]bool, pred func(string) bool) []int {
	var out []int
	for i, row := range t.Rows {
		if pred(searchableText(row, exclude)) {
			out = append(out, i)
		}
	}
	return out
}

// searchableText concatenates a row's descriptive columns. Identifier
// columns (country, version) are excluded so an ISO3 code never
// accidentally satisfies a phrase match.
func searchableText(row []string, exclude map[int]bool) string {
	var b strings.Builder
	for i, cell := range row {
		if exclude[i] {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(cell)
	}
	return b.String()
}

// identifierColumns best-effort detects the country and version columns so
// they can be excluded from text search. Detection failure is not an error
// here; Versions reports it when the caller actually needs the columns.
func identifierColumns(t *Table) map[int]bool {
	exclude := make(map[int]bool)
	if idx, err := DetectColumn(t.Columns, CountryCandidates); err == nil {
		exclude[idx] = true
	}
	if idx, err := DetectColumn(t.Columns, VersionCandidates); err == nil {
		exclude[idx] = true
	}
	return exclude
}

// CountryVersion is one deduplicated (country, version) pair.
type CountryVersion struct {
	Country string
	Version string
}

// Versions projects the given rows onto deduplicated (country, version)
// pairs sorted by country ascending, then version descending (newest
// release first within a country).
func Versions(t *Table, rows []int) ([]CountryVersion, error) {
	countryIdx, err := DetectColumn(t.Columns, CountryCandidates)
	if err != nil {
		return nil, err
	}
	versionIdx, err := DetectColumn(t.Columns, VersionCandidates)
	if err != nil {
		return nil, err
	}

	seen := make(map[CountryVersion]bool)
	var out []CountryVersion
	for _, ri := range rows {
		if ri < 0 || ri >= len(t.Rows) {
			return nil, eris.Errorf("catalog: row index %d out of range", ri)
		}
		row := t.Rows[ri]
		cv := CountryVersion{
			Country: cellAt(row, countryIdx),
			Version: cellAt(row, versionIdx),
		}
		if seen[cv] {
			continue
		}
		seen[cv] = true
		out = append(out, cv)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Country != out[j].Country {
			return out[i].Country < out[j].Country
		}
		return out[i].Version > out[j].Version
	})

	return out, nil
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
