// Package worldpop inventories WorldPop per-sex, per-age raster tile
// directories so a demographic mosaic can be assembled from them.
package worldpop

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// tileNameRe captures the WorldPop tile naming scheme, e.g.
// zmb_f_25_2020_constrained.tif: ISO3 country code, sex marker (f, m, or
// t for both), two-digit lower bound of the age band, four-digit year.
var tileNameRe = regexp.MustCompile(`^([a-z]{3})[_-]([fmt])[_-](\d{2})[_-](\d{4})(?:[_-].*)?\.tif$`)

// AgeBands is the canonical WorldPop age structure: band 0 is ages 0,
// band 1 is 1-4, then five-year bands up to the open-ended 80+.
var AgeBands = []int{0, 1, 5, 10, 15, 20, 25, 30, 35, 40, 45, 50, 55, 60, 65, 70, 75, 80}

// Sexes are the recognized sex markers in tile filenames.
var Sexes = []string{"f", "m", "t"}

// Tile is one parsed raster tile reference.
type Tile struct {
	Country string
	Sex     string
	AgeLow  int
	Year    int
	Path    string
}

// ParseTileName parses a tile filename (not a path) into its components.
// Filenames that do not follow the WorldPop scheme return ok=false.
func ParseTileName(name string) (Tile, bool) {
	m := tileNameRe.FindStringSubmatch(strings.ToLower(name))
	if m == nil {
		return Tile{}, false
	}

	age, err := strconv.Atoi(m[3])
	if err != nil {
		return Tile{}, false
	}
	year, err := strconv.Atoi(m[4])
	if err != nil {
		return Tile{}, false
	}

	return Tile{
		Country: m[1],
		Sex:     m[2],
		AgeLow:  age,
		Year:    year,
	}, true
}

// ScanDir inventories the .tif tiles in dir. When year is zero the newest
// year present is selected; otherwise only tiles for the requested year
// are kept. Non-conforming filenames are skipped with a debug log.
func ScanDir(dir string, year int) ([]Tile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, eris.Wrapf(err, "worldpop: read tile directory %s", dir)
	}

	var all []Tile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		tile, ok := ParseTileName(entry.Name())
		if !ok {
			if strings.EqualFold(filepath.Ext(entry.Name()), ".tif") {
				zap.L().Debug("worldpop: skipping non-conforming tile name",
					zap.String("file", entry.Name()),
				)
			}
			continue
		}
		tile.Path = filepath.Join(dir, entry.Name())
		all = append(all, tile)
	}

	if len(all) == 0 {
		return nil, eris.Errorf("worldpop: no recognizable tiles in %s", dir)
	}

	if year == 0 {
		year = latestYear(all)
		zap.L().Info("worldpop: no year requested, using latest available",
			zap.Int("year", year),
		)
	}

	var out []Tile
	for _, tile := range all {
		if tile.Year == year {
			out = append(out, tile)
		}
	}
	if len(out) == 0 {
		return nil, eris.Errorf("worldpop: no tiles for year %d in %s (years present: %v)",
			year, dir, yearsPresent(all))
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Sex != out[j].Sex {
			return out[i].Sex < out[j].Sex
		}
		return out[i].AgeLow < out[j].AgeLow
	})
	return out, nil
}

func latestYear(tiles []Tile) int {
	latest := 0
	for _, t := range tiles {
		if t.Year > latest {
			latest = t.Year
		}
	}
	return latest
}

func yearsPresent(tiles []Tile) []int {
	seen := make(map[int]bool)
	var years []int
	for _, t := range tiles {
		if !seen[t.Year] {
			seen[t.Year] = true
			years = append(years, t.Year)
		}
	}
	sort.Ints(years)
	return years
}

// Coverage reports which sex and age band combinations are present.
type Coverage struct {
	tiles   map[string]map[int]Tile
	Missing []MissingTile
}

// MissingTile is one absent sex and age band combination.
type MissingTile struct {
	Sex    string
	AgeLow int
}

// Matrix builds the sex by age band coverage for the f and m tile sets.
// Combined (t) tiles are inventoried separately and do not count toward
// the per-sex matrix. Missing combinations are recorded, not fatal; the
// consumer substitutes zero tiles for them.
func Matrix(tiles []Tile) *Coverage {
	c := &Coverage{tiles: make(map[string]map[int]Tile)}
	for _, t := range tiles {
		byAge, ok := c.tiles[t.Sex]
		if !ok {
			byAge = make(map[int]Tile)
			c.tiles[t.Sex] = byAge
		}
		byAge[t.AgeLow] = t
	}

	for _, sex := range []string{"f", "m"} {
		for _, age := range AgeBands {
			if _, ok := c.tiles[sex][age]; !ok {
				c.Missing = append(c.Missing, MissingTile{Sex: sex, AgeLow: age})
			}
		}
	}
	if len(c.Missing) > 0 {
		zap.L().Warn("worldpop: incomplete tile coverage",
			zap.Int("missing", len(c.Missing)),
		)
	}
	return c
}

// Lookup returns the tile for the sex and age band, if present.
func (c *Coverage) Lookup(sex string, ageLow int) (Tile, bool) {
	t, ok := c.tiles[sex][ageLow]
	return t, ok
}

// Complete reports whether every f and m combination is covered.
func (c *Coverage) Complete() bool {
	return len(c.Missing) == 0
}
