package geo

import (
	"slices"
	"strings"

	"github.com/sells-group/geo-profiler/internal/model"
)

// ResolutionPriority ranks levels from finest (1) to coarsest (7). The
// aggregate resolution does not consult it; it orders levels for display.
var ResolutionPriority = map[model.ResolutionLevel]int{
	model.LevelCoordinates:  1,
	model.LevelStreet:       2,
	model.LevelZip:          3,
	model.LevelNeighborhood: 4,
	model.LevelDistrict:     5,
	model.LevelBorough:      6,
	model.LevelCity:         7,
}

type levelMatch struct {
	substrings []string
	level      model.ResolutionLevel
}

// hintLevels maps free-text resolution hints to levels. First match wins.
var hintLevels = []levelMatch{
	{[]string{"coord"}, model.LevelCoordinates},
	{[]string{"street"}, model.LevelStreet},
	{[]string{"zip", "postal"}, model.LevelZip},
	{[]string{"neigh"}, model.LevelNeighborhood},
	{[]string{"district"}, model.LevelDistrict},
	{[]string{"borough"}, model.LevelBorough},
	{[]string{"city"}, model.LevelCity},
}

// nameLevels maps column-name substrings to levels. First match wins.
var nameLevels = []levelMatch{
	{[]string{"lat", "lon", "latitude", "longitude"}, model.LevelCoordinates},
	{[]string{"street"}, model.LevelStreet},
	{[]string{"zip"}, model.LevelZip},
	{[]string{"district", "tract"}, model.LevelDistrict},
	{[]string{"borough"}, model.LevelBorough},
	{[]string{"city"}, model.LevelCity},
}

func matchLevel(s string, table []levelMatch) (model.ResolutionLevel, bool) {
	s = strings.ToLower(s)
	for _, m := range table {
		if containsAny(s, m.substrings) {
			return m.level, true
		}
	}
	return "", false
}

// NormalizeResolution maps a free-text hint such as "ZIP Code" or
// "Borough-level" to a canonical level.
func NormalizeResolution(hint string) (model.ResolutionLevel, bool) {
	if hint == "" {
		return "", false
	}
	return matchLevel(hint, hintLevels)
}

// LevelFromColumnName infers a level from a column name such as
// "pickup_latitude" or "borough_name".
func LevelFromColumnName(name string) (model.ResolutionLevel, bool) {
	return matchLevel(name, nameLevels)
}

// ResolutionLevels returns the distinct levels implied by the profile's
// resolution hints and column names, finest first.
func ResolutionLevels(p *model.DatasetSemanticProfile) []model.ResolutionLevel {
	seen := make(map[model.ResolutionLevel]struct{})
	for _, c := range p.Columns {
		if l, ok := NormalizeResolution(c.SpatialResolution); ok {
			seen[l] = struct{}{}
		}
		if l, ok := LevelFromColumnName(c.Name); ok {
			seen[l] = struct{}{}
		}
	}

	levels := make([]model.ResolutionLevel, 0, len(seen))
	for l := range seen {
		levels = append(levels, l)
	}
	slices.SortFunc(levels, func(a, b model.ResolutionLevel) int {
		return ResolutionPriority[a] - ResolutionPriority[b]
	})
	return levels
}

// InferSpatialResolution collapses the profile's level set: no levels is
// "unknown", one level is "<level>-level", several are "multi-level".
func InferSpatialResolution(p *model.DatasetSemanticProfile) model.SpatialResolution {
	return aggregateLevels(ResolutionLevels(p))
}

func aggregateLevels(levels []model.ResolutionLevel) model.SpatialResolution {
	switch len(levels) {
	case 0:
		return model.ResolutionUnknown
	case 1:
		return model.SingleLevel(levels[0])
	default:
		return model.ResolutionMulti
	}
}
