package geo

import (
	"regexp"
	"strings"

	"github.com/sells-group/geo-profiler/internal/model"
)

// Column-name keyword sets, checked in this priority order.
var (
	MultiKeywords   = []string{"multipolygon", "multilinestring", "multipoint"}
	PolygonKeywords = []string{"polygon", "boundary"}
	LineKeywords    = []string{"line", "linestring", "route", "segment", "road_segment"}
	PointKeywords   = []string{"latitude", "longitude", "lat", "lon", "coordinates"}
)

// WKT / GeoJSON type names in sample values. Multi is tested first so
// MULTIPOLYGON is not read as POLYGON.
var sampleGeometryPatterns = []struct {
	re   *regexp.Regexp
	geom model.GeometryType
}{
	{regexp.MustCompile(`(?i)\bMULTI(POLYGON|LINESTRING|POINT)\b`), model.GeometryMulti},
	{regexp.MustCompile(`(?i)\bPOLYGON\b`), model.GeometryPolygon},
	{regexp.MustCompile(`(?i)\bLINESTRING\b`), model.GeometryPolyline},
	{regexp.MustCompile(`(?i)\bPOINT\b`), model.GeometryPoint},
}

var geometryRules = []rule[model.GeometryType]{
	{name: "sample values", apply: geometryFromSamples},
	{name: "raw type", apply: geometryFromRawType},
	when("coordinate resolution", model.GeometryPoint, func(p *model.DatasetSemanticProfile) bool {
		for _, c := range p.Columns {
			if strings.ToLower(c.SpatialResolution) == string(model.LevelCoordinates) {
				return true
			}
		}
		return false
	}),
	when("multi column name", model.GeometryMulti, func(p *model.DatasetSemanticProfile) bool {
		return anyNameContains(p, MultiKeywords)
	}),
	when("polygon column name", model.GeometryPolygon, func(p *model.DatasetSemanticProfile) bool {
		return anyNameContains(p, PolygonKeywords)
	}),
	when("line column name", model.GeometryPolyline, func(p *model.DatasetSemanticProfile) bool {
		return anyNameContains(p, LineKeywords)
	}),
	when("point column name", model.GeometryPoint, func(p *model.DatasetSemanticProfile) bool {
		return anyNameContains(p, PointKeywords)
	}),
}

// InferGeometryType returns the dominant geometry type. Evidence ranks as
// sample values, then raw types, then a coordinate resolution hint, then
// column names; within a rank the first column in profile order decides.
func InferGeometryType(p *model.DatasetSemanticProfile) model.GeometryType {
	g, _ := firstMatch(geometryRules, p, model.GeometryUnknown)
	return g
}

func geometryFromSamples(p *model.DatasetSemanticProfile) (model.GeometryType, bool) {
	for _, c := range p.Columns {
		if len(c.SampleValues) == 0 {
			continue
		}
		joined := strings.Join(c.SampleValues, " ")
		for _, sp := range sampleGeometryPatterns {
			if sp.re.MatchString(joined) {
				return sp.geom, true
			}
		}
	}
	return "", false
}

func geometryFromRawType(p *model.DatasetSemanticProfile) (model.GeometryType, bool) {
	for _, c := range p.Columns {
		if c.RawType == "" {
			continue
		}
		rt := strings.ToLower(c.RawType)
		switch {
		case strings.Contains(rt, "multipolygon") || strings.Contains(rt, "multiline"):
			return model.GeometryMulti, true
		case strings.Contains(rt, "polygon"):
			return model.GeometryPolygon, true
		case strings.Contains(rt, "line"):
			return model.GeometryPolyline, true
		case strings.Contains(rt, "geo") || strings.Contains(rt, "coordinate"):
			return model.GeometryPoint, true
		}
	}
	return "", false
}
