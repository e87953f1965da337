package geo

import (
	"strings"

	"github.com/sells-group/geo-profiler/internal/model"
)

// EventKeywords mark columns typical of event records (311 complaints, inspections).
var EventKeywords = []string{"complaint", "incident", "request", "service", "violation", "call", "ticket", "case", "report", "inspection"}

// InfrastructureKeywords mark columns typical of fixed facilities.
var InfrastructureKeywords = []string{"station", "stop", "entrance", "facility", "subway", "school", "hospital", "bridge", "tunnel", "park", "library"}

// BoundaryKeywords name administrative-unit columns. Reserved: the boundary
// rule does not consult it.
var BoundaryKeywords = []string{"district", "tract", "zone", "boundary", "polygon", "shape_area", "shape_len", "borough_boundary", "precinct"}

var (
	areaResolutions  = []string{"region", "area", "polygon"}
	pointResolutions = []string{"coordinates", "street", "zip", "borough"}
	shapeColumnNames = []string{"shape_area", "shape_leng"}
)

var roleRules = []rule[model.SpatialRole]{
	when("polygon semantics", model.RoleBoundary, hasPolygonSemantics),
	when("temporal point-like events", model.RoleEvent, func(p *model.DatasetSemanticProfile) bool {
		return p.HasTemporal() && hasPointLikeSpatial(p) && anyNameContains(p, EventKeywords)
	}),
	when("spatial facilities", model.RoleInfrastructure, func(p *model.DatasetSemanticProfile) bool {
		return p.HasSpatial() && anyNameContains(p, InfrastructureKeywords)
	}),
	when("spatial", model.RoleObservation, func(p *model.DatasetSemanticProfile) bool {
		return p.HasSpatial()
	}),
}

// InferSpatialRole classifies the dataset as boundary, event, infrastructure,
// observation, or unknown, in that precedence.
func InferSpatialRole(p *model.DatasetSemanticProfile) model.SpatialRole {
	role, _ := firstMatch(roleRules, p, model.RoleUnknown)
	return role
}

// hasPolygonSemantics reports whether any spatial column describes areas:
// a polygon raw type, an area-like resolution hint, or ESRI shape_area /
// shape_leng naming.
func hasPolygonSemantics(p *model.DatasetSemanticProfile) bool {
	for _, c := range p.Columns {
		if !c.IsSpatial {
			continue
		}
		if strings.Contains(strings.ToLower(c.RawType), "polygon") ||
			oneOf(strings.ToLower(c.SpatialResolution), areaResolutions) ||
			containsAny(strings.ToLower(c.Name), shapeColumnNames) {
			return true
		}
	}
	return false
}

func hasPointLikeSpatial(p *model.DatasetSemanticProfile) bool {
	for _, c := range p.Columns {
		if c.IsSpatial && oneOf(strings.ToLower(c.SpatialResolution), pointResolutions) {
			return true
		}
	}
	return false
}
