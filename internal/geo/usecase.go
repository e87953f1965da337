package geo

import (
	"slices"

	"github.com/sells-group/geo-profiler/internal/model"
)

// UseCaseFamily names a fixed list of spatial analysis use cases.
type UseCaseFamily string

// Use case families.
const (
	FamilyBoundary         UseCaseFamily = "boundary"
	FamilyInfrastructure   UseCaseFamily = "infrastructure"
	FamilyEventTemporal    UseCaseFamily = "event_temporal"
	FamilyEventSpatialOnly UseCaseFamily = "event_spatial_only"
	FamilyObservation      UseCaseFamily = "observation"
	FamilyPolyline         UseCaseFamily = "polyline"
	FamilyMulti            UseCaseFamily = "multi"
	FamilyNone             UseCaseFamily = "none"
)

var useCaseLists = map[UseCaseFamily][]string{
	FamilyBoundary: {
		"area-based aggregation",
		"choropleth visualization",
		"administrative-region analysis",
	},
	FamilyInfrastructure: {
		"accessibility mapping",
		"navigation support",
		"facility density analysis",
	},
	FamilyEventTemporal: {
		"spatio-temporal incident analysis",
		"hotspot mapping",
		"event clustering",
		"trend analysis over time",
	},
	FamilyEventSpatialOnly: {
		"hotspot detection",
		"spatial clustering",
	},
	FamilyObservation: {
		"location inventory",
		"sensor mapping",
		"proximity analysis",
	},
	FamilyPolyline: {
		"route analysis",
		"street-segment mapping",
		"mobility pathway visualization",
	},
	FamilyMulti: {
		"combined geometric overlays",
		"multi-layer spatial visualization",
	},
}

type useCaseRule struct {
	family UseCaseFamily
	match  func(role model.SpatialRole, geom model.GeometryType, temporal bool) bool
}

var useCaseRules = []useCaseRule{
	{FamilyBoundary, func(r model.SpatialRole, _ model.GeometryType, _ bool) bool {
		return r == model.RoleBoundary
	}},
	{FamilyInfrastructure, func(r model.SpatialRole, _ model.GeometryType, _ bool) bool {
		return r == model.RoleInfrastructure
	}},
	{FamilyEventTemporal, func(r model.SpatialRole, _ model.GeometryType, temporal bool) bool {
		return r == model.RoleEvent && temporal
	}},
	{FamilyEventSpatialOnly, func(r model.SpatialRole, _ model.GeometryType, _ bool) bool {
		return r == model.RoleEvent
	}},
	{FamilyObservation, func(r model.SpatialRole, _ model.GeometryType, _ bool) bool {
		return r == model.RoleObservation
	}},
	{FamilyPolyline, func(_ model.SpatialRole, g model.GeometryType, _ bool) bool {
		return g == model.GeometryPolyline
	}},
	{FamilyMulti, func(_ model.SpatialRole, g model.GeometryType, _ bool) bool {
		return g == model.GeometryMulti
	}},
}

// UseCases returns a copy of the list for family. Unknown families and
// FamilyNone yield an empty list.
func UseCases(family UseCaseFamily) []string {
	list, ok := useCaseLists[family]
	if !ok {
		return []string{}
	}
	return slices.Clone(list)
}

// SelectUseCaseFamily picks the use case family for an already classified
// dataset. Role decides first; geometry is consulted only for roles without
// a family of their own.
func SelectUseCaseFamily(p *model.DatasetSemanticProfile, role model.SpatialRole, geom model.GeometryType) UseCaseFamily {
	temporal := p.HasTemporal()
	for _, r := range useCaseRules {
		if r.match(role, geom, temporal) {
			return r.family
		}
	}
	return FamilyNone
}

// SelectUseCases returns the use case list for the dataset.
func SelectUseCases(p *model.DatasetSemanticProfile, role model.SpatialRole, geom model.GeometryType) []string {
	return UseCases(SelectUseCaseFamily(p, role, geom))
}
