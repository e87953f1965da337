package model

import (
	"fmt"
	"strings"
)

// SpatialRole classifies what the rows of a dataset represent geographically.
type SpatialRole string

// Spatial role values.
const (
	RoleEvent          SpatialRole = "event"
	RoleObservation    SpatialRole = "observation"
	RoleInfrastructure SpatialRole = "infrastructure"
	RoleBoundary       SpatialRole = "boundary"
	RoleUnknown        SpatialRole = "unknown"
)

// GeometryType is the dominant geometry encoded by a dataset's spatial columns.
type GeometryType string

// Geometry type values.
const (
	GeometryPoint    GeometryType = "point"
	GeometryPolygon  GeometryType = "polygon"
	GeometryPolyline GeometryType = "polyline"
	GeometryMulti    GeometryType = "multi"
	GeometryUnknown  GeometryType = "unknown"
)

// ResolutionLevel is a canonical spatial granularity.
type ResolutionLevel string

// Canonical resolution levels, finest first.
const (
	LevelCoordinates  ResolutionLevel = "coordinates"
	LevelStreet       ResolutionLevel = "street"
	LevelZip          ResolutionLevel = "zip"
	LevelNeighborhood ResolutionLevel = "neighborhood"
	LevelDistrict     ResolutionLevel = "district"
	LevelBorough      ResolutionLevel = "borough"
	LevelCity         ResolutionLevel = "city"
)

// SpatialResolution is the dataset-level resolution label: "<level>-level",
// "multi-level", or "unknown".
type SpatialResolution string

// Aggregate resolution values.
const (
	ResolutionMulti   SpatialResolution = "multi-level"
	ResolutionUnknown SpatialResolution = "unknown"
)

// SingleLevel returns the resolution label for exactly one level.
func SingleLevel(l ResolutionLevel) SpatialResolution {
	return SpatialResolution(string(l) + "-level")
}

// GeoProfile is the geospatial enrichment for one dataset.
type GeoProfile struct {
	SpatialRole       SpatialRole       `json:"spatial_role" yaml:"spatial_role"`
	GeometryType      GeometryType      `json:"geometry_type" yaml:"geometry_type"`
	SpatialResolution SpatialResolution `json:"spatial_resolution" yaml:"spatial_resolution"`
	SpatialUseCases   []string          `json:"spatial_use_cases" yaml:"spatial_use_cases"`
}

// Render formats the profile as the plain-text block embedded in description prompts.
func (g *GeoProfile) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Spatial role: %s\n", g.SpatialRole)
	fmt.Fprintf(&b, "Geometry type: %s\n", g.GeometryType)
	fmt.Fprintf(&b, "Spatial resolution: %s\n", g.SpatialResolution)
	fmt.Fprintf(&b, "Spatial use cases: %s", strings.Join(g.SpatialUseCases, ", "))
	return b.String()
}

// EnrichedDatasetProfile pairs parsed column semantics with the derived geo profile.
type EnrichedDatasetProfile struct {
	DatasetSemantics *DatasetSemanticProfile `json:"dataset_semantics" yaml:"dataset_semantics"`
	GeoProfile       *GeoProfile             `json:"geo_profile" yaml:"geo_profile"`
	RawMetadata      map[string]any          `json:"raw_metadata,omitempty" yaml:"raw_metadata,omitempty"`
}
