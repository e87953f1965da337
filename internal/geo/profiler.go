package geo

import (
	"go.uber.org/zap"

	"github.com/sells-group/geo-profiler/internal/model"
	"github.com/sells-group/geo-profiler/internal/semantic"
	"github.com/sells-group/geo-profiler/internal/table"
)

// Profiler runs the parse-then-classify pipeline. The zero value is ready to
// use; a Profiler holds no mutable state and is safe for concurrent use.
type Profiler struct {
	// Parser parses annotation text. Nil means semantic.NewParser().
	Parser *semantic.Parser
	// Logger receives one debug line per profile. Nil means zap.L().
	Logger *zap.Logger
}

// NewProfiler returns a Profiler using parser and the global logger.
func NewProfiler(parser *semantic.Parser) *Profiler {
	return &Profiler{Parser: parser}
}

func (p *Profiler) parser() *semantic.Parser {
	if p.Parser != nil {
		return p.Parser
	}
	return semantic.NewParser()
}

func (p *Profiler) log() *zap.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return zap.L()
}

// Classify derives the geo profile of already parsed column semantics.
func Classify(sem *model.DatasetSemanticProfile) *model.GeoProfile {
	role := InferSpatialRole(sem)
	geom := InferGeometryType(sem)
	return &model.GeoProfile{
		SpatialRole:       role,
		GeometryType:      geom,
		SpatialResolution: InferSpatialResolution(sem),
		SpatialUseCases:   SelectUseCases(sem, role, geom),
	}
}

// InferGeoProfile parses text against t and classifies the result. A column
// named in text but missing from t returns a *semantic.LookupError.
func (p *Profiler) InferGeoProfile(text string, t table.Table) (*model.GeoProfile, error) {
	enriched, err := p.ProfileDataset(text, t, nil)
	if err != nil {
		return nil, err
	}
	return enriched.GeoProfile, nil
}

// ProfileDataset returns the parsed semantics together with the geo profile
// and the caller's metadata, which is carried through unchanged.
func (p *Profiler) ProfileDataset(text string, t table.Table, meta map[string]any) (*model.EnrichedDatasetProfile, error) {
	sem, err := p.parser().Parse(text, t)
	if err != nil {
		return nil, err
	}

	geo := Classify(sem)
	p.log().Debug("geo: profiled dataset",
		zap.Int("columns", len(sem.Columns)),
		zap.Strings("spatial_columns", sem.SpatialColumns()),
		zap.String("spatial_role", string(geo.SpatialRole)),
		zap.String("geometry_type", string(geo.GeometryType)),
		zap.String("spatial_resolution", string(geo.SpatialResolution)),
	)

	return &model.EnrichedDatasetProfile{
		DatasetSemantics: sem,
		GeoProfile:       geo,
		RawMetadata:      meta,
	}, nil
}

// Explanation records which rule of each classifier produced the profile.
type Explanation struct {
	RoleRule         string                  `json:"role_rule" yaml:"role_rule"`
	GeometryRule     string                  `json:"geometry_rule" yaml:"geometry_rule"`
	ResolutionLevels []model.ResolutionLevel `json:"resolution_levels" yaml:"resolution_levels"`
	UseCaseFamily    UseCaseFamily           `json:"use_case_family" yaml:"use_case_family"`
}

// Explain reports the deciding rules for sem. Its results agree with Classify.
func Explain(sem *model.DatasetSemanticProfile) Explanation {
	role, roleRule := firstMatch(roleRules, sem, model.RoleUnknown)
	geom, geomRule := firstMatch(geometryRules, sem, model.GeometryUnknown)
	return Explanation{
		RoleRule:         roleRule,
		GeometryRule:     geomRule,
		ResolutionLevels: ResolutionLevels(sem),
		UseCaseFamily:    SelectUseCaseFamily(sem, role, geom),
	}
}
