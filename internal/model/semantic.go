// Package model defines the column semantic and geospatial profile types shared by the parser and classifiers.
package model

// ColumnSemantic is the parsed semantic annotation for a single dataset column.
// Empty strings mean the corresponding marker was absent from the annotation.
type ColumnSemantic struct {
	Name              string   `json:"name" yaml:"name"`
	IsSpatial         bool     `json:"is_spatial" yaml:"is_spatial"`
	SpatialResolution string   `json:"spatial_resolution,omitempty" yaml:"spatial_resolution,omitempty"`
	IsTemporal        bool     `json:"is_temporal" yaml:"is_temporal"`
	DomainType        string   `json:"domain_type,omitempty" yaml:"domain_type,omitempty"`
	Function          string   `json:"function,omitempty" yaml:"function,omitempty"`
	RawType           string   `json:"raw_type,omitempty" yaml:"raw_type,omitempty"`
	SampleValues      []string `json:"sample_values" yaml:"sample_values"`
}

// DatasetSemanticProfile is the ordered list of column semantics for one dataset.
// Column order follows the annotation text and decides ties where classifiers
// stop at the first matching column.
type DatasetSemanticProfile struct {
	Columns []ColumnSemantic `json:"columns" yaml:"columns"`
}

// HasSpatial reports whether any column carries spatial data.
func (p *DatasetSemanticProfile) HasSpatial() bool {
	for _, c := range p.Columns {
		if c.IsSpatial {
			return true
		}
	}
	return false
}

// HasTemporal reports whether any column carries temporal data.
func (p *DatasetSemanticProfile) HasTemporal() bool {
	for _, c := range p.Columns {
		if c.IsTemporal {
			return true
		}
	}
	return false
}

// SpatialColumns returns the names of spatial columns in profile order.
func (p *DatasetSemanticProfile) SpatialColumns() []string {
	var names []string
	for _, c := range p.Columns {
		if c.IsSpatial {
			names = append(names, c.Name)
		}
	}
	return names
}
