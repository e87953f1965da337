// Package semantic parses free-text column annotations into per-column
// semantic records and enriches them with sample values from the dataset.
//
// The annotation format is a sequence of blocks, each introduced by a bolded
// header line:
//
//	**complaint_type**: Contains categorical data. Domain-specific type: 311 complaint category.
//	**location**: Contains spatial data (resolution: Coordinates). Represents a point location.
//
// Within a block the parser recognizes these exact markers:
//
//	Contains spatial data            sets IsSpatial; enables "resolution: <value>)"
//	Contains temporal data           sets IsTemporal
//	Domain-specific type: <value>.   sets DomainType
//	Function/Usage context: <value>. sets Function
//	Represents <value>.              sets RawType
package semantic

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/sells-group/geo-profiler/internal/model"
	"github.com/sells-group/geo-profiler/internal/table"
)

// DefaultSampleSize is the number of sample values kept per column.
const DefaultSampleSize = 3

var headerRe = regexp.MustCompile(`\*\*(.*?)\*\*:`)

type fieldKind int

const (
	fieldSpatial fieldKind = iota
	fieldSpatialResolution
	fieldTemporal
	fieldDomainType
	fieldFunction
	fieldRawType
)

// extractor recognizes one marker inside a column block. Flag extractors set a
// boolean when marker is present; value extractors capture the first group of
// pattern. Spatial-only extractors run only once the spatial flag is set.
type extractor struct {
	kind        fieldKind
	marker      string
	pattern     *regexp.Regexp
	spatialOnly bool
}

// extractors run in order against every block.
var extractors = []extractor{
	{kind: fieldSpatial, marker: "Contains spatial data"},
	{kind: fieldSpatialResolution, pattern: regexp.MustCompile(`resolution:\s*([^)]+)`), spatialOnly: true},
	{kind: fieldTemporal, marker: "Contains temporal data"},
	{kind: fieldDomainType, pattern: regexp.MustCompile(`Domain-specific type:\s*([^.]+)`)},
	{kind: fieldFunction, pattern: regexp.MustCompile(`Function/Usage context:\s*([^.]+)`)},
	{kind: fieldRawType, pattern: regexp.MustCompile(`Represents\s*([^.]+)`)},
}

// Option configures a Parser.
type Option func(*Parser)

// WithSampleSize sets how many non-missing values are sampled per column.
func WithSampleSize(n int) Option {
	return func(p *Parser) {
		if n > 0 {
			p.sampleSize = n
		}
	}
}

// WithNAValues replaces the cell values treated as missing.
func WithNAValues(values []string) Option {
	return func(p *Parser) {
		p.naValues = values
	}
}

// Parser converts annotation text plus tabular data into a DatasetSemanticProfile.
// A Parser holds no mutable state and is safe for concurrent use.
type Parser struct {
	sampleSize int
	naValues   []string
	sampler    *table.Sampler
}

// NewParser returns a Parser with the given options applied.
func NewParser(opts ...Option) *Parser {
	p := &Parser{sampleSize: DefaultSampleSize}
	for _, opt := range opts {
		opt(p)
	}
	p.sampler = table.NewSampler(p.sampleSize, p.naValues)
	return p
}

// Parse parses text into column semantics and attaches sample values from t.
// A column named in text but absent from t yields a *LookupError and no profile.
// Text without any column header yields an empty profile.
func (p *Parser) Parse(text string, t table.Table) (*model.DatasetSemanticProfile, error) {
	cols := ParseAnnotations(text)

	for i := range cols {
		var values []string
		var ok bool
		if t != nil {
			values, ok = t.Column(cols[i].Name)
		}
		if !ok {
			return nil, &LookupError{Column: cols[i].Name}
		}
		cols[i].SampleValues = p.sampler.Sample(values)
	}

	return &model.DatasetSemanticProfile{Columns: cols}, nil
}

// Parse parses text with a default Parser.
func Parse(text string, t table.Table) (*model.DatasetSemanticProfile, error) {
	return NewParser().Parse(text, t)
}

// ParseAnnotations splits text into column blocks and extracts each block's
// markers. Sample values are left empty. Column order and duplicates are
// preserved; text before the first header is ignored.
func ParseAnnotations(text string) []model.ColumnSemantic {
	text = norm.NFC.String(text)

	headers := headerRe.FindAllStringSubmatchIndex(text, -1)
	cols := make([]model.ColumnSemantic, 0, len(headers))
	for i, h := range headers {
		end := len(text)
		if i+1 < len(headers) {
			end = headers[i+1][0]
		}
		col := model.ColumnSemantic{
			Name:         strings.TrimSpace(text[h[2]:h[3]]),
			SampleValues: []string{},
		}
		parseBlock(&col, text[h[1]:end])
		cols = append(cols, col)
	}
	return cols
}

func parseBlock(col *model.ColumnSemantic, block string) {
	for _, ex := range extractors {
		if ex.spatialOnly && !col.IsSpatial {
			continue
		}

		var value string
		if ex.pattern == nil {
			if !strings.Contains(block, ex.marker) {
				continue
			}
		} else {
			m := ex.pattern.FindStringSubmatch(block)
			if m == nil {
				continue
			}
			value = strings.TrimSpace(m[1])
		}

		switch ex.kind {
		case fieldSpatial:
			col.IsSpatial = true
		case fieldSpatialResolution:
			col.SpatialResolution = value
		case fieldTemporal:
			col.IsTemporal = true
		case fieldDomainType:
			col.DomainType = value
		case fieldFunction:
			col.Function = value
		case fieldRawType:
			col.RawType = value
		}
	}
}
