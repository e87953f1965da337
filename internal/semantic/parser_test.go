package semantic

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/geo-profiler/internal/model"
	"github.com/sells-group/geo-profiler/internal/table"
)

const complaintsProfile = `Semantic profile generated for 311 service requests.

**Unique Key**: Contains categorical data. Domain-specific type: Identifier. Function/Usage context: Primary key for each request.

**Created Date**: Contains temporal data. Represents the time a request was opened.

**Complaint Type**: Domain-specific type: Complaint category. Function/Usage context: Groups requests by issue.

**Location**: Contains spatial data (resolution: Coordinates ). Represents a geographic point.
`

func complaintsTable() *table.Frame {
	return table.FromColumns(
		[]string{"Unique Key", "Created Date", "Complaint Type", "Location"},
		map[string][]string{
			"Unique Key":     {"1", "2", "3", "4"},
			"Created Date":   {"2024-01-01", "", "2024-01-03", "2024-01-04"},
			"Complaint Type": {"Noise", "NaN", "", "Heat"},
			"Location":       {"", "POINT (-73.9 40.7)", "POINT (-73.8 40.6)", "POINT (-73.7 40.5)"},
		},
	)
}

func TestParseAnnotations_Markers(t *testing.T) {
	t.Parallel()

	cols := ParseAnnotations(complaintsProfile)
	require.Len(t, cols, 4)

	assert.Equal(t, "Unique Key", cols[0].Name)
	assert.False(t, cols[0].IsSpatial)
	assert.False(t, cols[0].IsTemporal)
	assert.Equal(t, "Identifier", cols[0].DomainType)
	assert.Equal(t, "Primary key for each request", cols[0].Function)
	assert.Empty(t, cols[0].RawType)

	assert.Equal(t, "Created Date", cols[1].Name)
	assert.True(t, cols[1].IsTemporal)
	assert.Equal(t, "the time a request was opened", cols[1].RawType)

	assert.Equal(t, "Complaint Type", cols[2].Name)
	assert.Equal(t, "Complaint category", cols[2].DomainType)
	assert.Equal(t, "Groups requests by issue", cols[2].Function)

	assert.Equal(t, "Location", cols[3].Name)
	assert.True(t, cols[3].IsSpatial)
	assert.Equal(t, "Coordinates", cols[3].SpatialResolution)
	assert.Equal(t, "a geographic point", cols[3].RawType)
}

func TestParseAnnotations_ResolutionRequiresSpatialMarker(t *testing.T) {
	t.Parallel()

	cols := ParseAnnotations("**zip**: Values at resolution: ZIP Code) level.")
	require.Len(t, cols, 1)
	assert.False(t, cols[0].IsSpatial)
	assert.Empty(t, cols[0].SpatialResolution)
}

func TestParseAnnotations_ResolutionWithoutClosingParen(t *testing.T) {
	t.Parallel()

	cols := ParseAnnotations("**zip**: Contains spatial data, resolution: ZIP Code")
	require.Len(t, cols, 1)
	assert.True(t, cols[0].IsSpatial)
	assert.Equal(t, "ZIP Code", cols[0].SpatialResolution)
}

func TestParseAnnotations_ResolutionSpansLines(t *testing.T) {
	t.Parallel()

	cols := ParseAnnotations("**zip**: Contains spatial data (resolution: ZIP\nCode). Represents a postal area.\n\n" +
		"**geo**: Contains spatial data, resolution: Borough\nRepresents a district name\n\n**next**: plain.")
	require.Len(t, cols, 3)
	assert.Equal(t, "ZIP\nCode", cols[0].SpatialResolution)
	// Without a closing paren the hint runs to the end of the column block.
	assert.Equal(t, "Borough\nRepresents a district name", cols[1].SpatialResolution)
	assert.Empty(t, cols[2].SpatialResolution)
}

func TestParseAnnotations_OrderAndDuplicatesPreserved(t *testing.T) {
	t.Parallel()

	cols := ParseAnnotations("**b**: x. **a**: y. **b**: Contains spatial data.")
	require.Len(t, cols, 3)
	assert.Equal(t, "b", cols[0].Name)
	assert.Equal(t, "a", cols[1].Name)
	assert.Equal(t, "b", cols[2].Name)
	assert.False(t, cols[0].IsSpatial)
	assert.True(t, cols[2].IsSpatial)
}

func TestParseAnnotations_MarkersDoNotLeakAcrossBlocks(t *testing.T) {
	t.Parallel()

	cols := ParseAnnotations("**a**: Contains temporal data.\n**b**: plain text.")
	require.Len(t, cols, 2)
	assert.True(t, cols[0].IsTemporal)
	assert.False(t, cols[1].IsTemporal)
}

func TestParseAnnotations_EmptyAndMalformed(t *testing.T) {
	t.Parallel()

	for _, text := range []string{"", "no headers here", "**unterminated: text", "*single*: x"} {
		assert.Empty(t, ParseAnnotations(text), text)
	}
}

func TestParseAnnotations_NormalizesUnicode(t *testing.T) {
	t.Parallel()

	cols := ParseAnnotations("**Cafe\u0301**: Contains spatial data.")
	require.Len(t, cols, 1)
	assert.Equal(t, "Caf\u00e9", cols[0].Name)
}

func TestParse_SampleValues(t *testing.T) {
	t.Parallel()

	profile, err := Parse(complaintsProfile, complaintsTable())
	require.NoError(t, err)
	require.Len(t, profile.Columns, 4)

	assert.Equal(t, []string{"1", "2", "3"}, profile.Columns[0].SampleValues)
	assert.Equal(t, []string{"2024-01-01", "2024-01-03", "2024-01-04"}, profile.Columns[1].SampleValues)
	assert.Equal(t, []string{"Noise", "Heat"}, profile.Columns[2].SampleValues)
	assert.Equal(t, []string{"POINT (-73.9 40.7)", "POINT (-73.8 40.6)", "POINT (-73.7 40.5)"}, profile.Columns[3].SampleValues)
}

func TestParse_SampleSizeOption(t *testing.T) {
	t.Parallel()

	p := NewParser(WithSampleSize(1), WithNAValues([]string{}))
	profile, err := p.Parse(complaintsProfile, complaintsTable())
	require.NoError(t, err)

	assert.Equal(t, []string{"1"}, profile.Columns[0].SampleValues)
	// With no NA tokens configured, "NaN" is a real value.
	assert.Equal(t, []string{"Noise"}, profile.Columns[2].SampleValues)
}

func TestParse_MissingColumnIsLookupError(t *testing.T) {
	t.Parallel()

	text := complaintsProfile + "\n**Borough**: Contains spatial data (resolution: Borough)."

	profile, err := Parse(text, complaintsTable())
	require.Error(t, err)
	assert.Nil(t, profile)

	var lookupErr *LookupError
	require.True(t, errors.As(err, &lookupErr))
	assert.Equal(t, "Borough", lookupErr.Column)
	assert.True(t, errors.Is(err, ErrColumnNotFound))
	assert.Contains(t, err.Error(), `"Borough"`)
}

func TestParse_NilTable(t *testing.T) {
	t.Parallel()

	_, err := Parse("**a**: x.", nil)
	require.ErrorIs(t, err, ErrColumnNotFound)

	profile, err := Parse("", nil)
	require.NoError(t, err)
	assert.Empty(t, profile.Columns)
}

func TestParse_EmptyTextSkipsTable(t *testing.T) {
	t.Parallel()

	profile, err := Parse("nothing to see", table.NewFrame(nil, nil))
	require.NoError(t, err)
	assert.Equal(t, &model.DatasetSemanticProfile{Columns: []model.ColumnSemantic{}}, profile)
}

func TestParse_Concurrent(t *testing.T) {
	t.Parallel()

	p := NewParser()
	tbl := complaintsTable()
	want, err := p.Parse(complaintsProfile, tbl)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := p.Parse(complaintsProfile, tbl)
			assert.NoError(t, err)
			assert.Equal(t, want, got)
		}()
	}
	wg.Wait()
}
