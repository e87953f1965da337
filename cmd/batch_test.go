package main

import (
	"context"
	"errors"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/geo-profiler/internal/model"
	"github.com/sells-group/geo-profiler/internal/table"
)

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "manifest.yaml", `
datasets:
  - name: 311-requests
    semantic: semantics/311.txt
    data: data/311.csv
    metadata:
      portal: nyc
  - semantic: /abs/parks.txt
    data: data/parks.xlsx
    sheet: Properties
  - semantic: permits.txt
    data: postgres:opendata.permits
  - semantic: trees.txt
    data: https://data.example.org/trees.csv
`)

	jobs, err := loadManifest(path)
	require.NoError(t, err)
	require.Len(t, jobs, 4)

	assert.Equal(t, "311-requests", jobs[0].Name)
	assert.Equal(t, filepath.Join(dir, "semantics/311.txt"), jobs[0].SemanticPath)
	assert.Equal(t, filepath.Join(dir, "data/311.csv"), jobs[0].Path)
	assert.Equal(t, map[string]any{"portal": "nyc"}, jobs[0].Metadata)

	assert.Equal(t, "data/parks.xlsx", jobs[1].Name)
	assert.Equal(t, "/abs/parks.txt", jobs[1].SemanticPath)
	assert.Equal(t, "Properties", jobs[1].Sheet)

	assert.Equal(t, "postgres:opendata.permits", jobs[2].Path)
	assert.Equal(t, "https://data.example.org/trees.csv", jobs[3].Path)
	assert.Equal(t, filepath.Join(dir, "trees.txt"), jobs[3].SemanticPath)
}

func TestLoadManifest_Errors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"empty", "", "manifest is empty"},
		{"missing data", "datasets:\n  - semantic: a.txt\n", "semantic and data are required"},
		{"unknown field", "datasets:\n  - semantic: a.txt\n    data: a.csv\n    colour: red\n", "parse manifest"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, dir, tt.name+".yaml", tt.content)
			_, err := loadManifest(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	_, err := loadManifest(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func okResult(role model.SpatialRole) *profileResult {
	return &profileResult{GeoProfile: &model.GeoProfile{SpatialRole: role, SpatialUseCases: []string{}}}
}

func TestProcessBatch_OrderAndFailures(t *testing.T) {
	jobs := []datasetJob{
		{Name: "a", Source: table.Source{Path: "a.csv"}},
		{Name: "b", Source: table.Source{Path: "b.csv"}},
		{Name: "c", Source: table.Source{Path: "c.csv"}},
	}

	results, failed := processBatch(context.Background(), jobs, 2, func(_ context.Context, job datasetJob) (*profileResult, error) {
		if job.Name == "b" {
			return nil, errors.New("column not found")
		}
		return okResult(model.RoleObservation), nil
	})

	assert.Equal(t, 1, failed)
	require.Len(t, results, 3)
	assert.Equal(t, "a", results[0].Dataset)
	assert.Equal(t, model.RoleObservation, results[0].GeoProfile.SpatialRole)
	assert.Equal(t, "b", results[1].Dataset)
	assert.Equal(t, "column not found", results[1].Error)
	assert.Nil(t, results[1].GeoProfile)
	assert.Equal(t, "c", results[2].Dataset)
}

func TestProcessBatch_RespectsConcurrency(t *testing.T) {
	jobs := make([]datasetJob, 8)
	for i := range jobs {
		jobs[i].Name = string(rune('a' + i))
	}

	var running, peak atomic.Int32
	_, failed := processBatch(context.Background(), jobs, 3, func(_ context.Context, _ datasetJob) (*profileResult, error) {
		n := running.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		running.Add(-1)
		return okResult(model.RoleUnknown), nil
	})

	assert.Zero(t, failed)
	assert.LessOrEqual(t, peak.Load(), int32(3))
}

func TestProcessBatch_Empty(t *testing.T) {
	results, failed := processBatch(context.Background(), nil, 2, nil)
	assert.Empty(t, results)
	assert.Zero(t, failed)
}

func TestProcessBatch_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	complaintsFixture(t, dir)
	writeFile(t, dir, "broken.txt", "**Missing**: Contains spatial data.")
	path := writeFile(t, dir, "manifest.yaml", `
datasets:
  - name: complaints
    semantic: 311.txt
    data: 311.csv
  - name: broken
    semantic: broken.txt
    data: 311.csv
`)

	jobs, err := loadManifest(path)
	require.NoError(t, err)

	c := testConfig()
	loader := newSourceLoader(c)
	defer loader.Close()
	profiler := newProfiler(c)

	results, failed := processBatch(context.Background(), jobs, 2, func(ctx context.Context, job datasetJob) (*profileResult, error) {
		return profileJob(ctx, profiler, loader, job, outputOptions{})
	})

	assert.Equal(t, 1, failed)
	assert.Equal(t, model.RoleEvent, results[0].GeoProfile.SpatialRole)
	assert.Contains(t, results[1].Error, `"Missing"`)
}
