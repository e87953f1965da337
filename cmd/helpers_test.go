package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sells-group/geo-profiler/internal/config"
)

const complaintsSemantics = `**Created Date**: Contains temporal data. Represents when the complaint was opened.

**Complaint Type**: Domain-specific type: 311 complaint category.

**Location**: Contains spatial data (resolution: Coordinates). Represents a point location.
`

const complaintsCSV = `Unique Key,Created Date,Complaint Type,Location
1,2024-03-01,Noise,"(40.71, -73.99)"
2,2024-03-02,Heat,"(40.72, -73.98)"
3,2024-03-03,Rodent,
`

const complaintsText = `Spatial role: event
Geometry type: point
Spatial resolution: coordinates-level
Spatial use cases: spatio-temporal incident analysis, hotspot mapping, event clustering, trend analysis over time
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// complaintsFixture writes the 311 annotation and CSV into dir.
func complaintsFixture(t *testing.T, dir string) (semanticPath, dataPath string) {
	t.Helper()
	return writeFile(t, dir, "311.txt", complaintsSemantics), writeFile(t, dir, "311.csv", complaintsCSV)
}

func testConfig() *config.Config {
	c := &config.Config{}
	c.Sample.Size = 3
	c.Batch.MaxConcurrentDatasets = 2
	c.Server.Port = 8080
	c.Server.RateLimit = 10
	c.Server.Burst = 10
	return c
}
