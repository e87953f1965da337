package table

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
)

// Source kinds.
const (
	KindCSV        = "csv"
	KindTSV        = "tsv"
	KindXLSX       = "xlsx"
	KindShapefile  = "shapefile"
	KindShapeZIP   = "shapefile-zip"
	KindGeoJSON    = "geojson"
	KindSQLite     = "sqlite"
	KindPostgres   = "postgres"
	postgresPrefix = "postgres:"
)

// Source identifies a dataset to load.
type Source struct {
	Path  string `yaml:"data" json:"data"`
	Kind  string `yaml:"kind,omitempty" json:"kind,omitempty"`   // detected from Path when empty
	Sheet string `yaml:"sheet,omitempty" json:"sheet,omitempty"` // XLSX sheet name
	Table string `yaml:"table,omitempty" json:"table,omitempty"` // SQLite or PostgreSQL table
}

// Options configures loading shared across sources.
type Options struct {
	MaxRows    int
	TempDir    string
	Pool       Pool       // required for postgres sources
	Downloader Downloader // required for http(s) sources
}

// DetectKind infers the source kind from a path. Paths of the form
// "postgres:<schema.table>" select a PostgreSQL table; URLs are detected by
// the extension of their path.
func DetectKind(path string) string {
	if strings.HasPrefix(path, postgresPrefix) {
		return KindPostgres
	}
	if IsRemote(path) {
		path = remoteName(path)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt":
		return KindCSV
	case ".tsv", ".tab":
		return KindTSV
	case ".xlsx":
		return KindXLSX
	case ".shp":
		return KindShapefile
	case ".zip":
		return KindShapeZIP
	case ".geojson", ".json":
		return KindGeoJSON
	case ".db", ".sqlite", ".sqlite3":
		return KindSQLite
	}
	return ""
}

// Open loads the source into a Frame. Remote sources are downloaded first and
// removed once loaded.
func Open(ctx context.Context, src Source, opts Options) (*Frame, error) {
	if IsRemote(src.Path) {
		local, cleanup, err := fetchRemote(ctx, src, opts)
		if err != nil {
			return nil, err
		}
		defer cleanup()
		src = local
	}

	kind := src.Kind
	if kind == "" {
		kind = DetectKind(src.Path)
	}

	switch kind {
	case KindCSV, KindTSV:
		f, err := os.Open(src.Path)
		if err != nil {
			return nil, eris.Wrapf(err, "table: open %s", src.Path)
		}
		defer f.Close() //nolint:errcheck
		csvOpts := CSVOptions{LazyQuotes: true, MaxRows: opts.MaxRows}
		if kind == KindTSV {
			csvOpts.Delimiter = '\t'
		}
		return ReadCSV(ctx, f, csvOpts)

	case KindXLSX:
		return ReadXLSX(src.Path, XLSXOptions{SheetName: src.Sheet, MaxRows: opts.MaxRows})

	case KindShapefile:
		return ReadShapefile(src.Path, opts.MaxRows)

	case KindShapeZIP:
		return ReadShapefileZIP(src.Path, opts.TempDir, opts.MaxRows)

	case KindGeoJSON:
		f, err := os.Open(src.Path)
		if err != nil {
			return nil, eris.Wrapf(err, "table: open %s", src.Path)
		}
		defer f.Close() //nolint:errcheck
		return ReadGeoJSON(f, opts.MaxRows)

	case KindSQLite:
		return ReadSQLite(ctx, src.Path, src.Table, opts.MaxRows)

	case KindPostgres:
		if opts.Pool == nil {
			return nil, eris.New("table: postgres source requires a database connection")
		}
		name := src.Table
		if name == "" {
			name = strings.TrimPrefix(src.Path, postgresPrefix)
		}
		return ReadPostgres(ctx, opts.Pool, name, opts.MaxRows)
	}

	return nil, eris.Errorf("table: unsupported source %q (kind %q)", src.Path, kind)
}
