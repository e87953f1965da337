package table

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
)

// ReadShapefileZIP extracts a zipped shapefile bundle into a fresh directory
// under tempDir and reads its single .shp member.
func ReadShapefileZIP(zipPath, tempDir string, maxRows int) (*Frame, error) {
	dir, err := os.MkdirTemp(tempDir, "shp-*")
	if err != nil {
		return nil, eris.Wrap(err, "table: zip: create temp dir")
	}
	defer func() { _ = os.RemoveAll(dir) }()

	extracted, err := ExtractZIP(zipPath, dir)
	if err != nil {
		return nil, err
	}

	var shpPaths []string
	for _, p := range extracted {
		if strings.EqualFold(filepath.Ext(p), ".shp") {
			shpPaths = append(shpPaths, p)
		}
	}
	if len(shpPaths) != 1 {
		return nil, eris.Errorf("table: zip: expected exactly 1 .shp file in %s, got %d", zipPath, len(shpPaths))
	}

	return ReadShapefile(shpPaths[0], maxRows)
}

// ExtractZIP extracts all files from a ZIP archive to the destination directory.
// Returns the list of extracted file paths.
func ExtractZIP(zipPath, destDir string) ([]string, error) {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, eris.Wrap(err, "table: zip: open archive")
	}
	defer r.Close() //nolint:errcheck

	var extracted []string
	for _, f := range r.File {
		path, err := extractZIPEntry(f, destDir)
		if err != nil {
			return extracted, err
		}
		if path != "" {
			extracted = append(extracted, path)
		}
	}

	return extracted, nil
}

// extractZIPEntry extracts a single zip.File to the destination directory.
// Returns the extracted file path, or empty string for directories.
func extractZIPEntry(f *zip.File, destDir string) (string, error) {
	destPath := filepath.Join(destDir, f.Name)
	if !strings.HasPrefix(filepath.Clean(destPath), filepath.Clean(destDir)+string(os.PathSeparator)) {
		return "", eris.Errorf("table: zip: illegal path %q (zip slip attempt)", f.Name)
	}

	if f.FileInfo().IsDir() {
		if err := os.MkdirAll(destPath, 0o755); err != nil {
			return "", eris.Wrap(err, "table: zip: create directory")
		}
		return "", nil
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return "", eris.Wrap(err, "table: zip: create parent directory")
	}

	rc, err := f.Open()
	if err != nil {
		return "", eris.Wrap(err, "table: zip: open entry")
	}
	defer rc.Close() //nolint:errcheck

	out, err := os.Create(destPath)
	if err != nil {
		return "", eris.Wrap(err, "table: zip: create file")
	}
	defer out.Close() //nolint:errcheck

	if _, err := io.Copy(out, rc); err != nil {
		return "", eris.Wrap(err, "table: zip: write file")
	}

	return destPath, nil
}
