package table

import (
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/wkt"
	"go.uber.org/zap"
)

// GeometryColumn is the column name under which shapefile and GeoJSON
// geometries are exposed, encoded as WKT.
const GeometryColumn = "geometry"

// ReadShapefile reads a shapefile's attribute table into a Frame and appends
// a GeometryColumn holding each record's shape as WKT.
func ReadShapefile(path string, maxRows int) (*Frame, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "table: shapefile: open %s", path)
	}
	defer func() { _ = reader.Close() }()

	fields := reader.Fields()
	header := make([]string, 0, len(fields)+1)
	for _, f := range fields {
		header = append(header, strings.TrimRight(f.String(), "\x00"))
	}
	header = append(header, GeometryColumn)

	var rows [][]string
	var skipped int
	for reader.Next() {
		if maxRows > 0 && len(rows) >= maxRows {
			break
		}
		n, shape := reader.Shape()

		row := make([]string, 0, len(header))
		for i := range fields {
			val := strings.TrimRight(reader.Attribute(i), "\x00")
			row = append(row, strings.TrimSpace(val))
		}

		text, encErr := ShapeToWKT(shape)
		if encErr != nil {
			skipped++
			zap.L().Debug("table: shapefile: unencodable shape",
				zap.Int("record", n),
				zap.Error(encErr),
			)
		}
		rows = append(rows, append(row, text))
	}

	if skipped > 0 {
		zap.L().Debug("table: shapefile: records without geometry",
			zap.String("path", path),
			zap.Int("skipped", skipped),
		)
	}

	return NewFrame(header, rows), nil
}

// ShapeToWKT encodes a shapefile shape as WKT. Unsupported or nil shapes
// encode as the empty string.
func ShapeToWKT(shape shp.Shape) (string, error) {
	g := shapeToGeom(shape)
	if g == nil {
		return "", nil
	}
	text, err := wkt.Marshal(g)
	if err != nil {
		return "", eris.Wrap(err, "table: shapefile: encode WKT")
	}
	return text, nil
}

func shapeToGeom(shape shp.Shape) geom.T {
	switch s := shape.(type) {
	case *shp.Point:
		return geom.NewPointFlat(geom.XY, []float64{s.X, s.Y})
	case *shp.MultiPoint:
		if len(s.Points) == 0 {
			return nil
		}
		return geom.NewMultiPointFlat(geom.XY, flatPoints(s.Points))
	case *shp.PolyLine:
		return polyLineToGeom(s)
	case *shp.Polygon:
		return polygonToGeom(s)
	default:
		return nil
	}
}

// polyLineToGeom converts a PolyLine to a LineString, or a MultiLineString
// when it has more than one part.
func polyLineToGeom(pl *shp.PolyLine) geom.T {
	parts := splitParts(pl.Parts, pl.Points)
	switch len(parts) {
	case 0:
		return nil
	case 1:
		return geom.NewLineStringFlat(geom.XY, flatPoints(parts[0]))
	}

	mls := geom.NewMultiLineString(geom.XY)
	for i, part := range parts {
		if err := mls.Push(geom.NewLineStringFlat(geom.XY, flatPoints(part))); err != nil {
			zap.L().Debug("table: shapefile: skipping malformed linestring part", zap.Int("part", i), zap.Error(err))
		}
	}
	return mls
}

// polygonToGeom groups a Polygon's rings into polygons. A clockwise ring
// opens a new polygon and a counter-clockwise ring is a hole in the current
// one. One outer ring yields a Polygon, several yield a MultiPolygon.
func polygonToGeom(p *shp.Polygon) geom.T {
	var polygons [][][]float64
	for _, part := range splitParts(p.Parts, p.Points) {
		ring := flatPoints(part)
		if len(polygons) == 0 || isClockwise(part) {
			polygons = append(polygons, [][]float64{ring})
			continue
		}
		last := len(polygons) - 1
		polygons[last] = append(polygons[last], ring)
	}

	switch len(polygons) {
	case 0:
		return nil
	case 1:
		return polygonFromRings(polygons[0])
	}

	mp := geom.NewMultiPolygon(geom.XY)
	for i, rings := range polygons {
		if err := mp.Push(polygonFromRings(rings)); err != nil {
			zap.L().Debug("table: shapefile: skipping malformed polygon part", zap.Int("part", i), zap.Error(err))
		}
	}
	return mp
}

func polygonFromRings(rings [][]float64) *geom.Polygon {
	var flat []float64
	ends := make([]int, 0, len(rings))
	for _, ring := range rings {
		flat = append(flat, ring...)
		ends = append(ends, len(flat))
	}
	return geom.NewPolygonFlat(geom.XY, flat, ends)
}

// isClockwise reports whether a ring winds clockwise, the shapefile
// orientation for outer rings.
func isClockwise(ring []shp.Point) bool {
	var sum float64
	for i := 0; i+1 < len(ring); i++ {
		sum += (ring[i+1].X - ring[i].X) * (ring[i+1].Y + ring[i].Y)
	}
	return sum > 0
}

// splitParts slices a shape's point list at its part offsets.
func splitParts(offsets []int32, points []shp.Point) [][]shp.Point {
	if len(offsets) == 0 || len(points) == 0 {
		return nil
	}
	parts := make([][]shp.Point, 0, len(offsets))
	for i, start := range offsets {
		end := int32(len(points))
		if i+1 < len(offsets) {
			end = offsets[i+1]
		}
		if start < 0 || start >= end || int(end) > len(points) {
			continue
		}
		parts = append(parts, points[start:end])
	}
	return parts
}

func flatPoints(points []shp.Point) []float64 {
	flat := make([]float64, 0, len(points)*2)
	for _, pt := range points {
		flat = append(flat, pt.X, pt.Y)
	}
	return flat
}
