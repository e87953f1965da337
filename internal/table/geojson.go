package table

import (
	"encoding/json"
	"io"
	"slices"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom/encoding/geojson"
	"github.com/twpayne/go-geom/encoding/wkt"
)

// ReadGeoJSON reads a GeoJSON FeatureCollection into a Frame. Property keys
// become columns in sorted order, followed by GeometryColumn holding each
// feature's geometry as WKT.
func ReadGeoJSON(r io.Reader, maxRows int) (*Frame, error) {
	var fc geojson.FeatureCollection
	if err := json.NewDecoder(r).Decode(&fc); err != nil {
		return nil, eris.Wrap(err, "table: geojson: decode feature collection")
	}

	features := fc.Features
	if maxRows > 0 && len(features) > maxRows {
		features = features[:maxRows]
	}

	seen := make(map[string]bool)
	var keys []string
	for _, f := range features {
		for k := range f.Properties {
			if !seen[k] && k != GeometryColumn {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	slices.Sort(keys)
	header := append(slices.Clone(keys), GeometryColumn)

	rows := make([][]string, 0, len(features))
	for i, f := range features {
		row := make([]string, 0, len(header))
		for _, k := range keys {
			v, err := CellString(f.Properties[k])
			if err != nil {
				return nil, eris.Wrapf(err, "table: geojson: feature %d property %q", i, k)
			}
			row = append(row, v)
		}
		var text string
		if f.Geometry != nil {
			var err error
			if text, err = wkt.Marshal(f.Geometry); err != nil {
				return nil, eris.Wrapf(err, "table: geojson: feature %d geometry", i)
			}
		}
		rows = append(rows, append(row, text))
	}

	return NewFrame(header, rows), nil
}

// CellString renders a decoded JSON value as a cell. Null becomes the empty
// string so it samples as missing; arrays and objects stay JSON.
func CellString(v any) (string, error) {
	switch t := v.(type) {
	case nil:
		return "", nil
	case string:
		return t, nil
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(t), nil
	default:
		data, err := json.Marshal(t)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
}
