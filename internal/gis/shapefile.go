// Package gis acquires the block population table from the GIS side of
// the workflow: shapefile attribute tables (with passthrough geometry)
// and building-permit CSV tables joined by block id. The spatial joins
// that stamp ward and neighborhood-council labels onto blocks happen
// upstream in the GIS tooling; this package only reads their output.
package gis

import (
	"strconv"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/mso-gis/redist-cli/internal/blocks"
)

// ReadBlocks reads a block shapefile's attribute table into a block
// table, keyed by idField, and returns the WKB geometry per block id.
// DBF numeric fields (types N and F) become numeric cells, everything
// else text; blank attributes become null.
func ReadBlocks(path, idField string) (*blocks.Table, map[string][]byte, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, nil, eris.Wrapf(err, "gis: open shapefile %s", path)
	}
	defer func() { _ = reader.Close() }()

	fields := reader.Fields()
	names := make([]string, len(fields))
	numeric := make([]bool, len(fields))
	idIdx := -1
	for i, f := range fields {
		names[i] = strings.TrimRight(f.String(), "\x00")
		numeric[i] = f.Fieldtype == 'N' || f.Fieldtype == 'F'
		if names[i] == idField {
			idIdx = i
		}
	}
	if idIdx < 0 {
		return nil, nil, eris.Errorf("gis: shapefile %s has no %q field", path, idField)
	}

	t := blocks.New(names...)
	geoms := make(map[string][]byte)
	var skippedGeom, badNum int

	for reader.Next() {
		_, shape := reader.Shape()

		row := make(blocks.Row, len(names))
		for i, name := range names {
			raw := strings.TrimSpace(strings.TrimRight(reader.Attribute(i), "\x00"))
			if raw == "" {
				continue // null
			}
			if numeric[i] {
				f, err := strconv.ParseFloat(raw, 64)
				if err != nil {
					badNum++
					continue
				}
				row[name] = blocks.Num(f)
			} else {
				row[name] = blocks.Str(raw)
			}
		}
		t.Append(row)

		geoid := row[idField].Label()
		if geoid == "" {
			continue
		}
		data, err := EncodeWKB(shape)
		if err != nil || data == nil {
			skippedGeom++
			continue
		}
		geoms[geoid] = data
	}

	if skippedGeom > 0 || badNum > 0 {
		zap.L().Debug("gis: imperfect shapefile records",
			zap.String("path", path),
			zap.Int("skipped_geometries", skippedGeom),
			zap.Int("bad_numerics", badNum),
		)
	}

	return t, geoms, nil
}
