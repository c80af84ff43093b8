package gis

import (
	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/wkb"
)

// EncodeWKB converts a go-shp geometry to WKB bytes. The geometry is
// passthrough only, stored so the labeled table can be re-exported to
// the GIS side, never interpreted here. Returns nil, nil for nil or
// unsupported shapes.
func EncodeWKB(shape shp.Shape) ([]byte, error) {
	if shape == nil {
		return nil, nil
	}

	var g geom.T

	switch s := shape.(type) {
	case *shp.Point:
		g = geom.NewPointFlat(geom.XY, []float64{s.X, s.Y})

	case *shp.PolyLine:
		g = polyLineToMultiLineString(s)

	case *shp.Polygon:
		g = polygonToMultiPolygon((*shp.PolyLine)(s))

	default:
		return nil, nil
	}

	if g == nil {
		return nil, nil
	}

	data, err := wkb.Marshal(g, wkb.NDR)
	if err != nil {
		return nil, eris.Wrap(err, "gis: encode WKB")
	}
	return data, nil
}

func polyLineToMultiLineString(pl *shp.PolyLine) geom.T {
	if pl == nil || pl.NumParts == 0 || len(pl.Points) == 0 {
		return nil
	}

	mls := geom.NewMultiLineString(geom.XY)
	for _, coords := range partCoords(pl) {
		if len(coords) < 2 {
			continue
		}
		if err := mls.Push(geom.NewLineString(geom.XY).MustSetCoords(coords)); err != nil {
			continue
		}
	}
	if mls.NumLineStrings() == 0 {
		return nil
	}
	return mls
}

func polygonToMultiPolygon(p *shp.PolyLine) geom.T {
	if p == nil || p.NumParts == 0 || len(p.Points) == 0 {
		return nil
	}

	mp := geom.NewMultiPolygon(geom.XY)
	for _, coords := range partCoords(p) {
		if len(coords) < 4 {
			continue
		}
		poly := geom.NewPolygon(geom.XY).MustSetCoords([][]geom.Coord{coords})
		if err := mp.Push(poly); err != nil {
			continue
		}
	}
	if mp.NumPolygons() == 0 {
		return nil
	}
	return mp
}

func partCoords(pl *shp.PolyLine) [][]geom.Coord {
	parts := make([][]geom.Coord, 0, pl.NumParts)
	for i := int32(0); i < pl.NumParts; i++ {
		start := pl.Parts[i]
		end := int32(len(pl.Points))
		if i+1 < pl.NumParts {
			end = pl.Parts[i+1]
		}
		coords := make([]geom.Coord, 0, end-start)
		for j := start; j < end; j++ {
			coords = append(coords, geom.Coord{pl.Points[j].X, pl.Points[j].Y})
		}
		parts = append(parts, coords)
	}
	return parts
}
