package gis

import (
	"testing"

	"github.com/jonas-p/go-shp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/wkb"
)

func TestEncodeWKBNil(t *testing.T) {
	t.Parallel()

	data, err := EncodeWKB(nil)
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestEncodeWKBPoint(t *testing.T) {
	t.Parallel()

	data, err := EncodeWKB(&shp.Point{X: 891000.5, Y: 988000.25})
	require.NoError(t, err)
	require.NotNil(t, data)

	g, err := wkb.Unmarshal(data)
	require.NoError(t, err)
	pt, ok := g.(*geom.Point)
	require.True(t, ok)
	assert.Equal(t, []float64{891000.5, 988000.25}, pt.FlatCoords())
}

func TestEncodeWKBPolygon(t *testing.T) {
	t.Parallel()

	// A unit square, closed ring.
	poly := &shp.Polygon{
		NumParts:  1,
		NumPoints: 5,
		Parts:     []int32{0},
		Points: []shp.Point{
			{X: 0, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 0}, {X: 0, Y: 0},
		},
	}
	data, err := EncodeWKB(poly)
	require.NoError(t, err)
	require.NotNil(t, data)

	g, err := wkb.Unmarshal(data)
	require.NoError(t, err)
	mp, ok := g.(*geom.MultiPolygon)
	require.True(t, ok)
	assert.Equal(t, 1, mp.NumPolygons())
	assert.InDelta(t, 1.0, mp.Area(), 1e-9)
}

func TestEncodeWKBEmptyPolygon(t *testing.T) {
	t.Parallel()

	data, err := EncodeWKB(&shp.Polygon{})
	require.NoError(t, err)
	assert.Nil(t, data)
}
