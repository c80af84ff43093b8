package blocks

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var permitRe = regexp.MustCompile(`^NewPop(20\d{2})$`)

func TestDiscoverPicksLatestPermitYear(t *testing.T) {
	t.Parallel()

	tbl := New("GEOID10", "EstTotPop14", "NewPop2015", "NewPop2016", "dwellings", "Ward_Numbe")
	ses, err := Discover(tbl, permitRe)
	require.NoError(t, err)

	assert.Equal(t, "16", ses.Year)
	assert.Equal(t, "EstTotPop16", ses.TotalPopField)
	assert.Equal(t, "EstNewHU16", ses.NewUnitsField)
}

func TestDiscoverSingleDigitYearPads(t *testing.T) {
	t.Parallel()

	tbl := New("NewPop2007")
	ses, err := Discover(tbl, permitRe)
	require.NoError(t, err)
	assert.Equal(t, "07", ses.Year)
	assert.Equal(t, "EstTotPop07", ses.TotalPopField)
}

func TestDiscoverNoPermitFields(t *testing.T) {
	t.Parallel()

	tbl := New("GEOID10", "EstTotPop14")
	_, err := Discover(tbl, permitRe)
	assert.Error(t, err)
}
