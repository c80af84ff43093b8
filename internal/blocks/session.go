package blocks

import (
	"regexp"
	"strconv"

	"github.com/rotisserie/eris"
)

// Session carries the year-dependent field names for one analysis
// session. It is built once from the schema at session start and passed
// read-only into every later step; nothing else derives field names at
// call sites.
type Session struct {
	Year          string // two-digit analysis year, e.g. "17"
	TotalPopField string // derived total-population field, e.g. EstTotPop17
	NewUnitsField string // derived new-housing-units field, e.g. EstNewHU17
}

// Discover determines the analysis year from the building-permit
// population fields present in the schema. permitPattern must capture a
// four-digit year (default ^NewPop(20\d{2})$); the maximum captured
// year wins. Fails when the table carries no permit fields at all,
// since the session would have no year to name its outputs after.
func Discover(t *Table, permitPattern *regexp.Regexp) (Session, error) {
	maxYear := 0
	for _, f := range t.Fields {
		m := permitPattern.FindStringSubmatch(f)
		if m == nil || len(m) < 2 {
			continue
		}
		year, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if year > maxYear {
			maxYear = year
		}
	}
	if maxYear == 0 {
		return Session{}, eris.Errorf("blocks: no fields match permit pattern %s, cannot determine analysis year", permitPattern)
	}

	yy := strconv.Itoa(maxYear % 100)
	if len(yy) == 1 {
		yy = "0" + yy
	}
	return Session{
		Year:          yy,
		TotalPopField: "EstTotPop" + yy,
		NewUnitsField: "EstNewHU" + yy,
	}, nil
}
