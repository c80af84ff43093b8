package blocks

import (
	"regexp"

	"github.com/rotisserie/eris"
)

// FillMissing replaces null cells with numeric zero in every field the
// pattern matches. Returns the number of cells filled. This is the
// preprocessing step that keeps absent increments from null-propagating
// through the derived totals.
func FillMissing(t *Table, pattern *regexp.Regexp) int {
	fields := t.FieldsMatching(pattern.MatchString)
	filled := 0
	for _, r := range t.Rows {
		for _, f := range fields {
			if r[f].IsNull() {
				r[f] = Num(0)
				filled++
			}
		}
	}
	return filled
}

// DeriveTotals adds the session's derived fields to the table:
// the total-population field as the base-year estimate plus every
// permit-year increment, and the new-units field as the sum of the
// dwelling delta fields. Absent cells contribute zero.
func DeriveTotals(t *Table, ses Session, basePopField string, permitPattern, dwellingsPattern *regexp.Regexp) error {
	if !t.HasField(basePopField) {
		return eris.Errorf("blocks: base population field %q not in table schema", basePopField)
	}

	popFields := append([]string{basePopField}, t.FieldsMatching(permitPattern.MatchString)...)
	dwellFields := t.FieldsMatching(dwellingsPattern.MatchString)

	t.AddField(ses.TotalPopField)
	t.AddField(ses.NewUnitsField)

	for _, r := range t.Rows {
		var pop, units float64
		for _, f := range popFields {
			pop += r[f].Float()
		}
		for _, f := range dwellFields {
			units += r[f].Float()
		}
		r[ses.TotalPopField] = Num(pop)
		r[ses.NewUnitsField] = Num(units)
	}
	return nil
}

// AuditLabels returns the ids of rows that look like spatial-join
// errors: population or dwelling activity on a block whose ward or
// neighborhood-council label is null. De-annexed blocks legitimately
// stay unlabeled, so the result is a review list, not an error.
func AuditLabels(t *Table, idField, wardField, ncField string, activityFields []string) []string {
	var flagged []string
	for _, r := range t.Rows {
		if !r[wardField].IsNull() && !r[ncField].IsNull() {
			continue
		}
		for _, f := range activityFields {
			if r[f].Float() > 0 {
				flagged = append(flagged, r[idField].Label())
				break
			}
		}
	}
	return flagged
}

// CheckTotal reports whether the summed field has fallen below a prior
// known floor (e.g. the previous census total). A floor of zero
// disables the check.
func CheckTotal(t *Table, field string, floor float64) (ok bool, total float64, err error) {
	total, err = t.SumField(field)
	if err != nil {
		return false, 0, err
	}
	if floor > 0 && total < floor {
		return false, total, nil
	}
	return true, total, nil
}
