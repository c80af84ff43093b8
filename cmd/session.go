package main

import (
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/mso-gis/redist-cli/internal/blocks"
)

// prepareTable runs the per-session preprocessing on a freshly loaded
// block table: discover the analysis year from the permit fields, zero
// the null increments, and derive the total-population and new-units
// fields. Every later step reads the returned session and never
// mutates the table again.
func prepareTable(t *blocks.Table) (blocks.Session, error) {
	permitRe := cfg.Fields.PermitRegexp()

	ses, err := blocks.Discover(t, permitRe)
	if err != nil {
		return blocks.Session{}, err
	}

	filled := blocks.FillMissing(t, cfg.Fields.FillRegexp())
	if err := blocks.DeriveTotals(t, ses, cfg.Fields.BasePopulation, permitRe, cfg.Fields.DwellingsRegexp()); err != nil {
		return blocks.Session{}, eris.Wrap(err, "derive totals")
	}

	zap.L().Info("session prepared",
		zap.String("year", ses.Year),
		zap.String("total_pop_field", ses.TotalPopField),
		zap.String("new_units_field", ses.NewUnitsField),
		zap.Int("cells_filled", filled),
	)
	return ses, nil
}

// activityFields lists the fields whose non-zero values mark a block as
// inhabited for the label audit: the base population, every permit
// increment, and every dwelling delta.
func activityFields(t *blocks.Table) []string {
	fields := []string{cfg.Fields.BasePopulation}
	fields = append(fields, t.FieldsMatching(cfg.Fields.PermitRegexp().MatchString)...)
	fields = append(fields, t.FieldsMatching(cfg.Fields.DwellingsRegexp().MatchString)...)
	return fields
}
