package gis

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mso-gis/redist-cli/internal/blocks"
)

// PermitTable is one building-permit data table: per-block numeric
// deltas (NewPopYYYY, dwellings...) keyed by block id.
type PermitTable struct {
	Source string
	Fields []string
	Rows   map[string]map[string]float64
}

// permitParseConcurrency bounds parallel CSV parsing during load.
const permitParseConcurrency = 4

// ReadPermits parses the permit CSV tables concurrently, preserving
// input order in the result.
func ReadPermits(ctx context.Context, keyField string, paths []string) ([]PermitTable, error) {
	tables := make([]PermitTable, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(permitParseConcurrency)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return eris.Wrap(err, "gis: permit parse cancelled")
			}
			t, err := readPermitCSV(path, keyField)
			if err != nil {
				return err
			}
			tables[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return tables, nil
}

func readPermitCSV(path, keyField string) (PermitTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return PermitTable{}, eris.Wrapf(err, "gis: open permit table %s", path)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return PermitTable{}, eris.Wrapf(err, "gis: read permit header %s", path)
	}

	keyIdx := -1
	for i, h := range header {
		header[i] = strings.TrimSpace(h)
		if header[i] == keyField {
			keyIdx = i
		}
	}
	if keyIdx < 0 {
		return PermitTable{}, eris.Errorf("gis: permit table %s has no %q column", path, keyField)
	}

	t := PermitTable{Source: path, Rows: make(map[string]map[string]float64)}
	for i, h := range header {
		if i != keyIdx {
			t.Fields = append(t.Fields, h)
		}
	}

	var badNum int
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return PermitTable{}, eris.Wrapf(err, "gis: read permit row %s", path)
		}

		if keyIdx >= len(record) {
			continue
		}
		geoid := strings.TrimSpace(record[keyIdx])
		if geoid == "" {
			continue
		}
		vals := make(map[string]float64, len(t.Fields))
		for i, h := range header {
			if i == keyIdx || i >= len(record) {
				continue
			}
			raw := strings.TrimSpace(record[i])
			if raw == "" {
				continue
			}
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				badNum++
				continue
			}
			vals[h] = v
		}
		t.Rows[geoid] = vals
	}

	if badNum > 0 {
		zap.L().Debug("gis: non-numeric permit values skipped",
			zap.String("path", path), zap.Int("count", badNum))
	}
	return t, nil
}

// MergePermits joins permit deltas onto the block table by block id,
// adding each permit field to the schema. Returns how many permit rows
// matched a block and how many found no block at all. This is an
// attribute join only.
func MergePermits(t *blocks.Table, keyField string, tables []PermitTable) (matched, unmatched int) {
	index := make(map[string]blocks.Row, t.Len())
	for _, r := range t.Rows {
		if key := r[keyField].Label(); key != "" {
			index[key] = r
		}
	}

	for _, pt := range tables {
		for _, f := range pt.Fields {
			t.AddField(f)
		}
		for geoid, vals := range pt.Rows {
			row, ok := index[geoid]
			if !ok {
				unmatched++
				continue
			}
			matched++
			for f, v := range vals {
				row[f] = blocks.Num(v)
			}
		}
	}
	return matched, unmatched
}
