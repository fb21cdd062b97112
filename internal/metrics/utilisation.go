// Package metrics implements the analyst-facing metric packs. Each pack is a
// pure function from fact slices to a named rollup table; packs share no
// state between calls.
package metrics

import (
	"sort"
	"strings"

	"github.com/oakline-data/jobpulse/internal/model"
	"github.com/oakline-data/jobpulse/internal/rollup"
)

func equalsFoldTrim(s, target string) bool {
	return strings.EqualFold(strings.TrimSpace(s), target)
}

// UtilisationRow holds billable share and target gap for one group.
type UtilisationRow struct {
	Key           rollup.Key
	BillableHours float64
	TotalHours    float64
	Utilisation   *float64
	Target        *float64 // hours-weighted average utilisation target
	Gap           *float64 // target minus actual
}

// Utilisation computes billable_hours / total_hours per group. With
// excludeLeave set, rows whose task name contains "leave" (any case) are
// dropped before aggregation.
func Utilisation(facts []model.TimesheetFact, dims []rollup.Dimension, excludeLeave bool) []UtilisationRow {
	type acc struct {
		billable    float64
		total       float64
		targetHours float64 // sum of target * hours
	}
	grouped := make(map[rollup.Key]*acc)
	for _, f := range facts {
		if excludeLeave && f.IsLeave() {
			continue
		}
		k := rollup.KeyOf(f, dims)
		a, ok := grouped[k]
		if !ok {
			a = &acc{}
			grouped[k] = a
		}
		a.total += f.Hours
		if f.Billable {
			a.billable += f.Hours
		}
		a.targetHours += f.UtilTarget * f.Hours
	}

	rows := make([]UtilisationRow, 0, len(grouped))
	for _, k := range rollup.SortedKeys(grouped) {
		a := grouped[k]
		row := UtilisationRow{
			Key:           k,
			BillableHours: a.billable,
			TotalHours:    a.total,
			Utilisation:   rollup.Ratio(a.billable, a.total),
			Target:        rollup.Ratio(a.targetHours, a.total),
		}
		if row.Target != nil && row.Utilisation != nil {
			gap := *row.Target - *row.Utilisation
			row.Gap = &gap
		}
		rows = append(rows, row)
	}
	return rows
}

// LeakageRow holds non-billable hours for one group and breakdown category.
type LeakageRow struct {
	Key       rollup.Key
	Breakdown string
	Hours     float64
}

// LeakageBreakdown splits non-billable hours by breakdown category within each
// group. Leave rows are always excluded.
func LeakageBreakdown(facts []model.TimesheetFact, dims []rollup.Dimension) []LeakageRow {
	type bk struct {
		key       rollup.Key
		breakdown string
	}
	grouped := make(map[bk]float64)
	for _, f := range facts {
		if f.IsLeave() || f.Billable {
			continue
		}
		grouped[bk{rollup.KeyOf(f, dims), f.Breakdown}] += f.Hours
	}

	rows := make([]LeakageRow, 0, len(grouped))
	for k, hours := range grouped {
		rows = append(rows, LeakageRow{Key: k.key, Breakdown: k.breakdown, Hours: hours})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Key != rows[j].Key {
			return rollup.Less(rows[i].Key, rows[j].Key)
		}
		return rows[i].Breakdown < rows[j].Breakdown
	})
	return rows
}
