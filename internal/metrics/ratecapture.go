package metrics

import (
	"github.com/oakline-data/jobpulse/internal/model"
	"github.com/oakline-data/jobpulse/internal/rollup"
)

// RateCaptureRow holds realised vs quoted rate and their variance for one group.
type RateCaptureRow struct {
	Key          rollup.Key
	Hours        float64
	Revenue      float64
	RealisedRate *float64
	QuotedHours  *float64
	QuotedAmount *float64
	QuoteRate    *float64
	RateVariance *float64 // realised minus quoted; nil when either side is nil
}

// RateCapture joins realised rates against deduped quote rates per group.
func RateCapture(facts []model.TimesheetFact, dims []rollup.Dimension) []RateCaptureRow {
	rates := rollup.Rates(facts, dims)
	rows := make([]RateCaptureRow, 0, len(rates))
	for _, r := range rates {
		row := RateCaptureRow{
			Key:          r.Key,
			Hours:        r.Hours,
			Revenue:      r.Revenue,
			RealisedRate: r.RealisedRate,
			QuotedHours:  r.QuotedHours,
			QuotedAmount: r.QuotedAmount,
			QuoteRate:    r.QuoteRate,
		}
		if r.RealisedRate != nil && r.QuoteRate != nil {
			variance := *r.RealisedRate - *r.QuoteRate
			row.RateVariance = &variance
		}
		rows = append(rows, row)
	}
	return rows
}
