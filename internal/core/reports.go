package core

import "sort"

type (
	// SummaryRow is one aggregated row of the per-mine summary report.
	SummaryRow struct {
		Mine       string
		Quantities Quantities
	}

	// MonthlyRow is one aggregated row of the month-grouped reports.
	MonthlyRow struct {
		Month      Month
		Mine       string
		Quantities Quantities
	}

	// Filter restricts issuance records before aggregation. Zero-value
	// fields are unbounded: an empty mine list keeps every mine, zero
	// dates keep every date. Both constraints combine with logical AND.
	Filter struct {
		Mines []string
		From  Date
		To    Date
	}
)

// Match reports whether a record passes the filter.
func (f Filter) Match(r IssuanceRecord) bool {
	if len(f.Mines) > 0 {
		found := false
		for _, m := range f.Mines {
			if r.Mine == m {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if !f.From.IsZero() && r.Date.Before(f.From.Time) && !r.Date.Equal(f.From) {
		return false
	}
	if !f.To.IsZero() && r.Date.After(f.To.Time) && !r.Date.Equal(f.To) {
		return false
	}
	return true
}

// ApplyFilter returns the records passing the filter, preserving order.
func ApplyFilter(issuance []IssuanceRecord, f Filter) []IssuanceRecord {
	out := make([]IssuanceRecord, 0, len(issuance))
	for _, r := range issuance {
		if f.Match(r) {
			out = append(out, r)
		}
	}
	return out
}

// SummaryByMine groups issuance records by mine with per-type sums.
// Rows are ordered lexicographically by mine for deterministic output.
func SummaryByMine(issuance []IssuanceRecord) []SummaryRow {
	byMine := make(map[string]Quantities)
	for _, r := range issuance {
		q, ok := byMine[r.Mine]
		if !ok {
			q = make(Quantities, len(ExplosiveTypes()))
			byMine[r.Mine] = q
		}
		for _, t := range ExplosiveTypes() {
			q[t] += r.Quantities.Get(t)
		}
	}
	rows := make([]SummaryRow, 0, len(byMine))
	for mine, q := range byMine {
		rows = append(rows, SummaryRow{Mine: mine, Quantities: q})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Mine < rows[j].Mine })
	return rows
}

// MonthlyByMineAndMonth groups issuance records by (month, mine) with
// per-type sums, ordered by month then mine.
func MonthlyByMineAndMonth(issuance []IssuanceRecord) []MonthlyRow {
	rows := groupByMonthAndMine(issuance)
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Month != rows[j].Month {
			return rows[i].Month.Before(rows[j].Month)
		}
		return rows[i].Mine < rows[j].Mine
	})
	return rows
}

// MineWiseByMonth groups the same data with mine as the primary key and
// month secondary.
func MineWiseByMonth(issuance []IssuanceRecord) []MonthlyRow {
	rows := groupByMonthAndMine(issuance)
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Mine != rows[j].Mine {
			return rows[i].Mine < rows[j].Mine
		}
		return rows[i].Month.Before(rows[j].Month)
	})
	return rows
}

func groupByMonthAndMine(issuance []IssuanceRecord) []MonthlyRow {
	type key struct {
		month Month
		mine  string
	}
	groups := make(map[key]Quantities)
	for _, r := range issuance {
		k := key{month: r.Date.MonthOf(), mine: r.Mine}
		q, ok := groups[k]
		if !ok {
			q = make(Quantities, len(ExplosiveTypes()))
			groups[k] = q
		}
		for _, t := range ExplosiveTypes() {
			q[t] += r.Quantities.Get(t)
		}
	}
	rows := make([]MonthlyRow, 0, len(groups))
	for k, q := range groups {
		rows = append(rows, MonthlyRow{Month: k.month, Mine: k.mine, Quantities: q})
	}
	return rows
}
