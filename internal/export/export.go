package export

import (
	"errors"
	"fmt"

	"magbook/internal/core"
)

var (
	// ErrNoData signals that the filter matched no records. Callers must
	// report this instead of producing an empty spreadsheet.
	ErrNoData = errors.New("no records match the requested report")

	ErrUnknownReport = errors.New("unknown report kind")
)

// Report kinds accepted by SelectReport.
const (
	KindSummary  = "summary"
	KindMonthly  = "monthly"
	KindMineWise = "mine-wise"
	KindAll      = "all"
)

// Table is a rendered report: a sheet title, a header row and data rows,
// every cell already formatted as text.
type Table struct {
	Title  string
	Header []string
	Rows   [][]string
}

func quantityHeader() []string {
	types := core.ExplosiveTypes()
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = t.String()
	}
	return out
}

func quantityCells(q core.Quantities) []string {
	types := core.ExplosiveTypes()
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = fmt.Sprintf("%d", q.Get(t))
	}
	return out
}

// SelectReport filters the issuance collection and renders the requested
// report kind. It returns ErrNoData when the filter matches nothing.
func SelectReport(kind string, issuance []core.IssuanceRecord, f core.Filter) (Table, error) {
	filtered := core.ApplyFilter(issuance, f)
	if len(filtered) == 0 {
		return Table{}, ErrNoData
	}

	switch kind {
	case KindSummary:
		return summaryTable(filtered), nil
	case KindMonthly:
		return monthlyTable(filtered), nil
	case KindMineWise:
		return mineWiseTable(filtered), nil
	case KindAll:
		return registerTable(filtered), nil
	default:
		return Table{}, fmt.Errorf("%w: %q", ErrUnknownReport, kind)
	}
}

func summaryTable(issuance []core.IssuanceRecord) Table {
	t := Table{
		Title:  "Summary",
		Header: append([]string{"Mine"}, quantityHeader()...),
	}
	for _, row := range core.SummaryByMine(issuance) {
		t.Rows = append(t.Rows, append([]string{row.Mine}, quantityCells(row.Quantities)...))
	}
	return t
}

func monthlyTable(issuance []core.IssuanceRecord) Table {
	t := Table{
		Title:  "Monthly",
		Header: append([]string{"Month", "Mine"}, quantityHeader()...),
	}
	for _, row := range core.MonthlyByMineAndMonth(issuance) {
		t.Rows = append(t.Rows, append([]string{row.Month.String(), row.Mine}, quantityCells(row.Quantities)...))
	}
	return t
}

func mineWiseTable(issuance []core.IssuanceRecord) Table {
	t := Table{
		Title:  "Mine-wise",
		Header: append([]string{"Mine", "Month"}, quantityHeader()...),
	}
	for _, row := range core.MineWiseByMonth(issuance) {
		t.Rows = append(t.Rows, append([]string{row.Mine, row.Month.String()}, quantityCells(row.Quantities)...))
	}
	return t
}

func registerTable(issuance []core.IssuanceRecord) Table {
	t := Table{
		Title: "All Data",
		Header: append(
			append([]string{"Date", "Mine", "Issued By", "Received By", "Remarks"}, quantityHeader()...),
			"Month"),
	}
	for _, r := range issuance {
		cells := []string{r.Date.String(), r.Mine, r.IssuedBy, r.ReceivedBy, r.Remarks}
		cells = append(cells, quantityCells(r.Quantities)...)
		t.Rows = append(t.Rows, append(cells, r.Date.MonthOf().String()))
	}
	return t
}
