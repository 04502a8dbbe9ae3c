package core

import (
	"testing"
	"time"
)

func issuanceFixture() []IssuanceRecord {
	return []IssuanceRecord{
		{Date: NewDate(2024, time.January, 10), Mine: "A", Quantities: Quantities{WaboxCartridges: 5}},
		{Date: NewDate(2024, time.January, 20), Mine: "A", Quantities: Quantities{WaboxCartridges: 3}},
		{Date: NewDate(2024, time.February, 5), Mine: "B", Quantities: Quantities{WaboxCartridges: 2}},
		{Date: NewDate(2024, time.February, 6), Mine: "A", Quantities: Quantities{Detonators: 4}},
	}
}

func TestSummaryByMine(t *testing.T) {
	rows := SummaryByMine([]IssuanceRecord{
		{Date: NewDate(2024, time.January, 1), Mine: "A", Quantities: Quantities{WaboxCartridges: 5}},
		{Date: NewDate(2024, time.January, 2), Mine: "A", Quantities: Quantities{WaboxCartridges: 3}},
		{Date: NewDate(2024, time.January, 3), Mine: "B", Quantities: Quantities{WaboxCartridges: 2}},
	})
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Mine != "A" || rows[0].Quantities.Get(WaboxCartridges) != 8 {
		t.Errorf("row A = %+v, want 8 wabox", rows[0])
	}
	if rows[1].Mine != "B" || rows[1].Quantities.Get(WaboxCartridges) != 2 {
		t.Errorf("row B = %+v, want 2 wabox", rows[1])
	}
}

func TestMonthlyByMineAndMonthOrdering(t *testing.T) {
	rows := MonthlyByMineAndMonth(issuanceFixture())
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	// month primary, mine secondary
	want := []struct {
		month string
		mine  string
	}{
		{"2024-01", "A"},
		{"2024-02", "A"},
		{"2024-02", "B"},
	}
	for i, w := range want {
		if rows[i].Month.String() != w.month || rows[i].Mine != w.mine {
			t.Errorf("row %d = (%s, %s), want (%s, %s)", i, rows[i].Month, rows[i].Mine, w.month, w.mine)
		}
	}
	if rows[0].Quantities.Get(WaboxCartridges) != 8 {
		t.Errorf("January A wabox = %d, want 8", rows[0].Quantities.Get(WaboxCartridges))
	}
}

func TestMineWiseByMonthOrdering(t *testing.T) {
	rows := MineWiseByMonth(issuanceFixture())
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	// mine primary, month secondary
	want := []struct {
		mine  string
		month string
	}{
		{"A", "2024-01"},
		{"A", "2024-02"},
		{"B", "2024-02"},
	}
	for i, w := range want {
		if rows[i].Mine != w.mine || rows[i].Month.String() != w.month {
			t.Errorf("row %d = (%s, %s), want (%s, %s)", i, rows[i].Mine, rows[i].Month, w.mine, w.month)
		}
	}
}

func TestApplyFilter(t *testing.T) {
	records := issuanceFixture()
	cases := []struct {
		name   string
		filter Filter
		want   int
	}{
		{"no filter keeps everything", Filter{}, 4},
		{"mine subset", Filter{Mines: []string{"B"}}, 1},
		{"date range inclusive", Filter{From: NewDate(2024, time.January, 20), To: NewDate(2024, time.February, 5)}, 2},
		{"mine and range combine with AND", Filter{Mines: []string{"A"}, From: NewDate(2024, time.February, 1)}, 1},
		{"unknown mine", Filter{Mines: []string{"Z"}}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := len(ApplyFilter(records, tc.filter)); got != tc.want {
				t.Fatalf("got %d records, want %d", got, tc.want)
			}
		})
	}
}
