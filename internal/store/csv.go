package store

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"magbook/internal/core"
)

const (
	issuanceFile = "issuance_data.csv"
	stockFile    = "stock_data.csv"
	minesFile    = "mines.txt"
)

// Column order is fixed per kind and preserved on every write for
// downstream spreadsheet compatibility.
var (
	issuanceColumns = []string{"Date", "Mine", "Issued By", "Received By", "Remarks",
		"Wabox Cartridges", "Detonators", "Safety Fuse (m)"}
	stockColumns = []string{"Serial No", "Receiving Date", "Explosive Type", "Quantity"}
)

// CSVStore keeps each record kind in one flat CSV file under dir.
// This is the storage layout the logbook has always used, so the files
// remain openable directly in a spreadsheet program.
type CSVStore struct {
	dir string
}

func NewCSVStore(dir string) *CSVStore {
	return &CSVStore{dir: dir}
}

func (s *CSVStore) LoadIssuance(ctx context.Context) []core.IssuanceRecord {
	rows := s.readRows(ctx, issuanceFile, len(issuanceColumns))
	records := make([]core.IssuanceRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := issuanceFromRow(row)
		if err != nil {
			slog.WarnContext(ctx, "Issuance file unparseable, starting empty", "file", issuanceFile, "error", err)
			return nil
		}
		records = append(records, rec)
	}
	return records
}

func (s *CSVStore) LoadStock(ctx context.Context) []core.StockRecord {
	rows := s.readRows(ctx, stockFile, len(stockColumns))
	records := make([]core.StockRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := stockFromRow(row)
		if err != nil {
			slog.WarnContext(ctx, "Stock file unparseable, starting empty", "file", stockFile, "error", err)
			return nil
		}
		records = append(records, rec)
	}
	return records
}

// LoadMines reads the registry file, one name per line with "#" comments.
// Falls back to the seed registry when the file is absent or empty.
func (s *CSVStore) LoadMines(_ context.Context) []string {
	mines := readLines(filepath.Join(s.dir, minesFile))
	if len(mines) == 0 {
		return DefaultMines()
	}
	return mines
}

func (s *CSVStore) SaveIssuance(_ context.Context, records []core.IssuanceRecord) error {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, issuanceToRow(r))
	}
	return s.writeRows(issuanceFile, issuanceColumns, rows)
}

func (s *CSVStore) SaveStock(_ context.Context, records []core.StockRecord) error {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, stockToRow(r))
	}
	return s.writeRows(stockFile, stockColumns, rows)
}

func (s *CSVStore) SaveMines(_ context.Context, mines []string) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	f, err := os.Create(filepath.Join(s.dir, minesFile))
	if err != nil {
		return fmt.Errorf("create %s: %w", minesFile, err)
	}
	w := bufio.NewWriter(f)
	for _, m := range mines {
		fmt.Fprintln(w, m)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", minesFile, err)
	}
	return f.Close()
}

// readRows returns the data rows of a CSV file, nil when the file is
// absent or malformed.
func (s *CSVStore) readRows(ctx context.Context, name string, width int) [][]string {
	f, err := os.Open(filepath.Join(s.dir, name))
	if err != nil {
		return nil
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = width
	all, err := r.ReadAll()
	if err != nil {
		slog.WarnContext(ctx, "Record file unparseable, starting empty", "file", name, "error", err)
		return nil
	}
	if len(all) == 0 {
		return nil
	}
	// First row is the header.
	return all[1:]
}

func (s *CSVStore) writeRows(name string, header []string, rows [][]string) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	f, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		f.Close()
		return fmt.Errorf("write header of %s: %w", name, err)
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			f.Close()
			return fmt.Errorf("write row of %s: %w", name, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("flush %s: %w", name, err)
	}
	return f.Close()
}

func issuanceToRow(r core.IssuanceRecord) []string {
	row := []string{r.Date.String(), r.Mine, r.IssuedBy, r.ReceivedBy, r.Remarks}
	for _, t := range core.ExplosiveTypes() {
		row = append(row, strconv.Itoa(r.Quantities.Get(t)))
	}
	return row
}

func issuanceFromRow(row []string) (core.IssuanceRecord, error) {
	date, err := core.ParseDate(row[0])
	if err != nil {
		return core.IssuanceRecord{}, fmt.Errorf("date %q: %w", row[0], err)
	}
	quantities := make(core.Quantities, len(core.ExplosiveTypes()))
	for i, t := range core.ExplosiveTypes() {
		n, err := strconv.Atoi(strings.TrimSpace(row[5+i]))
		if err != nil {
			return core.IssuanceRecord{}, fmt.Errorf("quantity %q: %w", row[5+i], err)
		}
		quantities[t] = n
	}
	return core.IssuanceRecord{
		Date:       date,
		Mine:       row[1],
		IssuedBy:   row[2],
		ReceivedBy: row[3],
		Remarks:    row[4],
		Quantities: quantities,
	}, nil
}

func stockToRow(r core.StockRecord) []string {
	return []string{r.SerialNo, r.ReceivingDate.String(), r.ExplosiveType.String(), strconv.Itoa(r.Quantity)}
}

func stockFromRow(row []string) (core.StockRecord, error) {
	date, err := core.ParseDate(row[1])
	if err != nil {
		return core.StockRecord{}, fmt.Errorf("receiving date %q: %w", row[1], err)
	}
	typ, err := core.ParseExplosiveType(row[2])
	if err != nil {
		return core.StockRecord{}, err
	}
	qty, err := strconv.Atoi(strings.TrimSpace(row[3]))
	if err != nil {
		return core.StockRecord{}, fmt.Errorf("quantity %q: %w", row[3], err)
	}
	return core.StockRecord{
		SerialNo:      row[0],
		ReceivingDate: date,
		ExplosiveType: typ,
		Quantity:      qty,
	}, nil
}

func readLines(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	var out []string
	seen := map[string]struct{}{}
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if _, ok := seen[line]; ok {
			continue
		}
		seen[line] = struct{}{}
		out = append(out, line)
	}
	return out
}
