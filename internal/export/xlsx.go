package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"magbook/internal/core"
)

// ToSpreadsheet renders one table as a single-sheet xlsx workbook.
func ToSpreadsheet(table Table) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", table.Title); err != nil {
		return nil, fmt.Errorf("name sheet: %w", err)
	}
	if err := writeSheet(f, table); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// IssuanceWorkbook renders the full issuance register plus its monthly
// summary as a two-sheet workbook. It returns ErrNoData when the filter
// matches nothing.
func IssuanceWorkbook(issuance []core.IssuanceRecord, f core.Filter) ([]byte, error) {
	register, err := SelectReport(KindAll, issuance, f)
	if err != nil {
		return nil, err
	}
	monthly, err := SelectReport(KindMonthly, issuance, f)
	if err != nil {
		return nil, err
	}
	register.Title = "Issued Explosives"
	monthly.Title = "Monthly Summary"

	wb := excelize.NewFile()
	defer wb.Close()

	if err := wb.SetSheetName("Sheet1", register.Title); err != nil {
		return nil, fmt.Errorf("name sheet: %w", err)
	}
	if err := writeSheet(wb, register); err != nil {
		return nil, err
	}

	if _, err := wb.NewSheet(monthly.Title); err != nil {
		return nil, fmt.Errorf("add sheet: %w", err)
	}
	if err := writeSheet(wb, monthly); err != nil {
		return nil, err
	}

	buf, err := wb.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, table Table) error {
	rows := make([][]string, 0, len(table.Rows)+1)
	rows = append(rows, table.Header)
	rows = append(rows, table.Rows...)

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("cell name: %w", err)
		}
		cells := make([]any, len(row))
		for j, v := range row {
			cells[j] = v
		}
		if err := f.SetSheetRow(table.Title, cell, &cells); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	return nil
}
