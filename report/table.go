package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/zalepa/judgefee/fee"
)

// column is one column of the tabular exports.
type column struct {
	header string
	money  bool
	value  func(r fee.Result) any
}

func columns(o Options) []column {
	cols := []column{
		{"Name", false, func(r fee.Result) any { return r.Name }},
		{"Level", false, func(r fee.Result) any { return string(r.Level) }},
	}
	if o.Fee.RegionLookup {
		cols = append(cols, column{"Region", false, func(r fee.Result) any { return r.Region }})
	}
	cols = append(cols,
		column{"OptionalRoutines", false, func(r fee.Result) any { return r.OptionalRoutines }},
		column{"CompulsoryRoutines", false, func(r fee.Result) any { return r.CompulsoryRoutines }},
		column{"OptionalTotal", true, func(r fee.Result) any { return r.OptionalTotal }},
		column{"CompulsoryTotal", true, func(r fee.Result) any { return r.CompulsoryTotal }},
		column{"MealTotal", true, func(r fee.Result) any { return r.MealTotal }},
		column{"MealPenalties", true, func(r fee.Result) any { return r.SessionRate }},
		column{"HeadJudge", true, func(r fee.Result) any { return r.MeetRate }},
		column{"Mileage", false, func(r fee.Result) any { return r.Mileage }},
		column{"MileageTotal", true, func(r fee.Result) any { return r.MileageTotal }},
	)
	if o.Fee.ExtraFees {
		cols = append(cols, column{"ExtraTotal", true, func(r fee.Result) any { return r.ExtraTotal }})
	}
	return append(cols, column{"Total", true, func(r fee.Result) any { return r.Total }})
}

func cellText(c column, r fee.Result) string {
	switch v := c.value(r).(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case float64:
		if c.money {
			return strconv.FormatFloat(v, 'f', 2, 64)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return ""
}

// WriteCSV writes one row per judge with every subtotal.
func WriteCSV(w io.Writer, results []fee.Result, o Options) error {
	cw := csv.NewWriter(w)
	cols := columns(o)

	header := make([]string, 0, len(cols)+1)
	header = append(header, "Judge")
	for _, c := range cols {
		header = append(header, c.header)
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for i, r := range results {
		row := make([]string, 0, len(cols)+1)
		row = append(row, strconv.Itoa(i+1))
		for _, c := range cols {
			row = append(row, cellText(c, r))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

const sheetName = "Fees"

// WriteXLSX writes the same table as WriteCSV to a workbook, with money
// columns formatted as currency and a grand total row.
func WriteXLSX(w io.Writer, results []fee.Result, o Options) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	cols := columns(o)
	header := []any{"Judge"}
	for _, c := range cols {
		header = append(header, c.header)
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	currency := "$#,##0.00"
	money, err := f.NewStyle(&excelize.Style{CustomNumFmt: &currency})
	if err != nil {
		return err
	}
	lastCol, _ := excelize.ColumnNumberToName(len(cols) + 1)
	if err := f.SetCellStyle(sheetName, "A1", lastCol+"1", bold); err != nil {
		return err
	}

	for i, r := range results {
		row := []any{i + 1}
		for _, c := range cols {
			row = append(row, c.value(r))
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("write judge %d: %w", i+1, err)
		}
	}

	lastRow := len(results) + 1
	totalRow := lastRow + 1
	labelCell, _ := excelize.CoordinatesToCellName(1, totalRow)
	if err := f.SetCellValue(sheetName, labelCell, "Total"); err != nil {
		return err
	}
	for ci, c := range cols {
		if !c.money {
			continue
		}
		name, _ := excelize.ColumnNumberToName(ci + 2)
		if err := f.SetCellStyle(sheetName, name+"2", fmt.Sprintf("%s%d", name, totalRow), money); err != nil {
			return err
		}
		if len(results) > 0 {
			formula := fmt.Sprintf("SUM(%s2:%s%d)", name, name, lastRow)
			if err := f.SetCellFormula(sheetName, fmt.Sprintf("%s%d", name, totalRow), formula); err != nil {
				return err
			}
		}
	}

	_, err = f.WriteTo(w)
	return err
}
