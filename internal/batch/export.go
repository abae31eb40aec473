package batch

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"
)

const resultSheet = "GrossNetResults"

func outputHeader() []string {
	return []string{
		ColGrossIncome, ColDependents, ColRegion,
		"NetIncome", "PIT", "TotalInsurance", "TaxableIncome", "PreTaxIncome",
		"BHXH", "BHYT", "BHTN",
		"CalculationStatus", "ErrorMessage",
	}
}

func rowCells(row RowResult) []string {
	return []string{
		row.GrossIncome, row.Dependents, row.Region,
		formatAmount(row.NetIncome),
		formatAmount(row.PIT),
		formatAmount(row.TotalInsurance),
		formatAmount(row.TaxableIncome),
		formatAmount(row.PreTaxIncome),
		formatAmount(row.BHXH),
		formatAmount(row.BHYT),
		formatAmount(row.BHTN),
		row.CalculationStatus,
		row.ErrorMessage,
	}
}

func formatAmount(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}

// WriteCSV streams the report as CSV, input columns first, calculated
// columns appended.
func WriteCSV(w io.Writer, report BatchReport) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(outputHeader()); err != nil {
		return err
	}
	for _, row := range report.Rows {
		if err := cw.Write(rowCells(row)); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// BuildXLSX renders the report as a single-sheet workbook. The caller owns
// closing the returned file.
func BuildXLSX(report BatchReport) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", resultSheet); err != nil {
		f.Close()
		return nil, err
	}

	header := outputHeader()
	if err := f.SetSheetRow(resultSheet, "A1", &header); err != nil {
		f.Close()
		return nil, err
	}

	for i, row := range report.Rows {
		cells := rowCells(row)
		axis := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(resultSheet, axis, &cells); err != nil {
			f.Close()
			return nil, err
		}
	}

	return f, nil
}
