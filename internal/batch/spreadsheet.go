package batch

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"

	"vn-payroll/internal/shared/apperror"
)

// ParseUpload reads the uploaded file into input rows. CSV and XLSX are
// supported, selected by file extension. The first row must be a header
// containing the GrossIncome, Dependents and Region columns; extra columns
// are ignored.
func ParseUpload(fileName string, r io.Reader) ([]InputRow, error) {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".csv":
		return parseCSV(r)
	case ".xlsx":
		return parseXLSX(r)
	case ".xls":
		return nil, apperror.New(apperror.CodeInvalidInput,
			"Legacy .xls files are not supported. Save the sheet as .xlsx and upload again.", 400)
	default:
		return nil, apperror.New(apperror.CodeInvalidInput,
			"Unsupported file type. Upload a .csv or .xlsx file.", 400)
	}
}

func parseCSV(r io.Reader) ([]InputRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, apperror.New(apperror.CodeInvalidInput,
			fmt.Sprintf("Could not read CSV file: %v", err), 400)
	}
	return rowsFromRecords(records)
}

func parseXLSX(r io.Reader) ([]InputRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, apperror.New(apperror.CodeInvalidInput,
			fmt.Sprintf("Could not read XLSX file: %v", err), 400)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperror.New(apperror.CodeInvalidInput, "Workbook has no sheets", 400)
	}
	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, apperror.New(apperror.CodeInvalidInput,
			fmt.Sprintf("Could not read sheet %q: %v", sheets[0], err), 400)
	}
	return rowsFromRecords(records)
}

func rowsFromRecords(records [][]string) ([]InputRow, error) {
	if len(records) == 0 {
		return nil, apperror.New(apperror.CodeInvalidInput, "File is empty", 400)
	}

	idx, err := headerIndex(records[0])
	if err != nil {
		return nil, err
	}

	rows := make([]InputRow, 0, len(records)-1)
	for i, rec := range records[1:] {
		row := InputRow{
			Line:        i + 2,
			GrossIncome: cell(rec, idx[ColGrossIncome]),
			Dependents:  cell(rec, idx[ColDependents]),
			Region:      cell(rec, idx[ColRegion]),
		}
		// XLSX readers return trailing blank rows; skip fully empty ones.
		if row.GrossIncome == "" && row.Dependents == "" && row.Region == "" {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func headerIndex(header []string) (map[string]int, error) {
	idx := make(map[string]int, 3)
	for i, name := range header {
		idx[strings.TrimSpace(name)] = i
	}

	var missing []string
	for _, col := range []string{ColGrossIncome, ColDependents, ColRegion} {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, apperror.New(apperror.CodeInvalidInput,
			fmt.Sprintf("Missing required columns: %s", strings.Join(missing, ", ")), 400)
	}
	return idx, nil
}

func cell(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}
