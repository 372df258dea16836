// Package dataset reads and writes the applicant table.
//
// Spreadsheets (.xlsx) are read with excelize, CSV files with gota. Both are
// normalized into a gota DataFrame of string columns before being converted
// into domain.Applicant values, so column validation and timestamp parsing
// happen in one place.
package dataset

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/xuri/excelize/v2"

	"github.com/apodwikat/abtest/internal/domain"
)

// Column names of the admissions export.
const (
	ColCountry  = "countryISO2"
	ColBirthday = "birthday"
	ColDegree   = "highestDegreeEarned"
	ColQuiz     = "admissionsQuiz"
	ColCreated  = "createdAt"
	ColGroup    = "group"
)

// RequiredColumns lists the columns every dataset must provide.
var RequiredColumns = []string{ColCountry, ColBirthday, ColDegree, ColQuiz, ColCreated}

// Result is a parsed dataset plus the number of rows that could not be used.
type Result struct {
	Applicants []domain.Applicant
	Skipped    int
}

// Load reads the dataset at path, choosing the reader from the file extension.
func Load(path string) (*Result, error) {
	var (
		df  dataframe.DataFrame
		err error
	)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		df, err = readSpreadsheet(path)
	case ".csv":
		df, err = readCSVFile(path)
	default:
		return nil, fmt.Errorf("unsupported dataset format %q", filepath.Ext(path))
	}
	if err != nil {
		return nil, err
	}

	return FromFrame(df)
}

// ReadCSV reads a CSV dataset from r.
func ReadCSV(r io.Reader) (*Result, error) {
	df := dataframe.ReadCSV(r, stringColumns()...)
	if df.Err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", df.Err)
	}
	return FromFrame(df)
}

func readCSVFile(path string) (dataframe.DataFrame, error) {
	f, err := os.Open(path)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()

	df := dataframe.ReadCSV(f, stringColumns()...)
	if df.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("failed to parse csv: %w", df.Err)
	}
	return df, nil
}

func readSpreadsheet(path string) (dataframe.DataFrame, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("failed to open spreadsheet: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return dataframe.DataFrame{}, domain.ErrEmptyDataset
	}

	// Raw values keep dates as Excel serial numbers regardless of cell format.
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	if len(rows) < 2 {
		return dataframe.DataFrame{}, domain.ErrEmptyDataset
	}

	width := len(rows[0])
	records := make([][]string, 0, len(rows))
	for _, row := range rows {
		if isBlank(row) {
			continue
		}
		// excelize trims trailing empty cells; gota needs rectangular input.
		padded := make([]string, width)
		copy(padded, row)
		records = append(records, padded)
	}

	df := dataframe.LoadRecords(records, stringColumns()...)
	if df.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("failed to load sheet %q: %w", sheets[0], df.Err)
	}
	return df, nil
}

func stringColumns() []dataframe.LoadOption {
	return []dataframe.LoadOption{
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.HasHeader(true),
	}
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
