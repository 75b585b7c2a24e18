package roster

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/xuri/excelize/v2"
)

// ReadTable loads every row of a roster file. Excel workbooks are read from
// their first sheet; anything else is treated as CSV.
func ReadTable(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open roster %s: %w", path, err)
	}
	defer f.Close()
	return ReadTableFrom(f, path)
}

// ReadTableFrom reads rows from r, picking the format from name's extension.
func ReadTableFrom(r io.Reader, name string) ([][]string, error) {
	if isExcel(name) {
		return ReadExcel(r)
	}
	return ReadCSV(r)
}

// ReadCSV reads all records of a CSV stream. Rows may have differing widths.
func ReadCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	return rows, nil
}

// ReadExcel reads the rows of the first sheet of a workbook stream.
func ReadExcel(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open excel file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, errors.New("excel file does not contain any sheets")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows from sheet %s: %w", sheetName, err)
	}
	return rows, nil
}

// LoadAssignments reads and extracts an assignment roster file.
func LoadAssignments(path string) ([]AssignmentRow, error) {
	rows, err := ReadTable(path)
	if err != nil {
		return nil, err
	}
	out, err := ExtractAssignments(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return out, nil
}

// LoadSubmissions reads and extracts a submission roster file.
func LoadSubmissions(path string) ([]SubmissionRow, error) {
	rows, err := ReadTable(path)
	if err != nil {
		return nil, err
	}
	return ExtractSubmissions(rows), nil
}
