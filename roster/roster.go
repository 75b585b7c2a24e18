// Package roster turns raw assignment and submission tables into typed rows.
//
// Both tables carry a header row, which is skipped, and are addressed purely by
// column position.
package roster

import (
	"strings"

	"recruitment-tracker/models"
)

// Assignment roster columns.
const (
	colAssignName  = 0
	colAssignEmail = 1
	colFirstTeam   = 2 // Quantitative Research; the next three follow models.Teams order
	colDateGiven   = 6
	colDateDue     = 7
)

// Submission roster columns. 10 and 11 are not read.
const (
	colSubEmail  = 2
	colSubName   = 3
	colSubNetID  = 4
	colSubYear   = 5
	colSubMajor  = 6
	colSubSMajor = 7
	colSubMinor  = 8
	colSubSMinor = 9
	colSubTeams  = 12
)

// AssignmentRow is one data row of the assignment roster.
type AssignmentRow struct {
	Name         string
	Email        string
	TeamAssigned models.Team
	AssignmentNo string
	DateGiven    models.Date
	DateDue      models.Date
}

// SubmissionRow is one data row of the submission roster.
type SubmissionRow struct {
	Name   string
	NetID  string
	Email  string
	Year   string
	Major  string
	SMajor string
	Minor  string
	SMinor string
	Teams  string
}

// cell returns row[i], or "" when the row is too short.
func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

// ExtractAssignments reads assignment rows, skipping the header. The first
// non-empty team column decides the team and supplies the assignment number.
func ExtractAssignments(rows [][]string) ([]AssignmentRow, error) {
	out := make([]AssignmentRow, 0, len(rows))
	for i, row := range rows {
		if i == 0 {
			continue // header
		}
		rowNo := i + 1

		var (
			team  models.Team
			label string
		)
		for offset, candidate := range models.Teams {
			if v := cell(row, colFirstTeam+offset); v != "" {
				team, label = candidate, v
				break
			}
		}
		if team == "" {
			return nil, &models.ParseError{Row: rowNo, Column: -1, Reason: "no team column is set"}
		}

		given, err := models.ParseDate(cell(row, colDateGiven))
		if err != nil {
			return nil, &models.ParseError{Row: rowNo, Column: colDateGiven, Reason: "invalid date_given", Err: err}
		}
		due, err := models.ParseDate(cell(row, colDateDue))
		if err != nil {
			return nil, &models.ParseError{Row: rowNo, Column: colDateDue, Reason: "invalid date_due", Err: err}
		}

		out = append(out, AssignmentRow{
			Name:         cell(row, colAssignName),
			Email:        cell(row, colAssignEmail),
			TeamAssigned: team,
			AssignmentNo: label,
			DateGiven:    given,
			DateDue:      due,
		})
	}
	return out, nil
}

// ExtractSubmissions reads submission rows, skipping the header. Cells are
// taken as-is.
func ExtractSubmissions(rows [][]string) []SubmissionRow {
	out := make([]SubmissionRow, 0, len(rows))
	for i, row := range rows {
		if i == 0 {
			continue // header
		}
		out = append(out, SubmissionRow{
			Name:   cell(row, colSubName),
			NetID:  cell(row, colSubNetID),
			Email:  cell(row, colSubEmail),
			Year:   cell(row, colSubYear),
			Major:  cell(row, colSubMajor),
			SMajor: cell(row, colSubSMajor),
			Minor:  cell(row, colSubMinor),
			SMinor: cell(row, colSubSMinor),
			Teams:  cell(row, colSubTeams),
		})
	}
	return out
}

// Key is the (name, email) pair the two rosters are joined on.
type Key struct {
	Name  string
	Email string
}

func (r AssignmentRow) Key() Key { return Key{Name: r.Name, Email: r.Email} }

func (r SubmissionRow) Key() Key { return Key{Name: r.Name, Email: r.Email} }

func isExcel(path string) bool {
	lower := strings.ToLower(path)
	return strings.HasSuffix(lower, ".xlsx") || strings.HasSuffix(lower, ".xlsm")
}
