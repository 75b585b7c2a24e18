// Package report renders tracker overviews and applicant lookups as
// pipe-delimited text tables.
package report

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"recruitment-tracker/models"
	"recruitment-tracker/tracker"
)

var (
	pendingHeader  = []string{"NetID", "Name", "Assignment Number", "Date Given", "Date Due"}
	detailedHeader = []string{"NetID", "Name", "Assignment Number", "Date Given", "Date Due", "Comments"}
	searchHeader   = []string{"NetID", "Name", "Email", "Major", "Assignment Number", "Date Given", "Date Due", "Comments"}
)

// section is one summary line, followed by a table when it has rows.
type section struct {
	summary  string
	title    string
	header   []string
	rows     []tracker.StatusRow
	comments bool
}

func sections(ov *tracker.Overview) []section {
	return []section{
		{
			summary: "Total Number of Applicants That Haven't Done with Their Assignment:",
			title:   "Applicants Who Haven't Submitted Assignments:-",
			header:  pendingHeader,
			rows:    ov.NotSubmitted,
		},
		{
			summary:  "Total Number of Applicants That Have Done Their Assignments:",
			title:    "Applicants Who Have Submitted Assignments:-",
			header:   detailedHeader,
			rows:     ov.Submitted,
			comments: true,
		},
		{
			summary:  "Applicants overdue on Assignments:",
			title:    "Applicants Who Are Overdue:-",
			header:   detailedHeader,
			rows:     ov.Overdue,
			comments: true,
		},
	}
}

// tableLine formats cells as "| a | b | c |".
func tableLine(cells []string) string {
	return "| " + strings.Join(cells, " | ") + " |"
}

func statusCells(r tracker.StatusRow, comments bool) []string {
	cells := []string{r.NetID, r.Name, r.AssignmentNo, r.DateGiven.String(), r.DateDue.String()}
	if comments {
		cells = append(cells, r.Comments)
	}
	return cells
}

// Render writes the overview to w, ending every line with newline. Views are
// written in the order not submitted, submitted, overdue.
func Render(w io.Writer, ov *tracker.Overview, newline string) error {
	bw := bufio.NewWriter(w)
	line := func(s string) {
		bw.WriteString(s)
		bw.WriteString(newline)
	}

	line(fmt.Sprintf("Total Number of Applicants Given an Assignment: %d", ov.TotalApplicants))
	for _, sec := range sections(ov) {
		line(fmt.Sprintf("%s %d", sec.summary, len(sec.rows)))
		if len(sec.rows) == 0 {
			continue
		}
		line(sec.title)
		line(tableLine(sec.header))
		for _, r := range sec.rows {
			line(tableLine(statusCells(r, sec.comments)))
		}
	}
	return bw.Flush()
}

// Print writes the overview for a terminal.
func Print(w io.Writer, ov *tracker.Overview) error {
	return Render(w, ov, "\n")
}

// WriteFile writes the overview to path, replacing any previous report.
func WriteFile(path string, ov *tracker.Overview, newline string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report %s: %w", path, err)
	}
	if err := Render(f, ov, newline); err != nil {
		f.Close()
		return fmt.Errorf("failed to write report %s: %w", path, err)
	}
	return f.Close()
}

// RenderApplicant writes one applicant and its assignment as a table.
func RenderApplicant(w io.Writer, d *models.ApplicantDetail) error {
	_, err := fmt.Fprintf(w, "%s\n%s\n",
		tableLine(searchHeader),
		tableLine([]string{
			d.NetID,
			d.Name,
			d.Email,
			d.Major,
			d.Task.AssignmentNo,
			d.Task.DateGiven.String(),
			d.Task.DateDue.String(),
			d.Task.AssignmentComments,
		}))
	return err
}
