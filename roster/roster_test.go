package roster

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"recruitment-tracker/models"
)

var assignmentHeader = []string{"Name", "Email", "QR", "SI", "SD", "Business", "Given", "Due"}

func TestExtractAssignmentsTeamColumns(t *testing.T) {
	tests := []struct {
		name   string
		teams  [4]string
		want   models.Team
		wantNo string
	}{
		{"quant only", [4]string{"Q1", "", "", ""}, models.TeamQuantitativeResearch, "Q1"},
		{"strategy only", [4]string{"", "Q2", "", ""}, models.TeamStrategyImplementation, "Q2"},
		{"software only", [4]string{"", "", "S3", ""}, models.TeamSoftwareDevelopment, "S3"},
		{"business only", [4]string{"", "", "", "B4"}, models.TeamBusiness, "B4"},
		{"quant wins over the rest", [4]string{"Q1", "Q2", "S3", "B4"}, models.TeamQuantitativeResearch, "Q1"},
		{"first non-empty wins", [4]string{"", "", "S3", "B4"}, models.TeamSoftwareDevelopment, "S3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := []string{"Jane Doe", "jane@x.edu", tt.teams[0], tt.teams[1], tt.teams[2], tt.teams[3], "2024-01-01", "2024-01-15"}
			got, err := ExtractAssignments([][]string{assignmentHeader, row})
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, tt.want, got[0].TeamAssigned)
			assert.Equal(t, tt.wantNo, got[0].AssignmentNo)
		})
	}
}

func TestExtractAssignmentsScenario(t *testing.T) {
	got, err := ExtractAssignments([][]string{
		assignmentHeader,
		{"Jane Doe", "jane@x.edu", "", "Q2", "", "", "2024-01-01", "2024-01-15"},
	})
	require.NoError(t, err)
	assert.Equal(t, []AssignmentRow{{
		Name:         "Jane Doe",
		Email:        "jane@x.edu",
		TeamAssigned: models.TeamStrategyImplementation,
		AssignmentNo: "Q2",
		DateGiven:    models.NewDate(2024, time.January, 1),
		DateDue:      models.NewDate(2024, time.January, 15),
	}}, got)
}

func TestExtractAssignmentsErrors(t *testing.T) {
	tests := []struct {
		name    string
		row     []string
		wantCol int
	}{
		{"no team", []string{"Jane Doe", "jane@x.edu", "", "", "", "", "2024-01-01", "2024-01-15"}, -1},
		{"bad given", []string{"Jane Doe", "jane@x.edu", "Q1", "", "", "", "01/01/2024", "2024-01-15"}, colDateGiven},
		{"bad due", []string{"Jane Doe", "jane@x.edu", "Q1", "", "", "", "2024-01-01", "2024-13-40"}, colDateDue},
		{"short row", []string{"Jane Doe", "jane@x.edu", "Q1"}, colDateGiven},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ExtractAssignments([][]string{assignmentHeader, tt.row})
			require.Error(t, err)
			assert.True(t, errors.Is(err, models.ErrParse))

			var pe *models.ParseError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, 2, pe.Row)
			assert.Equal(t, tt.wantCol, pe.Column)
		})
	}
}

func TestExtractAssignmentsHeaderOnly(t *testing.T) {
	got, err := ExtractAssignments([][]string{assignmentHeader})
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = ExtractAssignments(nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestExtractSubmissions(t *testing.T) {
	header := make([]string, 13)
	row := []string{"ts", "score", "jane@x.edu", "Jane Doe", "jd123", "2026", "Math", "CS", "Econ", "", "ignored", "ignored", "QR, SD"}
	got := ExtractSubmissions([][]string{header, row, {"only", "two"}})

	require.Len(t, got, 2)
	assert.Equal(t, SubmissionRow{
		Name:   "Jane Doe",
		NetID:  "jd123",
		Email:  "jane@x.edu",
		Year:   "2026",
		Major:  "Math",
		SMajor: "CS",
		Minor:  "Econ",
		SMinor: "",
		Teams:  "QR, SD",
	}, got[0])
	assert.Equal(t, SubmissionRow{}, got[1])
}

func TestReadCSV(t *testing.T) {
	rows, err := ReadCSV(strings.NewReader("a,b,c\n1,2\n\"x, y\",z,w\n"))
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a", "b", "c"}, {"1", "2"}, {"x, y", "z", "w"}}, rows)
}

func TestLoadAssignmentsCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "assignments.csv")
	content := "Name,Email,QR,SI,SD,B,Given,Due\nJane Doe,jane@x.edu,,Q2,,,2024-01-01,2024-01-15\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	got, err := LoadAssignments(path)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, models.TeamStrategyImplementation, got[0].TeamAssigned)
}

func TestLoadAssignmentsParseErrorNamesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "assignments.csv")
	content := "Name,Email,QR,SI,SD,B,Given,Due\nJane Doe,jane@x.edu,,,,,2024-01-01,2024-01-15\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	_, err := LoadAssignments(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrParse))
	assert.Contains(t, err.Error(), path)
}

func TestLoadSubmissionsExcel(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]string{"Timestamp", "Score", "Email", "Name", "NetID"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]string{"t", "s", "jane@x.edu", "Jane Doe", "jd123", "2026", "Math"}))

	path := filepath.Join(t.TempDir(), "submissions.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	got, err := LoadSubmissions(path)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "jd123", got[0].NetID)
	assert.Equal(t, "Jane Doe", got[0].Name)
	assert.Equal(t, "Math", got[0].Major)
	assert.Equal(t, "", got[0].Teams)
}

func TestReadTableMissingFile(t *testing.T) {
	_, err := ReadTable(filepath.Join(t.TempDir(), "nope.csv"))
	assert.Error(t, err)
}
