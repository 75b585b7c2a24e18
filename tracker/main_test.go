package tracker

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"recruitment-tracker/db"
	"recruitment-tracker/models"
	"recruitment-tracker/roster"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestService(t *testing.T, opts Options) (*Service, db.Repository) {
	t.Helper()
	repo, err := db.OpenSQLite(filepath.Join(t.TempDir(), "tracker.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return NewService(repo, zap.NewNop(), opts), repo
}

func assignmentRow(name, email string, team models.Team, no string, due models.Date) roster.AssignmentRow {
	return roster.AssignmentRow{
		Name:         name,
		Email:        email,
		TeamAssigned: team,
		AssignmentNo: no,
		DateGiven:    models.NewDate(2024, time.January, 1),
		DateDue:      due,
	}
}

func submissionRow(name, email, netid string) roster.SubmissionRow {
	return roster.SubmissionRow{
		Name:  name,
		Email: email,
		NetID: netid,
		Year:  "2026",
		Major: "Economics",
		Teams: "QR, B",
	}
}
