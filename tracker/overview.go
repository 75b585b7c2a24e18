package tracker

import (
	"context"

	"golang.org/x/sync/errgroup"

	"recruitment-tracker/db"
	"recruitment-tracker/models"
)

// StatusRow is one assignment in a status view, with the applicant holding it.
type StatusRow struct {
	NetID        string      `json:"netid"`
	Name         string      `json:"name"`
	AssignmentNo string      `json:"assignment_no"`
	DateGiven    models.Date `json:"date_given"`
	DateDue      models.Date `json:"date_due"`
	Comments     string      `json:"comments"`
}

// Overview is the status report as of Date.
type Overview struct {
	Date            models.Date `json:"date"`
	TotalApplicants int64       `json:"total_applicants"`
	NotSubmitted    []StatusRow `json:"not_submitted"`
	Submitted       []StatusRow `json:"submitted"`
	// Overdue lists assignments due strictly before Date, submitted or not.
	Overdue []StatusRow `json:"overdue"`
}

// Overview classifies the stored assignments as of today. Each view is its own
// store query, so the overdue view overlaps the other two. The queries run
// concurrently; the first failure cancels the rest.
func (s *Service) Overview(ctx context.Context, today models.Date) (*Overview, error) {
	ov := &Overview{Date: today}
	no, yes := false, true

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		ov.TotalApplicants, err = s.repo.CountApplicants(gctx)
		return err
	})
	g.Go(func() (err error) {
		ov.NotSubmitted, err = s.view(gctx, db.AssignmentFilter{Submitted: &no})
		return err
	})
	g.Go(func() (err error) {
		ov.Submitted, err = s.view(gctx, db.AssignmentFilter{Submitted: &yes})
		return err
	})
	g.Go(func() (err error) {
		ov.Overdue, err = s.view(gctx, db.AssignmentFilter{DueBefore: &today})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return ov, nil
}

// view loads the assignments matching f and joins each to its first
// applicant by netid. An assignment nobody holds means the store is corrupt
// and fails the whole view.
func (s *Service) view(ctx context.Context, f db.AssignmentFilter) ([]StatusRow, error) {
	assignments, err := s.repo.FindAssignments(ctx, f)
	if err != nil {
		return nil, err
	}
	rows := make([]StatusRow, 0, len(assignments))
	for _, a := range assignments {
		holders, err := s.repo.ApplicantsByTask(ctx, a.ID)
		if err != nil {
			return nil, err
		}
		if len(holders) == 0 {
			return nil, models.NotFound("assignment %d has no applicant", a.ID)
		}
		rows = append(rows, StatusRow{
			NetID:        holders[0].NetID,
			Name:         holders[0].Name,
			AssignmentNo: a.AssignmentNo,
			DateGiven:    a.DateGiven,
			DateDue:      a.DateDue,
			Comments:     a.AssignmentComments,
		})
	}
	return rows, nil
}
