package tracker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"recruitment-tracker/config"
	"recruitment-tracker/models"
	"recruitment-tracker/roster"
)

// Pair is one assignment row matched to one submission row.
type Pair struct {
	Assignment roster.AssignmentRow
	Submission roster.SubmissionRow
}

// ReconcileResult summarizes a bulk load.
type ReconcileResult struct {
	Matched              int `json:"matched"`
	UnmatchedAssignments int `json:"unmatched_assignments"`
	UnmatchedSubmissions int `json:"unmatched_submissions"`
}

// Match joins the rosters on (name, email). Pairs come out in assignment row
// order, then submission row order; every matching submission yields its own
// pair. Unmatched rows on either side are counted in the result and dropped.
func Match(assignments []roster.AssignmentRow, submissions []roster.SubmissionRow, join string) ([]Pair, ReconcileResult) {
	var pairs []Pair
	var res ReconcileResult
	used := make([]bool, len(submissions))

	emit := func(a roster.AssignmentRow, j int) {
		pairs = append(pairs, Pair{Assignment: a, Submission: submissions[j]})
		used[j] = true
	}

	switch join {
	case config.JoinHash:
		index := make(map[roster.Key][]int, len(submissions))
		for j, sub := range submissions {
			index[sub.Key()] = append(index[sub.Key()], j)
		}
		for _, a := range assignments {
			hits := index[a.Key()]
			if len(hits) == 0 {
				res.UnmatchedAssignments++
			}
			for _, j := range hits {
				emit(a, j)
			}
		}
	default:
		for _, a := range assignments {
			hit := false
			for j, sub := range submissions {
				if a.Name == sub.Name && a.Email == sub.Email {
					emit(a, j)
					hit = true
				}
			}
			if !hit {
				res.UnmatchedAssignments++
			}
		}
	}

	for _, u := range used {
		if !u {
			res.UnmatchedSubmissions++
		}
	}
	res.Matched = len(pairs)
	return pairs, res
}

// Records turns matched pairs into the rows to persist. Assignment IDs are
// numbered from 1 in match order and each applicant's task_id is the ID of the
// assignment created with it.
func Records(pairs []Pair) ([]models.Assignment, []models.Applicant) {
	assignments := make([]models.Assignment, 0, len(pairs))
	applicants := make([]models.Applicant, 0, len(pairs))
	for i, p := range pairs {
		id := i + 1
		assignments = append(assignments, models.Assignment{
			ID:                 id,
			AssignmentNo:       p.Assignment.AssignmentNo,
			TeamAssigned:       p.Assignment.TeamAssigned,
			DateGiven:          p.Assignment.DateGiven,
			DateDue:            p.Assignment.DateDue,
			AssignmentComments: models.DefaultAssignmentComments,
		})
		applicants = append(applicants, models.Applicant{
			NetID:  p.Submission.NetID,
			Name:   p.Submission.Name,
			Email:  p.Submission.Email,
			Year:   p.Submission.Year,
			Major:  p.Submission.Major,
			SMajor: p.Submission.SMajor,
			Teams:  p.Submission.Teams,
			Minor:  p.Submission.Minor,
			SMinor: p.Submission.SMinor,
			TaskID: id,
		})
	}
	return assignments, applicants
}

// Reconcile replaces every stored applicant and assignment with the result of
// joining the two rosters. The replacement is all-or-nothing: a duplicate
// netid among the matches fails the load with ErrConflict and leaves the
// store as it was.
func (s *Service) Reconcile(ctx context.Context, assignments []roster.AssignmentRow, submissions []roster.SubmissionRow) (ReconcileResult, error) {
	start := time.Now()
	pairs, res := Match(assignments, submissions, s.opts.Join)
	newAssignments, newApplicants := Records(pairs)

	seen := make(map[string]int, len(newApplicants))
	for i, a := range newApplicants {
		if prev, dup := seen[a.NetID]; dup {
			return ReconcileResult{}, models.Conflict("netid %q is matched by both submission pair %d and %d", a.NetID, prev+1, i+1)
		}
		seen[a.NetID] = i
	}

	if err := s.repo.ReplaceAll(ctx, newAssignments, newApplicants); err != nil {
		return ReconcileResult{}, err
	}

	s.log.Info("rosters reconciled",
		zap.Int("assignment_rows", len(assignments)),
		zap.Int("submission_rows", len(submissions)),
		zap.Int("matched", res.Matched),
		zap.Int("unmatched_assignments", res.UnmatchedAssignments),
		zap.Int("unmatched_submissions", res.UnmatchedSubmissions),
		zap.String("join", s.opts.Join),
		zap.Duration("took", time.Since(start)))
	return res, nil
}
