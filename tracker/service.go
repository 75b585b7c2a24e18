// Package tracker is the record store facade: CRUD over applicants and
// assignments with the uniqueness and reference rules enforced, the roster
// reconciliation, and the status overview.
package tracker

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"recruitment-tracker/config"
	"recruitment-tracker/db"
	"recruitment-tracker/models"
)

// Options tunes the service.
type Options struct {
	// OneToOne rejects an applicant whose task is already held by another applicant.
	OneToOne bool
	// Join is config.JoinNested or config.JoinHash.
	Join string
}

// Service holds the dependencies of every tracker operation.
type Service struct {
	repo db.Repository
	log  *zap.Logger
	opts Options
}

// NewService creates a Service over repo.
func NewService(repo db.Repository, logger *zap.Logger, opts Options) *Service {
	if opts.Join == "" {
		opts.Join = config.JoinNested
	}
	return &Service{repo: repo, log: logger, opts: opts}
}

// --- Applicants ---

// ListApplicants returns every applicant ordered by netid.
func (s *Service) ListApplicants(ctx context.Context) ([]models.Applicant, error) {
	return s.repo.ListApplicants(ctx)
}

// GetApplicant returns an applicant with its assignment. It fails with
// ErrNotFound when either is missing.
func (s *Service) GetApplicant(ctx context.Context, netid string) (*models.ApplicantDetail, error) {
	a, err := s.repo.GetApplicant(ctx, netid)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, models.NotFound("applicant with netid %q not found", netid)
	}
	task, err := s.repo.GetAssignment(ctx, a.TaskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, models.NotFound("assignment %d of applicant %q not found", a.TaskID, netid)
	}
	return &models.ApplicantDetail{Applicant: *a, Task: *task}, nil
}

// CreateApplicant stores a new applicant.
func (s *Service) CreateApplicant(ctx context.Context, a models.Applicant) (*models.ApplicantDetail, error) {
	if a.NetID == "" {
		return nil, models.Invalid("netid is required")
	}
	a.Assignment = nil

	existing, err := s.repo.GetApplicant(ctx, a.NetID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.Conflict("applicant with netid %q already exists", a.NetID)
	}
	task, err := s.requireTask(ctx, a.TaskID, a.NetID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreateApplicant(ctx, a); err != nil {
		return nil, err
	}

	s.log.Info("applicant created", zap.String("netid", a.NetID), zap.Int("task_id", a.TaskID))
	return &models.ApplicantDetail{Applicant: a, Task: *task}, nil
}

// UpdateApplicant replaces the applicant stored under netid with a. An empty
// a.NetID keeps netid; a different one renames the record.
func (s *Service) UpdateApplicant(ctx context.Context, netid string, a models.Applicant) (*models.ApplicantDetail, error) {
	if a.NetID == "" {
		a.NetID = netid
	}
	a.Assignment = nil

	existing, err := s.repo.GetApplicant(ctx, netid)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, models.NotFound("applicant with netid %q does not exist", netid)
	}
	if a.NetID != netid {
		other, err := s.repo.GetApplicant(ctx, a.NetID)
		if err != nil {
			return nil, err
		}
		if other != nil {
			return nil, models.Conflict("applicant with netid %q already exists", a.NetID)
		}
	}
	task, err := s.requireTask(ctx, a.TaskID, netid)
	if err != nil {
		return nil, err
	}
	if err := s.repo.ReplaceApplicant(ctx, netid, a); err != nil {
		return nil, err
	}

	s.log.Info("applicant updated", zap.String("netid", netid), zap.String("new_netid", a.NetID))
	return &models.ApplicantDetail{Applicant: a, Task: *task}, nil
}

// DeleteApplicant removes an applicant. Its assignment is kept.
func (s *Service) DeleteApplicant(ctx context.Context, netid string) error {
	existing, err := s.repo.GetApplicant(ctx, netid)
	if err != nil {
		return err
	}
	if existing == nil {
		return models.NotFound("applicant with netid %q not found", netid)
	}
	if err := s.repo.DeleteApplicant(ctx, netid); err != nil {
		return err
	}
	s.log.Info("applicant deleted", zap.String("netid", netid))
	return nil
}

// requireTask loads the assignment an applicant points at. holder is the
// netid allowed to already hold it under the one-to-one rule.
func (s *Service) requireTask(ctx context.Context, taskID int, holder string) (*models.Assignment, error) {
	task, err := s.repo.GetAssignment(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, models.Invalid("task id %d does not exist", taskID)
	}
	if !s.opts.OneToOne {
		return task, nil
	}
	holders, err := s.repo.ApplicantsByTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	for _, h := range holders {
		if h.NetID != holder {
			return nil, models.Conflict("task id %d is already assigned to %q", taskID, h.NetID)
		}
	}
	return task, nil
}

// --- Assignments ---

// CreateAssignment stores a new assignment. A zero ID is allocated by the store.
func (s *Service) CreateAssignment(ctx context.Context, a models.Assignment) (*models.Assignment, error) {
	if err := validateAssignment(a); err != nil {
		return nil, err
	}
	if a.AssignmentComments == "" {
		a.AssignmentComments = models.DefaultAssignmentComments
	}
	if a.ID != 0 {
		existing, err := s.repo.GetAssignment(ctx, a.ID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, models.Conflict("assignment with id %d already exists", a.ID)
		}
	}
	if err := s.repo.CreateAssignment(ctx, &a); err != nil {
		return nil, err
	}
	s.log.Info("assignment created", zap.Int("id", a.ID), zap.String("assignment_no", a.AssignmentNo))
	return &a, nil
}

// GetAssignment returns an assignment and the applicants holding it.
func (s *Service) GetAssignment(ctx context.Context, id int) (*models.AssignmentDetail, error) {
	a, err := s.repo.GetAssignment(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, models.NotFound("assignment with id %d is not available", id)
	}
	return s.detail(ctx, *a)
}

// AssignmentsByNumber returns every assignment labelled no. It fails with
// ErrNotFound when there is none.
func (s *Service) AssignmentsByNumber(ctx context.Context, no string) ([]models.AssignmentDetail, error) {
	found, err := s.repo.FindAssignments(ctx, db.AssignmentFilter{AssignmentNo: &no})
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, models.NotFound("assignment with the assignment number %q does not exist", no)
	}
	out := make([]models.AssignmentDetail, 0, len(found))
	for _, a := range found {
		d, err := s.detail(ctx, a)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, nil
}

// UpdateAssignment applies the set fields of upd to assignment id.
func (s *Service) UpdateAssignment(ctx context.Context, id int, upd models.AssignmentUpdate) (*models.Assignment, error) {
	a, err := s.repo.GetAssignment(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, models.NotFound("assignment with id %d does not exist", id)
	}
	upd.Apply(a)
	if err := validateAssignment(*a); err != nil {
		return nil, err
	}
	if err := s.repo.SaveAssignment(ctx, *a); err != nil {
		return nil, err
	}
	s.log.Info("assignment updated", zap.Int("id", id))
	return a, nil
}

// validateAssignment checks the fields every stored assignment must carry.
// date_due is not compared with date_given.
func validateAssignment(a models.Assignment) error {
	switch {
	case a.AssignmentNo == "":
		return models.Invalid("assignment_no is required")
	case !a.TeamAssigned.Valid():
		return models.Invalid("unknown team %q", a.TeamAssigned)
	case a.DateGiven.IsZero():
		return models.Invalid("date_given is required")
	case a.DateDue.IsZero():
		return models.Invalid("date_due is required")
	}
	return nil
}

func (s *Service) detail(ctx context.Context, a models.Assignment) (*models.AssignmentDetail, error) {
	holders, err := s.repo.ApplicantsByTask(ctx, a.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load applicants of assignment %d: %w", a.ID, err)
	}
	if holders == nil {
		holders = []models.Applicant{}
	}
	return &models.AssignmentDetail{Assignment: a, Applicants: holders}, nil
}
