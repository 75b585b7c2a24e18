// Package db holds the record stores behind the tracker: a relational store
// on SQLite through gorm, and a redis store.
//
// Lookups that find nothing return a nil result and a nil error; deciding
// whether that is a failure is left to the caller.
package db

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"recruitment-tracker/config"
	"recruitment-tracker/models"
)

// Repository is the storage contract shared by every backend.
type Repository interface {
	GetApplicant(ctx context.Context, netid string) (*models.Applicant, error)
	// ListApplicants returns every applicant ordered by netid.
	ListApplicants(ctx context.Context) ([]models.Applicant, error)
	// ApplicantsByTask returns the applicants referencing an assignment, ordered by netid.
	ApplicantsByTask(ctx context.Context, taskID int) ([]models.Applicant, error)
	CountApplicants(ctx context.Context) (int64, error)
	CreateApplicant(ctx context.Context, a models.Applicant) error
	// ReplaceApplicant overwrites the applicant stored under netid with a,
	// moving it when a.NetID differs.
	ReplaceApplicant(ctx context.Context, netid string, a models.Applicant) error
	DeleteApplicant(ctx context.Context, netid string) error

	GetAssignment(ctx context.Context, id int) (*models.Assignment, error)
	// FindAssignments returns the assignments matching f, ordered by id.
	FindAssignments(ctx context.Context, f AssignmentFilter) ([]models.Assignment, error)
	// CreateAssignment inserts a. A zero ID is allocated by the store and written back.
	CreateAssignment(ctx context.Context, a *models.Assignment) error
	SaveAssignment(ctx context.Context, a models.Assignment) error

	// ReplaceAll empties both collections and inserts the given records, as
	// one unit: on failure the previous contents are kept.
	ReplaceAll(ctx context.Context, assignments []models.Assignment, applicants []models.Applicant) error

	Close() error
}

// AssignmentFilter narrows FindAssignments. Unset fields match everything.
type AssignmentFilter struct {
	Submitted    *bool
	DueBefore    *models.Date // strictly before
	AssignmentNo *string
}

// Match reports whether a passes the filter.
func (f AssignmentFilter) Match(a models.Assignment) bool {
	if f.Submitted != nil && a.Submitted != *f.Submitted {
		return false
	}
	if f.DueBefore != nil && !a.DateDue.Before(*f.DueBefore) {
		return false
	}
	if f.AssignmentNo != nil && a.AssignmentNo != *f.AssignmentNo {
		return false
	}
	return true
}

// Open builds the repository selected by cfg.Driver.
func Open(ctx context.Context, cfg config.StoreConfig, logger *zap.Logger) (Repository, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		return OpenSQLite(cfg.SQLitePath, logger)
	case config.DriverRedis:
		client, err := InitializeRedisClient(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		return NewRedisService(client, logger), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
