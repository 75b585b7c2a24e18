package db

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"recruitment-tracker/models"
)

// SQLRepository stores applicants and assignments in SQLite.
type SQLRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

// sqliteDSN turns a plain path or a file: URI into a DSN with foreign keys on.
func sqliteDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_foreign_keys=on"
}

// dataFile is the filesystem path behind a plain path or a file: URI.
func dataFile(path string) string {
	file := strings.TrimPrefix(path, "file:")
	if i := strings.IndexByte(file, '?'); i >= 0 {
		file = file[:i]
	}
	return file
}

// OpenSQLite opens (or creates) the database at path and migrates the schema.
// path may be a file: URI with its own query. Foreign keys are enforced on
// every connection.
func OpenSQLite(path string, logger *zap.Logger) (*SQLRepository, error) {
	if file := dataFile(path); file != "" && file != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(file), 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	gdb, err := gorm.Open(sqlite.Open(sqliteDSN(path)), &gorm.Config{
		TranslateError: true,
		Logger: gormlogger.New(zap.NewStdLog(logger.Named("gorm")), gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := gdb.AutoMigrate(&models.Assignment{}, &models.Applicant{}); err != nil {
		if sqlDB, dbErr := gdb.DB(); dbErr == nil {
			sqlDB.Close()
		}
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Debug("sqlite store ready", zap.String("path", path))
	return &SQLRepository{db: gdb, log: logger}, nil
}

// Close closes the underlying connection pool.
func (s *SQLRepository) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// translate maps driver failures onto the domain error kinds.
func translate(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return models.Conflict("%s already exists", what)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return models.Invalid("%s references a missing assignment", what)
	default:
		return fmt.Errorf("%s: %w", what, err)
	}
}

// --- Applicant Operations ---

func (s *SQLRepository) GetApplicant(ctx context.Context, netid string) (*models.Applicant, error) {
	var a models.Applicant
	err := s.db.WithContext(ctx).Where("netid = ?", netid).Take(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get applicant %s: %w", netid, err)
	}
	return &a, nil
}

func (s *SQLRepository) ListApplicants(ctx context.Context) ([]models.Applicant, error) {
	var out []models.Applicant
	if err := s.db.WithContext(ctx).Order("netid").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list applicants: %w", err)
	}
	return out, nil
}

func (s *SQLRepository) ApplicantsByTask(ctx context.Context, taskID int) ([]models.Applicant, error) {
	var out []models.Applicant
	if err := s.db.WithContext(ctx).Where("task_id = ?", taskID).Order("netid").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to get applicants for assignment %d: %w", taskID, err)
	}
	return out, nil
}

func (s *SQLRepository) CountApplicants(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.Applicant{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count applicants: %w", err)
	}
	return n, nil
}

func (s *SQLRepository) CreateApplicant(ctx context.Context, a models.Applicant) error {
	a.Assignment = nil
	err := s.db.WithContext(ctx).Create(&a).Error
	return translate(err, fmt.Sprintf("applicant %s", a.NetID))
}

func (s *SQLRepository) ReplaceApplicant(ctx context.Context, netid string, a models.Applicant) error {
	a.Assignment = nil
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("netid = ?", netid).Delete(&models.Applicant{}).Error; err != nil {
			return err
		}
		return tx.Create(&a).Error
	})
	return translate(err, fmt.Sprintf("applicant %s", a.NetID))
}

func (s *SQLRepository) DeleteApplicant(ctx context.Context, netid string) error {
	if err := s.db.WithContext(ctx).Where("netid = ?", netid).Delete(&models.Applicant{}).Error; err != nil {
		return fmt.Errorf("failed to delete applicant %s: %w", netid, err)
	}
	return nil
}

// --- Assignment Operations ---

func (s *SQLRepository) GetAssignment(ctx context.Context, id int) (*models.Assignment, error) {
	var a models.Assignment
	err := s.db.WithContext(ctx).Where("id = ?", id).Take(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get assignment %d: %w", id, err)
	}
	return &a, nil
}

func (s *SQLRepository) FindAssignments(ctx context.Context, f AssignmentFilter) ([]models.Assignment, error) {
	q := s.db.WithContext(ctx).Model(&models.Assignment{})
	if f.Submitted != nil {
		q = q.Where("submitted = ?", *f.Submitted)
	}
	if f.DueBefore != nil {
		q = q.Where("date_due < ?", *f.DueBefore)
	}
	if f.AssignmentNo != nil {
		q = q.Where("assignment_no = ?", *f.AssignmentNo)
	}
	var out []models.Assignment
	if err := q.Order("id").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to query assignments: %w", err)
	}
	return out, nil
}

func (s *SQLRepository) CreateAssignment(ctx context.Context, a *models.Assignment) error {
	err := s.db.WithContext(ctx).Create(a).Error
	return translate(err, fmt.Sprintf("assignment %d", a.ID))
}

func (s *SQLRepository) SaveAssignment(ctx context.Context, a models.Assignment) error {
	err := s.db.WithContext(ctx).Save(&a).Error
	return translate(err, fmt.Sprintf("assignment %d", a.ID))
}

// --- Bulk Load ---

const insertBatchSize = 100

func (s *SQLRepository) ReplaceAll(ctx context.Context, assignments []models.Assignment, applicants []models.Applicant) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// applicants first: they hold the foreign key
		if err := tx.Exec("DELETE FROM applicants").Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM assignments").Error; err != nil {
			return err
		}
		// restart the id allocator as a freshly created table would
		var seqTables int64
		if err := tx.Raw("SELECT count(*) FROM sqlite_master WHERE name = 'sqlite_sequence'").Scan(&seqTables).Error; err != nil {
			return err
		}
		if seqTables > 0 {
			if err := tx.Exec("DELETE FROM sqlite_sequence WHERE name = ?", "assignments").Error; err != nil {
				return err
			}
		}
		if len(assignments) > 0 {
			if err := tx.CreateInBatches(&assignments, insertBatchSize).Error; err != nil {
				return translate(err, "assignment")
			}
		}
		if len(applicants) > 0 {
			if err := tx.CreateInBatches(&applicants, insertBatchSize).Error; err != nil {
				return translate(err, "applicant")
			}
		}
		return nil
	})
	if err != nil {
		s.log.Error("bulk load rolled back", zap.Error(err))
		return fmt.Errorf("failed to replace records: %w", err)
	}
	s.log.Info("bulk load committed",
		zap.Int("assignments", len(assignments)),
		zap.Int("applicants", len(applicants)))
	return nil
}
