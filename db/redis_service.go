package db

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"recruitment-tracker/config"
	"recruitment-tracker/models"
)

const (
	assignmentsKey         = "assignments"     // Set: all assignment IDs
	assignmentInfoPrefix   = "assignment:"     // Hash prefix: assignment:{id} -> assignment fields
	assignmentSeqKey       = "assignment:seq"  // String: highest allocated assignment ID
	assignmentNumberPrefix = "assignments:no:" // Set prefix: assignments:no:{no} -> assignment IDs
	applicantsKey          = "applicants"      // Set: all applicant netids
	applicantInfoPrefix    = "applicant:"      // Hash prefix: applicant:{netid} -> applicant fields
)

// RedisService stores applicants and assignments in redis hashes, with sets
// as indexes.
type RedisService struct {
	Client *redis.Client
	log    *zap.Logger
}

// NewRedisService creates a new RedisService instance
func NewRedisService(client *redis.Client, logger *zap.Logger) *RedisService {
	return &RedisService{
		Client: client,
		log:    logger,
	}
}

// Helper to generate assignment info key
func getAssignmentInfoKey(id int) string {
	return assignmentInfoPrefix + strconv.Itoa(id)
}

// Helper to generate the key of the set of netids holding an assignment
func getAssignmentApplicantsKey(id int) string {
	return assignmentInfoPrefix + strconv.Itoa(id) + ":applicants"
}

// Helper to generate assignment number index key
func getAssignmentNumberKey(no string) string {
	return assignmentNumberPrefix + no
}

// Helper to generate applicant info key
func getApplicantInfoKey(netid string) string {
	return applicantInfoPrefix + netid
}

func applicantFields(a models.Applicant) map[string]interface{} {
	return map[string]interface{}{
		"netid":    a.NetID,
		"selected": strconv.FormatBool(a.Selected),
		"comments": a.Comments,
		"name":     a.Name,
		"email":    a.Email,
		"year":     a.Year,
		"major":    a.Major,
		"smajor":   a.SMajor,
		"teams":    a.Teams,
		"minor":    a.Minor,
		"sminor":   a.SMinor,
		"task_id":  strconv.Itoa(a.TaskID),
	}
}

func applicantFromHash(data map[string]string) (*models.Applicant, error) {
	selected, err := strconv.ParseBool(data["selected"])
	if err != nil {
		return nil, fmt.Errorf("bad selected flag for applicant %s: %w", data["netid"], err)
	}
	taskID, err := strconv.Atoi(data["task_id"])
	if err != nil {
		return nil, fmt.Errorf("bad task_id for applicant %s: %w", data["netid"], err)
	}
	return &models.Applicant{
		NetID:    data["netid"],
		Selected: selected,
		Comments: data["comments"],
		Name:     data["name"],
		Email:    data["email"],
		Year:     data["year"],
		Major:    data["major"],
		SMajor:   data["smajor"],
		Teams:    data["teams"],
		Minor:    data["minor"],
		SMinor:   data["sminor"],
		TaskID:   taskID,
	}, nil
}

func assignmentFields(a models.Assignment) map[string]interface{} {
	return map[string]interface{}{
		"id":                  strconv.Itoa(a.ID),
		"assignment_no":       a.AssignmentNo,
		"team_assigned":       string(a.TeamAssigned),
		"date_given":          a.DateGiven.String(),
		"date_due":            a.DateDue.String(),
		"submitted":           strconv.FormatBool(a.Submitted),
		"assignment_comments": a.AssignmentComments,
	}
}

func assignmentFromHash(data map[string]string) (*models.Assignment, error) {
	id, err := strconv.Atoi(data["id"])
	if err != nil {
		return nil, fmt.Errorf("bad assignment id %q: %w", data["id"], err)
	}
	submitted, err := strconv.ParseBool(data["submitted"])
	if err != nil {
		return nil, fmt.Errorf("bad submitted flag for assignment %d: %w", id, err)
	}
	a := &models.Assignment{
		ID:                 id,
		AssignmentNo:       data["assignment_no"],
		TeamAssigned:       models.Team(data["team_assigned"]),
		Submitted:          submitted,
		AssignmentComments: data["assignment_comments"],
	}
	if err := a.DateGiven.Scan(data["date_given"]); err != nil {
		return nil, fmt.Errorf("bad date_given for assignment %d: %w", id, err)
	}
	if err := a.DateDue.Scan(data["date_due"]); err != nil {
		return nil, fmt.Errorf("bad date_due for assignment %d: %w", id, err)
	}
	return a, nil
}

// --- Applicant Operations ---

// GetApplicant retrieves an applicant by netid
func (s *RedisService) GetApplicant(ctx context.Context, netid string) (*models.Applicant, error) {
	data, err := s.Client.HGetAll(ctx, getApplicantInfoKey(netid)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		s.log.Error("get applicant", zap.String("netid", netid), zap.Error(err))
		return nil, fmt.Errorf("failed to get applicant from Redis: %w", err)
	}
	if len(data) == 0 {
		return nil, nil // Not found
	}
	return applicantFromHash(data)
}

// getApplicants fetches the applicants for the given netids, sorted by netid.
func (s *RedisService) getApplicants(ctx context.Context, netids []string) ([]models.Applicant, error) {
	sort.Strings(netids)
	cmds := make([]*redis.StringStringMapCmd, len(netids))
	_, err := s.Client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, id := range netids {
			cmds[i] = pipe.HGetAll(ctx, getApplicantInfoKey(id))
		}
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to fetch applicants from Redis: %w", err)
	}

	applicants := make([]models.Applicant, 0, len(netids))
	for i, cmd := range cmds {
		data := cmd.Val()
		if len(data) == 0 {
			s.log.Warn("dangling applicant index entry", zap.String("netid", netids[i]))
			continue
		}
		a, err := applicantFromHash(data)
		if err != nil {
			return nil, err
		}
		applicants = append(applicants, *a)
	}
	return applicants, nil
}

// ListApplicants retrieves all applicants
func (s *RedisService) ListApplicants(ctx context.Context) ([]models.Applicant, error) {
	netids, err := s.Client.SMembers(ctx, applicantsKey).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to get applicant netids from Redis: %w", err)
	}
	return s.getApplicants(ctx, netids)
}

// ApplicantsByTask retrieves every applicant holding the given assignment
func (s *RedisService) ApplicantsByTask(ctx context.Context, taskID int) ([]models.Applicant, error) {
	netids, err := s.Client.SMembers(ctx, getAssignmentApplicantsKey(taskID)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to get applicants for assignment %d from Redis: %w", taskID, err)
	}
	return s.getApplicants(ctx, netids)
}

// CountApplicants returns the size of the applicants set
func (s *RedisService) CountApplicants(ctx context.Context) (int64, error) {
	n, err := s.Client.SCard(ctx, applicantsKey).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return 0, fmt.Errorf("failed to count applicants: %w", err)
	}
	return n, nil
}

func writeApplicant(ctx context.Context, pipe redis.Pipeliner, a models.Applicant) {
	pipe.SAdd(ctx, applicantsKey, a.NetID)
	pipe.HSet(ctx, getApplicantInfoKey(a.NetID), applicantFields(a))
	pipe.SAdd(ctx, getAssignmentApplicantsKey(a.TaskID), a.NetID)
}

func removeApplicant(ctx context.Context, pipe redis.Pipeliner, a models.Applicant) {
	pipe.SRem(ctx, applicantsKey, a.NetID)
	pipe.Del(ctx, getApplicantInfoKey(a.NetID))
	pipe.SRem(ctx, getAssignmentApplicantsKey(a.TaskID), a.NetID)
}

// CreateApplicant adds a new applicant
func (s *RedisService) CreateApplicant(ctx context.Context, a models.Applicant) error {
	if a.NetID == "" {
		return models.Invalid("applicant netid cannot be empty")
	}
	_, err := s.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		writeApplicant(ctx, pipe, a)
		return nil
	})
	if err != nil {
		s.log.Error("add applicant", zap.String("netid", a.NetID), zap.Error(err))
		return fmt.Errorf("failed to add applicant to Redis: %w", err)
	}
	return nil
}

// ReplaceApplicant overwrites the applicant stored under netid
func (s *RedisService) ReplaceApplicant(ctx context.Context, netid string, a models.Applicant) error {
	old, err := s.GetApplicant(ctx, netid)
	if err != nil {
		return err
	}
	_, err = s.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if old != nil {
			removeApplicant(ctx, pipe, *old)
		}
		writeApplicant(ctx, pipe, a)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to replace applicant %s in Redis: %w", netid, err)
	}
	return nil
}

// DeleteApplicant removes an applicant; its assignment stays
func (s *RedisService) DeleteApplicant(ctx context.Context, netid string) error {
	old, err := s.GetApplicant(ctx, netid)
	if err != nil || old == nil {
		return err
	}
	_, err = s.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		removeApplicant(ctx, pipe, *old)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete applicant %s from Redis: %w", netid, err)
	}
	return nil
}

// --- Assignment Operations ---

// GetAssignment retrieves an assignment by its ID
func (s *RedisService) GetAssignment(ctx context.Context, id int) (*models.Assignment, error) {
	data, err := s.Client.HGetAll(ctx, getAssignmentInfoKey(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		s.log.Error("get assignment", zap.Int("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get assignment from Redis: %w", err)
	}
	if len(data) == 0 {
		return nil, nil // Not found
	}
	return assignmentFromHash(data)
}

// FindAssignments loads the candidate IDs from the narrowest index and
// filters the rest in memory.
func (s *RedisService) FindAssignments(ctx context.Context, f AssignmentFilter) ([]models.Assignment, error) {
	indexKey := assignmentsKey
	if f.AssignmentNo != nil {
		indexKey = getAssignmentNumberKey(*f.AssignmentNo)
	}
	members, err := s.Client.SMembers(ctx, indexKey).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to get assignment IDs from Redis: %w", err)
	}

	ids := make([]int, 0, len(members))
	for _, m := range members {
		id, err := strconv.Atoi(m)
		if err != nil {
			return nil, fmt.Errorf("bad assignment id %q in %s: %w", m, indexKey, err)
		}
		ids = append(ids, id)
	}
	sort.Ints(ids)

	cmds := make([]*redis.StringStringMapCmd, len(ids))
	_, err = s.Client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, id := range ids {
			cmds[i] = pipe.HGetAll(ctx, getAssignmentInfoKey(id))
		}
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to fetch assignments from Redis: %w", err)
	}

	out := make([]models.Assignment, 0, len(ids))
	for i, cmd := range cmds {
		data := cmd.Val()
		if len(data) == 0 {
			s.log.Warn("dangling assignment index entry", zap.Int("id", ids[i]))
			continue
		}
		a, err := assignmentFromHash(data)
		if err != nil {
			return nil, err
		}
		if f.Match(*a) {
			out = append(out, *a)
		}
	}
	return out, nil
}

func writeAssignment(ctx context.Context, pipe redis.Pipeliner, a models.Assignment) {
	pipe.SAdd(ctx, assignmentsKey, a.ID)
	pipe.HSet(ctx, getAssignmentInfoKey(a.ID), assignmentFields(a))
	pipe.SAdd(ctx, getAssignmentNumberKey(a.AssignmentNo), a.ID)
}

// CreateAssignment adds an assignment, allocating its ID when unset
func (s *RedisService) CreateAssignment(ctx context.Context, a *models.Assignment) error {
	if a.ID == 0 {
		id, err := s.Client.Incr(ctx, assignmentSeqKey).Result()
		if err != nil {
			return fmt.Errorf("failed to allocate assignment id: %w", err)
		}
		a.ID = int(id)
	} else if err := s.bumpSequence(ctx, a.ID); err != nil {
		return err
	}

	_, err := s.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		writeAssignment(ctx, pipe, *a)
		return nil
	})
	if err != nil {
		s.log.Error("add assignment", zap.Int("id", a.ID), zap.Error(err))
		return fmt.Errorf("failed to add assignment to Redis: %w", err)
	}
	return nil
}

// bumpSequence keeps the allocator ahead of explicitly chosen IDs.
func (s *RedisService) bumpSequence(ctx context.Context, id int) error {
	current, err := s.Client.Get(ctx, assignmentSeqKey).Int()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("failed to read assignment sequence: %w", err)
	}
	if id <= current {
		return nil
	}
	if err := s.Client.Set(ctx, assignmentSeqKey, id, 0).Err(); err != nil {
		return fmt.Errorf("failed to advance assignment sequence: %w", err)
	}
	return nil
}

// SaveAssignment overwrites an existing assignment, moving it between
// number indexes when its label changes
func (s *RedisService) SaveAssignment(ctx context.Context, a models.Assignment) error {
	old, err := s.GetAssignment(ctx, a.ID)
	if err != nil {
		return err
	}
	_, err = s.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if old != nil && old.AssignmentNo != a.AssignmentNo {
			pipe.SRem(ctx, getAssignmentNumberKey(old.AssignmentNo), a.ID)
		}
		writeAssignment(ctx, pipe, a)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save assignment %d to Redis: %w", a.ID, err)
	}
	return nil
}

// --- Bulk Load ---

// ReplaceAll drops every tracker key and writes the new records in a single
// MULTI/EXEC. The index sets are WATCHed so a concurrent writer aborts the
// load instead of interleaving with it.
func (s *RedisService) ReplaceAll(ctx context.Context, assignments []models.Assignment, applicants []models.Applicant) error {
	seen := make(map[string]bool, len(applicants))
	for _, a := range applicants {
		if seen[a.NetID] {
			return models.Conflict("applicant %s already exists", a.NetID)
		}
		seen[a.NetID] = true
	}

	maxID := 0
	for _, a := range assignments {
		if a.ID > maxID {
			maxID = a.ID
		}
	}

	err := s.Client.Watch(ctx, func(tx *redis.Tx) error {
		stale, err := s.trackerKeys(ctx, tx)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if len(stale) > 0 {
				pipe.Del(ctx, stale...)
			}
			for _, a := range assignments {
				writeAssignment(ctx, pipe, a)
			}
			for _, a := range applicants {
				writeApplicant(ctx, pipe, a)
			}
			pipe.Set(ctx, assignmentSeqKey, maxID, 0)
			return nil
		})
		return err
	}, assignmentsKey, applicantsKey)
	if err != nil {
		s.log.Error("bulk load aborted", zap.Error(err))
		return fmt.Errorf("failed to replace records: %w", err)
	}

	s.log.Info("bulk load committed",
		zap.Int("assignments", len(assignments)),
		zap.Int("applicants", len(applicants)))
	return nil
}

// trackerKeys lists every key the store currently owns.
func (s *RedisService) trackerKeys(ctx context.Context, tx *redis.Tx) ([]string, error) {
	keys := []string{assignmentsKey, applicantsKey, assignmentSeqKey}

	netids, err := tx.SMembers(ctx, applicantsKey).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to list applicants: %w", err)
	}
	for _, netid := range netids {
		keys = append(keys, getApplicantInfoKey(netid))
	}

	ids, err := tx.SMembers(ctx, assignmentsKey).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	for _, m := range ids {
		id, err := strconv.Atoi(m)
		if err != nil {
			return nil, fmt.Errorf("bad assignment id %q: %w", m, err)
		}
		no, err := tx.HGet(ctx, getAssignmentInfoKey(id), "assignment_no").Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("failed to read assignment %d: %w", id, err)
		}
		keys = append(keys,
			getAssignmentInfoKey(id),
			getAssignmentApplicantsKey(id),
			getAssignmentNumberKey(no))
	}
	return keys, nil
}

// Close closes the client.
func (s *RedisService) Close() error {
	return s.Client.Close()
}

// --- Utility ---

// InitializeRedisClient creates and tests a Redis client connection
func InitializeRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Ping Redis to check connection
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("could not connect to Redis at %s: %w", cfg.Addr, err)
	}
	return rdb, nil
}
