package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"recruitment-tracker/db"
	"recruitment-tracker/models"
	"recruitment-tracker/tracker"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo, err := db.OpenSQLite(filepath.Join(t.TempDir(), "api.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	h := NewAPIHandler(tracker.NewService(repo, zap.NewNop(), tracker.Options{}), zap.NewNop())
	h.Today = func() models.Date { return models.NewDate(2024, time.January, 20) }
	return NewRouter(h, zap.NewNop())
}

func do(t *testing.T, r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v))
}

var testAssignment = gin.H{
	"assignment_no": "Q1",
	"team_assigned": "Quantitative Research",
	"date_given":    "2024-01-01",
	"date_due":      "2024-01-15",
}

var testApplicant = gin.H{
	"netid":   "jd123",
	"name":    "Jane Doe",
	"email":   "jane@x.edu",
	"year":    "2026",
	"major":   "Math",
	"teams":   "QR",
	"task_id": 1,
}

func TestPing(t *testing.T) {
	r := newTestRouter(t)
	w := do(t, r, http.MethodGet, "/api/ping", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
}

func TestRequestIDIsEchoed(t *testing.T) {
	r := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func TestApplicantLifecycle(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodPost, "/api/applicants", testApplicant)
	assert.Equal(t, http.StatusBadRequest, w.Code, "task 1 does not exist yet")

	w = do(t, r, http.MethodPost, "/api/assignments", testAssignment)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created models.Assignment
	decode(t, w, &created)
	assert.Equal(t, 1, created.ID)
	assert.Equal(t, "NA", created.AssignmentComments)

	w = do(t, r, http.MethodPost, "/api/applicants", testApplicant)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = do(t, r, http.MethodPost, "/api/applicants", testApplicant)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, r, http.MethodGet, "/api/applicants/jd123", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var detail models.ApplicantDetail
	decode(t, w, &detail)
	assert.Equal(t, "Jane Doe", detail.Name)
	assert.Equal(t, "Q1", detail.Task.AssignmentNo)
	assert.Equal(t, models.NewDate(2024, time.January, 15), detail.Task.DateDue)

	update := gin.H{}
	for k, v := range testApplicant {
		update[k] = v
	}
	update["major"] = "History"
	w = do(t, r, http.MethodPut, "/api/applicants/jd123", update)
	assert.Equal(t, http.StatusAccepted, w.Code, w.Body.String())

	w = do(t, r, http.MethodGet, "/api/applicants", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var all []models.Applicant
	decode(t, w, &all)
	require.Len(t, all, 1)
	assert.Equal(t, "History", all[0].Major)

	w = do(t, r, http.MethodDelete, "/api/applicants/jd123", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = do(t, r, http.MethodDelete, "/api/applicants/jd123", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = do(t, r, http.MethodGet, "/api/applicants/jd123", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListApplicantsEmpty(t *testing.T) {
	r := newTestRouter(t)
	w := do(t, r, http.MethodGet, "/api/applicants", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}

func TestAssignmentRoutes(t *testing.T) {
	r := newTestRouter(t)
	for i := 0; i < 2; i++ {
		w := do(t, r, http.MethodPost, "/api/assignments", testAssignment)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	dup := gin.H{"id": 1}
	for k, v := range testAssignment {
		dup[k] = v
	}
	w := do(t, r, http.MethodPost, "/api/assignments", dup)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, r, http.MethodPost, "/api/assignments", gin.H{"team_assigned": "Sales"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPost, "/api/assignments", gin.H{"date_due": "soon"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodGet, "/api/assignments/2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var detail models.AssignmentDetail
	decode(t, w, &detail)
	assert.Equal(t, 2, detail.ID)
	assert.Empty(t, detail.Applicants)

	w = do(t, r, http.MethodGet, "/api/assignments/9", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = do(t, r, http.MethodGet, "/api/assignments/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodGet, "/api/assignment-numbers/Q1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var byNo []models.AssignmentDetail
	decode(t, w, &byNo)
	assert.Len(t, byNo, 2)

	w = do(t, r, http.MethodGet, "/api/assignment-numbers/Z9", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, r, http.MethodPut, "/api/assignments/1", gin.H{"submitted": true, "assignment_comments": "good"})
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	var updated models.Assignment
	decode(t, w, &updated)
	assert.True(t, updated.Submitted)
	assert.Equal(t, "good", updated.AssignmentComments)
	assert.Equal(t, "Q1", updated.AssignmentNo)

	w = do(t, r, http.MethodPut, "/api/assignments/9", gin.H{"submitted": true})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, r, http.MethodPut, "/api/assignments/1", gin.H{"date_due": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateAssignmentRequiresFields(t *testing.T) {
	r := newTestRouter(t)
	for _, field := range []string{"assignment_no", "team_assigned", "date_given", "date_due"} {
		t.Run(field, func(t *testing.T) {
			body := gin.H{}
			for k, v := range testAssignment {
				if k != field {
					body[k] = v
				}
			}
			w := do(t, r, http.MethodPost, "/api/assignments", body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}

	w := do(t, r, http.MethodGet, "/api/assignments/1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func multipartBody(t *testing.T, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for field, content := range files {
		part, err := mw.CreateFormFile(field, field+".csv")
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

const assignmentsCSV = "Name,Email,QR,SI,SD,B,Given,Due\n" +
	"Jane Doe,jane@x.edu,,Q2,,,2024-01-01,2024-01-15\n" +
	"Nobody,no@x.edu,Q1,,,,2024-01-01,2024-01-15\n"

const submissionsCSV = "ts,score,email,name,netid,year,major,smajor,minor,sminor,x,y,teams\n" +
	"t,s,jane@x.edu,Jane Doe,jd123,2026,Math,,,,,,SI\n"

func TestImportAndOverview(t *testing.T) {
	r := newTestRouter(t)

	body, contentType := multipartBody(t, map[string]string{
		"assignments": assignmentsCSV,
		"submissions": submissionsCSV,
	})
	req := httptest.NewRequest(http.MethodPost, "/api/import", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Result tracker.ReconcileResult `json:"result"`
	}
	decode(t, w, &resp)
	assert.Equal(t, tracker.ReconcileResult{Matched: 1, UnmatchedAssignments: 1}, resp.Result)

	w = do(t, r, http.MethodGet, "/api/overview", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var ov tracker.Overview
	decode(t, w, &ov)
	assert.Equal(t, int64(1), ov.TotalApplicants)
	require.Len(t, ov.NotSubmitted, 1)
	assert.Equal(t, "jd123", ov.NotSubmitted[0].NetID)
	assert.Empty(t, ov.Submitted)
	require.Len(t, ov.Overdue, 1)
}

func TestImportRejectsBadRoster(t *testing.T) {
	r := newTestRouter(t)

	body, contentType := multipartBody(t, map[string]string{
		"assignments": "Name,Email,QR,SI,SD,B,Given,Due\nJane Doe,jane@x.edu,,,,,2024-01-01,2024-01-15\n",
		"submissions": submissionsCSV,
	})
	req := httptest.NewRequest(http.MethodPost, "/api/import", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	body, contentType = multipartBody(t, map[string]string{"assignments": assignmentsCSV})
	req = httptest.NewRequest(http.MethodPost, "/api/import", body)
	req.Header.Set("Content-Type", contentType)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
