package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"recruitment-tracker/models"
	"recruitment-tracker/roster"
	"recruitment-tracker/tracker"
)

// APIHandler holds the dependencies for API handlers, like the tracker service
type APIHandler struct {
	Service *tracker.Service
	log     *zap.Logger
	// Today supplies the reference date for overdue checks.
	Today func() models.Date
}

// NewAPIHandler creates a new APIHandler
func NewAPIHandler(service *tracker.Service, logger *zap.Logger) *APIHandler {
	return &APIHandler{
		Service: service,
		log:     logger,
		Today:   models.Today,
	}
}

// respondError maps domain error kinds onto HTTP statuses.
func (h *APIHandler) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, models.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, models.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, models.ErrValidation), errors.Is(err, models.ErrParse):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		h.log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

// --- Applicant Handlers ---

// ListApplicants handles GET /api/applicants
func (h *APIHandler) ListApplicants(c *gin.Context) {
	applicants, err := h.Service.ListApplicants(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	if applicants == nil {
		// Return empty list instead of null for JSON consistency
		c.JSON(http.StatusOK, []models.Applicant{})
		return
	}
	c.JSON(http.StatusOK, applicants)
}

// GetApplicant handles GET /api/applicants/:netid
func (h *APIHandler) GetApplicant(c *gin.Context) {
	detail, err := h.Service.GetApplicant(c.Request.Context(), c.Param("netid"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// CreateApplicant handles POST /api/applicants
func (h *APIHandler) CreateApplicant(c *gin.Context) {
	var in models.Applicant
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "Invalid request body: "+err.Error())
		return
	}
	detail, err := h.Service.CreateApplicant(c.Request.Context(), in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, detail)
}

// UpdateApplicant handles PUT /api/applicants/:netid
func (h *APIHandler) UpdateApplicant(c *gin.Context) {
	var in models.Applicant
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "Invalid request body: "+err.Error())
		return
	}
	detail, err := h.Service.UpdateApplicant(c.Request.Context(), c.Param("netid"), in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, detail)
}

// DeleteApplicant handles DELETE /api/applicants/:netid
func (h *APIHandler) DeleteApplicant(c *gin.Context) {
	netid := c.Param("netid")
	if err := h.Service.DeleteApplicant(c.Request.Context(), netid); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted", "netid": netid})
}

// --- Assignment Handlers ---

func assignmentID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		badRequest(c, "Assignment ID must be an integer")
		return 0, false
	}
	return id, true
}

// CreateAssignment handles POST /api/assignments
func (h *APIHandler) CreateAssignment(c *gin.Context) {
	var in models.Assignment
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "Invalid request body: "+err.Error())
		return
	}
	created, err := h.Service.CreateAssignment(c.Request.Context(), in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// GetAssignment handles GET /api/assignments/:id
func (h *APIHandler) GetAssignment(c *gin.Context) {
	id, ok := assignmentID(c)
	if !ok {
		return
	}
	detail, err := h.Service.GetAssignment(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// UpdateAssignment handles PUT /api/assignments/:id
func (h *APIHandler) UpdateAssignment(c *gin.Context) {
	id, ok := assignmentID(c)
	if !ok {
		return
	}
	var upd models.AssignmentUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		badRequest(c, "Invalid request body: "+err.Error())
		return
	}
	updated, err := h.Service.UpdateAssignment(c.Request.Context(), id, upd)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, updated)
}

// AssignmentsByNumber handles GET /api/assignment-numbers/:no
func (h *APIHandler) AssignmentsByNumber(c *gin.Context) {
	found, err := h.Service.AssignmentsByNumber(c.Request.Context(), c.Param("no"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, found)
}

// --- Overview Handler ---

// Overview handles GET /api/overview
func (h *APIHandler) Overview(c *gin.Context) {
	ov, err := h.Service.Overview(c.Request.Context(), h.Today())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ov)
}

// --- Import Handler ---

// formTable reads one uploaded roster from the multipart form.
func formTable(c *gin.Context, field string) ([][]string, error) {
	file, header, err := c.Request.FormFile(field)
	if err != nil {
		return nil, models.Invalid("error retrieving uploaded file %q: %v", field, err)
	}
	defer file.Close()

	rows, err := roster.ReadTableFrom(file, header.Filename)
	if err != nil {
		return nil, models.Invalid("%s: %v", header.Filename, err)
	}
	return rows, nil
}

// ImportRosters handles POST /api/import: a multipart form with an
// "assignments" and a "submissions" file, replacing all stored records.
func (h *APIHandler) ImportRosters(c *gin.Context) {
	assignmentTable, err := formTable(c, "assignments")
	if err != nil {
		h.respondError(c, err)
		return
	}
	submissionTable, err := formTable(c, "submissions")
	if err != nil {
		h.respondError(c, err)
		return
	}

	assignments, err := roster.ExtractAssignments(assignmentTable)
	if err != nil {
		h.respondError(c, err)
		return
	}
	submissions := roster.ExtractSubmissions(submissionTable)

	res, err := h.Service.Reconcile(c.Request.Context(), assignments, submissions)
	if err != nil {
		h.respondError(c, err)
		return
	}

	// Success response
	c.JSON(http.StatusOK, gin.H{
		"message": "Import successful",
		"result":  res,
	})
}

// --- Ping Handler ---
func PingHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Pong!"})
}
