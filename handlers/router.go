package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RequestIDHeader carries the per-request id, echoed back to the client.
const RequestIDHeader = "X-Request-ID"

// RequestLogger logs one line per request and stamps a request id.
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(RequestIDHeader, id)

		c.Next()

		logger.Info("request",
			zap.String("request_id", id),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}

// NewRouter wires every API route onto a fresh gin engine.
func NewRouter(h *APIHandler, logger *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(RequestLogger(logger), gin.Recovery())

	// Setup API routes
	api := router.Group("/api")
	{
		api.GET("/ping", PingHandler)

		// Applicant routes
		api.GET("/applicants", h.ListApplicants)
		api.POST("/applicants", h.CreateApplicant)
		api.GET("/applicants/:netid", h.GetApplicant)
		api.PUT("/applicants/:netid", h.UpdateApplicant)
		api.DELETE("/applicants/:netid", h.DeleteApplicant)

		// Assignment routes
		api.POST("/assignments", h.CreateAssignment)
		api.GET("/assignments/:id", h.GetAssignment)
		api.PUT("/assignments/:id", h.UpdateAssignment)
		api.GET("/assignment-numbers/:no", h.AssignmentsByNumber)

		// Status and bulk load
		api.GET("/overview", h.Overview)
		api.POST("/import", h.ImportRosters)
	}
	return router
}
