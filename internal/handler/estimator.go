package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"vlxd/internal/model"
	"vlxd/internal/service"

	"github.com/gin-gonic/gin"
)

// MaterialEstimator is the estimator surface used by the HTTP layer
type MaterialEstimator interface {
	AnalyzeFloorPlanImage(ctx context.Context, imageData string, projectType model.ProjectType) *model.EstimatorResult
	AnalyzeFloorPlanImageStream(ctx context.Context, imageData string, projectType model.ProjectType, progress service.ProgressFunc) *model.EstimatorResult
	EstimateFromText(ctx context.Context, description string, projectType model.ProjectType) *model.EstimatorResult
	EstimateFromTextStream(ctx context.Context, description string, projectType model.ProjectType, progress service.ProgressFunc) *model.EstimatorResult
}

var _ MaterialEstimator = (*service.Estimator)(nil)

// EstimatorHandler handles material estimation requests
type EstimatorHandler struct {
	estimator MaterialEstimator
}

// NewEstimatorHandler creates a new estimator handler
func NewEstimatorHandler(estimator MaterialEstimator) *EstimatorHandler {
	return &EstimatorHandler{estimator: estimator}
}

// EstimateImage handles POST /api/v1/estimator/image.
// Estimation failures are reported in the body with success=false.
func (h *EstimatorHandler) EstimateImage(c *gin.Context) {
	var req model.ImageEstimateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	result := h.estimator.AnalyzeFloorPlanImage(c.Request.Context(), req.Image, model.ParseProjectType(req.ProjectType))
	c.JSON(http.StatusOK, result)
}

// EstimateText handles POST /api/v1/estimator/text
func (h *EstimatorHandler) EstimateText(c *gin.Context) {
	var req model.TextEstimateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	result := h.estimator.EstimateFromText(c.Request.Context(), req.Description, model.ParseProjectType(req.ProjectType))
	c.JSON(http.StatusOK, result)
}

// EstimateImageStream handles POST /api/v1/estimator/image/stream - SSE stage events
func (h *EstimatorHandler) EstimateImageStream(c *gin.Context) {
	var req model.ImageEstimateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	projectType := model.ParseProjectType(req.ProjectType)

	streamEstimate(c, projectType, func(progress service.ProgressFunc) *model.EstimatorResult {
		return h.estimator.AnalyzeFloorPlanImageStream(c.Request.Context(), req.Image, projectType, progress)
	})
}

// EstimateTextStream handles POST /api/v1/estimator/text/stream - SSE stage events
func (h *EstimatorHandler) EstimateTextStream(c *gin.Context) {
	var req model.TextEstimateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	projectType := model.ParseProjectType(req.ProjectType)

	streamEstimate(c, projectType, func(progress service.ProgressFunc) *model.EstimatorResult {
		return h.estimator.EstimateFromTextStream(c.Request.Context(), req.Description, projectType, progress)
	})
}

// streamEstimate runs estimate while forwarding its stages as SSE events,
// then sends the result and a done marker
func streamEstimate(c *gin.Context, projectType model.ProjectType, estimate func(service.ProgressFunc) *model.EstimatorResult) {
	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Streaming not supported"})
		return
	}

	c.Header("Content-Type", "text/event-stream; charset=utf-8")
	c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	sendSSE(c, "start", map[string]any{"projectType": projectType})
	flusher.Flush()

	result := estimate(func(stage string, data any) {
		sendSSE(c, stage, data)
		flusher.Flush()
	})

	if !result.Success {
		sendSSE(c, "error", map[string]any{"error": result.Error})
		flusher.Flush()
	}

	sendSSE(c, "result", result)
	sendSSE(c, "done", nil)
	flusher.Flush()
}

// sendSSE writes one Server-Sent Event
func sendSSE(c *gin.Context, event string, data any) {
	if data == nil {
		fmt.Fprintf(c.Writer, "event: %s\ndata: {}\n\n", event)
		return
	}
	payload, err := json.Marshal(data)
	if err != nil {
		fmt.Fprintf(c.Writer, "event: error\ndata: {\"error\": \"JSON marshal failed\"}\n\n")
		return
	}
	fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", event, payload)
}
