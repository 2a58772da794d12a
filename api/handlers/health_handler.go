package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// TaskCounter reports how many tasks the registry currently holds
type TaskCounter interface {
	Count() int
}

// HealthHandler handles health check requests
type HealthHandler struct {
	tasks TaskCounter
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(tasks TaskCounter) *HealthHandler {
	return &HealthHandler{
		tasks: tasks,
	}
}

// HealthResponse represents a health check response
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Tasks   int    `json:"tasks"`
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	response := HealthResponse{
		Status:  "ok",
		Version: "1.0.0",
	}
	if h.tasks != nil {
		response.Tasks = h.tasks.Count()
	}

	c.JSON(http.StatusOK, response)
}
