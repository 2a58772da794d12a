package handlers

import (
	"errors"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourusername/mediagrab-go/internal/domain"
)

// TaskHandler handles task progress polling and file retrieval
type TaskHandler struct {
	registry domain.TaskRegistry
	logger   *zap.Logger
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(registry domain.TaskRegistry, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		registry: registry,
		logger:   logger,
	}
}

// Progress handles GET /progress/:task_id
func (h *TaskHandler) Progress(c *gin.Context) {
	task, err := h.registry.Get(c.Param("task_id"))
	if err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Unknown task"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, task)
}

// File handles GET /file/:task_id, serving the finished download as an
// attachment
func (h *TaskHandler) File(c *gin.Context) {
	task, err := h.registry.Get(c.Param("task_id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown task"})
		return
	}

	if err := task.FileReady(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File not ready"})
		return
	}

	if _, err := os.Stat(task.Filepath); err != nil {
		h.logger.Error("Finished file missing on disk",
			zap.String("task_id", task.ID),
			zap.String("path", task.Filepath))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "File missing on server"})
		return
	}

	c.FileAttachment(task.Filepath, task.Filename)
}
