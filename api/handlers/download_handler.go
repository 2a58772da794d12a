package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourusername/mediagrab-go/internal/app"
	"github.com/yourusername/mediagrab-go/internal/domain"
)

// DownloadHandler handles download HTTP requests
type DownloadHandler struct {
	launcher *app.Launcher
	logger   *zap.Logger
}

// NewDownloadHandler creates a new download handler
func NewDownloadHandler(launcher *app.Launcher, logger *zap.Logger) *DownloadHandler {
	return &DownloadHandler{
		launcher: launcher,
		logger:   logger,
	}
}

// DownloadRequest represents a request to start a download
type DownloadRequest struct {
	URL          string `json:"url"`
	FormatID     string `json:"format_id"`
	AudioOnlyMP3 bool   `json:"audio_only_mp3"`
	FormatType   string `json:"format_type"`
}

// StartDownload handles POST /download
func (h *DownloadHandler) StartDownload(c *gin.Context) {
	var req DownloadRequest
	c.ShouldBindJSON(&req)

	taskID, err := h.launcher.Launch(req.URL, req.FormatID, req.AudioOnlyMP3, domain.FormatType(req.FormatType))
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRequest) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "URL or format missing"})
			return
		}
		h.logger.Error("Failed to launch download", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"task_id": taskID})
}
