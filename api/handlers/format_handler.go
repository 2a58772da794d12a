package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourusername/mediagrab-go/internal/app"
)

// FormatHandler handles format-catalog HTTP requests
type FormatHandler struct {
	catalog *app.CatalogService
	logger  *zap.Logger
}

// NewFormatHandler creates a new format handler
func NewFormatHandler(catalog *app.CatalogService, logger *zap.Logger) *FormatHandler {
	return &FormatHandler{
		catalog: catalog,
		logger:  logger,
	}
}

// GetFormatsRequest represents a request to list formats for a URL
type GetFormatsRequest struct {
	URL string `json:"url"`
}

// GetFormats handles POST /get_formats
func (h *FormatHandler) GetFormats(c *gin.Context) {
	var req GetFormatsRequest
	c.ShouldBindJSON(&req)

	url := strings.TrimSpace(req.URL)
	if url == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No URL provided"})
		return
	}

	catalog, err := h.catalog.Build(c.Request.Context(), url)
	if err != nil {
		h.logger.Error("Failed to build format catalog", zap.String("url", url), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, catalog)
}
