package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/yourusername/mediagrab-go/internal/domain"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for now
	},
}

// progressPollInterval is how often the websocket stream samples the registry
const progressPollInterval = 500 * time.Millisecond

// ProgressWebSocketHandler streams task state over a WebSocket so clients
// do not have to poll /progress
type ProgressWebSocketHandler struct {
	registry domain.TaskRegistry
	logger   *zap.Logger
}

// NewProgressWebSocketHandler creates a new WebSocket progress handler
func NewProgressWebSocketHandler(registry domain.TaskRegistry, logger *zap.Logger) *ProgressWebSocketHandler {
	return &ProgressWebSocketHandler{
		registry: registry,
		logger:   logger,
	}
}

// Stream handles GET /progress/:task_id/ws. It sends the task JSON whenever
// the state changes and closes once the task reaches a terminal state.
func (h *ProgressWebSocketHandler) Stream(c *gin.Context) {
	taskID := c.Param("task_id")

	if _, err := h.registry.Get(taskID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown task"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("Failed to upgrade WebSocket", zap.Error(err))
		return
	}
	defer conn.Close()

	h.logger.Info("WebSocket client connected",
		zap.String("task_id", taskID),
		zap.String("remote_addr", c.Request.RemoteAddr))

	// Read messages from client to detect disconnect
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(progressPollInterval)
	defer ticker.Stop()

	var lastSent []byte
	for {
		select {
		case <-ticker.C:
			task, err := h.registry.Get(taskID)
			if err != nil {
				return
			}

			data, err := json.Marshal(task)
			if err != nil {
				h.logger.Error("Failed to marshal task", zap.Error(err))
				return
			}

			if string(data) != string(lastSent) {
				if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
					return
				}
				lastSent = data
			}

			if task.IsTerminal() {
				conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}

		case <-done:
			return
		}
	}
}
