package handlers

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"hospital-management-server/internal/storage"
	"hospital-management-server/internal/utils"
)

// FileHandler serves stored objects at their public URLs.
type FileHandler struct {
	Objects *storage.ObjectStore
}

// NewFileHandler creates a new FileHandler.
func NewFileHandler(objects *storage.ObjectStore) *FileHandler {
	return &FileHandler{Objects: objects}
}

// Get streams one stored object back to the client.
func (h *FileHandler) Get(c *gin.Context) {
	bucket := c.Param("bucket")
	if bucket != storage.BucketLabReports && bucket != storage.BucketPrescriptions {
		utils.NotFound(c, "Unknown bucket")
		return
	}

	key := strings.TrimPrefix(c.Param("key"), "/")
	if key == "" || strings.Contains(key, "..") {
		utils.BadRequest(c, "Invalid object key")
		return
	}

	object, err := h.Objects.Open(bucket, key)
	if err != nil {
		utils.NotFound(c, "Object not found")
		return
	}
	defer object.Close()

	parts := strings.Split(key, "/")
	filename := parts[len(parts)-1]
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, object)
}
