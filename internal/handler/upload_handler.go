package handler

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"instasphere/internal/pkg"
	"instasphere/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	uploadBucket  = "post-images"
	maxUploadSize = 10 << 20 // 10MB
)

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

type UploadHandler struct {
	store storage.Store
}

func NewUploadHandler(store storage.Store) *UploadHandler {
	return &UploadHandler{store: store}
}

// UploadImage 帖子图片上传。multipart 字段名 file，
// 只收 jpeg/png/webp/gif，上限 10MB，对象键 posts/YYYY/MM/<uuid>-<文件名>
func (h *UploadHandler) UploadImage(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file provided"})
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid content type"})
		return
	}
	if !allowedImageTypes[contentType] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported file type"})
		return
	}
	if fileHeader.Size > maxUploadSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File too large (max 10MB)"})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Upload failed"})
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxUploadSize+1))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Upload failed"})
		return
	}
	if len(data) > maxUploadSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File too large (max 10MB)"})
		return
	}

	now := time.Now().UTC()
	key := fmt.Sprintf("posts/%04d/%02d/%s-%s",
		now.Year(), now.Month(), uuid.NewString(), pkg.SanitizeFileName(fileHeader.Filename))

	if err := h.store.EnsureBucket(uploadBucket, maxUploadSize); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Upload failed"})
		return
	}
	if err := h.store.Upload(uploadBucket, key, data); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Upload failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"url":  h.store.PublicURL(uploadBucket, key),
		"path": key,
	})
}
