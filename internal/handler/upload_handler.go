package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kalagasite/internal/media"
	"go.uber.org/zap"
)

// UploadImage 处理图片上传请求
func (a *API) UploadImage(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No image was uploaded", "success": 0})
		return
	}

	if a.uploader == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Uploads are not configured", "success": 0})
		return
	}

	fileURL, err := a.uploader.Upload(c.Request.Context(), file)
	if err != nil {
		switch {
		case errors.Is(err, media.ErrNotImage):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Only image files can be uploaded", "success": 0})
		case errors.Is(err, media.ErrTooLarge):
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Images must be 5 MB or smaller", "success": 0})
		default:
			a.log.Error("store upload failed", zap.String("filename", file.Filename), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save the file", "success": 0})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": 1,
		"message": "Upload successful",
		"data": gin.H{
			"filePath": fileURL,
			"url":      fileURL,
		},
	})
}
