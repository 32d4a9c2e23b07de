package file

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
)

// multipartOverhead leaves room for boundaries and form headers on top of the file itself.
const multipartOverhead = 1 << 20

// RegisterRoutes mounts file operations on the router.
func RegisterRoutes(router gin.IRouter, service *Service) {
	handler := &httpHandler{service: service}
	router.POST("/upload", handler.uploadFile)
	router.GET("/files", handler.listFiles)
	router.GET("/files/:filename", handler.downloadFile)
	router.DELETE("/files/:filename", handler.deleteFile)
}

type httpHandler struct {
	service *Service
}

func (h *httpHandler) uploadFile(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.service.maxFileSize+multipartOverhead)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "no file uploaded"})
		return
	}

	rec, err := h.service.Upload(c.Request.Context(), fileHeader)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmptyUpload):
			c.JSON(http.StatusBadRequest, gin.H{"error": "uploaded file is empty"})
		case errors.Is(err, ErrFileTooLarge):
			c.JSON(http.StatusBadRequest, gin.H{"error": "file too large"})
		default:
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save file"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": fmt.Sprintf("File \"%s\" uploaded successfully.", rec.Filename)})
}

func (h *httpHandler) listFiles(c *gin.Context) {
	names, err := h.service.List(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list files"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"files": names})
}

func (h *httpHandler) downloadFile(c *gin.Context) {
	filename := c.Param("filename")

	rec, reader, err := h.service.Download(c.Request.Context(), filename)
	if err != nil {
		switch {
		case errors.Is(err, ErrFileNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
		default:
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read file"})
		}
		return
	}
	defer reader.Close()

	c.Header("Content-Type", contentTypeFor(rec.Filename))
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": rec.Filename}))
	c.Status(http.StatusOK)

	if _, err := io.Copy(c.Writer, reader); err != nil {
		// headers are already on the wire; record the failure for the access log
		_ = c.Error(fmt.Errorf("stream %s: %w", rec.Filename, err))
	}
}

func (h *httpHandler) deleteFile(c *gin.Context) {
	filename := c.Param("filename")

	if err := h.service.Delete(c.Request.Context(), filename); err != nil {
		switch {
		case errors.Is(err, ErrFileNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
		default:
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete file"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": fmt.Sprintf("File \"%s\" deleted successfully.", filename)})
}

func contentTypeFor(filename string) string {
	if ct := mime.TypeByExtension(filepath.Ext(filename)); ct != "" {
		return ct
	}
	return blobContentType
}
