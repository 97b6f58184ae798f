// internal/api/handlers/file_handler.go
package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/avoronov/miniogate/internal/domain"
)

// FileService is the orchestrator surface the handlers depend on.
type FileService interface {
	Upload(ctx context.Context, payload *domain.FilePayload, folderPath string) (string, error)
	UploadMultiple(ctx context.Context, payloads []*domain.FilePayload, folderName string) ([]string, error)
	Download(ctx context.Context, fileName string) (*domain.FileDownload, error)
	DownloadMultiple(ctx context.Context, fileNames []string) ([]byte, error)
	DownloadByFolder(ctx context.Context, folderPath string) ([]byte, error)
	DeleteFileByID(ctx context.Context, id int64) error
	DeleteFolderByPath(ctx context.Context, folderPath string) error
	DeleteFolderByFileID(ctx context.Context, id int64) error
}

type FileHandler struct {
	fileService FileService
}

func NewFileHandler(fileService FileService) *FileHandler {
	return &FileHandler{fileService: fileService}
}

// Upload handles a single multipart file upload, with an optional folder.
func (h *FileHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no file provided"})
		return
	}

	payload, err := readPayload(fileHeader)
	if err != nil {
		log.Error().Err(err).Str("filename", fileHeader.Filename).Msg("failed to read uploaded file")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read uploaded file"})
		return
	}

	objectPath, err := h.fileService.Upload(c.Request.Context(), payload, c.PostForm("folder"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.String(http.StatusOK, "uploaded: %s", objectPath)
}

// UploadBatch handles a multipart batch upload under an optional shared folder.
// Empty parts are filtered out before the service call; when nothing valid
// remains the request is rejected outright.
func (h *FileHandler) UploadBatch(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid form data"})
		return
	}

	files := form.File["files"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file list must not be empty, send files under the 'files' field"})
		return
	}

	payloads := make([]*domain.FilePayload, 0, len(files))
	for _, fileHeader := range files {
		if fileHeader.Size == 0 {
			continue
		}
		payload, err := readPayload(fileHeader)
		if err != nil {
			log.Error().Err(err).Str("filename", fileHeader.Filename).Msg("failed to read uploaded file")
			continue
		}
		payloads = append(payloads, payload)
	}

	if len(payloads) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no valid files, make sure the uploaded files are not empty"})
		return
	}

	uploaded, err := h.fileService.UploadMultiple(c.Request.Context(), payloads, c.PostForm("folder"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, uploaded)
}

// Download streams back one stored file as an attachment.
func (h *FileHandler) Download(c *gin.Context) {
	fileName := c.Param("fileName")

	download, err := h.fileService.Download(c.Request.Context(), fileName)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	c.Data(http.StatusOK, download.ContentType, download.Data)
}

// DownloadBatch bundles the named files into one zip attachment.
func (h *FileHandler) DownloadBatch(c *gin.Context) {
	var fileNames []string
	if err := c.ShouldBindJSON(&fileNames); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request body must be a JSON array of file names"})
		return
	}
	if len(fileNames) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file name list must not be empty"})
		return
	}

	zipBytes, err := h.fileService.DownloadMultiple(c.Request.Context(), fileNames)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="files.zip"`)
	c.Data(http.StatusOK, "application/zip", zipBytes)
}

// DownloadFolder bundles a whole folder into one zip attachment.
func (h *FileHandler) DownloadFolder(c *gin.Context) {
	folderPath := c.Param("folderPath")

	zipBytes, err := h.fileService.DownloadByFolder(c.Request.Context(), folderPath)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", folderPath+".zip"))
	c.Data(http.StatusOK, "application/zip", zipBytes)
}

// DeleteFile deletes one file by metadata id.
func (h *FileHandler) DeleteFile(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.fileService.DeleteFileByID(c.Request.Context(), id); err != nil {
		handleServiceError(c, err)
		return
	}

	c.String(http.StatusOK, "file deleted, id: %d", id)
}

// DeleteFolder deletes a whole folder by path.
func (h *FileHandler) DeleteFolder(c *gin.Context) {
	folderPath := c.Param("folderPath")

	if err := h.fileService.DeleteFolderByPath(c.Request.Context(), folderPath); err != nil {
		handleServiceError(c, err)
		return
	}

	c.String(http.StatusOK, "folder and all its files deleted: %s", folderPath)
}

// DeleteFolderByFileID deletes the folder containing the identified file.
func (h *FileHandler) DeleteFolderByFileID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.fileService.DeleteFolderByFileID(c.Request.Context(), id); err != nil {
		handleServiceError(c, err)
		return
	}

	c.String(http.StatusOK, "folder deleted via file id: %d", id)
}

func parseID(c *gin.Context) (int64, bool) {
	param := c.Param("fileId")
	if param == "" {
		param = c.Param("id")
	}
	id, err := strconv.ParseInt(param, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file id must be a number"})
		return 0, false
	}
	return id, true
}

func readPayload(fileHeader *multipart.FileHeader) (*domain.FilePayload, error) {
	src, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, err
	}

	return &domain.FilePayload{
		Name:        fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

// handleServiceError maps the service error taxonomy to HTTP statuses.
// Validation failures and fully failed batches report 400, everything else
// is a backend failure and reports 500.
func handleServiceError(c *gin.Context, err error) {
	log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")

	switch {
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrAllFailed):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
