// Package http provides HTTP handlers for file hosting operations.
package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "github.com/neoskop/hostit/internal/errors"
	"github.com/neoskop/hostit/internal/file/domain"
	"github.com/neoskop/hostit/internal/file/usecase"
	"github.com/neoskop/hostit/internal/httputil"
	"github.com/neoskop/hostit/internal/upload"
)

const defaultContentType = "application/octet-stream"

// FileHandler handles HTTP requests for file hosting operations.
type FileHandler struct {
	fileUseCase usecase.FileUseCase
	logger      *slog.Logger
}

// NewFileHandler creates a new file handler with required dependencies.
func NewFileHandler(fileUseCase usecase.FileUseCase, logger *slog.Logger) *FileHandler {
	return &FileHandler{
		fileUseCase: fileUseCase,
		logger:      logger,
	}
}

// CreateHandler stores a new file.
// POST /?tags=a,b - the request body is the file content and the Content-Type
// header declares its type. Returns the new file ID as plain text.
func (h *FileHandler) CreateHandler(c *gin.Context) {
	contentType := c.ContentType()
	if contentType == "" {
		contentType = defaultContentType
	}

	file, err := h.fileUseCase.Create(
		c.Request.Context(),
		contentType,
		upload.Body(c),
		parseTags(c.Query("tags")),
	)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.String(http.StatusOK, file.ID.String())
}

// GetHandler serves the content of a file with its stored type.
// GET /:id
func (h *FileHandler) GetHandler(c *gin.Context) {
	id, err := fileID(c)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	file, err := h.fileUseCase.Get(c.Request.Context(), id)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Header("Content-Length", strconv.FormatInt(file.Size, 10))
	c.Data(http.StatusOK, file.Type, file.Content)
}

// UpdateHandler replaces the content of an existing file. The declared
// Content-Type must equal the stored one.
// PUT /:id
func (h *FileHandler) UpdateHandler(c *gin.Context) {
	id, err := fileID(c)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	contentType := c.ContentType()
	if contentType == "" {
		contentType = defaultContentType
	}

	if err := h.fileUseCase.Update(c.Request.Context(), id, contentType, upload.Body(c)); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.String(http.StatusOK, "updated")
}

// DeleteHandler removes a file.
// DELETE /:id
func (h *FileHandler) DeleteHandler(c *gin.Context) {
	id, err := fileID(c)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	if err := h.fileUseCase.Delete(c.Request.Context(), id); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.String(http.StatusOK, "deleted")
}

// GetTagsHandler returns the tags of a file as a JSON array.
// GET /:id/tags
func (h *FileHandler) GetTagsHandler(c *gin.Context) {
	id, err := fileID(c)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	tags, err := h.fileUseCase.GetTags(c.Request.Context(), id)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, tags)
}

// UpdateTagsHandler replaces the full tag set of a file. The request body is
// a JSON array of strings.
// PUT /:id/tags
func (h *FileHandler) UpdateTagsHandler(c *gin.Context) {
	id, err := fileID(c)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	var tags []string
	if err := c.ShouldBindJSON(&tags); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := h.fileUseCase.UpdateTags(c.Request.Context(), id, tags); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, tags)
}

// GetInfoHandler returns the info document of a file.
// GET /:id/info
func (h *FileHandler) GetInfoHandler(c *gin.Context) {
	id, err := fileID(c)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	info, err := h.fileUseCase.GetInfo(c.Request.Context(), id)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", info)
}

// UpdateInfoHandler replaces the info document of a file. The request body is
// an arbitrary JSON document.
// PUT /:id/info
func (h *FileHandler) UpdateInfoHandler(c *gin.Context) {
	id, err := fileID(c)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	body, err := readBody(c)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	if err := h.fileUseCase.UpdateInfo(c.Request.Context(), id, json.RawMessage(body)); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.String(http.StatusOK, "updated")
}

// GetMetaHandler returns the metadata projection of a file.
// GET /:id/meta
func (h *FileHandler) GetMetaHandler(c *gin.Context) {
	id, err := fileID(c)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	meta, err := h.fileUseCase.GetMeta(c.Request.Context(), id)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, meta)
}

// fileID parses the :id route parameter. Malformed IDs cannot match a stored
// file and map to a not-found.
func fileID(c *gin.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, domain.ErrFileNotFound
	}
	return id, nil
}

// readBody drains the request body, translating the size cap error.
func readBody(c *gin.Context) ([]byte, error) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return nil, apperrors.ErrPayloadTooLarge
		}
		return nil, apperrors.Wrap(err, "failed to read request body")
	}
	return body, nil
}

// parseTags splits the tags query parameter into individual values.
func parseTags(raw string) []string {
	if raw == "" {
		return nil
	}

	var tags []string
	for _, tag := range strings.Split(raw, ",") {
		tag = strings.TrimSpace(tag)
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
