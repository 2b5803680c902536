package handlers

import (
	"io"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/taskhive/taskhive/internal/middleware"
	"github.com/taskhive/taskhive/internal/services"
	"github.com/taskhive/taskhive/internal/storage"
	"github.com/taskhive/taskhive/pkg/response"
	"gorm.io/gorm"
)

// maxUploadSize caps a single attachment at 50 MiB.
const maxUploadSize = 50 << 20

type AttachmentHandler struct {
	attachmentService *services.AttachmentService
	authzService      *services.AuthzService
}

func NewAttachmentHandler(db *gorm.DB, store storage.FileStore) *AttachmentHandler {
	return &AttachmentHandler{
		attachmentService: services.NewAttachmentService(db, store),
		authzService:      services.NewAuthzService(services.NewMembershipService(db)),
	}
}

// Upload stores a multipart file as a project attachment, optionally
// linked to a task via the task_id form field
// POST /api/projects/:id/attachments
func (h *AttachmentHandler) Upload(c *gin.Context) {
	projectID, ok := paramUint(c, "id")
	if !ok {
		return
	}

	if err := h.authzService.Require(projectID, middleware.GetUserID(c), services.OpUploadAttachment); err != nil {
		respondServiceError(c, err)
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "file is required")
		return
	}
	if fileHeader.Size > maxUploadSize {
		response.BadRequest(c, "file too large")
		return
	}

	var taskID *uint
	if raw := c.PostForm("task_id"); raw != "" {
		v, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			response.BadRequest(c, "invalid task_id")
			return
		}
		id := uint(v)
		taskID = &id
	}

	f, err := fileHeader.Open()
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}
	defer f.Close()

	attachment, err := h.attachmentService.Upload(projectID, taskID, middleware.GetUserID(c),
		fileHeader.Filename, fileHeader.Header.Get("Content-Type"), f)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.Created(c, attachment)
}

// List returns a project's attachments, optionally for one task
// GET /api/projects/:id/attachments?task_id=
func (h *AttachmentHandler) List(c *gin.Context) {
	projectID, ok := paramUint(c, "id")
	if !ok {
		return
	}

	if err := h.authzService.Require(projectID, middleware.GetUserID(c), services.OpViewProject); err != nil {
		respondServiceError(c, err)
		return
	}

	var taskID *uint
	if raw := c.Query("task_id"); raw != "" {
		v, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			response.BadRequest(c, "invalid task_id")
			return
		}
		id := uint(v)
		taskID = &id
	}

	attachments, err := h.attachmentService.List(projectID, taskID)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, attachments)
}

// Download streams an attachment's bytes with its original file name
// GET /api/projects/:id/attachments/:attachmentId
func (h *AttachmentHandler) Download(c *gin.Context) {
	projectID, ok := paramUint(c, "id")
	if !ok {
		return
	}
	attachmentID, ok := paramUint(c, "attachmentId")
	if !ok {
		return
	}

	if err := h.authzService.Require(projectID, middleware.GetUserID(c), services.OpViewProject); err != nil {
		respondServiceError(c, err)
		return
	}

	attachment, rc, err := h.attachmentService.Open(projectID, attachmentID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	defer rc.Close()

	contentType := attachment.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Disposition", `attachment; filename="`+attachment.FileName+`"`)
	c.Header("Content-Type", contentType)
	c.Header("Content-Length", strconv.FormatInt(attachment.Size, 10))
	io.Copy(c.Writer, rc)
}

// Delete removes an attachment and its file
// DELETE /api/projects/:id/attachments/:attachmentId
func (h *AttachmentHandler) Delete(c *gin.Context) {
	projectID, ok := paramUint(c, "id")
	if !ok {
		return
	}
	attachmentID, ok := paramUint(c, "attachmentId")
	if !ok {
		return
	}

	if err := h.authzService.Require(projectID, middleware.GetUserID(c), services.OpDeleteAttachment); err != nil {
		respondServiceError(c, err)
		return
	}

	if err := h.attachmentService.Delete(projectID, attachmentID); err != nil {
		respondServiceError(c, err)
		return
	}

	response.Success(c, gin.H{"message": "attachment deleted"})
}
