package categories

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gatherly/backend/internal/middleware"
	"github.com/gatherly/backend/internal/models"
	"github.com/gatherly/backend/pkg/response"
)

// CreateRequest is the body for POST /categories.
type CreateRequest struct {
	Name string `json:"name" binding:"required"`
}

// Handler handles category HTTP endpoints.
type Handler struct {
	repo *Repository
}

// NewHandler creates a categories handler.
func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// Create handles POST /categories.
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	cat := &models.Category{UserID: userID, Name: req.Name}
	if err := h.repo.Create(c.Request.Context(), cat); err != nil {
		response.Internal(c, "failed to create category")
		return
	}
	response.Created(c, cat)
}

// List handles GET /categories.
func (h *Handler) List(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	list, err := h.repo.ListByUser(c.Request.Context(), userID)
	if err != nil {
		response.Internal(c, "failed to list categories")
		return
	}
	response.OK(c, list)
}

// Delete handles DELETE /categories/:id.
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid category id")
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	ok, err := h.repo.Delete(c.Request.Context(), id, userID)
	if err != nil {
		response.Internal(c, "failed to delete category")
		return
	}
	if !ok {
		response.NotFound(c, "category not found")
		return
	}
	response.NoContent(c)
}
