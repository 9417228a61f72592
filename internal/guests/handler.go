package guests

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gatherly/backend/internal/auth"
	"github.com/gatherly/backend/internal/middleware"
	"github.com/gatherly/backend/internal/models"
	"github.com/gatherly/backend/internal/plans"
	"github.com/gatherly/backend/pkg/response"
	"github.com/gatherly/backend/pkg/storage"
)

// CreateRequest is the body for POST /guests.
type CreateRequest struct {
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name"`
	Email     string `json:"email" binding:"omitempty,email"`
	Phone     string `json:"phone"`
	Category  string `json:"category"`
	Priority  string `json:"priority"`
}

// Store is the guest persistence the handler needs.
type Store interface {
	Create(ctx context.Context, g *models.Guest) error
	GetByIDForUser(ctx context.Context, id, userID uuid.UUID) (*models.Guest, error)
	ListByUser(ctx context.Context, userID uuid.UUID, filter ListFilter) ([]models.Guest, error)
	CountByUser(ctx context.Context, userID uuid.UUID) (int, error)
	Update(ctx context.Context, g *models.Guest) error
	Delete(ctx context.Context, id, userID uuid.UUID) error
}

// Handler handles guest HTTP endpoints.
type Handler struct {
	repo     Store
	userRepo *auth.Repository
	s3       *storage.S3 // nil when exports are streamed directly
	logger   *zap.Logger
}

// NewHandler creates a guests handler.
func NewHandler(repo Store, userRepo *auth.Repository, s3 *storage.S3, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, userRepo: userRepo, s3: s3, logger: logger}
}

// checkPlanLimit verifies the caller may add n more guests. Returns false after
// writing the 403 response when the plan cap would be exceeded.
func (h *Handler) checkPlanLimit(c *gin.Context, userID uuid.UUID, n int) bool {
	user, err := h.userRepo.GetByID(c.Request.Context(), userID)
	if err != nil {
		response.Internal(c, "failed to load account")
		return false
	}
	current, err := h.repo.CountByUser(c.Request.Context(), userID)
	if err != nil {
		response.Internal(c, "failed to count guests")
		return false
	}
	if !plans.CanAddGuests(user.Plan, current, n) {
		response.Forbidden(c, plans.LimitError(user.Plan))
		return false
	}
	return true
}

// Create handles POST /guests.
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	if !h.checkPlanLimit(c, userID, 1) {
		return
	}

	priority, err := parsePriority(req.Priority)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	g := &models.Guest{
		UserID:    userID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Category:  req.Category,
		Priority:  priority,
		Status:    models.GuestStatusPending,
	}
	if err := h.repo.Create(c.Request.Context(), g); err != nil {
		h.logger.Error("create guest failed", zap.Error(err))
		response.Internal(c, "failed to create guest")
		return
	}
	response.Created(c, g)
}

// List handles GET /guests with optional ?category= and ?rsvp_status= filters.
func (h *Handler) List(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	filter := ListFilter{
		Category:   c.Query("category"),
		RSVPStatus: c.Query("rsvp_status"),
	}
	list, err := h.repo.ListByUser(c.Request.Context(), userID, filter)
	if err != nil {
		response.Internal(c, "failed to list guests")
		return
	}
	response.OK(c, list)
}

// GetByID handles GET /guests/:id.
func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid guest id")
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	g, err := h.repo.GetByIDForUser(c.Request.Context(), id, userID)
	if err != nil {
		response.NotFound(c, "guest not found")
		return
	}
	response.OK(c, g)
}

// Update handles PATCH /guests/:id. RSVP fields are not editable here; only the
// response recorder mutates them.
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid guest id")
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	g, err := h.repo.GetByIDForUser(c.Request.Context(), id, userID)
	if err != nil {
		response.NotFound(c, "guest not found")
		return
	}
	var req struct {
		FirstName *string `json:"first_name"`
		LastName  *string `json:"last_name"`
		Email     *string `json:"email"`
		Phone     *string `json:"phone"`
		Category  *string `json:"category"`
		Priority  *string `json:"priority"`
		Status    *string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request")
		return
	}
	if req.FirstName != nil {
		g.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		g.LastName = *req.LastName
	}
	if req.Email != nil {
		g.Email = *req.Email
	}
	if req.Phone != nil {
		g.Phone = *req.Phone
	}
	if req.Category != nil {
		g.Category = *req.Category
	}
	if req.Priority != nil {
		p, err := parsePriority(*req.Priority)
		if err != nil {
			response.BadRequest(c, err.Error())
			return
		}
		g.Priority = p
	}
	if req.Status != nil {
		switch *req.Status {
		case "pending", "confirmed", "declined":
			g.Status = models.GuestStatus(*req.Status)
		default:
			response.BadRequest(c, "invalid status")
			return
		}
	}
	if err := h.repo.Update(c.Request.Context(), g); err != nil {
		h.logger.Error("update guest failed", zap.Error(err), zap.String("guest_id", id.String()))
		response.Internal(c, "failed to update guest")
		return
	}
	updated, err := h.repo.GetByIDForUser(c.Request.Context(), id, userID)
	if err != nil {
		// update committed; fall back to the in-memory row rather than 200 with no body
		h.logger.Warn("reload guest after update failed", zap.Error(err), zap.String("guest_id", id.String()))
		updated = g
	}
	response.OK(c, updated)
}

// Delete handles DELETE /guests/:id.
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid guest id")
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	if _, err := h.repo.GetByIDForUser(c.Request.Context(), id, userID); err != nil {
		response.NotFound(c, "guest not found")
		return
	}
	if err := h.repo.Delete(c.Request.Context(), id, userID); err != nil {
		response.Internal(c, "failed to delete guest")
		return
	}
	response.NoContent(c)
}

// Import handles POST /guests/import (multipart CSV). Valid rows are inserted
// one by one; a row failure never aborts the rest of the file.
func (h *Handler) Import(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	file, _, err := c.Request.FormFile("file")
	if err != nil {
		response.BadRequest(c, "file is required")
		return
	}
	defer file.Close()

	rows, failed, err := ParseImport(file)
	if err != nil {
		response.BadRequest(c, "invalid csv: "+err.Error())
		return
	}

	if !h.checkPlanLimit(c, userID, len(rows)) {
		return
	}

	imported := 0
	for _, row := range rows {
		g := row.Guest
		g.UserID = userID
		if err := h.repo.Create(c.Request.Context(), &g); err != nil {
			h.logger.Warn("import row failed", zap.Int("line", row.Line), zap.Error(err))
			failed = append(failed, ImportRowError{Line: row.Line, Error: "insert failed"})
			continue
		}
		imported++
	}
	response.OK(c, gin.H{"imported": imported, "failed": failed})
}

// Export handles GET /guests/export. When S3 is configured the CSV is uploaded
// and a presigned download URL returned; otherwise it streams as an attachment.
func (h *Handler) Export(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	list, err := h.repo.ListByUser(c.Request.Context(), userID, ListFilter{})
	if err != nil {
		response.Internal(c, "failed to list guests")
		return
	}

	var buf bytes.Buffer
	if err := WriteExport(&buf, list); err != nil {
		response.Internal(c, "failed to build export")
		return
	}

	filename := fmt.Sprintf("guests-%s.csv", time.Now().UTC().Format("20060102-150405"))
	if h.s3 != nil {
		key := storage.ExportKey(userID.String(), filename)
		if _, err := h.s3.Upload(c.Request.Context(), key, "text/csv", &buf); err != nil {
			h.logger.Error("export upload failed", zap.Error(err), zap.String("key", key))
			response.Internal(c, "failed to upload export")
			return
		}
		url, err := h.s3.GeneratePresignedDownloadURL(c.Request.Context(), key, h.s3.PresignExpire())
		if err != nil {
			response.Internal(c, "failed to presign export")
			return
		}
		response.OK(c, gin.H{"download_url": url, "expires_in_minutes": int(h.s3.PresignExpire().Minutes())})
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "text/csv", buf.Bytes())
}
