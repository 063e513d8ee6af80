package http

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rs/zerolog/log"

	"github.com/sunrise-events/sunrise/internal/database/contacts"
	"github.com/sunrise-events/sunrise/internal/database/locks"
	"github.com/sunrise-events/sunrise/internal/entities"
	"github.com/sunrise-events/sunrise/internal/importers"
)

// ContactRequest is the JSON body of create and update calls.
type ContactRequest struct {
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	Category       string `json:"category"`
	Notes          string `json:"notes"`
	TelegramChatID string `json:"telegram_chat_id"`
}

func (r ContactRequest) normalized() ContactRequest {
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Phone = importers.NormalizePhone(r.Phone)
	r.Category = strings.TrimSpace(r.Category)
	r.Notes = strings.TrimSpace(r.Notes)
	r.TelegramChatID = strings.TrimSpace(r.TelegramChatID)
	if r.Category == "" {
		r.Category = entities.DefaultCategory
	}
	return r
}

func (r ContactRequest) apply(contact *entities.Contact) {
	contact.FirstName = r.FirstName
	contact.LastName = r.LastName
	contact.Email = r.Email
	contact.EmailKey = entities.NormalizeEmail(r.Email)
	contact.Phone = r.Phone
	contact.Category = r.Category
	contact.Notes = r.Notes
	contact.TelegramChatID = r.TelegramChatID
}

// createLockTTL bounds how long a single create holds the user's import lock.
const createLockTTL = 30 * time.Second

type ContactsController struct {
	store   ContactStore
	limits  importers.LimitChecker
	locker  importers.Locker
	auditor Auditor
}

// NewContactsController creates the CRUD controller. locker and auditor may
// be nil; without a locker, creates are not serialised against imports.
func NewContactsController(store ContactStore, limits importers.LimitChecker, locker importers.Locker, auditor Auditor) *ContactsController {
	return &ContactsController{store: store, limits: limits, locker: locker, auditor: auditor}
}

// List returns a page of the caller's contacts.
// GET /contacts?q=&category=&limit=&offset=
func (cc *ContactsController) List(c *gin.Context) {
	limit, offset := parsePagination(c)

	items, total, err := cc.store.List(c.Request.Context(), GetUserID(c), contacts.ListOptions{
		Query:    c.Query("q"),
		Category: c.Query("category"),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		respondInternalError(c, err, "list contacts")
		return
	}
	if items == nil {
		items = []entities.Contact{}
	}

	c.JSON(http.StatusOK, newPaginatedResponse(items, total, limit, offset))
}

// Get returns one contact.
// GET /contacts/:id
func (cc *ContactsController) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	contact, err := cc.store.GetForUser(c.Request.Context(), GetUserID(c), id)
	if errors.Is(err, contacts.ErrNotFound) {
		respondNotFound(c, "contact")
		return
	}
	if err != nil {
		respondInternalError(c, err, "get contact")
		return
	}

	c.JSON(http.StatusOK, contact)
}

// Create adds a single contact, subject to the same quota as imports. The
// quota check and insert run under the user's import lock, so a create
// during an import gets 409.
// POST /contacts
func (cc *ContactsController) Create(c *gin.Context) {
	var req ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	req = req.normalized()
	if req.FirstName == "" {
		respondBadRequest(c, "first_name is required")
		return
	}

	ctx := c.Request.Context()
	userID := GetUserID(c)

	if cc.locker != nil {
		token, err := cc.locker.Acquire(ctx, userID, createLockTTL)
		if errors.Is(err, locks.ErrLocked) {
			respondError(c, http.StatusConflict, importers.ErrImportInProgress.Error())
			return
		}
		if err != nil {
			respondInternalError(c, err, "acquire import lock")
			return
		}
		defer func() {
			if err := cc.locker.Release(context.WithoutCancel(ctx), userID, token); err != nil {
				log.Warn().Err(err).Uint("user_id", userID).Msg("failed to release import lock")
			}
		}()
	}

	if !cc.checkEmailAvailable(c, userID, req.Email, 0) {
		return
	}

	if cc.limits != nil {
		status, err := cc.limits.ContactLimits(ctx, userID)
		if err != nil {
			respondInternalError(c, err, "contact limits")
			return
		}
		if err := importers.CheckQuota(status, 1); err != nil {
			var limitErr *importers.LimitError
			if errors.As(err, &limitErr) {
				respondLimitError(c, limitErr)
				return
			}
			respondInternalError(c, err, "check quota")
			return
		}
	}

	contact := entities.Contact{UserID: userID}
	req.apply(&contact)
	if err := cc.store.Create(ctx, &contact); err != nil {
		respondInternalError(c, err, "create contact")
		return
	}

	if cc.auditor != nil {
		cc.auditor.LogContactChange(userID, entities.AuditEventCreate, contact.ID, contact.FullName())
	}
	respondCreated(c, contact)
}

// Update replaces the editable fields of a contact.
// PUT /contacts/:id
func (cc *ContactsController) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	req = req.normalized()
	if req.FirstName == "" {
		respondBadRequest(c, "first_name is required")
		return
	}

	ctx := c.Request.Context()
	userID := GetUserID(c)

	contact, err := cc.store.GetForUser(ctx, userID, id)
	if errors.Is(err, contacts.ErrNotFound) {
		respondNotFound(c, "contact")
		return
	}
	if err != nil {
		respondInternalError(c, err, "get contact")
		return
	}

	if !cc.checkEmailAvailable(c, userID, req.Email, id) {
		return
	}

	req.apply(contact)
	if err := cc.store.Update(ctx, contact); err != nil {
		if errors.Is(err, contacts.ErrNotFound) {
			respondNotFound(c, "contact")
			return
		}
		respondInternalError(c, err, "update contact")
		return
	}

	if cc.auditor != nil {
		cc.auditor.LogContactChange(userID, entities.AuditEventUpdate, contact.ID, contact.FullName())
	}
	c.JSON(http.StatusOK, contact)
}

// Delete removes a contact.
// DELETE /contacts/:id
func (cc *ContactsController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	userID := GetUserID(c)
	if err := cc.store.Delete(c.Request.Context(), userID, id); err != nil {
		if errors.Is(err, contacts.ErrNotFound) {
			respondNotFound(c, "contact")
			return
		}
		respondInternalError(c, err, "delete contact")
		return
	}

	if cc.auditor != nil {
		cc.auditor.LogContactChange(userID, entities.AuditEventDelete, id, "")
	}
	respondSuccess(c, "contact deleted")
}

// checkEmailAvailable responds with 409 and returns false when another of
// the user's contacts already uses email.
func (cc *ContactsController) checkEmailAvailable(c *gin.Context, userID uint, email string, excludeID uint) bool {
	if email == "" {
		return true
	}

	exists, err := cc.store.EmailExists(c.Request.Context(), userID, email, excludeID)
	if err != nil {
		respondInternalError(c, err, "check email")
		return false
	}
	if exists {
		respondError(c, http.StatusConflict, "a contact with this email already exists")
		return false
	}
	return true
}
