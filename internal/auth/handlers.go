package auth

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/sunrise-events/sunrise/internal/entities"
)

// setupMutex serializes setup requests so two concurrent calls cannot both
// pass the HasUsers check.
var setupMutex sync.Mutex

// Auditor records authentication events. audit.Service implements it.
type Auditor interface {
	LogAuth(userID uint, action string, ipAddr, userAgent string, success bool)
}

type loginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

type setupRequest struct {
	Username        string `json:"username" form:"username"`
	Email           string `json:"email" form:"email"`
	Password        string `json:"password" form:"password"`
	ConfirmPassword string `json:"confirm_password" form:"confirm_password"`
}

// AuthController handles authentication-related HTTP endpoints.
type AuthController struct {
	service        *Service
	sessionManager *SessionManager
	rateLimiter    *RateLimiter
	auditor        Auditor
}

// NewAuthController creates a new authentication controller. sessionManager,
// rateLimiter and auditor may all be nil.
func NewAuthController(service *Service, sessionManager *SessionManager, rateLimiter *RateLimiter, auditor Auditor) *AuthController {
	return &AuthController{
		service:        service,
		sessionManager: sessionManager,
		rateLimiter:    rateLimiter,
		auditor:        auditor,
	}
}

// RegisterRoutes registers authentication routes on the router.
func (ac *AuthController) RegisterRoutes(router gin.IRoutes) {
	router.POST("/login", ac.Login)
	router.POST("/logout", ac.Logout)
	router.POST("/setup", ac.Setup)
	router.GET("/csrf", ac.CSRFToken)
	router.GET("/api/auth/me", ac.Me)
}

// CSRFToken hands out a CSRF token so cookie clients can call /login and
// /setup. The token is empty when CSRF protection is off.
func (ac *AuthController) CSRFToken(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"csrfToken": GetCSRFToken(c)})
}

// Login checks credentials and starts a session.
func (ac *AuthController) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil || req.Username == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}

	ctx := c.Request.Context()
	clientIP := c.ClientIP()

	if ac.rateLimiter != nil {
		if allowed, retryAfter := ac.rateLimiter.Allow(ctx, clientIP, req.Username); !allowed {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(retryAfter.Seconds()))))
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": "too many login attempts, please try again later",
			})
			return
		}
	}

	user, err := ac.service.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		if ac.rateLimiter != nil {
			ac.rateLimiter.RecordFailure(ctx, clientIP, req.Username)
		}
		ac.audit(0, "login_failed", c, false)

		if errors.Is(err, ErrAccountLocked) {
			c.JSON(http.StatusLocked, gin.H{"error": "account is locked, please try again later"})
			return
		}
		if !errors.Is(err, ErrUserNotFound) && !errors.Is(err, ErrInvalidPassword) {
			log.Error().Err(err).Str("username", req.Username).Msg("login failed")
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid username or password"})
		return
	}

	if ac.rateLimiter != nil {
		ac.rateLimiter.RecordSuccess(ctx, clientIP, req.Username)
	}

	if ac.sessionManager != nil {
		if err := ac.sessionManager.CreateSession(c.Request, user); err != nil {
			log.Error().Err(err).Uint("user_id", user.ID).Msg("failed to create session")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
	}

	ac.audit(user.ID, "login", c, true)
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// Logout destroys the session.
func (ac *AuthController) Logout(c *gin.Context) {
	userID := GetUserID(c)
	if ac.sessionManager != nil {
		if userID == 0 {
			userID = ac.sessionManager.GetUserID(c.Request)
		}
		_ = ac.sessionManager.DestroySession(c.Request)
	}
	if userID != 0 {
		ac.audit(userID, "logout", c, true)
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// Setup creates the first admin user. It is only available while the user
// table is empty.
func (ac *AuthController) Setup(c *gin.Context) {
	setupMutex.Lock()
	defer setupMutex.Unlock()

	ctx := c.Request.Context()

	hasUsers, err := ac.service.HasUsers(ctx)
	if err != nil {
		log.Error().Err(err).Msg("setup: failed to count users")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if hasUsers {
		c.JSON(http.StatusConflict, gin.H{"error": "setup already completed"})
		return
	}

	var req setupRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.Password != req.ConfirmPassword {
		c.JSON(http.StatusBadRequest, gin.H{"error": "passwords do not match"})
		return
	}

	user, err := ac.service.CreateUser(ctx, req.Username, req.Email, req.Password, entities.UserRoleAdmin)
	if err != nil {
		switch {
		case errors.Is(err, ErrUserExists):
			c.JSON(http.StatusConflict, gin.H{"error": "setup already completed"})
		case isValidationError(err):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			log.Error().Err(err).Msg("setup: failed to create admin")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	if ac.sessionManager != nil {
		if err := ac.sessionManager.CreateSession(c.Request, user); err != nil {
			log.Warn().Err(err).Msg("setup: admin created but session could not be started")
		}
	}

	ac.audit(user.ID, "setup", c, true)
	c.JSON(http.StatusCreated, gin.H{"user": user})
}

// Me returns the authenticated identity.
func (ac *AuthController) Me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"id":       GetUserID(c),
		"username": GetUsername(c),
		"role":     GetUserRole(c),
		"authType": GetAuthType(c),
	})
}

func (ac *AuthController) audit(userID uint, action string, c *gin.Context, success bool) {
	if ac.auditor == nil {
		return
	}
	ac.auditor.LogAuth(userID, action, c.ClientIP(), c.Request.UserAgent(), success)
}

// isValidationError reports whether err is caused by bad user input.
func isValidationError(err error) bool {
	for _, target := range []error{
		ErrUsernameRequired, ErrUsernameInvalid,
		ErrEmailRequired, ErrEmailInvalid,
		ErrPasswordRequired, ErrPasswordTooShort, ErrPasswordTooLong,
		ErrInvalidRole,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// APITokenController handles API token management endpoints.
type APITokenController struct {
	service *Service
}

// NewAPITokenController creates a new API token controller.
func NewAPITokenController(service *Service) *APITokenController {
	return &APITokenController{service: service}
}

// RegisterRoutes registers token routes on the router.
func (tc *APITokenController) RegisterRoutes(router gin.IRoutes) {
	router.POST("/api/auth/token", tc.GenerateToken)
	router.DELETE("/api/auth/token", tc.RevokeToken)
}

// GenerateToken creates a new API token for the authenticated user.
func (tc *APITokenController) GenerateToken(c *gin.Context) {
	userID := GetUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": ErrAuthRequired.Error()})
		return
	}

	token, err := tc.service.GenerateToken(c.Request.Context(), userID)
	if err != nil {
		log.Error().Err(err).Uint("user_id", userID).Msg("failed to generate token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":   token,
		"message": "Store this token securely, it will not be shown again",
	})
}

// RevokeToken revokes the API token for the authenticated user.
func (tc *APITokenController) RevokeToken(c *gin.Context) {
	userID := GetUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": ErrAuthRequired.Error()})
		return
	}

	if err := tc.service.RevokeToken(c.Request.Context(), userID); err != nil {
		log.Error().Err(err).Uint("user_id", userID).Msg("failed to revoke token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to revoke token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "token revoked"})
}
