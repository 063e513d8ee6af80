// Package auth provides authentication and authorization for the HTTP API.
//
// It supports two authentication modes:
//   - "local": Local user database with session cookies and Bearer API tokens (default)
//   - "none": No authentication, every request acts as DefaultUserID
//
// # Configuration
//
//	AUTH_MODE=local                        # none | local
//	AUTH_SESSION_SECRET=<hex-32-bytes>     # Auto-generated if empty
//	AUTH_SESSION_LIFETIME=24h
//	AUTH_TOKEN_EXPIRY=720h
//	AUTH_BCRYPT_COST=12
//	AUTH_SECURE_COOKIES=true
//	AUTH_MAX_LOGIN_ATTEMPTS=5
//
// Failed login attempts are counted per client IP and username in the
// rate_limits table, so lockouts survive restarts and are shared by every
// instance pointed at the same database.
//
// # Usage
//
//	authService := auth.NewService(db, cfg.Auth)
//	authMiddleware := auth.NewMiddleware(authService, sessionManager, cfg.Auth)
//	router.Use(authMiddleware.Handler())
//
// Extract the user in handlers:
//
//	userID := auth.GetUserID(c)  // DefaultUserID in "none" mode
package auth
