package handlers

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	"hospital-management-server/internal/config"
	"hospital-management-server/internal/middleware"
	"hospital-management-server/internal/models"
	"hospital-management-server/internal/session"
	"hospital-management-server/internal/utils"
)

// AuthHandler handles authentication-related requests.
type AuthHandler struct {
	Manager  *session.Manager
	Provider *session.GormProvider
	Cfg      *config.Config
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(manager *session.Manager, provider *session.GormProvider, cfg *config.Config) *AuthHandler {
	return &AuthHandler{Manager: manager, Provider: provider, Cfg: cfg}
}

// RegisterRequest represents the request body for user registration.
type RegisterRequest struct {
	FullName string `json:"fullName" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"required"`
}

// Register handles sign-up: credential account plus exactly one profile.
// The caller still has to verify their email before signing in.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	profile, err := h.Manager.SignUp(c.Request.Context(), session.SignUpParams{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		Role:     models.Role(req.Role),
	})
	if err != nil {
		utils.FromError(c, err)
		return
	}

	utils.Created(c, "Account registered. Verify your email before signing in.", profile)
}

// LoginRequest represents the request body for user login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse represents the response body for successful login.
type LoginResponse struct {
	AccessToken  string          `json:"accessToken"`
	RefreshToken string          `json:"refreshToken"`
	Profile      *models.Profile `json:"profile"`
	RedirectTo   string          `json:"redirectTo"`
}

// Login handles sign-in and hands the client the dashboard route for its
// role.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	sess, err := h.Manager.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		utils.FromError(c, err)
		return
	}
	profile := sess.CurrentProfile()

	accessToken, refreshTokenString, err := utils.GenerateTokens(profile, h.Cfg)
	if err != nil {
		utils.InternalServerError(c, "Failed to generate tokens: "+err.Error())
		return
	}

	expiresAt := time.Now().Add(time.Duration(h.Cfg.JWTRefreshExpirationHours) * time.Hour)
	if err := h.Provider.StoreRefreshToken(c.Request.Context(), profile.AuthUID, refreshTokenString, expiresAt); err != nil {
		utils.InternalServerError(c, "Failed to store refresh token: "+err.Error())
		return
	}

	h.setRefreshCookie(c, refreshTokenString, h.Cfg.JWTRefreshExpirationHours*60*60)

	utils.Success(c, "Login successful", LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshTokenString,
		Profile:      profile,
		RedirectTo:   profile.Role.DashboardPath(),
	})
}

// RefreshTokenRequest represents the request body for token refresh.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// RefreshTokenResponse represents the response body for successful token refresh.
type RefreshTokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// RefreshToken rotates a refresh token and issues a new access token.
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	refreshToken, err := c.Cookie("refresh_token")
	if err != nil || refreshToken == "" {
		var req RefreshTokenRequest
		if !utils.BindAndValidate(c, &req) {
			return
		}
		refreshToken = req.RefreshToken
	}

	claims, err := utils.ValidateToken(refreshToken, h.Cfg.RefreshKey)
	if err != nil {
		utils.Unauthorized(c, "Invalid refresh token: "+err.Error())
		return
	}

	if _, err := h.Provider.ValidRefreshToken(c.Request.Context(), refreshToken); err != nil {
		if errors.Is(err, session.ErrTokenNotFound) {
			utils.Unauthorized(c, "Refresh token not found, expired, or revoked")
		} else {
			utils.InternalServerError(c, err.Error())
		}
		return
	}

	profile, err := h.Provider.ProfileByAuthUID(c.Request.Context(), claims.AccountID)
	if err != nil {
		utils.InternalServerError(c, "Failed to resolve profile for token: "+err.Error())
		return
	}

	// Rotation: the old token is revoked before the new pair is issued.
	if err := h.Provider.RevokeRefreshToken(c.Request.Context(), refreshToken); err != nil && !errors.Is(err, session.ErrTokenNotFound) {
		utils.InternalServerError(c, "Failed to revoke old refresh token: "+err.Error())
		return
	}

	newAccessToken, newRefreshToken, err := utils.GenerateTokens(profile, h.Cfg)
	if err != nil {
		utils.InternalServerError(c, "Failed to generate new tokens: "+err.Error())
		return
	}

	expiresAt := time.Now().Add(time.Duration(h.Cfg.JWTRefreshExpirationHours) * time.Hour)
	if err := h.Provider.StoreRefreshToken(c.Request.Context(), profile.AuthUID, newRefreshToken, expiresAt); err != nil {
		utils.InternalServerError(c, "Failed to store new refresh token: "+err.Error())
		return
	}

	h.setRefreshCookie(c, newRefreshToken, h.Cfg.JWTRefreshExpirationHours*60*60)

	utils.Success(c, "Access token refreshed successfully", RefreshTokenResponse{
		AccessToken:  newAccessToken,
		RefreshToken: newRefreshToken,
	})
}

// LogoutRequest represents the request body for user logout.
type LogoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Logout revokes the refresh token and tears the session down. The local
// session is cleared even when the revocation fails.
func (h *AuthHandler) Logout(c *gin.Context) {
	refreshToken, _ := c.Cookie("refresh_token")
	if refreshToken == "" {
		var req LogoutRequest
		if err := c.ShouldBindJSON(&req); err == nil {
			refreshToken = req.RefreshToken
		}
	}
	if refreshToken == "" {
		utils.BadRequest(c, "Refresh token is required")
		return
	}

	sess, ok := middleware.SessionFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	err := sess.SignOut(c.Request.Context(), refreshToken)

	h.setRefreshCookie(c, "", -1)

	if err != nil && !errors.Is(err, session.ErrTokenNotFound) {
		// Local state is already cleared; the remote failure is still
		// reported.
		utils.InternalServerError(c, "Signed out locally, but revoking the session failed: "+err.Error())
		return
	}

	utils.Success(c, "Logout successful. Session has been invalidated.", nil)
}

// VerifyEmail consumes a verification token, enabling sign-in.
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		utils.BadRequest(c, "Verification token is required")
		return
	}

	account, err := h.Provider.VerifyEmail(c.Request.Context(), token)
	if err != nil {
		utils.FromError(c, err)
		return
	}

	utils.Success(c, "Email verified. You can sign in now.", gin.H{"email": account.Email})
}

// GetProfile returns the authenticated profile resolved for this request.
// This reads the session's cached state; no extra store call happens here.
func (h *AuthHandler) GetProfile(c *gin.Context) {
	profile, ok := middleware.ProfileFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	utils.Success(c, "Profile fetched successfully", profile)
}

func (h *AuthHandler) setRefreshCookie(c *gin.Context, value string, maxAge int) {
	c.SetCookie(
		"refresh_token",
		value,
		maxAge,
		"/",
		"",
		h.Cfg.Environment != "development",
		true,
	)
}
