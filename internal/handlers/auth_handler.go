package handlers

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"dobtasks/internal/middleware"
	"dobtasks/internal/models"
	"dobtasks/internal/services"
	"dobtasks/internal/utils"
)

type AuthHandler struct {
	userService  services.UserService
	authService  services.AuthService
	resetService services.PasswordResetService
}

func NewAuthHandler(userService services.UserService, authService services.AuthService, resetService services.PasswordResetService) *AuthHandler {
	return &AuthHandler{userService: userService, authService: authService, resetService: resetService}
}

const (
	accessTokenTTL  = 15 * time.Minute
	refreshTokenTTL = 30 * 24 * time.Hour
)

// issueTokens creates the access/refresh pair for a user and stores the
// refresh side. Shared by login and the auto-approve signup path.
func issueTokens(userService services.UserService, user *models.User) (gin.H, error) {
	accessClaims := &middleware.Claims{
		UserID:       user.ID,
		Role:         user.Role,
		DepartmentID: user.DepartmentID,
		IsSuperuser:  user.IsSuperuser,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(accessTokenTTL)),
		},
	}
	accessToken := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims)
	accessTokenString, err := accessToken.SignedString(middleware.JWTKey)
	if err != nil {
		return nil, err
	}

	rt, err := utils.NewRefreshToken(32)
	if err != nil {
		return nil, err
	}
	if err := userService.UpdateRefresh(user.ID, rt, time.Now().Add(refreshTokenTTL)); err != nil {
		return nil, err
	}

	return gin.H{
		"access_token":  accessTokenString,
		"refresh_token": rt,
	}, nil
}

// @Summary      Sign in
// @Description  Authenticates a user by email and password and returns tokens
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        login  body      models.LoginRequest  true  "Credentials"
// @Success      200    {object}  map[string]interface{}
// @Failure      400    {object}  map[string]string
// @Failure      401    {object}  map[string]string
// @Router       /login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	email := strings.TrimSpace(req.Email)
	log.Printf("[auth][login] attempt email=%q", email)

	user, err := h.userService.GetByEmail(email)
	if err != nil || user == nil {
		log.Printf("[auth][login] user not found email=%q err=%v", email, err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password."})
		return
	}
	if err := h.authService.CheckPassword(user.PasswordHash, strings.TrimSpace(req.Password)); err != nil {
		log.Printf("[auth][login] password mismatch userID=%d", user.ID)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password."})
		return
	}
	if !user.IsActive {
		log.Printf("[auth][login] inactive account userID=%d", user.ID)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Account is pending approval."})
		return
	}

	tokens, err := issueTokens(h.userService, user)
	if err != nil {
		log.Printf("[auth][login] issue tokens userID=%d: %v", user.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate tokens"})
		return
	}
	log.Printf("[auth][login] success userID=%d role=%s", user.ID, user.Role)

	// staff lands on the management console, everyone else on their list
	redirect := "/tasks/PENDING"
	if user.IsSuperuser || user.Role == models.RoleAdmin || user.Role == models.RoleManager {
		redirect = "/admin/tasks?status=PENDING"
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Login successful!",
		"user":     user,
		"tokens":   tokens,
		"redirect": redirect,
	})
}

func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	old := strings.TrimSpace(req.RefreshToken)
	user, err := h.userService.GetByRefreshToken(old)
	if err != nil || user == nil || user.RefreshToken == nil || user.RefreshExpiresAt == nil || user.RefreshRevoked {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid refresh token"})
		return
	}
	if time.Now().After(*user.RefreshExpiresAt) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Refresh token expired"})
		return
	}

	newRT, err := utils.NewRefreshToken(32)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to rotate refresh token"})
		return
	}
	rotated, err := h.userService.RotateRefresh(old, newRT, time.Now().Add(refreshTokenTTL))
	if err != nil || rotated == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid refresh token"})
		return
	}

	accessClaims := &middleware.Claims{
		UserID:       rotated.ID,
		Role:         rotated.Role,
		DepartmentID: rotated.DepartmentID,
		IsSuperuser:  rotated.IsSuperuser,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(accessTokenTTL)),
		},
	}
	accessToken := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims)
	accessTokenString, err := accessToken.SignedString(middleware.JWTKey)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate access token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token":  accessTokenString,
		"refresh_token": newRT,
	})
}

// PasswordReset generates a new password for the account and emails it.
// An unknown email is reported back as such; the response never includes
// the password itself.
func (h *AuthHandler) PasswordReset(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	found, err := h.resetService.ResetByEmail(strings.TrimSpace(req.Email))
	if err != nil {
		log.Printf("[auth][password-reset] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reset password"})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "No user found with this email address."})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":  "A new password has been sent to your email address.",
		"redirect": "/login",
	})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	if err := h.userService.ClearRefresh(actor.ID); err != nil {
		log.Printf("[auth][logout] clear refresh userID=%d: %v", actor.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log out"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out."})
}
