package handlers

import (
	"net/http"

	"trackit-api/internal/auth"
	"trackit-api/internal/response"

	"github.com/gin-gonic/gin"
)

// LoginRequest represents the request payload for login
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required"`
}

type ResetPasswordRequest struct {
	Password string `json:"password" binding:"required"`
}

func setSessionCookie(c *gin.Context, token string, maxAge int) {
	s := currentSettings()
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(s.SessionCookie, token, maxAge, "/", "", s.CookieSecure, true)
}

// Login handles POST /api/users/login
func Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err)
		return
	}

	user, token, err := userService().Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}

	setSessionCookie(c, token, int(auth.SessionTTL().Seconds()))
	response.OK(c, "Login Success", gin.H{
		"isAuthenticated": true,
		"user":            user,
	})
}

// CheckAuth handles GET /api/users/checkauth
func CheckAuth(c *gin.Context) {
	user, ok := sessionUser(c)
	if !ok {
		return
	}
	response.OK(c, "User is authenticated", gin.H{
		"isAuthenticated": true,
		"user":            user,
	})
}

// Logout handles POST /api/users/logout by expiring the session cookie.
func Logout(c *gin.Context) {
	setSessionCookie(c, "", -1)
	response.OK(c, "Logged out successfully", nil)
}

// ForgotPassword handles POST /api/users/forgot-password
func ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err)
		return
	}
	if err := userService().RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "If an account exists for that email, a reset link has been sent", nil)
}

// ResetPassword handles POST /api/users/reset-password/:token
func ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err)
		return
	}
	user, err := userService().ResetPassword(c.Request.Context(), c.Param("token"), req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Password reset successfully", gin.H{"user": user})
}
