package handlers

import (
	"trackit-api/internal/models"
	"trackit-api/internal/response"
	"trackit-api/internal/services"

	"github.com/gin-gonic/gin"
)

// RegisterRequest accepts passmatch as an alias of confirmPassword.
type RegisterRequest struct {
	Firstname       string `json:"firstname" binding:"required"`
	Lastname        string `json:"lastname" binding:"required"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirmPassword"`
	Passmatch       string `json:"passmatch"`
}

type CheckUserRequest struct {
	Email string `json:"email" binding:"required"`
}

type ChangeRoleRequest struct {
	Role models.Role `json:"role" binding:"required"`
}

// Register handles POST /api/users/register
func Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err)
		return
	}

	user, err := userService().Register(c.Request.Context(), services.RegisterInput{
		Firstname:       req.Firstname,
		Lastname:        req.Lastname,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: firstNonEmpty(req.ConfirmPassword, req.Passmatch),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "User registered successfully", gin.H{"user": user})
}

// CheckUser handles POST /api/users/check
func CheckUser(c *gin.Context) {
	var req CheckUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err)
		return
	}
	exists, err := userService().CheckUserExists(c.Request.Context(), req.Email)
	if err != nil {
		response.Error(c, err)
		return
	}
	message := "User does not exist"
	if exists {
		message = "User exists"
	}
	response.OK(c, message, gin.H{"userExists": exists})
}

// ChangeRole handles PATCH /api/users/:id/role
func ChangeRole(c *gin.Context) {
	actor, ok := sessionUser(c)
	if !ok {
		return
	}
	var req ChangeRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err)
		return
	}
	user, err := userService().ChangeRole(c.Request.Context(), actor, c.Param("id"), req.Role)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Role updated successfully", gin.H{"user": user})
}
