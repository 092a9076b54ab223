package controllers

import (
	"net/http"

	"accounts-be/internal/apperrors"
	"accounts-be/internal/middleware"
	"accounts-be/internal/models"
	"accounts-be/internal/service"

	"github.com/gin-gonic/gin"
)

type AccountController struct {
	accountService service.AccountService
}

func NewAccountController(accountService service.AccountService) *AccountController {
	return &AccountController{
		accountService: accountService,
	}
}

// Register handles POST /register
func (ac *AccountController) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	response, err := ac.accountService.Register(c.Request.Context(), &req)
	if err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response)
}

// VerifyEmail handles GET /verify-email?token=
func (ac *AccountController) VerifyEmail(c *gin.Context) {
	verificationToken := c.Query("token")
	if verificationToken == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Token is required",
		})
		return
	}

	if err := ac.accountService.VerifyEmail(c.Request.Context(), verificationToken); err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.MessageResponse{Message: "Email verified successfully"})
}

// Login handles POST /login
func (ac *AccountController) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Email and password are required",
		})
		return
	}

	response, err := ac.accountService.Login(c.Request.Context(), &req)
	if err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetProfile handles GET /profile
func (ac *AccountController) GetProfile(c *gin.Context) {
	user, err := ac.accountService.GetProfile(c.Request.Context(), c.GetString(middleware.ContextUserID))
	if err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.ProfileResponse{
		Message: "Profile retrieved successfully",
		User:    *user,
	})
}

// UpdateProfile handles PUT /profile
func (ac *AccountController) UpdateProfile(c *gin.Context) {
	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	user, err := ac.accountService.UpdateProfile(c.Request.Context(), c.GetString(middleware.ContextUserID), &req)
	if err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.ProfileResponse{
		Message: "Profile updated successfully",
		User:    *user,
	})
}

// DeleteProfile handles DELETE /profile
func (ac *AccountController) DeleteProfile(c *gin.Context) {
	if err := ac.accountService.DeleteProfile(c.Request.Context(), c.GetString(middleware.ContextUserID)); err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.MessageResponse{Message: "User deleted successfully"})
}

// ForgetPassword handles POST /forget-password
func (ac *AccountController) ForgetPassword(c *gin.Context) {
	var req models.ForgetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Email is required",
		})
		return
	}

	if err := ac.accountService.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.MessageResponse{Message: "Password reset email sent"})
}

// ResetPassword handles POST /reset-password
func (ac *AccountController) ResetPassword(c *gin.Context) {
	var req models.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Token and new password are required",
		})
		return
	}

	if err := ac.accountService.ResetPassword(c.Request.Context(), req.Token, req.NewPassword); err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.MessageResponse{Message: "Password reset successfully"})
}

// renderError maps a service error to its HTTP status and client-safe message.
func renderError(c *gin.Context, err error) {
	status, message := apperrors.Status(err)
	c.JSON(status, gin.H{"message": message})
}
