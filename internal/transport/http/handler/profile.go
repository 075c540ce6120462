package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"advisorbot/internal/app"
	"advisorbot/internal/backend"
	"advisorbot/internal/transport/http/response"
)

type ProfileHandler struct {
	account *app.AccountService
}

type UpdateProfileRequest struct {
	Name      string `json:"name" binding:"max=128"`
	StudentID string `json:"studentId" binding:"max=64"`
	Major     string `json:"major" binding:"max=128"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required"`
	ConfirmPassword string `json:"confirmPassword" binding:"required"`
}

func NewProfileHandler(account *app.AccountService) *ProfileHandler {
	return &ProfileHandler{account: account}
}

// Get never fails; a backend error yields the placeholder profile.
func (h *ProfileHandler) Get(c *gin.Context) {
	response.OK(c, h.account.Profile(c.Request.Context()))
}

func (h *ProfileHandler) Update(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	err := h.account.UpdateProfile(c.Request.Context(), backend.ProfileUpdate{
		Name:      req.Name,
		StudentID: req.StudentID,
		Major:     req.Major,
	})
	if err != nil {
		writeError(c, err, "update profile failed")
		return
	}
	response.OK(c, h.account.Profile(c.Request.Context()))
}

func (h *ProfileHandler) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	err := h.account.ChangePassword(c.Request.Context(), app.ChangePasswordInput{
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		writeError(c, err, "change password failed")
		return
	}
	response.OK(c, nil)
}

func (h *ProfileHandler) UploadPicture(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)
	fileHeader, err := c.FormFile("profilePicture")
	if err != nil {
		badRequest(c)
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		badRequest(c)
		return
	}
	defer file.Close()

	url, err := h.account.UploadProfilePicture(c.Request.Context(), fileHeader.Filename, file)
	if err != nil {
		writeError(c, err, "upload profile picture failed")
		return
	}
	response.OK(c, gin.H{"url": url})
}
