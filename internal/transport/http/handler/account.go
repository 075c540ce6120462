package handler

import (
	"github.com/gin-gonic/gin"

	"advisorbot/internal/app"
	"advisorbot/internal/transport/http/response"
)

type AccountHandler struct {
	account  *app.AccountService
	sessions *app.SessionController
}

type CredentialsRequest struct {
	Email    string `json:"email" binding:"required,max=128"`
	Password string `json:"password" binding:"required,max=128"`
}

func NewAccountHandler(account *app.AccountService, sessions *app.SessionController) *AccountHandler {
	return &AccountHandler{account: account, sessions: sessions}
}

func (h *AccountHandler) Register(c *gin.Context) {
	var req CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	if err := h.account.Register(c.Request.Context(), req.Email, req.Password); err != nil {
		writeError(c, err, "register failed")
		return
	}
	response.OK(c, gin.H{"email": req.Email})
}

func (h *AccountHandler) Login(c *gin.Context) {
	var req CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	identity, err := h.account.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, err, "login failed")
		return
	}
	response.OK(c, gin.H{
		"user":      identity,
		"active_id": h.sessions.ActiveID(),
	})
}

func (h *AccountHandler) Logout(c *gin.Context) {
	if err := h.account.Logout(c.Request.Context()); err != nil {
		writeError(c, err, "logout failed")
		return
	}
	response.OK(c, nil)
}

func (h *AccountHandler) Me(c *gin.Context) {
	identity, err := h.account.Identity(c.Request.Context())
	if err != nil {
		writeError(c, err, "read identity failed")
		return
	}
	response.OK(c, gin.H{
		"logged_in": identity.Email != "",
		"user":      identity,
	})
}

func (h *AccountHandler) Sync(c *gin.Context) {
	if err := h.account.Sync(c.Request.Context()); err != nil {
		writeError(c, err, "sync history failed")
		return
	}
	sessions, activeID := h.sessions.Snapshot()
	response.OK(c, gin.H{
		"sessions":  len(sessions),
		"active_id": activeID,
	})
}

func (h *AccountHandler) ResetHistory(c *gin.Context) {
	if err := h.account.ResetHistory(c.Request.Context()); err != nil {
		writeError(c, err, "reset history failed")
		return
	}
	response.OK(c, nil)
}
