package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"advisorbot/internal/app"
	"advisorbot/internal/model"
	"advisorbot/internal/render"
	"advisorbot/internal/transport/http/response"
)

type SessionHandler struct {
	sessions *app.SessionController
}

type RenameSessionRequest struct {
	Title string `json:"title"`
}

type renderedMessage struct {
	model.Message
	HTML string `json:"html"`
}

func NewSessionHandler(sessions *app.SessionController) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

func (h *SessionHandler) List(c *gin.Context) {
	var sessions []model.Session
	if archived, _ := strconv.ParseBool(c.Query("archived")); archived {
		sessions = h.sessions.Archived()
	} else {
		sessions = h.sessions.List(c.Query("q"))
	}
	if sessions == nil {
		sessions = []model.Session{}
	}
	response.OK(c, gin.H{
		"sessions":  sessions,
		"active_id": h.sessions.ActiveID(),
	})
}

func (h *SessionHandler) Create(c *gin.Context) {
	response.OK(c, h.sessions.CreateSession(c.Request.Context()))
}

func (h *SessionHandler) Select(c *gin.Context) {
	if !h.sessions.SelectSession(c.Request.Context(), c.Param("id")) {
		response.Error(c, http.StatusNotFound, response.CodeSessionNotFound, app.ErrSessionNotFound.Error())
		return
	}
	response.OK(c, gin.H{"active_id": h.sessions.ActiveID()})
}

// Rename ignores blank titles and returns the session unchanged.
func (h *SessionHandler) Rename(c *gin.Context) {
	var req RenameSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	id := c.Param("id")
	h.sessions.RenameSession(c.Request.Context(), id, req.Title)
	h.respondSession(c, id)
}

func (h *SessionHandler) TogglePin(c *gin.Context) {
	session, ok := h.sessions.TogglePin(c.Request.Context(), c.Param("id"))
	if !ok {
		response.Error(c, http.StatusNotFound, response.CodeSessionNotFound, app.ErrSessionNotFound.Error())
		return
	}
	response.OK(c, session)
}

func (h *SessionHandler) ToggleArchive(c *gin.Context) {
	session, ok := h.sessions.ToggleArchive(c.Request.Context(), c.Param("id"))
	if !ok {
		response.Error(c, http.StatusNotFound, response.CodeSessionNotFound, app.ErrSessionNotFound.Error())
		return
	}
	response.OK(c, gin.H{
		"session":   session,
		"active_id": h.sessions.ActiveID(),
	})
}

// Delete needs ?confirm=true; the browser asks the user before sending it.
func (h *SessionHandler) Delete(c *gin.Context) {
	confirmed, _ := strconv.ParseBool(c.Query("confirm"))
	confirm := func(string) bool { return confirmed }
	if err := h.sessions.DeleteSession(c.Request.Context(), c.Param("id"), confirm); err != nil {
		writeError(c, err, "delete session failed")
		return
	}
	response.OK(c, gin.H{"active_id": h.sessions.ActiveID()})
}

func (h *SessionHandler) Messages(c *gin.Context) {
	session, ok := h.sessions.Session(c.Param("id"))
	if !ok {
		response.Error(c, http.StatusNotFound, response.CodeSessionNotFound, app.ErrSessionNotFound.Error())
		return
	}
	if c.Query("format") != "html" {
		response.OK(c, session.Messages)
		return
	}

	out := make([]renderedMessage, 0, len(session.Messages))
	for _, msg := range session.Messages {
		html, err := render.MessageHTML(msg.Text)
		if err != nil {
			writeError(c, err, "render messages failed")
			return
		}
		out = append(out, renderedMessage{Message: msg, HTML: html})
	}
	response.OK(c, out)
}

func (h *SessionHandler) respondSession(c *gin.Context, id string) {
	session, ok := h.sessions.Session(id)
	if !ok {
		response.Error(c, http.StatusNotFound, response.CodeSessionNotFound, app.ErrSessionNotFound.Error())
		return
	}
	response.OK(c, session)
}
