package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"advisorbot/internal/repository"
	"advisorbot/internal/transport/http/response"
)

type TranscriptHandler struct {
	repo *repository.TranscriptRepository
}

func NewTranscriptHandler(repo *repository.TranscriptRepository) *TranscriptHandler {
	return &TranscriptHandler{repo: repo}
}

func (h *TranscriptHandler) List(c *gin.Context) {
	if h.repo == nil {
		response.Error(c, http.StatusNotFound, response.CodeFeatureDisabled, "transcript archive is disabled")
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))
	transcripts, err := h.repo.List(c.Request.Context(), c.Query("session_id"), limit)
	if err != nil {
		writeError(c, err, "list transcripts failed")
		return
	}
	response.OK(c, transcripts)
}
