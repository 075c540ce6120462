package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"advisorbot/internal/app"
	"advisorbot/internal/transport/http/response"
)

const maxUploadBytes = 20 << 20

type ChatHandler struct {
	exchange *app.ExchangeService
}

type SendMessageRequest struct {
	Query string `json:"query" binding:"required"`
}

func NewChatHandler(exchange *app.ExchangeService) *ChatHandler {
	return &ChatHandler{exchange: exchange}
}

// Send returns 200 even when the backend failed; the failure is the bot
// reply and Failed is set. The exchange outlives a client disconnect and is
// bounded by the backend client timeout.
func (h *ChatHandler) Send(c *gin.Context) {
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	result, err := h.exchange.Send(context.WithoutCancel(c.Request.Context()), req.Query)
	if err != nil {
		writeError(c, err, "send message failed")
		return
	}
	response.OK(c, result)
}

func (h *ChatHandler) Attach(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)
	fileHeader, err := c.FormFile("file")
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

	msg, err := h.exchange.AttachFile(c.Request.Context(), fileHeader.Filename, file)
	if err != nil {
		writeError(c, err, "upload file failed")
		return
	}
	response.OK(c, msg)
}
