package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"advisorbot/internal/app"
	"advisorbot/internal/backend"
	"advisorbot/internal/transport/http/response"
)

// writeError maps service and backend errors onto the response envelope.
func writeError(c *gin.Context, err error, fallback string) {
	_ = c.Error(err)

	var statusErr *backend.StatusError
	switch {
	case errors.Is(err, app.ErrInvalidInput):
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
	case errors.Is(err, app.ErrEmptyQuery):
		response.Error(c, http.StatusBadRequest, response.CodeEmptyQuery, err.Error())
	case errors.Is(err, app.ErrPasswordMismatch):
		response.Error(c, http.StatusBadRequest, response.CodePasswordMismatch, err.Error())
	case errors.Is(err, app.ErrPasswordTooShort):
		response.Error(c, http.StatusBadRequest, response.CodePasswordTooShort, err.Error())
	case errors.Is(err, app.ErrNotAuthenticated):
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, err.Error())
	case errors.Is(err, app.ErrSessionNotFound):
		response.Error(c, http.StatusNotFound, response.CodeSessionNotFound, err.Error())
	case errors.Is(err, app.ErrDeleteDeclined):
		response.Error(c, http.StatusConflict, response.CodeDeleteNotConfirmed, err.Error())
	case errors.Is(err, app.ErrExchangeInFlight):
		response.Error(c, http.StatusConflict, response.CodeExchangeInFlight, err.Error())
	case backend.IsUnauthorized(err):
		response.Error(c, http.StatusUnauthorized, response.CodeSessionExpired, "Session expired. Please log in again.")
	case errors.As(err, &statusErr):
		response.Error(c, http.StatusBadGateway, response.CodeBackendError, statusErr.Detail)
	case errors.Is(err, backend.ErrUnavailable):
		response.Error(c, http.StatusServiceUnavailable, response.CodeBackendUnavailable, "could not connect to server")
	case errors.Is(err, backend.ErrUnrecognizedResponse):
		response.Error(c, http.StatusBadGateway, response.CodeBackendError, "unrecognized response from server")
	default:
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, fallback)
	}
}

func badRequest(c *gin.Context) {
	response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
}
