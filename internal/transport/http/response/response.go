package response

import "github.com/gin-gonic/gin"

const (
	CodeOK                 = 0
	CodeBadRequest         = 40000
	CodeEmptyQuery         = 40001
	CodePasswordMismatch   = 40002
	CodePasswordTooShort   = 40003
	CodeUnauthorized       = 40100
	CodeSessionExpired     = 40101
	CodeSessionNotFound    = 40401
	CodeFeatureDisabled    = 40402
	CodeDeleteNotConfirmed = 40901
	CodeExchangeInFlight   = 40902
	CodeInternalServer     = 50000
	CodeBackendError       = 50200
	CodeBackendUnavailable = 50300
)

type APIResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func OK(c *gin.Context, data interface{}) {
	c.JSON(200, APIResponse{
		Code:    CodeOK,
		Message: "ok",
		Data:    data,
	})
}

func Error(c *gin.Context, httpStatus, code int, message string) {
	c.JSON(httpStatus, APIResponse{
		Code:    code,
		Message: message,
	})
}
