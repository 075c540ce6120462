package http

import (
	"github.com/gin-gonic/gin"

	"advisorbot/internal/bootstrap"
	"advisorbot/internal/transport/http/handler"
	"advisorbot/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(middleware.RequestID(), middleware.Logger(app.Logger), middleware.Recovery(app.Logger))

	healthHandler := handler.NewHealthHandler(app)
	sessionHandler := handler.NewSessionHandler(app.Sessions)
	chatHandler := handler.NewChatHandler(app.Exchange)
	accountHandler := handler.NewAccountHandler(app.Account, app.Sessions)
	profileHandler := handler.NewProfileHandler(app.Account)
	preferencesHandler := handler.NewPreferencesHandler(app.Preferences)
	transcriptHandler := handler.NewTranscriptHandler(app.Transcripts)

	router.GET("/healthz", healthHandler.Check)

	v1 := router.Group("/api/v1")
	v1.GET("/healthz", healthHandler.Check)

	authGroup := v1.Group("/auth")
	authGroup.POST("/register", accountHandler.Register)
	authGroup.POST("/login", accountHandler.Login)
	authGroup.POST("/logout", accountHandler.Logout)
	authGroup.GET("/me", accountHandler.Me)

	sessionGroup := v1.Group("/sessions")
	sessionGroup.GET("", sessionHandler.List)
	sessionGroup.POST("", sessionHandler.Create)
	sessionGroup.PATCH("/:id", sessionHandler.Rename)
	sessionGroup.DELETE("/:id", sessionHandler.Delete)
	sessionGroup.POST("/:id/select", sessionHandler.Select)
	sessionGroup.POST("/:id/pin", sessionHandler.TogglePin)
	sessionGroup.POST("/:id/archive", sessionHandler.ToggleArchive)
	sessionGroup.GET("/:id/messages", sessionHandler.Messages)

	chatGroup := v1.Group("/chat")
	chatGroup.POST("", chatHandler.Send)
	chatGroup.POST("/attachments", chatHandler.Attach)

	v1.POST("/sync", accountHandler.Sync)
	v1.POST("/history/reset", accountHandler.ResetHistory)

	profileGroup := v1.Group("/profile")
	profileGroup.GET("", profileHandler.Get)
	profileGroup.PUT("", profileHandler.Update)
	profileGroup.POST("/password", profileHandler.ChangePassword)
	profileGroup.POST("/picture", profileHandler.UploadPicture)

	prefsGroup := v1.Group("/preferences")
	prefsGroup.GET("", preferencesHandler.Get)
	prefsGroup.POST("/theme", preferencesHandler.ToggleTheme)
	prefsGroup.POST("/sidebar", preferencesHandler.ToggleSidebar)

	v1.GET("/transcripts", transcriptHandler.List)

	return router
}
