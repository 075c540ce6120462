package handler

import (
	"github.com/gin-gonic/gin"

	"advisorbot/internal/app"
	"advisorbot/internal/transport/http/response"
)

type PreferencesHandler struct {
	prefs *app.Preferences
}

func NewPreferencesHandler(prefs *app.Preferences) *PreferencesHandler {
	return &PreferencesHandler{prefs: prefs}
}

func (h *PreferencesHandler) Get(c *gin.Context) {
	theme, err := h.prefs.Theme(c.Request.Context())
	if err != nil {
		writeError(c, err, "read preferences failed")
		return
	}
	collapsed, err := h.prefs.SidebarCollapsed(c.Request.Context())
	if err != nil {
		writeError(c, err, "read preferences failed")
		return
	}
	response.OK(c, gin.H{
		"theme":             theme,
		"sidebar_collapsed": collapsed,
	})
}

func (h *PreferencesHandler) ToggleTheme(c *gin.Context) {
	theme, err := h.prefs.ToggleTheme(c.Request.Context())
	if err != nil {
		writeError(c, err, "toggle theme failed")
		return
	}
	response.OK(c, gin.H{"theme": theme})
}

func (h *PreferencesHandler) ToggleSidebar(c *gin.Context) {
	collapsed, err := h.prefs.ToggleSidebar(c.Request.Context())
	if err != nil {
		writeError(c, err, "toggle sidebar failed")
		return
	}
	response.OK(c, gin.H{"sidebar_collapsed": collapsed})
}
