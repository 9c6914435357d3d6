package http

import "github.com/gin-gonic/gin"

// Register attaches project routes to the given router group.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("", h.createProject)
	rg.GET("", h.listProjects)
	rg.GET("/:id", h.getProject)
	rg.POST("/:id/messages", h.createMessage)
	rg.GET("/:id/messages", h.listMessages)
	rg.GET("/:id/events/latest", h.latestEvent)
}
