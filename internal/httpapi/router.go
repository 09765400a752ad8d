package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/epa-labs/epa-coach/internal/common"
	"github.com/epa-labs/epa-coach/internal/httpapi/handlers"
)

func NewRouter(h *handlers.Handler) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Logger(), gin.Recovery())

	r.NoRoute(func(c *gin.Context) {
		common.Fail(c, http.StatusNotFound, 40400, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		common.Fail(c, http.StatusMethodNotAllowed, 40500, "method not allowed")
	})

	r.GET("/ping", h.Ping)

	// Stateless completion endpoint, raw JSON contract.
	r.POST("/api/chat", h.CompleteChat)

	r.GET("/documents", h.ListDocuments)
	r.GET("/documents/:id", h.GetDocument)

	r.POST("/sessions", h.CreateSession)
	sess := r.Group("/sessions/:id")
	{
		sess.GET("", h.GetSession)
		sess.POST("/documents/:doc_id/select", h.SelectDocument)
		sess.POST("/tab", h.SwitchTab)
		sess.POST("/back", h.Back)
		sess.POST("/chat/open", h.OpenChat)
		sess.GET("/chat", h.GetChat)
		sess.POST("/chat/messages", h.SendChatMessage)
		sess.POST("/chat/escalation", h.RequestEscalation)
		sess.POST("/chat/escalation/confirm", h.ConfirmEscalation)
		sess.POST("/chat/escalation/cancel", h.CancelEscalation)
	}

	return r
}
