package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/epa-labs/epa-coach/internal/common"
)

func (h *Handler) Ping(c *gin.Context) {
	common.OK(c, gin.H{"status": "up"})
}

func (h *Handler) ListDocuments(c *gin.Context) {
	common.OK(c, gin.H{"documents": h.Docs.List()})
}

func (h *Handler) GetDocument(c *gin.Context) {
	d, ok := h.Docs.Get(c.Param("id"))
	if !ok {
		common.Fail(c, http.StatusNotFound, 40401, "document not found")
		return
	}
	common.OK(c, gin.H{"document": d})
}
