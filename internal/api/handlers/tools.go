package handlers

import (
	"net/http"

	"catalog/internal/logger"
	"catalog/internal/tools"

	"github.com/gin-gonic/gin"
)

type ToolsHandler struct {
	registry *tools.Registry
	logger   *logger.Logger
}

func NewToolsHandler(registry *tools.Registry, logger *logger.Logger) *ToolsHandler {
	return &ToolsHandler{registry: registry, logger: logger}
}

func (h *ToolsHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tools": h.registry.List()})
}

// Call runs a tool. Tool failures still return 200 with an error field.
func (h *ToolsHandler) Call(c *gin.Context) {
	args, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read arguments"})
		return
	}

	res, err := h.registry.Call(c.Request.Context(), c.Param("name"), args)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
