package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"roborail-assistant/internal/domain/llm"
)

// ModelHandler serves the model catalog.
type ModelHandler struct{}

// NewModelHandler constructs the handler.
func NewModelHandler() *ModelHandler {
	return &ModelHandler{}
}

// List handles GET /v1/models.
func (h *ModelHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": llm.Models})
}
