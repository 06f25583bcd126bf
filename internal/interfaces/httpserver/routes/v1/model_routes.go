package v1

import (
	"github.com/gin-gonic/gin"

	"roborail-assistant/internal/interfaces/httpserver/handlers"
)

func registerModelRoutes(group *gin.RouterGroup, handler *handlers.ModelHandler) {
	group.GET("/models", handler.List)
}
