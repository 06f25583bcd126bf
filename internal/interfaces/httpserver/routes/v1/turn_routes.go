package v1

import (
	"github.com/gin-gonic/gin"

	"roborail-assistant/internal/interfaces/httpserver/handlers"
)

func registerTurnRoutes(group *gin.RouterGroup, handler *handlers.TurnHandler) {
	group.POST("/turn", handler.Process)
}
