package handlers

import (
	"servicehub/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// getLogger retrieves the request logger set by middleware, falling back to the global one.
func getLogger(c *gin.Context) *zap.Logger {
	return utils.RequestLogger(c)
}
