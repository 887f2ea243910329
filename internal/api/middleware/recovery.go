package middleware

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/deptsite/deptcms/internal/api/response"
)

// Recovery turns a panic into the 500 envelope instead of a dropped
// connection.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		slog.ErrorContext(c.Request.Context(), "Panic recovered",
			"panic", fmt.Sprint(recovered), "path", c.Request.URL.Path)
		response.JSON(c, http.StatusInternalServerError, response.Envelope{
			Message: "Internal Server Error",
		})
		c.Abort()
	})
}

// NoRoute answers unknown paths the way the API always has.
func NoRoute() gin.HandlerFunc {
	return func(c *gin.Context) {
		response.JSON(c, http.StatusNotFound, response.Envelope{
			Message: fmt.Sprintf("Cannot %s %s", c.Request.Method, c.Request.URL.Path),
		})
	}
}
