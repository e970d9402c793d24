package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Guard hands out the busy flag of a resource
type Guard interface {
	Acquire(key string) (func(), error)
}

// SingleFlight refuses a write while another write to the same resource is
// still running. The resource is the scope plus the :id path parameter, or
// "new" for creations.
func SingleFlight(guard Guard, scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if id == "" {
			id = "new"
		}

		release, err := guard.Acquire(scope + ":" + id)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "BUSY",
					"message": "A previous submission is still being saved",
				},
			})
			return
		}
		defer release()

		c.Next()
	}
}
