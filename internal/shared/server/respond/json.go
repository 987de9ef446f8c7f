package respond

import "github.com/gin-gonic/gin"

// JSON writes a JSON response. Responses carry per-user data, so they are never cached.
func JSON(c *gin.Context, status int, payload any) {
	c.Header("Cache-Control", "no-store")
	c.JSON(status, payload)
}
