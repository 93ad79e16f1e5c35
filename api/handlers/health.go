package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthCheck provides a simple health check endpoint
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// Liveness answers non-POST requests on the root path with a plain-text
// status line.
func Liveness(c *gin.Context) {
	c.String(http.StatusOK, "myship email worker is running")
}
