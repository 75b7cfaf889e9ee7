package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// All handler outcomes share one envelope: {success, message?, <payload>}.
// Logical failures still answer HTTP 200; clients branch on the success
// flag, not the status code.

// OK writes a success envelope merged with the given payload keys.
func OK(ctx *gin.Context, payload gin.H) {
	body := gin.H{"success": true}
	for k, v := range payload {
		body[k] = v
	}
	ctx.JSON(http.StatusOK, body)
}

// OKMessage writes a success envelope carrying only a confirmation message.
func OKMessage(ctx *gin.Context, message string) {
	ctx.JSON(http.StatusOK, gin.H{"success": true, "message": message})
}

// Fail writes a failure envelope with a human-readable message.
func Fail(ctx *gin.Context, message string) {
	ctx.JSON(http.StatusOK, gin.H{"success": false, "message": message})
}
