package server

import (
	"github.com/gin-gonic/gin"
)

const (
	ErrorCodeValidation = "validation_error"
	ErrorCodeInternal   = "internal_error"
)

func JSONError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

func AbortJSONError(c *gin.Context, status int, code, message string) {
	JSONError(c, status, code, message)
	c.Abort()
}
