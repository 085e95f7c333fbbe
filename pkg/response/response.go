package response

import (
	"log"
	"net/http"

	"anadara.com/exportmarket/pkg/apperror"
	"anadara.com/exportmarket/pkg/validator"
	"github.com/gin-gonic/gin"
)

// Error writes a standardized error response
func Error(c *gin.Context, err error) {
	code := apperror.MapErrorToStatus(err)

	// Log internal errors, never leak them
	if code == http.StatusInternalServerError {
		log.Printf("[Internal Error]: %v", err)
		c.JSON(code, gin.H{"error": apperror.ErrInternal.Error()})
		return
	}

	c.JSON(code, gin.H{"error": err.Error()})
}

// ValidationError writes a 400 with the structured field error list
func ValidationError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"errors": validator.FieldErrors(err)})
}
