package utils

import (
	"github.com/gin-gonic/gin"
	"github.com/jxiaof/next16-demo/internal/schemas"
)

// WriteAndLogResponse encodes the response object to JSON and writes it to the HTTP response
// with the provided status code.
func WriteAndLogResponse(ctx *gin.Context, response interface{}, statusCode int) {
	LogMessageWithFields(ctx, "info", "Returning response")
	ctx.JSON(statusCode, response)
}

// WriteActionResult writes an account action result using the status it carries.
func WriteActionResult(ctx *gin.Context, result *schemas.ActionResult) {
	if !result.Success {
		LogMessageWithFields(ctx, "info", "Returning "+result.Code+" / "+result.Message)
	}
	WriteAndLogResponse(ctx, result, result.HttpStatus)
}

// WriteAndLogError logs the provided error and aborts the request with the failed action result of customErr.
func WriteAndLogError(c *gin.Context, customErr *schemas.CustomError, err error) {
	LogMessageWithFieldsAndError(c, "error", "Error occurred", err)
	LogMessageWithFields(c, "error", "Returning "+customErr.Code+" / "+customErr.Message)
	c.AbortWithStatusJSON(customErr.HttpStatus, schemas.Failed(customErr))
}
