package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/jxiaof/next16-demo/internal/schemas"
	"github.com/jxiaof/next16-demo/internal/utils"
)

var errSanitize = errors.New("payload could not be sanitized")

// BindAndSanitize decodes the JSON body into a fresh T for every request, strips markup
// from the fields tagged for it and stores the result under utils.SanitizedPayloadKey.
// Field validation is left to the action receiving the payload.
func BindAndSanitize[T any]() gin.HandlerFunc {
	return func(c *gin.Context) {
		payload := new(T)
		if err := c.ShouldBindJSON(payload); err != nil {
			utils.LogMessageWithFieldsAndError(c, "info", "Request body could not be decoded", err)
			c.AbortWithStatusJSON(schemas.BadRequest.HttpStatus, schemas.Failed(schemas.BadRequest))
			return
		}

		if err := utils.GetValidator().SanitizeData(payload); err != nil {
			utils.WriteAndLogError(c, schemas.BadRequest, errors.Join(errSanitize, err))
			return
		}

		c.Set(utils.SanitizedPayloadKey.String(), payload)
		c.Next()
	}
}

// Payload returns the body stored by BindAndSanitize.
func Payload[T any](c *gin.Context) *T {
	return c.MustGet(utils.SanitizedPayloadKey.String()).(*T)
}
