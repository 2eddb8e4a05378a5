package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/crudify/errors"
	"github.com/kbukum/crudify/server/middleware"
)

// Respond writes a handler result: nil as 204, a string as text/plain,
// []byte as application/octet-stream and anything else as JSON.
func Respond(c *gin.Context, status int, value any) {
	switch v := value.(type) {
	case nil:
		c.Status(http.StatusNoContent)
	case string:
		c.String(status, "%s", v)
	case []byte:
		c.Data(status, "application/octet-stream", v)
	default:
		c.JSON(status, v)
	}
}

// RespondWithError writes err as an RFC 7807-style body. Errors that are not
// an *apperrors.AppError become INTERNAL_ERROR with status 500.
func RespondWithError(c *gin.Context, err error) {
	appErr := apperrors.Wrap(err)
	_ = c.Error(err)
	c.AbortWithStatusJSON(appErr.HTTPStatus, appErr.ToResponse(middleware.GetRequestID(c)))
}
