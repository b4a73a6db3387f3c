package handlers

import (
	"errors"

	"github.com/freelancehub/pmcopilot/backend/internal/services"
	"github.com/freelancehub/pmcopilot/backend/pkg/response"
	"github.com/gin-gonic/gin"
)

// serviceError maps the services error taxonomy onto HTTP responses.
// Unknown errors are treated as server faults.
func serviceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, services.ErrInvalidStateTransition):
		response.Conflict(c, err.Error())
	case errors.Is(err, services.ErrInvalidOption), errors.Is(err, services.ErrValidation):
		response.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrStoreUnavailable):
		response.ServiceUnavailable(c, err.Error())
	default:
		response.ServerError(c, err.Error())
	}
}
