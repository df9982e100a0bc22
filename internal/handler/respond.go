package handler

import (
	"github.com/labstack/echo/v4"

	"tasktracker/internal/errors"
)

// respondError translates a domain error into the standard error body.
func respondError(c echo.Context, err error) error {
	he := errors.MapErrorToHTTP(err)
	return c.JSON(he.StatusCode, he.ToErrorResponse())
}
