package util

import (
	"github.com/go-openapi/strfmt"
	"github.com/labstack/echo/v4"
)

// Validatable is implemented by the response models in internal/types
type Validatable interface {
	Validate(formats strfmt.Registry) error
}

// ValidateAndReturn validates v against the default format registry before writing it as JSON.
func ValidateAndReturn(c echo.Context, code int, v Validatable) error {
	if err := v.Validate(strfmt.Default); err != nil {
		LogFromContext(c.Request().Context()).Error().Err(err).Msg("Response model failed validation")
		return echo.ErrInternalServerError.WithInternal(err)
	}

	return c.JSON(code, v)
}
