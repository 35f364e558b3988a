package utils

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/jam-build-rentals/internal/types"
)

// SuccessResponse sends the standard {success, data} envelope
func SuccessResponse(c *fiber.Ctx, data interface{}, status int) error {
	return c.Status(status).JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}

// ErrorResponse sends a standard error response
func ErrorResponse(c *fiber.Ctx, message string, status int, errorType string) error {
	return c.Status(status).JSON(ErrorResponseStruct{
		Error:     message,
		Status:    status,
		Ok:        false,
		Type:      errorType,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		URL:       c.OriginalURL(),
	})
}

// NotFoundResponse sends a 404 not found response
func NotFoundResponse(c *fiber.Ctx, message string) error {
	return ErrorResponse(c, message, fiber.StatusNotFound, "not_found")
}

// ErrorFrom sends the response matching err. Errors that are neither a
// CustomError nor a fiber.Error become a generic 500.
func ErrorFrom(c *fiber.Ctx, err error) error {
	var custom *types.CustomError
	if errors.As(err, &custom) {
		return ErrorResponse(c, custom.Message, custom.Code, custom.Type)
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return ErrorResponse(c, fe.Message, fe.Code, "request")
	}
	return ErrorResponse(c, "Internal server error", fiber.StatusInternalServerError, "internal")
}

// ErrorResponseStruct defines the schema for error responses
type ErrorResponseStruct struct {
	Error     string `json:"error"`
	Status    int    `json:"status"`
	Ok        bool   `json:"ok"`
	Type      string `json:"type,omitempty"`
	Timestamp string `json:"timestamp"`
	URL       string `json:"url"`
}

// SuccessResponseStruct defines the schema for success responses
type SuccessResponseStruct struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
}
