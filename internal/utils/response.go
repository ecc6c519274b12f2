package utils

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
)

// ServerErrorResponse sends the 500 body of the data routes.
// The stack is only written when exposeStack is set; it discloses internals.
func ServerErrorResponse(c *fiber.Ctx, err error, exposeStack bool) error {
	body := ServerErrorStruct{
		Error:   "Server error",
		Details: err.Error(),
	}
	if exposeStack {
		body.Stack = fmt.Sprintf("%+v", err)
	}
	return c.Status(fiber.StatusInternalServerError).JSON(body)
}

// ErrorResponse sends a standard error response
func ErrorResponse(c *fiber.Ctx, message string, status int, errorType string) error {
	return c.Status(status).JSON(errorResponseStruct{
		Status:    status,
		Message:   message,
		Ok:        false,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		URL:       c.OriginalURL(),
		Type:      errorType,
	})
}

// NotFoundResponse sends a 404 not found response
func NotFoundResponse(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusNotFound).JSON(errorResponseStruct{
		Status:    fiber.StatusNotFound,
		Message:   message,
		Ok:        false,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		URL:       c.OriginalURL(),
	})
}

// ServerErrorStruct defines the schema for data route failures
type ServerErrorStruct struct {
	Error   string `json:"error"`
	Details string `json:"details"`
	Stack   string `json:"stack,omitempty"`
}

// errorResponseStruct is the body of 404s and errors from the global handler
type errorResponseStruct struct {
	Status    int    `json:"status"`
	Message   string `json:"message"`
	Ok        bool   `json:"ok"`
	Timestamp string `json:"timestamp"`
	URL       string `json:"url"`
	Type      string `json:"type,omitempty"`
}
