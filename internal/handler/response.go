package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// APIResponse is the envelope every endpoint returns. Data is omitted on
// errors and Message is omitted when there is nothing useful to add.
type APIResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// Success writes a success envelope with the given payload.
func Success(c echo.Context, code int, message string, data any) error {
	if code == 0 {
		code = http.StatusOK
	}
	return c.JSON(code, APIResponse{Status: "success", Message: message, Data: data})
}

// Error writes an error envelope. Data stays empty so failures never carry
// partial results.
func Error(c echo.Context, code int, message string) error {
	if code == 0 {
		code = http.StatusInternalServerError
	}
	return c.JSON(code, APIResponse{Status: "error", Message: message})
}
