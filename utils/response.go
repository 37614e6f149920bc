package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// JSONResponse defines the uniform structure for rendered page contexts.
type JSONResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Respond writes a JSON response with the given status code.
func Respond(ctx *gin.Context, status int, code int, message string, data interface{}) {
	ctx.JSON(status, JSONResponse{
		Code:    code,
		Message: message,
		Data:    data,
	})
}

// Success renders a page context with a success envelope.
func Success(ctx *gin.Context, data interface{}) {
	Respond(ctx, http.StatusOK, 0, "success", data)
}

// Error returns a standard error response.
func Error(ctx *gin.Context, status int, code int, message string) {
	Respond(ctx, status, code, message, nil)
}

// FormErrors re-renders a form with field-level errors. Validation failures
// keep HTTP success status so the page renders inline rather than erroring.
func FormErrors(ctx *gin.Context, form interface{}, errs map[string]string) {
	Respond(ctx, http.StatusOK, 40001, "validation failed", gin.H{
		"form":   form,
		"errors": errs,
	})
}
