// Package response renders the JSON envelope every endpoint returns.
package response

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/deptsite/deptcms/pkg/apperror"
)

type Envelope struct {
	Success bool     `json:"success"`
	Count   *int     `json:"count,omitempty"`
	Data    any      `json:"data,omitempty"`
	Message string   `json:"message,omitempty"`
	Error   string   `json:"error,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

func OK(data any) Envelope {
	return Envelope{Success: true, Data: data}
}

// List wraps a listing and its length.
func List(data any, count int) Envelope {
	return Envelope{Success: true, Count: &count, Data: data}
}

func Message(msg string, data any) Envelope {
	return Envelope{Success: true, Message: msg, Data: data}
}

// Fail maps err to a status and a failure envelope. action describes the
// attempted operation ("fetching course") and is used for errors without
// a user-facing message of their own.
func Fail(err error, action string) (int, Envelope) {
	status := apperror.Status(err)

	var ve *apperror.ValidationError
	switch {
	case errors.As(err, &ve):
		msgs := ve.Messages()
		return status, Envelope{
			Message: "Validation error",
			Error:   strings.Join(msgs, ", "),
			Errors:  msgs,
		}
	case errors.Is(err, apperror.ErrInvalidID):
		return status, Envelope{Message: "Invalid ID format"}
	case status == http.StatusInternalServerError:
		return status, Envelope{Message: "Error " + action, Error: err.Error()}
	}
	return status, Envelope{Message: err.Error()}
}

func JSON(c *gin.Context, status int, env Envelope) {
	c.JSON(status, env)
}

// Error writes the failure envelope for err, logging server-side failures.
func Error(c *gin.Context, err error, action string) {
	status, env := Fail(err, action)
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(c.Request.Context(), fmt.Sprintf("Error %s", action),
			"error", err, "kind", apperror.Kind(err), "path", c.Request.URL.Path)
	}
	c.AbortWithStatusJSON(status, env)
}
