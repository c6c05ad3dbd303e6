// Package apierr holds the structured error bodies returned by the mock API.
// A body is either {"detail": "<message>"} or a list of field-scoped
// validation errors under "detail".
package apierr

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

type FieldError struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

// Error is a client-facing failure with its HTTP status.
type Error struct {
	Status int `json:"-"`
	Detail any `json:"detail"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d: %v", e.Status, e.Detail)
}

func Detail(status int, msg string) *Error {
	return &Error{Status: status, Detail: msg}
}

func Validation(status int, fields ...FieldError) *Error {
	return &Error{Status: status, Detail: fields}
}

// Query builds a field error located in the query string.
func Query(field, msg, typ string) FieldError {
	return FieldError{Loc: []string{"query", field}, Msg: msg, Type: typ}
}

// Body builds a field error located in the request body.
func Body(field, msg, typ string) FieldError {
	return FieldError{Loc: []string{"body", field}, Msg: msg, Type: typ}
}

var (
	NotAuthenticated   = Detail(http.StatusUnauthorized, "Not authenticated")
	InvalidCredentials = Detail(http.StatusUnauthorized, "Invalid username or password")
	AssetNotFound      = Detail(http.StatusNotFound, "Asset not found")
	InvalidSortField   = Validation(http.StatusBadRequest, Query("sort_by", "Invalid sort field", "value_error"))
)

// Abort writes err and stops the gin handler chain.
func Abort(c *gin.Context, err *Error) {
	if err.Status == http.StatusUnauthorized {
		c.Header("WWW-Authenticate", "Bearer")
	}
	c.AbortWithStatusJSON(err.Status, err)
}
