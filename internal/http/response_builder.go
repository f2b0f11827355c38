// Package http provides HTTP server and handler implementations.
//
// This file implements a small builder for JSON responses so every handler
// emits the same content type and error body shapes.

package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"finance/internal/core"
)

const (
	detailNotFound = "Not found."
	detailInternal = "Internal server error."
)

// JSONResponseBuilder provides a fluent API for building JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	headers    map[string]string
	payload    any
}

// NewJSONResponse creates a new response builder with default 200 status.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

// Status sets the HTTP status code for the response.
func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

// Header adds a custom header to the response.
func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

// JSON sets the value encoded as the response body.
func (b *JSONResponseBuilder) JSON(v any) *JSONResponseBuilder {
	b.payload = v
	return b
}

// Write sends the built response to the http.ResponseWriter. A 204 response
// never carries a body.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}

	if b.statusCode == http.StatusNoContent || b.payload == nil {
		w.WriteHeader(b.statusCode)
		return
	}

	body, err := json.Marshal(b.payload)
	if err != nil {
		slog.Error("Failed to encode JSON response", "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"detail":"` + detailInternal + `"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(b.statusCode)
	_, _ = w.Write(body)
}

type detailBody struct {
	Detail string `json:"detail"`
}

type errorsBody struct {
	Errors map[string][]string `json:"errors"`
}

// DetailResponse creates a response whose body is {"detail": message}.
func DetailResponse(statusCode int, message string) *JSONResponseBuilder {
	return NewJSONResponse().Status(statusCode).JSON(detailBody{Detail: message})
}

// ValidationErrorResponse creates a 400 response listing messages per field.
func ValidationErrorResponse(ve *core.ValidationError) *JSONResponseBuilder {
	return NewJSONResponse().
		Status(http.StatusBadRequest).
		JSON(errorsBody{Errors: ve.Fields})
}

// NotFoundError creates a 404 Not Found error response.
func NotFoundError() *JSONResponseBuilder {
	return DetailResponse(http.StatusNotFound, detailNotFound)
}

// InternalServerError creates a 500 Internal Server Error response.
func InternalServerError() *JSONResponseBuilder {
	return DetailResponse(http.StatusInternalServerError, detailInternal)
}

// MethodNotAllowedError creates a 405 Method Not Allowed error response.
func MethodNotAllowedError(method, allowedMethods string) *JSONResponseBuilder {
	return DetailResponse(http.StatusMethodNotAllowed, fmt.Sprintf("Method %q not allowed.", method)).
		Header("Allow", allowedMethods)
}
