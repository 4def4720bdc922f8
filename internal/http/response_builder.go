// Package http serves the transaction API.
//
// Responses are JSON. Mutations also carry an HX-Trigger header with a
// show-notification event so an htmx front end can surface the outcome as a
// toast without parsing the body.
package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"bilancio/internal/export"
	"bilancio/internal/services"
)

// ResponseBuilder assembles status, headers, HX-Trigger events and body.
type ResponseBuilder struct {
	triggers   map[string]any
	statusCode int
	body       []byte
	headers    map[string]string
}

func NewResponse() *ResponseBuilder {
	return &ResponseBuilder{
		triggers:   make(map[string]any),
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

func (b *ResponseBuilder) Status(code int) *ResponseBuilder {
	b.statusCode = code
	return b
}

// Trigger adds a named event to the HX-Trigger header.
func (b *ResponseBuilder) Trigger(name string, data any) *ResponseBuilder {
	b.triggers[name] = data
	return b
}

// TriggerChanged tells listeners the transaction list changed.
func (b *ResponseBuilder) TriggerChanged() *ResponseBuilder {
	return b.Trigger("transactions:changed", struct{}{})
}

// Notify adds a show-notification event for n.
func (b *ResponseBuilder) Notify(n services.Notice) *ResponseBuilder {
	return b.Trigger("show-notification", map[string]any{
		"type":     string(n.Type),
		"message":  n.Message,
		"duration": n.Duration.Milliseconds(),
	})
}

func (b *ResponseBuilder) Header(name, value string) *ResponseBuilder {
	b.headers[name] = value
	return b
}

// JSON sets v as the body. An encoding failure turns the response into a 500.
func (b *ResponseBuilder) JSON(v any) *ResponseBuilder {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("Failed to encode response", "error", err)
		b.statusCode = http.StatusInternalServerError
		data = []byte(`{"error":"internal error"}`)
	}
	b.headers["Content-Type"] = "application/json"
	b.body = append(data, '\n')
	return b
}

// Attachment sends a as a file download.
func (b *ResponseBuilder) Attachment(a export.Artifact) *ResponseBuilder {
	b.headers["Content-Type"] = a.ContentType
	b.headers["Content-Disposition"] = `attachment; filename="` + a.Filename + `"`
	b.headers["Content-Length"] = strconv.Itoa(len(a.Data))
	b.body = a.Data
	return b
}

func (b *ResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	if len(b.triggers) > 0 {
		if data, err := json.Marshal(b.triggers); err == nil {
			w.Header().Set("HX-Trigger", string(data))
		}
	}
	w.WriteHeader(b.statusCode)
	if len(b.body) > 0 {
		_, _ = w.Write(b.body)
	}
}

type errorBody struct {
	Error string `json:"error"`
}

// ErrorResponse is a JSON error body with a matching error notification.
func ErrorResponse(statusCode int, message string) *ResponseBuilder {
	return NewResponse().
		Status(statusCode).
		Notify(services.ErrorNotice(message)).
		JSON(errorBody{Error: message})
}
