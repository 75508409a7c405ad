// Copyright (c) 2026 Asharvi. All rights reserved.
// Author: admin-platform@asharvi.dev

// Package respond provides HTTP response helpers used by the stub backend.
//
// # Architecture
//
// This package centralizes the presentation logic for HTTP responses.
// It ensures that every response (Success or Error) follows the same JSON
// envelope structure the admin client's error taxonomy expects: data under
// a "data" key, failures under a structured "error" object.
package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/asharvi/admin-core/internal/platform/apperr"
	"github.com/asharvi/admin-core/internal/platform/constants"
	"github.com/asharvi/admin-core/internal/platform/ctxutil"
	"github.com/asharvi/admin-core/pkg/pagination"
)

// SuccessEnvelope is the JSON envelope for successful single-resource responses.
type SuccessEnvelope struct {
	Data interface{} `json:"data"`
}

// PaginatedEnvelope is the JSON envelope for paginated list responses.
type PaginatedEnvelope struct {
	Data interface{}     `json:"data"`
	Meta pagination.Meta `json:"meta"`
}

// ErrorBody is the structured error object inside the error envelope.
type ErrorBody struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// ErrorEnvelope is the JSON envelope for error responses.
type ErrorEnvelope struct {
	Error ErrorBody `json:"error"`
}

// JSON writes a JSON response with the given status code.
func JSON(writer http.ResponseWriter, statusCode int, payload interface{}) {
	writer.Header().Set("Content-Type", "application/json; charset=utf-8")
	writer.WriteHeader(statusCode)
	_ = json.NewEncoder(writer).Encode(payload)
}

// OK writes a 200 OK response with data wrapped in the standard success envelope.
func OK(writer http.ResponseWriter, data interface{}) {
	JSON(writer, http.StatusOK, SuccessEnvelope{Data: data})
}

// Created writes a 201 Created response with data wrapped in the standard success envelope.
func Created(writer http.ResponseWriter, data interface{}) {
	JSON(writer, http.StatusCreated, SuccessEnvelope{Data: data})
}

// Paginated writes a 200 OK response with paginated data and a metadata block.
func Paginated(writer http.ResponseWriter, data interface{}, metadata pagination.Meta) {
	JSON(writer, http.StatusOK, PaginatedEnvelope{Data: data, Meta: metadata})
}

// NoContent writes a 204 No Content response.
func NoContent(writer http.ResponseWriter) {
	writer.WriteHeader(http.StatusNoContent)
}

// ErrorCode writes an error envelope with an explicit status and code.
func ErrorCode(writer http.ResponseWriter, status int, code, message string) {
	JSON(writer, status, ErrorEnvelope{Error: ErrorBody{Code: code, Message: message}})
}

// Error converts any Go error into a standardized JSON API error response.
func Error(writer http.ResponseWriter, request *http.Request, err error) {
	var validation *apperr.ValidationError
	if errors.As(err, &validation) {
		JSON(writer, http.StatusBadRequest, ErrorEnvelope{Error: ErrorBody{
			Code:    "VALIDATION_FAILED",
			Message: validation.Message,
			Details: validation.Details,
		}})
		return
	}

	if api := apperr.AsAPIError(err); api != nil {
		if api.RetryAfter != nil {
			seconds := int(api.RetryAfter.Seconds())
			writer.Header().Set(constants.HeaderRetryAfter, strconv.Itoa(seconds))
		}
		body := ErrorBody{Code: api.Code, Message: api.Message}
		if len(api.Details) > 0 {
			body.Details = json.RawMessage(api.Details)
		}
		JSON(writer, api.Status, ErrorEnvelope{Error: body})
		return
	}

	// Unexpected internal error: log full details but hide them from the
	// client for security.
	logger := ctxutil.GetLogger(request.Context())
	logger.ErrorContext(request.Context(), "unhandled_error_swallowed",
		slog.String("error", err.Error()),
		slog.String("request_id", ctxutil.GetRequestID(request.Context())),
	)
	ErrorCode(writer, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "An unexpected error occurred")
}
