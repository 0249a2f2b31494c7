package apierror

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindBadRequest   Kind = "BAD_REQUEST"
	KindUnauthorized Kind = "UNAUTHORIZED"
	KindNotFound     Kind = "NOT_FOUND"
	KindInternal     Kind = "INTERNAL"
)

// APIError — ошибка с фиксированным видом и HTTP-статусом.
// Транспортный слой матчится по Kind, детали причины наружу не уходят.
type APIError struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *APIError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *APIError) Unwrap() error { return e.Cause }

func (e *APIError) Status() int {
	switch e.Kind {
	case KindBadRequest:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Constructors
func New(kind Kind, message string) error {
	return &APIError{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, cause error) error {
	return &APIError{Kind: kind, Message: message, Cause: cause}
}

func BadRequest(message string) error {
	return New(KindBadRequest, message)
}

func Unauthorized(message string) error {
	if message == "" {
		message = "Unauthorized"
	}
	return New(KindUnauthorized, message)
}

func NotFound(message string) error {
	if message == "" {
		message = "Not Found"
	}
	return New(KindNotFound, message)
}

func Internal(message string, cause error) error {
	return Wrap(KindInternal, message, cause)
}

// KindOf возвращает вид ошибки, KindInternal для нераспознанных
func KindOf(err error) Kind {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindInternal
}

// StatusOf возвращает HTTP-статус ошибки, 500 для нераспознанных
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status()
	}
	return http.StatusInternalServerError
}

// MessageOf возвращает сообщение для клиента; для нераспознанных ошибок
// наружу уходит только общий текст
func MessageOf(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Kind != KindInternal {
		return apiErr.Message
	}
	return "Something went wrong"
}
