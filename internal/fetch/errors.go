package fetch

import (
	"errors"
	"fmt"
)

// Kind classifies a terminal fetch failure. It is set where the failure is detected and
// mapped to display text only at the fetcher boundary.
type Kind string

const (
	// KindNetwork is a transport failure before any response was obtained.
	KindNetwork Kind = "network-error"
	// KindMockNotReady means the retry budget ran out while the API kept answering
	// HTML or an unrecognized search 404.
	KindMockNotReady Kind = "mock-config-error"
	// KindResponseFormat is a malformed JSON body on an ok response.
	KindResponseFormat Kind = "response-format-error"
	// KindNotFound is a 404 on the detail endpoint.
	KindNotFound Kind = "not-found"
	// KindServer is any other non-ok response.
	KindServer Kind = "server-error"
	// KindInvalidInput is raised by fetchers before any request is issued.
	KindInvalidInput Kind = "invalid-input"
)

// Display texts shown to the user.
const (
	MessageNetwork        = "Error de conexión. Verifica tu conexión a internet."
	MessageMockNotReady   = "Error de configuración del servidor mock. Por favor recarga la página."
	MessageResponseFormat = "Error de formato en la respuesta del servidor."
	MessageNotFound       = "Producto no encontrado"
	MessageIDRequired     = "ID de producto requerido"
)

// Error is a classified terminal fetch failure.
type Error struct {
	Kind Kind
	// Status is the HTTP status when a response was received.
	Status int
	// Message is the server supplied message for KindServer.
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var s string
	if e.Status > 0 {
		s = fmt.Sprintf("fetch %s (status %d)", e.Kind, e.Status)
	} else {
		s = fmt.Sprintf("fetch %s", e.Kind)
	}
	if e.Message != "" {
		s += ": " + e.Message
	}
	if e.Cause != nil {
		s += ": " + e.Cause.Error()
	}
	return s
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Display returns the user-facing message for the error.
func (e *Error) Display() string {
	switch e.Kind {
	case KindNetwork:
		return MessageNetwork
	case KindMockNotReady:
		return MessageMockNotReady
	case KindResponseFormat:
		return MessageResponseFormat
	case KindNotFound:
		return MessageNotFound
	case KindInvalidInput:
		return MessageIDRequired
	default:
		if e.Message != "" {
			return e.Message
		}
		return fmt.Sprintf("Error del servidor: %d", e.Status)
	}
}

// Message maps any error returned by Unit.Get to display text.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Display()
	}
	return err.Error()
}

// KindOf returns the Kind of err, or "" when err is not a *Error.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return ""
}
