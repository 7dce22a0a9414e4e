// Package apperr defines the structured failure taxonomy shared by the
// transport, the client core, and callers.
package apperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Kind categorizes a failure.
type Kind string

// Failure kinds.
const (
	// KindNetwork: the request never produced an HTTP response.
	KindNetwork Kind = "network"
	// KindValidation: a local precondition failed (400 from the server,
	// or a pre-flight check before any network call).
	KindValidation Kind = "validation"
	// KindConflict: the server rejected a uniqueness violation (409).
	KindConflict Kind = "conflict"
	// KindNotFound: the entity does not exist (404).
	KindNotFound Kind = "not_found"
	// KindServer: a 5xx fault, including simulated transient ones.
	KindServer Kind = "server"
	// KindHTTP: any other non-2xx response.
	KindHTTP Kind = "http"
)

// Error is a structured failure. Status and Body are preserved from the
// HTTP response when one was received; both are zero for network and
// local-validation failures.
type Error struct {
	Kind    Kind
	Status  int
	Body    json.RawMessage
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s (%d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// FromStatus maps a non-2xx response to an Error. The message is taken
// from a {"message": ...} or {"error": ...} body when present.
func FromStatus(status int, body []byte) *Error {
	kind := KindHTTP
	switch {
	case status == http.StatusBadRequest:
		kind = KindValidation
	case status == http.StatusNotFound:
		kind = KindNotFound
	case status == http.StatusConflict:
		kind = KindConflict
	case status >= 500:
		kind = KindServer
	}
	return &Error{
		Kind:    kind,
		Status:  status,
		Body:    body,
		Message: messageFromBody(body, http.StatusText(status)),
	}
}

// Network wraps a transport-level failure that produced no response.
func Network(err error) *Error {
	return &Error{Kind: KindNetwork, Message: err.Error()}
}

// Validation reports a local precondition failure before any network call.
func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

// Conflict reports a locally detected uniqueness violation.
func Conflict(msg string) *Error {
	return &Error{Kind: KindConflict, Message: msg}
}

func messageFromBody(body []byte, fallback string) string {
	var parsed struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil {
		if parsed.Message != "" {
			return parsed.Message
		}
		if parsed.Error != "" {
			return parsed.Error
		}
	}
	if fallback == "" {
		fallback = "request failed"
	}
	return fallback
}

func is(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// IsNetwork reports whether err is a transport-level failure.
func IsNetwork(err error) bool { return is(err, KindNetwork) }

// IsValidation reports whether err is a validation failure.
func IsValidation(err error) bool { return is(err, KindValidation) }

// IsConflict reports whether err is a uniqueness conflict.
func IsConflict(err error) bool { return is(err, KindConflict) }

// IsNotFound reports whether err is a missing-entity failure.
func IsNotFound(err error) bool { return is(err, KindNotFound) }

// IsServer reports whether err is a 5xx fault.
func IsServer(err error) bool { return is(err, KindServer) }
