package api

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNoSession is returned when a request needs a bearer credential and
// no session is stored
var ErrNoSession = errors.New("api: no active session")

// NetworkError means no response was received
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network error: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ServerError is a non-2xx response, or a 2xx response whose body could
// not be understood
type ServerError struct {
	Op      string
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("%s: %d %s", e.Op, e.Status, e.Message)
}

// Unauthorized reports a rejected or expired credential
func (e *ServerError) Unauthorized() bool {
	return e.Status == http.StatusUnauthorized
}

// Message returns the text worth showing to the user for err
func Message(err error) string {
	var serr *ServerError
	if errors.As(err, &serr) {
		if serr.Unauthorized() && serr.Op != "login" {
			return "Your session is no longer valid. Press L to sign in again"
		}
		if serr.Message != "" {
			return serr.Message
		}
	}
	var nerr *NetworkError
	if errors.As(err, &nerr) {
		return "Cannot reach the server"
	}
	if errors.Is(err, ErrNoSession) {
		return "Please sign in again"
	}
	return err.Error()
}
