package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error is an HTTP error response from the API.
type Error struct {
	Op         string
	StatusCode int
	// Message is the server-supplied detail, if any.
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %d %s: %s", e.Op, e.StatusCode, http.StatusText(e.StatusCode), e.Message)
	}
	return fmt.Sprintf("%s: %d %s", e.Op, e.StatusCode, http.StatusText(e.StatusCode))
}

// IsServer reports a 5xx response.
func (e *Error) IsServer() bool { return e.StatusCode >= 500 }

// IsClient reports a 4xx response.
func (e *Error) IsClient() bool { return e.StatusCode >= 400 && e.StatusCode < 500 }

// NetworkError means no response was received.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network error: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ErrInvalidResponse is returned when a 2xx body cannot be decoded into a valid record.
var ErrInvalidResponse = errors.New("invalid response from server")

// IsUnauthorized reports whether err is a 401 from the API.
func IsUnauthorized(err error) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.StatusCode == http.StatusUnauthorized
}

func IsNetwork(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

func IsServer(err error) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.IsServer()
}

// ServerMessage returns the server-supplied message carried by err, if any.
func ServerMessage(err error) (string, bool) {
	var ae *Error
	if errors.As(err, &ae) && strings.TrimSpace(ae.Message) != "" {
		return strings.TrimSpace(ae.Message), true
	}
	return "", false
}

// parseDetail extracts a human message from {"detail": "..."} or a validation list
// {"detail": [{"msg": "..."}, ...]}. Non-JSON bodies yield "".
func parseDetail(body []byte) string {
	var env struct {
		Detail  json.RawMessage `json:"detail"`
		Message string          `json:"message"`
		Error   string          `json:"error"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return ""
	}
	if len(env.Detail) > 0 {
		var s string
		if err := json.Unmarshal(env.Detail, &s); err == nil {
			return strings.TrimSpace(s)
		}
		var items []struct {
			Msg string `json:"msg"`
		}
		if err := json.Unmarshal(env.Detail, &items); err == nil {
			msgs := make([]string, 0, len(items))
			for _, it := range items {
				if m := strings.TrimSpace(it.Msg); m != "" {
					msgs = append(msgs, m)
				}
			}
			return strings.Join(msgs, "; ")
		}
	}
	if env.Message != "" {
		return strings.TrimSpace(env.Message)
	}
	return strings.TrimSpace(env.Error)
}
