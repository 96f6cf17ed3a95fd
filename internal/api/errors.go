package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// Error is a non-2xx API response
type Error struct {
	Status  int
	Message string
	Body    []byte
}

func (e *Error) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Status, e.Message)
}

func newError(status int, body []byte) *Error {
	return &Error{
		Status:  status,
		Message: ExtractMessage(status, body),
		Body:    body,
	}
}

// IsUnauthorized reports whether err is a 401 API response
func IsUnauthorized(err error) bool {
	return StatusOf(err) == http.StatusUnauthorized
}

// StatusOf returns the HTTP status carried by err, or 0
func StatusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// Message returns a user-facing message for err
func Message(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

// messageExtractor pulls a message out of a decoded error body
type messageExtractor func(body map[string]interface{}) (string, bool)

// extractors are tried in order; the first match wins
var extractors = []messageExtractor{
	stringField("detail"),
	stringField("message"),
	stringField("error"),
	firstOfList("non_field_errors"),
	firstFieldError,
}

// ExtractMessage finds the most useful message in an error response body,
// falling back to a generic one.
func ExtractMessage(status int, body []byte) string {
	var decoded map[string]interface{}
	if err := json.Unmarshal(body, &decoded); err == nil {
		for _, extract := range extractors {
			if msg, ok := extract(decoded); ok {
				return msg
			}
		}
	}
	return fmt.Sprintf("request failed with status %d", status)
}

func stringField(key string) messageExtractor {
	return func(body map[string]interface{}) (string, bool) {
		s, ok := body[key].(string)
		if !ok || strings.TrimSpace(s) == "" {
			return "", false
		}
		return s, true
	}
}

func firstOfList(key string) messageExtractor {
	return func(body map[string]interface{}) (string, bool) {
		return firstString(body[key])
	}
}

// firstFieldError handles validation bodies like {"email": ["already exists"]}.
// Fields are visited in sorted order so the result is stable.
func firstFieldError(body map[string]interface{}) (string, bool) {
	keys := make([]string, 0, len(body))
	for k := range body {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if msg, ok := firstString(body[k]); ok {
			return k + ": " + msg, true
		}
	}
	return "", false
}

func firstString(v interface{}) (string, bool) {
	switch val := v.(type) {
	case string:
		if strings.TrimSpace(val) != "" {
			return val, true
		}
	case []interface{}:
		for _, item := range val {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				return s, true
			}
		}
	}
	return "", false
}
