package baas

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrInvalidCredentials = errors.New("invalid login credentials")
	ErrNoRows             = errors.New("no rows returned")
)

// Postgres and PostgREST error codes the callers care about.
const (
	CodeUniqueViolation = "23505"
	CodeNoRows          = "PGRST116"
)

// APIError is an error response from any of the BaaS endpoints.
type APIError struct {
	Status  int
	Code    string
	Message string
	Details string
	Hint    string
}

func (e *APIError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "baas: status %d", e.Status)
	if e.Code != "" {
		fmt.Fprintf(&b, " code %s", e.Code)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Details != "" {
		b.WriteString(" (")
		b.WriteString(e.Details)
		b.WriteString(")")
	}
	return b.String()
}

// Is lets errors.Is match the package sentinels.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrNoRows:
		return e.Code == CodeNoRows
	case ErrInvalidCredentials:
		return e.Status == http.StatusBadRequest &&
			(e.Code == "invalid_grant" || e.Code == "invalid_credentials")
	}
	return false
}

// rawError covers the PostgREST, Storage and GoTrue error bodies.
type rawError struct {
	Code             json.RawMessage `json:"code"`
	ErrorCode        string          `json:"error_code"`
	Message          string          `json:"message"`
	Msg              string          `json:"msg"`
	Error            string          `json:"error"`
	ErrorDescription string          `json:"error_description"`
	Details          *string         `json:"details"`
	Hint             *string         `json:"hint"`
}

func parseAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{Status: status}

	var raw rawError
	if err := json.Unmarshal(body, &raw); err != nil {
		apiErr.Message = strings.TrimSpace(string(body))
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(status)
		}
		return apiErr
	}

	apiErr.Code = decodeCode(raw.Code)
	if raw.ErrorCode != "" {
		apiErr.Code = raw.ErrorCode
	}
	if apiErr.Code == "" || isNumeric(apiErr.Code) && raw.Error != "" {
		apiErr.Code = raw.Error
	}

	for _, m := range []string{raw.Message, raw.Msg, raw.ErrorDescription, raw.Error} {
		if m != "" {
			apiErr.Message = m
			break
		}
	}
	if raw.Details != nil {
		apiErr.Details = *raw.Details
	}
	if raw.Hint != nil {
		apiErr.Hint = *raw.Hint
	}
	return apiErr
}

func decodeCode(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

func isNumeric(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// IsUniqueViolation reports whether err is a unique constraint violation
// mentioning column.
func IsUniqueViolation(err error, column string) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Code != CodeUniqueViolation {
		return false
	}
	column = strings.ToLower(column)
	return strings.Contains(strings.ToLower(apiErr.Message), column) ||
		strings.Contains(strings.ToLower(apiErr.Details), column)
}

// IsNotFound reports whether err says the requested row or object does not exist.
func IsNotFound(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Status == http.StatusNotFound ||
		apiErr.Code == CodeNoRows ||
		strings.Contains(strings.ToLower(apiErr.Message), "not found")
}
