package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"google.golang.org/genai"
)

// ErrorKind groups collaborator failures into what the user is told.
type ErrorKind string

const (
	// KindConfiguration is a missing or invalid credential found at start-up.
	KindConfiguration ErrorKind = "configuration"
	// KindAPIKey is a credential rejected by the provider mid-session.
	KindAPIKey  ErrorKind = "api_key"
	KindQuota   ErrorKind = "quota_exceeded"
	KindNetwork ErrorKind = "network"
	KindGeneric ErrorKind = "generic"
)

var (
	ErrEmptyResponse = errors.New("empty response from model")
)

// Error is a classified collaborator failure.
type Error struct {
	Kind         ErrorKind
	Collaborator string
	Message      string
	Err          error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Collaborator == "" {
		return fmt.Sprintf("%s: %s", e.Kind, msg)
	}
	return fmt.Sprintf("%s %s: %s", e.Collaborator, e.Kind, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewConfigurationError reports a setting the assistant cannot start without.
func NewConfigurationError(collaborator, message string) *Error {
	return &Error{Kind: KindConfiguration, Collaborator: collaborator, Message: message}
}

// Wrap classifies err as a failure of collaborator. Already classified
// errors are returned unchanged.
func Wrap(collaborator string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return &Error{Kind: classifyCause(err), Collaborator: collaborator, Err: err}
}

// Classify returns the kind of err, inspecting the cause when err was not
// produced by Wrap.
func Classify(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return classifyCause(err)
}

func classifyCause(err error) ErrorKind {
	if kind, ok := classifyAPIError(err); ok {
		return kind
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return KindNetwork
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return KindNetwork
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "api key"), strings.Contains(msg, "api_key"),
		strings.Contains(msg, "authentication"), strings.Contains(msg, "unauthorized"):
		return KindAPIKey
	case strings.Contains(msg, "quota"), strings.Contains(msg, "rate limit"),
		strings.Contains(msg, "resource_exhausted"), strings.Contains(msg, "429"):
		return KindQuota
	case strings.Contains(msg, "fetch"), strings.Contains(msg, "network"),
		strings.Contains(msg, "connection refused"), strings.Contains(msg, "no such host"):
		return KindNetwork
	}
	return KindGeneric
}

func classifyAPIError(err error) (ErrorKind, bool) {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		var ptr *genai.APIError
		if !errors.As(err, &ptr) || ptr == nil {
			return "", false
		}
		apiErr = *ptr
	}

	switch {
	case apiErr.Code == 401, apiErr.Code == 403,
		apiErr.Status == "UNAUTHENTICATED", apiErr.Status == "PERMISSION_DENIED",
		strings.Contains(apiErr.Message, "API key"):
		return KindAPIKey, true
	case apiErr.Code == 429, apiErr.Status == "RESOURCE_EXHAUSTED",
		strings.Contains(strings.ToLower(apiErr.Message), "quota"):
		return KindQuota, true
	}
	return KindGeneric, true
}
