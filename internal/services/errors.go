package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrAuth              = errors.New("authentication failed")
	ErrUpstreamFetch     = errors.New("upstream fetch failed")
	ErrGeneration        = errors.New("generation failed")
	ErrMalformedResponse = errors.New("malformed model response")
	ErrWriteBack         = errors.New("routine write-back failed")
	ErrValidation        = errors.New("validation error")
	ErrConfiguration     = errors.New("configuration error")
)

// Wrap builds an error message that includes component context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrUpstreamFetch
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsTerminal reports whether a processing failure still consumes the workout id.
// A failed write-back may have partially mutated the routine, so it is never
// retried; every other failure leaves the id eligible for the next pass.
func IsTerminal(err error) bool {
	return errors.Is(err, ErrWriteBack)
}

// EventType maps an error to the event_type used in structured logs.
func EventType(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrAuth):
		return "auth_failed"
	case errors.Is(err, ErrUpstreamFetch):
		return "upstream_fetch_failed"
	case errors.Is(err, ErrGeneration):
		return "generation_failed"
	case errors.Is(err, ErrMalformedResponse):
		return "malformed_response"
	case errors.Is(err, ErrWriteBack):
		return "write_back_failed"
	case errors.Is(err, ErrValidation):
		return "validation_failed"
	case errors.Is(err, ErrConfiguration):
		return "configuration_invalid"
	default:
		return "processing_failed"
	}
}

// ErrorHint suggests the operator's next step for a classified error.
func ErrorHint(err error) string {
	switch {
	case errors.Is(err, ErrAuth):
		return "check hevy.api_key"
	case errors.Is(err, ErrUpstreamFetch):
		return "tracker unreachable or returned an error; the next sync will retry"
	case errors.Is(err, ErrGeneration):
		return "check llm provider credentials and quota; the next sync will retry"
	case errors.Is(err, ErrMalformedResponse):
		return "model output drifted from the expected schema; inspect the prompt or model"
	case errors.Is(err, ErrWriteBack):
		return "routine may be partially updated; review it in the tracker"
	case errors.Is(err, ErrConfiguration):
		return "run 'overloader config validate'"
	default:
		return "check logs for details"
	}
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
