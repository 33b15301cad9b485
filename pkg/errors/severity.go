// Package errors provides severity-aware error types.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Severity indicates error impact level.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
	SeverityFatal
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Kind classifies an error by the stage that produced it.
type Kind int

const (
	KindLoad Kind = iota + 1
	KindConfig
	KindValidation
)

// Kind sentinels, matched with errors.Is.
var (
	ErrLoad       = stderrors.New("load error")
	ErrConfig     = stderrors.New("config error")
	ErrValidation = stderrors.New("validation error")
)

func (k Kind) sentinel() error {
	switch k {
	case KindLoad:
		return ErrLoad
	case KindConfig:
		return ErrConfig
	case KindValidation:
		return ErrValidation
	default:
		return nil
	}
}

// Error is a structured error with context.
type Error struct {
	Kind     Kind     `json:"-"`
	Code     string   `json:"code"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
	Source   string   `json:"source,omitempty"`
	Err      error    `json:"-"`
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("[%s] %s: %s", e.Severity, e.Code, e.Message)
	if e.Source != "" {
		msg += fmt.Sprintf(" (source: %s)", e.Source)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the kind sentinel and the underlying cause.
func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if s := e.Kind.sentinel(); s != nil {
		errs = append(errs, s)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// Error codes
const (
	ErrCodeCatalogLoad   = "CATALOG_LOAD_FAILED"
	ErrCodeKnowledgeLoad = "KNOWLEDGE_LOAD_FAILED"
	ErrCodeRulesInvalid  = "PRICING_RULES_INVALID"
	ErrCodeConfigInvalid = "CONFIG_INVALID"
	ErrCodeInvalidInput  = "INVALID_INPUT"
)

// NewLoadError reports a data source that could not be read or parsed.
func NewLoadError(code, source, message string, cause error) *Error {
	return &Error{
		Kind:     KindLoad,
		Code:     code,
		Message:  message,
		Severity: SeverityFatal,
		Source:   source,
		Err:      cause,
	}
}

// NewConfigError reports missing or malformed configuration.
func NewConfigError(code, source, message string, cause error) *Error {
	return &Error{
		Kind:     KindConfig,
		Code:     code,
		Message:  message,
		Severity: SeverityFatal,
		Source:   source,
		Err:      cause,
	}
}

// NewValidationError reports caller input that violates a contract.
func NewValidationError(field, message string) *Error {
	return &Error{
		Kind:     KindValidation,
		Code:     ErrCodeInvalidInput,
		Message:  fmt.Sprintf("%s: %s", field, message),
		Severity: SeverityError,
		Source:   field,
	}
}

// IsValidation reports whether err carries a validation failure.
func IsValidation(err error) bool {
	return stderrors.Is(err, ErrValidation)
}
