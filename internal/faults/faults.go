// Package faults defines the small set of failure kinds the analysis pipeline
// can end in, and how each maps onto an HTTP status class.
package faults

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	Unknown Kind = iota
	InvalidInput
	ScopeAccessError
	NoResults
	BackendUnavailable
	ExtractionParseFailure
)

func (k Kind) String() string {
	switch k {
	case InvalidInput:
		return "invalid_input"
	case ScopeAccessError:
		return "scope_access_error"
	case NoResults:
		return "no_results"
	case BackendUnavailable:
		return "backend_unavailable"
	case ExtractionParseFailure:
		return "extraction_parse_failure"
	default:
		return "unknown"
	}
}

// Fault is a classified pipeline error. Message is safe to show to callers;
// Raw holds backend output kept only for diagnostics.
type Fault struct {
	Kind    Kind
	Message string
	Raw     string
	Err     error
}

func (f *Fault) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("%s: %s: %v", f.Kind, f.Message, f.Err)
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

func (f *Fault) Unwrap() error { return f.Err }

func NewInvalidInput(format string, args ...any) *Fault {
	return &Fault{Kind: InvalidInput, Message: fmt.Sprintf(format, args...)}
}

func NewScopeAccess(scope string, err error) *Fault {
	return &Fault{Kind: ScopeAccessError, Message: "cannot search " + scope, Err: err}
}

func NewNoResults(productName string) *Fault {
	return &Fault{
		Kind:    NoResults,
		Message: fmt.Sprintf("No Reddit discussions found for '%s'. Try a more specific name.", productName),
	}
}

func NewBackendUnavailable(err error) *Fault {
	return &Fault{Kind: BackendUnavailable, Message: "AI analysis failed", Err: err}
}

func NewExtractionParseFailure(raw, reason string) *Fault {
	return &Fault{Kind: ExtractionParseFailure, Message: "Failed to parse AI response", Raw: raw, Err: errors.New(reason)}
}

// KindOf returns the kind of the first Fault in err's chain.
func KindOf(err error) Kind {
	var f *Fault
	if errors.As(err, &f) {
		return f.Kind
	}
	return Unknown
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// HTTPStatus maps caller mistakes to 400 and everything else to 500.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case InvalidInput, NoResults:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage is the text returned to API callers for err.
func PublicMessage(err error) string {
	var f *Fault
	if errors.As(err, &f) {
		return f.Message
	}
	return "Internal server error"
}
