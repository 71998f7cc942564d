package model

import "fmt"

// FailureKind distinguishes the terminal, user-visible resolution failures.
type FailureKind string

const (
	FailureNoArea          FailureKind = "no_area"
	FailureNoSearchResults FailureKind = "no_search_results"
)

// ResolutionError is returned when an interaction cannot be resolved at all.
// It is terminal for that interaction; the user must start a new one.
type ResolutionError struct {
	Kind    FailureKind
	Message string
}

func (e *ResolutionError) Error() string {
	return e.Message
}

// Is matches on Kind so callers can use errors.Is with the sentinels below.
func (e *ResolutionError) Is(target error) bool {
	t, ok := target.(*ResolutionError)
	return ok && t.Kind == e.Kind
}

var (
	ErrNoArea          = &ResolutionError{Kind: FailureNoArea, Message: "Could not determine a planning area for this location."}
	ErrNoSearchResults = &ResolutionError{Kind: FailureNoSearchResults, Message: "No results found."}
)

// NoSearchResults builds the query-specific "no results" failure.
func NoSearchResults(query string) *ResolutionError {
	return &ResolutionError{
		Kind:    FailureNoSearchResults,
		Message: fmt.Sprintf("No results found for %q. Try a planning area name like \"Tampines\" or \"Clementi\".", query),
	}
}

// NoArea builds the area-resolution failure for a specific area name.
func NoArea(area string) *ResolutionError {
	if area == "" {
		return ErrNoArea
	}
	return &ResolutionError{
		Kind:    FailureNoArea,
		Message: fmt.Sprintf("Could not determine a planning area for this location (no demographics for %s).", area),
	}
}
