package portal

import "fmt"

// Result is the terminal success outcome of the navigation sequence:
// the grade page markup plus the URL it was captured from.
type Result struct {
	Markup  string
	LastURL string
}

// AuthIncompleteError reports that the login flow never returned from
// the identity provider within the wait bound. This usually means an
// extra verification step or bad credentials, and is distinct from an
// automation failure.
type AuthIncompleteError struct {
	LastURL string
}

func (e *AuthIncompleteError) Error() string {
	return fmt.Sprintf("login incomplete, still on identity provider (url: %s)", e.LastURL)
}

// NavigationError reports an unexpected automation failure at a named
// step. It carries the last known URL for diagnostics. Not retried
// within one invocation; retrying the whole flow is the caller's call.
type NavigationError struct {
	Step    string
	LastURL string
	Cause   error
}

func (e *NavigationError) Error() string {
	return fmt.Sprintf("navigation failed at %q (url: %s): %v", e.Step, e.LastURL, e.Cause)
}

func (e *NavigationError) Unwrap() error {
	return e.Cause
}
