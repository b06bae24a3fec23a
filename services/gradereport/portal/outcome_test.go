package portal

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNavigationErrorUnwrap(t *testing.T) {
	cause := errors.New("element not found")
	err := &NavigationError{Step: "click grade link", LastURL: "https://example.invalid", Cause: cause}

	require.ErrorIs(t, err, cause)
	require.Contains(t, err.Error(), "click grade link")
	require.Contains(t, err.Error(), "https://example.invalid")
}

func TestAuthIncompleteIsDistinct(t *testing.T) {
	// callers discriminate on the error type to map login trouble to a
	// different status than automation failures
	var err error = fmt.Errorf("scrape: %w", &AuthIncompleteError{LastURL: "https://idp.example"})

	var authErr *AuthIncompleteError
	require.True(t, errors.As(err, &authErr))
	require.Equal(t, "https://idp.example", authErr.LastURL)

	var navErr *NavigationError
	require.False(t, errors.As(err, &navErr))
}

func TestXpathForID(t *testing.T) {
	require.Equal(t, `//*[@id='idBtn_Back']`, xpathForID("#idBtn_Back"))
}
