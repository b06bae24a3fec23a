package browser

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCloseIdempotent(t *testing.T) {
	closed := 0
	s := &Session{
		tabCancels:  []context.CancelFunc{func() { closed++ }},
		allocCancel: func() { closed++ },
	}

	s.Close()
	s.Close()
	require.Equal(t, 2, closed)
}
