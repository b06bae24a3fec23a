package htmlutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func TestGetText(t *testing.T) {
	doc, err := html.Parse(strings.NewReader("<p>hello <b>nested</b> world</p>"))
	require.NoError(t, err)
	require.Equal(t, "hello nested world", GetText(doc))
}

func TestCellText(t *testing.T) {
	require.Equal(t, "数学A", CellText(" 数学A "))
	require.Equal(t, "", CellText("  "))
	require.Equal(t, "a b", CellText(" a b "))
}
