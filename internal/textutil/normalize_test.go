package textutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeTrimsAndCounts(t *testing.T) {
	cleaned, count := Normalize("  The cat sat on the mat.  ")
	require.Equal(t, "The cat sat on the mat.", cleaned)
	require.Equal(t, 6, count)
}

func TestNormalizeCollapsesWhitespace(t *testing.T) {
	cleaned, count := Normalize("one\t two\n\nthree")
	require.Equal(t, "one two three", cleaned)
	require.Equal(t, 3, count)
}

func TestNormalizeEmptyInput(t *testing.T) {
	for _, input := range []string{"", "   ", "\n\t "} {
		cleaned, count := Normalize(input)
		require.Empty(t, cleaned)
		require.Zero(t, count)
	}
}

func TestNormalizeStripsMarkup(t *testing.T) {
	cleaned, count := Normalize("<p>Hello <b>world</b></p><script>alert(1)</script>")
	require.Equal(t, "Hello world", cleaned)
	require.Equal(t, 2, count)
}

func TestNormalizeKeepsAmpersands(t *testing.T) {
	cleaned, _ := Normalize("AT&T builds networks")
	require.Equal(t, "AT&T builds networks", cleaned)
}

func TestCountWords(t *testing.T) {
	require.Zero(t, CountWords(""))
	require.Equal(t, 1, CountWords("word"))
	require.Equal(t, 4, CountWords("a b  c   d"))
}
