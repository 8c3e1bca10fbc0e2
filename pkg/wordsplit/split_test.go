package wordsplit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitBasicWhitespace(t *testing.T) {
	words, err := Split("TestValue     TestValue2    TestValue3", WhitespaceSeparators, Relax)
	require.NoError(t, err)
	assert.Equal(t, []string{"TestValue", "TestValue2", "TestValue3"}, words)
}

func TestSplitQuoteConcatenation(t *testing.T) {
	words, err := Split(`a"b"c`, WhitespaceSeparators, Relax|Unquote|CUnescape)
	require.NoError(t, err)
	assert.Equal(t, []string{"abc"}, words)
}

func TestSplitSingleQuoteLiteral(t *testing.T) {
	words, err := Split(`'a\nb'`, WhitespaceSeparators, Relax|Unquote|CUnescape)
	require.NoError(t, err)
	assert.Equal(t, []string{`a\nb`}, words)
}

func TestSplitDoubleQuoteEscapes(t *testing.T) {
	words, err := Split(`"a\nb\tc"`, WhitespaceSeparators, Relax|Unquote|CUnescape)
	require.NoError(t, err)
	assert.Equal(t, []string{"a\nb\tc"}, words)
}

func TestSplitHexEscape(t *testing.T) {
	words, err := Split(`"\x41\x42"`, WhitespaceSeparators, Relax|Unquote|CUnescape)
	require.NoError(t, err)
	assert.Equal(t, []string{"AB"}, words)
}

func TestSplitUnicodeEscapes(t *testing.T) {
	words, err := Split(`"\u2A00"`, WhitespaceSeparators, Relax|Unquote|CUnescape)
	require.NoError(t, err)
	assert.Equal(t, []string{"⨀"}, words)

	words, err = Split(`"\U0001F51F"`, WhitespaceSeparators, Relax|Unquote|CUnescape)
	require.NoError(t, err)
	assert.Equal(t, []string{"🔟"}, words)
}

func TestSplitOctalEscape(t *testing.T) {
	words, err := Split(`"\376"`, WhitespaceSeparators, Relax|Unquote|CUnescape)
	require.NoError(t, err)
	assert.Equal(t, []string{"þ"}, words)
}

func TestSplitTrailingBackslashEscapesSpace(t *testing.T) {
	words, err := Split(`a\ b`, WhitespaceSeparators, Relax|Unquote)
	require.NoError(t, err)
	assert.Equal(t, []string{"a b"}, words)
}

func TestSplitUnterminatedQuoteFails(t *testing.T) {
	_, err := Split(`"abc`, WhitespaceSeparators, Unquote|CUnescape)
	require.Error(t, err)
	var splitErr *SplitError
	assert.ErrorAs(t, err, &splitErr)
}

func TestSplitUnterminatedQuoteRelaxed(t *testing.T) {
	words, err := Split(`"abc`, WhitespaceSeparators, Relax|Unquote|CUnescape)
	require.NoError(t, err)
	assert.Equal(t, []string{"abc"}, words)
}

func TestSplitEnvironmentStyleKeyVal(t *testing.T) {
	words, err := Split(`FOO=bar BAZ="quoted value"`, WhitespaceSeparators, Relax|Unquote|CUnescape)
	require.NoError(t, err)
	assert.Equal(t, []string{"FOO=bar", "BAZ=quoted value"}, words)
}

// Splitter idempotence: splitting a value made of already-safe tokens (no
// embedded whitespace, quotes or backslashes) round-trips exactly, matching
// the universal property in §8.2 restricted to the tokens that need no
// requoting to reproduce.
func TestSplitIdempotenceForSafeTokens(t *testing.T) {
	tokens := []string{"alpha", "beta-gamma", "/absolute/path", "key=value"}
	joined := ""
	for i, tok := range tokens {
		if i > 0 {
			joined += " "
		}
		joined += tok
	}
	words, err := Split(joined, WhitespaceSeparators, Relax|Unquote|CUnescape)
	require.NoError(t, err)
	assert.Equal(t, tokens, words)
}

func TestSplitEmptyValueYieldsNoWords(t *testing.T) {
	words, err := Split("   ", WhitespaceSeparators, Relax)
	require.NoError(t, err)
	assert.Empty(t, words)
}
