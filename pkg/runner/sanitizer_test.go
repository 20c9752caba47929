package runner

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeInput_RejectsOversizedUtterances(t *testing.T) {
	_, err := SanitizeInput(strings.Repeat("b", DefaultMaxInputSize))
	assert.NoError(t, err)

	_, err = SanitizeInput(strings.Repeat("b", DefaultMaxInputSize+1))
	assert.ErrorIs(t, err, ErrInputTooLarge)
}

func TestSanitizeInput_StripsTerminalControls(t *testing.T) {
	cases := map[string]string{
		"pancakes with syrup":        "pancakes with syrup",
		"two eggs\nand milk\t(cold)": "two eggs\nand milk\t(cold)",
		"\x1b[1mnext\x1b[0m":         "[1mnext[0m",
		"crème brûlée 🍮":             "crème brûlée 🍮",
		"yes\x00\x07":                "yes",
	}
	for in, want := range cases {
		got, err := SanitizeInput(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestSanitizeInput_InvalidUTF8(t *testing.T) {
	_, err := SanitizeInput("curry \xff\xfe")
	assert.ErrorIs(t, err, ErrInvalidUTF8)
}

func TestSanitizeInput_LimitFromEnvironment(t *testing.T) {
	t.Setenv(EnvMaxInputSize, "8")

	_, err := SanitizeInput("lasagna!!")
	assert.ErrorIs(t, err, ErrInputTooLarge)

	got, err := SanitizeInput("lasagna")
	require.NoError(t, err)
	assert.Equal(t, "lasagna", got)

	t.Setenv(EnvMaxInputSize, "not-a-number")
	_, err = SanitizeInput("lasagna!!")
	assert.NoError(t, err, "an unparsable limit falls back to the default")
}

func TestSanitizeInputLimit_ExplicitLimitWins(t *testing.T) {
	t.Setenv(EnvMaxInputSize, "100")

	_, err := SanitizeInputLimit("risotto", 5)
	assert.ErrorIs(t, err, ErrInputTooLarge)

	got, err := SanitizeInputLimit("next\x1b", 0)
	require.NoError(t, err)
	assert.Equal(t, "next", got)
}
