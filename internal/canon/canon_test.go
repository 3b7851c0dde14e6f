package canon

import (
	"encoding/json"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringCollapsesWhitespaceAndFolds(t *testing.T) {
	a, err := String("Tranexamic Acid")
	require.NoError(t, err)

	b, err := String("tranexamic   acid")
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestStringDistinguishesDifferentLabels(t *testing.T) {
	a, err := String("TXA")
	require.NoError(t, err)

	b, err := String("tranexamic acid")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestStringRejectsNullByte(t *testing.T) {
	_, err := String("abc\x00def")
	require.Error(t, err)
}

func TestStringStripsControlsAndTrims(t *testing.T) {
	got, err := String("  \x01hello\x7F world\x02  ")
	require.NoError(t, err)
	assert.Equal(t, "hello world", got)
}

func TestCanonicalizationLaw(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)

	properties.Property("canon(canon(s)) == canon(s)", prop.ForAll(
		func(s string) bool {
			once, err := String(s)
			if err != nil {
				// inputs containing a null byte are rejected both times;
				// that is consistent, not a law violation.
				_, err2 := String(s)
				return err2 != nil
			}
			twice, err := String(once)
			if err != nil {
				return false
			}
			return once == twice
		},
		gen.AnyString(),
	))

	properties.TestingRun(t)
}

func TestJSONCanonicalLaw(t *testing.T) {
	cases := []map[string]interface{}{
		{"b": 1, "a": 2},
		{"z": map[string]interface{}{"y": 1, "x": 2}, "a": []interface{}{3, 1, 2}},
	}
	for _, c := range cases {
		once, err := JSON(c)
		require.NoError(t, err)

		var parsed map[string]interface{}
		require.NoError(t, json.Unmarshal(once, &parsed))

		twice, err := JSON(parsed)
		require.NoError(t, err)

		assert.Equal(t, string(once), string(twice))
	}
}
