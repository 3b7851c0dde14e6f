package identity

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntityIDIsStableUnderCanonicalizedAliases(t *testing.T) {
	a, err := EntityID("medical", "Tourniquet")
	require.NoError(t, err)

	b, err := EntityID("medical", "tourniquet  ")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Regexp(t, `^e_[a-z2-7]+$`, a)
}

func TestEntityIDDistinguishesNamespaces(t *testing.T) {
	a, err := EntityID("medical", "shock")
	require.NoError(t, err)
	b, err := EntityID("veterinary", "shock")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestClaimIDDistinguishesObjectType(t *testing.T) {
	subject, err := EntityID("medical", "tourniquet")
	require.NoError(t, err)

	entityObj, err := EntityID("medical", "severe_bleeding")
	require.NoError(t, err)

	a, err := ClaimID(subject, "treats", ObjectTypeEntity, entityObj)
	require.NoError(t, err)
	b, err := ClaimID(subject, "treats", ObjectTypeLiteralString, entityObj)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestClaimIDRejectsNullByteInSubject(t *testing.T) {
	_, err := ClaimID("e_\x00bad", "treats", ObjectTypeLiteralString, "x")
	require.Error(t, err)
}

func TestSpanIDCommitsToEvidenceText(t *testing.T) {
	a, err := SpanID("deadbeef", 0, 10, "hello")
	require.NoError(t, err)
	b, err := SpanID("deadbeef", 0, 10, "world")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestProvenanceIDIsDeterministic(t *testing.T) {
	a, err := ProvenanceID("deadbeef", 0, 10)
	require.NoError(t, err)
	b, err := ProvenanceID("deadbeef", 0, 10)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestEntityIDDeterminismLaw(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)

	properties.Property("EntityID(ns, label) is a pure function of its canonicalized inputs", prop.ForAll(
		func(ns, label string) bool {
			a, errA := EntityID(ns, label)
			b, errB := EntityID(ns, label)
			if errA != nil || errB != nil {
				return (errA != nil) == (errB != nil)
			}
			return a == b
		},
		gen.AlphaString(),
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}
