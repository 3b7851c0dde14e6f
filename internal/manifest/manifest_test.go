package manifest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validManifest() Manifest {
	return Manifest{
		SpecVersion: SpecVersion,
		ShardID:     "shard_blake3_deadbeef",
		Metadata:    Metadata{Title: "t", Namespace: "medical", CreatedAt: "2026-01-01T00:00:00Z"},
		Publisher:   Publisher{ID: "pub1", Name: "Publisher One"},
		License:     License{SPDX: "MIT"},
		Sources:     []SourceEntry{{Path: "a.txt", SHA256Hex: "aa"}},
		Integrity:   Integrity{Algorithm: "blake3", MerkleRoot: "deadbeef"},
		Statistics:  Statistics{Entities: 1, Claims: 1},
	}
}

func TestCanonicalBytesRoundTripsThroughParse(t *testing.T) {
	m := validManifest()
	b, err := m.CanonicalBytes()
	require.NoError(t, err)

	parsed, findings := Parse(b)
	require.Empty(t, findings)
	assert.Equal(t, m.ShardID, parsed.ShardID)
}

func TestParseRejectsMissingRequiredFields(t *testing.T) {
	m := validManifest()
	m.Publisher.ID = ""
	b, err := m.CanonicalBytes()
	require.NoError(t, err)

	_, findings := Parse(b)
	require.NotEmpty(t, findings)
}

func TestParseRejectsNonBlake3Algorithm(t *testing.T) {
	m := validManifest()
	m.Integrity.Algorithm = "sha256"
	b, err := m.CanonicalBytes()
	require.NoError(t, err)

	_, findings := Parse(b)
	require.NotEmpty(t, findings)
}

func TestShardIDIsDerivedFromMerkleRoot(t *testing.T) {
	assert.Equal(t, "shard_blake3_deadbeef", ShardID("deadbeef"))
}
