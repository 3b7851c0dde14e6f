// Package manifest defines the shard manifest document and its canonical
// byte encoding. Grounded on the teacher's pkg/pack/types.go (PackManifest/
// Pack/Signature/Provenance shape) with fields renamed to the spec's own
// vocabulary: shard_id, integrity.merkle_root, sources[], suite,
// extensions[].
package manifest

import (
	"github.com/axm-labs/shard/internal/canon"
)

// SpecVersion is the fixed spec_version string this implementation emits
// and accepts.
const SpecVersion = "shard/1"

// Manifest is the JSON document sealed at the root of every shard.
type Manifest struct {
	SpecVersion string        `json:"spec_version"`
	ShardID     string        `json:"shard_id"`
	Metadata    Metadata      `json:"metadata"`
	Publisher   Publisher     `json:"publisher"`
	License     License       `json:"license"`
	Sources     []SourceEntry `json:"sources"`
	Integrity   Integrity     `json:"integrity"`
	Statistics  Statistics    `json:"statistics"`
	Suite       string        `json:"suite,omitempty"`
	Extensions  []Extension   `json:"extensions,omitempty"`
}

type Metadata struct {
	Title     string `json:"title"`
	Namespace string `json:"namespace"`
	CreatedAt string `json:"created_at"`
}

type Publisher struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type License struct {
	SPDX string `json:"spdx"`
}

type SourceEntry struct {
	Path       string `json:"path"`
	SHA256Hex  string `json:"sha256"`
}

type Integrity struct {
	Algorithm  string `json:"algorithm"`
	MerkleRoot string `json:"merkle_root"`
}

type Statistics struct {
	Entities int `json:"entities"`
	Claims   int `json:"claims"`
}

type Extension struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// CanonicalBytes returns the exact byte sequence the signature covers: the
// manifest serialized as canonical JSON (sorted keys, minimal separators,
// non-ASCII preserved).
func (m Manifest) CanonicalBytes() ([]byte, error) {
	return canon.JSON(m)
}

// ShardID computes "shard_blake3_" || merkleRootHex, the shard's
// content-addressed identity.
func ShardID(merkleRootHex string) string {
	return "shard_blake3_" + merkleRootHex
}
