package merkle

// legacySuite implements the Ed25519-era Merkle construction: leaf =
// BLAKE3(relpath || 0x00 || content), internal = BLAKE3(left || right), odd
// final node duplicated (paired with itself).
type legacySuite struct{}

// Legacy is the Merkle suite used alongside the legacy Ed25519 signature
// suite.
var Legacy Suite = legacySuite{}

func (legacySuite) ID() string { return "legacy" }

func (legacySuite) LeafHash(relPath string, content []byte) Digest {
	return blake3Sum([]byte(relPath), []byte{0x00}, content)
}

func (legacySuite) NodeHash(left, right Digest) Digest {
	return blake3Sum(left[:], right[:])
}

func (legacySuite) PromoteOdd() bool { return false }

func (legacySuite) EmptyRoot() Digest {
	return blake3Sum()
}
