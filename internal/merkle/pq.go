package merkle

// postQuantumSuite implements the RFC-6962-style construction paired with
// the axm-blake3-mldsa44 signature suite: leaf = BLAKE3(0x00 || relpath ||
// 0x00 || content), internal = BLAKE3(0x01 || left || right), odd final
// node promoted unchanged rather than duplicated (this is what resists the
// odd-leaf duplication attack the legacy suite is vulnerable to).
type postQuantumSuite struct{}

// PostQuantum is the Merkle suite used alongside the axm-blake3-mldsa44
// signature suite.
var PostQuantum Suite = postQuantumSuite{}

func (postQuantumSuite) ID() string { return "pq" }

func (postQuantumSuite) LeafHash(relPath string, content []byte) Digest {
	return blake3Sum([]byte{0x00}, []byte(relPath), []byte{0x00}, content)
}

func (postQuantumSuite) NodeHash(left, right Digest) Digest {
	return blake3Sum([]byte{0x01}, left[:], right[:])
}

func (postQuantumSuite) PromoteOdd() bool { return true }

func (postQuantumSuite) EmptyRoot() Digest {
	return blake3Sum([]byte{0x01})
}
