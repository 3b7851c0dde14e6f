package merkle

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmptyRootDiffersBetweenSuites(t *testing.T) {
	assert.NotEqual(t, Legacy.EmptyRoot(), PostQuantum.EmptyRoot())
}

func TestRootHexIsOrderIndependentOfMapIteration(t *testing.T) {
	files := map[string][]byte{
		"b.txt": []byte("second"),
		"a.txt": []byte("first"),
		"c.txt": []byte("third"),
	}
	a := RootHex(Legacy, files)
	b := RootHex(Legacy, files)
	assert.Equal(t, a, b)
}

func TestRootHexChangesWithContent(t *testing.T) {
	a := RootHex(Legacy, map[string][]byte{"a.txt": []byte("one")})
	b := RootHex(Legacy, map[string][]byte{"a.txt": []byte("two")})
	assert.NotEqual(t, a, b)
}

func TestSuitesProduceIndependentRoots(t *testing.T) {
	files := map[string][]byte{"a.txt": []byte("content")}
	legacyRoot := RootHex(Legacy, files)
	pqRoot := RootHex(PostQuantum, files)
	assert.NotEqual(t, legacyRoot, pqRoot)
}

func TestBuildTreeHandlesOddLeafCountPerSuite(t *testing.T) {
	leaves := []Digest{{1}, {2}, {3}}

	legacyRoot := BuildTree(Legacy, leaves)
	pqRoot := BuildTree(PostQuantum, leaves)

	// Both must be deterministic for the same leaf set, and the two suites'
	// odd-leaf handling (duplicate vs. promote) must not coincide.
	assert.Equal(t, legacyRoot, BuildTree(Legacy, leaves))
	assert.Equal(t, pqRoot, BuildTree(PostQuantum, leaves))
	assert.NotEqual(t, legacyRoot, pqRoot)
}

func TestBuildTreeOnEmptyLeavesReturnsEmptyRoot(t *testing.T) {
	assert.Equal(t, Legacy.EmptyRoot(), BuildTree(Legacy, nil))
	assert.Equal(t, PostQuantum.EmptyRoot(), BuildTree(PostQuantum, nil))
}
