package verifier

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"github.com/axm-labs/shard/internal/errs"
	"github.com/axm-labs/shard/internal/manifest"
	"github.com/axm-labs/shard/internal/merkle"
	"github.com/axm-labs/shard/internal/sigsuite"
)

// checkMerkle recomputes the shard's Merkle root over every file except
// manifest.json and sig/, and compares it against the manifest's claimed
// root (§4.8 MERKLE_OK). A mismatch is reported at each content file whose
// bytes no longer hash to the sha256 recorded in sources[], or at the
// manifest's root field when no content file differs.
func checkMerkle(ctx context.Context, shardDir string, merkleSuite merkle.Suite, m *manifest.Manifest, limits merkle.Limits) (errs.Findings, bool) {
	files, err := merkle.SelectFiles(ctx, shardDir, limits)
	if err != nil {
		if f, ok := err.(*errs.Finding); ok {
			return errs.Findings{f}, false
		}
		return errs.Findings{errs.New(errs.CodeLayoutDirty, shardDir, err.Error())}, false
	}

	root := merkle.RootHex(merkleSuite, files)
	if !sigsuite.ConstantTimeEqual([]byte(root), []byte(m.Integrity.MerkleRoot)) {
		var findings errs.Findings
		for _, s := range m.Sources {
			rel := "content/" + s.Path
			sum := sha256.Sum256(files[rel])
			if hex.EncodeToString(sum[:]) != s.SHA256Hex {
				findings = append(findings, errs.New(errs.CodeMerkleMismatch, rel, "sealed content file changed since the Merkle root was computed"))
			}
		}
		if len(findings) > 0 {
			return findings, false
		}
		return errs.Findings{errs.New(errs.CodeMerkleMismatch, "manifest.json#integrity.merkle_root",
			"recomputed Merkle root does not match the manifest's claimed root")}, false
	}
	return nil, true
}
