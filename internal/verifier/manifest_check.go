package verifier

import (
	"os"
	"path/filepath"

	"github.com/axm-labs/shard/internal/errs"
	"github.com/axm-labs/shard/internal/manifest"
	"github.com/axm-labs/shard/internal/merkle"
	"github.com/axm-labs/shard/internal/sigsuite"
)

// checkManifest reads and parses manifest.json (§4.8 MANIFEST_OK).
func checkManifest(shardDir string) ([]byte, *manifest.Manifest, errs.Findings) {
	raw, err := os.ReadFile(joinPath(shardDir, "manifest.json"))
	if err != nil {
		return nil, nil, errs.Findings{errs.New(errs.CodeManifestSyntax, "manifest.json", err.Error())}
	}
	m, findings := manifest.Parse(raw)
	return raw, m, findings
}

// detectSuites picks the signature suite named or implied by the manifest,
// and the paired Merkle suite (the two are never mixed: compile always
// selects them together, per resolveSuite). Per §4.3's detection rule: if
// the manifest names a suite, use it (checked against pubKeyLen for a
// conflict); otherwise infer purely from the embedded public key's length.
// pubKeyLen is 0 when the key file is missing or unreadable; a manifest that
// names no suite then falls back to legacy, and checkSignature reports the
// missing key.
func detectSuites(m *manifest.Manifest, pubKeyLen int) (sigsuite.Suite, merkle.Suite, errs.Findings) {
	var sigSuite sigsuite.Suite
	var err error
	switch {
	case m.Suite != "":
		sigSuite, err = sigsuite.Detect(m.Suite, pubKeyLen)
	case pubKeyLen > 0:
		sigSuite, err = sigsuite.DetectByKeySize(pubKeyLen)
	default:
		sigSuite, err = sigsuite.Detect(sigsuite.IDLegacy, 0)
	}
	if err != nil {
		if f, ok := err.(*errs.Finding); ok {
			return nil, nil, errs.Findings{f}
		}
		return nil, nil, errs.Findings{errs.New(errs.CodeSigInvalid, "manifest.json", err.Error())}
	}

	merkleSuite := merkle.Legacy
	if sigSuite.ID() == sigsuite.IDPostQuantum {
		merkleSuite = merkle.PostQuantum
	}
	return sigSuite, merkleSuite, nil
}

// publicKeyLen returns the byte length of the embedded public key, or 0 if
// the file is missing or unreadable (checkSignature reports that absence).
func publicKeyLen(shardDir string) int {
	b, err := os.ReadFile(joinSig(shardDir, "publisher.pub"))
	if err != nil {
		return 0
	}
	return len(b)
}

func joinSig(shardDir, name string) string {
	return filepath.Join(shardDir, "sig", name)
}
