package verifier

import (
	"os"

	"github.com/axm-labs/shard/internal/errs"
	"github.com/axm-labs/shard/internal/sigsuite"
)

// checkSignature verifies the manifest's signature against its embedded
// public key, and the embedded key against the caller's trusted key (§4.8
// SIG_OK). An empty trustedPubKey fails with E_SIG_INVALID: the key embedded
// in the shard is never trusted on its own.
func checkSignature(shardDir string, manifestBytes []byte, sigSuite sigsuite.Suite, trustedPubKey []byte) (errs.Findings, bool) {
	sig, err := os.ReadFile(joinSig(shardDir, "manifest.sig"))
	if err != nil {
		return errs.Findings{errs.New(errs.CodeSigMissing, "sig/manifest.sig", "signature file is missing")}, false
	}
	pubKey, err := os.ReadFile(joinSig(shardDir, "publisher.pub"))
	if err != nil {
		return errs.Findings{errs.New(errs.CodeSigMissing, "sig/publisher.pub", "public key file is missing")}, false
	}

	var findings errs.Findings

	if len(pubKey) != sigSuite.PubKeySize() {
		findings = append(findings, errs.New(errs.CodeSigInvalid, "sig/publisher.pub", "public key has the wrong size for the manifest's signature suite"))
		return findings, false
	}
	if len(sig) != sigSuite.SigSize() {
		findings = append(findings, errs.New(errs.CodeSigInvalid, "sig/manifest.sig", "signature has the wrong size for the manifest's signature suite"))
		return findings, false
	}

	if len(trustedPubKey) == 0 {
		findings = append(findings, errs.New(errs.CodeSigInvalid, "sig/publisher.pub", "no trusted public key was supplied"))
		return findings, false
	}
	if !sigsuite.ConstantTimeEqual(trustedPubKey, pubKey) {
		findings = append(findings, errs.New(errs.CodeSigInvalid, "sig/publisher.pub", "embedded public key does not match the trusted key"))
		return findings, false
	}

	if !sigSuite.Verify(pubKey, manifestBytes, sig) {
		findings = append(findings, errs.New(errs.CodeSigInvalid, "sig/manifest.sig", "signature does not verify against the manifest bytes and embedded key"))
		return findings, false
	}

	return findings, true
}
