// Package sigsuite implements the two signature suites a shard's manifest
// may be sealed under: legacy Ed25519 and the post-quantum axm-blake3-mldsa44
// suite. Both are exposed behind one Suite interface so the compiler and
// verifier never branch on which suite they're holding.
//
// Grounded on the teacher's pkg/crypto/pqc/pqc_go124.go for the
// hybrid-suite-switching style (key-size-based detection, deterministic
// signing); the post-quantum primitive itself is ML-DSA-44 rather than the
// teacher's ML-KEM-768, since the spec calls for a signature scheme, not an
// encapsulation scheme, and cloudflare/circl is the real ecosystem library
// that provides it.
package sigsuite

import (
	"crypto/ed25519"
	"crypto/subtle"

	"github.com/cloudflare/circl/sign/mldsa/mldsa44"

	"github.com/axm-labs/shard/internal/errs"
)

// Suite is the sign/verify contract shared by both signature suites.
type Suite interface {
	ID() string
	PubKeySize() int
	SigSize() int
	Sign(sk, msg []byte) ([]byte, error)
	Verify(pk, msg, sig []byte) bool
}

const (
	IDLegacy      = "" // absent `suite` field means legacy Ed25519
	IDPostQuantum = "axm-blake3-mldsa44"
)

// Detect returns the suite a manifest's `suite` field names, with the empty
// name meaning legacy Ed25519. It does not infer a suite from the key size
// (DetectByKeySize does that). A non-zero pubKeyLen that does not fit the
// named suite is E_SIG_INVALID, never a silent choice.
func Detect(manifestSuite string, pubKeyLen int) (Suite, error) {
	switch manifestSuite {
	case IDLegacy:
		if pubKeyLen != 0 && pubKeyLen != ed25519.PublicKeySize {
			return nil, errs.New(errs.CodeSigInvalid, "", "legacy suite requires a 32-byte public key")
		}
		return Ed25519{}, nil
	case IDPostQuantum:
		if pubKeyLen != 0 && pubKeyLen != mldsa44.PublicKeySize {
			return nil, errs.New(errs.CodeSigInvalid, "", "axm-blake3-mldsa44 suite requires a 1312-byte public key")
		}
		return PostQuantum{}, nil
	default:
		return nil, errs.New(errs.CodeSigInvalid, "", "unknown signature suite: "+manifestSuite)
	}
}

// DetectByKeySize infers the suite purely from public key length, used when
// the manifest carries no `suite` field.
func DetectByKeySize(pubKeyLen int) (Suite, error) {
	switch pubKeyLen {
	case ed25519.PublicKeySize:
		return Ed25519{}, nil
	case mldsa44.PublicKeySize:
		return PostQuantum{}, nil
	default:
		return nil, errs.New(errs.CodeSigInvalid, "", "public key size matches no known suite")
	}
}

// ConstantTimeEqual compares two byte slices without leaking timing
// information, used for trusted-key and embedded-key comparison.
func ConstantTimeEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare(a, b) == 1
}
