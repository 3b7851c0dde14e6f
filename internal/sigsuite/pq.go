package sigsuite

import (
	"github.com/cloudflare/circl/sign/mldsa/mldsa44"

	"github.com/axm-labs/shard/internal/errs"
)

// PostQuantum is the axm-blake3-mldsa44 signature suite: 1312-byte public
// key, 2420-byte signature, deterministic (no-nonce) signing so that
// rebuilding a shard under the same key and manifest bytes reproduces the
// same signature bytes exactly.
type PostQuantum struct{}

func (PostQuantum) ID() string      { return IDPostQuantum }
func (PostQuantum) PubKeySize() int { return mldsa44.PublicKeySize }
func (PostQuantum) SigSize() int    { return mldsa44.SignatureSize }

// Secret key formats accepted: the packed circl mldsa44 private key
// (mldsa44.PrivateKeySize bytes), or that key followed by the packed public
// key. No other sizes are accepted, and the trailing public key of the
// second form is ignored rather than checked.
const (
	skOnlySize = mldsa44.PrivateKeySize
	skPkSize   = mldsa44.PrivateKeySize + mldsa44.PublicKeySize
)

func (PostQuantum) Sign(sk, msg []byte) ([]byte, error) {
	priv, err := unpackPrivateKey(sk)
	if err != nil {
		return nil, err
	}

	sig := make([]byte, mldsa44.SignatureSize)
	// context is left empty; the suite signs the raw manifest bytes with no
	// additional domain-separation context beyond what the Merkle leaf
	// hashing already applies to the file set.
	mldsa44.SignTo(priv, msg, nil, false, sig)
	return sig, nil
}

func (PostQuantum) Verify(pk, msg, sig []byte) bool {
	if len(pk) != mldsa44.PublicKeySize {
		return false
	}
	var pub mldsa44.PublicKey
	if err := pub.UnmarshalBinary(pk); err != nil {
		return false
	}
	return mldsa44.Verify(&pub, msg, nil, sig)
}

func unpackPrivateKey(sk []byte) (*mldsa44.PrivateKey, error) {
	var raw []byte
	switch len(sk) {
	case skPkSize:
		raw = sk[:skOnlySize]
	case skOnlySize:
		raw = sk
	default:
		return nil, errs.New(errs.CodeSigInvalid, "", "axm-blake3-mldsa44 secret key has an unrecognized size")
	}

	var priv mldsa44.PrivateKey
	if err := priv.UnmarshalBinary(raw); err != nil {
		return nil, errs.New(errs.CodeSigInvalid, "", "axm-blake3-mldsa44 secret key could not be unpacked")
	}
	return &priv, nil
}
