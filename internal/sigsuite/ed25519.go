package sigsuite

import "crypto/ed25519"

// Ed25519 is the legacy signature suite: absent `suite` field, 32-byte
// public key, 64-byte signature.
type Ed25519 struct{}

func (Ed25519) ID() string      { return IDLegacy }
func (Ed25519) PubKeySize() int { return ed25519.PublicKeySize }
func (Ed25519) SigSize() int    { return ed25519.SignatureSize }

func (Ed25519) Sign(sk, msg []byte) ([]byte, error) {
	key, err := normalizeEd25519PrivateKey(sk)
	if err != nil {
		return nil, err
	}
	return ed25519.Sign(key, msg), nil
}

func (Ed25519) Verify(pk, msg, sig []byte) bool {
	if len(pk) != ed25519.PublicKeySize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(pk), msg, sig)
}

// normalizeEd25519PrivateKey accepts either the 32-byte seed or the 64-byte
// seed‖pubkey form, per §4.4's "opaque 32 or 64 bytes" secret key format.
func normalizeEd25519PrivateKey(sk []byte) (ed25519.PrivateKey, error) {
	switch len(sk) {
	case ed25519.SeedSize:
		return ed25519.NewKeyFromSeed(sk), nil
	case ed25519.PrivateKeySize:
		return ed25519.PrivateKey(sk), nil
	default:
		return nil, errInvalidKeySize
	}
}
