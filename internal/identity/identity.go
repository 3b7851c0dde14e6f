// Package identity derives the content-addressed identifiers used
// throughout a shard: entity_id, claim_id, evidence_addr, span_id, and
// provenance_id. Every function here is pure and deterministic: the same
// canonicalized inputs always produce the same identifier bytes, on any
// platform.
package identity

import (
	"crypto/sha256"
	"encoding/base32"
	"encoding/binary"
	"strings"

	"github.com/axm-labs/shard/internal/canon"
	"github.com/axm-labs/shard/internal/errs"
)

// ObjectType enumerates the two claim object kinds the spec allows.
type ObjectType string

const (
	ObjectTypeEntity        ObjectType = "entity"
	ObjectTypeLiteralString ObjectType = "literal:string"
)

var b32Lower = base32.NewEncoding("abcdefghijklmnopqrstuvwxyz234567").WithPadding(base32.NoPadding)

// derive is the one shared primitive behind every identifier: base32-lower
// of the first 15 bytes of SHA-256 over the 0x00-separated concatenation of
// parts, prefixed with the caller's domain tag.
func derive(prefix string, parts ...[]byte) string {
	h := sha256.New()
	for i, p := range parts {
		if i > 0 {
			h.Write([]byte{0x00})
		}
		h.Write(p)
	}
	sum := h.Sum(nil)
	return prefix + b32Lower.EncodeToString(sum[:15])
}

// EntityID derives "e_" || b32l15(canon(namespace) || 0x00 || canon(label)).
func EntityID(namespace, label string) (string, error) {
	ns, err := canon.String(namespace)
	if err != nil {
		return "", err
	}
	lbl, err := canon.String(label)
	if err != nil {
		return "", err
	}
	return derive("e_", []byte(ns), []byte(lbl)), nil
}

// ClaimID derives the claim_id. subjectID is the already-resolved
// entity_id of the subject. predicate is canonicalized here. objectType is
// "entity" or "literal:string"; objectValue is the target entity_id when
// objectType is "entity", or the raw (not-yet-canonicalized) object literal
// otherwise — ClaimID canonicalizes the literal case itself.
func ClaimID(subjectID, predicate string, objectType ObjectType, objectValue string) (string, error) {
	if strings.IndexByte(subjectID, 0x00) >= 0 {
		return "", errs.New(errs.CodeIdentityInput, "", "subject id contains a null byte")
	}

	predicateCanon, err := canon.String(predicate)
	if err != nil {
		return "", err
	}

	switch objectType {
	case ObjectTypeEntity:
		if strings.IndexByte(objectValue, 0x00) >= 0 {
			return "", errs.New(errs.CodeIdentityInput, "", "object entity id contains a null byte")
		}
		return derive("c_", []byte(subjectID), []byte(predicateCanon), []byte(objectType), []byte(objectValue)), nil
	case ObjectTypeLiteralString:
		objCanon, err := canon.String(objectValue)
		if err != nil {
			return "", err
		}
		return derive("c_", []byte(subjectID), []byte(predicateCanon), []byte(objectType), []byte(objCanon)), nil
	default:
		return "", errs.New(errs.CodeSchemaType, "", "unknown object_type: "+string(objectType))
	}
}

// byteRangeParts packs (sourceHash, byteStart, byteEnd) as fixed-width
// fields so the derive() separator convention stays unambiguous regardless
// of the numeric magnitude of the range bounds.
func byteRangeParts(sourceHash string, byteStart, byteEnd uint64) [][]byte {
	var startBuf, endBuf [8]byte
	binary.BigEndian.PutUint64(startBuf[:], byteStart)
	binary.BigEndian.PutUint64(endBuf[:], byteEnd)
	return [][]byte{[]byte(sourceHash), startBuf[:], endBuf[:]}
}

// EvidenceAddr derives the stable, text-independent evidence address.
func EvidenceAddr(sourceHash string, byteStart, byteEnd uint64) (string, error) {
	if err := checkHex(sourceHash); err != nil {
		return "", err
	}
	return derive("ea_", byteRangeParts(sourceHash, byteStart, byteEnd)...), nil
}

// SpanID derives the span identifier, which additionally commits to the
// evidence text.
func SpanID(sourceHash string, byteStart, byteEnd uint64, evidenceText string) (string, error) {
	if err := checkHex(sourceHash); err != nil {
		return "", err
	}
	if strings.IndexByte(evidenceText, 0x00) >= 0 {
		return "", errs.New(errs.CodeIdentityInput, "", "evidence text contains a null byte")
	}
	parts := append(byteRangeParts(sourceHash, byteStart, byteEnd), []byte(evidenceText))
	return derive("s_", parts...), nil
}

// ProvenanceID derives the (explicitly unstable) provenance identifier.
// Callers must never use it as a sole join key across rebuilds.
func ProvenanceID(sourceHash string, byteStart, byteEnd uint64) (string, error) {
	if err := checkHex(sourceHash); err != nil {
		return "", err
	}
	return derive("p_", byteRangeParts(sourceHash, byteStart, byteEnd)...), nil
}

func checkHex(s string) error {
	if strings.IndexByte(s, 0x00) >= 0 {
		return errs.New(errs.CodeIdentityInput, "", "source hash contains a null byte")
	}
	return nil
}
