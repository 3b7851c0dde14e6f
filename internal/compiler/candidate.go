// Package compiler implements the candidate-stream → sealed-shard pipeline:
// resolve entities and claims, materialize spans and provenance, emit
// content files and tables, compute the Merkle root, seal and sign the
// manifest, and self-verify before the shard is considered shipped.
package compiler

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/axm-labs/shard/internal/errs"
	"github.com/axm-labs/shard/internal/identity"
)

// Candidate is one record from the compiler's input stream (§6.3).
type Candidate struct {
	Namespace    string              `json:"namespace"`
	SubjectLabel string              `json:"subject_label"`
	Predicate    string              `json:"predicate"`
	Object       string              `json:"object"`
	ObjectType   identity.ObjectType `json:"object_type"`
	Tier         int                 `json:"tier"`
	EvidenceText string              `json:"evidence_text"`
	SourceHash   string              `json:"source_hash"`
	ByteStart    uint64              `json:"byte_start"`
	ByteEnd      uint64              `json:"byte_end"`
}

// DecodeCandidates reads an ordered stream of newline-delimited canonical
// JSON candidate records from r. The compiler never reaches out over the
// network itself; it only decodes whatever io.Reader its caller supplies.
func DecodeCandidates(r io.Reader) ([]Candidate, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var out []Candidate
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var c Candidate
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, fmt.Errorf("compiler: candidate line %d: %w", line, err)
		}
		if err := validateCandidate(c); err != nil {
			return nil, fmt.Errorf("compiler: candidate line %d: %w", line, err)
		}
		out = append(out, c)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("compiler: reading candidate stream: %w", err)
	}
	return out, nil
}

func validateCandidate(c Candidate) error {
	if c.Namespace == "" {
		return fmt.Errorf("namespace must be non-empty")
	}
	if c.SubjectLabel == "" {
		return fmt.Errorf("subject_label must be non-empty")
	}
	if c.Predicate == "" {
		return fmt.Errorf("predicate must be non-empty")
	}
	if c.ObjectType != identity.ObjectTypeEntity && c.ObjectType != identity.ObjectTypeLiteralString {
		return fmt.Errorf("object_type must be %q or %q", identity.ObjectTypeEntity, identity.ObjectTypeLiteralString)
	}
	if c.Tier < 0 || c.Tier > 3 {
		return errs.New(errs.CodeSchemaType, "", fmt.Sprintf("tier must be in 0..3, got %d", c.Tier))
	}
	if c.ByteStart > c.ByteEnd {
		return fmt.Errorf("byte_start must be <= byte_end")
	}
	return nil
}
