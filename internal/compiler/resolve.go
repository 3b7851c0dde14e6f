package compiler

import (
	"fmt"

	"github.com/axm-labs/shard/internal/canon"
	"github.com/axm-labs/shard/internal/errs"
	"github.com/axm-labs/shard/internal/identity"
	"github.com/axm-labs/shard/internal/table"
)

type entityKey struct {
	namespace string
	label     string
}

// resolveEntities computes one entities row per distinct (namespace,
// canonical label) observed across subject and entity-typed object
// positions (§4.7 step 1).
func resolveEntities(candidates []Candidate) ([]table.Row, map[entityKey]string, error) {
	index := map[entityKey]string{}
	var rows []table.Row

	resolve := func(namespace, label string) error {
		nsCanon, err := canon.String(namespace)
		if err != nil {
			return err
		}
		labelCanon, err := canon.String(label)
		if err != nil {
			return err
		}
		key := entityKey{namespace: nsCanon, label: labelCanon}
		if _, ok := index[key]; ok {
			return nil
		}
		id, err := identity.EntityID(namespace, label)
		if err != nil {
			return err
		}
		index[key] = id
		rows = append(rows, table.Row{
			"entity_id":   id,
			"namespace":   nsCanon,
			"label":       labelCanon,
			"entity_type": "concept",
		})
		return nil
	}

	for _, c := range candidates {
		if err := resolve(c.Namespace, c.SubjectLabel); err != nil {
			return nil, nil, err
		}
		if c.ObjectType == identity.ObjectTypeEntity {
			if err := resolve(c.Namespace, c.Object); err != nil {
				return nil, nil, err
			}
		}
	}
	return rows, index, nil
}

// resolveClaims computes one claims row per distinct claim_id (§4.7 step
// 2); duplicate claim_ids collapse, but their evidence still contributes a
// provenance row via materializeProvenance.
func resolveClaims(candidates []Candidate, entityIndex map[entityKey]string) ([]table.Row, map[int]string, error) {
	seen := map[string]bool{}
	var rows []table.Row
	claimIDByCandidate := make(map[int]string, len(candidates))

	for i, c := range candidates {
		nsCanon, err := canon.String(c.Namespace)
		if err != nil {
			return nil, nil, err
		}
		subjLabelCanon, err := canon.String(c.SubjectLabel)
		if err != nil {
			return nil, nil, err
		}
		subjectID, ok := entityIndex[entityKey{namespace: nsCanon, label: subjLabelCanon}]
		if !ok {
			return nil, nil, fmt.Errorf("compiler: internal error: subject entity not resolved for candidate %d", i)
		}

		var objectValue string
		if c.ObjectType == identity.ObjectTypeEntity {
			objLabelCanon, err := canon.String(c.Object)
			if err != nil {
				return nil, nil, err
			}
			objectID, ok := entityIndex[entityKey{namespace: nsCanon, label: objLabelCanon}]
			if !ok {
				return nil, nil, fmt.Errorf("compiler: internal error: object entity not resolved for candidate %d", i)
			}
			objectValue = objectID
		} else {
			objectValue = c.Object
		}

		claimID, err := identity.ClaimID(subjectID, c.Predicate, c.ObjectType, objectValue)
		if err != nil {
			return nil, nil, err
		}
		claimIDByCandidate[i] = claimID

		if seen[claimID] {
			continue
		}
		seen[claimID] = true

		predicateCanon, err := canon.String(c.Predicate)
		if err != nil {
			return nil, nil, err
		}
		objectCanonOut := objectValue
		if c.ObjectType == identity.ObjectTypeLiteralString {
			objectCanonOut, err = canon.String(c.Object)
			if err != nil {
				return nil, nil, err
			}
		}

		rows = append(rows, table.Row{
			"claim_id":    claimID,
			"subject":     subjectID,
			"predicate":   predicateCanon,
			"object":      objectCanonOut,
			"object_type": string(c.ObjectType),
			"tier":        uint64(c.Tier),
		})
	}
	return rows, claimIDByCandidate, nil
}

// materializeSpans computes one spans row per distinct (source_hash,
// byte_start, byte_end, evidence_text) tuple, verifying the evidence text
// against the actual content slice before emitting (§4.7 step 3).
func materializeSpans(candidates []Candidate, sourcesByHash map[string][]byte) ([]table.Row, error) {
	seen := map[string]bool{}
	var rows []table.Row

	for _, c := range candidates {
		content, ok := sourcesByHash[c.SourceHash]
		if !ok {
			return nil, errs.New(errs.CodeRefSource, c.SourceHash, "candidate references an unknown source_hash")
		}

		actual, ok := decodeUTF8Slice(content, c.ByteStart, c.ByteEnd)
		if !ok || actual != c.EvidenceText {
			return nil, errs.New(errs.CodeRefSource, fmt.Sprintf("%s[%d:%d]", c.SourceHash, c.ByteStart, c.ByteEnd),
				"evidence text does not match the literal byte range")
		}

		spanID, err := identity.SpanID(c.SourceHash, c.ByteStart, c.ByteEnd, c.EvidenceText)
		if err != nil {
			return nil, err
		}
		if seen[spanID] {
			continue
		}
		seen[spanID] = true

		rows = append(rows, table.Row{
			"span_id":     spanID,
			"source_hash": c.SourceHash,
			"byte_start":  c.ByteStart,
			"byte_end":    c.ByteEnd,
			"text":        c.EvidenceText,
		})
	}
	return rows, nil
}

// materializeProvenance emits one provenance row per candidate, tying its
// resolved claim_id to its (source_hash, byte_start, byte_end) (§4.7 step
// 4). Unlike claims, duplicates are NOT collapsed: every candidate's
// evidence contributes its own provenance row even when its claim_id
// already exists.
func materializeProvenance(candidates []Candidate, claimIDByCandidate map[int]string) ([]table.Row, error) {
	rows := make([]table.Row, 0, len(candidates))
	for i, c := range candidates {
		provenanceID, err := identity.ProvenanceID(c.SourceHash, c.ByteStart, c.ByteEnd)
		if err != nil {
			return nil, err
		}
		rows = append(rows, table.Row{
			"provenance_id": provenanceID,
			"claim_id":      claimIDByCandidate[i],
			"source_hash":   c.SourceHash,
			"byte_start":    c.ByteStart,
			"byte_end":      c.ByteEnd,
		})
	}
	return rows, nil
}
