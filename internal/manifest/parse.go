package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"unicode/utf8"

	"github.com/axm-labs/shard/internal/errs"
)

// Parse decodes and validates manifest bytes read exactly once from disk.
// It never trusts the result for anything beyond reading the suite field
// until the caller has separately verified the signature (§4.8 step 4) —
// enforcing that ordering is the caller's job, not Parse's.
func Parse(raw []byte) (*Manifest, errs.Findings) {
	if !utf8.Valid(raw) {
		return nil, errs.Findings{errs.New(errs.CodeManifestSyntax, "manifest.json", "manifest is not valid UTF-8")}
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	var m Manifest
	if err := dec.Decode(&m); err != nil {
		return nil, errs.Findings{errs.New(errs.CodeManifestSyntax, "manifest.json", fmt.Sprintf("invalid JSON: %v", err))}
	}

	var findings errs.Findings
	require := func(cond bool, field string) {
		if !cond {
			findings = append(findings, errs.New(errs.CodeManifestSchema, "manifest.json", "missing or invalid field: "+field))
		}
	}

	require(m.SpecVersion != "", "spec_version")
	require(m.ShardID != "", "shard_id")
	require(m.Metadata.Title != "", "metadata.title")
	require(m.Metadata.Namespace != "", "metadata.namespace")
	require(m.Metadata.CreatedAt != "", "metadata.created_at")
	require(m.Publisher.ID != "", "publisher.id")
	require(m.Publisher.Name != "", "publisher.name")
	require(m.License.SPDX != "", "license.spdx")
	require(len(m.Sources) > 0, "sources")
	require(m.Integrity.Algorithm == "blake3", "integrity.algorithm")
	require(m.Integrity.MerkleRoot != "", "integrity.merkle_root")
	require(m.Statistics.Entities >= 0, "statistics.entities")
	require(m.Statistics.Claims >= 0, "statistics.claims")

	if len(findings) > 0 {
		return nil, findings
	}
	return &m, nil
}
