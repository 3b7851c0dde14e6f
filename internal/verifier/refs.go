package verifier

import (
	"fmt"

	"github.com/axm-labs/shard/internal/errs"
	"github.com/axm-labs/shard/internal/manifest"
	"github.com/axm-labs/shard/internal/table"
)

// checkReferences verifies every cross-table foreign key resolves: claim
// subjects and entity-typed objects must name an existing entity,
// provenance rows must name an existing claim, and every source_hash
// appearing in provenance/spans must name a sealed content source (§4.8
// REFS_OK).
func checkReferences(ts tableSet, m *manifest.Manifest) (errs.Findings, bool) {
	var findings errs.Findings

	entityIDs := stringSet(ts.Entities, "entity_id")
	claimIDs := stringSet(ts.Claims, "claim_id")
	sourceHashes := make(map[string]bool, len(m.Sources))
	for _, s := range m.Sources {
		sourceHashes[s.SHA256Hex] = true
	}

	for i, row := range ts.Claims {
		subject, _ := row["subject"].(string)
		if !entityIDs[subject] {
			findings = append(findings, errs.New(errs.CodeRefOrphan, rowLoc("claims", i), "claim's subject names no known entity"))
		}
		objectType, _ := row["object_type"].(string)
		if objectType == "entity" {
			object, _ := row["object"].(string)
			if !entityIDs[object] {
				findings = append(findings, errs.New(errs.CodeRefOrphan, rowLoc("claims", i), "claim's object names no known entity"))
			}
		}
	}

	for i, row := range ts.Provenance {
		claimID, _ := row["claim_id"].(string)
		if !claimIDs[claimID] {
			findings = append(findings, errs.New(errs.CodeRefOrphan, rowLoc("provenance", i), "provenance row names no known claim"))
		}
		sourceHash, _ := row["source_hash"].(string)
		if !sourceHashes[sourceHash] {
			findings = append(findings, errs.New(errs.CodeRefOrphan, rowLoc("provenance", i), "provenance row names no sealed content source"))
		}
	}

	for i, row := range ts.Spans {
		sourceHash, _ := row["source_hash"].(string)
		if !sourceHashes[sourceHash] {
			findings = append(findings, errs.New(errs.CodeRefOrphan, rowLoc("spans", i), "span names no sealed content source"))
		}
	}

	return findings, len(findings) == 0
}

func stringSet(rows []table.Row, column string) map[string]bool {
	set := make(map[string]bool, len(rows))
	for _, row := range rows {
		if v, ok := row[column].(string); ok {
			set[v] = true
		}
	}
	return set
}

func rowLoc(table string, idx int) string {
	return fmt.Sprintf("%s[%d]", table, idx)
}
