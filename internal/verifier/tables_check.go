package verifier

import (
	"context"
	"os"

	"github.com/axm-labs/shard/internal/errs"
	"github.com/axm-labs/shard/internal/table"
)

// tableSet holds the decoded rows of all four fixed tables, keyed by their
// primary key for the reference and byte-range checks that follow.
type tableSet struct {
	Entities   []table.Row
	Claims     []table.Row
	Provenance []table.Row
	Spans      []table.Row
}

var tableFiles = []struct {
	name   string
	relDir string
	file   string
}{
	{"entities", "graph", "entities.axc"},
	{"claims", "graph", "claims.axc"},
	{"provenance", "graph", "provenance.axc"},
	{"spans", "evidence", "spans.axc"},
}

// checkTables decodes and schema-validates all four tables (§4.8 TABLES_OK).
func checkTables(ctx context.Context, shardDir string) (tableSet, errs.Findings, bool) {
	var findings errs.Findings
	var ts tableSet

	for _, tf := range tableFiles {
		rel := tf.relDir + "/" + tf.file
		data, err := os.ReadFile(joinPath(shardDir, tf.relDir, tf.file))
		if err != nil {
			findings = append(findings, errs.New(errs.CodeSchemaType, rel, "table file could not be read"))
			continue
		}
		_, rows, err := table.Decode(data)
		if err != nil {
			findings = append(findings, errs.New(errs.CodeSchemaType, rel, err.Error()))
			continue
		}
		findings = append(findings, table.ValidateRows(ctx, tf.name, rel, rows)...)

		switch tf.name {
		case "entities":
			ts.Entities = rows
		case "claims":
			ts.Claims = rows
		case "provenance":
			ts.Provenance = rows
		case "spans":
			ts.Spans = rows
		}
	}

	return ts, findings, !hasSchemaFailure(findings)
}

func hasSchemaFailure(findings errs.Findings) bool {
	for _, f := range findings {
		if f.Code == errs.CodeSchemaType || f.Code == errs.CodeSchemaNull {
			return true
		}
	}
	return false
}
