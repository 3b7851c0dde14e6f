package table

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/axm-labs/shard/internal/errs"
)

// The four fixed table schemas, expressed as JSON Schema so the validator
// enforcing them is a real library (jsonschema/v5), not a hand-rolled
// type-switch a malformed row could slip past.
const (
	entitiesSchemaDoc = `{
		"type": "object",
		"required": ["entity_id", "namespace", "label", "entity_type"],
		"properties": {
			"entity_id":   {"type": "string", "minLength": 1},
			"namespace":   {"type": "string", "minLength": 1},
			"label":       {"type": "string", "minLength": 1},
			"entity_type": {"type": "string", "minLength": 1}
		}
	}`

	claimsSchemaDoc = `{
		"type": "object",
		"required": ["claim_id", "subject", "predicate", "object", "object_type", "tier"],
		"properties": {
			"claim_id":    {"type": "string", "minLength": 1},
			"subject":     {"type": "string", "minLength": 1},
			"predicate":   {"type": "string", "minLength": 1},
			"object":      {"type": "string"},
			"object_type": {"enum": ["entity", "literal:string"]},
			"tier":        {"type": "integer", "minimum": 0, "maximum": 3}
		}
	}`

	provenanceSchemaDoc = `{
		"type": "object",
		"required": ["provenance_id", "claim_id", "source_hash", "byte_start", "byte_end"],
		"properties": {
			"provenance_id": {"type": "string", "minLength": 1},
			"claim_id":      {"type": "string", "minLength": 1},
			"source_hash":   {"type": "string", "minLength": 1},
			"byte_start":    {"type": "integer", "minimum": 0},
			"byte_end":      {"type": "integer", "minimum": 0}
		}
	}`

	spansSchemaDoc = `{
		"type": "object",
		"required": ["span_id", "source_hash", "byte_start", "byte_end", "text"],
		"properties": {
			"span_id":     {"type": "string", "minLength": 1},
			"source_hash": {"type": "string", "minLength": 1},
			"byte_start":  {"type": "integer", "minimum": 0},
			"byte_end":    {"type": "integer", "minimum": 0},
			"text":        {"type": "string"}
		}
	}`
)

var (
	EntitiesSchema = Schema{Name: "entities", Columns: []ColumnDef{
		{Name: "entity_id", Type: ColumnString},
		{Name: "namespace", Type: ColumnString},
		{Name: "label", Type: ColumnString},
		{Name: "entity_type", Type: ColumnString},
	}}

	ClaimsSchema = Schema{Name: "claims", Columns: []ColumnDef{
		{Name: "claim_id", Type: ColumnString},
		{Name: "subject", Type: ColumnString},
		{Name: "predicate", Type: ColumnString},
		{Name: "object", Type: ColumnString},
		{Name: "object_type", Type: ColumnString},
		{Name: "tier", Type: ColumnUint64},
	}}

	ProvenanceSchema = Schema{Name: "provenance", Columns: []ColumnDef{
		{Name: "provenance_id", Type: ColumnString},
		{Name: "claim_id", Type: ColumnString},
		{Name: "source_hash", Type: ColumnString},
		{Name: "byte_start", Type: ColumnUint64},
		{Name: "byte_end", Type: ColumnUint64},
	}}

	SpansSchema = Schema{Name: "spans", Columns: []ColumnDef{
		{Name: "span_id", Type: ColumnString},
		{Name: "source_hash", Type: ColumnString},
		{Name: "byte_start", Type: ColumnUint64},
		{Name: "byte_end", Type: ColumnUint64},
		{Name: "text", Type: ColumnString},
	}}
)

var schemaDocByTable = map[string]string{
	"entities":   entitiesSchemaDoc,
	"claims":     claimsSchemaDoc,
	"provenance": provenanceSchemaDoc,
	"spans":      spansSchemaDoc,
}

func compileSchema(table string) (*jsonschema.Schema, error) {
	doc, ok := schemaDocByTable[table]
	if !ok {
		return nil, fmt.Errorf("table: no schema registered for %q", table)
	}
	compiler := jsonschema.NewCompiler()
	url := "mem://" + table + ".json"
	if err := compiler.AddResource(url, bytes.NewReader([]byte(doc))); err != nil {
		return nil, err
	}
	return compiler.Compile(url)
}

// ValidateRows checks every row of table against its registered JSON
// Schema, reporting E_SCHEMA_TYPE for a structural mismatch and
// E_SCHEMA_NULL for a missing/null required column. location is the file
// path reported in findings.
func ValidateRows(ctx context.Context, table, location string, rows []Row) errs.Findings {
	schema, err := compileSchema(table)
	if err != nil {
		return errs.Findings{errs.New(errs.CodeSchemaType, location, err.Error())}
	}

	var findings errs.Findings
	for i, row := range rows {
		if ctx.Err() != nil {
			break
		}
		// round-trip through JSON so jsonschema sees plain interface{}
		// values (map[string]interface{}, float64, string) rather than our
		// internal Go types.
		raw, err := json.Marshal(row)
		if err != nil {
			findings = append(findings, errs.New(errs.CodeSchemaType, rowLocation(location, i), err.Error()))
			continue
		}
		var generic interface{}
		if err := json.Unmarshal(raw, &generic); err != nil {
			findings = append(findings, errs.New(errs.CodeSchemaType, rowLocation(location, i), err.Error()))
			continue
		}

		if err := schema.Validate(generic); err != nil {
			code := errs.CodeSchemaType
			if isNullViolation(err) {
				code = errs.CodeSchemaNull
			}
			findings = append(findings, errs.New(code, rowLocation(location, i), err.Error()))
		}
	}
	return findings
}

func rowLocation(location string, idx int) string {
	return fmt.Sprintf("%s[%d]", location, idx)
}

// isNullViolation reports whether a jsonschema validation error stems from a
// missing required property (our non-null contract), as opposed to a type
// mismatch.
func isNullViolation(err error) bool {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return false
	}
	for _, cause := range ve.Causes {
		if cause.KeywordLocation != "" && bytes.Contains([]byte(cause.Error()), []byte("required")) {
			return true
		}
	}
	return false
}
