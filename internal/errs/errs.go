// Package errs defines the structured error values shared by the compiler
// and verifier. Every value crossing a subsystem boundary is a Finding: a
// code, a location, and a human message. Codes are additive-only — once
// published here, a constant is never renamed or removed.
package errs

import "fmt"

// Code identifies a class of failure. New codes may be appended; existing
// ones are load-bearing for external tooling and must not change meaning.
type Code string

const (
	CodeLayoutMissing        Code = "E_LAYOUT_MISSING"
	CodeLayoutDirty          Code = "E_LAYOUT_DIRTY"
	CodeManifestSyntax       Code = "E_MANIFEST_SYNTAX"
	CodeManifestSchema       Code = "E_MANIFEST_SCHEMA"
	CodeSigMissing           Code = "E_SIG_MISSING"
	CodeSigInvalid           Code = "E_SIG_INVALID"
	CodeMerkleMismatch       Code = "E_MERKLE_MISMATCH"
	CodeSchemaType           Code = "E_SCHEMA_TYPE"
	CodeSchemaNull           Code = "E_SCHEMA_NULL"
	CodeRefOrphan            Code = "E_REF_ORPHAN"
	CodeRefSource            Code = "E_REF_SOURCE"
	CodeIdentityInput        Code = "E_IDENTITY_INPUT"
	CodeBufferDiscontinuity Code = "E_BUFFER_DISCONTINUITY"
)

// Finding is a single structured failure. It implements error so it can be
// returned or wrapped like any other Go error, but callers that need the
// full machine-readable shape should type-assert to *Finding.
type Finding struct {
	Code     Code
	Location string
	Message  string
}

func (f *Finding) Error() string {
	if f.Location != "" {
		return fmt.Sprintf("%s at %s: %s", f.Code, f.Location, f.Message)
	}
	return fmt.Sprintf("%s: %s", f.Code, f.Message)
}

// New constructs a Finding.
func New(code Code, location, message string) *Finding {
	return &Finding{Code: code, Location: location, Message: message}
}

// Findings is a list of structured failures with a stable sort order: by
// code, then by location. This is what the verifier returns, and what two
// failing runs over the same shard must agree on byte-for-byte once
// rendered.
type Findings []*Finding

func (fs Findings) Len() int      { return len(fs) }
func (fs Findings) Swap(i, j int) { fs[i], fs[j] = fs[j], fs[i] }
func (fs Findings) Less(i, j int) bool {
	if fs[i].Code != fs[j].Code {
		return fs[i].Code < fs[j].Code
	}
	return fs[i].Location < fs[j].Location
}
