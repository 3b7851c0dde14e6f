// Package canon implements the two canonicalization operations that every
// identifier derivation and every normative artifact byte sequence is built
// on: string canonicalization for identity inputs, and canonical JSON (RFC
// 8785 / JCS-style) for anything that gets hashed or signed as a document.
package canon

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/axm-labs/shard/internal/errs"
)

var foldCaser = cases.Fold()

// String applies canon(s): NFC normalize, Unicode default case-fold, strip
// ASCII control characters (<0x20 or ==0x7F), collapse whitespace runs to a
// single 0x20, then trim. Rejects inputs containing a null byte.
func String(s string) (string, error) {
	if strings.IndexByte(s, 0x00) >= 0 {
		return "", errs.New(errs.CodeIdentityInput, "", "input contains a null byte")
	}

	s = norm.NFC.String(s)
	s = foldCaser.String(s)

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			continue
		}
		b.WriteRune(r)
	}
	s = b.String()

	s = collapseWhitespace(s)
	return strings.Trim(s, " "), nil
}

func collapseWhitespace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inRun := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !inRun {
				b.WriteByte(' ')
				inRun = true
			}
			continue
		}
		inRun = false
		b.WriteRune(r)
	}
	return b.String()
}

// JSON serializes v as canonical JSON: keys sorted lexicographically at
// every nesting level, minimal separators, non-ASCII preserved, integers
// emitted without a trailing decimal, no trailing newline. This is the exact
// byte sequence a normative artifact's signature covers.
func JSON(v interface{}) ([]byte, error) {
	intermediate, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("canon: marshal intermediate: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(intermediate))
	dec.UseNumber()
	var generic interface{}
	if err := dec.Decode(&generic); err != nil {
		return nil, fmt.Errorf("canon: decode intermediate: %w", err)
	}

	var out bytes.Buffer
	if err := marshalCanonical(&out, generic); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func marshalCanonical(out *bytes.Buffer, v interface{}) error {
	switch val := v.(type) {
	case map[string]interface{}:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		out.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				out.WriteByte(',')
			}
			kb, err := json.Marshal(k)
			if err != nil {
				return err
			}
			out.Write(kb)
			out.WriteByte(':')
			if err := marshalCanonical(out, val[k]); err != nil {
				return err
			}
		}
		out.WriteByte('}')
		return nil

	case []interface{}:
		out.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				out.WriteByte(',')
			}
			if err := marshalCanonical(out, elem); err != nil {
				return err
			}
		}
		out.WriteByte(']')
		return nil

	case json.Number:
		out.WriteString(val.String())
		return nil

	case string:
		b, err := marshalStringNoEscape(val)
		if err != nil {
			return err
		}
		out.Write(b)
		return nil

	default:
		b, err := json.Marshal(val)
		if err != nil {
			return err
		}
		out.Write(b)
		return nil
	}
}

// marshalStringNoEscape marshals a string without HTML-escaping (<, >, &)
// while keeping standard JSON string escaping and preserving non-ASCII
// bytes unescaped, matching the canonical JSON contract.
func marshalStringNoEscape(s string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	// enc.Encode appends a trailing newline; canonical output has none.
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Hash returns the hex SHA-256 of a value's canonical JSON form. Used by
// callers that need a content hash of an arbitrary structured value rather
// than a raw byte buffer (the manifest itself is always hashed as raw bytes,
// per §4.4's TOCTOU requirement — this helper is for secondary artifacts).
func Hash(v interface{}) (string, error) {
	b, err := JSON(v)
	if err != nil {
		return "", err
	}
	return hashHex(b), nil
}
