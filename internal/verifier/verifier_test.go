package verifier_test

import (
	"context"
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axm-labs/shard/internal/compiler"
	"github.com/axm-labs/shard/internal/errs"
	"github.com/axm-labs/shard/internal/identity"
	"github.com/axm-labs/shard/internal/manifest"
	"github.com/axm-labs/shard/internal/verifier"
)

func compileSampleShard(t *testing.T) (string, ed25519.PublicKey) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	content := []byte("The wound is bleeding heavily.")
	sum := sha256.Sum256(content)
	hexSum := hex.EncodeToString(sum[:])

	in := compiler.Input{
		Candidates: []compiler.Candidate{{
			Namespace:    "medical",
			SubjectLabel: "wound",
			Predicate:    "status",
			Object:       "bleeding heavily",
			ObjectType:   identity.ObjectTypeLiteralString,
			Tier:         1,
			EvidenceText: "The wound is bleeding heavily.",
			SourceHash:   hexSum,
			ByteStart:    0,
			ByteEnd:      uint64(len(content)),
		}},
		ContentFiles: []compiler.ContentFile{{RelPath: "source.txt", Bytes: content}},
		Metadata: compiler.Metadata{
			Title:       "t",
			Namespace:   "medical",
			Publisher:   manifest.Publisher{ID: "pub1", Name: "Publisher One"},
			LicenseSPDX: "CC-BY-4.0",
			CreatedAt:   time.Now(),
		},
		Suite:     "legacy",
		SecretKey: priv,
	}

	outDir := filepath.Join(t.TempDir(), "shard-out")
	require.NoError(t, compiler.Compile(context.Background(), in, pub, outDir))
	return outDir, pub
}

func TestRunPassesOnAFreshlyCompiledShard(t *testing.T) {
	shardDir, pub := compileSampleShard(t)
	report := verifier.Run(context.Background(), shardDir, pub, verifier.DefaultLimits())
	assert.Equal(t, verifier.StatusPass, report.Status)
	assert.Empty(t, report.Errors)
}

func TestRunReportsLayoutMissingForAnAbsentDirectory(t *testing.T) {
	report := verifier.Run(context.Background(), filepath.Join(t.TempDir(), "nope"), nil, verifier.DefaultLimits())
	assert.Equal(t, verifier.StatusFail, report.Status)
	require.NotEmpty(t, report.Errors)
	assert.Equal(t, errs.CodeLayoutMissing, report.Errors[0].Code)
}

func TestRunReportsMerkleMismatchAfterTampering(t *testing.T) {
	shardDir, pub := compileSampleShard(t)
	require.NoError(t, os.WriteFile(filepath.Join(shardDir, "content", "source.txt"), []byte("tampered content goes here"), 0o644))

	report := verifier.Run(context.Background(), shardDir, pub, verifier.DefaultLimits())
	assert.Equal(t, verifier.StatusFail, report.Status)

	var sawMerkle bool
	for _, f := range report.Errors {
		if f.Code == errs.CodeMerkleMismatch {
			sawMerkle = true
		}
	}
	assert.True(t, sawMerkle)
}

func TestRunReportsSigInvalidForWrongTrustedKey(t *testing.T) {
	shardDir, _ := compileSampleShard(t)
	otherPub, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	report := verifier.Run(context.Background(), shardDir, otherPub, verifier.DefaultLimits())
	assert.Equal(t, verifier.StatusFail, report.Status)

	var sawSig bool
	for _, f := range report.Errors {
		if f.Code == errs.CodeSigInvalid {
			sawSig = true
		}
	}
	assert.True(t, sawSig)
}

func TestRunReportsSigMissingForDeletedSignature(t *testing.T) {
	shardDir, pub := compileSampleShard(t)
	require.NoError(t, os.Remove(filepath.Join(shardDir, "sig", "manifest.sig")))

	report := verifier.Run(context.Background(), shardDir, pub, verifier.DefaultLimits())
	assert.Equal(t, verifier.StatusFail, report.Status)
	require.NotEmpty(t, report.Errors)
	assert.Equal(t, errs.CodeSigMissing, report.Errors[0].Code)
}

func TestRunReportsLayoutDirtyForUnexpectedRootEntry(t *testing.T) {
	shardDir, pub := compileSampleShard(t)
	require.NoError(t, os.WriteFile(filepath.Join(shardDir, "intruder.txt"), []byte("x"), 0o644))

	report := verifier.Run(context.Background(), shardDir, pub, verifier.DefaultLimits())
	assert.Equal(t, verifier.StatusFail, report.Status)

	var sawDirty bool
	for _, f := range report.Errors {
		if f.Code == errs.CodeLayoutDirty && f.Location == "intruder.txt" {
			sawDirty = true
		}
	}
	assert.True(t, sawDirty)
}

func TestRunReportsLayoutDirtyForUnexpectedSigEntry(t *testing.T) {
	shardDir, pub := compileSampleShard(t)
	require.NoError(t, os.WriteFile(filepath.Join(shardDir, "sig", "extra.bin"), []byte("x"), 0o644))

	report := verifier.Run(context.Background(), shardDir, pub, verifier.DefaultLimits())
	assert.Equal(t, verifier.StatusFail, report.Status)

	var sawDirty bool
	for _, f := range report.Errors {
		if f.Code == errs.CodeLayoutDirty && f.Location == "sig/extra.bin" {
			sawDirty = true
		}
	}
	assert.True(t, sawDirty)
}
