package compiler

import (
	"context"
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axm-labs/shard/internal/identity"
	"github.com/axm-labs/shard/internal/manifest"
	"github.com/axm-labs/shard/internal/verifier"
)

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func TestCompileProducesASelfVerifyingShard(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	content := []byte("Apply direct pressure to the wound.")
	candidates := []Candidate{
		{
			Namespace:    "medical",
			SubjectLabel: "tourniquet",
			Predicate:    "treats",
			Object:       "severe_bleeding",
			ObjectType:   identity.ObjectTypeEntity,
			Tier:         1,
			EvidenceText: "Apply direct pressure",
			SourceHash:   sha256Hex(content),
			ByteStart:    0,
			ByteEnd:      uint64(len("Apply direct pressure")),
		},
		{
			Namespace:    "medical",
			SubjectLabel: "tourniquet",
			Predicate:    "category",
			Object:       "hemostatic device",
			ObjectType:   identity.ObjectTypeLiteralString,
			Tier:         2,
			EvidenceText: "Apply direct pressure to the wound.",
			SourceHash:   sha256Hex(content),
			ByteStart:    0,
			ByteEnd:      uint64(len(content)),
		},
	}

	in := Input{
		Candidates:   candidates,
		ContentFiles: []ContentFile{{RelPath: "source.txt", Bytes: content}},
		Metadata: Metadata{
			Title:       "first aid basics",
			Namespace:   "medical",
			Publisher:   manifest.Publisher{ID: "pub1", Name: "Publisher One"},
			LicenseSPDX: "CC-BY-4.0",
			CreatedAt:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		Suite:     "legacy",
		SecretKey: priv,
	}

	outDir := filepath.Join(t.TempDir(), "shard-out")
	require.NoError(t, Compile(context.Background(), in, pub, outDir))

	report := verifier.Run(context.Background(), outDir, pub, verifier.DefaultLimits())
	assert.Equal(t, verifier.StatusPass, report.Status, "verifier findings: %v", report.Errors)
}

func TestCompileRejectsEvidenceTextMismatch(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	content := []byte("The quick brown fox.")
	candidates := []Candidate{
		{
			Namespace:    "medical",
			SubjectLabel: "fox",
			Predicate:    "is",
			Object:       "quick",
			ObjectType:   identity.ObjectTypeLiteralString,
			Tier:         0,
			EvidenceText: "the slow brown fox", // does not match the byte range
			SourceHash:   sha256Hex(content),
			ByteStart:    0,
			ByteEnd:      uint64(len(content)),
		},
	}

	in := Input{
		Candidates:   candidates,
		ContentFiles: []ContentFile{{RelPath: "source.txt", Bytes: content}},
		Metadata: Metadata{
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
	err = Compile(context.Background(), in, pub, outDir)
	require.Error(t, err)
}
