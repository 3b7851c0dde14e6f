package compiler

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/axm-labs/shard/internal/config"
	"github.com/axm-labs/shard/internal/errs"
	"github.com/axm-labs/shard/internal/manifest"
	"github.com/axm-labs/shard/internal/merkle"
	"github.com/axm-labs/shard/internal/sigsuite"
	"github.com/axm-labs/shard/internal/table"
	"github.com/axm-labs/shard/internal/verifier"
)

// tracer and log read the global OpenTelemetry/slog providers rather than a
// threaded-in obslog.Provider: cmd/shard installs the real providers
// globally via otel.SetTracerProvider/SetMeterProvider before dispatching,
// so a package-level handle here picks them up without Compile needing a
// Provider parameter (and falls back to the otel no-op implementation for
// callers, such as the test suite, that never touch obslog at all).
var (
	tracer = otel.Tracer("axm-shard")
	meter  = otel.Meter("axm-shard")
	log    = slog.Default().With("component", "compiler")
)

var (
	candidatesCounterOnce sync.Once
	candidatesCounter     metric.Int64Counter
)

func candidatesProcessedCounter() metric.Int64Counter {
	candidatesCounterOnce.Do(func() {
		c, err := meter.Int64Counter("compiler.candidates_processed",
			metric.WithDescription("candidates processed per compile run"))
		if err != nil {
			log.Error("creating candidates_processed counter", "error", err)
			return
		}
		candidatesCounter = c
	})
	return candidatesCounter
}

// stage starts a span for one pipeline step and logs its entry, returning a
// done func that ends the span and logs the result.
func stage(ctx context.Context, name string) (context.Context, func(*error)) {
	ctx, span := tracer.Start(ctx, name)
	log.DebugContext(ctx, "stage started", "stage", name)
	return ctx, func(errp *error) {
		if errp != nil && *errp != nil {
			span.RecordError(*errp)
			log.WarnContext(ctx, "stage failed", "stage", name, "error", *errp)
		} else {
			log.DebugContext(ctx, "stage finished", "stage", name)
		}
		span.End()
	}
}

// traced runs fn inside its own span named name, logging entry/exit and any
// returned error, and returns fn's error unchanged.
func traced(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	ctx, done := stage(ctx, name)
	err := fn(ctx)
	done(&err)
	return err
}

// ContentFile is one source byte stream the compiler seals into the
// shard's content/ directory.
type ContentFile struct {
	// RelPath is the file's path under content/, e.g. "source.txt".
	RelPath string
	Bytes   []byte
}

// Metadata is the shard-level descriptive input the compiler never derives
// from the candidate stream itself.
type Metadata struct {
	Title     string
	Namespace string
	Publisher manifest.Publisher
	LicenseSPDX string
	CreatedAt time.Time
}

// Input bundles everything one Compile call consumes.
type Input struct {
	Candidates   []Candidate
	ContentFiles []ContentFile
	Metadata     Metadata
	Suite        string // "legacy" or "pq"
	SecretKey    []byte
}

// Compile runs the full candidate-stream → sealed-shard pipeline and writes
// the result to outDir. outDir must not already exist. On any failure, or
// if self-verify fails, the partially written output is removed.
func Compile(ctx context.Context, in Input, trustedPubKey []byte, outDir string) (err error) {
	ctx, done := stage(ctx, "compiler.compile")
	defer func() { done(&err) }()

	log.InfoContext(ctx, "compile starting", "candidates", len(in.Candidates), "suite", in.Suite)
	if c := candidatesProcessedCounter(); c != nil {
		c.Add(ctx, int64(len(in.Candidates)))
	}

	merkleSuite, sigSuite, err := resolveSuite(in.Suite)
	if err != nil {
		return err
	}

	scratch := outDir + ".scratch-" + uuid.NewString()
	defer func() {
		if err != nil {
			_ = os.RemoveAll(scratch)
		}
	}()

	var sourcesByHash map[string][]byte
	var sourceEntries []manifest.SourceEntry
	err = traced(ctx, "compiler.write_content", func(ctx context.Context) error {
		var e error
		sourcesByHash, sourceEntries, e = writeContent(scratch, in.ContentFiles)
		return e
	})
	if err != nil {
		return err
	}

	var entities, claims, spans, provenance []table.Row
	var entityIndex map[entityKey]string
	var claimIndex map[int]string
	err = traced(ctx, "compiler.resolve_entities", func(ctx context.Context) error {
		var e error
		entities, entityIndex, e = resolveEntities(in.Candidates)
		return e
	})
	if err != nil {
		return err
	}
	err = traced(ctx, "compiler.resolve_claims", func(ctx context.Context) error {
		var e error
		claims, claimIndex, e = resolveClaims(in.Candidates, entityIndex)
		return e
	})
	if err != nil {
		return err
	}
	err = traced(ctx, "compiler.materialize_spans", func(ctx context.Context) error {
		var e error
		spans, e = materializeSpans(in.Candidates, sourcesByHash)
		return e
	})
	if err != nil {
		return err
	}
	err = traced(ctx, "compiler.materialize_provenance", func(ctx context.Context) error {
		var e error
		provenance, e = materializeProvenance(in.Candidates, claimIndex)
		return e
	})
	if err != nil {
		return err
	}

	err = traced(ctx, "compiler.write_tables", func(ctx context.Context) error {
		return writeTables(scratch, entities, claims, provenance, spans)
	})
	if err != nil {
		return err
	}

	m := manifest.Manifest{
		SpecVersion: manifest.SpecVersion,
		Metadata: manifest.Metadata{
			Title:     in.Metadata.Title,
			Namespace: in.Metadata.Namespace,
			CreatedAt: in.Metadata.CreatedAt.UTC().Format(time.RFC3339),
		},
		Publisher: in.Metadata.Publisher,
		License:   manifest.License{SPDX: in.Metadata.LicenseSPDX},
		Sources:   sourceEntries,
		Integrity: manifest.Integrity{Algorithm: "blake3"},
		Statistics: manifest.Statistics{
			Entities: len(entities),
			Claims:   len(claims),
		},
	}
	if sigSuite.ID() != sigsuite.IDLegacy {
		m.Suite = sigSuite.ID()
	}

	if err := writeManifestPlaceholder(scratch, m); err != nil {
		return err
	}

	var root string
	err = traced(ctx, "compiler.merkle_walk", func(ctx context.Context) error {
		sealedFiles, e := merkle.SelectFiles(ctx, scratch, config.Load().Limits())
		if e != nil {
			return e
		}
		root = merkle.RootHex(merkleSuite, sealedFiles)
		return nil
	})
	if err != nil {
		return err
	}
	m.Integrity.MerkleRoot = root
	m.ShardID = manifest.ShardID(root)

	canonicalBytes, err := m.CanonicalBytes()
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(scratch, "manifest.json"), canonicalBytes, 0o644); err != nil {
		return err
	}

	var sig []byte
	err = traced(ctx, "compiler.sign", func(ctx context.Context) error {
		var e error
		sig, e = sigSuite.Sign(in.SecretKey, canonicalBytes)
		if e != nil {
			return e
		}
		return writeSignature(scratch, sig, trustedPubKey)
	})
	if err != nil {
		return err
	}

	var report verifier.Report
	err = traced(ctx, "compiler.self_verify", func(ctx context.Context) error {
		report = verifier.Run(ctx, scratch, trustedPubKey, verifier.DefaultLimits())
		if report.Status != verifier.StatusPass {
			return fmt.Errorf("compiler: self-verify failed: %v", report.Errors)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err = os.Rename(scratch, outDir); err != nil {
		return fmt.Errorf("compiler: sealing output directory: %w", err)
	}
	log.InfoContext(ctx, "compile finished", "shard_id", m.ShardID, "out", outDir)
	return nil
}

func resolveSuite(suiteName string) (merkle.Suite, sigsuite.Suite, error) {
	switch suiteName {
	case "", "legacy":
		return merkle.Legacy, sigsuite.Ed25519{}, nil
	case "pq":
		return merkle.PostQuantum, sigsuite.PostQuantum{}, nil
	default:
		return nil, nil, errs.New(errs.CodeSigInvalid, "", "unknown suite: "+suiteName)
	}
}

func writeContent(scratch string, files []ContentFile) (map[string][]byte, []manifest.SourceEntry, error) {
	contentDir := filepath.Join(scratch, "content")
	if err := os.MkdirAll(contentDir, 0o755); err != nil {
		return nil, nil, err
	}

	byHash := map[string][]byte{}
	entries := make([]manifest.SourceEntry, 0, len(files))
	for _, f := range files {
		sum := sha256.Sum256(f.Bytes)
		hexSum := hex.EncodeToString(sum[:])
		byHash[hexSum] = f.Bytes

		full := filepath.Join(contentDir, f.RelPath)
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			return nil, nil, err
		}
		if err := os.WriteFile(full, f.Bytes, 0o644); err != nil {
			return nil, nil, err
		}
		entries = append(entries, manifest.SourceEntry{Path: f.RelPath, SHA256Hex: hexSum})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	return byHash, entries, nil
}

func writeManifestPlaceholder(scratch string, m manifest.Manifest) error {
	// A placeholder manifest is written before the Merkle walk only so the
	// directory layout is complete; merkle.SelectFiles always skips
	// manifest.json regardless of its contents, so the placeholder's
	// emptiness does not affect the root.
	placeholder := m
	placeholder.Integrity.MerkleRoot = ""
	placeholder.ShardID = ""
	b, err := placeholder.CanonicalBytes()
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(scratch, "manifest.json"), b, 0o644)
}

func writeSignature(scratch string, sig, pubKey []byte) error {
	sigDir := filepath.Join(scratch, "sig")
	if err := os.MkdirAll(sigDir, 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(sigDir, "manifest.sig"), sig, 0o644); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(sigDir, "publisher.pub"), pubKey, 0o644)
}

func writeTables(scratch string, entities, claims, provenance, spans []table.Row) error {
	graphDir := filepath.Join(scratch, "graph")
	if err := os.MkdirAll(graphDir, 0o755); err != nil {
		return err
	}
	evidenceDir := filepath.Join(scratch, "evidence")
	if err := os.MkdirAll(evidenceDir, 0o755); err != nil {
		return err
	}

	writeOne := func(path string, schema table.Schema, rows []table.Row, primaryKey string) error {
		table.SortRows(rows, primaryKey)
		encoded, err := table.Encode(schema, rows)
		if err != nil {
			return err
		}
		return os.WriteFile(path, encoded, 0o644)
	}

	if err := writeOne(filepath.Join(graphDir, "entities.axc"), table.EntitiesSchema, entities, "entity_id"); err != nil {
		return err
	}
	if err := writeOne(filepath.Join(graphDir, "claims.axc"), table.ClaimsSchema, claims, "claim_id"); err != nil {
		return err
	}
	if err := writeOne(filepath.Join(graphDir, "provenance.axc"), table.ProvenanceSchema, provenance, "provenance_id"); err != nil {
		return err
	}
	return writeOne(filepath.Join(evidenceDir, "spans.axc"), table.SpansSchema, spans, "span_id")
}

func decodeUTF8Slice(content []byte, start, end uint64) (string, bool) {
	if end > uint64(len(content)) || start > end {
		return "", false
	}
	slice := content[start:end]
	if !utf8.Valid(slice) {
		return "", false
	}
	return string(slice), true
}
