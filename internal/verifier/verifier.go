// Package verifier implements the shard verifier: a total, deterministic
// function from an on-disk directory (plus a trusted public key) to a
// pass/fail decision with a sorted list of structured errors.
//
// Grounded on the teacher's pkg/verifier/verifier.go — the same
// zero-network-dependency, ordered-checks-with-accumulator design — rewired
// to the spec's literal state machine (INIT → LAYOUT_OK → MANIFEST_OK →
// SIG_OK → MERKLE_OK → TABLES_OK → REFS_OK → BYTES_OK → PASS) and its E_*
// error codes instead of the teacher's free-text check reasons.
package verifier

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/axm-labs/shard/internal/config"
	"github.com/axm-labs/shard/internal/errs"
	"github.com/axm-labs/shard/internal/merkle"
)

// tracer and log read the global OpenTelemetry/slog providers cmd/shard
// installs before dispatching (see internal/compiler's identical comment);
// callers that never touch obslog, such as the test suite, get the otel
// no-op implementation instead.
var (
	tracer = otel.Tracer("axm-shard")
	meter  = otel.Meter("axm-shard")
	log    = slog.Default().With("component", "verifier")
)

var (
	findingsCounterOnce sync.Once
	findingsCounter     metric.Int64Counter
)

func findingsCounterInstrument() metric.Int64Counter {
	findingsCounterOnce.Do(func() {
		c, err := meter.Int64Counter("verifier.findings_total",
			metric.WithDescription("structured findings emitted per verify run, by code"))
		if err != nil {
			log.Error("creating findings_total counter", "error", err)
			return
		}
		findingsCounter = c
	})
	return findingsCounter
}

// stage starts a span for one verification check and logs its entry,
// returning a done func that ends the span and logs the result.
func stage(ctx context.Context, name string) (context.Context, func()) {
	ctx, span := tracer.Start(ctx, name)
	log.DebugContext(ctx, "stage started", "stage", name)
	return ctx, func() {
		log.DebugContext(ctx, "stage finished", "stage", name)
		span.End()
	}
}

// State names one stage of the verification state machine.
type State string

const (
	StateInit       State = "INIT"
	StateLayoutOK   State = "LAYOUT_OK"
	StateManifestOK State = "MANIFEST_OK"
	StateSigOK      State = "SIG_OK"
	StateMerkleOK   State = "MERKLE_OK"
	StateTablesOK   State = "TABLES_OK"
	StateRefsOK     State = "REFS_OK"
	StateBytesOK    State = "BYTES_OK"
	StatePass       State = "PASS"
	StateFail       State = "FAIL"
)

// Status is the caller-facing pass/fail outcome.
type Status string

const (
	StatusPass Status = "PASS"
	StatusFail Status = "FAIL"
)

// Report is the verifier's total result.
type Report struct {
	Status     Status
	FinalState State
	Errors     errs.Findings
	ShardDir   string
}

// DefaultLimits returns the Merkle walk's default resource policy limits,
// read from the environment the same way the compiler reads them.
func DefaultLimits() merkle.Limits {
	return config.Load().Limits()
}

// Run verifies shardDir against trustedPubKey and returns a total report.
// It never short-circuits on a single failed check except where the state
// machine itself gates a later stage on an earlier one succeeding (no table
// read before LAYOUT_OK; no manifest trust before SIG_OK), per §4.8.
func Run(ctx context.Context, shardDir string, trustedPubKey []byte, limits merkle.Limits) Report {
	ctx, runDone := stage(ctx, "verifier.run")
	defer runDone()
	log.InfoContext(ctx, "verify starting", "shard_dir", shardDir)

	report := Report{ShardDir: shardDir, FinalState: StateInit}
	var findings errs.Findings

	layoutCtx, layoutDone := stage(ctx, "verifier.check_layout")
	layoutFindings, layoutOK := checkLayout(shardDir)
	layoutDone()
	findings = append(findings, layoutFindings...)
	if !layoutOK {
		return finish(layoutCtx, report, findings, StateInit)
	}
	report.FinalState = StateLayoutOK

	manifestCtx, manifestDone := stage(ctx, "verifier.check_manifest")
	manifestBytes, m, manifestFindings := checkManifest(shardDir)
	manifestDone()
	findings = append(findings, manifestFindings...)
	if m == nil {
		return finish(manifestCtx, report, findings, StateLayoutOK)
	}
	report.FinalState = StateManifestOK

	_, suiteDone := stage(ctx, "verifier.detect_suites")
	sigSuite, merkleSuite, suiteFindings := detectSuites(m, publicKeyLen(shardDir))
	suiteDone()
	findings = append(findings, suiteFindings...)
	if len(suiteFindings) > 0 {
		return finish(ctx, report, findings, StateManifestOK)
	}

	sigCtx, sigDone := stage(ctx, "verifier.check_signature")
	sigFindings, sigOK := checkSignature(shardDir, manifestBytes, sigSuite, trustedPubKey)
	sigDone()
	findings = append(findings, sigFindings...)
	if !sigOK {
		// Past this point the manifest's own claims (other than the suite
		// field already used above) are untrusted, so the Merkle,
		// schema, referential and byte-range checks are not run against
		// it.
		return finish(sigCtx, report, findings, StateManifestOK)
	}
	report.FinalState = StateSigOK

	merkleCtx, merkleDone := stage(ctx, "verifier.check_merkle")
	merkleFindings, merkleOK := checkMerkle(merkleCtx, shardDir, merkleSuite, m, limits)
	merkleDone()
	findings = append(findings, merkleFindings...)
	if !merkleOK {
		return finish(merkleCtx, report, findings, StateSigOK)
	}
	report.FinalState = StateMerkleOK

	tablesCtx, tablesDone := stage(ctx, "verifier.check_tables")
	tables, tableFindings, tablesOK := checkTables(tablesCtx, shardDir)
	tablesDone()
	findings = append(findings, tableFindings...)
	if !tablesOK {
		return finish(tablesCtx, report, findings, StateMerkleOK)
	}
	report.FinalState = StateTablesOK

	refsCtx, refsDone := stage(ctx, "verifier.check_references")
	refFindings, refsOK := checkReferences(tables, m)
	refsDone()
	findings = append(findings, refFindings...)
	if !refsOK {
		return finish(refsCtx, report, findings, StateTablesOK)
	}
	report.FinalState = StateRefsOK

	bytesCtx, bytesDone := stage(ctx, "verifier.check_byte_ranges")
	byteFindings, bytesOK := checkByteRanges(shardDir, tables, m)
	bytesDone()
	findings = append(findings, byteFindings...)
	if !bytesOK {
		return finish(bytesCtx, report, findings, StateRefsOK)
	}
	report.FinalState = StateBytesOK

	return finish(ctx, report, findings, StatePass)
}

func finish(ctx context.Context, report Report, findings errs.Findings, final State) Report {
	sort.Sort(findings)
	report.Errors = findings
	report.FinalState = final
	if len(findings) == 0 && final == StatePass {
		report.Status = StatusPass
	} else {
		report.Status = StatusFail
	}

	if counter := findingsCounterInstrument(); counter != nil {
		for _, f := range findings {
			counter.Add(ctx, 1, metric.WithAttributes(attribute.String("code", string(f.Code))))
		}
	}
	log.InfoContext(ctx, "verify finished", "status", string(report.Status), "final_state", string(report.FinalState), "findings", len(findings))

	return report
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func joinPath(shardDir string, parts ...string) string {
	return filepath.Join(append([]string{shardDir}, parts...)...)
}
