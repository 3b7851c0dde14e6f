package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/axm-labs/shard/internal/verifier"
)

// runVerifyCmd implements `shard verify <shard-dir> --trusted-key <pub>`; the
// shard directory may also be given as --bundle.
//
// Exit codes:
//
//	0 = verification passed
//	1 = verification failed
//	2 = runtime error (bad flags, unreadable files)
func runVerifyCmd(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := flag.NewFlagSet("verify", flag.ContinueOnError)
	cmd.SetOutput(stderr)

	var (
		shardDir    string
		trustedKey  string
		jsonOutput  bool
		jsonOutFile string
	)

	cmd.StringVar(&shardDir, "bundle", "", "Path to the shard directory (REQUIRED)")
	cmd.StringVar(&trustedKey, "trusted-key", "", "Path to the trusted publisher public key (REQUIRED)")
	cmd.BoolVar(&jsonOutput, "json", false, "Output the report as JSON to stdout")
	cmd.StringVar(&jsonOutFile, "json-out", "", "Write the structured report to file")

	if err := cmd.Parse(args); err != nil {
		return 2
	}
	if shardDir == "" && cmd.NArg() > 0 {
		shardDir = cmd.Arg(0)
		if err := cmd.Parse(cmd.Args()[1:]); err != nil {
			return 2
		}
	}
	if shardDir == "" {
		_, _ = fmt.Fprintln(stderr, "Error: a shard directory is required (positional argument or --bundle)")
		return 2
	}
	if trustedKey == "" {
		_, _ = fmt.Fprintln(stderr, "Error: --trusted-key is required")
		return 2
	}

	var trustedPubKey []byte
	if trustedKey != "" {
		var err error
		trustedPubKey, err = os.ReadFile(trustedKey)
		if err != nil {
			_, _ = fmt.Fprintf(stderr, "Error: cannot read trusted key: %v\n", err)
			return 2
		}
	}

	report := verifier.Run(ctx, shardDir, trustedPubKey, verifier.DefaultLimits())

	if jsonOutFile != "" {
		data, _ := json.MarshalIndent(report, "", "  ")
		if err := os.WriteFile(jsonOutFile, data, 0o644); err != nil {
			_, _ = fmt.Fprintf(stderr, "Error: cannot write report: %v\n", err)
			return 2
		}
	}

	if jsonOutput {
		data, _ := json.MarshalIndent(report, "", "  ")
		_, _ = fmt.Fprintln(stdout, string(data))
	} else if report.Status == verifier.StatusPass {
		_, _ = fmt.Fprintf(stdout, "PASS: %s\n", shardDir)
	} else {
		_, _ = fmt.Fprintf(stdout, "FAIL: %s (reached %s)\n", shardDir, report.FinalState)
		for _, f := range report.Errors {
			_, _ = fmt.Fprintf(stdout, "  - %s\n", f.Error())
		}
	}

	if report.Status != verifier.StatusPass {
		return 1
	}
	return 0
}
