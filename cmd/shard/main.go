// Command shard compiles candidate streams into sealed, content-addressed
// shards and verifies existing ones.
//
// Grounded on the teacher's cmd/helm/main.go dispatcher shape (flag.FlagSet
// subcommands, a Run(args, stdout, stderr) int entrypoint for testability),
// trimmed to the two subcommands this tool actually has.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/axm-labs/shard/internal/config"
	"github.com/axm-labs/shard/internal/obslog"
)

func main() {
	os.Exit(Run(os.Args, os.Stdout, os.Stderr))
}

// Run is the CLI entrypoint, separated from main so tests can drive it
// without touching the process's real stdio or exit code.
func Run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 2 {
		printUsage(stderr)
		return 2
	}

	cfg := config.Load()
	obsCfg := obslog.DefaultConfig()
	obsCfg.OTLPEndpoint = cfg.OTLPEndpoint
	obsCfg.Enabled = cfg.OTLPEnabled

	ctx := context.Background()
	provider, err := obslog.NewProvider(ctx, obsCfg)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: observability setup failed: %v\n", err)
		return 2
	}
	defer func() { _ = provider.Shutdown(ctx) }()

	switch args[1] {
	case "compile":
		ctx, done := provider.StartStage(ctx, "cmd.compile")
		defer done()
		return runCompileCmd(ctx, args[2:], stdout, stderr)
	case "verify":
		ctx, done := provider.StartStage(ctx, "cmd.verify")
		defer done()
		return runVerifyCmd(ctx, args[2:], stdout, stderr)
	case "help", "--help", "-h":
		printUsage(stdout)
		return 0
	default:
		_, _ = fmt.Fprintf(stderr, "Unknown command: %s\n", args[1])
		printUsage(stderr)
		return 2
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "USAGE:")
	fmt.Fprintln(w, "  shard <command> [flags]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "COMMANDS:")
	fmt.Fprintln(w, "  compile   Compile a candidate stream into a sealed shard")
	fmt.Fprintln(w, "  verify    Verify a sealed shard directory")
	fmt.Fprintln(w, "  help      Show this help")
	fmt.Fprintln(w, "")
}
