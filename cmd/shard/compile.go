package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/axm-labs/shard/internal/compiler"
	"github.com/axm-labs/shard/internal/config"
	"github.com/axm-labs/shard/internal/manifest"
)

// runCompileCmd implements `shard compile`: reads a newline-delimited
// candidate stream (a positional path or --candidates; stdin when neither is
// given) and a content directory, and writes a sealed shard to --out.
//
// Exit codes:
//
//	0 = shard compiled and self-verified
//	1 = compile failed (invalid candidates, self-verify failure)
//	2 = runtime error (bad flags, unreadable files)
func runCompileCmd(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := flag.NewFlagSet("compile", flag.ContinueOnError)
	cmd.SetOutput(stderr)

	var (
		candidatesPath string
		contentDir     string
		outDir         string
		suite          string
		title          string
		namespace      string
		publisherID    string
		publisherName  string
		licenseSPDX    string
		secretKeyPath  string
		publicKeyPath  string
	)

	cmd.StringVar(&candidatesPath, "candidates", "", "Path to the newline-delimited candidate stream (default: stdin)")
	cmd.StringVar(&contentDir, "content", "", "Directory of source content files to seal (REQUIRED)")
	cmd.StringVar(&outDir, "out", "", "Output shard directory (REQUIRED, must not already exist)")
	cmd.StringVar(&suite, "suite", config.Load().DefaultSuite, "Signature/Merkle suite: legacy or pq (default from AXM_SHARD_DEFAULT_SUITE, else legacy)")
	cmd.StringVar(&title, "title", "", "Shard title (REQUIRED)")
	cmd.StringVar(&namespace, "namespace", "", "Entity namespace (REQUIRED)")
	cmd.StringVar(&publisherID, "publisher-id", "", "Publisher id (REQUIRED)")
	cmd.StringVar(&publisherName, "publisher-name", "", "Publisher display name (REQUIRED)")
	cmd.StringVar(&licenseSPDX, "license", "", "License SPDX identifier (REQUIRED)")
	cmd.StringVar(&secretKeyPath, "secret-key", "", "Path to the publisher's secret signing key (REQUIRED)")
	cmd.StringVar(&publicKeyPath, "public-key", "", "Path to the publisher's public key (REQUIRED)")

	if err := cmd.Parse(args); err != nil {
		return 2
	}
	if candidatesPath == "" && cmd.NArg() > 0 {
		candidatesPath = cmd.Arg(0)
		if err := cmd.Parse(cmd.Args()[1:]); err != nil {
			return 2
		}
	}
	for _, req := range map[string]string{
		"content": contentDir, "out": outDir, "title": title, "namespace": namespace,
		"publisher-id": publisherID, "publisher-name": publisherName, "license": licenseSPDX,
		"secret-key": secretKeyPath, "public-key": publicKeyPath,
	} {
		if req == "" {
			_, _ = fmt.Fprintf(stderr, "Error: missing required flag\n")
			return 2
		}
	}

	var candidateStream io.Reader = os.Stdin
	if candidatesPath != "" {
		f, err := os.Open(candidatesPath)
		if err != nil {
			_, _ = fmt.Fprintf(stderr, "Error: cannot open candidates: %v\n", err)
			return 2
		}
		defer f.Close()
		candidateStream = f
	}

	candidates, err := compiler.DecodeCandidates(candidateStream)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	contentFiles, err := loadContentFiles(contentDir)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	secretKey, err := os.ReadFile(secretKeyPath)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: cannot read secret key: %v\n", err)
		return 2
	}
	publicKey, err := os.ReadFile(publicKeyPath)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: cannot read public key: %v\n", err)
		return 2
	}

	in := compiler.Input{
		Candidates:   candidates,
		ContentFiles: contentFiles,
		Metadata: compiler.Metadata{
			Title:     title,
			Namespace: namespace,
			Publisher: manifest.Publisher{ID: publisherID, Name: publisherName},
			LicenseSPDX: licenseSPDX,
			CreatedAt: time.Now().UTC(),
		},
		Suite:     suite,
		SecretKey: secretKey,
	}

	if err := compiler.Compile(ctx, in, publicKey, outDir); err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: compile failed: %v\n", err)
		return 1
	}

	_, _ = fmt.Fprintf(stdout, "compiled shard at %s\n", outDir)
	return 0
}

func loadContentFiles(dir string) ([]compiler.ContentFile, error) {
	var files []compiler.ContentFile
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(dir, path)
		if relErr != nil {
			return relErr
		}
		data, readErr := os.ReadFile(path)
		if readErr != nil {
			return readErr
		}
		files = append(files, compiler.ContentFile{RelPath: filepath.ToSlash(rel), Bytes: data})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reading content directory: %w", err)
	}
	return files, nil
}
