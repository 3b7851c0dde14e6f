package verifier

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/axm-labs/shard/internal/errs"
)

var requiredFiles = []string{
	"manifest.json",
	"graph/entities.axc",
	"graph/claims.axc",
	"graph/provenance.axc",
	"evidence/spans.axc",
}

// permittedRootEntries are the only names allowed directly under the shard
// directory (§3.1: "any file outside the permitted set... verification
// fails"). ext/ is optional and, when present, may hold any number of
// additional columnar tables, so it is permitted but not required.
var permittedRootEntries = map[string]bool{
	"manifest.json": true,
	"sig":           true,
	"content":       true,
	"graph":         true,
	"evidence":      true,
	"ext":           true,
}

// permittedSigEntries are the only names allowed under sig/ (§4.8 step 1:
// "no extra files under the signature directory"). A file planted alongside
// the real signature there would be invisible to the Merkle walk, which
// excludes all of sig/ from the sealed tree, so this directory needs its own
// exhaustive check.
var permittedSigEntries = map[string]bool{
	"manifest.sig":  true,
	"publisher.pub": true,
}

// checkLayout verifies the shard directory exists, contains every required
// file, contains no unpermitted entries at root or under sig/, and contains
// no symbolic links anywhere in its tree (§4.8 LAYOUT_OK).
func checkLayout(shardDir string) (errs.Findings, bool) {
	var findings errs.Findings

	if !dirExists(shardDir) {
		return errs.Findings{errs.New(errs.CodeLayoutMissing, shardDir, "shard directory does not exist")}, false
	}

	walkErr := filepath.WalkDir(shardDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type()&fs.ModeSymlink != 0 {
			rel, _ := filepath.Rel(shardDir, path)
			findings = append(findings, errs.New(errs.CodeLayoutDirty, filepath.ToSlash(rel), "symbolic link not permitted in a shard"))
		}
		return nil
	})
	if walkErr != nil {
		findings = append(findings, errs.New(errs.CodeLayoutMissing, shardDir, walkErr.Error()))
		return findings, false
	}

	findings = append(findings, checkPermittedEntries(shardDir, "", permittedRootEntries)...)
	findings = append(findings, checkPermittedEntries(shardDir, "sig", permittedSigEntries)...)

	for _, rel := range requiredFiles {
		if !fileExists(joinPath(shardDir, filepath.FromSlash(rel))) {
			findings = append(findings, errs.New(errs.CodeLayoutMissing, rel, "required shard file is missing"))
		}
	}
	if !dirExists(joinPath(shardDir, "content")) {
		findings = append(findings, errs.New(errs.CodeLayoutMissing, "content", "required shard directory is missing"))
	}

	return findings, !hasBlocking(findings)
}

// checkPermittedEntries lists the directory at shardDir/subDir (shardDir
// itself when subDir is empty) and reports E_LAYOUT_DIRTY for any entry
// whose name is not in permitted. A missing subDir is not itself an error
// here; its absence is caught by the required-file checks.
func checkPermittedEntries(shardDir, subDir string, permitted map[string]bool) errs.Findings {
	var findings errs.Findings
	dir := shardDir
	if subDir != "" {
		dir = joinPath(shardDir, subDir)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	for _, e := range entries {
		if !permitted[e.Name()] {
			rel := e.Name()
			if subDir != "" {
				rel = filepath.ToSlash(filepath.Join(subDir, e.Name()))
			}
			findings = append(findings, errs.New(errs.CodeLayoutDirty, rel, "unexpected entry not in the permitted set"))
		}
	}
	return findings
}

func hasBlocking(findings errs.Findings) bool {
	for _, f := range findings {
		if f.Code == errs.CodeLayoutMissing || f.Code == errs.CodeLayoutDirty {
			return true
		}
	}
	return false
}
