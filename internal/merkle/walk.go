package merkle

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/time/rate"

	"github.com/axm-labs/shard/internal/errs"
)

// Limits bounds the Merkle walk's resource consumption, per §4.3/§5's
// policy-limit requirement. Zero means "no limit" for that dimension.
type Limits struct {
	MaxFileBytes          int64
	MaxTotalScannedBytes  int64
	MaxFileCount          int
	ChunkBytesPerSecond   int
}

const readChunkSize = 64 * 1024

// SelectFiles walks root (a shard directory), skipping manifest.json and
// everything under sig/, and returns the selected file set keyed by
// relative POSIX path. Symbolic links anywhere abort with E_LAYOUT_DIRTY.
// Reads are streamed in bounded chunks and accounted against lim.
func SelectFiles(ctx context.Context, root string, lim Limits) (map[string][]byte, error) {
	var limiter *rate.Limiter
	if lim.ChunkBytesPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(lim.ChunkBytesPerSecond), readChunkSize)
	}

	files := map[string][]byte{}
	var fileCount int
	var totalBytes int64

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type()&fs.ModeSymlink != 0 {
			return errs.New(errs.CodeLayoutDirty, relOrPath(root, path), "symbolic link not permitted in a shard")
		}
		if d.IsDir() {
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)

		if rel == "manifest.json" || strings.HasPrefix(rel, "sig/") {
			return nil
		}

		info, statErr := d.Info()
		if statErr != nil {
			return statErr
		}
		if lim.MaxFileBytes > 0 && info.Size() > lim.MaxFileBytes {
			return errs.New(errs.CodeLayoutDirty, rel, "file exceeds the per-file size policy limit")
		}

		fileCount++
		if lim.MaxFileCount > 0 && fileCount > lim.MaxFileCount {
			return errs.New(errs.CodeLayoutDirty, rel, "shard exceeds the file-count policy limit")
		}

		content, readErr := readBounded(ctx, path, limiter)
		if readErr != nil {
			return readErr
		}

		totalBytes += int64(len(content))
		if lim.MaxTotalScannedBytes > 0 && totalBytes > lim.MaxTotalScannedBytes {
			return errs.New(errs.CodeLayoutDirty, rel, "shard exceeds the total-scanned-bytes policy limit")
		}

		files[rel] = content
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}
	return files, nil
}

func readBounded(ctx context.Context, path string, limiter *rate.Limiter) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []byte
	buf := make([]byte, readChunkSize)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if limiter != nil {
			if err := limiter.WaitN(ctx, len(buf)); err != nil {
				return nil, err
			}
		}
		n, readErr := f.Read(buf)
		if n > 0 {
			out = append(out, buf[:n]...)
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return nil, fmt.Errorf("merkle: reading %s: %w", path, readErr)
		}
	}
	return out, nil
}

func relOrPath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}

// SortedPaths returns the keys of files sorted by UTF-8 byte order, which is
// Go's native string comparison order.
func SortedPaths(files map[string][]byte) []string {
	paths := make([]string, 0, len(files))
	for p := range files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
