package verifier

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/axm-labs/shard/internal/errs"
	"github.com/axm-labs/shard/internal/manifest"
)

// checkByteRanges re-reads every sealed content file, confirms it still
// hashes to the sha256 the manifest claims for it, and confirms every
// span's (byte_start, byte_end) slices out exactly its recorded text
// (§4.8 BYTES_OK).
func checkByteRanges(shardDir string, ts tableSet, m *manifest.Manifest) (errs.Findings, bool) {
	var findings errs.Findings

	contentByHash := map[string][]byte{}
	for _, s := range m.Sources {
		data, err := os.ReadFile(joinPath(shardDir, "content", s.Path))
		if err != nil {
			findings = append(findings, errs.New(errs.CodeRefSource, "content/"+s.Path, "sealed content file could not be read"))
			continue
		}
		sum := sha256.Sum256(data)
		hexSum := hex.EncodeToString(sum[:])
		if hexSum != s.SHA256Hex {
			findings = append(findings, errs.New(errs.CodeRefSource, "content/"+s.Path, "sealed content file no longer matches its recorded sha256"))
			continue
		}
		contentByHash[hexSum] = data
	}
	if len(findings) > 0 {
		return findings, false
	}

	for i, row := range ts.Spans {
		sourceHash, _ := row["source_hash"].(string)
		start, _ := row["byte_start"].(uint64)
		end, _ := row["byte_end"].(uint64)
		text, _ := row["text"].(string)

		content, ok := contentByHash[sourceHash]
		if !ok {
			findings = append(findings, errs.New(errs.CodeRefSource, rowLoc("spans", i), "span's source_hash names no sealed content"))
			continue
		}
		actual, ok := sliceUTF8(content, start, end)
		if !ok || actual != text {
			findings = append(findings, errs.New(errs.CodeRefSource, rowLoc("spans", i),
				fmt.Sprintf("span text no longer matches the byte range %s[%d:%d] it claims", sourceHash, start, end)))
		}
	}

	for i, row := range ts.Provenance {
		sourceHash, _ := row["source_hash"].(string)
		start, _ := row["byte_start"].(uint64)
		end, _ := row["byte_end"].(uint64)

		content, ok := contentByHash[sourceHash]
		if !ok {
			findings = append(findings, errs.New(errs.CodeRefSource, rowLoc("provenance", i), "provenance row's source_hash names no sealed content"))
			continue
		}
		if start > end || end > uint64(len(content)) {
			findings = append(findings, errs.New(errs.CodeRefSource, rowLoc("provenance", i), "provenance byte range falls outside its source content"))
		}
	}

	return findings, len(findings) == 0
}

func sliceUTF8(content []byte, start, end uint64) (string, bool) {
	if end > uint64(len(content)) || start > end {
		return "", false
	}
	slice := content[start:end]
	if !utf8.Valid(slice) {
		return "", false
	}
	return string(slice), true
}
