// Package detect matches classified files against the signature table and
// reduces the resulting evidence to per-technology confidence scores.
package detect

import (
	"github.com/julianshen/docgenie/internal/signature"
)

// Where records which part of a file a pattern hit.
type Where string

const (
	InPath    Where = "path"
	InContent Where = "content"
)

// Match is one raw pattern hit. Matches are not deduplicated.
type Match struct {
	Technology string
	Category   string
	Pattern    int // index into the signature's pattern list
	Weight     float64
	Path       string
	Where      Where
}

// MatchFile tests every pattern of every signature against the file's path and
// content. Output order follows the table, with the path tested before the
// content for each pattern. The result depends only on its arguments.
func MatchFile(path string, content []byte, table *signature.Table) []Match {
	var out []Match
	text := string(content)
	for _, sig := range table.Signatures {
		for i := range sig.Patterns {
			p := &sig.Patterns[i]
			if p.Applies(signature.TargetPath) && p.MatchString(path) {
				out = append(out, newMatch(sig, i, path, InPath))
			}
			if text != "" && p.Applies(signature.TargetContent) && p.MatchString(text) {
				out = append(out, newMatch(sig, i, path, InContent))
			}
		}
	}
	return out
}

func newMatch(sig signature.Signature, idx int, path string, where Where) Match {
	return Match{
		Technology: sig.Name,
		Category:   sig.Category,
		Pattern:    idx,
		Weight:     sig.Patterns[idx].Weight,
		Path:       path,
		Where:      where,
	}
}
