package gateway

import (
	"io"
	"sort"

	"github.com/google/go-github/v57/github"
)

const (
	// sniffLen bounds the prefix inspected for binary detection.
	sniffLen = 8000

	// binaryThreshold is the fraction of non-printable bytes above which a
	// prefix is treated as binary.
	binaryThreshold = 0.30
)

// isBinary reports whether a content prefix looks like binary data: any null
// byte, or too many non-printable bytes. Matches the heuristic git uses.
func isBinary(prefix []byte) bool {
	if len(prefix) > sniffLen {
		prefix = prefix[:sniffLen]
	}
	if len(prefix) == 0 {
		return false
	}

	nonPrintable := 0
	for _, b := range prefix {
		if b == 0x00 {
			return true
		}
		if b < 0x08 || (b > 0x0d && b < 0x20) || b == 0x7f {
			nonPrintable++
		}
	}
	return float64(nonPrintable)/float64(len(prefix)) > binaryThreshold
}

// normalizeFileContent applies the binary and size policy to raw content read
// from r. declaredSize is the size the remote API reported for the file; at
// most maxBytes are ever read from r, so oversized payloads are never fully
// decoded into memory.
func normalizeFileContent(path string, declaredSize int64, r io.Reader, maxBytes int64) (*FileContent, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxBytes))
	if err != nil {
		return nil, err
	}

	fc := &FileContent{
		Path:      path,
		SizeBytes: declaredSize,
	}

	if isBinary(data) {
		fc.Encoding = EncodingBinary
		return fc, nil
	}

	fc.Content = string(data)
	if declaredSize > maxBytes {
		fc.Encoding = EncodingTruncated
		fc.Truncated = true
	} else {
		fc.Encoding = EncodingText
	}
	return fc, nil
}

// normalizeRepository maps a go-github repository record onto the shared
// summary shape.
func normalizeRepository(repo *github.Repository) RepositorySummary {
	return RepositorySummary{
		FullName:      repo.GetFullName(),
		Description:   repo.GetDescription(),
		Private:       repo.GetPrivate(),
		DefaultBranch: repo.GetDefaultBranch(),
		URL:           repo.GetHTMLURL(),
		CreatedAt:     repo.GetCreatedAt().Time,
		UpdatedAt:     repo.GetUpdatedAt().Time,
		PushedAt:      repo.GetPushedAt().Time,
		Stars:         repo.GetStargazersCount(),
		Forks:         repo.GetForksCount(),
		Language:      repo.GetLanguage(),
	}
}

// normalizeEntry maps one row of a contents listing onto DirectoryEntry.
func normalizeEntry(rc *github.RepositoryContent) DirectoryEntry {
	kind := EntryFile
	if rc.GetType() == "dir" {
		kind = EntryDirectory
	}
	return DirectoryEntry{
		Name:      rc.GetName(),
		Path:      rc.GetPath(),
		Kind:      kind,
		SizeBytes: int64(rc.GetSize()),
	}
}

// normalizeCodeHit maps one code-search result onto SearchHit, carrying the
// first matched text fragment when the API returned one. Rank is assigned by
// the caller from result ordering.
func normalizeCodeHit(res *github.CodeResult) SearchHit {
	hit := SearchHit{
		Repository: res.GetRepository().GetFullName(),
		Path:       res.GetPath(),
	}
	if len(res.TextMatches) > 0 {
		hit.Fragment = res.TextMatches[0].GetFragment()
	}
	return hit
}

// normalizeFileHit maps one filename-search result onto SearchHit. Filename
// queries populate Fragment with the matched name, not file text.
func normalizeFileHit(res *github.CodeResult) SearchHit {
	return SearchHit{
		Repository: res.GetRepository().GetFullName(),
		Path:       res.GetPath(),
		Fragment:   res.GetName(),
	}
}

// sortSummaries orders summaries client-side for a given sort key: most
// recent first for the time-based keys, ascending alphabetical for full_name.
// Applied after fetching in case the remote endpoint ignored the sort
// parameter.
func sortSummaries(repos []RepositorySummary, sortKey string) {
	switch sortKey {
	case "full_name":
		sort.SliceStable(repos, func(i, j int) bool {
			return repos[i].FullName < repos[j].FullName
		})
	case "created":
		sort.SliceStable(repos, func(i, j int) bool {
			return repos[i].CreatedAt.After(repos[j].CreatedAt)
		})
	case "pushed":
		sort.SliceStable(repos, func(i, j int) bool {
			return repos[i].PushedAt.After(repos[j].PushedAt)
		})
	default: // updated
		sort.SliceStable(repos, func(i, j int) bool {
			return repos[i].UpdatedAt.After(repos[j].UpdatedAt)
		})
	}
}
