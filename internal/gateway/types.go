// Package gateway translates tool invocations into GitHub API and local git
// operations, normalizing their responses into a uniform result shape.
package gateway

import "time"

// Encoding classifies how file content is represented in a FileContent.
type Encoding string

const (
	// EncodingText means content holds the full decoded file.
	EncodingText Encoding = "text"
	// EncodingBinary means the file was detected as binary; content is empty.
	EncodingBinary Encoding = "binary"
	// EncodingTruncated means content holds only a leading slice of the file.
	EncodingTruncated Encoding = "truncated"
)

// RepositorySummary is an immutable snapshot of a remote repository record.
type RepositorySummary struct {
	FullName      string    `json:"full_name"`
	Description   string    `json:"description,omitempty"`
	Private       bool      `json:"private"`
	DefaultBranch string    `json:"default_branch"`
	URL           string    `json:"url"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	PushedAt      time.Time `json:"pushed_at"`
	Stars         int       `json:"stars"`
	Forks         int       `json:"forks"`
	Language      string    `json:"language,omitempty"`
}

// EntryKind distinguishes files from directories in a listing.
type EntryKind string

const (
	EntryFile      EntryKind = "file"
	EntryDirectory EntryKind = "directory"
)

// DirectoryEntry is one row of a repository listing. Ordering follows the
// remote API and is not guaranteed stable across calls.
type DirectoryEntry struct {
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	Kind      EntryKind `json:"kind"`
	SizeBytes int64     `json:"size_bytes"`
}

// FileContent is the normalized content of a single remote file.
//
// Invariants: binary content is always empty with Truncated false; content
// over the size ceiling holds only the leading slice with Truncated true.
type FileContent struct {
	Path      string   `json:"path"`
	Encoding  Encoding `json:"encoding"`
	Content   string   `json:"content"`
	SizeBytes int64    `json:"size_bytes"`
	Truncated bool     `json:"truncated"`
}

// SearchHit is one result of a code-content or filename search. The two
// query kinds share this shape but populate Fragment differently: code
// search carries a matched text fragment, filename search carries the name.
// Rank is the 1-based position in the API's relevance ordering; code-search
// results carry no numeric score.
type SearchHit struct {
	Repository string `json:"repository"`
	Path       string `json:"path"`
	Fragment   string `json:"fragment,omitempty"`
	Rank       int    `json:"rank,omitempty"`
}

// CloneResult describes a completed local clone.
type CloneResult struct {
	RemoteName string `json:"remote_name"`
	LocalPath  string `json:"local_path"`
	Branch     string `json:"branch"`
	CommitSHA  string `json:"commit_sha"`
}

// LocalRepositoryRecord describes one checkout found under the clone base
// directory. Recomputed on every listing call, never cached.
type LocalRepositoryRecord struct {
	Name            string `json:"name"`
	LocalPath       string `json:"local_path"`
	RemoteOriginURL string `json:"remote_origin_url,omitempty"`
	CurrentBranch   string `json:"current_branch,omitempty"`
	CommitSHA       string `json:"commit_sha,omitempty"`
}
