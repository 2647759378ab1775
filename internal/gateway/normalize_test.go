package gateway

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsBinary(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want bool
	}{
		{name: "empty", data: nil, want: false},
		{name: "plain text", data: []byte("package main\n\nfunc main() {}\n"), want: false},
		{name: "utf8 text", data: []byte("héllo wörld\n"), want: false},
		{name: "null byte", data: []byte("abc\x00def"), want: true},
		{name: "png header", data: []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a, 0x00}, want: true},
		{name: "mostly control bytes", data: bytes.Repeat([]byte{0x01, 'a'}, 100), want: true},
		{name: "tabs and newlines are printable", data: []byte("a\tb\nc\r\n"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isBinary(tt.data))
		})
	}
}

func TestIsBinarySniffsOnlyPrefix(t *testing.T) {
	// A null byte past the sniff window must not flip the verdict.
	data := append(bytes.Repeat([]byte{'a'}, sniffLen), 0x00)
	assert.False(t, isBinary(data))
}

func TestNormalizeFileContentText(t *testing.T) {
	body := "hello, world\n"
	fc, err := normalizeFileContent("docs/readme.md", int64(len(body)), strings.NewReader(body), 1024)
	require.NoError(t, err)

	assert.Equal(t, "docs/readme.md", fc.Path)
	assert.Equal(t, EncodingText, fc.Encoding)
	assert.Equal(t, body, fc.Content)
	assert.Equal(t, int64(len(body)), fc.SizeBytes)
	assert.False(t, fc.Truncated)
}

func TestNormalizeFileContentBinary(t *testing.T) {
	body := string([]byte{0x00, 0x01, 0x02, 'a', 'b'})
	fc, err := normalizeFileContent("assets/logo.png", int64(len(body)), strings.NewReader(body), 1024)
	require.NoError(t, err)

	assert.Equal(t, EncodingBinary, fc.Encoding)
	assert.Empty(t, fc.Content, "binary payload must not be returned")
	assert.Equal(t, int64(len(body)), fc.SizeBytes)
	assert.False(t, fc.Truncated)
}

func TestNormalizeFileContentTruncated(t *testing.T) {
	const maxBytes = 16
	body := strings.Repeat("x", 100)

	fc, err := normalizeFileContent("big.txt", int64(len(body)), strings.NewReader(body), maxBytes)
	require.NoError(t, err)

	assert.Equal(t, EncodingTruncated, fc.Encoding)
	assert.True(t, fc.Truncated)
	assert.Len(t, fc.Content, maxBytes, "content must stop at the ceiling")
	assert.Equal(t, int64(100), fc.SizeBytes, "size reports the full declared size")
}

func TestNormalizeFileContentExactlyAtCeiling(t *testing.T) {
	const maxBytes = 32
	body := strings.Repeat("y", maxBytes)

	fc, err := normalizeFileContent("edge.txt", int64(len(body)), strings.NewReader(body), maxBytes)
	require.NoError(t, err)

	assert.Equal(t, EncodingText, fc.Encoding)
	assert.False(t, fc.Truncated, "a file exactly at the ceiling is not truncated")
	assert.Equal(t, body, fc.Content)
}

func TestSortSummaries(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	mk := func(name string, created, updated, pushed int) RepositorySummary {
		return RepositorySummary{
			FullName:  name,
			CreatedAt: base.Add(time.Duration(created) * time.Hour),
			UpdatedAt: base.Add(time.Duration(updated) * time.Hour),
			PushedAt:  base.Add(time.Duration(pushed) * time.Hour),
		}
	}

	fresh := func() []RepositorySummary {
		return []RepositorySummary{
			mk("o/bravo", 3, 1, 2),
			mk("o/alpha", 1, 3, 1),
			mk("o/charlie", 2, 2, 3),
		}
	}

	names := func(repos []RepositorySummary) []string {
		out := make([]string, len(repos))
		for i, r := range repos {
			out[i] = r.FullName
		}
		return out
	}

	t.Run("full_name ascending", func(t *testing.T) {
		repos := fresh()
		sortSummaries(repos, "full_name")
		assert.Equal(t, []string{"o/alpha", "o/bravo", "o/charlie"}, names(repos))
	})

	t.Run("created newest first", func(t *testing.T) {
		repos := fresh()
		sortSummaries(repos, "created")
		assert.Equal(t, []string{"o/bravo", "o/charlie", "o/alpha"}, names(repos))
	})

	t.Run("updated newest first", func(t *testing.T) {
		repos := fresh()
		sortSummaries(repos, "updated")
		assert.Equal(t, []string{"o/alpha", "o/charlie", "o/bravo"}, names(repos))
	})

	t.Run("pushed newest first", func(t *testing.T) {
		repos := fresh()
		sortSummaries(repos, "pushed")
		assert.Equal(t, []string{"o/charlie", "o/bravo", "o/alpha"}, names(repos))
	})

	t.Run("unknown key falls back to updated", func(t *testing.T) {
		repos := fresh()
		sortSummaries(repos, "bogus")
		assert.Equal(t, []string{"o/alpha", "o/charlie", "o/bravo"}, names(repos))
	})
}
