package gateway

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/go-github/v57/github"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/fyrsmithlabs/ghconnect/internal/config"
	"github.com/fyrsmithlabs/ghconnect/internal/sanitize"
)

const (
	// maxListLimit caps list_repositories to one bounded page.
	maxListLimit = 100

	// codeSearchCap and fileSearchCap bound search results per call.
	codeSearchCap = 15
	fileSearchCap = 20
)

// RemoteClient owns the authenticated session to the GitHub API and exposes
// the typed remote operations. It holds no cross-call state beyond the
// underlying HTTP session.
type RemoteClient struct {
	gh           *github.Client
	logger       *zap.Logger
	maxFileBytes int64
}

// NewRemoteClient creates a remote client. A missing token is not an error
// here: operations report Unauthorized on first use instead, so the process
// can start without a credential.
func NewRemoteClient(ctx context.Context, token config.Secret, maxFileBytes int64, logger *zap.Logger) *RemoteClient {
	c := &RemoteClient{
		logger:       logger,
		maxFileBytes: maxFileBytes,
	}
	if maxFileBytes <= 0 {
		c.maxFileBytes = config.DefaultMaxFileBytes
	}
	if token.IsSet() {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token.Value()})
		c.gh = github.NewClient(oauth2.NewClient(ctx, ts))
	}
	return c
}

// ready guards every operation against a missing credential.
func (c *RemoteClient) ready() error {
	if c.gh == nil {
		return NewToolError(ErrUnauthorized, "no GitHub credential configured; set GITHUB_TOKEN")
	}
	return nil
}

// ListRepositories lists the authenticated user's repositories. limit is
// already validated and clamped by the dispatcher; results are ordered by the
// requested sort key.
func (c *RemoteClient) ListRepositories(ctx context.Context, repoType, sortKey string, limit int) ([]RepositorySummary, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}

	opts := &github.RepositoryListOptions{
		Type:        repoType,
		Sort:        sortKey,
		ListOptions: github.ListOptions{PerPage: limit},
	}
	repos, _, err := c.gh.Repositories.List(ctx, "", opts)
	if err != nil {
		return nil, classify(err)
	}

	summaries := make([]RepositorySummary, 0, len(repos))
	for _, repo := range repos {
		summaries = append(summaries, normalizeRepository(repo))
	}

	// The API applies the sort remote-side; re-sorting keeps the documented
	// order even when an endpoint ignores the parameter.
	sortSummaries(summaries, sortKey)
	if len(summaries) > limit {
		summaries = summaries[:limit]
	}

	c.logger.Debug("listed repositories",
		zap.String("type", repoType),
		zap.String("sort", sortKey),
		zap.Int("count", len(summaries)))
	return summaries, nil
}

// GetRepository fetches a single repository summary by owner/name.
func (c *RemoteClient) GetRepository(ctx context.Context, repoName string) (*RepositorySummary, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	owner, name, err := sanitize.ParseRepoName(repoName)
	if err != nil {
		return nil, classify(err)
	}

	repo, _, err := c.gh.Repositories.Get(ctx, owner, name)
	if err != nil {
		return nil, classify(err)
	}
	summary := normalizeRepository(repo)
	return &summary, nil
}

// Browse lists the contents of a repository path. An empty path means the
// repository root; an empty ref means the repository's default branch.
func (c *RemoteClient) Browse(ctx context.Context, repoName, path, ref string) ([]DirectoryEntry, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	owner, name, err := sanitize.ParseRepoName(repoName)
	if err != nil {
		return nil, classify(err)
	}

	fileContent, dirContent, _, err := c.gh.Repositories.GetContents(ctx, owner, name, path,
		&github.RepositoryContentGetOptions{Ref: ref})
	if err != nil {
		return nil, classify(err)
	}

	// A path that resolves to a single file lists as one entry.
	if fileContent != nil {
		return []DirectoryEntry{normalizeEntry(fileContent)}, nil
	}

	entries := make([]DirectoryEntry, 0, len(dirContent))
	for _, rc := range dirContent {
		entries = append(entries, normalizeEntry(rc))
	}
	return entries, nil
}

// ReadFile fetches one file's content with the binary and size policy
// applied. A path that resolves to a directory fails with NotFound,
// signaled distinctly from a missing path.
func (c *RemoteClient) ReadFile(ctx context.Context, repoName, filePath, ref string) (*FileContent, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	owner, name, err := sanitize.ParseRepoName(repoName)
	if err != nil {
		return nil, classify(err)
	}
	if filePath == "" {
		return nil, invalidArgument("file_path", "file path cannot be empty")
	}

	opts := &github.RepositoryContentGetOptions{Ref: ref}
	fileContent, dirContent, _, err := c.gh.Repositories.GetContents(ctx, owner, name, filePath, opts)
	if err != nil {
		return nil, classify(err)
	}
	if dirContent != nil || fileContent == nil {
		return nil, NewToolError(ErrNotFound, "%q resolves to a directory, not a file", filePath)
	}

	declaredSize := int64(fileContent.GetSize())

	// Oversized blobs are streamed and only the leading slice is decoded;
	// the full payload never lands in memory.
	if declaredSize > c.maxFileBytes {
		rc, _, err := c.gh.Repositories.DownloadContents(ctx, owner, name, filePath, opts)
		if err != nil {
			return nil, classify(err)
		}
		defer rc.Close()
		fc, err := normalizeFileContent(filePath, declaredSize, rc, c.maxFileBytes)
		if err != nil {
			return nil, classify(err)
		}
		return fc, nil
	}

	decoded, err := fileContent.GetContent()
	if err != nil {
		return nil, classify(fmt.Errorf("failed to decode content for %s: %w", filePath, err))
	}
	fc, err := normalizeFileContent(filePath, declaredSize, strings.NewReader(decoded), c.maxFileBytes)
	if err != nil {
		return nil, classify(err)
	}
	return fc, nil
}

// SearchCode searches file content within one repository. language narrows
// the query string; an unknown language simply yields zero matches.
func (c *RemoteClient) SearchCode(ctx context.Context, repoName, query, language string) ([]SearchHit, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	if _, _, err := sanitize.ParseRepoName(repoName); err != nil {
		return nil, classify(err)
	}

	q := fmt.Sprintf("repo:%s %s", repoName, query)
	if language != "" {
		q += " language:" + language
	}
	return c.searchHits(ctx, q, codeSearchCap, normalizeCodeHit)
}

// SearchFiles searches file names and paths within one repository. This is a
// name substring match, not full-text; file_type filters by extension.
func (c *RemoteClient) SearchFiles(ctx context.Context, repoName, query, fileType string) ([]SearchHit, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	if _, _, err := sanitize.ParseRepoName(repoName); err != nil {
		return nil, classify(err)
	}

	q := fmt.Sprintf("repo:%s filename:%s", repoName, query)
	if fileType != "" {
		q += " extension:" + strings.TrimPrefix(fileType, ".")
	}
	return c.searchHits(ctx, q, fileSearchCap, normalizeFileHit)
}

// searchHits runs one bounded code-search query and normalizes the results.
func (c *RemoteClient) searchHits(ctx context.Context, query string, limit int, normalize func(*github.CodeResult) SearchHit) ([]SearchHit, error) {
	opts := &github.SearchOptions{
		TextMatch:   true,
		ListOptions: github.ListOptions{PerPage: limit},
	}
	result, _, err := c.gh.Search.Code(ctx, query, opts)
	if err != nil {
		return nil, classify(err)
	}

	hits := make([]SearchHit, 0, len(result.CodeResults))
	for _, res := range result.CodeResults {
		if len(hits) >= limit {
			break
		}
		hit := normalize(res)
		hit.Rank = len(hits) + 1
		hits = append(hits, hit)
	}
	c.logger.Debug("search completed", zap.String("query", query), zap.Int("hits", len(hits)))
	return hits, nil
}
