package localgit

import (
	"context"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/ghconnect/internal/gateway"
	"github.com/fyrsmithlabs/ghconnect/internal/sanitize"
)

// ListLocal scans a base directory for checkouts laid out as
// {base}/{owner}/{repo}. The scan is exactly two levels deep; directories
// without git metadata are skipped silently. Results are recomputed on every
// call, never cached.
func (c *Client) ListLocal(ctx context.Context, basePath string) ([]gateway.LocalRepositoryRecord, error) {
	base := basePath
	if base == "" {
		base = c.baseDir
	}
	base, err := sanitize.ValidatePath(base, c.baseDir)
	if err != nil {
		return nil, err
	}

	owners, err := os.ReadDir(base)
	if err != nil {
		if os.IsNotExist(err) {
			return []gateway.LocalRepositoryRecord{}, nil
		}
		return nil, err
	}

	records := make([]gateway.LocalRepositoryRecord, 0)
	for _, ownerEntry := range owners {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !ownerEntry.IsDir() {
			continue
		}
		ownerPath := filepath.Join(base, ownerEntry.Name())
		repos, err := os.ReadDir(ownerPath)
		if err != nil {
			continue
		}
		for _, repoEntry := range repos {
			if !repoEntry.IsDir() {
				continue
			}
			repoPath := filepath.Join(ownerPath, repoEntry.Name())
			record, ok := c.inspect(repoPath, ownerEntry.Name(), repoEntry.Name())
			if ok {
				records = append(records, record)
			}
		}
	}

	c.logger.Debug("scanned local repositories",
		zap.String("base", base),
		zap.Int("count", len(records)))
	return records, nil
}

// inspect opens one candidate directory as a git repository. Returns false
// for anything that is not a valid checkout.
func (c *Client) inspect(path, owner, name string) (gateway.LocalRepositoryRecord, bool) {
	repo, err := git.PlainOpen(path)
	if err != nil {
		return gateway.LocalRepositoryRecord{}, false
	}

	record := gateway.LocalRepositoryRecord{
		Name:      owner + "/" + name,
		LocalPath: path,
	}

	if remote, err := repo.Remote("origin"); err == nil {
		if urls := remote.Config().URLs; len(urls) > 0 {
			record.RemoteOriginURL = urls[0]
		}
	}

	// A freshly initialized repository has no HEAD yet; branch and commit
	// stay empty in that case.
	if head, err := repo.Head(); err == nil {
		record.CommitSHA = head.Hash().String()
		if head.Name().IsBranch() {
			record.CurrentBranch = head.Name().Short()
		}
	}

	return record, true
}
