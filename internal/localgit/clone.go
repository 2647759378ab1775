// Package localgit owns local repository operations: cloning from the remote
// and scanning the clone base directory for existing checkouts.
package localgit

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/ghconnect/internal/gateway"
	"github.com/fyrsmithlabs/ghconnect/internal/sanitize"
)

// Client performs clone and scan operations under a fixed base directory.
// Clones are organized as {base}/{owner}/{repo}.
type Client struct {
	baseDir string
	timeout time.Duration
	logger  *zap.Logger

	// remoteURL builds the clone URL for a repository. Overridable so tests
	// can clone from local fixture repositories.
	remoteURL func(owner, name string) string
}

// NewClient creates a local git client rooted at baseDir. timeout bounds a
// single clone; past it the clone fails with a Timeout error.
func NewClient(baseDir string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		baseDir: baseDir,
		timeout: timeout,
		logger:  logger,
		remoteURL: func(owner, name string) string {
			return fmt.Sprintf("https://github.com/%s/%s.git", owner, name)
		},
	}
}

// CanonicalPath returns the deterministic clone destination for a repository:
// {base}/{owner}/{repo}. Repeated clones of the same repository always land
// here, which is what makes clone location idempotent.
func (c *Client) CanonicalPath(owner, name string) string {
	return filepath.Join(c.baseDir, owner, name)
}

// Clone clones a repository. An empty localPath derives the canonical
// destination; an occupied destination fails with AlreadyExists rather than
// overwriting. The destination is validated against the base directory
// before anything is written.
func (c *Client) Clone(ctx context.Context, repoName, localPath, branch string) (*gateway.CloneResult, error) {
	owner, name, err := sanitize.ParseRepoName(repoName)
	if err != nil {
		return nil, err
	}

	dest := localPath
	if dest == "" {
		dest = c.CanonicalPath(owner, name)
	}
	dest, err = sanitize.ValidatePath(dest, c.baseDir)
	if err != nil {
		return nil, err
	}

	// Any non-empty destination counts as occupied, including partial state
	// left behind by an earlier failed clone.
	if entries, err := os.ReadDir(dest); err == nil && len(entries) > 0 {
		return nil, gateway.NewToolError(gateway.ErrAlreadyExists,
			"destination %s already exists; choose a different path or remove it", dest)
	}

	_, statErr := os.Stat(dest)
	destExisted := statErr == nil

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create clone parent directory: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	opts := &git.CloneOptions{URL: c.remoteURL(owner, name)}
	if branch != "" {
		opts.ReferenceName = plumbing.NewBranchReferenceName(branch)
		opts.SingleBranch = true
	}

	c.logger.Info("cloning repository",
		zap.String("repo", repoName),
		zap.String("dest", dest),
		zap.String("branch", branch))

	repo, err := git.PlainCloneContext(ctx, dest, false, opts)
	if err != nil {
		c.rollback(dest, destExisted)
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
			return nil, gateway.NewToolError(gateway.ErrTimeout,
				"clone of %s exceeded %s", repoName, c.timeout)
		}
		return nil, fmt.Errorf("clone of %s failed: %w", repoName, err)
	}

	result := &gateway.CloneResult{
		RemoteName: repoName,
		LocalPath:  dest,
	}
	if head, err := repo.Head(); err == nil {
		result.CommitSHA = head.Hash().String()
		if head.Name().IsBranch() {
			result.Branch = head.Name().Short()
		}
	}
	return result, nil
}

// rollback removes partial state left by a failed clone so a retry does not
// mistake it for a completed checkout. Only what the clone created is
// removed: a destination that existed beforehand is emptied of the clone's
// writes but never deleted itself, and a pre-existing regular file is left
// untouched. If removal fails the path stays occupied and the next attempt
// reports AlreadyExists.
func (c *Client) rollback(dest string, destExisted bool) {
	if !destExisted {
		if err := os.RemoveAll(dest); err != nil {
			c.logger.Warn("failed to remove partial clone", zap.String("dest", dest), zap.Error(err))
		}
		return
	}

	entries, err := os.ReadDir(dest)
	if err != nil {
		return
	}
	for _, entry := range entries {
		if err := os.RemoveAll(filepath.Join(dest, entry.Name())); err != nil {
			c.logger.Warn("failed to remove partial clone state",
				zap.String("dest", dest), zap.Error(err))
		}
	}
}
