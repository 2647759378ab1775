package sanitize

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		baseRoot string
		want     string
		wantErr  error
	}{
		{
			name:     "empty path",
			path:     "",
			baseRoot: "/srv/repos",
			wantErr:  ErrEmptyPath,
		},
		{
			name:     "relative path joins root",
			path:     "octocat/hello",
			baseRoot: "/srv/repos",
			want:     "/srv/repos/octocat/hello",
		},
		{
			name:     "absolute path within root",
			path:     "/srv/repos/octocat/hello",
			baseRoot: "/srv/repos",
			want:     "/srv/repos/octocat/hello",
		},
		{
			name:     "root itself is allowed",
			path:     "/srv/repos",
			baseRoot: "/srv/repos",
			want:     "/srv/repos",
		},
		{
			name:     "traversal - leading dots",
			path:     "../etc/passwd",
			baseRoot: "/srv/repos",
			wantErr:  ErrPathEscape,
		},
		{
			name:     "traversal - embedded dots escape root",
			path:     "foo/../../../etc/passwd",
			baseRoot: "/srv/repos",
			wantErr:  ErrPathEscape,
		},
		{
			name:     "absolute path outside root",
			path:     "/etc/passwd",
			baseRoot: "/srv/repos",
			wantErr:  ErrPathEscape,
		},
		{
			name:     "absolute path resolving outside root",
			path:     "/srv/repos/../other",
			baseRoot: "/srv/repos",
			wantErr:  ErrPathEscape,
		},
		{
			name:     "dots that stay inside root are fine",
			path:     "octocat/extra/../hello",
			baseRoot: "/srv/repos",
			want:     "/srv/repos/octocat/hello",
		},
		{
			name:     "sibling with shared prefix escapes",
			path:     "/srv/repos-evil/x",
			baseRoot: "/srv/repos",
			wantErr:  ErrPathEscape,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidatePath(tt.path, tt.baseRoot)
			if tt.wantErr != nil {
				if err == nil {
					t.Fatalf("ValidatePath() expected error %v, got nil", tt.wantErr)
				}
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("ValidatePath() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ValidatePath() unexpected error = %v", err)
			}
			if got != filepath.Clean(tt.want) {
				t.Errorf("ValidatePath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidatePathSymlinkEscape(t *testing.T) {
	base, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatalf("failed to resolve temp dir: %v", err)
	}
	outside, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatalf("failed to resolve temp dir: %v", err)
	}

	link := filepath.Join(base, "link")
	if err := os.Symlink(outside, link); err != nil {
		t.Fatalf("failed to create symlink: %v", err)
	}

	// A symlink under the root pointing outside must be rejected, both as an
	// absolute path and as a relative candidate, and whether or not the
	// trailing components exist yet.
	for _, path := range []string{
		link,
		filepath.Join(link, "victim"),
		"link/victim",
		"link/deeper/victim",
	} {
		if _, err := ValidatePath(path, base); !errors.Is(err, ErrPathEscape) {
			t.Errorf("ValidatePath(%q) error = %v, want ErrPathEscape", path, err)
		}
	}
}

func TestValidatePathSymlinkInsideRoot(t *testing.T) {
	base, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatalf("failed to resolve temp dir: %v", err)
	}

	target := filepath.Join(base, "real")
	if err := os.MkdirAll(target, 0o755); err != nil {
		t.Fatalf("failed to create target dir: %v", err)
	}
	if err := os.Symlink(target, filepath.Join(base, "alias")); err != nil {
		t.Fatalf("failed to create symlink: %v", err)
	}

	got, err := ValidatePath("alias/file.txt", base)
	if err != nil {
		t.Fatalf("ValidatePath() unexpected error = %v", err)
	}
	want := filepath.Join(target, "file.txt")
	if got != want {
		t.Errorf("ValidatePath() = %q, want %q", got, want)
	}
}

func TestParseRepoName(t *testing.T) {
	tests := []struct {
		name      string
		repoName  string
		wantOwner string
		wantName  string
		wantErr   bool
	}{
		{
			name:      "valid",
			repoName:  "octocat/hello-world",
			wantOwner: "octocat",
			wantName:  "hello-world",
		},
		{
			name:      "dots and underscores allowed",
			repoName:  "my_org/repo.name",
			wantOwner: "my_org",
			wantName:  "repo.name",
		},
		{
			name:     "missing slash",
			repoName: "octocat",
			wantErr:  true,
		},
		{
			name:     "extra slash",
			repoName: "octocat/hello/world",
			wantErr:  true,
		},
		{
			name:     "empty owner",
			repoName: "/hello",
			wantErr:  true,
		},
		{
			name:     "empty name",
			repoName: "octocat/",
			wantErr:  true,
		},
		{
			name:     "traversal characters",
			repoName: "../evil",
			wantErr:  true,
		},
		{
			name:     "leading dot owner",
			repoName: ".hidden/repo",
			wantErr:  true,
		},
		{
			name:     "git suffix rejected",
			repoName: "octocat/hello.git",
			wantErr:  true,
		},
		{
			name:     "spaces rejected",
			repoName: "octo cat/hello",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			owner, name, err := ParseRepoName(tt.repoName)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseRepoName(%q) expected error, got owner=%q name=%q", tt.repoName, owner, name)
				}
				if !errors.Is(err, ErrInvalidRepoName) {
					t.Errorf("ParseRepoName(%q) error = %v, want ErrInvalidRepoName", tt.repoName, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseRepoName(%q) unexpected error = %v", tt.repoName, err)
			}
			if owner != tt.wantOwner || name != tt.wantName {
				t.Errorf("ParseRepoName(%q) = (%q, %q), want (%q, %q)",
					tt.repoName, owner, name, tt.wantOwner, tt.wantName)
			}
		})
	}
}
