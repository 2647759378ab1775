package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/fyrsmithlabs/ghconnect/internal/gateway"
)

// registerTools registers all eight gateway tools with the server.
func (s *Server) registerTools() {
	s.registerRemoteTools()
	s.registerSearchTools()
	s.registerLocalTools()
}

// ===== REMOTE REPOSITORY TOOLS =====

type listRepositoriesInput struct {
	RepoType string `json:"repo_type,omitempty" jsonschema:"Type of repositories to list (all public private or owner)"`
	Sort     string `json:"sort,omitempty" jsonschema:"Sort key (created updated pushed or full_name)"`
	Limit    int    `json:"limit,omitempty" jsonschema:"Maximum number of repositories to return (default 30 max 100)"`
}

type listRepositoriesOutput struct {
	Repositories []gateway.RepositorySummary `json:"repositories" jsonschema:"Repository summaries"`
	Count        int                         `json:"count" jsonschema:"Number of repositories returned"`
}

type repositoryInfoInput struct {
	RepoName string `json:"repo_name" jsonschema:"required,Repository name in owner/name form"`
}

type browseRepositoryInput struct {
	RepoName string `json:"repo_name" jsonschema:"required,Repository name in owner/name form"`
	Path     string `json:"path,omitempty" jsonschema:"Path within the repository (defaults to root)"`
	Ref      string `json:"ref,omitempty" jsonschema:"Branch or commit reference (defaults to the default branch)"`
}

type browseRepositoryOutput struct {
	Entries []gateway.DirectoryEntry `json:"entries" jsonschema:"Directory entries at the requested path"`
	Count   int                      `json:"count" jsonschema:"Number of entries returned"`
}

type readFileInput struct {
	RepoName string `json:"repo_name" jsonschema:"required,Repository name in owner/name form"`
	FilePath string `json:"file_path" jsonschema:"required,Path to the file within the repository"`
	Ref      string `json:"ref,omitempty" jsonschema:"Branch or commit reference (defaults to the default branch)"`
}

func (s *Server) registerRemoteTools() {
	// list_repositories
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        gateway.ToolListRepositories,
		Description: "List the authenticated user's GitHub repositories",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args listRepositoriesInput) (*mcp.CallToolResult, listRepositoriesOutput, error) {
		m := map[string]any{}
		if args.RepoType != "" {
			m["repo_type"] = args.RepoType
		}
		if args.Sort != "" {
			m["sort"] = args.Sort
		}
		if args.Limit != 0 {
			m["limit"] = args.Limit
		}

		res, err := s.dispatcher.Invoke(ctx, gateway.ToolListRepositories, m)
		if err != nil {
			return nil, listRepositoriesOutput{}, err
		}
		repos := res.([]gateway.RepositorySummary)

		output := listRepositoriesOutput{Repositories: repos, Count: len(repos)}
		return textResult(fmt.Sprintf("Found %d repositories", output.Count)), output, nil
	})

	// get_repository_info
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        gateway.ToolGetRepositoryInfo,
		Description: "Get detailed information about a specific repository",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args repositoryInfoInput) (*mcp.CallToolResult, gateway.RepositorySummary, error) {
		res, err := s.dispatcher.Invoke(ctx, gateway.ToolGetRepositoryInfo, map[string]any{
			"repo_name": args.RepoName,
		})
		if err != nil {
			return nil, gateway.RepositorySummary{}, err
		}
		summary := *res.(*gateway.RepositorySummary)
		return textResult(fmt.Sprintf("Repository %s (default branch %s)", summary.FullName, summary.DefaultBranch)), summary, nil
	})

	// browse_repository
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        gateway.ToolBrowseRepository,
		Description: "Browse the file structure of a repository path",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args browseRepositoryInput) (*mcp.CallToolResult, browseRepositoryOutput, error) {
		m := map[string]any{"repo_name": args.RepoName}
		if args.Path != "" {
			m["path"] = args.Path
		}
		if args.Ref != "" {
			m["ref"] = args.Ref
		}

		res, err := s.dispatcher.Invoke(ctx, gateway.ToolBrowseRepository, m)
		if err != nil {
			return nil, browseRepositoryOutput{}, err
		}
		entries := res.([]gateway.DirectoryEntry)

		output := browseRepositoryOutput{Entries: entries, Count: len(entries)}
		return textResult(fmt.Sprintf("Listed %d entries under %s:%s", output.Count, args.RepoName, args.Path)), output, nil
	})

	// read_file
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        gateway.ToolReadFile,
		Description: "Read file contents from a repository, with binary detection and size truncation",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args readFileInput) (*mcp.CallToolResult, gateway.FileContent, error) {
		m := map[string]any{
			"repo_name": args.RepoName,
			"file_path": args.FilePath,
		}
		if args.Ref != "" {
			m["ref"] = args.Ref
		}

		res, err := s.dispatcher.Invoke(ctx, gateway.ToolReadFile, m)
		if err != nil {
			return nil, gateway.FileContent{}, err
		}
		fc := *res.(*gateway.FileContent)
		return textResult(fmt.Sprintf("Read %s (%d bytes, %s)", fc.Path, fc.SizeBytes, fc.Encoding)), fc, nil
	})
}

// ===== SEARCH TOOLS =====

type searchFilesInput struct {
	RepoName string `json:"repo_name" jsonschema:"required,Repository name in owner/name form"`
	Query    string `json:"query" jsonschema:"required,Search query for file names or paths"`
	FileType string `json:"file_type,omitempty" jsonschema:"File extension to filter by"`
}

type searchCodeInput struct {
	RepoName string `json:"repo_name" jsonschema:"required,Repository name in owner/name form"`
	Query    string `json:"query" jsonschema:"required,Code search query"`
	Language string `json:"language,omitempty" jsonschema:"Programming language to filter by"`
}

type searchOutput struct {
	Hits  []gateway.SearchHit `json:"hits" jsonschema:"Matching search hits"`
	Count int                 `json:"count" jsonschema:"Number of hits returned"`
	Query string              `json:"query" jsonschema:"Original search query"`
}

func (s *Server) registerSearchTools() {
	// search_files
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        gateway.ToolSearchFiles,
		Description: "Search for files by name or path in a repository",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args searchFilesInput) (*mcp.CallToolResult, searchOutput, error) {
		m := map[string]any{
			"repo_name": args.RepoName,
			"query":     args.Query,
		}
		if args.FileType != "" {
			m["file_type"] = args.FileType
		}

		res, err := s.dispatcher.Invoke(ctx, gateway.ToolSearchFiles, m)
		if err != nil {
			return nil, searchOutput{}, err
		}
		hits := res.([]gateway.SearchHit)

		output := searchOutput{Hits: hits, Count: len(hits), Query: args.Query}
		return textResult(fmt.Sprintf("Found %d files matching %q", output.Count, args.Query)), output, nil
	})

	// search_code
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        gateway.ToolSearchCode,
		Description: "Search code content within a repository",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args searchCodeInput) (*mcp.CallToolResult, searchOutput, error) {
		m := map[string]any{
			"repo_name": args.RepoName,
			"query":     args.Query,
		}
		if args.Language != "" {
			m["language"] = args.Language
		}

		res, err := s.dispatcher.Invoke(ctx, gateway.ToolSearchCode, m)
		if err != nil {
			return nil, searchOutput{}, err
		}
		hits := res.([]gateway.SearchHit)

		output := searchOutput{Hits: hits, Count: len(hits), Query: args.Query}
		return textResult(fmt.Sprintf("Found %d code matches for %q", output.Count, args.Query)), output, nil
	})
}

// ===== LOCAL REPOSITORY TOOLS =====

type cloneRepositoryInput struct {
	RepoName  string `json:"repo_name" jsonschema:"required,Repository name in owner/name form"`
	LocalPath string `json:"local_path,omitempty" jsonschema:"Clone destination (defaults to {base}/{owner}/{repo})"`
	Branch    string `json:"branch,omitempty" jsonschema:"Specific branch to clone"`
}

type listLocalInput struct {
	BasePath string `json:"base_path,omitempty" jsonschema:"Base path to scan for checkouts (defaults to the clone base directory)"`
}

type listLocalOutput struct {
	Repositories []gateway.LocalRepositoryRecord `json:"repositories" jsonschema:"Local checkouts found"`
	Count        int                             `json:"count" jsonschema:"Number of checkouts found"`
}

func (s *Server) registerLocalTools() {
	// clone_repository
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        gateway.ToolCloneRepository,
		Description: "Clone a GitHub repository to the local filesystem",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args cloneRepositoryInput) (*mcp.CallToolResult, gateway.CloneResult, error) {
		m := map[string]any{"repo_name": args.RepoName}
		if args.LocalPath != "" {
			m["local_path"] = args.LocalPath
		}
		if args.Branch != "" {
			m["branch"] = args.Branch
		}

		res, err := s.dispatcher.Invoke(ctx, gateway.ToolCloneRepository, m)
		if err != nil {
			return nil, gateway.CloneResult{}, err
		}
		result := *res.(*gateway.CloneResult)
		return textResult(fmt.Sprintf("Cloned %s to %s", result.RemoteName, result.LocalPath)), result, nil
	})

	// list_local_repositories
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        gateway.ToolListLocal,
		Description: "List locally cloned repositories under the clone base directory",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args listLocalInput) (*mcp.CallToolResult, listLocalOutput, error) {
		m := map[string]any{}
		if args.BasePath != "" {
			m["base_path"] = args.BasePath
		}

		res, err := s.dispatcher.Invoke(ctx, gateway.ToolListLocal, m)
		if err != nil {
			return nil, listLocalOutput{}, err
		}
		records := res.([]gateway.LocalRepositoryRecord)

		output := listLocalOutput{Repositories: records, Count: len(records)}
		return textResult(fmt.Sprintf("Found %d local repositories", output.Count)), output, nil
	})
}

// textResult wraps a short human-readable summary for the tool result.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}
