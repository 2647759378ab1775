package gateway

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RemoteAPI is the remote hosting operations the dispatcher routes to.
// Implemented by RemoteClient; faked in tests.
type RemoteAPI interface {
	ListRepositories(ctx context.Context, repoType, sortKey string, limit int) ([]RepositorySummary, error)
	GetRepository(ctx context.Context, repoName string) (*RepositorySummary, error)
	Browse(ctx context.Context, repoName, path, ref string) ([]DirectoryEntry, error)
	ReadFile(ctx context.Context, repoName, filePath, ref string) (*FileContent, error)
	SearchCode(ctx context.Context, repoName, query, language string) ([]SearchHit, error)
	SearchFiles(ctx context.Context, repoName, query, fileType string) ([]SearchHit, error)
}

// LocalVCS is the local version-control operations the dispatcher routes to.
// Implemented by localgit.Client; faked in tests.
type LocalVCS interface {
	Clone(ctx context.Context, repoName, localPath, branch string) (*CloneResult, error)
	ListLocal(ctx context.Context, basePath string) ([]LocalRepositoryRecord, error)
}

// Tool names recognized by the dispatcher.
const (
	ToolListRepositories  = "list_repositories"
	ToolGetRepositoryInfo = "get_repository_info"
	ToolBrowseRepository  = "browse_repository"
	ToolReadFile          = "read_file"
	ToolSearchFiles       = "search_files"
	ToolSearchCode        = "search_code"
	ToolCloneRepository   = "clone_repository"
	ToolListLocal         = "list_local_repositories"
)

// Defaults applied to optional arguments.
const (
	defaultRepoType = "all"
	defaultSort     = "updated"
	defaultLimit    = 30
)

// argSpec describes one argument in a tool's schema.
type argSpec struct {
	name     string
	required bool
	enum     []string // allowed values, empty means free-form
	isInt    bool
}

// toolSchemas enumerates the eight recognized tools and their arguments.
// Unknown tools and unknown argument keys are rejected at this boundary.
var toolSchemas = map[string][]argSpec{
	ToolListRepositories: {
		{name: "repo_type", enum: []string{"all", "public", "private", "owner"}},
		{name: "sort", enum: []string{"created", "updated", "pushed", "full_name"}},
		{name: "limit", isInt: true},
	},
	ToolGetRepositoryInfo: {
		{name: "repo_name", required: true},
	},
	ToolBrowseRepository: {
		{name: "repo_name", required: true},
		{name: "path"},
		{name: "ref"},
	},
	ToolReadFile: {
		{name: "repo_name", required: true},
		{name: "file_path", required: true},
		{name: "ref"},
	},
	ToolSearchFiles: {
		{name: "repo_name", required: true},
		{name: "query", required: true},
		{name: "file_type"},
	},
	ToolSearchCode: {
		{name: "repo_name", required: true},
		{name: "query", required: true},
		{name: "language"},
	},
	ToolCloneRepository: {
		{name: "repo_name", required: true},
		{name: "local_path"},
		{name: "branch"},
	},
	ToolListLocal: {
		{name: "base_path"},
	},
}

// Dispatcher is the single entry point for tool invocations: it validates
// the tool name and arguments, applies defaults, routes to the matching
// adapter operation, and wraps every adapter failure into a ToolError. It
// holds no cross-call mutable state.
type Dispatcher struct {
	remote RemoteAPI
	vcs    LocalVCS
	logger *zap.Logger
}

// NewDispatcher creates a dispatcher over the given adapters.
func NewDispatcher(remote RemoteAPI, vcs LocalVCS, logger *zap.Logger) (*Dispatcher, error) {
	if remote == nil {
		return nil, fmt.Errorf("remote adapter is required")
	}
	if vcs == nil {
		return nil, fmt.Errorf("local VCS adapter is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{remote: remote, vcs: vcs, logger: logger}, nil
}

// Invoke runs one tool call. The returned value is the success payload for
// the tool (one of the entity shapes or a slice of them); failures are
// always a *ToolError — a raw transport failure never propagates.
func (d *Dispatcher) Invoke(ctx context.Context, name string, args map[string]any) (any, error) {
	start := time.Now()
	requestID := uuid.NewString()
	log := d.logger.With(zap.String("tool", name), zap.String("request_id", requestID))

	result, err := d.route(ctx, name, args)
	if err != nil {
		toolErr := classify(err)
		log.Warn("tool call failed",
			zap.String("kind", string(toolErr.Kind)),
			zap.String("error", toolErr.Message),
			zap.Duration("duration", time.Since(start)))
		return nil, toolErr
	}

	log.Info("tool call completed", zap.Duration("duration", time.Since(start)))
	return result, nil
}

// route validates arguments and dispatches to the adapter operation.
func (d *Dispatcher) route(ctx context.Context, name string, args map[string]any) (any, error) {
	schema, ok := toolSchemas[name]
	if !ok {
		return nil, NewToolError(ErrUnknownTool, "unknown tool: %q", name)
	}
	if err := checkArgs(schema, args); err != nil {
		return nil, err
	}

	switch name {
	case ToolListRepositories:
		repoType := stringArg(args, "repo_type", defaultRepoType)
		sortKey := stringArg(args, "sort", defaultSort)
		limit, err := intArg(args, "limit", defaultLimit)
		if err != nil {
			return nil, err
		}
		if limit <= 0 {
			limit = defaultLimit
		}
		if limit > maxListLimit {
			limit = maxListLimit
		}
		return d.remote.ListRepositories(ctx, repoType, sortKey, limit)

	case ToolGetRepositoryInfo:
		return d.remote.GetRepository(ctx, stringArg(args, "repo_name", ""))

	case ToolBrowseRepository:
		return d.remote.Browse(ctx,
			stringArg(args, "repo_name", ""),
			stringArg(args, "path", ""),
			stringArg(args, "ref", ""))

	case ToolReadFile:
		return d.remote.ReadFile(ctx,
			stringArg(args, "repo_name", ""),
			stringArg(args, "file_path", ""),
			stringArg(args, "ref", ""))

	case ToolSearchFiles:
		return d.remote.SearchFiles(ctx,
			stringArg(args, "repo_name", ""),
			stringArg(args, "query", ""),
			stringArg(args, "file_type", ""))

	case ToolSearchCode:
		return d.remote.SearchCode(ctx,
			stringArg(args, "repo_name", ""),
			stringArg(args, "query", ""),
			stringArg(args, "language", ""))

	case ToolCloneRepository:
		return d.vcs.Clone(ctx,
			stringArg(args, "repo_name", ""),
			stringArg(args, "local_path", ""),
			stringArg(args, "branch", ""))

	case ToolListLocal:
		return d.vcs.ListLocal(ctx, stringArg(args, "base_path", ""))
	}

	return nil, NewToolError(ErrUnknownTool, "unknown tool: %q", name)
}

// checkArgs validates the provided argument map against a tool schema:
// unknown keys are rejected, required keys must be present and non-empty,
// enum values must match, and value types must fit.
func checkArgs(schema []argSpec, args map[string]any) error {
	specs := make(map[string]argSpec, len(schema))
	for _, spec := range schema {
		specs[spec.name] = spec
	}

	for key := range args {
		if _, ok := specs[key]; !ok {
			return invalidArgument(key, "unknown argument")
		}
	}

	for _, spec := range schema {
		raw, present := args[spec.name]
		if !present {
			if spec.required {
				return invalidArgument(spec.name, "required argument missing")
			}
			continue
		}

		if spec.isInt {
			if _, err := toInt(raw); err != nil {
				return invalidArgument(spec.name, "must be an integer")
			}
			continue
		}

		s, ok := raw.(string)
		if !ok {
			return invalidArgument(spec.name, "must be a string")
		}
		if spec.required && s == "" {
			return invalidArgument(spec.name, "required argument is empty")
		}
		if len(spec.enum) > 0 && s != "" && !slices.Contains(spec.enum, s) {
			return invalidArgument(spec.name, "must be one of %v", spec.enum)
		}
	}
	return nil
}

// stringArg reads an already-validated string argument, falling back to a
// default when absent or empty.
func stringArg(args map[string]any, field, def string) string {
	if raw, ok := args[field]; ok {
		if s, ok := raw.(string); ok && s != "" {
			return s
		}
	}
	return def
}

// intArg reads an already-validated integer argument.
func intArg(args map[string]any, field string, def int) (int, error) {
	raw, ok := args[field]
	if !ok {
		return def, nil
	}
	n, err := toInt(raw)
	if err != nil {
		return 0, invalidArgument(field, "must be an integer")
	}
	return n, nil
}

// toInt accepts the numeric representations a JSON argument map can carry.
func toInt(raw any) (int, error) {
	switch v := raw.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		if v != float64(int(v)) {
			return 0, fmt.Errorf("not an integer: %v", v)
		}
		return int(v), nil
	default:
		return 0, fmt.Errorf("not an integer: %T", raw)
	}
}
