package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"convoy/internal/api"
	"convoy/internal/config"
	"convoy/internal/coordinator"
	"convoy/internal/registry"

	"github.com/mark3labs/mcp-go/mcp"
)

// handleCoordinateRelease runs a release and returns the full result. A
// validation failure is returned as a tool error carrying every issue so
// the caller can fix the request in one pass.
func (s *Server) handleCoordinateRelease(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	environment, err := request.RequireString("environment")
	if err != nil {
		return mcp.NewToolResultError("environment argument is required"), nil
	}

	args := request.GetArguments()
	services, err := s.resolveServices(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	params := api.CoordinateParams{
		ReleaseName:       stringArg(args, "releaseName"),
		Environment:       api.Environment(environment),
		Services:          services,
		Strategy:          api.Strategy(stringArg(args, "strategy")),
		RollbackOnFailure: boolArg(args, "rollbackOnFailure"),
	}

	result, err := s.coordinator.CoordinateRelease(ctx, params)
	if err != nil {
		var validationErr *api.ValidationError
		if errors.As(err, &validationErr) {
			return validationResultError(validationErr.Issues)
		}
		return mcp.NewToolResultError(fmt.Sprintf("release failed: %v", err)), nil
	}

	return jsonResult(result)
}

// handleValidateServices validates declarations without deploying.
func (s *Server) handleValidateServices(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	services, err := s.resolveServices(request.GetArguments())
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return jsonResult(coordinator.ValidateServices(services))
}

// handlePlanRelease computes the batched plan without deploying.
func (s *Server) handlePlanRelease(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	services, err := s.resolveServices(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	strategy := api.Strategy(stringArg(args, "strategy"))
	if strategy == "" {
		strategy = api.StrategyDependencyOrder
	}

	if validation := coordinator.ValidateServices(services); !validation.Valid {
		return validationResultError(validation.Issues)
	}

	batches, err := coordinator.PlanBatches(services, strategy)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("planning failed: %v", err)), nil
	}

	return jsonResult(map[string]interface{}{
		"strategy": strategy,
		"batches":  batches,
	})
}

// handleGetRelease looks up one release, by id or latest-for-environment.
func (s *Server) handleGetRelease(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	releaseID := stringArg(args, "releaseId")
	environment := stringArg(args, "environment")

	switch {
	case releaseID != "":
		record, err := s.registry.GetRelease(ctx, releaseID)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(record)

	case environment != "":
		record, err := s.registry.GetLatestRelease(ctx, api.Environment(environment))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(record)

	default:
		return mcp.NewToolResultError("either releaseId or environment is required"), nil
	}
}

// handleListReleases returns one page of stored releases.
func (s *Server) handleListReleases(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	result, err := s.registry.ListReleases(ctx, registry.ListFilter{
		Environment: api.Environment(stringArg(args, "environment")),
		Status:      api.ReleaseStatus(stringArg(args, "status")),
		Limit:       intArg(args, "limit"),
		Offset:      intArg(args, "offset"),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return jsonResult(result)
}

// handleGetReleaseStatistics returns derived statistics.
func (s *Server) handleGetReleaseStatistics(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	env := api.Environment(stringArg(request.GetArguments(), "environment"))

	stats, err := s.registry.GetStatistics(ctx, env)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return jsonResult(stats)
}

// resolveServices extracts service declarations from the services argument,
// falling back to the configured manifest when the argument is absent.
func (s *Server) resolveServices(args map[string]interface{}) ([]api.ServiceDeclaration, error) {
	raw, ok := args["services"]
	if !ok || raw == nil {
		if s.manifestPath == "" {
			return nil, fmt.Errorf("services argument is required (no manifest configured)")
		}
		services, err := config.LoadManifest(s.manifestPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load services manifest: %w", err)
		}
		return services, nil
	}

	// Arguments arrive as generic JSON values; round-trip through JSON to
	// get typed declarations.
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid services argument: %w", err)
	}
	var services []api.ServiceDeclaration
	if err := json.Unmarshal(data, &services); err != nil {
		return nil, fmt.Errorf("invalid services argument: %w", err)
	}
	if len(services) == 0 {
		return nil, fmt.Errorf("services argument must not be empty")
	}
	return services, nil
}

// jsonResult marshals v and wraps it as a text tool result.
func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to format result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// validationResultError wraps validation issues as a tool error whose text
// is the full machine-readable validation result.
func validationResultError(issues []api.ValidationIssue) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(api.ValidationResult{Valid: false, Issues: issues}, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("validation failed with %d issues", len(issues))), nil
	}
	return mcp.NewToolResultError(string(data)), nil
}

func stringArg(args map[string]interface{}, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}

func boolArg(args map[string]interface{}, key string) bool {
	if v, ok := args[key].(bool); ok {
		return v
	}
	return false
}

func intArg(args map[string]interface{}, key string) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return 0
	}
}
