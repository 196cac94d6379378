package mcpserver

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"convoy/internal/api"
	"convoy/internal/coordinator"
	"convoy/internal/executor"
	"convoy/internal/registry"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*Server, *registry.Registry) {
	t.Helper()

	reg := registry.New(t.TempDir())
	coord, err := coordinator.New(coordinator.Config{
		Registry: reg,
		Executor: &executor.SimulatedExecutor{},
	})
	require.NoError(t, err)

	srv, err := NewServer(Config{Coordinator: coord, Registry: reg})
	require.NoError(t, err)
	return srv, reg
}

func callRequest(args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	textContent, ok := mcp.AsTextContent(result.Content[0])
	require.True(t, ok)
	return textContent.Text
}

func TestNewServerRequiresCollaborators(t *testing.T) {
	_, err := NewServer(Config{})
	assert.Error(t, err)

	_, err = NewServer(Config{Registry: registry.New(t.TempDir())})
	assert.Error(t, err)
}

func TestHandleCoordinateRelease(t *testing.T) {
	srv, reg := newTestServer(t)

	result, err := srv.handleCoordinateRelease(context.Background(), callRequest(map[string]interface{}{
		"environment": "staging",
		"releaseName": "spring cleanup",
		"services": []interface{}{
			map[string]interface{}{"name": "db", "version": "1.0.0"},
			map[string]interface{}{"name": "api", "version": "2.0.0", "dependencies": []interface{}{"db"}},
		},
	}))

	require.NoError(t, err)
	require.False(t, result.IsError)

	var coordResult api.CoordinateResult
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &coordResult))
	assert.True(t, coordResult.Success)
	assert.Equal(t, []string{"db", "api"}, coordResult.DeploymentOrder)

	stored, err := reg.GetRelease(context.Background(), coordResult.ReleaseID)
	require.NoError(t, err)
	assert.Equal(t, api.ReleaseStatusSuccess, stored.Status)
	assert.Equal(t, "spring cleanup", stored.ReleaseName)
}

func TestHandleCoordinateReleaseRequiresEnvironment(t *testing.T) {
	srv, _ := newTestServer(t)

	result, err := srv.handleCoordinateRelease(context.Background(), callRequest(map[string]interface{}{
		"services": []interface{}{map[string]interface{}{"name": "db"}},
	}))

	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "environment")
}

func TestHandleCoordinateReleaseValidationIssuesAreReturned(t *testing.T) {
	srv, _ := newTestServer(t)

	result, err := srv.handleCoordinateRelease(context.Background(), callRequest(map[string]interface{}{
		"environment": "staging",
		"services": []interface{}{
			map[string]interface{}{"name": "a", "dependencies": []interface{}{"b"}},
			map[string]interface{}{"name": "b", "dependencies": []interface{}{"a"}},
		},
	}))

	require.NoError(t, err)
	assert.True(t, result.IsError)

	var validation api.ValidationResult
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &validation))
	assert.False(t, validation.Valid)
	assert.NotEmpty(t, validation.Issues)
}

func TestHandleValidateServices(t *testing.T) {
	srv, _ := newTestServer(t)

	result, err := srv.handleValidateServices(context.Background(), callRequest(map[string]interface{}{
		"services": []interface{}{
			map[string]interface{}{"name": "api", "dependencies": []interface{}{"missing"}},
		},
	}))

	require.NoError(t, err)
	require.False(t, result.IsError)

	var validation api.ValidationResult
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &validation))
	assert.False(t, validation.Valid)
	require.Len(t, validation.Issues, 1)
	assert.Equal(t, api.IssueMissingDependency, validation.Issues[0].Kind)
}

func TestHandlePlanRelease(t *testing.T) {
	srv, _ := newTestServer(t)

	result, err := srv.handlePlanRelease(context.Background(), callRequest(map[string]interface{}{
		"services": []interface{}{
			map[string]interface{}{"name": "db"},
			map[string]interface{}{"name": "api", "dependencies": []interface{}{"db"}},
		},
	}))

	require.NoError(t, err)
	require.False(t, result.IsError)

	text := resultText(t, result)
	assert.Contains(t, text, `"strategy": "dependency-order"`)
	assert.Contains(t, text, `"db"`)
	assert.Contains(t, text, `"api"`)
}

func TestHandlePlanReleaseRejectsCycles(t *testing.T) {
	srv, _ := newTestServer(t)

	result, err := srv.handlePlanRelease(context.Background(), callRequest(map[string]interface{}{
		"services": []interface{}{
			map[string]interface{}{"name": "a", "dependencies": []interface{}{"b"}},
			map[string]interface{}{"name": "b", "dependencies": []interface{}{"a"}},
		},
	}))

	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "circular-dependency")
}

func TestHandleGetRelease(t *testing.T) {
	srv, reg := newTestServer(t)
	ctx := context.Background()

	record := &api.ReleaseRecord{
		ReleaseID:   "rel-1",
		Environment: api.EnvironmentProduction,
		Status:      api.ReleaseStatusSuccess,
		Timestamp:   time.Now().UTC(),
		Services:    []string{"db"},
	}
	require.NoError(t, reg.AddRelease(ctx, record))

	byID, err := srv.handleGetRelease(ctx, callRequest(map[string]interface{}{"releaseId": "rel-1"}))
	require.NoError(t, err)
	require.False(t, byID.IsError)
	assert.Contains(t, resultText(t, byID), `"releaseId": "rel-1"`)

	latest, err := srv.handleGetRelease(ctx, callRequest(map[string]interface{}{"environment": "production"}))
	require.NoError(t, err)
	require.False(t, latest.IsError)
	assert.Contains(t, resultText(t, latest), `"releaseId": "rel-1"`)

	missing, err := srv.handleGetRelease(ctx, callRequest(map[string]interface{}{}))
	require.NoError(t, err)
	assert.True(t, missing.IsError)
}

func TestHandleListReleasesAndStatistics(t *testing.T) {
	srv, reg := newTestServer(t)
	ctx := context.Background()

	for _, id := range []string{"rel-1", "rel-2"} {
		require.NoError(t, reg.AddRelease(ctx, &api.ReleaseRecord{
			ReleaseID:   id,
			Environment: api.EnvironmentStaging,
			Status:      api.ReleaseStatusSuccess,
			Timestamp:   time.Now().UTC(),
		}))
	}

	list, err := srv.handleListReleases(ctx, callRequest(map[string]interface{}{
		"environment": "staging",
		"limit":       float64(10),
	}))
	require.NoError(t, err)
	require.False(t, list.IsError)
	assert.Contains(t, resultText(t, list), `"total": 2`)

	stats, err := srv.handleGetReleaseStatistics(ctx, callRequest(map[string]interface{}{}))
	require.NoError(t, err)
	require.False(t, stats.IsError)
	assert.Contains(t, resultText(t, stats), `"totalReleases": 2`)
}

func TestResolveServicesFallsBackToManifest(t *testing.T) {
	dir := t.TempDir()
	manifestPath := filepath.Join(dir, "services.yaml")
	require.NoError(t, os.WriteFile(manifestPath, []byte("services:\n  - name: db\n    version: 1.0.0\n"), 0644))

	reg := registry.New(t.TempDir())
	coord, err := coordinator.New(coordinator.Config{Registry: reg, Executor: &executor.SimulatedExecutor{}})
	require.NoError(t, err)
	srv, err := NewServer(Config{Coordinator: coord, Registry: reg, ManifestPath: manifestPath})
	require.NoError(t, err)

	services, err := srv.resolveServices(map[string]interface{}{})
	require.NoError(t, err)
	require.Len(t, services, 1)
	assert.Equal(t, "db", services[0].Name)
}

func TestResolveServicesWithoutManifestErrors(t *testing.T) {
	srv, _ := newTestServer(t)

	_, err := srv.resolveServices(map[string]interface{}{})
	assert.Error(t, err)
}
