package cli

import (
	"bytes"
	"testing"
	"time"

	"convoy/internal/api"
	"convoy/internal/graph"
	"convoy/internal/registry"

	"github.com/stretchr/testify/assert"
)

func TestRenderPlan(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf)

	r.RenderPlan([]graph.Batch{
		{ID: 0, Services: []api.ServiceDeclaration{{Name: "db"}}},
		{ID: 1, Services: []api.ServiceDeclaration{{Name: "api"}, {Name: "worker"}}, DependsOn: []int{0}},
	})

	out := buf.String()
	assert.Contains(t, out, "db")
	assert.Contains(t, out, "api, worker")
	assert.Contains(t, out, "batch 1")
	assert.Contains(t, out, "3 services in 2 batches")
}

func TestRenderResults(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf)

	r.RenderResults(&api.CoordinateResult{
		Success:     false,
		ReleaseID:   "rel-1",
		Environment: api.EnvironmentStaging,
		Summary:     api.ReleaseSummary{TotalServices: 2, Deployed: 1, Failed: 1, DurationMs: 1500},
		ServiceResults: []api.ServiceResult{
			{Service: "db", Version: "1.0.0", Status: api.ServiceStatusSuccess, Health: api.HealthHealthy, DurationMs: 700},
			{Service: "api", Version: "2.0.0", Status: api.ServiceStatusFailed, Error: "deploy exited 1", DurationMs: 800},
		},
		OverallHealth: api.HealthUnhealthy,
		ReleaseNotes:  "/tmp/notes.md",
		Warnings:      []string{"registry write failed"},
	})

	out := buf.String()
	assert.Contains(t, out, "db")
	assert.Contains(t, out, "deploy exited 1")
	assert.Contains(t, out, "release rel-1: 1 deployed, 1 failed, 0 rolled back of 2 services")
	assert.Contains(t, out, "release notes: /tmp/notes.md")
	assert.Contains(t, out, "registry write failed")
}

func TestRenderHistory(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf)

	r.RenderHistory(&registry.ListResult{
		Releases: []api.ReleaseRecord{
			{
				ReleaseID:   "0123456789abcdef",
				ReleaseName: "spring cleanup",
				Environment: api.EnvironmentProduction,
				Status:      api.ReleaseStatusSuccess,
				Services:    []string{"db", "api"},
				DurationMs:  2000,
				Timestamp:   time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC),
			},
		},
		Total:   5,
		Limit:   1,
		Offset:  0,
		HasMore: true,
	})

	out := buf.String()
	assert.Contains(t, out, "01234567")
	assert.NotContains(t, out, "0123456789abcdef")
	assert.Contains(t, out, "spring cleanup")
	assert.Contains(t, out, "showing 1 of 5 releases")
	assert.Contains(t, out, "--offset 1")
}

func TestRenderHistoryEmpty(t *testing.T) {
	var buf bytes.Buffer
	NewRenderer(&buf).RenderHistory(&registry.ListResult{})

	assert.Contains(t, buf.String(), "No releases recorded")
}

func TestRenderStatistics(t *testing.T) {
	var buf bytes.Buffer
	NewRenderer(&buf).RenderStatistics(&api.ReleaseStatistics{
		TotalReleases:     4,
		Successful:        3,
		Failed:            1,
		SuccessRate:       0.75,
		AverageDurationMs: 1200,
		Environment:       api.EnvironmentStaging,
	})

	out := buf.String()
	assert.Contains(t, out, "staging")
	assert.Contains(t, out, "75.0%")
	assert.Contains(t, out, "1.2s")
}

func TestRenderIssues(t *testing.T) {
	var buf bytes.Buffer
	NewRenderer(&buf).RenderIssues([]api.ValidationIssue{
		{Kind: api.IssueMissingDependency, Service: "api", Target: "db", Message: `service "api" depends on unknown service "db"`},
		{Kind: api.IssueCircularDependency, Service: "a", Message: "circular dependency: a -> b -> a"},
	})

	out := buf.String()
	assert.Contains(t, out, "missing-dependency")
	assert.Contains(t, out, "circular dependency: a -> b -> a")
	assert.Contains(t, out, "2 validation issues")
}

func TestFormatDurationMs(t *testing.T) {
	assert.Equal(t, "-", formatDurationMs(0))
	assert.Equal(t, "700ms", formatDurationMs(700))
	assert.Equal(t, "1.5s", formatDurationMs(1500))
}
