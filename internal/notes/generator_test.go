package notes

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"convoy/internal/api"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRecord() *api.ReleaseRecord {
	return &api.ReleaseRecord{
		ReleaseID:       "rel-123",
		ReleaseName:     "summer-launch",
		Environment:     api.EnvironmentProduction,
		Timestamp:       time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
		Status:          api.ReleaseStatusSuccess,
		Services:        []string{"db", "api"},
		DeploymentOrder: []string{"db", "api"},
		ServiceResults: []api.ServiceResult{
			{Service: "db", Status: api.ServiceStatusSuccess, Version: "1.0.0", Health: api.HealthHealthy, DurationMs: 1200},
			{Service: "api", Status: api.ServiceStatusSuccess, Version: "2.1.0", Health: api.HealthHealthy, DurationMs: 800},
		},
		DurationMs:    2100,
		OverallHealth: api.HealthHealthy,
	}
}

func TestGenerateWritesMarkdown(t *testing.T) {
	dir := t.TempDir()
	g, err := New(dir, "")
	require.NoError(t, err)

	path, err := g.Generate(context.Background(), testRecord())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, ".convoy/notes", "rel-123.md"), path)

	content, err := os.ReadFile(path)
	require.NoError(t, err)

	text := string(content)
	assert.Contains(t, text, "# Release summer-launch")
	assert.Contains(t, text, "SUCCESS")
	assert.Contains(t, text, "1. db")
	assert.Contains(t, text, "2. api")
	assert.Contains(t, text, "| api | 2.1.0 | success | healthy | 800 ms |")
}

func TestGenerateFallsBackToReleaseID(t *testing.T) {
	dir := t.TempDir()
	g, err := New(dir, "")
	require.NoError(t, err)

	record := testRecord()
	record.ReleaseName = ""

	path, err := g.Generate(context.Background(), record)
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "# Release rel-123")
}

func TestGenerateIncludesFailureDetail(t *testing.T) {
	dir := t.TempDir()
	g, err := New(dir, "")
	require.NoError(t, err)

	record := testRecord()
	record.Status = api.ReleaseStatusFailed
	record.ServiceResults = append(record.ServiceResults, api.ServiceResult{
		Service: "worker",
		Status:  api.ServiceStatusFailed,
		Error:   "deploy failed for service worker: image not found",
	})

	path, err := g.Generate(context.Background(), record)
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "**worker**: deploy failed for service worker: image not found")
}

func TestGenerateCustomTemplate(t *testing.T) {
	dir := t.TempDir()
	tmplPath := filepath.Join(dir, "notes.tmpl")
	require.NoError(t, os.WriteFile(tmplPath, []byte("release {{ .ReleaseID }} went {{ .Status }}\n"), 0644))

	g, err := New(dir, tmplPath)
	require.NoError(t, err)

	path, err := g.Generate(context.Background(), testRecord())
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "release rel-123 went success\n", string(content))
}

func TestGenerateRejectsMissingID(t *testing.T) {
	g, err := New(t.TempDir(), "")
	require.NoError(t, err)

	_, err = g.Generate(context.Background(), &api.ReleaseRecord{})
	assert.Error(t, err)
}

func TestNewRejectsBrokenTemplate(t *testing.T) {
	dir := t.TempDir()
	tmplPath := filepath.Join(dir, "broken.tmpl")
	require.NoError(t, os.WriteFile(tmplPath, []byte("{{ .Unclosed"), 0644))

	_, err := New(dir, tmplPath)
	assert.Error(t, err)
}
