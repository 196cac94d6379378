package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"convoy/internal/api"
	"convoy/internal/graph"
	"convoy/internal/registry"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Renderer writes styled tables for the coordination domain objects.
type Renderer struct {
	out io.Writer
}

// NewRenderer creates a renderer writing to the given writer. Pass nil to
// write to stdout.
func NewRenderer(out io.Writer) *Renderer {
	if out == nil {
		out = os.Stdout
	}
	return &Renderer{out: out}
}

// newStyledTable creates a table with the standard styling.
func (r *Renderer) newStyledTable() table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetStyle(table.StyleRounded)
	return t
}

// RenderPlan prints the batched deployment plan.
func (r *Renderer) RenderPlan(batches []graph.Batch) {
	t := r.newStyledTable()
	t.AppendHeader(table.Row{
		text.FgHiCyan.Sprint("BATCH"),
		text.FgHiCyan.Sprint("SERVICES"),
		text.FgHiCyan.Sprint("WAITS FOR"),
	})

	for _, batch := range batches {
		waitsFor := "-"
		if len(batch.DependsOn) > 0 {
			ids := make([]string, 0, len(batch.DependsOn))
			for _, id := range batch.DependsOn {
				ids = append(ids, fmt.Sprintf("%d", id+1))
			}
			waitsFor = "batch " + strings.Join(ids, ", ")
		}
		t.AppendRow(table.Row{
			batch.ID + 1,
			strings.Join(batch.Names(), ", "),
			waitsFor,
		})
	}
	t.Render()

	total := 0
	for _, batch := range batches {
		total += len(batch.Services)
	}
	fmt.Fprintf(r.out, "%d services in %d batches\n", total, len(batches))
}

// RenderResults prints per-service outcomes and the release summary.
func (r *Renderer) RenderResults(result *api.CoordinateResult) {
	t := r.newStyledTable()
	t.AppendHeader(table.Row{
		text.FgHiCyan.Sprint("SERVICE"),
		text.FgHiCyan.Sprint("VERSION"),
		text.FgHiCyan.Sprint("STATUS"),
		text.FgHiCyan.Sprint("HEALTH"),
		text.FgHiCyan.Sprint("DURATION"),
		text.FgHiCyan.Sprint("DETAIL"),
	})

	for _, sr := range result.ServiceResults {
		t.AppendRow(table.Row{
			sr.Service,
			sr.Version,
			colorServiceStatus(sr.Status),
			colorHealth(sr.Health),
			formatDurationMs(sr.DurationMs),
			sr.Error,
		})
	}
	t.Render()

	fmt.Fprintf(r.out, "release %s: %d deployed, %d failed, %d rolled back of %d services in %s (health: %s)\n",
		result.ReleaseID,
		result.Summary.Deployed, result.Summary.Failed, result.Summary.RolledBack,
		result.Summary.TotalServices,
		formatDurationMs(result.Summary.DurationMs),
		colorHealth(result.OverallHealth))

	if result.ReleaseNotes != "" {
		fmt.Fprintf(r.out, "release notes: %s\n", result.ReleaseNotes)
	}
	for _, warning := range result.Warnings {
		fmt.Fprintln(r.out, FormatWarning(warning))
	}
}

// RenderHistory prints one page of stored releases.
func (r *Renderer) RenderHistory(list *registry.ListResult) {
	if list.Total == 0 {
		fmt.Fprintln(r.out, text.FgYellow.Sprint("No releases recorded"))
		return
	}

	t := r.newStyledTable()
	t.AppendHeader(table.Row{
		text.FgHiCyan.Sprint("RELEASE"),
		text.FgHiCyan.Sprint("NAME"),
		text.FgHiCyan.Sprint("ENVIRONMENT"),
		text.FgHiCyan.Sprint("STATUS"),
		text.FgHiCyan.Sprint("SERVICES"),
		text.FgHiCyan.Sprint("DURATION"),
		text.FgHiCyan.Sprint("WHEN"),
	})

	for _, record := range list.Releases {
		t.AppendRow(table.Row{
			shortID(record.ReleaseID),
			record.ReleaseName,
			record.Environment,
			colorReleaseStatus(record.Status),
			len(record.Services),
			formatDurationMs(record.DurationMs),
			record.Timestamp.Local().Format("2006-01-02 15:04:05"),
		})
	}
	t.Render()

	fmt.Fprintf(r.out, "showing %d of %d releases\n", len(list.Releases), list.Total)
	if list.HasMore {
		fmt.Fprintf(r.out, "more available: rerun with --offset %d\n", list.Offset+len(list.Releases))
	}
}

// RenderStatistics prints derived release statistics.
func (r *Renderer) RenderStatistics(stats *api.ReleaseStatistics) {
	scope := "all environments"
	if stats.Environment != "" {
		scope = string(stats.Environment)
	}

	t := r.newStyledTable()
	t.AppendHeader(table.Row{
		text.FgHiCyan.Sprint("METRIC"),
		text.FgHiCyan.Sprint("VALUE"),
	})
	t.AppendRow(table.Row{"Scope", scope})
	t.AppendRow(table.Row{"Total releases", stats.TotalReleases})
	t.AppendRow(table.Row{"Successful", stats.Successful})
	t.AppendRow(table.Row{"Failed", stats.Failed})
	t.AppendRow(table.Row{"Rolled back", stats.RolledBack})
	t.AppendRow(table.Row{"In progress", stats.InProgress})
	t.AppendRow(table.Row{"Success rate", fmt.Sprintf("%.1f%%", stats.SuccessRate*100)})
	t.AppendRow(table.Row{"Average duration", formatDurationMs(stats.AverageDurationMs)})
	t.Render()
}

// RenderIssues prints validation issues, one row per finding.
func (r *Renderer) RenderIssues(issues []api.ValidationIssue) {
	t := r.newStyledTable()
	t.AppendHeader(table.Row{
		text.FgHiCyan.Sprint("KIND"),
		text.FgHiCyan.Sprint("SERVICE"),
		text.FgHiCyan.Sprint("PROBLEM"),
	})
	for _, issue := range issues {
		t.AppendRow(table.Row{
			text.FgRed.Sprint(issue.Kind),
			issue.Service,
			issue.Message,
		})
	}
	t.Render()
	fmt.Fprintf(r.out, "%d validation issues\n", len(issues))
}

func colorServiceStatus(status api.ServiceStatus) string {
	switch status {
	case api.ServiceStatusSuccess:
		return text.FgGreen.Sprint(status)
	case api.ServiceStatusFailed:
		return text.FgRed.Sprint(status)
	case api.ServiceStatusRolledBack:
		return text.FgYellow.Sprint(status)
	default:
		return text.Faint.Sprint(status)
	}
}

func colorReleaseStatus(status api.ReleaseStatus) string {
	switch status {
	case api.ReleaseStatusSuccess:
		return text.FgGreen.Sprint(status)
	case api.ReleaseStatusFailed:
		return text.FgRed.Sprint(status)
	case api.ReleaseStatusRolledBack:
		return text.FgYellow.Sprint(status)
	default:
		return text.Faint.Sprint(status)
	}
}

func colorHealth(health api.HealthStatus) string {
	switch health {
	case api.HealthHealthy:
		return text.FgGreen.Sprint(health)
	case api.HealthDegraded:
		return text.FgYellow.Sprint(health)
	case api.HealthUnhealthy:
		return text.FgRed.Sprint(health)
	default:
		return ""
	}
}

func formatDurationMs(ms int64) string {
	if ms == 0 {
		return "-"
	}
	return time.Duration(ms * int64(time.Millisecond)).Round(time.Millisecond).String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
