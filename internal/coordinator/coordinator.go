package coordinator

import (
	"context"
	"fmt"
	"time"

	"convoy/internal/api"
	"convoy/pkg/logging"

	"github.com/google/uuid"
)

// Config holds the collaborators and tuning knobs for a Coordinator.
type Config struct {
	// Registry persists release records. Optional: without it releases
	// still run, they are just not recorded.
	Registry api.ReleaseStore

	// Executor performs the actual per-service deploy and rollback
	// calls. Required.
	Executor api.DeploymentExecutor

	// Notes renders release notes for finished releases. Optional.
	Notes api.ReleaseNotesGenerator

	// MaxConcurrent bounds the fan-out inside one batch. Zero or
	// negative means batch-wide fan-out (every batch member at once).
	MaxConcurrent int

	// ServiceTimeout bounds each deploy and rollback call unless the
	// request carries its own timeout. Zero means no deadline.
	ServiceTimeout time.Duration
}

// Coordinator orchestrates releases. All dependencies arrive through the
// Config; there are no package-level globals, so coordinations for
// different releases are fully independent.
type Coordinator struct {
	registry       api.ReleaseStore
	executor       api.DeploymentExecutor
	notes          api.ReleaseNotesGenerator
	maxConcurrent  int
	serviceTimeout time.Duration
}

// New creates a coordinator from the given configuration.
func New(cfg Config) (*Coordinator, error) {
	if cfg.Executor == nil {
		return nil, fmt.Errorf("coordinator requires a deployment executor")
	}
	return &Coordinator{
		registry:       cfg.Registry,
		executor:       cfg.Executor,
		notes:          cfg.Notes,
		maxConcurrent:  cfg.MaxConcurrent,
		serviceTimeout: cfg.ServiceTimeout,
	}, nil
}

// CoordinateRelease runs one release: parameter checks, the validation
// gate, batch planning, batch execution and result assembly.
//
// Validation failures return a *api.ValidationError before any deployment
// side effect. Deployment failures never surface as errors; they are
// captured in the affected ServiceResult and folded into the release
// status. Registry and notes failures are logged and reported as warnings
// on the result but never discard the computed outcome.
func (c *Coordinator) CoordinateRelease(ctx context.Context, params api.CoordinateParams) (*api.CoordinateResult, error) {
	started := time.Now()

	if issues := checkParams(params); len(issues) > 0 {
		return nil, api.NewValidationError(issues...)
	}

	strategy := params.Strategy
	if strategy == "" {
		strategy = api.StrategyDependencyOrder
	}

	releaseID := uuid.New().String()
	timestamp := started.UTC()
	names := make([]string, 0, len(params.Services))
	for _, svc := range params.Services {
		names = append(names, svc.Name)
	}

	logging.Info("Coordinator", "Coordinating release %s: %d services to %s (strategy %s)",
		releaseID, len(params.Services), params.Environment, strategy)

	var warnings []string

	record := &api.ReleaseRecord{
		ReleaseID:   releaseID,
		ReleaseName: params.ReleaseName,
		Environment: params.Environment,
		Timestamp:   timestamp,
		Status:      api.ReleaseStatusPending,
		Services:    names,
	}
	c.persist(ctx, "create", &warnings, func() error {
		return c.addRecord(ctx, record)
	})

	// Validation gate. It runs for every strategy, including parallel:
	// the checks exist for data integrity, not for ordering.
	if validation := ValidateServices(params.Services); !validation.Valid {
		c.persist(ctx, "mark failed", &warnings, func() error {
			return c.updateStatus(ctx, releaseID, api.ReleaseStatusFailed)
		})
		logging.Warn("Coordinator", "Release %s rejected: %d validation issues", releaseID, len(validation.Issues))
		return nil, api.NewValidationError(validation.Issues...)
	}

	batches, err := PlanBatches(params.Services, strategy)
	if err != nil {
		c.persist(ctx, "mark failed", &warnings, func() error {
			return c.updateStatus(ctx, releaseID, api.ReleaseStatusFailed)
		})
		return nil, err
	}

	c.persist(ctx, "mark in-progress", &warnings, func() error {
		return c.updateStatus(ctx, releaseID, api.ReleaseStatusInProgress)
	})

	outcome := c.executeBatches(ctx, releaseID, params, batches)

	durationMs := time.Since(started).Milliseconds()

	record.Status = outcome.status
	record.DeploymentOrder = outcome.order
	record.ServiceResults = outcome.results
	record.DurationMs = durationMs
	record.OverallHealth = outcome.health

	if c.notes != nil {
		path, err := c.notes.Generate(ctx, record)
		if err != nil {
			logging.Error("Coordinator", err, "Release notes generation failed for release %s", releaseID)
			warnings = append(warnings, fmt.Sprintf("release notes generation failed: %v", err))
		} else {
			record.ReleaseNotes = path
		}
	}

	c.persist(ctx, "finalize", &warnings, func() error {
		return c.registry.UpdateRelease(ctx, releaseID, api.ReleaseUpdate{
			Status:          &record.Status,
			DeploymentOrder: record.DeploymentOrder,
			ServiceResults:  record.ServiceResults,
			DurationMs:      &record.DurationMs,
			OverallHealth:   &record.OverallHealth,
			ReleaseNotes:    &record.ReleaseNotes,
		})
	})

	logging.Info("Coordinator", "Release %s finished: %s (%d deployed, %d failed, %d rolled back) in %dms",
		releaseID, outcome.status, outcome.summary.Deployed, outcome.summary.Failed,
		outcome.summary.RolledBack, durationMs)

	summary := outcome.summary
	summary.DurationMs = durationMs

	return &api.CoordinateResult{
		Success:         outcome.status == api.ReleaseStatusSuccess,
		ReleaseID:       releaseID,
		Environment:     params.Environment,
		Timestamp:       timestamp,
		Summary:         summary,
		DeploymentOrder: outcome.order,
		ServiceResults:  outcome.results,
		OverallHealth:   outcome.health,
		ReleaseNotes:    record.ReleaseNotes,
		Warnings:        warnings,
	}, nil
}

// checkParams rejects malformed requests before any side effect. Every
// problem is collected so the caller can fix the request in one pass.
func checkParams(params api.CoordinateParams) []api.ValidationIssue {
	var issues []api.ValidationIssue
	if !params.Environment.Valid() {
		issues = append(issues, api.ValidationIssue{
			Kind:    api.IssueBadParameter,
			Service: string(params.Environment),
			Message: fmt.Sprintf("invalid environment %q (valid: staging, production)", params.Environment),
		})
	}
	if len(params.Services) == 0 {
		issues = append(issues, api.ValidationIssue{
			Kind:    api.IssueBadParameter,
			Message: "at least one service is required",
		})
	}
	if params.Strategy != "" && !params.Strategy.Valid() {
		issues = append(issues, api.ValidationIssue{
			Kind:    api.IssueBadParameter,
			Service: string(params.Strategy),
			Message: fmt.Sprintf("invalid strategy %q (valid: sequential, parallel, dependency-order)", params.Strategy),
		})
	}
	return issues
}

// addRecord stores the initial pending record.
func (c *Coordinator) addRecord(ctx context.Context, record *api.ReleaseRecord) error {
	return c.registry.AddRelease(ctx, record)
}

// updateStatus moves the stored record to the given status.
func (c *Coordinator) updateStatus(ctx context.Context, releaseID string, status api.ReleaseStatus) error {
	return c.registry.UpdateRelease(ctx, releaseID, api.ReleaseUpdate{Status: &status})
}

// persist runs a registry write and converts its failure into a warning.
// Registry failures must never overwrite or discard a computed deployment
// outcome, so they are surfaced but non-blocking.
func (c *Coordinator) persist(ctx context.Context, op string, warnings *[]string, write func() error) {
	if c.registry == nil {
		return
	}
	if err := write(); err != nil {
		logging.Error("Coordinator", err, "Registry write failed (%s)", op)
		if warnings != nil {
			*warnings = append(*warnings, fmt.Sprintf("registry write failed (%s): %v", op, err))
		}
	}
}
