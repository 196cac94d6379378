package coordinator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"convoy/internal/api"
	"convoy/internal/graph"
	"convoy/pkg/logging"

	"golang.org/x/sync/semaphore"
)

// executionOutcome is everything the batch engine hands back to the
// coordinator for result assembly.
type executionOutcome struct {
	status  api.ReleaseStatus
	health  api.HealthStatus
	summary api.ReleaseSummary

	// order is the flattened order in which deployments were launched
	order []string

	// results holds one entry per requested service, in input order
	results []api.ServiceResult
}

// executeBatches runs the planned batches strictly in sequence. Services
// inside one batch run concurrently with a bounded fan-out; the batch is
// awaited in full before its outcome is decided, so a mid-batch failure
// never leaves sibling deployments running unobserved. After a failing
// batch no further batch starts; the remaining services are reported as
// skipped, or every previously successful service is rolled back when the
// request asked for that.
func (c *Coordinator) executeBatches(ctx context.Context, releaseID string, params api.CoordinateParams, batches []graph.Batch) *executionOutcome {
	resultsByName := make(map[string]*api.ServiceResult, len(params.Services))

	var order []string
	var deployed []api.ServiceDeclaration // successful deployments, launch order
	failed := false

	for _, batch := range batches {
		logging.Debug("Coordinator", "Release %s: deploying batch %d (%d services)",
			releaseID, batch.ID, len(batch.Services))

		for _, svc := range batch.Services {
			order = append(order, svc.Name)
		}

		batchResults := c.runBatch(ctx, batch, params)

		for i, svc := range batch.Services {
			result := batchResults[i]
			resultsByName[svc.Name] = result
			if result.Status == api.ServiceStatusSuccess {
				deployed = append(deployed, svc)
			} else {
				failed = true
			}
		}

		if failed {
			logging.Warn("Coordinator", "Release %s: batch %d finished with failures, not starting further batches",
				releaseID, batch.ID)
			break
		}
	}

	status := api.ReleaseStatusSuccess
	if failed {
		status = api.ReleaseStatusFailed
		if params.RollbackOnFailure {
			c.rollbackDeployed(ctx, releaseID, deployed, params, resultsByName)
			status = api.ReleaseStatusRolledBack
		}
	}

	// One entry per requested service, in input order. Services whose
	// batch never started are reported as skipped.
	results := make([]api.ServiceResult, 0, len(params.Services))
	summary := api.ReleaseSummary{TotalServices: len(params.Services)}
	for _, svc := range params.Services {
		result, attempted := resultsByName[svc.Name]
		if !attempted {
			result = &api.ServiceResult{
				Service: svc.Name,
				Status:  api.ServiceStatusSkipped,
				Version: svc.Version,
			}
		}
		switch result.Status {
		case api.ServiceStatusSuccess:
			summary.Deployed++
		case api.ServiceStatusFailed:
			summary.Failed++
		case api.ServiceStatusRolledBack:
			summary.RolledBack++
		}
		results = append(results, *result)
	}

	return &executionOutcome{
		status:  status,
		health:  aggregateHealth(results),
		summary: summary,
		order:   order,
		results: results,
	}
}

// runBatch deploys every service of one batch concurrently and waits for
// all of them, successes and failures alike (fail-complete). The fan-out
// is bounded by MaxConcurrent when set.
func (c *Coordinator) runBatch(ctx context.Context, batch graph.Batch, params api.CoordinateParams) []*api.ServiceResult {
	limit := int64(c.maxConcurrent)
	if limit <= 0 {
		limit = int64(len(batch.Services))
	}
	sem := semaphore.NewWeighted(limit)

	results := make([]*api.ServiceResult, len(batch.Services))
	var wg sync.WaitGroup

	for i, svc := range batch.Services {
		wg.Add(1)
		go func(i int, svc api.ServiceDeclaration) {
			defer wg.Done()
			if err := sem.Acquire(ctx, 1); err != nil {
				results[i] = failedResult(svc, "deploy", err, 0)
				return
			}
			defer sem.Release(1)
			results[i] = c.deployOne(ctx, svc, params)
		}(i, svc)
	}

	wg.Wait()
	return results
}

// deployOne performs a single deployment call with the per-service
// timeout applied. Executor errors, timeouts included, are captured into
// a failed ServiceResult and never propagate further.
func (c *Coordinator) deployOne(ctx context.Context, svc api.ServiceDeclaration, params api.CoordinateParams) *api.ServiceResult {
	deployCtx, cancel := c.serviceContext(ctx, params)
	defer cancel()

	started := time.Now()
	result, err := c.executor.Deploy(deployCtx, svc, params.Environment)
	elapsedMs := time.Since(started).Milliseconds()

	if err != nil {
		derr := api.NewDeploymentError(svc.Name, "deploy", err)
		logging.Warn("Coordinator", "%v", derr)
		return failedResult(svc, "deploy", err, elapsedMs)
	}
	if result == nil {
		return failedResult(svc, "deploy", fmt.Errorf("executor returned no result"), elapsedMs)
	}

	normalizeResult(result, svc, elapsedMs)
	return result
}

// rollbackDeployed reverts every previously successful service in reverse
// order of their original deployment, most recently deployed first. A
// rollback call that itself fails leaves that service failed, its actual
// state being unknown.
func (c *Coordinator) rollbackDeployed(ctx context.Context, releaseID string, deployed []api.ServiceDeclaration, params api.CoordinateParams, results map[string]*api.ServiceResult) {
	if len(deployed) == 0 {
		return
	}

	reason := fmt.Sprintf("release %s failed, rolling back previously deployed services", releaseID)
	logging.Info("Coordinator", "Release %s: rolling back %d services", releaseID, len(deployed))

	for i := len(deployed) - 1; i >= 0; i-- {
		svc := deployed[i]
		result := results[svc.Name]

		rbCtx, cancel := c.serviceContext(ctx, params)
		_, err := c.executor.Rollback(rbCtx, svc, params.Environment, reason)
		cancel()

		if err != nil {
			derr := api.NewDeploymentError(svc.Name, "rollback", err)
			logging.Error("Coordinator", derr, "Rollback failed, service state unknown")
			result.Status = api.ServiceStatusFailed
			result.Health = api.HealthUnhealthy
			result.Error = derr.Error()
			continue
		}

		result.Status = api.ServiceStatusRolledBack
	}
}

// serviceContext derives the context for one deploy or rollback call,
// applying the request's timeout or the coordinator default.
func (c *Coordinator) serviceContext(ctx context.Context, params api.CoordinateParams) (context.Context, context.CancelFunc) {
	timeout := params.ServiceTimeout
	if timeout <= 0 {
		timeout = c.serviceTimeout
	}
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

// aggregateHealth folds per-service outcomes into the release health:
// healthy only when every attempted service succeeded healthy, unhealthy
// as soon as any service ended failed, degraded in between.
func aggregateHealth(results []api.ServiceResult) api.HealthStatus {
	health := api.HealthHealthy
	for _, r := range results {
		switch r.Status {
		case api.ServiceStatusFailed:
			return api.HealthUnhealthy
		case api.ServiceStatusSuccess, api.ServiceStatusRolledBack:
			if r.Health != api.HealthHealthy && r.Health != "" {
				health = api.HealthDegraded
			}
		}
	}
	return health
}

// failedResult builds the ServiceResult for a failed deploy or rollback
// call.
func failedResult(svc api.ServiceDeclaration, op string, err error, elapsedMs int64) *api.ServiceResult {
	return &api.ServiceResult{
		Service:    svc.Name,
		Status:     api.ServiceStatusFailed,
		Version:    svc.Version,
		DurationMs: elapsedMs,
		Health:     api.HealthUnhealthy,
		Error:      api.NewDeploymentError(svc.Name, op, err).Error(),
	}
}

// normalizeResult fills in the fields an executor is allowed to leave
// empty so downstream consumers see a complete result.
func normalizeResult(result *api.ServiceResult, svc api.ServiceDeclaration, elapsedMs int64) {
	if result.Service == "" {
		result.Service = svc.Name
	}
	if result.Version == "" {
		result.Version = svc.Version
	}
	if result.DurationMs == 0 {
		result.DurationMs = elapsedMs
	}
	if result.Status == "" {
		result.Status = api.ServiceStatusSuccess
	}
	if result.Health == "" {
		if result.Status == api.ServiceStatusSuccess {
			result.Health = api.HealthHealthy
		} else {
			result.Health = api.HealthUnhealthy
		}
	}
}
