package executor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"convoy/internal/api"
	"convoy/pkg/logging"
)

// SimulatedExecutor reports scripted deployment outcomes without deploying
// anything. It backs --dry-run and tests: latency is deterministic and
// per-service failures and health degradations can be scripted up front.
type SimulatedExecutor struct {
	mu sync.Mutex

	// Latency is slept for on every call, honoring the context deadline.
	Latency time.Duration

	// FailOn maps service names to the error message their deploy fails
	// with.
	FailOn map[string]string

	// FailRollbackOn maps service names to the error message their
	// rollback fails with.
	FailRollbackOn map[string]string

	// DegradeOn marks services that deploy successfully but report
	// degraded health.
	DegradeOn map[string]bool

	deployCalls   int
	rollbackCalls int
	deployed      []string
}

var _ api.DeploymentExecutor = (*SimulatedExecutor)(nil)

// NewSimulatedExecutor creates a simulated executor with no scripted
// failures.
func NewSimulatedExecutor() *SimulatedExecutor {
	return &SimulatedExecutor{
		FailOn:         make(map[string]string),
		FailRollbackOn: make(map[string]string),
		DegradeOn:      make(map[string]bool),
	}
}

// Deploy pretends to deploy one service.
func (e *SimulatedExecutor) Deploy(ctx context.Context, svc api.ServiceDeclaration, env api.Environment) (*api.ServiceResult, error) {
	e.mu.Lock()
	e.deployCalls++
	e.deployed = append(e.deployed, svc.Name)
	e.mu.Unlock()

	started := time.Now()
	if err := e.sleep(ctx); err != nil {
		return nil, err
	}

	if msg, fails := e.FailOn[svc.Name]; fails {
		return nil, fmt.Errorf("%s", msg)
	}

	health := api.HealthHealthy
	if e.DegradeOn[svc.Name] {
		health = api.HealthDegraded
	}

	logging.Debug("SimulatedExecutor", "Simulated deploy of %s@%s to %s", svc.Name, svc.Version, env)
	return &api.ServiceResult{
		Service:      svc.Name,
		Status:       api.ServiceStatusSuccess,
		DeploymentID: "sim-" + svc.Name,
		Version:      svc.Version,
		DurationMs:   time.Since(started).Milliseconds(),
		Health:       health,
	}, nil
}

// Rollback pretends to roll back one service.
func (e *SimulatedExecutor) Rollback(ctx context.Context, svc api.ServiceDeclaration, env api.Environment, reason string) (*api.ServiceResult, error) {
	e.mu.Lock()
	e.rollbackCalls++
	e.mu.Unlock()

	started := time.Now()
	if err := e.sleep(ctx); err != nil {
		return nil, err
	}

	if msg, fails := e.FailRollbackOn[svc.Name]; fails {
		return nil, fmt.Errorf("%s", msg)
	}

	logging.Debug("SimulatedExecutor", "Simulated rollback of %s on %s: %s", svc.Name, env, reason)
	return &api.ServiceResult{
		Service:      svc.Name,
		Status:       api.ServiceStatusRolledBack,
		DeploymentID: "sim-" + svc.Name,
		Version:      svc.Version,
		DurationMs:   time.Since(started).Milliseconds(),
		Health:       api.HealthHealthy,
	}, nil
}

// DeployCalls returns how many deploys were attempted.
func (e *SimulatedExecutor) DeployCalls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.deployCalls
}

// RollbackCalls returns how many rollbacks were attempted.
func (e *SimulatedExecutor) RollbackCalls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rollbackCalls
}

// DeployedServices returns the attempted deployments in launch order.
func (e *SimulatedExecutor) DeployedServices() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	deployed := make([]string, len(e.deployed))
	copy(deployed, e.deployed)
	return deployed
}

func (e *SimulatedExecutor) sleep(ctx context.Context) error {
	if e.Latency <= 0 {
		return ctx.Err()
	}
	select {
	case <-time.After(e.Latency):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
