package executor

import (
	"context"
	"testing"
	"time"

	"convoy/internal/api"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulatedDeploySuccess(t *testing.T) {
	e := NewSimulatedExecutor()

	result, err := e.Deploy(context.Background(), api.ServiceDeclaration{Name: "web", Version: "2.0.0"}, api.EnvironmentStaging)

	require.NoError(t, err)
	assert.Equal(t, "web", result.Service)
	assert.Equal(t, api.ServiceStatusSuccess, result.Status)
	assert.Equal(t, api.HealthHealthy, result.Health)
	assert.Equal(t, "2.0.0", result.Version)
	assert.Equal(t, 1, e.DeployCalls())
	assert.Equal(t, []string{"web"}, e.DeployedServices())
}

func TestSimulatedDeployScriptedFailure(t *testing.T) {
	e := NewSimulatedExecutor()
	e.FailOn["web"] = "image not found"

	_, err := e.Deploy(context.Background(), api.ServiceDeclaration{Name: "web"}, api.EnvironmentStaging)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "image not found")
	assert.Equal(t, 1, e.DeployCalls(), "failed attempts still count")
}

func TestSimulatedDeployDegraded(t *testing.T) {
	e := NewSimulatedExecutor()
	e.DegradeOn["web"] = true

	result, err := e.Deploy(context.Background(), api.ServiceDeclaration{Name: "web"}, api.EnvironmentProduction)

	require.NoError(t, err)
	assert.Equal(t, api.ServiceStatusSuccess, result.Status)
	assert.Equal(t, api.HealthDegraded, result.Health)
}

func TestSimulatedDeployHonorsContextDeadline(t *testing.T) {
	e := NewSimulatedExecutor()
	e.Latency = time.Second

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := e.Deploy(ctx, api.ServiceDeclaration{Name: "web"}, api.EnvironmentStaging)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSimulatedRollback(t *testing.T) {
	e := NewSimulatedExecutor()

	result, err := e.Rollback(context.Background(), api.ServiceDeclaration{Name: "web"}, api.EnvironmentStaging, "deploy of api failed")

	require.NoError(t, err)
	assert.Equal(t, api.ServiceStatusRolledBack, result.Status)
	assert.Equal(t, 1, e.RollbackCalls())
}

func TestSimulatedRollbackScriptedFailure(t *testing.T) {
	e := NewSimulatedExecutor()
	e.FailRollbackOn["web"] = "previous revision gone"

	_, err := e.Rollback(context.Background(), api.ServiceDeclaration{Name: "web"}, api.EnvironmentStaging, "reason")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "previous revision gone")
}
