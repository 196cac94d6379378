package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"convoy/internal/api"
	"convoy/pkg/logging"

	"github.com/google/uuid"
)

// degradedExitCode lets a deploy command report a successful but degraded
// deployment: the service is up, health probes are complaining.
const degradedExitCode = 3

// outputTailLimit caps how much command output is carried into an error
// message.
const outputTailLimit = 1024

// CommandConfig configures the command executor. The commands are argv
// vectors, not shell strings; services may override them per declaration
// through the "deployCommand" and "rollbackCommand" config keys.
type CommandConfig struct {
	DeployCommand   []string
	RollbackCommand []string
}

// CommandExecutor deploys a service by running a configured command. How
// the command actually ships the service (containers, VMs, plain rsync)
// is entirely the user's business; the executor only maps exit status to
// an outcome.
//
// The child process receives the release context in its environment:
// CONVOY_SERVICE, CONVOY_VERSION, CONVOY_ENVIRONMENT, CONVOY_OPERATION,
// CONVOY_DEPLOYMENT_ID and, on rollback, CONVOY_REASON.
type CommandExecutor struct {
	deployArgv   []string
	rollbackArgv []string
}

var _ api.DeploymentExecutor = (*CommandExecutor)(nil)

// NewCommandExecutor creates a command executor with the given defaults.
func NewCommandExecutor(cfg CommandConfig) *CommandExecutor {
	return &CommandExecutor{
		deployArgv:   cfg.DeployCommand,
		rollbackArgv: cfg.RollbackCommand,
	}
}

// Deploy runs the deploy command for one service and maps its exit status
// to a ServiceResult.
func (e *CommandExecutor) Deploy(ctx context.Context, svc api.ServiceDeclaration, env api.Environment) (*api.ServiceResult, error) {
	argv, err := argvFor(svc, "deployCommand", e.deployArgv)
	if err != nil {
		return nil, err
	}
	if len(argv) == 0 {
		return nil, fmt.Errorf("no deploy command configured for service %s", svc.Name)
	}
	return e.run(ctx, argv, svc, env, "deploy", "")
}

// Rollback runs the rollback command for one service. The reason is
// passed to the child through CONVOY_REASON.
func (e *CommandExecutor) Rollback(ctx context.Context, svc api.ServiceDeclaration, env api.Environment, reason string) (*api.ServiceResult, error) {
	argv, err := argvFor(svc, "rollbackCommand", e.rollbackArgv)
	if err != nil {
		return nil, err
	}
	if len(argv) == 0 {
		return nil, fmt.Errorf("no rollback command configured for service %s", svc.Name)
	}
	result, err := e.run(ctx, argv, svc, env, "rollback", reason)
	if err != nil {
		return nil, err
	}
	result.Status = api.ServiceStatusRolledBack
	return result, nil
}

func (e *CommandExecutor) run(ctx context.Context, argv []string, svc api.ServiceDeclaration, env api.Environment, op, reason string) (*api.ServiceResult, error) {
	deploymentID := uuid.New().String()

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Env = append(os.Environ(),
		"CONVOY_SERVICE="+svc.Name,
		"CONVOY_VERSION="+svc.Version,
		"CONVOY_ENVIRONMENT="+string(env),
		"CONVOY_OPERATION="+op,
		"CONVOY_DEPLOYMENT_ID="+deploymentID,
	)
	if reason != "" {
		cmd.Env = append(cmd.Env, "CONVOY_REASON="+reason)
	}

	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	logging.Debug("CommandExecutor", "Running %s for %s: %s", op, svc.Name, strings.Join(argv, " "))

	started := time.Now()
	runErr := cmd.Run()
	elapsedMs := time.Since(started).Milliseconds()

	result := &api.ServiceResult{
		Service:      svc.Name,
		Status:       api.ServiceStatusSuccess,
		DeploymentID: deploymentID,
		Version:      svc.Version,
		DurationMs:   elapsedMs,
		Health:       api.HealthHealthy,
	}

	if runErr == nil {
		return result, nil
	}

	// A context hit (timeout or cancellation) must be reported as an
	// error so the coordinator treats it like any other failure.
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var exitErr *exec.ExitError
	if errors.As(runErr, &exitErr) && exitErr.ExitCode() == degradedExitCode {
		result.Health = api.HealthDegraded
		return result, nil
	}

	return nil, fmt.Errorf("%s command failed: %w%s", op, runErr, outputTail(output.Bytes()))
}

// argvFor resolves the command for one service: the per-service override
// from the declaration config wins over the executor default. Overrides
// may be a string (split on whitespace) or a list of strings.
func argvFor(svc api.ServiceDeclaration, key string, fallback []string) ([]string, error) {
	raw, ok := svc.Config[key]
	if !ok {
		return fallback, nil
	}

	switch v := raw.(type) {
	case string:
		return strings.Fields(v), nil
	case []string:
		return v, nil
	case []interface{}:
		argv := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("service %s: %s entries must be strings, got %T", svc.Name, key, item)
			}
			argv = append(argv, s)
		}
		return argv, nil
	default:
		return nil, fmt.Errorf("service %s: %s must be a string or list of strings, got %T", svc.Name, key, raw)
	}
}

// outputTail formats the end of the command output for inclusion in an
// error message.
func outputTail(output []byte) string {
	trimmed := strings.TrimSpace(string(output))
	if trimmed == "" {
		return ""
	}
	if len(trimmed) > outputTailLimit {
		trimmed = "..." + trimmed[len(trimmed)-outputTailLimit:]
	}
	return "\noutput: " + trimmed
}
