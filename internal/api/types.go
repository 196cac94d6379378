package api

import (
	"time"
)

// Environment identifies a deployment target. Only the two environments
// below are valid; anything else is rejected before a release produces
// side effects.
type Environment string

const (
	EnvironmentStaging    Environment = "staging"
	EnvironmentProduction Environment = "production"
)

// Valid reports whether the environment is one of the supported targets.
func (e Environment) Valid() bool {
	return e == EnvironmentStaging || e == EnvironmentProduction
}

// Strategy selects how services are partitioned into deployment batches.
// The set is closed; batch planning dispatches on it through a single
// selector rather than polymorphic strategy objects.
type Strategy string

const (
	// StrategySequential deploys one service per batch in input order.
	StrategySequential Strategy = "sequential"

	// StrategyParallel deploys every service in a single batch.
	StrategyParallel Strategy = "parallel"

	// StrategyDependencyOrder deploys in topologically sorted batches.
	// This is the default when no strategy is given.
	StrategyDependencyOrder Strategy = "dependency-order"
)

// Valid reports whether the strategy is one of the supported values.
func (s Strategy) Valid() bool {
	switch s {
	case StrategySequential, StrategyParallel, StrategyDependencyOrder:
		return true
	default:
		return false
	}
}

// ServiceStatus is the outcome of one service within a release.
type ServiceStatus string

const (
	ServiceStatusSuccess    ServiceStatus = "success"
	ServiceStatusFailed     ServiceStatus = "failed"
	ServiceStatusRolledBack ServiceStatus = "rolled-back"
	ServiceStatusSkipped    ServiceStatus = "skipped"
)

// HealthStatus describes the health of one service after deployment, or of
// the release as a whole after aggregation.
type HealthStatus string

const (
	HealthHealthy   HealthStatus = "healthy"
	HealthDegraded  HealthStatus = "degraded"
	HealthUnhealthy HealthStatus = "unhealthy"
)

// ReleaseStatus tracks a release record through its lifecycle:
// pending -> in-progress -> success | failed | rolled-back.
// The three end states are terminal; a record never transitions out of them.
type ReleaseStatus string

const (
	ReleaseStatusPending    ReleaseStatus = "pending"
	ReleaseStatusInProgress ReleaseStatus = "in-progress"
	ReleaseStatusSuccess    ReleaseStatus = "success"
	ReleaseStatusFailed     ReleaseStatus = "failed"
	ReleaseStatusRolledBack ReleaseStatus = "rolled-back"
)

// Terminal reports whether the status is an end state.
func (s ReleaseStatus) Terminal() bool {
	switch s {
	case ReleaseStatusSuccess, ReleaseStatusFailed, ReleaseStatusRolledBack:
		return true
	default:
		return false
	}
}

// rank orders statuses along the lifecycle so transitions can be checked
// to only ever move forward.
func (s ReleaseStatus) rank() int {
	switch s {
	case ReleaseStatusPending:
		return 0
	case ReleaseStatusInProgress:
		return 1
	case ReleaseStatusSuccess, ReleaseStatusFailed, ReleaseStatusRolledBack:
		return 2
	default:
		return -1
	}
}

// CanTransitionTo reports whether a record in status s may move to next.
// Terminal states accept no further transitions; pending may jump straight
// to failed when validation rejects a release before execution starts.
func (s ReleaseStatus) CanTransitionTo(next ReleaseStatus) bool {
	if s.Terminal() {
		return false
	}
	return next.rank() > s.rank()
}

// ServiceDeclaration describes one deployable unit as submitted by the
// caller. Name is the unique key; Dependencies reference other
// declarations in the same request by name.
type ServiceDeclaration struct {
	// Name uniquely identifies the service within one release request
	Name string `json:"name" yaml:"name"`

	// Version is the version being released
	Version string `json:"version" yaml:"version"`

	// Dependencies lists names of services that must be deployed first
	Dependencies []string `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`

	// Config carries opaque per-service settings passed through to the
	// deployment executor
	Config map[string]interface{} `json:"config,omitempty" yaml:"config,omitempty"`
}

// ServiceResult captures the outcome of deploying (or rolling back, or
// skipping) a single service.
type ServiceResult struct {
	Service      string        `json:"service"`
	Status       ServiceStatus `json:"status"`
	DeploymentID string        `json:"deploymentId,omitempty"`
	Version      string        `json:"version,omitempty"`
	DurationMs   int64         `json:"durationMs"`
	Health       HealthStatus  `json:"health,omitempty"`
	Error        string        `json:"error,omitempty"`
}

// ReleaseSummary aggregates per-service outcomes into release-level counts.
type ReleaseSummary struct {
	TotalServices int   `json:"totalServices"`
	Deployed      int   `json:"deployed"`
	Failed        int   `json:"failed"`
	RolledBack    int   `json:"rolledBack"`
	DurationMs    int64 `json:"durationMs"`
}

// ReleaseRecord is the durable record of one coordination call. It is
// created when the call starts, updated as execution progresses, and
// persisted in a terminal state when the call returns.
type ReleaseRecord struct {
	// ReleaseID uniquely identifies this release
	ReleaseID string `json:"releaseId"`

	// ReleaseName is an optional human-readable label
	ReleaseName string `json:"releaseName,omitempty"`

	// Environment the release targets
	Environment Environment `json:"environment"`

	// Timestamp is when coordination started
	Timestamp time.Time `json:"timestamp"`

	// Status tracks the release through its lifecycle
	Status ReleaseStatus `json:"status"`

	// Services lists the names of all services in the request
	Services []string `json:"services"`

	// DeploymentOrder is the flattened order in which deployments were
	// actually attempted
	DeploymentOrder []string `json:"deploymentOrder,omitempty"`

	// ServiceResults holds the outcome for every service
	ServiceResults []ServiceResult `json:"serviceResults,omitempty"`

	// DurationMs is the total wall time of the coordination call
	DurationMs int64 `json:"durationMs"`

	// OverallHealth is the aggregated health judgment
	OverallHealth HealthStatus `json:"overallHealth,omitempty"`

	// ReleaseNotes is the path to the generated notes file
	ReleaseNotes string `json:"releaseNotes,omitempty"`
}

// CoordinateParams are the inputs to one release coordination call.
type CoordinateParams struct {
	// ReleaseName is an optional label stored on the release record
	ReleaseName string `json:"releaseName,omitempty"`

	// Environment must be staging or production
	Environment Environment `json:"environment"`

	// Services is the non-empty set of services to release
	Services []ServiceDeclaration `json:"services"`

	// Strategy defaults to dependency-order when empty
	Strategy Strategy `json:"strategy,omitempty"`

	// RollbackOnFailure reverts previously successful services when a
	// later service in the same release fails
	RollbackOnFailure bool `json:"rollbackOnFailure,omitempty"`

	// ServiceTimeout bounds each deploy and rollback call; zero means no
	// per-service deadline. A timeout counts as a failure.
	ServiceTimeout time.Duration `json:"-"`
}

// CoordinateResult is the caller-visible outcome of one release.
type CoordinateResult struct {
	Success         bool            `json:"success"`
	ReleaseID       string          `json:"releaseId"`
	Environment     Environment     `json:"environment"`
	Timestamp       time.Time       `json:"timestamp"`
	Summary         ReleaseSummary  `json:"summary"`
	DeploymentOrder []string        `json:"deploymentOrder"`
	ServiceResults  []ServiceResult `json:"serviceResults"`
	OverallHealth   HealthStatus    `json:"overallHealth"`
	ReleaseNotes    string          `json:"releaseNotes,omitempty"`

	// Warnings surfaces non-blocking failures (registry writes, notes
	// generation) that did not affect the deployment outcome
	Warnings []string `json:"warnings,omitempty"`
}

// ReleaseStatistics is derived read-only from stored records; it is never
// persisted as a separate aggregate.
type ReleaseStatistics struct {
	TotalReleases     int     `json:"totalReleases"`
	Successful        int     `json:"successful"`
	Failed            int     `json:"failed"`
	RolledBack        int     `json:"rolledBack"`
	InProgress        int     `json:"inProgress"`
	SuccessRate       float64 `json:"successRate"`
	AverageDurationMs int64   `json:"averageDurationMs"`

	// Environment is set when the statistics were filtered to one target
	Environment Environment `json:"environment,omitempty"`
}

// ValidationIssue describes one problem found while validating service
// declarations. A single validation pass collects every issue instead of
// stopping at the first.
type ValidationIssue struct {
	// Kind categorizes the issue
	Kind IssueKind `json:"kind"`

	// Service is the offending service name
	Service string `json:"service"`

	// Target names the other end of the problem where one exists, such
	// as the missing dependency
	Target string `json:"target,omitempty"`

	// Message is the human-readable description
	Message string `json:"message"`
}

// IssueKind categorizes validation issues.
type IssueKind string

const (
	IssueMissingDependency  IssueKind = "missing-dependency"
	IssueSelfDependency     IssueKind = "self-dependency"
	IssueDuplicateName      IssueKind = "duplicate-name"
	IssueCircularDependency IssueKind = "circular-dependency"
	IssueBadParameter       IssueKind = "bad-parameter"
)

// ValidationResult is the outcome of validating a set of service
// declarations. Valid is true exactly when Issues is empty.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Issues []ValidationIssue `json:"issues,omitempty"`
}
