package api

import (
	"context"
)

// DeploymentExecutor performs the actual deployment work for one service.
// The coordinator drives it batch by batch but never looks inside: how a
// service is physically deployed (containers, VMs, plain processes) is
// entirely the executor's business.
//
// Both calls block until the operation finishes. Cancellation and
// per-service timeouts arrive through ctx; an expired deadline must be
// reported as an error. A nil result with a nil error is invalid.
type DeploymentExecutor interface {
	// Deploy releases one service into the target environment and
	// reports its outcome, including the observed health status.
	Deploy(ctx context.Context, service ServiceDeclaration, env Environment) (*ServiceResult, error)

	// Rollback reverts a previously deployed service. The reason is
	// informational, naming the failure that triggered the rollback.
	Rollback(ctx context.Context, service ServiceDeclaration, env Environment, reason string) (*ServiceResult, error)
}

// ReleaseNotesGenerator renders human-readable notes for a finished
// release and returns the path of the generated file. The coordinator
// embeds the path verbatim in its result and never formats notes content
// itself.
type ReleaseNotesGenerator interface {
	Generate(ctx context.Context, record *ReleaseRecord) (string, error)
}

// ReleaseStore is the persistence surface the coordinator depends on. The
// concrete implementation lives in internal/registry; tests substitute
// in-memory fakes.
type ReleaseStore interface {
	// AddRelease appends a new record to the store.
	AddRelease(ctx context.Context, record *ReleaseRecord) error

	// UpdateRelease applies the given update to the record with the id.
	UpdateRelease(ctx context.Context, releaseID string, update ReleaseUpdate) error
}

// ReleaseUpdate is a partial update applied to a stored release record.
// Nil fields are left unchanged.
type ReleaseUpdate struct {
	Status          *ReleaseStatus
	DeploymentOrder []string
	ServiceResults  []ServiceResult
	DurationMs      *int64
	OverallHealth   *HealthStatus
	ReleaseNotes    *string
}
