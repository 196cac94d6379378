// Package api defines the shared contract types for convoy's release
// coordination engine.
//
// Every package in convoy communicates through the types in this package,
// keeping the dependency direction strictly inward: graph, coordinator,
// registry, executor and notes all import api and never each other's
// internals. The package itself imports nothing from internal/, so no
// import cycles can form.
//
// # Contents
//
//   - Core domain types: ServiceDeclaration, ServiceResult, ReleaseRecord,
//     ReleaseSummary, CoordinateParams, CoordinateResult and the closed
//     enums for environment, strategy, status and health.
//   - Collaborator interfaces: DeploymentExecutor and
//     ReleaseNotesGenerator, the two external operations a release
//     invokes. Implementations live in internal/executor and
//     internal/notes; tests substitute their own.
//   - Error taxonomy: ValidationError (fatal before any deployment),
//     DeploymentError (contained per service), RegistryError (surfaced
//     but non-blocking) and NotFoundError for registry lookups, each with
//     errors.As-based helper predicates.
//
// # Release lifecycle
//
// A ReleaseRecord moves pending -> in-progress -> one of the terminal
// states success, failed or rolled-back. ReleaseStatus.CanTransitionTo
// encodes the rule that records only ever move forward and never leave a
// terminal state; the registry enforces it on every update.
package api
