package coordinator

import (
	"fmt"
	"strings"

	"convoy/internal/api"
	"convoy/internal/graph"
)

// ValidateServices runs the full validation gate over a set of service
// declarations: structural validation (duplicate names, self and missing
// dependencies) followed by cycle detection. Every issue is reported, not
// just the first, and the function is a pure function of its input.
func ValidateServices(services []api.ServiceDeclaration) api.ValidationResult {
	result := graph.Validate(services)

	g, err := graph.Build(services)
	if err != nil {
		// Duplicate names; already collected by Validate, and without a
		// graph there is nothing to run cycle detection on.
		return result
	}

	for _, cycle := range graph.DetectCycles(g) {
		result.Issues = append(result.Issues, api.ValidationIssue{
			Kind:    api.IssueCircularDependency,
			Service: cycle[0],
			Message: fmt.Sprintf("circular dependency: %s", strings.Join(cycle, " -> ")),
		})
	}

	result.Valid = len(result.Issues) == 0
	return result
}

// PlanBatches partitions the services into deployment batches for the
// given strategy. The strategy set is closed and dispatched here in one
// place:
//
//   - sequential: one single-service batch per service, in input order.
//     Dependency edges are validated elsewhere but do not reorder.
//   - parallel: one batch holding every service.
//   - dependency-order: the topologically sorted batches.
//
// Callers run ValidateServices first; PlanBatches still refuses to emit a
// partial order when handed a cyclic graph.
func PlanBatches(services []api.ServiceDeclaration, strategy api.Strategy) ([]graph.Batch, error) {
	switch strategy {
	case api.StrategySequential:
		batches := make([]graph.Batch, 0, len(services))
		for i, svc := range services {
			batches = append(batches, graph.Batch{
				ID:       i,
				Services: []api.ServiceDeclaration{svc},
			})
		}
		return batches, nil

	case api.StrategyParallel:
		members := make([]api.ServiceDeclaration, len(services))
		copy(members, services)
		return []graph.Batch{{ID: 0, Services: members}}, nil

	case api.StrategyDependencyOrder, "":
		g, err := graph.Build(services)
		if err != nil {
			return nil, err
		}
		return graph.Sort(g)

	default:
		return nil, api.NewValidationError(api.ValidationIssue{
			Kind:    api.IssueBadParameter,
			Service: string(strategy),
			Message: fmt.Sprintf("invalid strategy %q (valid: sequential, parallel, dependency-order)", strategy),
		})
	}
}
