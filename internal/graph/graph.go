package graph

import (
	"fmt"

	"convoy/internal/api"
)

// Graph is the dependency graph for one release request. Nodes are keyed
// by service name and edges are plain name sets, so traversals walk keys
// instead of chasing pointers; a malformed request with a dependency cycle
// can never produce a cyclic object structure.
//
// The graph is immutable after Build and safe for concurrent reads. It is
// scoped to a single coordination call and never persisted.
type Graph struct {
	nodes map[string]api.ServiceDeclaration

	// order preserves the caller's input order. All iteration goes
	// through it so results are deterministic for identical input.
	order []string

	// forward maps a service to the services it depends on ("must be
	// deployed before me"). Only edges whose endpoints both exist are
	// recorded; dangling references are Validate's business.
	forward map[string][]string

	// reverse maps a service to its dependents, the exact inverse of
	// forward.
	reverse map[string][]string
}

// Build constructs the dependency graph from a flat list of service
// declarations. It fails with a ValidationError when a service name
// repeats; no graph is produced in that case. Build does not check for
// missing dependencies or cycles, that is the job of Validate and
// DetectCycles.
func Build(services []api.ServiceDeclaration) (*Graph, error) {
	g := &Graph{
		nodes:   make(map[string]api.ServiceDeclaration, len(services)),
		order:   make([]string, 0, len(services)),
		forward: make(map[string][]string, len(services)),
		reverse: make(map[string][]string, len(services)),
	}

	var dupes []api.ValidationIssue
	for _, svc := range services {
		if _, exists := g.nodes[svc.Name]; exists {
			dupes = append(dupes, api.ValidationIssue{
				Kind:    api.IssueDuplicateName,
				Service: svc.Name,
				Message: fmt.Sprintf("duplicate service name %q", svc.Name),
			})
			continue
		}
		g.nodes[svc.Name] = svc
		g.order = append(g.order, svc.Name)
	}
	if len(dupes) > 0 {
		return nil, api.NewValidationError(dupes...)
	}

	for _, name := range g.order {
		svc := g.nodes[name]
		seen := make(map[string]bool, len(svc.Dependencies))
		for _, dep := range svc.Dependencies {
			if seen[dep] {
				continue
			}
			seen[dep] = true
			if _, exists := g.nodes[dep]; !exists {
				continue
			}
			g.forward[name] = append(g.forward[name], dep)
			g.reverse[dep] = append(g.reverse[dep], name)
		}
	}

	return g, nil
}

// Len returns the number of services in the graph.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Names returns the service names in input order.
func (g *Graph) Names() []string {
	names := make([]string, len(g.order))
	copy(names, g.order)
	return names
}

// Service returns the declaration stored under the given name.
func (g *Graph) Service(name string) (api.ServiceDeclaration, bool) {
	svc, ok := g.nodes[name]
	return svc, ok
}

// Dependencies returns the immediate dependencies of the given service.
// The returned slice is a copy; callers may modify it freely.
func (g *Graph) Dependencies(name string) []string {
	deps := g.forward[name]
	depsCopy := make([]string, len(deps))
	copy(depsCopy, deps)
	return depsCopy
}

// Dependents returns all services that directly depend on the given one.
// The returned slice is a copy; callers may modify it freely.
func (g *Graph) Dependents(name string) []string {
	deps := g.reverse[name]
	depsCopy := make([]string, len(deps))
	copy(depsCopy, deps)
	return depsCopy
}
