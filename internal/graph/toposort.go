package graph

import (
	"fmt"
	"strings"

	"convoy/internal/api"
)

// Batch is one wave of the deployment plan: a set of services whose
// dependencies are all satisfied by earlier batches, safe to deploy
// concurrently. Batches partition the graph exactly once.
type Batch struct {
	// ID is the zero-based position of the batch in the plan
	ID int `json:"id"`

	// Services lists the batch members in deterministic input order
	Services []api.ServiceDeclaration `json:"services"`

	// DependsOn lists the ids of the earlier batches this batch's
	// members directly depend on
	DependsOn []int `json:"dependsOn,omitempty"`
}

// Names returns the names of the batch members, in batch order.
func (b Batch) Names() []string {
	names := make([]string, 0, len(b.Services))
	for _, svc := range b.Services {
		names = append(names, svc.Name)
	}
	return names
}

// Sort levels the graph into ordered batches using Kahn's algorithm. Each
// round collects every service whose remaining in-degree is zero into the
// next batch, removes them, and decrements the in-degree of their
// dependents. Ties inside a batch are broken by original input order, so
// the same input always produces the same plan.
//
// The caller is expected to have run DetectCycles first. If the graph is
// cyclic anyway, some services never reach in-degree zero; Sort detects
// the residue and fails naming the stuck services rather than returning a
// partial order.
func Sort(g *Graph) ([]Batch, error) {
	inDegree := make(map[string]int, g.Len())
	for _, name := range g.order {
		inDegree[name] = len(g.forward[name])
	}

	// batchOf records the batch id each placed service landed in, used
	// to compute inter-batch dependency ids.
	batchOf := make(map[string]int, g.Len())

	var batches []Batch
	remaining := g.Names()

	for len(remaining) > 0 {
		var wave []string
		var next []string
		for _, name := range remaining {
			if inDegree[name] == 0 {
				wave = append(wave, name)
			} else {
				next = append(next, name)
			}
		}

		if len(wave) == 0 {
			// Nothing progressed: every remaining service waits on
			// another remaining service.
			return nil, api.NewValidationError(api.ValidationIssue{
				Kind:    api.IssueCircularDependency,
				Service: next[0],
				Message: fmt.Sprintf("dependency cycle prevents ordering %d services: %s",
					len(next), strings.Join(next, ", ")),
			})
		}

		batch := Batch{ID: len(batches)}
		dependsOn := make(map[int]bool)
		for _, name := range wave {
			svc, _ := g.Service(name)
			batch.Services = append(batch.Services, svc)
			batchOf[name] = batch.ID
			for _, dep := range g.forward[name] {
				dependsOn[batchOf[dep]] = true
			}
		}
		for id := 0; id < batch.ID; id++ {
			if dependsOn[id] {
				batch.DependsOn = append(batch.DependsOn, id)
			}
		}
		batches = append(batches, batch)

		for _, name := range wave {
			for _, dependent := range g.reverse[name] {
				inDegree[dependent]--
			}
		}
		remaining = next
	}

	return batches, nil
}
