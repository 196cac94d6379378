package graph

import (
	"reflect"
	"strings"
	"testing"

	"convoy/internal/api"
)

func batchNames(batches []Batch) [][]string {
	out := make([][]string, 0, len(batches))
	for _, b := range batches {
		out = append(out, b.Names())
	}
	return out
}

func TestSortDiamond(t *testing.T) {
	// A depends on B and C; B and C each depend on D.
	g := mustBuild(t, []api.ServiceDeclaration{
		decl("A", "B", "C"),
		decl("B", "D"),
		decl("C", "D"),
		decl("D"),
	})

	batches, err := Sort(g)
	if err != nil {
		t.Fatalf("Sort() returned error: %v", err)
	}

	want := [][]string{{"D"}, {"B", "C"}, {"A"}}
	if !reflect.DeepEqual(batchNames(batches), want) {
		t.Errorf("expected plan %v, got %v", want, batchNames(batches))
	}
}

func TestSortIndependentServices(t *testing.T) {
	g := mustBuild(t, []api.ServiceDeclaration{
		decl("one"),
		decl("two"),
		decl("three"),
	})

	batches, err := Sort(g)
	if err != nil {
		t.Fatalf("Sort() returned error: %v", err)
	}
	if len(batches) != 1 {
		t.Fatalf("expected a single batch for independent services, got %d", len(batches))
	}

	// Ties are broken by input order.
	want := []string{"one", "two", "three"}
	if !reflect.DeepEqual(batches[0].Names(), want) {
		t.Errorf("expected input order %v, got %v", want, batches[0].Names())
	}
}

func TestSortChain(t *testing.T) {
	g := mustBuild(t, []api.ServiceDeclaration{
		decl("web", "api"),
		decl("api", "db"),
		decl("db"),
	})

	batches, err := Sort(g)
	if err != nil {
		t.Fatalf("Sort() returned error: %v", err)
	}

	want := [][]string{{"db"}, {"api"}, {"web"}}
	if !reflect.DeepEqual(batchNames(batches), want) {
		t.Errorf("expected plan %v, got %v", want, batchNames(batches))
	}
}

func TestSortBatchMetadata(t *testing.T) {
	g := mustBuild(t, []api.ServiceDeclaration{
		decl("A", "B", "C"),
		decl("B", "D"),
		decl("C", "D"),
		decl("D"),
	})

	batches, err := Sort(g)
	if err != nil {
		t.Fatalf("Sort() returned error: %v", err)
	}

	for i, b := range batches {
		if b.ID != i {
			t.Errorf("batch %d has id %d", i, b.ID)
		}
	}
	if len(batches[0].DependsOn) != 0 {
		t.Errorf("first batch must not depend on anything, got %v", batches[0].DependsOn)
	}
	if !reflect.DeepEqual(batches[1].DependsOn, []int{0}) {
		t.Errorf("expected second batch to depend on [0], got %v", batches[1].DependsOn)
	}
	if !reflect.DeepEqual(batches[2].DependsOn, []int{1}) {
		t.Errorf("expected third batch to depend on [1], got %v", batches[2].DependsOn)
	}
}

func TestSortPartitionsEveryServiceExactlyOnce(t *testing.T) {
	services := []api.ServiceDeclaration{
		decl("gateway", "auth", "billing"),
		decl("auth", "db"),
		decl("billing", "db", "queue"),
		decl("db"),
		decl("queue"),
		decl("metrics"),
	}
	g := mustBuild(t, services)

	batches, err := Sort(g)
	if err != nil {
		t.Fatalf("Sort() returned error: %v", err)
	}

	placed := map[string]int{}
	for _, b := range batches {
		for _, svc := range b.Services {
			placed[svc.Name]++
		}
	}
	if len(placed) != len(services) {
		t.Errorf("expected %d services placed, got %d", len(services), len(placed))
	}
	for name, count := range placed {
		if count != 1 {
			t.Errorf("service %s placed %d times", name, count)
		}
	}
}

func TestSortRespectsEveryEdge(t *testing.T) {
	services := []api.ServiceDeclaration{
		decl("gateway", "auth", "billing"),
		decl("auth", "db"),
		decl("billing", "db", "queue"),
		decl("db"),
		decl("queue"),
	}
	g := mustBuild(t, services)

	batches, err := Sort(g)
	if err != nil {
		t.Fatalf("Sort() returned error: %v", err)
	}

	batchOf := map[string]int{}
	for _, b := range batches {
		for _, svc := range b.Services {
			batchOf[svc.Name] = b.ID
		}
	}

	for _, svc := range services {
		for _, dep := range svc.Dependencies {
			if batchOf[dep] >= batchOf[svc.Name] {
				t.Errorf("edge %s -> %s violated: dep in batch %d, service in batch %d",
					svc.Name, dep, batchOf[dep], batchOf[svc.Name])
			}
		}
	}
}

func TestSortDeterministic(t *testing.T) {
	services := []api.ServiceDeclaration{
		decl("e", "a"),
		decl("d", "a"),
		decl("c", "a"),
		decl("b", "a"),
		decl("a"),
	}

	first, err := Sort(mustBuild(t, services))
	if err != nil {
		t.Fatalf("Sort() returned error: %v", err)
	}
	second, err := Sort(mustBuild(t, services))
	if err != nil {
		t.Fatalf("Sort() returned error: %v", err)
	}

	if !reflect.DeepEqual(batchNames(first), batchNames(second)) {
		t.Errorf("plans differ for identical input:\nfirst:  %v\nsecond: %v",
			batchNames(first), batchNames(second))
	}

	// Ties inside the second batch follow input order.
	want := []string{"e", "d", "c", "b"}
	if !reflect.DeepEqual(first[1].Names(), want) {
		t.Errorf("expected tie-break by input order %v, got %v", want, first[1].Names())
	}
}

func TestSortFailsOnCycleResidue(t *testing.T) {
	// Sort must refuse to return a partial order when services never
	// reach in-degree zero.
	g := mustBuild(t, []api.ServiceDeclaration{
		decl("standalone"),
		decl("a", "b"),
		decl("b", "a"),
	})

	batches, err := Sort(g)
	if err == nil {
		t.Fatalf("expected error for cyclic graph, got plan %v", batchNames(batches))
	}
	if !api.IsValidationError(err) {
		t.Errorf("expected ValidationError, got %T", err)
	}
	if !strings.Contains(err.Error(), "a") || !strings.Contains(err.Error(), "b") {
		t.Errorf("expected stuck services named in error, got %q", err.Error())
	}
}

func TestSortEmptyGraph(t *testing.T) {
	g := mustBuild(t, nil)
	batches, err := Sort(g)
	if err != nil {
		t.Fatalf("Sort() returned error: %v", err)
	}
	if len(batches) != 0 {
		t.Errorf("expected no batches for empty graph, got %d", len(batches))
	}
}
