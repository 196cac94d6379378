package graph

import (
	"errors"
	"testing"

	"convoy/internal/api"
)

func decl(name string, deps ...string) api.ServiceDeclaration {
	return api.ServiceDeclaration{
		Name:         name,
		Version:      "1.0.0",
		Dependencies: deps,
	}
}

func TestBuild(t *testing.T) {
	tests := []struct {
		name     string
		services []api.ServiceDeclaration
		wantLen  int
	}{
		{
			name:     "single service",
			services: []api.ServiceDeclaration{decl("api")},
			wantLen:  1,
		},
		{
			name: "chain of three",
			services: []api.ServiceDeclaration{
				decl("web", "api"),
				decl("api", "db"),
				decl("db"),
			},
			wantLen: 3,
		},
		{
			name:     "no services",
			services: nil,
			wantLen:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := Build(tt.services)
			if err != nil {
				t.Fatalf("Build() returned error: %v", err)
			}
			if g.Len() != tt.wantLen {
				t.Errorf("expected %d nodes, got %d", tt.wantLen, g.Len())
			}
		})
	}
}

func TestBuildDuplicateName(t *testing.T) {
	g, err := Build([]api.ServiceDeclaration{
		decl("api"),
		decl("db"),
		decl("api"),
	})
	if err == nil {
		t.Fatal("expected error for duplicate service name")
	}
	if g != nil {
		t.Error("expected no graph when build fails")
	}
	if !api.IsValidationError(err) {
		t.Errorf("expected ValidationError, got %T", err)
	}

	var vErr *api.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("could not unwrap ValidationError from %v", err)
	}
	if len(vErr.Issues) != 1 {
		t.Fatalf("expected 1 issue, got %d", len(vErr.Issues))
	}
	issue := vErr.Issues[0]
	if issue.Kind != api.IssueDuplicateName {
		t.Errorf("expected duplicate-name issue, got %s", issue.Kind)
	}
	if issue.Service != "api" {
		t.Errorf("expected offending service api, got %s", issue.Service)
	}
}

func TestBuildEdges(t *testing.T) {
	g, err := Build([]api.ServiceDeclaration{
		decl("web", "api", "auth"),
		decl("api", "db"),
		decl("auth", "db"),
		decl("db"),
	})
	if err != nil {
		t.Fatalf("Build() returned error: %v", err)
	}

	tests := []struct {
		service    string
		deps       []string
		dependents []string
	}{
		{"web", []string{"api", "auth"}, nil},
		{"api", []string{"db"}, []string{"web"}},
		{"auth", []string{"db"}, []string{"web"}},
		{"db", nil, []string{"api", "auth"}},
	}

	for _, tt := range tests {
		t.Run(tt.service, func(t *testing.T) {
			assertSameNames(t, "dependencies", g.Dependencies(tt.service), tt.deps)
			assertSameNames(t, "dependents", g.Dependents(tt.service), tt.dependents)
		})
	}
}

func TestBuildSkipsUnknownEdgeTargets(t *testing.T) {
	// A dangling reference must not produce a dangling edge; Validate
	// reports it, the graph invariant stays intact.
	g, err := Build([]api.ServiceDeclaration{
		decl("api", "ghost"),
		decl("db"),
	})
	if err != nil {
		t.Fatalf("Build() returned error: %v", err)
	}
	if deps := g.Dependencies("api"); len(deps) != 0 {
		t.Errorf("expected no edges for unknown target, got %v", deps)
	}
}

func TestBuildDeduplicatesRepeatedDependencies(t *testing.T) {
	g, err := Build([]api.ServiceDeclaration{
		decl("api", "db", "db"),
		decl("db"),
	})
	if err != nil {
		t.Fatalf("Build() returned error: %v", err)
	}
	if deps := g.Dependencies("api"); len(deps) != 1 {
		t.Errorf("expected repeated dependency recorded once, got %v", deps)
	}
	if dependents := g.Dependents("db"); len(dependents) != 1 {
		t.Errorf("expected single reverse edge, got %v", dependents)
	}
}

func TestNamesPreserveInputOrder(t *testing.T) {
	g, err := Build([]api.ServiceDeclaration{
		decl("zeta"),
		decl("alpha"),
		decl("mid"),
	})
	if err != nil {
		t.Fatalf("Build() returned error: %v", err)
	}
	names := g.Names()
	want := []string{"zeta", "alpha", "mid"}
	for i, n := range want {
		if names[i] != n {
			t.Fatalf("expected input order %v, got %v", want, names)
		}
	}

	// The returned slice is a copy, mutating it must not corrupt the graph.
	names[0] = "mutated"
	if g.Names()[0] != "zeta" {
		t.Error("Names() returned internal slice instead of a copy")
	}
}

func TestService(t *testing.T) {
	g, err := Build([]api.ServiceDeclaration{decl("api", "db"), decl("db")})
	if err != nil {
		t.Fatalf("Build() returned error: %v", err)
	}

	svc, ok := g.Service("api")
	if !ok {
		t.Fatal("expected to find service api")
	}
	if svc.Name != "api" || svc.Version != "1.0.0" {
		t.Errorf("unexpected declaration returned: %+v", svc)
	}

	if _, ok := g.Service("nonexistent"); ok {
		t.Error("expected lookup miss for unknown service")
	}
}

// assertSameNames checks membership and count without requiring order.
func assertSameNames(t *testing.T, what string, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Errorf("expected %d %s, got %d: %v", len(want), what, len(got), got)
		return
	}
	for _, w := range want {
		found := false
		for _, g := range got {
			if g == w {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("expected %s %q not found in %v", what, w, got)
		}
	}
}
