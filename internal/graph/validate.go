package graph

import (
	"fmt"

	"convoy/internal/api"
)

// Validate checks a set of service declarations for structural problems:
// references to dependency names absent from the input, self-dependencies
// and duplicate service names. Every issue is collected in one pass rather
// than stopping at the first, so the caller sees the complete picture.
//
// Validate never fails; it reports. It is a pure function of its input,
// running it twice on the same declarations yields the same issues.
func Validate(services []api.ServiceDeclaration) api.ValidationResult {
	declared := make(map[string]bool, len(services))
	for _, svc := range services {
		declared[svc.Name] = true
	}

	var issues []api.ValidationIssue
	seen := make(map[string]bool, len(services))
	for _, svc := range services {
		if seen[svc.Name] {
			issues = append(issues, api.ValidationIssue{
				Kind:    api.IssueDuplicateName,
				Service: svc.Name,
				Message: fmt.Sprintf("duplicate service name %q", svc.Name),
			})
		}
		seen[svc.Name] = true

		for _, dep := range svc.Dependencies {
			if dep == svc.Name {
				issues = append(issues, api.ValidationIssue{
					Kind:    api.IssueSelfDependency,
					Service: svc.Name,
					Target:  dep,
					Message: fmt.Sprintf("service %q depends on itself", svc.Name),
				})
				continue
			}
			if !declared[dep] {
				issues = append(issues, api.ValidationIssue{
					Kind:    api.IssueMissingDependency,
					Service: svc.Name,
					Target:  dep,
					Message: fmt.Sprintf("service %q depends on unknown service %q", svc.Name, dep),
				})
			}
		}
	}

	return api.ValidationResult{
		Valid:  len(issues) == 0,
		Issues: issues,
	}
}
