// Package registry persists release records durably and answers history,
// latest-by-environment and statistics queries over them.
//
// All records live in one JSON document under the project's .convoy
// directory. Every write rewrites the document atomically and is
// serialized behind the registry mutex, so concurrent coordinations for
// different releases can share a registry handle safely.
package registry

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"convoy/internal/api"
	"convoy/pkg/logging"
)

// Registry is the durable, queryable store of release records.
type Registry struct {
	mu          sync.RWMutex
	projectPath string
	path        string
}

var _ api.ReleaseStore = (*Registry)(nil)

// New creates a registry rooted at the given project directory. The
// backing document is created lazily; call Initialize to create it
// eagerly.
func New(projectPath string) *Registry {
	return &Registry{
		projectPath: projectPath,
		path:        StorePath(projectPath),
	}
}

// Path returns the location of the backing document.
func (r *Registry) Path() string {
	return r.path
}

// Initialize ensures the backing store exists, creating an empty document
// if absent. An existing document is parsed to verify it is readable.
func (r *Registry) Initialize() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.loadOrEmpty()
	if err != nil {
		return api.NewRegistryError("initialize", err)
	}
	if err := r.save(doc); err != nil {
		return api.NewRegistryError("initialize", err)
	}

	logging.Debug("Registry", "Initialized release store at %s (%d releases)", r.path, len(doc.Releases))
	return nil
}

// AddRelease appends a new record to the store. The release id must not
// already exist.
func (r *Registry) AddRelease(ctx context.Context, record *api.ReleaseRecord) error {
	if record == nil || record.ReleaseID == "" {
		return api.NewRegistryError("add", fmt.Errorf("release record must have an id"))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.loadOrEmpty()
	if err != nil {
		return api.NewRegistryError("add", err)
	}

	for _, existing := range doc.Releases {
		if existing.ReleaseID == record.ReleaseID {
			return api.NewRegistryError("add", fmt.Errorf("release %s already exists", record.ReleaseID))
		}
	}

	doc.Releases = append(doc.Releases, *record)
	if err := r.save(doc); err != nil {
		return api.NewRegistryError("add", err)
	}

	logging.Debug("Registry", "Added release %s (%s, %s)", record.ReleaseID, record.Environment, record.Status)
	return nil
}

// UpdateRelease applies a partial update to the record with the given id.
// Status changes are checked against the release lifecycle: transitions
// only move forward and terminal records are never modified again.
func (r *Registry) UpdateRelease(ctx context.Context, releaseID string, update api.ReleaseUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.loadOrEmpty()
	if err != nil {
		return api.NewRegistryError("update", err)
	}

	idx := -1
	for i := range doc.Releases {
		if doc.Releases[i].ReleaseID == releaseID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return api.NewReleaseNotFoundError(releaseID)
	}

	record := &doc.Releases[idx]
	if update.Status != nil {
		if !record.Status.CanTransitionTo(*update.Status) {
			return api.NewRegistryError("update", fmt.Errorf(
				"release %s cannot transition from %s to %s", releaseID, record.Status, *update.Status))
		}
		record.Status = *update.Status
	}
	if update.DeploymentOrder != nil {
		record.DeploymentOrder = update.DeploymentOrder
	}
	if update.ServiceResults != nil {
		record.ServiceResults = update.ServiceResults
	}
	if update.DurationMs != nil {
		record.DurationMs = *update.DurationMs
	}
	if update.OverallHealth != nil {
		record.OverallHealth = *update.OverallHealth
	}
	if update.ReleaseNotes != nil {
		record.ReleaseNotes = *update.ReleaseNotes
	}

	if err := r.save(doc); err != nil {
		return api.NewRegistryError("update", err)
	}

	logging.Debug("Registry", "Updated release %s (status %s)", releaseID, record.Status)
	return nil
}

// GetRelease returns the record with the given id.
func (r *Registry) GetRelease(ctx context.Context, releaseID string) (*api.ReleaseRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	doc, err := r.loadOrEmpty()
	if err != nil {
		return nil, api.NewRegistryError("get", err)
	}

	for i := range doc.Releases {
		if doc.Releases[i].ReleaseID == releaseID {
			record := doc.Releases[i]
			return &record, nil
		}
	}
	return nil, api.NewReleaseNotFoundError(releaseID)
}

// GetLatestRelease returns the most recent record for the environment,
// judged by release timestamp.
func (r *Registry) GetLatestRelease(ctx context.Context, env api.Environment) (*api.ReleaseRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	doc, err := r.loadOrEmpty()
	if err != nil {
		return nil, api.NewRegistryError("get-latest", err)
	}

	var latest *api.ReleaseRecord
	for i := range doc.Releases {
		record := &doc.Releases[i]
		if record.Environment != env {
			continue
		}
		if latest == nil || record.Timestamp.After(latest.Timestamp) {
			latest = record
		}
	}
	if latest == nil {
		return nil, api.NewNotFoundErrorWithMessage("release", string(env),
			fmt.Sprintf("no releases recorded for environment %q", env))
	}

	found := *latest
	return &found, nil
}

// ListFilter narrows and pages a release listing.
type ListFilter struct {
	// Environment keeps only releases for one target when set
	Environment api.Environment

	// Status keeps only releases in one lifecycle state when set
	Status api.ReleaseStatus

	// Limit caps the page size; defaults to 50, capped at 1000
	Limit int

	// Offset skips that many releases from the newest end
	Offset int
}

// ListResult is one page of release records, newest first.
type ListResult struct {
	Releases []api.ReleaseRecord `json:"releases"`
	Total    int                 `json:"total"`
	Limit    int                 `json:"limit"`
	Offset   int                 `json:"offset"`
	HasMore  bool                `json:"hasMore"`
}

// ListReleases returns stored releases newest first with optional
// filtering and pagination.
func (r *Registry) ListReleases(ctx context.Context, filter ListFilter) (*ListResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	doc, err := r.loadOrEmpty()
	if err != nil {
		return nil, api.NewRegistryError("list", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > 1000 {
		limit = 1000
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	var filtered []api.ReleaseRecord
	for _, record := range doc.Releases {
		if filter.Environment != "" && record.Environment != filter.Environment {
			continue
		}
		if filter.Status != "" && record.Status != filter.Status {
			continue
		}
		filtered = append(filtered, record)
	}

	// Most recent first.
	sort.Slice(filtered, func(i, j int) bool {
		return filtered[i].Timestamp.After(filtered[j].Timestamp)
	})

	total := len(filtered)
	var page []api.ReleaseRecord
	if offset < total {
		end := offset + limit
		if end > total {
			end = total
		}
		page = append(page, filtered[offset:end]...)
	}

	logging.Debug("Registry", "Listed %d releases (total: %d, offset: %d, limit: %d)",
		len(page), total, offset, limit)

	return &ListResult{
		Releases: page,
		Total:    total,
		Limit:    limit,
		Offset:   offset,
		HasMore:  offset+len(page) < total,
	}, nil
}

// GetStatistics derives success rate, average duration and counts from
// the stored records. Pass an empty environment to aggregate across all
// targets. Rates and averages are computed over completed releases only;
// pending and in-progress records count toward the totals.
func (r *Registry) GetStatistics(ctx context.Context, env api.Environment) (*api.ReleaseStatistics, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	doc, err := r.loadOrEmpty()
	if err != nil {
		return nil, api.NewRegistryError("statistics", err)
	}

	stats := &api.ReleaseStatistics{Environment: env}
	var completed int
	var totalDurationMs int64

	for _, record := range doc.Releases {
		if env != "" && record.Environment != env {
			continue
		}
		stats.TotalReleases++

		switch record.Status {
		case api.ReleaseStatusSuccess:
			stats.Successful++
		case api.ReleaseStatusFailed:
			stats.Failed++
		case api.ReleaseStatusRolledBack:
			stats.RolledBack++
		default:
			stats.InProgress++
			continue
		}
		completed++
		totalDurationMs += record.DurationMs
	}

	if completed > 0 {
		stats.SuccessRate = float64(stats.Successful) / float64(completed)
		stats.AverageDurationMs = totalDurationMs / int64(completed)
	}

	return stats, nil
}
