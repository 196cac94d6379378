package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"convoy/internal/api"
)

const (
	// storeVersion is written into every document so future layout
	// changes can be migrated.
	storeVersion = "1.0"

	// storeDir is the project-relative directory holding convoy state.
	storeDir = ".convoy"

	// storeFile is the single document all release records live in.
	storeFile = "releases.json"
)

// document is the persisted registry layout. It is the only durable state
// the coordination engine owns.
type document struct {
	Version     string              `json:"version"`
	ProjectPath string              `json:"projectPath"`
	LastUpdated time.Time           `json:"lastUpdated"`
	Releases    []api.ReleaseRecord `json:"releases"`
}

// StorePath returns the registry document path for a project directory.
func StorePath(projectPath string) string {
	return filepath.Join(projectPath, storeDir, storeFile)
}

// emptyDocument returns a fresh document for the project.
func (r *Registry) emptyDocument() *document {
	return &document{
		Version:     storeVersion,
		ProjectPath: r.projectPath,
		Releases:    []api.ReleaseRecord{},
	}
}

// load reads and parses the registry document. A missing file is reported
// as fs.ErrNotExist so callers can distinguish "not initialized" from a
// corrupted store.
func (r *Registry) load() (*document, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return nil, err
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse registry document %s: %w", r.path, err)
	}
	return &doc, nil
}

// loadOrEmpty reads the document, substituting a fresh one when the file
// does not exist yet.
func (r *Registry) loadOrEmpty() (*document, error) {
	doc, err := r.load()
	if errors.Is(err, fs.ErrNotExist) {
		return r.emptyDocument(), nil
	}
	return doc, err
}

// save writes the document atomically: the bytes land in a temp file in
// the same directory which is then renamed over the real path. A crash
// mid-write can therefore never leave a truncated or half-written store
// behind, the previous document simply stays in place.
func (r *Registry) save(doc *document) error {
	doc.Version = storeVersion
	doc.ProjectPath = r.projectPath
	doc.LastUpdated = time.Now().UTC()

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry document: %w", err)
	}

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create registry directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".releases-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write registry document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close registry document: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to chmod registry document: %w", err)
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace registry document: %w", err)
	}

	return nil
}
