// Package notes renders release notes for finished releases. The
// coordinator hands over the final release record and embeds the returned
// file path verbatim in its result; all formatting lives here.
package notes

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"text/template"

	"convoy/internal/api"
	"convoy/pkg/logging"

	"github.com/Masterminds/sprig/v3"
)

// notesDir is where generated notes land, relative to the project path.
const notesDir = ".convoy/notes"

// Generator renders one markdown file per release. The template is the
// built-in one unless the project configures its own.
type Generator struct {
	dir  string
	tmpl *template.Template
}

var _ api.ReleaseNotesGenerator = (*Generator)(nil)

// New creates a generator for the given project directory. templatePath
// optionally points at a custom template file; sprig functions are
// available in either case.
func New(projectPath, templatePath string) (*Generator, error) {
	text := defaultTemplate
	if templatePath != "" {
		data, err := os.ReadFile(templatePath)
		if err != nil {
			return nil, fmt.Errorf("failed to read notes template %s: %w", templatePath, err)
		}
		text = string(data)
	}

	tmpl, err := template.New("release-notes").Funcs(sprig.FuncMap()).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse notes template: %w", err)
	}

	return &Generator{
		dir:  filepath.Join(projectPath, notesDir),
		tmpl: tmpl,
	}, nil
}

// Generate renders the notes for one release and returns the path of the
// written file.
func (g *Generator) Generate(ctx context.Context, record *api.ReleaseRecord) (string, error) {
	if record == nil || record.ReleaseID == "" {
		return "", fmt.Errorf("release record with an id is required")
	}

	var buf bytes.Buffer
	if err := g.tmpl.Execute(&buf, record); err != nil {
		return "", fmt.Errorf("failed to render notes for release %s: %w", record.ReleaseID, err)
	}

	if err := os.MkdirAll(g.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create notes directory %s: %w", g.dir, err)
	}

	path := filepath.Join(g.dir, record.ReleaseID+".md")
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("failed to write notes file %s: %w", path, err)
	}

	logging.Debug("Notes", "Wrote release notes for %s to %s", record.ReleaseID, path)
	return path, nil
}
