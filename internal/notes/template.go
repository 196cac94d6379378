package notes

// defaultTemplate is the built-in release notes layout. It receives an
// api.ReleaseRecord and may use sprig functions.
const defaultTemplate = `# Release {{ printf "%s" .ReleaseName | default .ReleaseID }}

- **Release ID**: {{ .ReleaseID }}
- **Environment**: {{ .Environment }}
- **Status**: {{ printf "%s" .Status | upper }}
- **Started**: {{ .Timestamp.Format "2006-01-02 15:04:05 MST" }}
- **Duration**: {{ .DurationMs }} ms
- **Overall health**: {{ printf "%s" .OverallHealth | default "unknown" }}

## Deployment order

{{ if .DeploymentOrder }}{{ range $i, $name := .DeploymentOrder }}{{ add $i 1 }}. {{ $name }}
{{ end }}{{ else }}No deployments were attempted.
{{ end }}
## Services

| Service | Version | Status | Health | Duration |
|---------|---------|--------|--------|----------|
{{- range .ServiceResults }}
| {{ .Service }} | {{ printf "%s" .Version | default "-" }} | {{ .Status }} | {{ printf "%s" .Health | default "-" }} | {{ .DurationMs }} ms |
{{- end }}
{{- range .ServiceResults }}
{{- if .Error }}

**{{ .Service }}**: {{ .Error }}
{{- end }}
{{- end }}
`
