// Package dashboard renders Grafana dashboards for the GreptimeDB tables.
package dashboard

import (
	"embed"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"radar-fusion-sim/internal/telemetry"
)

//go:embed templates/*.json.tmpl
var templates embed.FS

// Tables names the GreptimeDB tables the panels query.
type Tables struct {
	SiteID string
	Tracks string
	Nodes  string
	Events string
	State  string
}

// DefaultTables uses the table names the writers are configured with.
func DefaultTables(siteID string) Tables {
	return Tables{
		SiteID: siteID,
		Tracks: telemetry.FusedTrackTableName,
		Nodes:  telemetry.NodeStatusTableName,
		Events: telemetry.EventTableName,
		State:  telemetry.TickStateTableName,
	}
}

var funcMap = template.FuncMap{
	"env": func(key string) (string, error) {
		v := os.Getenv(key)
		if v == "" {
			return "", fmt.Errorf("environment variable %s not set", key)
		}
		return v, nil
	},
}

func parse() (*template.Template, error) {
	return template.New("dashboards").Funcs(funcMap).ParseFS(templates, "templates/*.json.tmpl")
}

// Render writes every dashboard to outDir, dropping the .tmpl suffix.
func Render(outDir string, tables Tables) error {
	t, err := parse()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}
	for _, tpl := range t.Templates() {
		name := tpl.Name()
		if !strings.HasSuffix(name, ".tmpl") {
			continue
		}
		outPath := filepath.Join(outDir, strings.TrimSuffix(name, ".tmpl"))
		f, err := os.Create(outPath)
		if err != nil {
			return err
		}
		if err := tpl.Execute(f, tables); err != nil {
			f.Close()
			return fmt.Errorf("render %s: %w", name, err)
		}
		if err := f.Close(); err != nil {
			return err
		}
	}
	return nil
}

// RenderTo writes the named dashboard to w.
func RenderTo(w io.Writer, name string, tables Tables) error {
	t, err := parse()
	if err != nil {
		return err
	}
	tpl := t.Lookup(name + ".tmpl")
	if tpl == nil {
		return fmt.Errorf("unknown dashboard %q", name)
	}
	return tpl.Execute(w, tables)
}
