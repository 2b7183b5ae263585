package main

import (
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

//go:embed templates
var templatesFS embed.FS

var funcs = template.FuncMap{
	"when": func(t time.Time) string { return t.Local().Format("Jan 2 15:04") },
}

// standalone pages render without the signed-in layout.
var standalone = map[string]bool{"login.html": true, "register.html": true}

func renderTemplate(w http.ResponseWriter, name string, data interface{}) {
	content, err := templatesFS.ReadFile("templates/" + name)
	if err != nil {
		http.Error(w, "template not found", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	if standalone[name] {
		t := template.Must(template.New("").Funcs(funcs).Parse(string(content)))
		if err := t.ExecuteTemplate(w, strings.TrimSuffix(name, ".html"), data); err != nil {
			slog.Error("template execute", "template", name, "error", err)
		}
		return
	}

	layout, _ := templatesFS.ReadFile("templates/layout.html")
	t := template.Must(template.New("").Funcs(funcs).Parse(string(layout)))
	t = template.Must(t.New("").Parse(string(content)))
	if err := t.ExecuteTemplate(w, "layout", data); err != nil {
		slog.Error("template execute", "template", name, "error", err)
	}
}
