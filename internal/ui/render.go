package ui

import (
	"embed"
	"html/template"
	"log/slog"
	"net/http"
)

//go:embed templates/*.html
var templatesFS embed.FS

var templates = template.Must(template.ParseFS(templatesFS, "templates/*.html"))

// PageData is the shared payload for the placeholder pages.
type PageData struct {
	AppName  string
	Title    string
	SignedIn bool
}

// Render writes one page template. Render errors after the first byte
// cannot be reported to the client, so they are only logged.
func Render(w http.ResponseWriter, page string, data PageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := templates.ExecuteTemplate(w, page, data)
	if err != nil {
		slog.Error("failed to render page", "page", page, "error", err)
	}
}
