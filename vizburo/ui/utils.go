package ui

import (
	"bytes"
	"encoding/json"
	"html/template"
	"net/http"

	"infinite-experiment/flighttracker/internal/logging"
	"infinite-experiment/flighttracker/internal/presenter"
)

var funcMap = template.FuncMap{
	"mod": func(a, b int) int {
		return a % b
	},
}

// templates holds the page and every partial; parsed once at startup
var templates = template.Must(
	template.New("ui").Funcs(funcMap).Parse(baseTemplate + dashboardTemplate + flightsTemplate),
)

// RenderTemplate renders a named template as a complete response.
// Output is buffered so a failing template never leaves a half-written page.
func RenderTemplate(w http.ResponseWriter, status int, templateName string, data interface{}) error {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, templateName, data); err != nil {
		logging.Error("Template render failed", "template", templateName, "error", err)
		http.Error(w, "Error rendering template", http.StatusInternalServerError)
		return err
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

// markersJSON serializes map markers for the Leaflet script; "[]" when there is no map
func markersJSON(m *presenter.MapView) string {
	if m == nil || len(m.Markers) == 0 {
		return "[]"
	}
	b, err := json.Marshal(m.Markers)
	if err != nil {
		return "[]"
	}
	return string(b)
}
