package webui

import (
	"embed"
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/laiyunwu/casestudy12/internal/app"
	"github.com/laiyunwu/casestudy12/internal/logging"
)

//go:embed templates static
var assetFS embed.FS

// WebUI serves the embedded dashboard. Pages are rendered server-side from
// the current datasets; the run buttons call the JSON API from inline
// scripts using the injected key.
type WebUI struct {
	App *app.Application
}

func NewWebUI(application *app.Application) *WebUI {
	return &WebUI{App: application}
}

func (webUI *WebUI) SetRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", webUI.homeHandler)
	mux.HandleFunc("GET /case1", webUI.case1Handler)
	mux.HandleFunc("GET /case2", webUI.case2Handler)
	mux.HandleFunc("GET /debug/data", webUI.debugDataHandler)
	mux.Handle("GET /static/", http.FileServerFS(assetFS))
}

// basePage carries the fields every page template needs. Bootstrap is the
// page's data payload, marshaled once and dropped into a <script> tag.
type basePage struct {
	Title     string
	Active    string
	APIKey    string
	Bootstrap template.JS
}

func (webUI *WebUI) newBasePage(title, active string, bootstrap interface{}) (basePage, error) {
	payload, err := json.Marshal(bootstrap)
	if err != nil {
		return basePage{}, err
	}
	return basePage{
		Title:     title,
		Active:    active,
		APIKey:    webUI.apiKey(),
		Bootstrap: template.JS(payload),
	}, nil
}

// apiKey picks the key the dashboard scripts authenticate with.
func (webUI *WebUI) apiKey() string {
	if keys := webUI.App.Config.ApiKeys; len(keys) > 0 {
		return keys[0]
	}
	return ""
}

func (webUI *WebUI) renderPage(w http.ResponseWriter, name string, data interface{}) {
	tmpl, err := template.ParseFS(assetFS, "templates/base.html", "templates/"+name)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "base.html", data); err != nil {
		// Headers are already written; all we can do is log.
		logging.LogError(webUI.App.Logger, "failed to render page", err,
			slog.String("page", name))
	}
}
