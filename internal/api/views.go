// Storefront - Session Cart and Route Gating Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

package api

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/tomtom215/storefront/internal/logging"
)

//go:embed templates/*.html
var templateFS embed.FS

// pageNames are the templates parsed alongside layout.html.
var pageNames = []string{"home", "product", "cart", "sign_in", "sign_up", "error"}

const htmlContentType = "text/html; charset=utf-8"

var templateFuncs = template.FuncMap{
	"json": func(v any) (string, error) {
		b, err := json.Marshal(v)
		return string(b), err
	},
}

type views struct {
	pages map[string]*template.Template
}

func newViews() (*views, error) {
	v := &views{pages: make(map[string]*template.Template, len(pageNames))}
	for _, name := range pageNames {
		t, err := template.New(name).Funcs(templateFuncs).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", name, err)
		}
		v.pages[name] = t
	}
	return v, nil
}

// render executes the named template of page into a buffer so a template
// failure never leaves a half-written response.
func (v *views) render(page, name string, data any) ([]byte, error) {
	t, ok := v.pages[page]
	if !ok {
		return nil, fmt.Errorf("unknown page %q", page)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, fmt.Errorf("render %s/%s: %w", page, name, err)
	}
	return buf.Bytes(), nil
}

func (h *Handler) renderPage(w http.ResponseWriter, r *http.Request, page string, status int, data pageData) {
	body, err := h.views.render(page, "layout", data)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Template error")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", htmlContentType)
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
