// Package web embeds the landing page and its static assets.
package web

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed views/index.html public
var files embed.FS

// Index serves the landing page.
func Index(w http.ResponseWriter, r *http.Request) {
	page, err := files.ReadFile("views/index.html")
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page)
}

// Assets serves the embedded public directory from the site root.
func Assets() http.Handler {
	public, err := fs.Sub(files, "public")
	if err != nil {
		panic(err)
	}
	return http.FileServer(http.FS(public))
}
