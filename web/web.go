// Package web 打包站点模板与静态资源
package web

import (
	"embed"
	"html/template"
	"io/fs"
)

//go:embed template static
var files embed.FS

// Templates parses every page and partial into one set. Page names are the
// file base names, e.g. "home.html" or "dashboard.html".
func Templates(funcs template.FuncMap) (*template.Template, error) {
	return template.New("").Funcs(funcs).ParseFS(files,
		"template/partials/*.html",
		"template/public/*.html",
		"template/admin/*.html",
	)
}

// Static returns the static asset tree served under /static.
func Static() fs.FS {
	sub, err := fs.Sub(files, "static")
	if err != nil {
		panic(err)
	}
	return sub
}
