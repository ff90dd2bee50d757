// Package web embeds the single-page browser client.
package web

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed static
var static embed.FS

// Handler serves index.html at "/" and the client assets next to it.
func Handler() http.Handler {
	sub, err := fs.Sub(static, "static")
	if err != nil {
		panic(err) // embedded path is fixed at compile time
	}
	return http.FileServer(http.FS(sub))
}
