// Package webui serves the embedded single-page inventory client.
package webui

import (
	"embed"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
)

//go:embed static
var staticFS embed.FS

// Register mounts the client at the app root. The client talks to the
// same-origin /api/products endpoints; serving it from elsewhere works too
// since the API allows any origin.
func Register(app *fiber.App) {
	app.Use("/", filesystem.New(filesystem.Config{
		Root:       http.FS(staticFS),
		PathPrefix: "static",
		Index:      "index.html",
	}))
}
