// Package templates embeds the default journey documents.
package templates

import (
	"embed"
	"io/fs"
)

//go:embed journeys/signals/*.json journeys/templates/*.json journeys/tasks/*.json
var journeyDocs embed.FS

// Journeys returns the embedded journeys tree, rooted so that it contains
// signals/competency-signals.json, templates/<name>.json and
// tasks/<name>.json.
func Journeys() fs.FS {
	sub, err := fs.Sub(journeyDocs, "journeys")
	if err != nil {
		// fs.Sub only fails for an invalid path literal.
		panic(err)
	}
	return sub
}
