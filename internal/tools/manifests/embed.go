// Package manifests ships the built-in tool manifests.
package manifests

import (
	"embed"
	"io/fs"
)

//go:embed adobe
var files embed.FS

// FS returns the embedded manifest tree used as the default discovery root.
func FS() fs.FS {
	return files
}
