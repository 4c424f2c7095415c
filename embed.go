// Package contacts provides the embedded sample data set and an overlay
// filesystem that checks local disk first, falling back to embedded.
package contacts

import (
	"embed"
	"io/fs"
	"os"
	"path"
)

//go:embed data/data.csv
var rawData embed.FS

// SampleFile is the name of the embedded sample CSV.
const SampleFile = "data.csv"

// Data is the embedded data filesystem with the "data/" prefix stripped.
var Data = mustSub(rawData, "data")

func mustSub(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(err)
	}
	return sub
}

// OverlayFS returns a filesystem that checks localDir on disk first,
// falling back to the embedded filesystem for files not found locally.
func OverlayFS(localDir string, embedded fs.FS) fs.FS {
	return overlayFS{localDir: localDir, embedded: embedded}
}

type overlayFS struct {
	localDir string
	embedded fs.FS
}

func (o overlayFS) Open(name string) (fs.File, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}
	f, err := os.Open(path.Join(o.localDir, name))
	if err == nil {
		return f, nil
	}
	return o.embedded.Open(name)
}
