package view

import (
	"fmt"
	"io"
	"io/fs"
)

// FSRenderer parses views on every render, so changes to the templates on
// disk show up without a restart. Meant for development.
type FSRenderer struct {
	fs fs.FS
}

func NewFSRenderer(viewFS fs.FS) *FSRenderer {
	return &FSRenderer{fs: viewFS}
}

// Render parses the named view and executes it with data.
func (r *FSRenderer) Render(w io.Writer, name string, data any) error {
	v, err := Parse(r.fs, name)
	if err != nil {
		return fmt.Errorf("failed to parse view %q: %w", name, err)
	}
	return v.Render(w, data)
}
