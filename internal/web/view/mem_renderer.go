package view

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"strings"
)

// MemRenderer renders views that were parsed once, up front.
type MemRenderer struct {
	views map[string]*View
}

// NewMemRenderer parses every *.html view in the root of viewFS.
func NewMemRenderer(viewFS fs.FS) (*MemRenderer, error) {
	files, err := fs.Glob(viewFS, "*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to glob for views: %w", err)
	}

	views := make(map[string]*View, len(files))
	for _, file := range files {
		name := strings.TrimSuffix(file, ".html")
		v, err := Parse(viewFS, name)
		if err != nil {
			return nil, err
		}

		views[name] = v
	}

	return &MemRenderer{
		views: views,
	}, nil
}

// Render renders the view into a buffer first, so nothing is written to w
// when rendering fails halfway.
func (r *MemRenderer) Render(w io.Writer, name string, data any) error {
	v, ok := r.views[name]
	if !ok {
		return fmt.Errorf("view %q not found", name)
	}

	var buf bytes.Buffer
	err := v.Render(&buf, data)
	if err != nil {
		return err
	}

	_, err = buf.WriteTo(w)
	return err
}
