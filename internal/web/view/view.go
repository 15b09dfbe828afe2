package view

import (
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"time"
)

const baseFilename = "base.html"

// View renders a single HTML page. It is made of these templates:
// - base.html (required)
// - {name}.html (optional)
// - partials/*.html (optional)
type View struct {
	name     string
	template *template.Template
}

// Field holds the properties of a single form field.
type Field struct {
	Name     string
	Label    string
	Type     string
	Value    string
	Error    string
	Required bool
}

// funcs are available in every template.
var funcs = template.FuncMap{
	// timestamp formats t in UTC with minute precision.
	"timestamp": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.UTC().Format("2006-01-02 15:04 UTC")
	},
	// fieldError returns the error message for a form field, if any.
	"fieldError": func(errs map[string]string, field string) string {
		return errs[field]
	},
	// field groups the arguments into a Field, templates accept a single argument.
	"field": func(name, label, typ, value, err string, required bool) Field {
		return Field{
			Name:     name,
			Label:    label,
			Type:     typ,
			Value:    value,
			Error:    err,
			Required: required,
		}
	},
	// orDash shows a dash for empty optional values.
	"orDash": func(v any) string {
		s := fmt.Sprint(v)
		if s == "" {
			return "-"
		}
		return s
	},
}

// Parse parses the templates for the view with the given name.
func Parse(viewFS fs.FS, name string) (*View, error) {
	// names are hardcoded, but they end up in a file path.
	if err := validateName(name); err != nil {
		return nil, err
	}

	files := []string{
		baseFilename,
	}

	if name != "base" && name != "" {
		files = append(files, fmt.Sprintf("%s.html", name))
	}

	partials, err := fs.Glob(viewFS, "partials/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to glob for partials: %w", err)
	}

	files = append(files, partials...)

	templ, err := template.New(baseFilename).Funcs(funcs).ParseFS(viewFS, files...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse view %q: %w", name, err)
	}

	return &View{
		name:     name,
		template: templ,
	}, nil
}

// Name returns the name the view was parsed with.
func (v *View) Name() string {
	return v.name
}

// Render executes the view with data and writes the result to w.
func (v *View) Render(w io.Writer, data any) error {
	return v.template.Execute(w, data)
}

// validateName checks if all characters are alphanumeric, dashes or underscores.
func validateName(name string) error {
	for _, c := range name {
		if !validViewRune(c) {
			return fmt.Errorf("invalid character %q in view name: %s", c, name)
		}
	}
	return nil
}

func validViewRune(r rune) bool {
	return r == '-' || r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}
