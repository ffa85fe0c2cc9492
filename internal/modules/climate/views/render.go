package views

import (
	"errors"
	"io"
	"io/fs"
	"text/template"
)

var welcomeTmpl *template.Template

// loadTemplatesFromFS parses the page templates under dir. Tests use it to
// simulate missing or broken templates.
func loadTemplatesFromFS(fsys fs.FS, dir string) error {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		return err
	}
	tmpl, err := template.ParseFS(sub, "*.txt")
	if err != nil {
		return err
	}
	welcomeTmpl = tmpl
	return nil
}

// LoadTemplates loads the embedded templates. Call during startup before
// serving requests; if it returns an error, do not start the server.
func LoadTemplates() error {
	return loadTemplatesFromFS(viewsFS, "templates")
}

// Route describes one API route on the welcome page.
type Route struct {
	Path        string
	Description string
}

type WelcomeData struct {
	Title  string
	Routes []Route
}

// RenderWelcome writes the plain-text route listing served at "/".
func RenderWelcome(w io.Writer, data WelcomeData) error {
	if welcomeTmpl == nil {
		return errors.New("welcome template not loaded: call views.LoadTemplates during startup")
	}
	return welcomeTmpl.ExecuteTemplate(w, "welcome.txt", data)
}
