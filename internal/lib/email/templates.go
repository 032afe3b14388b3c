package email

import (
	"embed"
	"html/template"
	"strings"
)

type Template string

const (
	TemplateLoadReport Template = "load_report"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(
	template.New("").
		Funcs(template.FuncMap{"join": strings.Join}).
		ParseFS(templateFS, "templates/*.html"),
)
