package preview

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"
)

//go:embed templates/*.html.tmpl
var templateFS embed.FS

var pageTemplate = template.Must(template.New("portfolio.html.tmpl").ParseFS(templateFS, "templates/portfolio.html.tmpl"))

type Options struct {
	Mode Mode
	// Year printed in the footer. Zero means the current year.
	Year int
}

type page struct {
	Document
	Mode Mode
	Year int
}

func Render(w io.Writer, doc Document, opts Options) error {
	if opts.Mode == "" {
		opts.Mode = ModeDesktop
	}
	if opts.Year == 0 {
		opts.Year = time.Now().Year()
	}
	if err := pageTemplate.Execute(w, page{Document: doc, Mode: opts.Mode, Year: opts.Year}); err != nil {
		return fmt.Errorf("render portfolio page: %w", err)
	}
	return nil
}
