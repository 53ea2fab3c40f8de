package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"

	"github.com/eugenenazirov/boxfit/internal/fit"
	"github.com/eugenenazirov/boxfit/internal/form"
)

const (
	// NoFitMessage is shown in place of the product list when nothing fits a box.
	NoFitMessage = "No products fit in this box"
	// SuggestedLabel prefixes the suggested dimensions line.
	SuggestedLabel = "Suggested New Box Dimensions:"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// PageView is everything the form page needs to render.
// Results are only displayed once Evaluated is set.
type PageView struct {
	Products  []form.Entry
	Boxes     []form.Entry
	Results   []fit.Result
	Evaluated bool
}

// NewPageView builds the view for a form state. Pass nil results for the idle
// page.
func NewPageView(state form.State, results []fit.Result) PageView {
	return PageView{
		Products:  state.Products(),
		Boxes:     state.Boxes(),
		Results:   results,
		Evaluated: results != nil,
	}
}

type pageData struct {
	PageView
	NoFitMessage   string
	SuggestedLabel string
}

// Page writes the HTML form page.
func Page(w io.Writer, view PageView) error {
	data := pageData{
		PageView:       view,
		NoFitMessage:   NoFitMessage,
		SuggestedLabel: SuggestedLabel,
	}
	if err := pageTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("render page: %w", err)
	}
	return nil
}

// Text writes results as plain text, one block per box.
func Text(w io.Writer, results []fit.Result) error {
	for i, r := range results {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "%s:\n", r.Box); err != nil {
			return err
		}
		if !r.Fits() {
			if _, err := fmt.Fprintf(w, "  - %s\n", NoFitMessage); err != nil {
				return err
			}
			continue
		}
		for _, name := range r.FittingProducts {
			if _, err := fmt.Fprintf(w, "  - %s\n", name); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "  %s %s\n", SuggestedLabel, r.SuggestedDimensions); err != nil {
			return err
		}
	}
	return nil
}

// Static returns the embedded stylesheet and other page assets.
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(fmt.Sprintf("static assets: %v", err))
	}
	return sub
}
