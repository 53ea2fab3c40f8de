package render

import (
	"bytes"
	"io/fs"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eugenenazirov/boxfit/internal/fit"
	"github.com/eugenenazirov/boxfit/internal/form"
)

func renderDoc(t *testing.T, view PageView) *goquery.Document {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, Page(&buf, view))

	doc, err := goquery.NewDocumentFromReader(&buf)
	require.NoError(t, err)
	return doc
}

func inputValues(doc *goquery.Document, name string) []string {
	var out []string
	doc.Find(`input[name="` + name + `"]`).Each(func(_ int, s *goquery.Selection) {
		v, _ := s.Attr("value")
		out = append(out, v)
	})
	return out
}

func TestPageIdleShowsFormWithoutResults(t *testing.T) {
	t.Parallel()

	doc := renderDoc(t, NewPageView(form.New(), nil))

	assert.Equal(t, []string{""}, inputValues(doc, "product_name"))
	assert.Equal(t, []string{""}, inputValues(doc, "box_dimensions"))
	assert.Equal(t, 0, doc.Find("#results").Length())

	var actions []string
	doc.Find(`button[name="action"]`).Each(func(_ int, s *goquery.Selection) {
		v, _ := s.Attr("value")
		actions = append(actions, v)
	})
	assert.Equal(t, []string{"add_product", "add_box", "check"}, actions)
}

func TestPageKeepsEntryOrder(t *testing.T) {
	t.Parallel()

	state := form.FromEntries(
		[]form.Entry{{Name: "A", Dimensions: "2x3x4"}, {Name: "B", Dimensions: "10x10x10"}, {}},
		[]form.Entry{{Name: "X", Dimensions: "5x5x5"}},
	)
	doc := renderDoc(t, NewPageView(state, nil))

	assert.Equal(t, []string{"A", "B", ""}, inputValues(doc, "product_name"))
	assert.Equal(t, []string{"2x3x4", "10x10x10", ""}, inputValues(doc, "product_dimensions"))
	assert.Equal(t, []string{"X"}, inputValues(doc, "box_name"))
	assert.Equal(t, []string{"5x5x5"}, inputValues(doc, "box_dimensions"))
}

func TestPageRendersResults(t *testing.T) {
	t.Parallel()

	results := []fit.Result{
		{Box: "X", FittingProducts: []string{"A", "C"}, SuggestedDimensions: "2x3x4"},
		{Box: "Y", FittingProducts: []string{}, SuggestedDimensions: fit.NoProductsFit},
	}
	doc := renderDoc(t, NewPageView(form.New(), results))

	blocks := doc.Find("#results .result")
	require.Equal(t, 2, blocks.Length())

	first := blocks.Eq(0)
	assert.Equal(t, "X:", strings.TrimSpace(first.Find("h4").Text()))
	var items []string
	first.Find("li").Each(func(_ int, s *goquery.Selection) {
		items = append(items, s.Text())
	})
	assert.Equal(t, []string{"A", "C"}, items)
	assert.Equal(t, "Suggested New Box Dimensions: 2x3x4", strings.TrimSpace(first.Find(".suggested").Text()))

	second := blocks.Eq(1)
	assert.Equal(t, NoFitMessage, strings.TrimSpace(second.Find("li.no-fit").Text()))
	assert.Equal(t, 0, second.Find(".suggested").Length())
}

func TestPageEvaluatedWithoutBoxes(t *testing.T) {
	t.Parallel()

	doc := renderDoc(t, NewPageView(form.New(), []fit.Result{}))
	assert.Equal(t, 1, doc.Find("#results").Length())
	assert.Equal(t, 0, doc.Find("#results .result").Length())
}

func TestPageEscapesUserText(t *testing.T) {
	t.Parallel()

	state := form.FromEntries([]form.Entry{{Name: `<script>alert("x")</script>`}}, nil)
	results := []fit.Result{{Box: "<b>box</b>", FittingProducts: []string{"<i>p</i>"}, SuggestedDimensions: "1x1x1"}}

	var buf bytes.Buffer
	require.NoError(t, Page(&buf, NewPageView(state, results)))

	html := buf.String()
	assert.NotContains(t, html, "<script>")
	assert.NotContains(t, html, "<b>box</b>")
	assert.NotContains(t, html, "<i>p</i>")
	assert.Contains(t, html, "&lt;b&gt;box&lt;/b&gt;")
}

func TestText(t *testing.T) {
	t.Parallel()

	results := []fit.Result{
		{Box: "X", FittingProducts: []string{"A"}, SuggestedDimensions: "2x3x4"},
		{Box: "Y", FittingProducts: []string{}, SuggestedDimensions: fit.NoProductsFit},
	}

	var buf bytes.Buffer
	require.NoError(t, Text(&buf, results))

	want := "X:\n" +
		"  - A\n" +
		"  Suggested New Box Dimensions: 2x3x4\n" +
		"\n" +
		"Y:\n" +
		"  - No products fit in this box\n"
	assert.Equal(t, want, buf.String())
}

func TestTextEmpty(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, Text(&buf, nil))
	assert.Empty(t, buf.String())
}

func TestStaticContainsStylesheet(t *testing.T) {
	t.Parallel()

	data, err := fs.ReadFile(Static(), "style.css")
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}
