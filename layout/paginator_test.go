package layout

import (
	"fmt"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap/zaptest"

	"github.com/ByLCY/reportgrid/dsl"
	"github.com/ByLCY/reportgrid/style"
)

var testGeometry = Geometry{Width: 100, Height: 60, Margin: 5}

func testConfig() style.Config {
	return style.Config{Typeface: "sans", BaseFontSize: 14}
}

func layoutLines(t *testing.T, lines []string, opts Options) *Result {
	t.Helper()
	if opts.Measurer == nil {
		opts.Measurer = fixedMeasurer
	}
	if opts.Logger == nil {
		opts.Logger = zaptest.NewLogger(t)
	}
	res, err := Paginate(lines, testGeometry, testConfig(), opts)
	if err != nil {
		t.Fatalf("paginate failed: %v", err)
	}
	return res
}

func newPaginator(t *testing.T, lines []string, opts Options) (*dsl.Document, *Paginator) {
	t.Helper()
	if opts.Measurer == nil {
		opts.Measurer = fixedMeasurer
	}
	doc := dsl.NewDocument(style.NewRegistry(testConfig()), zaptest.NewLogger(t))
	doc.Load(slices.Values(lines))
	p, err := NewPaginator(doc, testGeometry, opts)
	if err != nil {
		t.Fatalf("new paginator failed: %v", err)
	}
	return doc, p
}

func numberedLines(n int) []string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = fmt.Sprintf("line %d", i)
	}
	return lines
}

func allCells(res *Result) []Cell {
	var cells []Cell
	for _, p := range res.Pages {
		cells = append(cells, p.Cells...)
	}
	return cells
}

func TestQuitStopsPagination(t *testing.T) {
	res := layoutLines(t, []string{"a", "b", ".quit now", "c"}, Options{})
	if res.CellCount() != 2 {
		t.Fatalf("cells after .quit must be dropped, got %d", res.CellCount())
	}
}

func TestQuitIgnoresCase(t *testing.T) {
	for _, quit := range []string{".QUIT", ".Quit here"} {
		res := layoutLines(t, []string{"a", quit, "b"}, Options{})
		if res.CellCount() != 1 {
			t.Fatalf("%q must stop pagination, got %d cells", quit, res.CellCount())
		}
	}
}

func TestUppercaseDocumentDirectives(t *testing.T) {
	res := layoutLines(t, []string{".NAME Mixed Case", ".Styles", "fontscale 2", "", "a"}, Options{})
	if res.Name != "Mixed Case" {
		t.Fatalf("name = %q, want %q", res.Name, "Mixed Case")
	}
	cells := allCells(res)
	if len(cells) != 1 || cells[0].Text != "a" {
		t.Fatalf("style block lines must not become cells: %+v", cells)
	}
}

func TestUnknownDirectivesAreSwallowed(t *testing.T) {
	res := layoutLines(t, []string{".frobnicate 1 2", "a", ".", ". spaced"}, Options{})
	cells := allCells(res)
	if len(cells) != 1 || cells[0].Text != "a" {
		t.Fatalf("only the text line must produce a cell: %+v", cells)
	}
}

func TestPaginationIsDeterministic(t *testing.T) {
	lines := append([]string{".styles", ".style head", ".bold", ".fontscale 1.5", ""}, numberedLines(20)...)
	lines = append(lines, ".style head", ";$_title;$|x", ".columns 3", "a", "b", "c", "d")

	first := layoutLines(t, lines, Options{})
	second := layoutLines(t, lines, Options{})
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("pagination differs between runs (-first +second):\n%s", diff)
	}

	_, p := newPaginator(t, lines, Options{})
	if diff := cmp.Diff(first.Pages, p.Pages()); diff != "" {
		t.Fatalf("paginator differs from Paginate (-want +got):\n%s", diff)
	}
	if err := p.SetPageSize(200, 100); err != nil {
		t.Fatalf("set page size failed: %v", err)
	}
	if p.PageCount() >= len(first.Pages) {
		t.Fatalf("a taller page must need fewer pages: %d vs %d", p.PageCount(), len(first.Pages))
	}
	if err := p.SetPageSize(testGeometry.Width, testGeometry.Height); err != nil {
		t.Fatalf("set page size failed: %v", err)
	}
	if diff := cmp.Diff(first.Pages, p.Pages()); diff != "" {
		t.Fatalf("restoring the page size must restore the layout (-want +got):\n%s", diff)
	}
}

func TestCellsLandOnTheirPage(t *testing.T) {
	// 行高 7，内容高度 50：每页 7 行。
	res := layoutLines(t, numberedLines(30), Options{})
	if len(res.Pages) != 5 {
		t.Fatalf("expected 5 pages, got %d", len(res.Pages))
	}
	for _, page := range res.Pages {
		if len(page.Cells) == 0 {
			t.Fatalf("page %d is empty", page.Number)
		}
		for _, c := range page.Cells {
			if c.PageNumber != page.Number {
				t.Fatalf("cell %q on page %d claims page %d", c.Text, page.Number, c.PageNumber)
			}
			if c.TopLeft.Y < testGeometry.Margin || c.TopLeft.Y+c.Size.Height > testGeometry.Height-testGeometry.Margin+eps {
				t.Fatalf("cell %q leaves the content area: y=%g", c.Text, c.TopLeft.Y)
			}
		}
	}
	if got := len(res.Pages[0].Cells); got != 7 {
		t.Fatalf("first page holds %d rows, want 7", got)
	}
	if res.Height < 4*50 {
		t.Fatalf("height %g must reach the last page", res.Height)
	}
}

func TestPageNavigation(t *testing.T) {
	_, p := newPaginator(t, numberedLines(30), Options{})
	if !p.IsPageCountValid() || p.CurrentPageNumber() != 0 || !p.IsFirstPage() {
		t.Fatalf("paginator must start on the first page")
	}
	if got := p.GetPage(-3).Number; got != 0 {
		t.Fatalf("negative page must clamp to 0, got %d", got)
	}
	if got := p.GetPage(99).Number; got != 4 || !p.IsLastPage() {
		t.Fatalf("large page must clamp to the last page, got %d", got)
	}
	if got := p.PrevPage().Number; got != 3 {
		t.Fatalf("prev page = %d, want 3", got)
	}
	p.NextPage()
	if got := p.NextPage().Number; got != 4 {
		t.Fatalf("next page past the end = %d, want 4", got)
	}
	if p.CurrentPage() != p.Pages()[4] {
		t.Fatalf("current page must follow navigation")
	}
}

func TestEmptyDocumentHasNoPages(t *testing.T) {
	_, p := newPaginator(t, []string{".style plain", ".bold"}, Options{})
	if p.PageCount() != 0 {
		t.Fatalf("style-only document must not produce pages")
	}
	if page := p.GetPage(0); page != MissingPage || !page.IsMissing() {
		t.Fatalf("expected the missing page, got %+v", page)
	}
	if ops := p.CurrentPage().Instructions(); ops != nil {
		t.Fatalf("missing page must not draw anything")
	}
}

func TestHorizontalRules(t *testing.T) {
	lines := []string{"a", ".hr", "b"}
	if res := layoutLines(t, lines, Options{}); len(res.Pages[0].Rules) != 0 {
		t.Fatalf(".hr must be ignored unless rules are enabled")
	}

	res := layoutLines(t, lines, Options{Rules: true})
	rules := res.Pages[0].Rules
	if len(rules) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(rules))
	}
	want := Rule{
		From:       Point{X: 5, Y: 12},
		To:         Point{X: 95, Y: 12},
		PageNumber: 0,
		Pen:        style.Pen{Color: style.Black, Width: style.DefaultPenWidth},
	}
	if diff := cmp.Diff(want, rules[0]); diff != "" {
		t.Fatalf("rule mismatch (-want +got):\n%s", diff)
	}
	if res.CellCount() != 2 {
		t.Fatalf(".hr must not produce a cell")
	}
}

func TestColumnsDirective(t *testing.T) {
	res := layoutLines(t, []string{"intro", ".columns 2", "a", "b", "c", ".column 1", "side", ".columns x"}, Options{})
	cells := allCells(res)
	type pos struct {
		Text string
		X, Y float64
	}
	var got []pos
	for _, c := range cells {
		got = append(got, pos{c.Text, c.TopLeft.X, c.Y})
	}
	want := []pos{
		{"intro", 5, 0},
		{"a", 5, 7},
		{"b", 50, 7},
		{"c", 5, 14},
		{"side", 50, 7},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("column layout mismatch (-want +got):\n%s", diff)
	}
	for _, c := range cells[1:] {
		if c.Size.Width != 45 {
			t.Fatalf("cell %q width %g, want 45", c.Text, c.Size.Width)
		}
	}
}

func TestColumnSpanDirective(t *testing.T) {
	res := layoutLines(t, []string{".columns 3", ".column 0 2", "wide", ".column 2 5", "narrow", ".column 1 bad", "one"}, Options{})
	cells := allCells(res)
	widths := []float64{60, 30, 30}
	for i, c := range cells {
		if c.Size.Width != widths[i] {
			t.Fatalf("cell %q width %g, want %g", c.Text, c.Size.Width, widths[i])
		}
	}
}

func TestStylesAndInlineCodes(t *testing.T) {
	lines := []string{
		".name Quarterly",
		".styles",
		".style head",
		".bold",
		".centre",
		".borders all",
		"",
		".style head",
		"Title",
		".style default",
		";body;$!#F strong",
	}
	res := layoutLines(t, lines, Options{})
	if res.Name != "Quarterly" {
		t.Fatalf("name = %q", res.Name)
	}
	cells := allCells(res)
	if len(cells) != 3 {
		t.Fatalf("expected 3 cells, got %d", len(cells))
	}
	head := cells[0].Style
	if !head.Bold || head.Alignment != style.AlignCenter || head.Borders != style.BorderAll {
		t.Fatalf("head style not applied: %+v", head)
	}
	if cells[1].Style.Bold || cells[1].Style.Borders != style.BorderNone {
		t.Fatalf("default must reset the style: %+v", cells[1].Style)
	}
	strong := cells[2]
	if strong.Text != "strong" || !strong.Style.Bold || strong.Style.Borders != style.BorderAll {
		t.Fatalf("inline codes not applied: %+v", strong)
	}
}

func TestBaseFontSizeRepaginate(t *testing.T) {
	doc, p := newPaginator(t, []string{"x"}, Options{})
	if h := p.Pages()[0].Cells[0].Size.Height; h != 7 {
		t.Fatalf("height = %g, want 7", h)
	}
	doc.Registry().SetBaseFontSize(20)
	p.Repaginate()
	if h := p.Pages()[0].Cells[0].Size.Height; h != 10 {
		t.Fatalf("height after base size change = %g, want 10", h)
	}
	if p.Registry().BaseFontSize() != 20 {
		t.Fatalf("registry must reflect the new base size")
	}
}

func TestOnCellAndDataBinding(t *testing.T) {
	var seen []string
	opts := Options{
		Data:   map[string]any{"user": map[string]any{"name": "Ada"}},
		OnCell: func(c Cell) { seen = append(seen, c.Text) },
	}
	res := layoutLines(t, []string{";Hi ${user.name};left ${missing}", ".hr", "bye"}, opts)
	want := []string{"Hi Ada", "left ${missing}", "bye"}
	if diff := cmp.Diff(want, seen); diff != "" {
		t.Fatalf("callback order mismatch (-want +got):\n%s", diff)
	}
	if res.CellCount() != len(seen) {
		t.Fatalf("callback count %d != cell count %d", len(seen), res.CellCount())
	}
}

func TestInvalidGeometry(t *testing.T) {
	for _, g := range []Geometry{
		{Width: 10, Height: 10, Margin: 5},
		{Width: 100, Height: 60, Margin: -1},
		{Width: 0, Height: 0},
	} {
		if _, err := Paginate([]string{"a"}, g, testConfig(), Options{}); err == nil {
			t.Fatalf("expected error for %+v", g)
		}
	}

	_, p := newPaginator(t, []string{"a"}, Options{})
	if err := p.SetPageSize(8, 8); err == nil {
		t.Fatalf("expected error for a page smaller than its margins")
	}
	if p.Geometry() != testGeometry {
		t.Fatalf("a rejected size must keep the old geometry")
	}
	if _, err := NewPaginator(nil, testGeometry, Options{}); err == nil {
		t.Fatalf("expected error for a nil document")
	}
}
