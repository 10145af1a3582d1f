package layout

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/ByLCY/reportgrid/style"
)

func testCell(mutate func(*style.Attributes)) Cell {
	attrs := style.NewAttributes("sans", 14)
	if mutate != nil {
		mutate(attrs)
	}
	return Cell{
		TopLeft:    Point{X: 10, Y: 20},
		Size:       Size{Width: 40, Height: 10},
		Style:      *attrs,
		Text:       "hello",
		TextWidth:  5,
		TextHeight: 4,
	}
}

func opKinds(ops []Op) []OpKind {
	kinds := make([]OpKind, len(ops))
	for i, op := range ops {
		kinds[i] = op.Kind
	}
	return kinds
}

func TestTextOriginAlignment(t *testing.T) {
	cases := []struct {
		align style.Alignment
		want  Point
	}{
		{style.AlignLeft, Point{X: 10, Y: 23}},
		{style.AlignCenter, Point{X: 27.5, Y: 23}},
		{style.AlignRight, Point{X: 10 + 40 - 5 - style.DefaultMargin, Y: 23}},
	}
	for _, tc := range cases {
		c := testCell(func(a *style.Attributes) { a.Alignment = tc.align })
		if diff := cmp.Diff(tc.want, c.TextOrigin(), cmpopts.EquateApprox(0, eps)); diff != "" {
			t.Fatalf("%v origin mismatch (-want +got):\n%s", tc.align, diff)
		}
	}
}

func TestPlainCellDrawsOnlyText(t *testing.T) {
	ops := testCell(nil).Instructions()
	if diff := cmp.Diff([]OpKind{OpText}, opKinds(ops)); diff != "" {
		t.Fatalf("unexpected ops (-want +got):\n%s", diff)
	}
	text := ops[0]
	if text.Text != "hello" || text.FontSize != 14 || text.Typeface != (style.Typeface{Family: "sans"}) {
		t.Fatalf("unexpected text op: %+v", text)
	}

	empty := testCell(nil)
	empty.Text = ""
	if ops := empty.Instructions(); len(ops) != 0 {
		t.Fatalf("empty cell must not draw: %+v", ops)
	}
}

func TestFullBorderFill(t *testing.T) {
	plain := testCell(func(a *style.Attributes) { a.Borders = style.BorderAll })
	ops := plain.Instructions()
	if ops[0].Kind != OpRect || *ops[0].Fill != style.White {
		t.Fatalf("unshaded full border fills with the background: %+v", ops[0])
	}

	oval := testCell(func(a *style.Attributes) {
		a.Borders = style.BorderAll
		a.BorderAllRounded = true
		a.Shaded = true
	})
	ops = oval.Instructions()
	if ops[0].Kind != OpRoundedRect || ops[0].Radius != roundedRadius || *ops[0].Fill != style.LightGray {
		t.Fatalf("shaded oval must be a rounded rect filled with the highlight: %+v", ops[0])
	}
	if ops[0].W != 40 || ops[0].H != 10 {
		t.Fatalf("border rect must cover the cell: %+v", ops[0])
	}
}

func TestPartialBordersAndShade(t *testing.T) {
	c := testCell(func(a *style.Attributes) {
		a.Borders = style.BorderTop | style.BorderRight
		a.Shaded = true
		a.Underline = true
	})
	ops := c.Instructions()
	want := []OpKind{OpRect, OpLine, OpLine, OpLine, OpText}
	if diff := cmp.Diff(want, opKinds(ops)); diff != "" {
		t.Fatalf("unexpected ops (-want +got):\n%s", diff)
	}
	shade := ops[0]
	if shade.Stroke != nil || shade.X != 10+shadeInset || shade.W != 40-2*shadeInset {
		t.Fatalf("shade must be an inset fill without stroke: %+v", shade)
	}
	top, right := ops[1], ops[2]
	if top.Y != 20 || top.Y2 != 20 || top.X2 != 50 {
		t.Fatalf("top border mismatch: %+v", top)
	}
	if right.X != 50 || right.X2 != 50 || right.Y2 != 30 {
		t.Fatalf("right border mismatch: %+v", right)
	}
	underline := ops[3]
	if underline.Y != 27 || underline.X2-underline.X != 5 {
		t.Fatalf("underline must sit under the text: %+v", underline)
	}
}

func TestPageInstructionsOrder(t *testing.T) {
	page := &Page{
		Cells: []Cell{testCell(nil), testCell(func(a *style.Attributes) { a.Borders = style.BorderLeft })},
		Rules: []Rule{{From: Point{X: 5, Y: 40}, To: Point{X: 95, Y: 40}, Pen: style.Pen{Width: 0.25}}},
	}
	want := []OpKind{OpText, OpLine, OpText, OpLine}
	if diff := cmp.Diff(want, opKinds(page.Instructions())); diff != "" {
		t.Fatalf("unexpected ops (-want +got):\n%s", diff)
	}
}

func TestEncodeDebugJSON(t *testing.T) {
	res := layoutLines(t, []string{"a", "$#F b"}, Options{})
	var buf bytes.Buffer
	if err := EncodeDebugJSON(&buf, res, true); err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	var decoded struct {
		Name  string `json:"name"`
		Pages []struct {
			Cells []json.RawMessage `json:"cells"`
			Ops   []struct {
				Kind OpKind `json:"kind"`
			} `json:"ops"`
		} `json:"pages"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(decoded.Pages) != 1 || len(decoded.Pages[0].Cells) != 2 {
		t.Fatalf("unexpected debug output: %s", buf.String())
	}
	if got := len(decoded.Pages[0].Ops); got != 3 {
		t.Fatalf("expected 3 ops (text, rect, text), got %d", got)
	}
}

func TestEstimateMeasurer(t *testing.T) {
	m := EstimateMeasurer{}
	attrs := style.NewAttributes("sans", 10)
	w1, h := m.Measure("abcd", attrs)
	w2, _ := m.Measure("abcdefgh", attrs)
	if w2 <= w1 || w2 != 2*w1 {
		t.Fatalf("width must grow with text: %g %g", w1, w2)
	}
	size := 10.0
	if want := size * PtToMm * 1.2; h != want {
		t.Fatalf("height = %g, want %g", h, want)
	}
	attrs.Bold = true
	if wb, _ := m.Measure("abcd", attrs); wb <= w1 {
		t.Fatalf("bold text must be wider")
	}
}
