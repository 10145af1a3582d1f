package layout

import "github.com/ByLCY/reportgrid/style"

// 绘制指令：渲染后端只需按顺序执行这些与设备无关的操作。

// OpKind 区分绘制指令类型。
type OpKind int

const (
	OpRect        OpKind = iota // 矩形，可带填充与描边
	OpRoundedRect               // 圆角矩形
	OpLine                      // 线段（边框、下划线、水平线）
	OpText                      // 单行文本，X/Y 为文本框左上角
)

func (k OpKind) String() string {
	switch k {
	case OpRect:
		return "rect"
	case OpRoundedRect:
		return "rounded-rect"
	case OpLine:
		return "line"
	case OpText:
		return "text"
	}
	return "unknown"
}

const (
	roundedRadius = 1.3  // 圆角半径（mm）
	shadeInset    = 0.26 // 部分边框时底纹相对单元格的内缩（mm）
)

// Op 是一条绘制指令。矩形与文本使用 X/Y/W/H，线段使用 X/Y 到 X2/Y2。
type Op struct {
	Kind     OpKind         `json:"kind"`
	X        float64        `json:"x"`
	Y        float64        `json:"y"`
	W        float64        `json:"w,omitempty"`
	H        float64        `json:"h,omitempty"`
	X2       float64        `json:"x2,omitempty"`
	Y2       float64        `json:"y2,omitempty"`
	Radius   float64        `json:"radius,omitempty"`
	Fill     *style.Color   `json:"fill,omitempty"`
	Stroke   *style.Pen     `json:"stroke,omitempty"`
	Text     string         `json:"text,omitempty"`
	Typeface style.Typeface `json:"typeface"`
	FontSize float64        `json:"fontSize,omitempty"`
}

// TextOrigin 返回文本框左上角：垂直居中，水平方向按对齐方式偏移，右对齐时留出样式边距。
func (c Cell) TextOrigin() Point {
	y := c.TopLeft.Y + (c.Size.Height-c.TextHeight)/2
	x := c.TopLeft.X
	switch c.Style.Alignment {
	case style.AlignCenter:
		x += (c.Size.Width - c.TextWidth) / 2
	case style.AlignRight:
		x += c.Size.Width - c.TextWidth - c.Style.Margin
	}
	return Point{X: x, Y: y}
}

// Instructions 生成单元格的绘制指令：边框与底纹、下划线、文本。
func (c Cell) Instructions() []Op {
	ops := c.borderOps()
	origin := c.TextOrigin()
	if c.Style.Underline {
		pen := c.Style.Pen
		base := origin.Y + c.TextHeight
		ops = append(ops, Op{Kind: OpLine, X: origin.X, Y: base, X2: origin.X + c.TextWidth, Y2: base, Stroke: &pen})
	}
	if c.Text != "" {
		ops = append(ops, Op{
			Kind:     OpText,
			X:        origin.X,
			Y:        origin.Y,
			W:        c.TextWidth,
			H:        c.TextHeight,
			Text:     c.Text,
			Typeface: c.Style.Typeface(),
			FontSize: c.Style.FontSize,
		})
	}
	return ops
}

func (c Cell) borderOps() []Op {
	s := c.Style
	x, y, w, h := c.TopLeft.X, c.TopLeft.Y, c.Size.Width, c.Size.Height
	pen := s.Pen

	// 四边框时画一个整体矩形，底纹作为填充。
	if s.Borders == style.BorderAll {
		fill := s.BackgroundColor
		if s.Shaded {
			fill = s.HighlightColor
		}
		op := Op{Kind: OpRect, X: x, Y: y, W: w, H: h, Fill: &fill, Stroke: &pen}
		if s.BorderAllRounded {
			op.Kind = OpRoundedRect
			op.Radius = roundedRadius
		}
		return []Op{op}
	}

	var ops []Op
	if s.Shaded {
		fill := s.HighlightColor
		ops = append(ops, Op{Kind: OpRect, X: x + shadeInset, Y: y + shadeInset, W: w - 2*shadeInset, H: h - 2*shadeInset, Fill: &fill})
	}
	line := func(x1, y1, x2, y2 float64) {
		ops = append(ops, Op{Kind: OpLine, X: x1, Y: y1, X2: x2, Y2: y2, Stroke: &pen})
	}
	if s.Borders.Has(style.BorderTop) {
		line(x, y, x+w, y)
	}
	if s.Borders.Has(style.BorderBottom) {
		line(x, y+h, x+w, y+h)
	}
	if s.Borders.Has(style.BorderLeft) {
		line(x, y, x, y+h)
	}
	if s.Borders.Has(style.BorderRight) {
		line(x+w, y, x+w, y+h)
	}
	return ops
}

// Instruction 返回水平线的绘制指令。
func (r Rule) Instruction() Op {
	pen := r.Pen
	return Op{Kind: OpLine, X: r.From.X, Y: r.From.Y, X2: r.To.X, Y2: r.To.Y, Stroke: &pen}
}

// Instructions 按排版顺序返回整页的绘制指令，水平线在单元格之后。
func (p *Page) Instructions() []Op {
	if p.IsMissing() {
		return nil
	}
	var ops []Op
	for _, c := range p.Cells {
		ops = append(ops, c.Instructions()...)
	}
	for _, r := range p.Rules {
		ops = append(ops, r.Instruction())
	}
	return ops
}
