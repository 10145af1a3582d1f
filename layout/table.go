package layout

import (
	"iter"
	"math"
	"strings"

	"github.com/ByLCY/reportgrid/style"
)

// SubFieldSeparator 开头的行会被拆成同一行中等宽的多个单元格。
const SubFieldSeparator = ";"

// Table 是行列游标，把正文行换算成带绝对位置与页码的单元格。
//
// 纵坐标使用内容坐标系：第 k 页的内容区域对应 [k*H, (k+1)*H)，H 为内容区域高度。
// 单元格的页面纵坐标为 margin + (Y mod H)。
type Table struct {
	top       float64
	bottom    float64
	currentY  float64
	rowHeight float64

	columns      int
	column       int
	span         int
	moveVertical bool

	page     Size
	margin   float64
	measurer Measurer
	marker   rune
}

// NewTable 以内容区域尺寸 page 与页边距 margin 创建单栏表格。
func NewTable(page Size, margin float64, measurer Measurer, marker rune) *Table {
	if measurer == nil {
		measurer = EstimateMeasurer{}
	}
	return &Table{
		columns:      1,
		span:         1,
		moveVertical: true,
		page:         page,
		margin:       margin,
		measurer:     measurer,
		marker:       marker,
	}
}

func (t *Table) Top() float64       { return t.top }
func (t *Table) Bottom() float64    { return t.bottom }
func (t *Table) CurrentY() float64  { return t.currentY }
func (t *Table) RowHeight() float64 { return t.rowHeight }
func (t *Table) Columns() int       { return t.columns }
func (t *Table) Column() int        { return t.column }
func (t *Table) Span() int          { return t.span }
func (t *Table) Width() float64     { return t.page.Width }

// Height 是当前栏区自 Top 起已排版的高度。
func (t *Table) Height() float64 { return t.bottom - t.top }

// ColumnWidth 是单栏宽度。
func (t *Table) ColumnWidth() float64 { return t.page.Width / float64(t.columns) }

// IsVertical 表示每行之后是否直接下移（而不是移到下一栏）。
func (t *Table) IsVertical() bool { return t.moveVertical }

// SetRowHeight 设置当前行的最小高度。
func (t *Table) SetRowHeight(h float64) {
	if h < 0 {
		h = 0
	}
	t.rowHeight = h
}

// SetSpan 设置后续单元格横跨的栏数，结果限制在 [1, columns-column]。
func (t *Table) SetSpan(span int) {
	t.span = min(max(span, 1), t.columns-t.column)
}

// ResetColumns 结束当前行并开始 n 栏布局，新栏区从目前的最底部开始。
// 只有单栏布局按行下移，多栏布局按栏向右流动。
func (t *Table) ResetColumns(n int) {
	if n < 1 {
		n = 1
	}
	t.columns = n
	t.moveDown()
	t.rowHeight = 0
	t.column = 0
	t.span = 1
	t.top = t.bottom
	t.currentY = t.bottom
	t.moveVertical = n < 2
}

// SetColumnVertical 把游标固定到指定栏并回到栏区顶部，之后按行下移。
// 该设置优先于由栏数推导出的流动方向，直到下一次 ResetColumns。
func (t *Table) SetColumnVertical(column int) {
	t.column = min(max(column, 0), t.columns-1)
	t.span = min(t.span, t.columns-t.column)
	t.moveVertical = true
	t.currentY = t.top
}

// PrepareCells 为一行正文生成单元格。以 ";" 开头的行拆成若干等宽子单元格，
// 每个子单元格各自解析行内样式。单元格全部产出后游标前进一步。
//
// 若本行最高的单元格会跨越页边界（且它本身能放进一页），整行先移到下一页顶部。
func (t *Table) PrepareCells(text string, ambient *style.Attributes) iter.Seq[Cell] {
	return func(yield func(Cell) bool) {
		defer t.Move()

		fields := []string{text}
		if strings.HasPrefix(text, SubFieldSeparator) {
			fields = strings.Split(text[len(SubFieldSeparator):], SubFieldSeparator)
		}
		width := float64(t.span) * t.ColumnWidth() / float64(len(fields))

		cells := make([]Cell, len(fields))
		for i, field := range fields {
			cells[i] = t.format(field, ambient, width)
			if cells[i].Size.Height > t.rowHeight {
				t.rowHeight = cells[i].Size.Height
			}
		}

		page, offset := t.locate(t.currentY)
		if offset > 0 && t.rowHeight <= t.page.Height && offset+t.rowHeight > t.page.Height {
			t.currentY = float64(page+1) * t.page.Height
			t.bottom = max(t.bottom, t.currentY)
			page, offset = page+1, 0
		}

		left := t.margin + t.ColumnWidth()*float64(t.column)
		for i := range cells {
			cells[i].TopLeft = Point{X: left + width*float64(i), Y: t.margin + offset}
			cells[i].Y = t.currentY
			cells[i].PageNumber = page
			if !yield(cells[i]) {
				return
			}
		}
	}
}

// format 应用行内样式并测量文本；单元格高度不小于当前行高。
func (t *Table) format(text string, ambient *style.Attributes, width float64) Cell {
	attrs, consumed := ambient.ApplyInline(text, t.marker)
	body := text[consumed:]
	measured := body
	if measured == "" {
		measured = " "
	}
	w, h := t.measurer.Measure(measured, attrs)
	return Cell{
		Size:       Size{Width: width, Height: max(t.rowHeight, h)},
		Style:      *attrs,
		Text:       body,
		TextWidth:  w,
		TextHeight: h,
	}
}

// Move 前进一步：单栏或固定栏时下移一行，否则移到下一栏，越过最后一栏时换行。
func (t *Table) Move() {
	if t.moveVertical {
		t.moveDown()
		return
	}
	t.moveRight()
}

func (t *Table) moveRight() {
	t.column += t.span
	if t.column >= t.columns {
		t.column = 0
		t.moveDown()
	}
}

// moveDown 下移一个行高；如果按刚结束的行高推算下一行会跨页，则移到下一页顶部。
func (t *Table) moveDown() {
	t.currentY += t.rowHeight
	page, offset := t.locate(t.currentY)
	if offset > 0 && offset+t.rowHeight > t.page.Height {
		t.currentY = float64(page+1) * t.page.Height
	}
	if t.currentY > t.bottom {
		t.bottom = t.currentY
	}
	t.rowHeight = 0
}

// locate 返回 y 所在的页码与页内偏移，保证 0 <= offset < H。
func (t *Table) locate(y float64) (int, float64) {
	h := t.page.Height
	page := math.Floor(y / h)
	if (page+1)*h <= y {
		page++
	}
	if page*h > y {
		page--
	}
	return int(page), y - page*h
}
