package layout

import (
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/ByLCY/reportgrid/binding"
	"github.com/ByLCY/reportgrid/dsl"
	"github.com/ByLCY/reportgrid/style"
)

// Paginator 驱动 Document → Table，把单元格收集到页面中。
//
// 分页在构造时一次性完成；修改页面尺寸会从原始行重新完整计算，不做增量更新。
// Paginator 不是并发安全的。
type Paginator struct {
	doc      *dsl.Document
	geometry Geometry
	opts     Options
	log      *zap.Logger

	table     *Table
	contents  *dsl.Contents
	pages     []*Page
	current   int
	validated bool
}

// NewPaginator 校验页面几何并立即完成分页。
func NewPaginator(doc *dsl.Document, geometry Geometry, opts Options) (*Paginator, error) {
	if doc == nil {
		return nil, fmt.Errorf("文档为空")
	}
	if err := validateGeometry(geometry); err != nil {
		return nil, err
	}
	opts = opts.withDefaults()
	p := &Paginator{
		doc:      doc,
		geometry: geometry,
		opts:     opts,
		log:      opts.Logger,
	}
	p.paginate()
	return p, nil
}

func validateGeometry(g Geometry) error {
	if g.Margin < 0 {
		return fmt.Errorf("页边距不能为负数：%g", g.Margin)
	}
	content := g.Content()
	if content.Width <= 0 || content.Height <= 0 {
		return fmt.Errorf("页面 %gx%g 扣除边距 %g 后没有可用区域", g.Width, g.Height, g.Margin)
	}
	return nil
}

// Geometry 返回整页尺寸与边距。
func (p *Paginator) Geometry() Geometry { return p.geometry }

// PageSize 返回内容区域尺寸。
func (p *Paginator) PageSize() Size { return p.geometry.Content() }

// SetPageSize 更换整页尺寸并重新分页，边距保持不变。
func (p *Paginator) SetPageSize(width, height float64) error {
	g := Geometry{Width: width, Height: height, Margin: p.geometry.Margin}
	if err := validateGeometry(g); err != nil {
		return err
	}
	p.geometry = g
	p.paginate()
	return nil
}

// Repaginate 用当前几何重新分页，适用于文档注册表的基准字号或字体改变之后。
func (p *Paginator) Repaginate() { p.paginate() }

func (p *Paginator) PageCount() int { return len(p.pages) }

// IsPageCountValid 在分页完成后为 true。
func (p *Paginator) IsPageCountValid() bool { return p.validated }

// Height 返回最近一次分页的总排版高度（内容坐标）。
func (p *Paginator) Height() float64 {
	if p.table == nil {
		return 0
	}
	return p.table.Bottom()
}

// Registry 返回最近一次分页结束时的样式注册表。
func (p *Paginator) Registry() *style.Registry {
	if p.contents == nil {
		return nil
	}
	return p.contents.Registry()
}

// GetPage 把 n 限制到 [0, PageCount-1] 并返回该页，同时更新当前页。
// 没有任何页面时返回 MissingPage，当前页不变。
func (p *Paginator) GetPage(n int) *Page {
	if len(p.pages) == 0 {
		return MissingPage
	}
	p.current = min(max(n, 0), len(p.pages)-1)
	return p.pages[p.current]
}

func (p *Paginator) CurrentPageNumber() int { return p.current }

func (p *Paginator) CurrentPage() *Page {
	if len(p.pages) == 0 {
		return MissingPage
	}
	return p.pages[p.current]
}

func (p *Paginator) IsFirstPage() bool { return p.current == 0 }
func (p *Paginator) IsLastPage() bool  { return p.current == len(p.pages)-1 }

func (p *Paginator) NextPage() *Page { return p.GetPage(p.current + 1) }
func (p *Paginator) PrevPage() *Page { return p.GetPage(p.current - 1) }

// Pages 返回全部页面。
func (p *Paginator) Pages() []*Page { return p.pages }

// Result 打包最近一次分页的结果。
func (p *Paginator) Result() *Result {
	return &Result{
		Name:     p.doc.Name,
		Geometry: p.geometry,
		Height:   p.Height(),
		Pages:    p.pages,
	}
}

func (p *Paginator) paginate() {
	p.pages = nil
	p.current = 0
	p.validated = false
	p.contents = p.doc.Contents()
	p.table = NewTable(p.geometry.Content(), p.geometry.Margin, p.opts.Measurer, p.contents.Registry().Marker())

	for line := range p.contents.All() {
		handled, quit := p.commandHandled(line)
		if quit {
			break
		}
		if handled {
			continue
		}
		if p.opts.Data != nil {
			line = binding.Interpolate(line, p.opts.Data)
		}
		for cell := range p.table.PrepareCells(line, p.contents.Current()) {
			page := p.pageToDraw(cell.PageNumber)
			page.Cells = append(page.Cells, cell)
			if p.opts.OnCell != nil {
				p.opts.OnCell(cell)
			}
		}
	}

	for _, page := range p.pages {
		page.Closed = true
	}
	p.validated = true
	p.GetPage(0)
	p.log.Debug("分页完成",
		zap.String("document", p.doc.Name),
		zap.Int("pages", len(p.pages)),
		zap.Float64("height", p.table.Bottom()))
}

// pageToDraw 按需补齐页面，直到页码 n 存在。
func (p *Paginator) pageToDraw(n int) *Page {
	for len(p.pages) <= n {
		p.pages = append(p.pages, &Page{
			Number: len(p.pages),
			Width:  p.geometry.Width,
			Height: p.geometry.Height,
			Margin: p.geometry.Margin,
		})
	}
	p.current = n
	return p.pages[n]
}

// commandHandled 处理版面指令。凡是以 '.' 开头的行都视为指令，未知指令记录日志后忽略。
// quit 为 true 表示遇到 .quit，后续各行不再排版。
func (p *Paginator) commandHandled(line string) (handled, quit bool) {
	if !dsl.IsDirective(line) {
		return false, false
	}
	dir, ok := dsl.ParseDirective(line)
	if !ok {
		p.log.Debug("忽略无法解析的指令", zap.String("line", line))
		return true, false
	}
	if !dsl.IsLayoutCommand(dir.Command) {
		p.log.Debug("忽略未知指令", zap.String("command", dir.Command), zap.Strings("args", dir.Args))
		return true, false
	}
	switch dir.Command {
	case dsl.CmdQuit:
		return true, true
	case dsl.CmdHR:
		p.horizontalRule()
	case dsl.CmdColumns:
		p.columns(dir)
	case dsl.CmdColumn:
		p.column(dir)
	}
	return true, false
}

func (p *Paginator) columns(dir *dsl.Directive) {
	if len(dir.Args) != 1 {
		return
	}
	n, err := strconv.Atoi(dir.Args[0])
	if err != nil || n < 1 {
		p.log.Debug("忽略无效的栏数", zap.String("value", dir.Args[0]))
		return
	}
	p.table.ResetColumns(n)
	_, h := p.opts.Measurer.Measure("X", p.contents.Current())
	p.table.SetRowHeight(h)
}

func (p *Paginator) column(dir *dsl.Directive) {
	if len(dir.Args) == 0 {
		return
	}
	col, err := strconv.Atoi(dir.Args[0])
	if err != nil {
		p.log.Debug("忽略无效的栏号", zap.String("value", dir.Args[0]))
		return
	}
	span := 1
	if len(dir.Args) == 2 {
		if v, err := strconv.Atoi(dir.Args[1]); err == nil {
			span = v
		}
	}
	p.table.SetColumnVertical(col)
	p.table.SetSpan(span)
}

// horizontalRule 在当前排版底部记录一条横跨内容区域的水平线。
func (p *Paginator) horizontalRule() {
	if !p.opts.Rules {
		return
	}
	page, offset := p.table.locate(p.table.Bottom())
	y := p.geometry.Margin + offset
	target := p.pageToDraw(page)
	target.Rules = append(target.Rules, Rule{
		From:       Point{X: p.geometry.Margin, Y: y},
		To:         Point{X: p.geometry.Margin + p.table.Width(), Y: y},
		PageNumber: page,
		Pen:        p.contents.Current().Pen,
	})
}
