package layout

import "github.com/ByLCY/reportgrid/style"

// 该文件定义分页结果，供分页计算、渲染与调试 JSON 共用。
// 所有坐标与尺寸均以毫米为单位，页面坐标以左上角为原点。

// Point 是页面坐标中的一个点。
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Size 描述宽高。
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Geometry 描述整页尺寸与四周统一的页边距。
type Geometry struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Margin float64 `json:"margin"`
}

// Content 返回扣除页边距后的内容区域尺寸。
func (g Geometry) Content() Size {
	return Size{Width: g.Width - 2*g.Margin, Height: g.Height - 2*g.Margin}
}

// Cell 是一个已经定位的单元格。
//
// TopLeft 为页面坐标（已包含页边距），Y 为内容坐标系中的绝对纵坐标，
// 二者满足 TopLeft.Y == Margin + (Y - PageNumber*内容高度)。
type Cell struct {
	TopLeft    Point            `json:"topLeft"`
	Size       Size             `json:"size"`
	Y          float64          `json:"y"`
	PageNumber int              `json:"page"`
	Style      style.Attributes `json:"style"`
	Text       string           `json:"text"`
	TextWidth  float64          `json:"textWidth"`
	TextHeight float64          `json:"textHeight"`
}

// Rule 是 .hr 生成的水平线，仅在 Options.Rules 打开时记录。
type Rule struct {
	From       Point     `json:"from"`
	To         Point     `json:"to"`
	PageNumber int       `json:"page"`
	Pen        style.Pen `json:"pen"`
}

// Page 收集落在同一页上的单元格。
type Page struct {
	Number int     `json:"number"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Margin float64 `json:"margin"`
	Cells  []Cell  `json:"cells"`
	Rules  []Rule  `json:"rules,omitempty"`
	Closed bool    `json:"-"`
}

// MissingPage 在没有任何页面时由 GetPage 返回。
var MissingPage = &Page{Number: -1}

// IsMissing 判断是否为占位页。
func (p *Page) IsMissing() bool { return p == nil || p.Number < 0 }

// Result 保存一次分页的全部输出。
type Result struct {
	Name     string   `json:"name"`
	Geometry Geometry `json:"geometry"`
	Height   float64  `json:"height"` // 内容坐标系中排版的总高度
	Pages    []*Page  `json:"pages"`
}

// CellCount 返回所有页面上的单元格总数。
func (r *Result) CellCount() int {
	n := 0
	for _, p := range r.Pages {
		n += len(p.Cells)
	}
	return n
}
