package layout

import (
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/ByLCY/reportgrid/style"
)

// Options 配置分页阶段所需的依赖，例如字体度量后端。
type Options struct {
	Measurer Measurer
	Logger   *zap.Logger
	Rules    bool       // 为 .hr 记录水平线；关闭时 .hr 不产生任何输出
	Data     any        // 非空时在排版前对正文行做 ${path} 插值
	OnCell   func(Cell) // 每产出一个单元格时回调，顺序与排版顺序一致
}

func (o Options) withDefaults() Options {
	if o.Measurer == nil {
		o.Measurer = EstimateMeasurer{}
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

// Measurer 返回一段单行文本在给定样式下的宽高（mm）。
type Measurer interface {
	Measure(text string, attrs *style.Attributes) (width, height float64)
}

// MeasureFunc 让普通函数满足 Measurer。
type MeasureFunc func(text string, attrs *style.Attributes) (float64, float64)

func (f MeasureFunc) Measure(text string, attrs *style.Attributes) (float64, float64) {
	return f(text, attrs)
}

// EstimateMeasurer 在没有字体后端时按字符数粗略估算宽度。
type EstimateMeasurer struct {
	LineHeight LineHeightSpec
}

func (m EstimateMeasurer) Measure(text string, attrs *style.Attributes) (float64, float64) {
	size := style.DefaultFontSize
	bold := false
	if attrs != nil {
		size = attrs.FontSize
		bold = attrs.Bold
	}
	advance := 0.55
	if bold {
		advance = 0.6
	}
	fontSize := Length{Value: size, Unit: UnitPT}
	width := fontSize.ToMM() * advance * float64(utf8.RuneCountInString(text))

	lh := m.LineHeight
	if lh.Kind == LineHeightFactor && lh.Factor <= 0 {
		lh.Factor = defaultLineFactor
	}
	return width, lh.Resolve(fontSize, UnitMM)
}
