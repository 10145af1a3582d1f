package style

import "strings"

// 该文件定义单元格的视觉属性快照（对齐、边框、底纹、字号等），供解析、布局与渲染共用。
// 几何尺寸（Margin、Pen.Width）以毫米为单位，字号以 pt 为单位。

const (
	DefaultFontSize = 14.0
	DefaultTypeface = "sans"
	DefaultMargin   = 1.3  // 右对齐时距单元格右边的留白（mm）
	DefaultPenWidth = 0.25 // 边框与下划线线宽（mm）
)

// Alignment 表示单元格内文本的水平对齐方式。
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignRight
	AlignCenter
)

func (a Alignment) String() string {
	switch a {
	case AlignRight:
		return "right"
	case AlignCenter:
		return "center"
	default:
		return "left"
	}
}

// MarshalText 让调试 JSON 中输出可读的对齐名称。
func (a Alignment) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

// Borders 是四条边框的位集合：Left=1, Right=2, Top=4, Bottom=8。
type Borders uint8

const (
	BorderNone   Borders = 0
	BorderLeft   Borders = 1
	BorderRight  Borders = 2
	BorderTop    Borders = 4
	BorderBottom Borders = 8

	BorderVertical    = BorderLeft | BorderRight
	BorderHorizontal  = BorderTop | BorderBottom
	BorderTopLeft     = BorderTop | BorderLeft
	BorderTopRight    = BorderTop | BorderRight
	BorderBottomLeft  = BorderBottom | BorderLeft
	BorderBottomRight = BorderBottom | BorderRight
	BorderAll         = BorderHorizontal | BorderVertical
)

// borderSelectors 的下标即边框位掩码：'3' = Vertical, 'C' = Horizontal, 'F' = All。
const borderSelectors = "0123456789ABCDEF"

// Has 判断是否包含给定的边。
func (b Borders) Has(side Borders) bool { return b&side != 0 }

// Selector 返回该位掩码对应的十六进制选择符。
func (b Borders) Selector() byte { return borderSelectors[b&BorderAll] }

// ParseBorderSelector 将 0-9A-F（大小写均可）映射为边框位掩码。
func ParseBorderSelector(ch rune) (Borders, bool) {
	if ch > 0x7f {
		return BorderNone, false
	}
	idx := strings.IndexByte(borderSelectors, byte(strings.ToUpper(string(ch))[0]))
	if idx < 0 {
		return BorderNone, false
	}
	return Borders(idx), true
}

// ParseBorderName 解析 borders 指令的参数。
func ParseBorderName(name string) (Borders, bool) {
	switch strings.ToLower(name) {
	case "left":
		return BorderLeft, true
	case "top":
		return BorderTop, true
	case "right":
		return BorderRight, true
	case "bottom":
		return BorderBottom, true
	case "all":
		return BorderAll, true
	case "horizontal":
		return BorderHorizontal, true
	case "vertical":
		return BorderVertical, true
	case "none":
		return BorderNone, true
	}
	return BorderNone, false
}

// Color 采用 0-255 的 RGB 数值。
type Color struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

var (
	Black     = Color{R: 0, G: 0, B: 0}
	White     = Color{R: 255, G: 255, B: 255}
	LightGray = Color{R: 211, G: 211, B: 211}
	LightPink = Color{R: 255, G: 182, B: 193}
)

// Pen 描述边框/下划线的描边。
type Pen struct {
	Color Color   `json:"color"`
	Width float64 `json:"width"`
}

// Typeface 是字体族加粗细的组合，粗体变体在访问时按需推导。
type Typeface struct {
	Family string `json:"family"`
	Bold   bool   `json:"bold"`
}

// Attributes 是一份单元格样式快照。它是纯值类型：赋值即深拷贝，
// 行内样式覆盖只作用于副本，不会影响环境中的命名样式。
type Attributes struct {
	Alignment        Alignment `json:"alignment"`
	Borders          Borders   `json:"borders"`
	BorderAllRounded bool      `json:"borderAllRounded,omitempty"`
	Shaded           bool      `json:"shaded,omitempty"`
	HighlightColor   Color     `json:"highlightColor"`
	BackgroundColor  Color     `json:"backgroundColor"`
	Pen              Pen       `json:"pen"`
	Underline        bool      `json:"underline,omitempty"`
	Bold             bool      `json:"bold,omitempty"`
	FontSize         float64   `json:"fontSize"`
	FontScale        float64   `json:"fontScale"`
	IsScaledFontSize bool      `json:"isScaledFontSize,omitempty"`
	Margin           float64   `json:"margin"`
	TypefaceFamily   string    `json:"typeface"`
}

// NewAttributes 返回以给定字体族与字号为基础的默认样式。
func NewAttributes(family string, fontSize float64) *Attributes {
	if family == "" {
		family = DefaultTypeface
	}
	if fontSize <= 0 {
		fontSize = DefaultFontSize
	}
	return &Attributes{
		Alignment:       AlignLeft,
		HighlightColor:  LightGray,
		BackgroundColor: White,
		Pen:             Pen{Color: Black, Width: DefaultPenWidth},
		FontSize:        fontSize,
		FontScale:       1,
		Margin:          DefaultMargin,
		TypefaceFamily:  family,
	}
}

// Clone 返回独立副本。
func (a *Attributes) Clone() *Attributes {
	c := *a
	return &c
}

// Typeface 返回当前粗细下应使用的字体。
func (a *Attributes) Typeface() Typeface {
	return Typeface{Family: a.TypefaceFamily, Bold: a.Bold}
}

// SetFontSize 设置绝对字号并关闭按基准字号缩放。
func (a *Attributes) SetFontSize(size float64) {
	a.FontScale = 1
	a.FontSize = size
	a.IsScaledFontSize = false
}

// SetFontScale 令字号跟随基准字号缩放。
func (a *Attributes) SetFontScale(scale, base float64) {
	a.FontSize = base * scale
	a.FontScale = scale
	a.IsScaledFontSize = true
}

// InlineString 将可用行内代码表达的属性编码回行内样式前缀。
func (a *Attributes) InlineString(marker rune) string {
	if marker == 0 {
		marker = DefaultMarker
	}
	var sb strings.Builder
	sb.WriteRune(marker)
	if a.Underline {
		sb.WriteByte(codeUnderline)
	}
	if a.Bold {
		sb.WriteByte(codeBold)
	}
	if a.BorderAllRounded {
		sb.WriteByte(codeRounded)
	}
	switch a.Alignment {
	case AlignLeft:
		sb.WriteByte(codeLeft)
	case AlignRight:
		sb.WriteByte(codeRight)
	case AlignCenter:
		sb.WriteByte(codeCenter)
	}
	if a.Shaded {
		sb.WriteByte(codeShaded)
	}
	if a.Borders != BorderNone {
		sb.WriteByte(codeBorder)
		sb.WriteByte(a.Borders.Selector())
	}
	return sb.String()
}
