package layout

import (
	"fmt"
	"strconv"
	"strings"
)

// 长度单位与换算。内部统一使用毫米，字号使用 pt。

type Unit int

const (
	UnitNone Unit = iota // 无单位，按毫米处理
	UnitMM
	UnitCM
	UnitIN
	UnitPT
)

const (
	PtToMm = 0.352777
	MmToPt = 1.0 / PtToMm
	InToMm = 25.4
)

const defaultLineFactor = 1.2

func (u Unit) String() string {
	switch u {
	case UnitMM:
		return "mm"
	case UnitCM:
		return "cm"
	case UnitIN:
		return "in"
	case UnitPT:
		return "pt"
	}
	return ""
}

// Length 保留原始数值与单位。
type Length struct {
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit"`
}

func (l Length) IsZero() bool { return l.Value == 0 }

// ToMM 换算为毫米；无单位的数值视为毫米。
func (l Length) ToMM() float64 {
	switch l.Unit {
	case UnitCM:
		return l.Value * 10
	case UnitIN:
		return l.Value * InToMm
	case UnitPT:
		return l.Value * PtToMm
	}
	return l.Value
}

// ToPT 换算为 pt。
func (l Length) ToPT() float64 {
	if l.Unit == UnitPT {
		return l.Value
	}
	return l.ToMM() * MmToPt
}

// To 换算为目标单位，目前支持 mm 与 pt。
func (l Length) To(target Unit) float64 {
	if target == UnitPT {
		return l.ToPT()
	}
	return l.ToMM()
}

func (l Length) String() string {
	return strconv.FormatFloat(l.Value, 'f', -1, 64) + l.Unit.String()
}

// MarshalText 让长度在 YAML/JSON 中以 "0.75in" 的形式出现。
func (l Length) MarshalText() ([]byte, error) { return []byte(l.String()), nil }

// UnmarshalText 解析 "18mm"、"0.75in"、"12pt" 等写法。
func (l *Length) UnmarshalText(text []byte) error {
	parsed, err := ParseLength(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

var unitSuffixes = []struct {
	suffix string
	unit   Unit
}{{"mm", UnitMM}, {"cm", UnitCM}, {"in", UnitIN}, {"pt", UnitPT}}

// ParseLength 解析带单位的长度字符串，单位大小写不敏感。
func ParseLength(value string) (Length, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return Length{}, fmt.Errorf("长度为空")
	}
	unit := UnitNone
	for _, s := range unitSuffixes {
		if strings.HasSuffix(v, s.suffix) {
			unit = s.unit
			v = strings.TrimSpace(strings.TrimSuffix(v, s.suffix))
			break
		}
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return Length{}, fmt.Errorf("无法解析长度 %q: %w", value, err)
	}
	return Length{Value: f, Unit: unit}, nil
}

// LineHeightKind 区分倍数行高与绝对行高。
type LineHeightKind int

const (
	LineHeightFactor LineHeightKind = iota
	LineHeightAbsolute
)

// LineHeightSpec 描述行高：字号的倍数（如 1.2）或绝对长度（如 18pt）。
type LineHeightSpec struct {
	Kind   LineHeightKind `json:"kind"`
	Factor float64        `json:"factor,omitempty"`
	Len    Length         `json:"len,omitempty"`
}

// Resolve 按给定字号计算目标单位下的行高。
func (s LineHeightSpec) Resolve(fontSize Length, target Unit) float64 {
	if s.Kind == LineHeightAbsolute {
		return s.Len.To(target)
	}
	factor := s.Factor
	if factor <= 0 {
		factor = defaultLineFactor
	}
	return fontSize.To(target) * factor
}

var paperSizes = map[string]Size{
	"A3":     {Width: 297, Height: 420},
	"A4":     {Width: 210, Height: 297},
	"A5":     {Width: 148, Height: 210},
	"LETTER": {Width: 215.9, Height: 279.4},
	"LEGAL":  {Width: 215.9, Height: 355.6},
}

// PaperSize 返回常用纸张的纵向尺寸（mm），名称大小写不敏感。
func PaperSize(name string) (Size, bool) {
	s, ok := paperSizes[strings.ToUpper(strings.TrimSpace(name))]
	return s, ok
}
