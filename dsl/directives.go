package dsl

import (
	"strconv"

	"github.com/ByLCY/reportgrid/style"
)

// 样式指令在 .styles 块与正文中共用同一张表。
const (
	CmdStyle      = "style"
	CmdStyles     = "styles"
	CmdName       = "name"
	CmdColumns    = "columns"
	CmdColumn     = "column"
	CmdHR         = "hr"
	CmdQuit       = "quit"
	CmdLeft       = "left"
	CmdRight      = "right"
	CmdCentre     = "centre"
	CmdCenter     = "center"
	CmdBrush      = "brush"
	CmdBorders    = "borders"
	CmdUnderline  = "underline"
	CmdShaded     = "shaded"
	CmdShadedOval = "shadedoval"
	CmdClear      = "clear"
	CmdFontSize   = "fontsize"
	CmdFontScale  = "fontscale"
	CmdBold       = "bold"
	CmdNormal     = "normal"
)

// IsLayoutCommand 判断命令是否只由分页器解释。
func IsLayoutCommand(cmd string) bool {
	switch cmd {
	case CmdColumns, CmdColumn, CmdHR, CmdQuit:
		return true
	}
	return false
}

// ApplyStyleDirective 在 attrs 上原地执行一条样式指令，base 为当前基准字号。
// 返回值表示命令是否属于样式指令表；参数缺失或无法解析时仍返回 true，但不做修改。
func ApplyStyleDirective(d *Directive, attrs *style.Attributes, base float64) bool {
	if d == nil || attrs == nil {
		return false
	}
	switch d.Command {
	case CmdRight:
		attrs.Alignment = style.AlignRight
	case CmdLeft:
		attrs.Alignment = style.AlignLeft
	case CmdCentre, CmdCenter:
		attrs.Alignment = style.AlignCenter
	case CmdBrush:
		attrs.HighlightColor = style.LightPink
	case CmdBorders:
		if len(d.Args) == 1 {
			if b, ok := style.ParseBorderName(d.Args[0]); ok {
				attrs.Borders = b
			}
		}
	case CmdUnderline:
		attrs.Underline = true
	case CmdShaded:
		attrs.Shaded = true
	case CmdShadedOval:
		attrs.Shaded = true
		attrs.Borders = style.BorderAll
		attrs.BorderAllRounded = true
	case CmdClear:
		attrs.Shaded = false
	case CmdFontSize:
		if size, ok := parseNumber(d.Arg(0)); ok {
			attrs.SetFontSize(size)
		}
	case CmdFontScale:
		if scale, ok := parseNumber(d.Arg(0)); ok {
			attrs.SetFontScale(scale, base)
		}
	case CmdBold:
		attrs.Bold = true
	case CmdNormal:
		attrs.Bold = false
	default:
		return false
	}
	return true
}

func parseNumber(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
