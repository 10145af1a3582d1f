package style

import "unicode/utf8"

// DefaultMarker 是行内样式前缀的起始字符。
const DefaultMarker = '$'

const (
	codeUnderline = '_'
	codeLeft      = '<'
	codeRight     = '>'
	codeCenter    = '|'
	codeBold      = '!'
	codeShaded    = '~'
	codeBorder    = '#'
	codeRounded   = 'O'
)

// ApplyInline 解析 run 开头的行内样式前缀，例如 "$!#F text"。
//
// run 不以 marker 开头时返回接收者本身与 0；否则在副本上应用可识别的代码，
// 返回副本以及被消耗的字节数。空格结束解析并被消耗，其他无法识别的字符结束解析但不消耗。
// '#' 之后等待一个 0-9A-F 选择符；在选择符出现前遇到的其他代码照常生效。
func (a *Attributes) ApplyInline(run string, marker rune) (*Attributes, int) {
	if marker == 0 {
		marker = DefaultMarker
	}
	first, _ := utf8.DecodeRuneInString(run)
	if run == "" || first != marker {
		return a, 0
	}

	out := a.Clone()
	consumed := 0
	awaitingBorder := false
	for _, ch := range run {
		size := utf8.RuneLen(ch)
		if awaitingBorder {
			if b, ok := ParseBorderSelector(ch); ok {
				out.Borders = b
				awaitingBorder = false
				consumed += size
				continue
			}
		}

		switch ch {
		case marker:
		case codeUnderline:
			out.Underline = true
		case codeLeft:
			out.Alignment = AlignLeft
		case codeRight:
			out.Alignment = AlignRight
		case codeCenter:
			out.Alignment = AlignCenter
		case codeBold:
			out.Bold = true
		case codeShaded:
			out.Shaded = true
		case codeBorder:
			awaitingBorder = true
		case codeRounded:
			out.BorderAllRounded = true
		case ' ':
			return out, consumed + 1
		default:
			return out, consumed
		}
		consumed += size
	}
	return out, consumed
}
