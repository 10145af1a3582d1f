package dsl

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// DirectivePrefix 标记一行为指令行。
const DirectivePrefix = "."

var (
	directiveLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `\s+`},
		{Name: "Word", Pattern: `\S+`},
	})

	directiveParser = participle.MustBuild[Directive](
		participle.Lexer(directiveLexer),
		participle.Elide("Whitespace"),
	)
)

// Directive 是一条去掉前导 '.' 并转为小写后的指令，例如 ".Column 2 3" -> {column [2 3]}。
type Directive struct {
	Pos     lexer.Position `parser:"" json:"-"`
	Command string         `parser:"@Word" json:"command"`
	Args    []string       `parser:"@Word*" json:"args,omitempty"`
}

// Arg 返回第 i 个参数，不存在时返回空串。
func (d *Directive) Arg(i int) string {
	if d == nil || i < 0 || i >= len(d.Args) {
		return ""
	}
	return d.Args[i]
}

// String 还原为规范化的指令行。
func (d *Directive) String() string {
	if d == nil {
		return ""
	}
	return DirectivePrefix + strings.Join(append([]string{d.Command}, d.Args...), " ")
}

// IsDirective 判断原始行是否为指令行（必须以 '.' 开头，不允许前导空白）。
func IsDirective(line string) bool {
	return strings.HasPrefix(line, DirectivePrefix)
}

// ParseDirective 解析一条指令行。命令与参数不区分大小写，以空白分隔。
// 不是指令行、'.' 后为空或紧跟空白时返回 false，调用方应把该行当作普通文本处理。
func ParseDirective(line string) (*Directive, bool) {
	if !IsDirective(line) {
		return nil, false
	}
	body := strings.TrimSpace(line)[len(DirectivePrefix):]
	first, _ := utf8.DecodeRuneInString(body)
	if body == "" || unicode.IsSpace(first) {
		return nil, false
	}
	d, err := directiveParser.ParseString("", strings.ToLower(body))
	if err != nil {
		return nil, false
	}
	return d, true
}

// parseDefinitionLine 解析 .styles 块中的一行，前导 '.' 可省略。
func parseDefinitionLine(line string) (*Directive, bool) {
	trimmed := strings.TrimSpace(line)
	if !IsDirective(trimmed) {
		trimmed = DirectivePrefix + trimmed
	}
	return ParseDirective(trimmed)
}
