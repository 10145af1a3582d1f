package dsl

import (
	"iter"
	"strings"

	"go.uber.org/zap"

	"github.com/ByLCY/reportgrid/style"
)

// DefaultName 是未出现 .name 指令时的文档标题。
const DefaultName = "<< No Name >>"

// Document 保存原始文本行与文档级样式注册表。
//
// 行在加载完成后不再改变。加载阶段分两种模式：文档模式下行被原样保存；
// 遇到 .styles 后进入样式定义模式，直到空行为止，期间的行直接作用于注册表。
type Document struct {
	Name string

	lines    []string
	registry *style.Registry
	docMode  bool
	log      *zap.Logger
}

// NewDocument 创建一个空文档；registry 为 nil 时使用默认配置。
func NewDocument(registry *style.Registry, log *zap.Logger) *Document {
	if registry == nil {
		registry = style.NewRegistry(style.Config{})
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Document{
		Name:     DefaultName,
		registry: registry,
		docMode:  true,
		log:      log,
	}
}

// Load 依次追加所有行。
func (d *Document) Load(lines iter.Seq[string]) {
	for line := range lines {
		d.AddLine(line)
	}
}

// AddLine 追加一行原始文本。
//
// ".styles" 切换到样式定义模式，".name <标题>" 设置文档标题，二者都不会保存到正文。
// 指令名不区分大小写，标题保持原样。
func (d *Document) AddLine(raw string) {
	if IsDirective(raw) {
		cmd, title, hasTitle := strings.Cut(raw, " ")
		switch strings.ToLower(cmd[len(DirectivePrefix):]) {
		case CmdStyles:
			d.docMode = false
			return
		case CmdName:
			if hasTitle {
				d.Name = title
				return
			}
		}
	}

	if d.docMode {
		d.lines = append(d.lines, raw)
		return
	}
	d.docMode = d.parseDefinition(raw)
}

// parseDefinition 处理样式定义模式下的一行，返回 true 表示空行结束了定义块。
func (d *Document) parseDefinition(line string) bool {
	if strings.TrimSpace(line) == "" {
		return true
	}
	dir, ok := parseDefinitionLine(line)
	if !ok {
		d.log.Debug("忽略无法解析的样式定义", zap.String("line", line))
		return false
	}
	switch {
	case dir.Command == CmdStyle:
		if len(dir.Args) == 1 {
			d.registry.SetStyle(dir.Args[0])
		}
	case dir.Command == CmdColumns || dir.Command == CmdColumn:
		// 版面指令交给分页器，按出现顺序保存到正文。
		d.lines = append(d.lines, dir.String())
	case !ApplyStyleDirective(dir, d.registry.Current(), d.registry.BaseFontSize()):
		d.log.Debug("忽略未知的样式定义", zap.String("command", dir.Command))
	}
	return false
}

// Registry 返回文档级注册表，.styles 块中的定义记录在这里。
func (d *Document) Registry() *style.Registry { return d.registry }

// Lines 返回正文行的副本。
func (d *Document) Lines() []string {
	out := make([]string, len(d.lines))
	copy(out, d.lines)
	return out
}

func (d *Document) IsEmpty() bool { return len(d.lines) == 0 }

// InDefinitionMode 表示当前是否仍处于 .styles 定义块中。
func (d *Document) InDefinitionMode() bool { return !d.docMode }

// Contents 返回一次性的正文序列，它持有注册表的独立副本。
// 每次调用都从加载完成时的样式状态重新开始，因此多次分页的结果一致。
func (d *Document) Contents() *Contents {
	return &Contents{
		lines:    d.lines,
		registry: d.registry.Clone(),
		log:      d.log,
	}
}
