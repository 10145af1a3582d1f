package dsl

import (
	"iter"

	"go.uber.org/zap"

	"github.com/ByLCY/reportgrid/style"
)

// Contents 是正文行的一次性序列。
//
// 遍历过程中会执行样式指令并修改自己持有的注册表，所以同一个 Contents 只能从头到尾消费一次；
// 第二次调用 All 不会产生任何行。需要重新分页时应通过 Document.Contents 重新获取。
type Contents struct {
	lines    []string
	registry *style.Registry
	log      *zap.Logger
	consumed bool
}

// Registry 返回本次遍历使用的注册表，Current() 即下一行内容应使用的样式。
func (c *Contents) Registry() *style.Registry { return c.registry }

// Current 是 Registry().Current() 的简写。
func (c *Contents) Current() *style.Attributes { return c.registry.Current() }

// Consumed 表示序列是否已经被遍历过。
func (c *Contents) Consumed() bool { return c.consumed }

// All 产出正文行：普通行原样输出；".style <名称>" 与样式指令在执行后被吞掉；
// 其他指令（包括 .columns/.column/.hr/.quit）原样交给下游。
func (c *Contents) All() iter.Seq[string] {
	return func(yield func(string) bool) {
		if c.consumed {
			return
		}
		c.consumed = true
		for _, line := range c.lines {
			if dir, ok := ParseDirective(line); ok && c.apply(dir) {
				continue
			}
			if !yield(line) {
				return
			}
		}
	}
}

func (c *Contents) apply(dir *Directive) bool {
	if dir.Command == CmdStyle {
		if len(dir.Args) != 1 {
			return false
		}
		c.registry.SetStyle(dir.Args[0])
		c.log.Debug("切换样式", zap.String("style", dir.Args[0]))
		return true
	}
	return ApplyStyleDirective(dir, c.registry.Current(), c.registry.BaseFontSize())
}
