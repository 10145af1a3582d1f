// Package fonts 提供内置的 Latin Modern 字体，无需依赖系统字体即可度量与渲染。
package fonts

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-fonts/latin-modern/lmmono10regular"
	"github.com/go-fonts/latin-modern/lmmonolt10bold"
	"github.com/go-fonts/latin-modern/lmroman10bold"
	"github.com/go-fonts/latin-modern/lmroman10regular"
	"github.com/go-fonts/latin-modern/lmsans10bold"
	"github.com/go-fonts/latin-modern/lmsans10regular"
)

// Fallback 是未知字体族时使用的字体族。
const Fallback = "sans"

type variants struct {
	regular []byte
	bold    []byte
}

// families 把样式中的字体族名映射到内置字体，别名与常见系统字体名一并收录。
var families = map[string]variants{
	"sans":  {lmsans10regular.TTF, lmsans10bold.TTF},
	"serif": {lmroman10regular.TTF, lmroman10bold.TTF},
	"roman": {lmroman10regular.TTF, lmroman10bold.TTF},
	"mono":  {lmmono10regular.TTF, lmmonolt10bold.TTF},
}

var aliases = map[string]string{
	"sansserif":       "sans",
	"sans-serif":      "sans",
	"helvetica":       "sans",
	"arial":           "sans",
	"times":           "serif",
	"times new roman": "serif",
	"monospace":       "mono",
	"monospaced":      "mono",
	"courier":         "mono",
	"courier new":     "mono",
}

// Canonical 返回字体族的规范名；未知名称返回 Fallback 且 ok 为 false。
func Canonical(family string) (string, bool) {
	name := strings.ToLower(strings.TrimSpace(family))
	if alias, ok := aliases[name]; ok {
		name = alias
	}
	if _, ok := families[name]; ok {
		return name, true
	}
	return Fallback, false
}

// Load 返回内置字体的字节数据，bold 选择粗体变体。
func Load(family string, bold bool) ([]byte, error) {
	name, ok := Canonical(family)
	if !ok && strings.TrimSpace(family) != "" {
		return nil, fmt.Errorf("未知的内置字体 %q，可用：%s", family, strings.Join(Families(), ", "))
	}
	v := families[name]
	if bold {
		return v.bold, nil
	}
	return v.regular, nil
}

// Families 返回全部内置字体族名（排序后）。
func Families() []string {
	names := make([]string, 0, len(families))
	for name := range families {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
