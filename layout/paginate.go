package layout

import (
	"slices"

	"github.com/ByLCY/reportgrid/dsl"
	"github.com/ByLCY/reportgrid/style"
)

// Paginate 是无副作用的入口：由原始行、页面几何与样式配置得到分页结果。
// 相同输入总是得到完全相同的单元格序列。
func Paginate(lines []string, geometry Geometry, cfg style.Config, opts Options) (*Result, error) {
	opts = opts.withDefaults()
	doc := dsl.NewDocument(style.NewRegistry(cfg), opts.Logger)
	doc.Load(slices.Values(lines))
	p, err := NewPaginator(doc, geometry, opts)
	if err != nil {
		return nil, err
	}
	return p.Result(), nil
}
