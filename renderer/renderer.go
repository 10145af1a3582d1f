// Package renderer 定义把分页结果输出为最终文件的后端接口。
package renderer

import "github.com/ByLCY/reportgrid/layout"

// Renderer 将分页结果输出为最终文件，例如 PDF。
// 后端只需按顺序执行 layout.Page.Instructions 给出的绘制指令。
type Renderer interface {
	Render(result *layout.Result) ([]byte, error)
}

// MeasuringRenderer 同时提供与渲染一致的文本度量，分页与绘制使用同一套字体时应优先使用它。
type MeasuringRenderer interface {
	Renderer
	layout.Measurer
}
