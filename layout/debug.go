package layout

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// debugPage 在调试输出中附带每页的绘制指令。
type debugPage struct {
	*Page
	Ops []Op `json:"ops,omitempty"`
}

type debugResult struct {
	*Result
	Pages []debugPage `json:"pages"`
}

// EncodeDebugJSON 把分页结果（可选附带绘制指令）以缩进 JSON 写入 w。
func EncodeDebugJSON(w io.Writer, res *Result, withOps bool) error {
	if res == nil {
		return nil
	}
	out := debugResult{Result: res, Pages: make([]debugPage, len(res.Pages))}
	for i, p := range res.Pages {
		out.Pages[i] = debugPage{Page: p}
		if withOps {
			out.Pages[i].Ops = p.Instructions()
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("编码调试 JSON 失败: %w", err)
	}
	return nil
}

// WriteDebugJSON 将分页结果输出为 JSON 文件，便于调试或可视化。
func WriteDebugJSON(res *Result, path string, withOps bool) error {
	if res == nil {
		return nil
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := EncodeDebugJSON(f, res, withOps); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
