package canvasrenderer

import (
	"bytes"
	"fmt"
	"image/color"
	"os"
	"strings"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"
	"go.uber.org/zap"

	"github.com/ByLCY/reportgrid/fonts"
	"github.com/ByLCY/reportgrid/layout"
	"github.com/ByLCY/reportgrid/renderer"
	"github.com/ByLCY/reportgrid/style"
)

// Renderer draws pagination results via github.com/tdewolff/canvas and
// measures text with the same font faces it renders with.
type Renderer struct {
	opts Options
	log  *zap.Logger

	// 用户提供的字体文件，按规范化的字体族名索引
	custom map[string]fontFiles

	fontMu   sync.Mutex
	families map[string]*canvas.FontFamily
	faces    map[faceKey]*canvas.FontFace
}

var (
	_ renderer.MeasuringRenderer = (*Renderer)(nil)
	_ layout.Measurer            = (*Renderer)(nil)
)

// Options configures the canvas renderer.
type Options struct {
	Fonts   map[string]FontSource // 额外字体族，覆盖同名内置字体
	Author  string
	Creator string
	Logger  *zap.Logger
}

// FontSource 指定一个字体族的常规与粗体文件；Bold 为空时粗体复用常规字体。
type FontSource struct {
	Regular string `yaml:"regular"`
	Bold    string `yaml:"bold"`
}

type fontFiles struct {
	regular []byte
	bold    []byte
}

type faceKey struct {
	family string
	bold   bool
	size   float64
}

var (
	textColor   = canvas.Black
	transparent = color.RGBA{0, 0, 0, 0}
)

// NewRenderer 读取 Options.Fonts 中的字体文件；任何文件不可读都会返回错误。
func NewRenderer(opts Options) (*Renderer, error) {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	r := &Renderer{
		opts:     opts,
		log:      opts.Logger,
		custom:   map[string]fontFiles{},
		families: map[string]*canvas.FontFamily{},
		faces:    map[faceKey]*canvas.FontFace{},
	}
	for name, src := range opts.Fonts {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" || src.Regular == "" {
			return nil, fmt.Errorf("字体 %q 缺少常规字体文件", name)
		}
		regular, err := os.ReadFile(src.Regular)
		if err != nil {
			return nil, fmt.Errorf("读取字体 %s 失败: %w", src.Regular, err)
		}
		files := fontFiles{regular: regular, bold: regular}
		if src.Bold != "" {
			if files.bold, err = os.ReadFile(src.Bold); err != nil {
				return nil, fmt.Errorf("读取字体 %s 失败: %w", src.Bold, err)
			}
		}
		r.custom[key] = files
	}
	return r, nil
}

// Render renders the result into a PDF byte slice.
func (r *Renderer) Render(result *layout.Result) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("渲染结果为空")
	}
	if len(result.Pages) == 0 {
		return nil, fmt.Errorf("缺少可渲染的页面")
	}

	var buf bytes.Buffer
	first := result.Pages[0]
	writer := pdf.New(&buf, first.Width, first.Height, nil)
	writer.SetInfo(result.Name, "", "", r.opts.Author, r.opts.Creator)
	for i, page := range result.Pages {
		if i > 0 {
			writer.NewPage(page.Width, page.Height)
		}
		c := canvas.New(page.Width, page.Height)
		ctx := canvas.NewContext(c)
		ctx.SetCoordSystem(canvas.CartesianIV) // 使坐标与分页结果保持左上角为原点

		if err := r.drawPage(ctx, page); err != nil {
			return nil, fmt.Errorf("绘制第 %d 页失败: %w", page.Number+1, err)
		}
		c.RenderTo(writer)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	r.log.Debug("PDF 渲染完成", zap.String("document", result.Name), zap.Int("pages", len(result.Pages)), zap.Int("bytes", buf.Len()))
	return buf.Bytes(), nil
}

// Measure 实现 layout.Measurer：宽度为单行文本宽度，高度为字体行高（mm）。
// 字体不可用时退回到按字符估算并记录警告。
func (r *Renderer) Measure(text string, attrs *style.Attributes) (float64, float64) {
	if attrs == nil {
		attrs = style.NewAttributes("", 0)
	}
	face, err := r.fontFace(attrs.Typeface(), attrs.FontSize)
	if err != nil {
		r.log.Warn("字体不可用，改用估算宽度", zap.String("family", attrs.TypefaceFamily), zap.Error(err))
		return layout.EstimateMeasurer{}.Measure(text, attrs)
	}
	return face.TextWidth(text), face.Metrics().LineHeight
}

func (r *Renderer) drawPage(ctx *canvas.Context, page *layout.Page) error {
	for _, op := range page.Instructions() {
		switch op.Kind {
		case layout.OpRect:
			r.applyPaint(ctx, op)
			ctx.DrawPath(op.X, op.Y, canvas.Rectangle(op.W, op.H))
		case layout.OpRoundedRect:
			r.applyPaint(ctx, op)
			ctx.DrawPath(op.X, op.Y, canvas.RoundedRectangle(op.W, op.H, op.Radius))
		case layout.OpLine:
			r.applyPaint(ctx, op)
			p := &canvas.Path{}
			p.MoveTo(0, 0)
			p.LineTo(op.X2-op.X, op.Y2-op.Y)
			ctx.DrawPath(op.X, op.Y, p)
		case layout.OpText:
			if err := r.drawText(ctx, op); err != nil {
				return err
			}
		default:
			return fmt.Errorf("未知的绘制指令 %v", op.Kind)
		}
	}
	return nil
}

// applyPaint 设置填充与描边；缺省的一项使用透明色。
func (r *Renderer) applyPaint(ctx *canvas.Context, op layout.Op) {
	if op.Fill != nil {
		ctx.SetFillColor(colorFromStyle(*op.Fill))
	} else {
		ctx.SetFillColor(transparent)
	}
	if op.Stroke != nil && op.Stroke.Width > 0 {
		ctx.SetStrokeColor(colorFromStyle(op.Stroke.Color))
		ctx.SetStrokeWidth(op.Stroke.Width)
	} else {
		ctx.SetStrokeColor(transparent)
	}
}

func (r *Renderer) drawText(ctx *canvas.Context, op layout.Op) error {
	face, err := r.fontFace(op.Typeface, op.FontSize)
	if err != nil {
		return err
	}
	line := canvas.NewTextLine(face, op.Text, canvas.Left)
	// 基线位置：文本框顶部加上字体上升部
	ctx.DrawText(op.X, op.Y+face.Metrics().Ascent, line)
	return nil
}

// fontFace 返回缓存的字体面；sizePt 为字号（pt）。
func (r *Renderer) fontFace(tf style.Typeface, sizePt float64) (*canvas.FontFace, error) {
	name := r.familyName(tf.Family)
	key := faceKey{family: name, bold: tf.Bold, size: sizePt}

	r.fontMu.Lock()
	defer r.fontMu.Unlock()
	if face, ok := r.faces[key]; ok {
		return face, nil
	}
	family, err := r.ensureFamily(name)
	if err != nil {
		return nil, err
	}
	fontStyle := canvas.FontRegular
	if tf.Bold {
		fontStyle = canvas.FontBold
	}
	face := family.Face(sizePt, textColor, fontStyle, canvas.FontNormal)
	r.faces[key] = face
	return face, nil
}

// familyName 先匹配用户字体，再匹配内置字体，最后使用内置回退字体。
func (r *Renderer) familyName(family string) string {
	key := strings.ToLower(strings.TrimSpace(family))
	if _, ok := r.custom[key]; ok {
		return key
	}
	name, ok := fonts.Canonical(family)
	if !ok {
		r.log.Debug("未知字体族，使用回退字体", zap.String("family", family), zap.String("fallback", name))
	}
	return name
}

// ensureFamily 在持有 fontMu 时调用。
func (r *Renderer) ensureFamily(name string) (*canvas.FontFamily, error) {
	if family, ok := r.families[name]; ok {
		return family, nil
	}
	regular, bold, err := r.fontBytes(name)
	if err != nil {
		return nil, err
	}
	family := canvas.NewFontFamily(name)
	if err := family.LoadFont(regular, 0, canvas.FontRegular); err != nil {
		return nil, fmt.Errorf("加载字体 %s 失败: %w", name, err)
	}
	if err := family.LoadFont(bold, 0, canvas.FontBold); err != nil {
		return nil, fmt.Errorf("加载字体 %s（粗体）失败: %w", name, err)
	}
	r.families[name] = family
	return family, nil
}

func (r *Renderer) fontBytes(name string) ([]byte, []byte, error) {
	if files, ok := r.custom[name]; ok {
		return files.regular, files.bold, nil
	}
	regular, err := fonts.Load(name, false)
	if err != nil {
		return nil, nil, err
	}
	bold, err := fonts.Load(name, true)
	if err != nil {
		return nil, nil, err
	}
	return regular, bold, nil
}

func colorFromStyle(c style.Color) color.Color {
	return canvas.RGBA(float64(c.R)/255.0, float64(c.G)/255.0, float64(c.B)/255.0, 1.0)
}
