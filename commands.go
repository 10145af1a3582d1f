package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/gosimple/slug"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/ByLCY/reportgrid/binding"
	"github.com/ByLCY/reportgrid/dsl"
	"github.com/ByLCY/reportgrid/layout"
	canvasrenderer "github.com/ByLCY/reportgrid/renderer/canvas"
	"github.com/ByLCY/reportgrid/source"
)

// job 描述一次排版所需的全部输入。
type job struct {
	env      *appEnv
	geometry layout.Geometry
	data     any
	measurer layout.Measurer
}

func newJob(env *appEnv, cmd *cli.Command, measurer layout.Measurer) (*job, error) {
	geometry, err := env.cfg.Geometry()
	if err != nil {
		return nil, err
	}
	j := &job{env: env, geometry: geometry, measurer: measurer}
	if path := cmd.String("data"); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("无法打开数据文件 %s: %w", path, err)
		}
		defer f.Close()
		if j.data, err = binding.Decode(f); err != nil {
			return nil, err
		}
	}
	return j, nil
}

func (j *job) paginate(doc *dsl.Document) (*layout.Result, error) {
	p, err := layout.NewPaginator(doc, j.geometry, layout.Options{
		Measurer: j.measurer,
		Logger:   j.env.log,
		Rules:    j.env.cfg.Render.Rules,
		Data:     j.data,
	})
	if err != nil {
		return nil, fmt.Errorf("分页失败: %w", err)
	}
	return p.Result(), nil
}

func openSource(ctx context.Context, env *appEnv, cmd *cli.Command) (*source.Source, error) {
	location := cmd.Args().Get(0)
	if location == "" {
		return nil, fmt.Errorf("未指定文档来源")
	}
	s := source.Open(location, source.Options{Styles: env.cfg.StyleConfig(), Logger: env.log})
	if ref := cmd.String("document"); ref != "" {
		s.SetCurrent(ctx, ref)
	}
	return s, nil
}

func runRender(ctx context.Context, cmd *cli.Command) error {
	env := envFromContext(ctx)
	opts := env.cfg.RendererOptions()
	opts.Logger = env.log
	r, err := canvasrenderer.NewRenderer(opts)
	if err != nil {
		return err
	}
	j, err := newJob(env, cmd, r)
	if err != nil {
		return err
	}
	s, err := openSource(ctx, env, cmd)
	if err != nil {
		return err
	}
	dest := cmd.Args().Get(1)

	if !cmd.Bool("all") {
		doc := s.Current(ctx)
		out := dest
		if out == "" {
			out = outputName(doc, s.CurrentRef())
		}
		return j.render(doc, r, out, cmd.String("layout-json"))
	}

	// 逐个渲染列表中的文档，单个失败不影响其余文档。
	var errs error
	for _, ref := range s.Documents() {
		if err := ctx.Err(); err != nil {
			return multierr.Append(errs, err)
		}
		doc := s.SetCurrent(ctx, ref)
		out := filepath.Join(dest, outputName(doc, ref))
		if err := j.render(doc, r, out, ""); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", ref, err))
		}
	}
	return errs
}

func (j *job) render(doc *dsl.Document, r *canvasrenderer.Renderer, out, layoutPath string) error {
	res, err := j.paginate(doc)
	if err != nil {
		return err
	}
	if layoutPath != "" {
		if err := layout.WriteDebugJSON(res, layoutPath, true); err != nil {
			return fmt.Errorf("写入分页 JSON 失败: %w", err)
		}
	}
	pdf, err := r.Render(res)
	if err != nil {
		return fmt.Errorf("渲染 PDF 失败: %w", err)
	}
	if dir := filepath.Dir(out); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("创建输出目录失败: %w", err)
		}
	}
	if err := os.WriteFile(out, pdf, 0o644); err != nil {
		return fmt.Errorf("写入 PDF 失败: %w", err)
	}
	j.env.log.Info("已生成 PDF", zap.String("document", res.Name), zap.Int("pages", len(res.Pages)), zap.String("file", out))
	return nil
}

func runLayout(ctx context.Context, cmd *cli.Command) error {
	env := envFromContext(ctx)
	var measurer layout.Measurer = layout.EstimateMeasurer{}
	if !cmd.Bool("estimate") {
		opts := env.cfg.RendererOptions()
		opts.Logger = env.log
		r, err := canvasrenderer.NewRenderer(opts)
		if err != nil {
			return err
		}
		measurer = r
	}
	j, err := newJob(env, cmd, measurer)
	if err != nil {
		return err
	}
	s, err := openSource(ctx, env, cmd)
	if err != nil {
		return err
	}
	res, err := j.paginate(s.Current(ctx))
	if err != nil {
		return err
	}

	out := cmd.Args().Get(1)
	if out == "" {
		return layout.EncodeDebugJSON(os.Stdout, res, cmd.Bool("ops"))
	}
	return writeFile(out, func(f *os.File) error {
		return layout.EncodeDebugJSON(f, res, cmd.Bool("ops"))
	})
}

func runList(ctx context.Context, cmd *cli.Command) error {
	env := envFromContext(ctx)
	s, err := openSource(ctx, env, cmd)
	if err != nil {
		return err
	}
	if s.Count() == 0 {
		env.log.Warn("来源中没有文档", zap.String("source", cmd.Args().Get(0)))
		return nil
	}
	for _, ref := range s.Documents() {
		if _, err := fmt.Fprintln(os.Stdout, ref); err != nil {
			return err
		}
	}
	return nil
}

// writeFile 创建文件并调用 fn 写入，写入错误与关闭错误一并返回。
func writeFile(name string, fn func(*os.File) error) (err error) {
	f, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("无法创建文件 %s: %w", name, err)
	}
	defer func() {
		err = multierr.Append(err, f.Close())
	}()
	return fn(f)
}

// outputName 由文档标题生成 PDF 文件名；没有标题时使用文档引用的文件名。
func outputName(doc *dsl.Document, ref string) string {
	base := ""
	if doc != nil && doc.Name != dsl.DefaultName {
		base = slug.Make(doc.Name)
	}
	if base == "" && ref != "" {
		base = slug.Make(strings.TrimSuffix(filepath.Base(ref), filepath.Ext(ref)))
	}
	if base == "" {
		base = appName
	}
	return base + ".pdf"
}

// isIgnorableSyncError 过滤终端上刷新 stdout/stderr 时的无害错误。
func isIgnorableSyncError(err error) bool {
	return errors.Is(err, syscall.EINVAL) || errors.Is(err, syscall.ENOTTY) || errors.Is(err, syscall.EBADF)
}
