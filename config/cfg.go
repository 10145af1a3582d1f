// Package config 读取程序配置：页面、字体、渲染与日志。
package config

import (
	"bytes"
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/rupor-github/gencfg"
	"go.uber.org/multierr"
	yaml "gopkg.in/yaml.v3"

	"github.com/ByLCY/reportgrid/layout"
	canvasrenderer "github.com/ByLCY/reportgrid/renderer/canvas"
	"github.com/ByLCY/reportgrid/style"
)

// PageConfig 描述纸张。Size 为预设名称；Width 与 Height 同时给出时优先使用。
type PageConfig struct {
	Size      string        `yaml:"size,omitempty" validate:"omitempty,oneof=A3 A4 A5 LETTER LEGAL a3 a4 a5 letter legal"`
	Width     layout.Length `yaml:"width,omitempty"`
	Height    layout.Length `yaml:"height,omitempty"`
	Landscape bool          `yaml:"landscape"`
	Margin    layout.Length `yaml:"margin"`
}

// FontConfig 描述默认字体族、基准字号与行内样式前缀。
type FontConfig struct {
	Family   string                               `yaml:"family" validate:"required"`
	BaseSize float64                              `yaml:"base_size" validate:"gt=0"`
	Marker   string                               `yaml:"marker" validate:"required"`
	Custom   map[string]canvasrenderer.FontSource `yaml:"custom,omitempty" validate:"omitempty,dive"`
}

// RenderConfig 控制 PDF 输出。
type RenderConfig struct {
	Rules   bool   `yaml:"rules"`
	Author  string `yaml:"author,omitempty"`
	Creator string `yaml:"creator,omitempty"`
}

type Config struct {
	Page    PageConfig    `yaml:"page"`
	Font    FontConfig    `yaml:"font"`
	Render  RenderConfig  `yaml:"render"`
	Logging LoggingConfig `yaml:"logging"`
}

// Default 返回内置默认配置：A4 纵向，页边距 0.75in，sans 14pt。
func Default() *Config {
	return &Config{
		Page: PageConfig{
			Size:   "A4",
			Margin: layout.Length{Value: 0.75, Unit: layout.UnitIN},
		},
		Font: FontConfig{
			Family:   style.DefaultTypeface,
			BaseSize: style.DefaultFontSize,
			Marker:   string(style.DefaultMarker),
		},
		Render: RenderConfig{
			Creator: "reportgrid",
		},
		Logging: LoggingConfig{
			ConsoleLogger: LoggerConfig{Level: "normal"},
		},
	}
}

func unmarshalConfig(data []byte, cfg *Config) (*Config, error) {
	// 只接受已定义的字段，所以不直接使用 yaml.Unmarshal
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}
	return cfg, nil
}

// LoadConfiguration 在默认配置之上叠加 path 指向的 YAML 文件并校验结果；path 为空时只返回默认配置。
func LoadConfiguration(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}
	return Parse(data, cfg)
}

// Parse 把 YAML 数据叠加到 base 上并校验。base 为 nil 时使用默认配置。
func Parse(data []byte, base *Config) (*Config, error) {
	if base == nil {
		base = Default()
	}
	cfg, err := unmarshalConfig(data, base)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 执行字段校验以及几何上的一致性检查，所有问题合并后一起返回。
func (c *Config) Validate() error {
	var errs error
	if err := gencfg.Validate(c); err != nil {
		errs = multierr.Append(errs, err)
	}
	if utf8.RuneCountInString(c.Font.Marker) != 1 {
		errs = multierr.Append(errs, fmt.Errorf("行内样式前缀必须是单个字符：%q", c.Font.Marker))
	}
	if _, err := c.Geometry(); err != nil {
		errs = multierr.Append(errs, err)
	}
	return errs
}

// Geometry 计算页面几何（mm）。
func (c *Config) Geometry() (layout.Geometry, error) {
	p := c.Page
	var size layout.Size
	switch {
	case !p.Width.IsZero() && !p.Height.IsZero():
		size = layout.Size{Width: p.Width.ToMM(), Height: p.Height.ToMM()}
	case p.Width.IsZero() != p.Height.IsZero():
		return layout.Geometry{}, fmt.Errorf("页面宽度与高度必须同时给出")
	default:
		var ok bool
		if size, ok = layout.PaperSize(p.Size); !ok {
			return layout.Geometry{}, fmt.Errorf("未知的纸张尺寸 %q", p.Size)
		}
	}
	if p.Landscape {
		size.Width, size.Height = size.Height, size.Width
	}
	g := layout.Geometry{Width: size.Width, Height: size.Height, Margin: p.Margin.ToMM()}
	if c := g.Content(); g.Margin < 0 || c.Width <= 0 || c.Height <= 0 {
		return layout.Geometry{}, fmt.Errorf("页面 %gx%gmm 扣除边距 %gmm 后没有可用区域", g.Width, g.Height, g.Margin)
	}
	return g, nil
}

// StyleConfig 返回新建样式注册表所需的配置。
func (c *Config) StyleConfig() style.Config {
	marker, _ := utf8.DecodeRuneInString(c.Font.Marker)
	return style.Config{
		Typeface:     c.Font.Family,
		BaseFontSize: c.Font.BaseSize,
		Marker:       marker,
	}
}

// RendererOptions 返回 PDF 渲染器的配置。
func (c *Config) RendererOptions() canvasrenderer.Options {
	return canvasrenderer.Options{
		Fonts:   c.Font.Custom,
		Author:  c.Render.Author,
		Creator: c.Render.Creator,
	}
}

// Dump 把配置重新编码为 YAML。
func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("配置编码为 YAML 失败: %w", err)
	}
	return data, nil
}
