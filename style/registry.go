package style

import "sort"

// DefaultStyleName 是保留的样式名：每次选择都会重置为新的默认样式。
const DefaultStyleName = "default"

// Config 描述新建注册表时的外部输入。
type Config struct {
	Typeface     string
	BaseFontSize float64
	Marker       rune
}

// Registry 管理命名样式与“当前样式”游标。
//
// 命名样式按指针共享：通过 SetStyle 选中后，行级指令会原地修改该命名样式，
// 再次选择同名样式时可见之前的修改。样式一旦创建不会被删除。
// Registry 不是并发安全的；每次分页应持有自己的副本（见 Clone）。
type Registry struct {
	typeface     string
	baseFontSize float64
	marker       rune
	styles       map[string]*Attributes
	current      *Attributes
}

// NewRegistry 按配置创建注册表，当前样式为一个未命名的默认样式。
func NewRegistry(cfg Config) *Registry {
	r := &Registry{
		typeface:     cfg.Typeface,
		baseFontSize: cfg.BaseFontSize,
		marker:       cfg.Marker,
		styles:       map[string]*Attributes{},
	}
	if r.typeface == "" {
		r.typeface = DefaultTypeface
	}
	if r.baseFontSize <= 0 {
		r.baseFontSize = DefaultFontSize
	}
	if r.marker == 0 {
		r.marker = DefaultMarker
	}
	r.current = r.newDefault()
	return r
}

func (r *Registry) newDefault() *Attributes {
	return NewAttributes(r.typeface, r.baseFontSize)
}

// Current 返回当前样式（可能是某个命名样式本身）。
func (r *Registry) Current() *Attributes { return r.current }

func (r *Registry) Marker() rune            { return r.marker }
func (r *Registry) BaseFontSize() float64   { return r.baseFontSize }
func (r *Registry) DefaultTypeface() string { return r.typeface }

// Lookup 按名称查找命名样式。
func (r *Registry) Lookup(name string) (*Attributes, bool) {
	s, ok := r.styles[name]
	return s, ok
}

// Names 返回已定义的样式名（排序后）。
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.styles))
	for name := range r.styles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SetStyle 选择命名样式；不存在时以默认样式新建并登记。
func (r *Registry) SetStyle(name string) {
	if name == DefaultStyleName {
		r.current = r.newDefault()
		r.styles[name] = r.current
		return
	}
	if s, ok := r.styles[name]; ok {
		r.current = s
		return
	}
	r.current = r.newDefault()
	r.styles[name] = r.current
}

// SetBaseFontSize 更新基准字号，并重新推导所有缩放字号的样式。
// 绝对字号的命名样式保持不变；尚未登记的当前样式直接跟随新基准。
func (r *Registry) SetBaseFontSize(size float64) {
	if size <= 0 {
		return
	}
	r.baseFontSize = size
	if !r.isNamed(r.current) {
		if r.current.IsScaledFontSize {
			r.current.FontSize = size * r.current.FontScale
		} else {
			r.current.FontSize = size
		}
	}
	for _, s := range r.styles {
		if s.IsScaledFontSize {
			s.FontSize = size * s.FontScale
		}
	}
}

// SetDefaultTypeface 替换默认字体族，重置当前样式并传播到所有命名样式。
func (r *Registry) SetDefaultTypeface(face string) {
	if face == "" {
		return
	}
	r.typeface = face
	r.current = r.newDefault()
	for _, s := range r.styles {
		s.TypefaceFamily = face
	}
}

// Clone 深拷贝注册表；若当前样式是命名样式，副本的游标指向副本中的同名样式。
func (r *Registry) Clone() *Registry {
	c := &Registry{
		typeface:     r.typeface,
		baseFontSize: r.baseFontSize,
		marker:       r.marker,
		styles:       make(map[string]*Attributes, len(r.styles)),
	}
	for name, s := range r.styles {
		cp := s.Clone()
		c.styles[name] = cp
		if s == r.current {
			c.current = cp
		}
	}
	if c.current == nil {
		c.current = r.current.Clone()
	}
	return c
}

func (r *Registry) isNamed(a *Attributes) bool {
	for _, s := range r.styles {
		if s == a {
			return true
		}
	}
	return false
}
