// Package source 负责获取文档：本地文件、目录（doclist.jsr 或全部 *.jsr）或 http(s) 地址。
//
// 文档第一行必须是 "doctype <类型>"。类型为 doclist 时其余各行是文档引用，
// 引用列表会替换当前列表并加载第一个文档。任何获取失败都不会返回错误，
// 而是得到一份包含错误说明的文档，以便照常分页与显示。
package source

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/maruel/natural"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/ByLCY/reportgrid/dsl"
	"github.com/ByLCY/reportgrid/style"
)

const (
	// DocListFile 是目录中的文档列表文件名。
	DocListFile = "doclist.jsr"
	// Extension 是文档文件的扩展名。
	Extension = ".jsr"

	doctypePrefix = "doctype"
	doctypeList   = "doclist"
	maxListDepth  = 8
)

// 合成文档的提示文本。
const (
	MsgNoDocuments   = "No documents have been specified to open"
	MsgInvalidPath   = "The location of the document specified is invalid"
	MsgNoDoctype     = "Error: Badly formatted document - no document type specified"
	MsgCannotRead    = "Error: Cannot read the document"
	MsgListTooNested = "Error: Document lists are nested too deeply"
)

// Options 配置文档获取。
type Options struct {
	Styles style.Config // 每个文档新建注册表时使用
	Client *http.Client
	Logger *zap.Logger
}

// Source 保存文档引用列表与当前文档。Source 不是并发安全的。
type Source struct {
	opts    Options
	log     *zap.Logger
	base    string
	docs    []string
	current *dsl.Document
	ref     string
}

// Open 解析位置：已存在的文件、目录，或 http(s) 地址。无法识别的位置得到一个空列表。
func Open(location string, opts Options) *Source {
	if opts.Client == nil {
		opts.Client = http.DefaultClient
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	s := &Source{opts: opts, log: opts.Logger}

	if isURL(location) {
		s.AddDocument(location)
		return s
	}
	info, err := os.Stat(location)
	switch {
	case err != nil:
		s.log.Debug("文档位置不存在", zap.String("location", location), zap.Error(err))
	case info.IsDir():
		s.base = location
		s.docs = listDirectory(location, s.log)
	default:
		s.base = filepath.Dir(location)
		s.AddDocument(filepath.Base(location))
	}
	return s
}

func listDirectory(dir string, log *zap.Logger) []string {
	if _, err := os.Stat(filepath.Join(dir, DocListFile)); err == nil {
		return []string{DocListFile}
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		log.Warn("读取文档目录失败", zap.String("dir", dir), zap.Error(err))
		return nil
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), Extension) {
			names = append(names, e.Name())
		}
	}
	sort.Sort(natural.StringSlice(names))
	return names
}

// AddDocument 追加一个文档引用。
func (s *Source) AddDocument(ref string) { s.docs = append(s.docs, ref) }

// Documents 返回文档引用列表的副本。
func (s *Source) Documents() []string {
	out := make([]string, len(s.docs))
	copy(out, s.docs)
	return out
}

func (s *Source) Count() int { return len(s.docs) }

// CurrentRef 返回当前文档的引用，尚未加载时为空。
func (s *Source) CurrentRef() string { return s.ref }

// Current 返回当前文档；首次调用时加载列表中的第一个文档。
func (s *Source) Current(ctx context.Context) *dsl.Document {
	if s.current != nil {
		return s.current
	}
	if len(s.docs) == 0 {
		s.current = s.synthetic(MsgNoDocuments)
		return s.current
	}
	return s.SetCurrent(ctx, s.docs[0])
}

// SetCurrent 加载引用 ref 并把它设为当前文档。
func (s *Source) SetCurrent(ctx context.Context, ref string) *dsl.Document {
	s.current = s.load(ctx, ref, 0)
	return s.current
}

func (s *Source) load(ctx context.Context, ref string, depth int) *dsl.Document {
	s.ref = ref
	if depth > maxListDepth {
		return s.synthetic(MsgListTooNested, ref)
	}

	var (
		lines []string
		err   error
	)
	if isURL(ref) {
		lines, err = s.fetch(ctx, ref)
	} else {
		path := ref
		if !filepath.IsAbs(path) {
			path = filepath.Join(s.base, path)
		}
		if info, statErr := os.Stat(path); statErr != nil || info.IsDir() {
			s.log.Debug("文档不存在", zap.String("path", path))
			return s.synthetic(MsgInvalidPath, ref)
		}
		lines, err = readFile(path)
	}
	if err != nil {
		s.log.Warn("读取文档失败", zap.String("ref", ref), zap.Error(err))
		return s.synthetic(MsgCannotRead, err.Error())
	}

	if len(lines) == 0 || !strings.HasPrefix(strings.ToLower(lines[0]), doctypePrefix) {
		return s.synthetic(MsgNoDoctype)
	}
	kind := strings.TrimSpace(strings.ToLower(lines[0])[len(doctypePrefix):])
	if strings.HasPrefix(kind, doctypeList) {
		s.docs = s.docs[:0]
		for _, line := range lines[1:] {
			if line = strings.TrimSpace(line); line != "" {
				s.docs = append(s.docs, line)
			}
		}
		s.log.Debug("载入文档列表", zap.String("ref", ref), zap.Strings("documents", s.docs))
		if len(s.docs) == 0 {
			return s.synthetic(MsgNoDocuments)
		}
		return s.load(ctx, s.docs[0], depth+1)
	}

	doc := s.newDocument()
	doc.Load(slices.Values(lines[1:]))
	return doc
}

func (s *Source) newDocument() *dsl.Document {
	return dsl.NewDocument(style.NewRegistry(s.opts.Styles), s.log)
}

// synthetic 生成一份只包含提示文本的文档。
func (s *Source) synthetic(lines ...string) *dsl.Document {
	doc := s.newDocument()
	for _, line := range lines {
		doc.AddLine(line)
	}
	return doc
}

func (s *Source) fetch(ctx context.Context, ref string) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, fmt.Errorf("无效的文档地址 %s: %w", ref, err)
	}
	resp, err := s.opts.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("获取文档 %s 失败: %w", ref, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("获取文档 %s 失败: %s", ref, resp.Status)
	}
	body, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, fmt.Errorf("无法识别文档 %s 的字符集: %w", ref, err)
	}
	return ReadLines(body)
}

func readFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadLines(f)
}

// ReadLines 按行读取文本，去掉 UTF-8/UTF-16 字节序标记以及行尾的 "\r"。
func ReadLines(r io.Reader) ([]string, error) {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	scanner := bufio.NewScanner(decoded)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	var lines []string
	for scanner.Scan() {
		lines = append(lines, strings.TrimSuffix(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("读取文档失败: %w", err)
	}
	return lines, nil
}

// Load 打开位置并返回其中的当前文档。仅在 ctx 已取消时返回错误。
func Load(ctx context.Context, location string, opts Options) (*dsl.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc := Open(location, opts).Current(ctx)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return doc, nil
}

func isURL(location string) bool {
	u, err := url.Parse(location)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
