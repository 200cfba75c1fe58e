package markdown

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// FigureNode is an image with a caption, written as [!figure|Caption](URL).
type FigureNode struct {
	ast.BaseInline
	URL     []byte
	Caption []byte
}

// KindFigure is the node kind for FigureNode.
var KindFigure = ast.NewNodeKind("Figure")

const figurePrefix = "[!figure|"

// Kind implements ast.Node.
func (n *FigureNode) Kind() ast.NodeKind {
	return KindFigure
}

// Dump implements ast.Node.
func (n *FigureNode) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{
		"URL":     string(n.URL),
		"Caption": string(n.Caption),
	}, nil)
}

type figureParser struct{}

// Trigger implements parser.BlockParser.
func (p *figureParser) Trigger() []byte {
	return []byte{'['}
}

// Parse implements parser.BlockParser.
func (p *figureParser) Parse(_ ast.Node, block text.Reader, _ parser.Context) ast.Node {
	line, _ := block.PeekLine()
	if !bytes.HasPrefix(line, []byte(figurePrefix)) {
		return nil
	}

	rest := line[len(figurePrefix):]
	captionEnd := bytes.IndexByte(rest, ']')
	if captionEnd == -1 || captionEnd+1 >= len(rest) || rest[captionEnd+1] != '(' {
		return nil
	}
	target := rest[captionEnd+2:]
	urlEnd := bytes.IndexByte(target, ')')
	if urlEnd <= 0 {
		return nil
	}

	block.Advance(len(figurePrefix) + captionEnd + 2 + urlEnd + 1)

	return &FigureNode{
		URL:     bytes.TrimSpace(target[:urlEnd]),
		Caption: bytes.TrimSpace(rest[:captionEnd]),
	}
}

type figureRenderer struct {
	html.Config
}

// RegisterFuncs implements renderer.NodeRenderer.
func (r *figureRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindFigure, r.render)
}

func (r *figureRenderer) render(w util.BufWriter, _ []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*FigureNode)

	_, _ = w.WriteString(`<figure><img src="`)
	_, _ = w.Write(util.EscapeHTML(util.URLEscape(n.URL, true)))
	_, _ = w.WriteString(`" alt="`)
	_, _ = w.Write(util.EscapeHTML(n.Caption))
	_, _ = w.WriteString(`"><figcaption>`)
	_, _ = w.Write(util.EscapeHTML(n.Caption))
	_, _ = w.WriteString(`</figcaption></figure>`)

	return ast.WalkContinue, nil
}

type figureExtension struct{}

// Figures enables the [!figure|Caption](URL) syntax.
func Figures() goldmark.Extender {
	return figureExtension{}
}

// Extend implements goldmark.Extender.
func (figureExtension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithInlineParsers(
		util.Prioritized(&figureParser{}, 50),
	))
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(&figureRenderer{Config: html.NewConfig()}, 50),
	))
}
