// Package pyparse turns Python source into a pyast.Module using the
// tree-sitter Python grammar.
package pyparse

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"fortio.org/safecast"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/garagon/mancheck/pyast"
)

// DefaultMaxFileSize is the largest source file Parse accepts (10 MB).
const DefaultMaxFileSize = 10 << 20

var (
	ErrSyntax       = errors.New("syntax error")
	ErrInvalidUTF8  = errors.New("source is not valid UTF-8")
	ErrFileTooLarge = errors.New("source file too large")
	errNilRootNode  = errors.New("tree-sitter returned nil root node")
)

// SyntaxError reports the first position tree-sitter could not parse.
type SyntaxError struct {
	Line   int
	Column int
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at line %d, column %d", e.Line, e.Column)
}

func (e *SyntaxError) Unwrap() error { return ErrSyntax }

// Option configures a Parser.
type Option func(*Parser)

// WithMaxFileSize overrides DefaultMaxFileSize. Non-positive values are ignored.
func WithMaxFileSize(bytes int) Option {
	return func(p *Parser) {
		if bytes > 0 {
			p.maxFileSize = bytes
		}
	}
}

// Parser is safe for concurrent use; every Parse call creates its own
// tree-sitter parser.
type Parser struct {
	maxFileSize int
}

// New returns a Parser with the given options applied.
func New(opts ...Option) *Parser {
	p := &Parser{maxFileSize: DefaultMaxFileSize}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Parse parses src with a default Parser.
func Parse(ctx context.Context, src []byte) (*pyast.Module, error) {
	return New().Parse(ctx, src)
}

// Parse builds the syntax tree for src. Sources that tree-sitter can only
// partially parse are rejected with a *SyntaxError.
func (p *Parser) Parse(ctx context.Context, src []byte) (*pyast.Module, error) {
	if len(src) > p.maxFileSize {
		return nil, fmt.Errorf("%w: %d bytes exceeds limit of %d", ErrFileTooLarge, len(src), p.maxFileSize)
	}
	if !utf8.Valid(src) {
		return nil, ErrInvalidUTF8
	}

	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("tree-sitter parse: %w", err)
	}
	defer tree.Close()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	root := tree.RootNode()
	if root == nil {
		return nil, errNilRootNode
	}
	if root.HasError() {
		if pos, ok := firstError(root); ok {
			return nil, &SyntaxError{Line: pos.Line, Column: pos.Column}
		}
		return nil, &SyntaxError{Line: 1, Column: 0}
	}

	c := converter{src: src}
	return &pyast.Module{Body: c.block(root)}, nil
}

// firstError finds the first ERROR or MISSING node in document order.
func firstError(n *sitter.Node) (pyast.Pos, bool) {
	if n.Type() == "ERROR" || n.IsMissing() {
		return position(n), true
	}
	if !n.HasError() {
		return pyast.Pos{}, false
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if pos, ok := firstError(n.Child(i)); ok {
			return pos, true
		}
	}
	return pyast.Pos{}, false
}

func position(n *sitter.Node) pyast.Pos {
	pt := n.StartPoint()
	row, err := safecast.Conv[int](pt.Row)
	if err != nil {
		return pyast.Pos{Line: 0, Column: pyast.NoColumn}
	}
	col, err := safecast.Conv[int](pt.Column)
	if err != nil {
		col = pyast.NoColumn
	}
	return pyast.Pos{Line: row + 1, Column: col}
}

type converter struct {
	src []byte
}

func (c *converter) text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return n.Content(c.src)
}

// block converts the statements directly under n (a module or a block).
func (c *converter) block(n *sitter.Node) []pyast.Stmt {
	if n == nil {
		return nil
	}
	var body []pyast.Stmt
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child.Type() == "comment" {
			continue
		}
		body = append(body, c.stmt(child, nil))
	}
	return body
}

func (c *converter) stmt(n *sitter.Node, decorators []pyast.Expr) pyast.Stmt {
	switch n.Type() {
	case "function_definition":
		return c.function(n, decorators)
	case "class_definition":
		return &pyast.ClassDef{
			Name:       c.text(n.ChildByFieldName("name")),
			Decorators: decorators,
			Body:       c.block(n.ChildByFieldName("body")),
			Pos:        position(n),
		}
	case "decorated_definition":
		var decos []pyast.Expr
		for i := 0; i < int(n.NamedChildCount()); i++ {
			child := n.NamedChild(i)
			if child.Type() == "decorator" && child.NamedChildCount() > 0 {
				decos = append(decos, c.expr(child.NamedChild(0)))
			}
		}
		def := n.ChildByFieldName("definition")
		if def == nil {
			return &pyast.SimpleStmt{Keyword: n.Type(), Pos: position(n)}
		}
		return c.stmt(def, decos)
	}

	if bodies := c.bodies(n); len(bodies) > 0 {
		return &pyast.Compound{Keyword: keyword(n.Type()), Bodies: bodies, Pos: position(n)}
	}
	return &pyast.SimpleStmt{Keyword: keyword(n.Type()), Pos: position(n)}
}

// bodies collects the blocks of a compound statement, descending into its
// clauses (elif, else, except, finally, case).
func (c *converter) bodies(n *sitter.Node) [][]pyast.Stmt {
	var out [][]pyast.Stmt
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		switch {
		case child.Type() == "block":
			out = append(out, c.block(child))
		case strings.HasSuffix(child.Type(), "_clause"):
			out = append(out, c.bodies(child)...)
		}
	}
	return out
}

func keyword(nodeType string) string {
	return strings.TrimSuffix(nodeType, "_statement")
}

func (c *converter) function(n *sitter.Node, decorators []pyast.Expr) *pyast.FunctionDef {
	fn := &pyast.FunctionDef{
		Name:       c.text(n.ChildByFieldName("name")),
		Decorators: decorators,
		Pos:        position(n),
	}
	if n.ChildCount() > 0 && n.Child(0).Type() == "async" {
		fn.Async = true
	}
	fn.Args = c.parameters(n.ChildByFieldName("parameters"))
	if ret := n.ChildByFieldName("return_type"); ret != nil {
		fn.Returns = c.expr(ret)
	}
	fn.Body = c.block(n.ChildByFieldName("body"))
	return fn
}
