// Package pyast is a small, read-only model of a Python module's syntax
// tree. It carries only what annotation checks need: definitions, their
// parameters and decorators, and enough statement structure to reach
// nested definitions.
package pyast

// Kind identifies the type of a node.
type Kind int

const (
	KindModule Kind = iota
	KindClassDef
	KindFunctionDef
	KindAsyncFunctionDef
	KindArguments
	KindArg
	KindCompound
	KindStmt
	KindName
	KindAttribute
	KindCall
	KindOtherExpr
)

func (k Kind) String() string {
	switch k {
	case KindModule:
		return "Module"
	case KindClassDef:
		return "ClassDef"
	case KindFunctionDef:
		return "FunctionDef"
	case KindAsyncFunctionDef:
		return "AsyncFunctionDef"
	case KindArguments:
		return "arguments"
	case KindArg:
		return "arg"
	case KindCompound:
		return "Compound"
	case KindStmt:
		return "Stmt"
	case KindName:
		return "Name"
	case KindAttribute:
		return "Attribute"
	case KindCall:
		return "Call"
	case KindOtherExpr:
		return "Expr"
	default:
		return "Unknown"
	}
}

// NoColumn marks a position whose column offset is not known.
const NoColumn = -1

// Pos is a source position. Line is 1-based, Column is a 0-based byte offset.
type Pos struct {
	Line   int
	Column int
}

// HasColumn reports whether the column offset is known.
func (p Pos) HasColumn() bool { return p.Column >= 0 }

// Node is implemented by every tree node.
type Node interface {
	Kind() Kind
	Position() Pos
}

// Stmt is a statement-level node.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is an expression node. Only the shapes needed for decorator
// matching are modeled precisely; everything else is an OtherExpr.
type Expr interface {
	Node
	exprNode()
}

// Module is the root of a parsed source file.
type Module struct {
	Body []Stmt
}

// ClassDef is `class Name(...): body`.
type ClassDef struct {
	Name       string
	Decorators []Expr
	Body       []Stmt
	Pos        Pos
}

// FunctionDef is `def name(args) -> returns: body`, or its async form.
// Pos is the position of the `def` (or `async`) keyword, not of the first
// decorator.
type FunctionDef struct {
	Name       string
	Async      bool
	Args       *Arguments
	Returns    Expr // nil when no return annotation
	Decorators []Expr
	Body       []Stmt
	Pos        Pos
}

// Arguments groups a function's parameters the way Python does.
type Arguments struct {
	PosOnlyArgs []*Arg
	Args        []*Arg
	VarArg      *Arg
	KwOnlyArgs  []*Arg
	KwArg       *Arg
	Pos         Pos
}

// Arg is a single parameter.
type Arg struct {
	Name       string
	Annotation Expr // nil when unannotated
	Pos        Pos
}

// Compound is any statement with nested bodies that is not a definition:
// if/elif/else, for, while, try/except/finally, with, match.
type Compound struct {
	Keyword string
	Bodies  [][]Stmt
	Pos     Pos
}

// SimpleStmt is a statement that cannot contain definitions.
type SimpleStmt struct {
	Keyword string
	Pos     Pos
}

// Name is a bare identifier.
type Name struct {
	ID  string
	Pos Pos
}

// Attribute is `Value.Attr`.
type Attribute struct {
	Value Expr
	Attr  string
	Pos   Pos
}

// Call is `Func(...)`. Arguments are not modeled.
type Call struct {
	Func Expr
	Pos  Pos
}

// OtherExpr stands in for any expression shape not modeled above.
type OtherExpr struct {
	Type string
	Text string
	Pos  Pos
}

func (*Module) Kind() Kind { return KindModule }
func (*ClassDef) Kind() Kind { return KindClassDef }
func (*Arguments) Kind() Kind { return KindArguments }
func (*Arg) Kind() Kind { return KindArg }
func (*Compound) Kind() Kind { return KindCompound }
func (*SimpleStmt) Kind() Kind { return KindStmt }
func (*Name) Kind() Kind { return KindName }
func (*Attribute) Kind() Kind { return KindAttribute }
func (*Call) Kind() Kind { return KindCall }
func (*OtherExpr) Kind() Kind { return KindOtherExpr }

func (f *FunctionDef) Kind() Kind {
	if f.Async {
		return KindAsyncFunctionDef
	}
	return KindFunctionDef
}

func (*Module) Position() Pos { return Pos{Line: 1, Column: 0} }
func (c *ClassDef) Position() Pos { return c.Pos }
func (f *FunctionDef) Position() Pos { return f.Pos }
func (a *Arguments) Position() Pos { return a.Pos }
func (a *Arg) Position() Pos { return a.Pos }
func (c *Compound) Position() Pos { return c.Pos }
func (s *SimpleStmt) Position() Pos { return s.Pos }
func (n *Name) Position() Pos { return n.Pos }
func (a *Attribute) Position() Pos { return a.Pos }
func (c *Call) Position() Pos { return c.Pos }
func (o *OtherExpr) Position() Pos { return o.Pos }

func (*ClassDef) stmtNode()    {}
func (*FunctionDef) stmtNode() {}
func (*Compound) stmtNode()    {}
func (*SimpleStmt) stmtNode()  {}

func (*Name) exprNode()      {}
func (*Attribute) exprNode() {}
func (*Call) exprNode()      {}
func (*OtherExpr) exprNode() {}
