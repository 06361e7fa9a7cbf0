// Package annotations finds Python functions whose parameters or return
// type are missing type annotations.
package annotations

import (
	"fmt"
	"strings"

	"github.com/garagon/mancheck/pyast"
)

// MissingReturn is the issue text recorded when a function has no return
// annotation. Reporters match on it to split the two kinds of issue.
const MissingReturn = "missing return annotation"

// FixtureWhitelist lists parameter names that pytest injects into tests
// and fixtures. They may stay unannotated in those functions.
var FixtureWhitelist = []string{"monkeypatch", "capsys", "request", "pytestconfig"}

// allowedNoReturnType are functions that never need a return annotation.
var allowedNoReturnType = map[string]bool{
	"__init__":          true,
	"__exit__":          true,
	"__init_subclass__": true,
	"__new__":           true,
	"setup_module":      true,
	"teardown_module":   true,
}

// Finding describes one function with missing annotations.
type Finding struct {
	// Function is the dotted name of the function, including the classes
	// and functions it is nested in.
	Function string `json:"function" msgpack:"function"`

	// Issues lists the problems in parameter order. MissingReturn, when
	// present, is always last.
	Issues []string `json:"issues" msgpack:"issues"`

	// Line is the line of the `def`, shifted by the number of decorators.
	Line int `json:"line" msgpack:"line"`

	// Column is the column of the `def`, or pyast.NoColumn.
	Column int `json:"column" msgpack:"column"`
}

// HasColumn reports whether the finding carries a column offset.
func (f Finding) HasColumn() bool { return f.Column >= 0 }

// ParameterIssues returns the issues other than MissingReturn.
func (f Finding) ParameterIssues() []string {
	var out []string
	for _, issue := range f.Issues {
		if issue != MissingReturn {
			out = append(out, issue)
		}
	}
	return out
}

// MissingReturnAnnotation reports whether the return annotation is missing.
func (f Finding) MissingReturnAnnotation() bool {
	for _, issue := range f.Issues {
		if issue == MissingReturn {
			return true
		}
	}
	return false
}

// ParameterIssue formats the issue text for an unannotated parameter.
func ParameterIssue(name string) string {
	return fmt.Sprintf("parameter '%s' is missing a type annotation", name)
}

// Visitor walks a module and collects findings. A Visitor may be reused
// for several modules but must not be shared between goroutines.
type Visitor struct {
	state    []string
	findings []Finding
}

// NewVisitor returns a ready Visitor.
func NewVisitor() *Visitor {
	v := &Visitor{}
	v.reinit()
	return v
}

func (v *Visitor) reinit() {
	v.state = nil
	v.findings = nil
}

// Check returns the functions in tree with missing annotations, in the
// order they appear (outer definitions before nested ones).
func (v *Visitor) Check(tree *pyast.Module) []Finding {
	v.reinit()
	if tree != nil {
		v.visit(tree)
	}
	findings := v.findings
	v.reinit()
	return findings
}

// Check is a convenience wrapper around a fresh Visitor.
func Check(tree *pyast.Module) []Finding {
	return NewVisitor().Check(tree)
}

func (v *Visitor) visit(n pyast.Node) {
	switch n := n.(type) {
	case *pyast.ClassDef:
		v.state = append(v.state, n.Name)
		v.visitChildren(n)
		v.state = v.state[:len(v.state)-1]
	case *pyast.FunctionDef:
		v.checkFunction(n)
		v.state = append(v.state, n.Name)
		v.visitChildren(n)
		v.state = v.state[:len(v.state)-1]
	default:
		v.visitChildren(n)
	}
}

func (v *Visitor) visitChildren(n pyast.Node) {
	for _, c := range pyast.Children(n) {
		v.visit(c)
	}
}

func (v *Visitor) checkFunction(fn *pyast.FunctionDef) {
	name := fn.Name
	isTest := strings.HasPrefix(name, "test_")
	isFixture := hasFixtureDecorator(fn.Decorators)

	var issues []string
	if fn.Args != nil {
		for _, arg := range fn.Args.Args {
			if arg.Annotation != nil {
				continue
			}
			switch {
			case arg.Name == "self" || arg.Name == "cls":
				continue
			case isTest && isWhitelisted(arg.Name):
				continue
			case isFixture && isWhitelisted(arg.Name):
				continue
			case name == "__exit__":
				continue
			}
			issues = append(issues, ParameterIssue(arg.Name))
		}
	}

	if !isTest && fn.Returns == nil && !allowedNoReturnType[name] {
		issues = append(issues, MissingReturn)
	}

	if len(issues) == 0 {
		return
	}

	qualified := name
	if len(v.state) > 0 {
		qualified = strings.Join(v.state, ".") + "." + name
	}
	v.findings = append(v.findings, Finding{
		Function: qualified,
		Issues:   issues,
		Line:     fn.Pos.Line + len(fn.Decorators),
		Column:   fn.Pos.Column,
	})
}

func isWhitelisted(name string) bool {
	for _, w := range FixtureWhitelist {
		if w == name {
			return true
		}
	}
	return false
}
