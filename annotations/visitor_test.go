package annotations_test

import (
	"testing"

	"github.com/garagon/mancheck/annotations"
	"github.com/garagon/mancheck/pyast"
	"github.com/stretchr/testify/require"
)

func name(id string) *pyast.Name { return &pyast.Name{ID: id} }

func attr(base, a string) *pyast.Attribute {
	return &pyast.Attribute{Value: name(base), Attr: a}
}

func arg(n string) *pyast.Arg { return &pyast.Arg{Name: n} }

func typed(n, typ string) *pyast.Arg {
	return &pyast.Arg{Name: n, Annotation: name(typ)}
}

func fn(n string, line int, args ...*pyast.Arg) *pyast.FunctionDef {
	return &pyast.FunctionDef{
		Name: n,
		Args: &pyast.Arguments{Args: args},
		Pos:  pyast.Pos{Line: line, Column: 0},
	}
}

func returns(f *pyast.FunctionDef, typ string) *pyast.FunctionDef {
	f.Returns = name(typ)
	return f
}

func decorated(f *pyast.FunctionDef, decorators ...pyast.Expr) *pyast.FunctionDef {
	f.Decorators = decorators
	return f
}

func module(body ...pyast.Stmt) *pyast.Module { return &pyast.Module{Body: body} }

func TestFullyAnnotatedFunctionHasNoFinding(t *testing.T) {
	inner := returns(fn("inner", 3, typed("y", "str")), "None")
	outer := returns(fn("outer", 1, typed("x", "int")), "int")
	outer.Body = []pyast.Stmt{inner}
	cls := &pyast.ClassDef{Name: "C", Body: []pyast.Stmt{
		returns(fn("method", 6, arg("self"), typed("z", "bytes")), "bool"),
		returns(fn("build", 8, arg("cls")), "C"),
	}}

	require.Empty(t, annotations.Check(module(outer, cls)))
}

func TestParameterAndReturnIssuesInOrder(t *testing.T) {
	// def foo(x, y: int):
	tree := module(fn("foo", 1, arg("x"), typed("y", "int")))

	findings := annotations.Check(tree)
	require.Len(t, findings, 1)
	require.Equal(t, "foo", findings[0].Function)
	require.Equal(t, []string{
		"parameter 'x' is missing a type annotation",
		"missing return annotation",
	}, findings[0].Issues)
	require.Equal(t, 1, findings[0].Line)
	require.Equal(t, 0, findings[0].Column)
}

func TestInitInsideClass(t *testing.T) {
	tree := module(&pyast.ClassDef{Name: "C", Body: []pyast.Stmt{
		fn("__init__", 2, arg("self"), arg("x")),
	}})

	findings := annotations.Check(tree)
	require.Len(t, findings, 1)
	require.Equal(t, "C.__init__", findings[0].Function)
	require.Equal(t, []string{"parameter 'x' is missing a type annotation"}, findings[0].Issues)
}

func TestNestedQualifiedNames(t *testing.T) {
	inner := fn("inner", 2, arg("a"))
	outer := fn("outer", 1, arg("b"))
	outer.Body = []pyast.Stmt{inner}

	findings := annotations.Check(module(outer))
	require.Len(t, findings, 2)
	require.Equal(t, "outer", findings[0].Function)
	require.Equal(t, "outer.inner", findings[1].Function)
}

func TestNestingThroughCompoundStatements(t *testing.T) {
	method := fn("run", 4)
	cls := &pyast.ClassDef{Name: "Worker", Body: []pyast.Stmt{
		&pyast.Compound{Keyword: "if", Bodies: [][]pyast.Stmt{{method}}},
	}}
	tree := module(&pyast.Compound{Keyword: "try", Bodies: [][]pyast.Stmt{{cls}, {fn("fallback", 9)}}})

	findings := annotations.Check(tree)
	require.Len(t, findings, 2)
	require.Equal(t, "Worker.run", findings[0].Function)
	require.Equal(t, "fallback", findings[1].Function)
}

func TestSiblingsKeepSourceOrder(t *testing.T) {
	tree := module(fn("a", 1), fn("b", 4), fn("c", 7))

	findings := annotations.Check(tree)
	require.Len(t, findings, 3)
	require.Equal(t, "a", findings[0].Function)
	require.Equal(t, "b", findings[1].Function)
	require.Equal(t, "c", findings[2].Function)
}

func TestAsyncFunctionTreatedLikeSync(t *testing.T) {
	f := fn("fetch", 1, arg("url"))
	f.Async = true
	require.Equal(t, pyast.KindAsyncFunctionDef, f.Kind())

	findings := annotations.Check(module(f))
	require.Len(t, findings, 1)
	require.Equal(t, []string{
		"parameter 'url' is missing a type annotation",
		annotations.MissingReturn,
	}, findings[0].Issues)
}

func TestTestFunctionsNeverMissReturn(t *testing.T) {
	tree := module(
		fn("test_whitelisted", 1, arg("monkeypatch"), arg("capsys"), arg("request"), arg("pytestconfig")),
		fn("test_other", 4, arg("tmp_path")),
	)

	findings := annotations.Check(tree)
	require.Len(t, findings, 1)
	require.Equal(t, "test_other", findings[0].Function)
	require.Equal(t, []string{"parameter 'tmp_path' is missing a type annotation"}, findings[0].Issues)
}

func TestFixtureDecoratorShapes(t *testing.T) {
	tests := []struct {
		label      string
		decorators []pyast.Expr
	}{
		{"bare name", []pyast.Expr{name("fixture")}},
		{"attribute", []pyast.Expr{attr("pytest", "fixture")}},
		{"call of name", []pyast.Expr{&pyast.Call{Func: name("fixture")}}},
		{"call of attribute", []pyast.Expr{&pyast.Call{Func: attr("pytest", "fixture")}}},
		{"among several", []pyast.Expr{name("contextmanager"), attr("pytest", "fixture")}},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			f := returns(fn("db", 2, arg("request"), arg("tmp_path")), "DB")
			decorated(f, tt.decorators...)

			findings := annotations.Check(module(f))
			require.Len(t, findings, 1)
			require.Equal(t, []string{"parameter 'tmp_path' is missing a type annotation"}, findings[0].Issues)
		})
	}
}

func TestFixtureNamedWithWhitelistedParamsIsClean(t *testing.T) {
	f := returns(fn("monkeypatched_env", 2, arg("monkeypatch"), arg("pytestconfig")), "Env")
	decorated(f, &pyast.Call{Func: attr("pytest", "fixture")})
	require.Empty(t, annotations.Check(module(f)))
}

func TestNonFixtureDecoratorsDoNotExempt(t *testing.T) {
	shapes := []pyast.Expr{
		name("fixtures"),
		attr("pytest", "mark"),
		attr("other", "fixture"),
		&pyast.Call{Func: attr("pytest", "mark")},
		&pyast.Attribute{Value: attr("a", "pytest"), Attr: "fixture"},
		&pyast.OtherExpr{Type: "subscript", Text: "registry[0]"},
	}
	for _, deco := range shapes {
		f := returns(fn("setup", 2, arg("request")), "None")
		decorated(f, deco)

		findings := annotations.Check(module(f))
		require.Len(t, findings, 1)
		require.Equal(t, []string{"parameter 'request' is missing a type annotation"}, findings[0].Issues)
	}
}

func TestAliasedFixtureImportIsNotDetected(t *testing.T) {
	f := returns(decorated(fn("db", 2, arg("request")), name("fx")), "DB")

	findings := annotations.Check(module(f))
	require.Len(t, findings, 1)
}

func TestReturnExemptions(t *testing.T) {
	for _, n := range []string{"__init__", "__exit__", "__init_subclass__", "__new__", "setup_module", "teardown_module"} {
		require.Empty(t, annotations.Check(module(fn(n, 1))), n)
	}
	require.Len(t, annotations.Check(module(fn("__enter__", 1))), 1)
}

func TestExitParametersNeverFlagged(t *testing.T) {
	tree := module(&pyast.ClassDef{Name: "Ctx", Body: []pyast.Stmt{
		fn("__exit__", 5, arg("self"), arg("exc_type"), arg("exc_val"), arg("tb"), arg("anything")),
	}})
	require.Empty(t, annotations.Check(tree))
}

func TestOnlyPositionalParametersChecked(t *testing.T) {
	f := returns(fn("f", 1), "None")
	f.Args = &pyast.Arguments{
		PosOnlyArgs: []*pyast.Arg{arg("p")},
		VarArg:      arg("args"),
		KwOnlyArgs:  []*pyast.Arg{arg("k")},
		KwArg:       arg("kwargs"),
	}
	require.Empty(t, annotations.Check(module(f)))
}

func TestSelfAndClsAreExempt(t *testing.T) {
	f := returns(fn("helper", 1, arg("self"), arg("cls")), "None")
	require.Empty(t, annotations.Check(module(f)))
}

func TestDecoratorLineOffset(t *testing.T) {
	f := decorated(fn("cached", 3), name("staticmethod"), &pyast.Call{Func: name("lru_cache")})
	f.Pos.Column = 4

	findings := annotations.Check(module(&pyast.ClassDef{Name: "K", Body: []pyast.Stmt{f}}))
	require.Len(t, findings, 1)
	require.Equal(t, 5, findings[0].Line)
	require.Equal(t, 4, findings[0].Column)
}

func TestMissingColumnIsPreserved(t *testing.T) {
	f := fn("f", 2)
	f.Pos.Column = pyast.NoColumn

	findings := annotations.Check(module(f))
	require.Len(t, findings, 1)
	require.False(t, findings[0].HasColumn())
}

func TestCheckIsIdempotent(t *testing.T) {
	inner := fn("inner", 2, arg("a"))
	outer := fn("outer", 1, arg("b"))
	outer.Body = []pyast.Stmt{inner}
	tree := module(&pyast.ClassDef{Name: "C", Body: []pyast.Stmt{outer}})

	v := annotations.NewVisitor()
	first := v.Check(tree)
	second := v.Check(tree)
	require.Equal(t, first, second)
	require.Equal(t, "C.outer", second[0].Function)
	require.Equal(t, "C.outer.inner", second[1].Function)
}

func TestNilTree(t *testing.T) {
	require.Empty(t, annotations.NewVisitor().Check(nil))
}

func TestFindingIssueSplit(t *testing.T) {
	f := annotations.Finding{Issues: []string{
		annotations.ParameterIssue("a"),
		annotations.ParameterIssue("b"),
		annotations.MissingReturn,
	}}
	require.True(t, f.MissingReturnAnnotation())
	require.Equal(t, []string{
		"parameter 'a' is missing a type annotation",
		"parameter 'b' is missing a type annotation",
	}, f.ParameterIssues())

	onlyParams := annotations.Finding{Issues: []string{annotations.ParameterIssue("a")}}
	require.False(t, onlyParams.MissingReturnAnnotation())
}
