package annotations

import "github.com/garagon/mancheck/pyast"

// hasFixtureDecorator reports whether any decorator looks like a pytest
// fixture: `@fixture`, `@pytest.fixture`, or a call of either. The match
// is purely syntactic, so an aliased import such as
// `from pytest import fixture as fx` is not recognized.
func hasFixtureDecorator(decorators []pyast.Expr) bool {
	for _, d := range decorators {
		if isFixtureExpr(d) {
			return true
		}
		if call, ok := d.(*pyast.Call); ok && isFixtureExpr(call.Func) {
			return true
		}
	}
	return false
}

func isFixtureExpr(e pyast.Expr) bool {
	switch e := e.(type) {
	case *pyast.Name:
		return e.ID == "fixture"
	case *pyast.Attribute:
		base, ok := e.Value.(*pyast.Name)
		return ok && base.ID == "pytest" && e.Attr == "fixture"
	}
	return false
}
