package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tinygpulang/tglc/ast"
	"github.com/tinygpulang/tglc/idgen"
)

func mustParse(t *testing.T, src string) *ast.Module {
	t.Helper()
	idgen.Reset()
	mod, err := New(src).Parse()
	require.NoError(t, err)
	return mod
}

// S1 — vector add.
func TestVectorAddKernel(t *testing.T) {
	mod := mustParse(t, `func global void ret_vec(f32[] a, f32[] b, f32[] c) { c = a + b; return; }`)

	require.Len(t, mod.Kernels, 1)
	k := mod.Kernels[0]
	assert.Equal(t, "ret_vec", k.Name)
	assert.Equal(t, ast.Global, k.Scope)
	require.Len(t, k.Args, 3)
	for _, a := range k.Args {
		assert.Equal(t, ast.Tensor, a.VKind)
	}
	assert.True(t, k.IsVoid())

	require.Len(t, k.Body, 2)
	assign, ok := k.Body[0].(*ast.Assignment)
	require.True(t, ok)
	add, ok := assign.Src.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, ast.Add, add.Op)

	ret, ok := k.Body[1].(*ast.Return)
	require.True(t, ok)
	assert.Nil(t, ret.Value)
}

// S2 — precedence: a + b * c groups as Add(a, Mul(b, c)).
func TestPrecedenceMulBindsTighterThanAdd(t *testing.T) {
	mod := mustParse(t, `
func global void k(f32[] a, f32[] b, f32[] c, f32[] d) {
    d = a + b * c;
    return;
}`)

	assign := mod.Kernels[0].Body[0].(*ast.Assignment)
	root, ok := assign.Src.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, ast.Add, root.Op)

	rhs, ok := root.RHS.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, ast.Mul, rhs.Op)
}

// S3 — left associativity: a - b - c groups as Sub(Sub(a, b), c).
func TestLeftAssociativeSubtraction(t *testing.T) {
	mod := mustParse(t, `
func global void k(f32[] a, f32[] b, f32[] c, f32[] d) {
    d = a - b - c;
    return;
}`)

	assign := mod.Kernels[0].Body[0].(*ast.Assignment)
	root, ok := assign.Src.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, ast.Sub, root.Op)

	lhs, ok := root.LHS.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, ast.Sub, lhs.Op)

	_, rhsIsVar := root.RHS.(*ast.Variable)
	assert.True(t, rhsIsVar)
}

// S4 — built-in call plus a float literal constant.
func TestBuiltinCallAndFloatLiteral(t *testing.T) {
	mod := mustParse(t, `
func global void k(f32[] a, f32[] d) {
    d = sqrt(a) + 1.5;
    return;
}`)

	assign := mod.Kernels[0].Body[0].(*ast.Assignment)
	root, ok := assign.Src.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, ast.Add, root.Op)

	sqrt, ok := root.LHS.(*ast.UnaryExpr)
	require.True(t, ok)
	assert.Equal(t, ast.Sqrt, sqrt.Op)

	lit, ok := root.RHS.(*ast.Constant)
	require.True(t, ok)
	assert.InDelta(t, 1.5, lit.Value, 0.0001)
}

// S5 — device call aliased, then assigned through.
func TestDeviceCallThroughAlias(t *testing.T) {
	mod := mustParse(t, `
func device f32 f(f32 x, f32 y) {
    return x + y;
}
func global void g(f32[] a, f32[] b, f32[] c) {
    var t = f(a, b);
    c = t;
    return;
}`)

	require.Len(t, mod.Kernels, 2)
	g := mod.Kernels[1]
	require.Len(t, g.Body, 3)

	alias, ok := g.Body[0].(*ast.Alias)
	require.True(t, ok)
	assert.Equal(t, "t", alias.Name)
	call, ok := alias.Src.(*ast.KernelCall)
	require.True(t, ok)
	assert.Equal(t, "f", call.Callee.Name)
	require.Len(t, call.Args, 2)

	assign, ok := g.Body[1].(*ast.Assignment)
	require.True(t, ok)
	assert.Same(t, alias, assign.Src)
}

// S6 — assignment to an undefined variable is fatal at the '=' column.
func TestAssignToUndefinedVariableIsFatal(t *testing.T) {
	idgen.Reset()
	_, err := New(`func global void k(f32[] a) { b = a; return; }`).Parse()
	require.Error(t, err)
	assert.Equal(t, "Line[1] Col[33]: Assigning to undefined variable: b", err.Error())
}

func TestEmptyParamListParses(t *testing.T) {
	mod := mustParse(t, `func global void k() { return; }`)
	assert.Empty(t, mod.Kernels[0].Args)
}

func TestCommentOnlyLineIsSkipped(t *testing.T) {
	mod := mustParse(t, `
# a leading comment
func global void k() {
    # nothing here
    return;
}`)
	require.Len(t, mod.Kernels, 1)
}

func TestDuplicateKernelNameIsFatal(t *testing.T) {
	idgen.Reset()
	_, err := New(`
func global void k() { return; }
func device f32 k(f32 x) { return x; }
`).Parse()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate kernel name: k")
}

func TestMissingReturnIsFatal(t *testing.T) {
	idgen.Reset()
	_, err := New(`func global void k(f32[] a) { }`).Parse()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing return statement")
}

func TestVoidReturnWithValueIsFatal(t *testing.T) {
	idgen.Reset()
	_, err := New(`func global void k() { return 1.0; }`).Parse()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "returning a value from void kernel")
}

func TestNonVoidReturnWithoutValueIsFatal(t *testing.T) {
	idgen.Reset()
	_, err := New(`func device f32 k(f32 x) { return; }`).Parse()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing return value")
}

func TestArityMismatchIsFatal(t *testing.T) {
	idgen.Reset()
	_, err := New(`
func device f32 f(f32 x, f32 y) { return x + y; }
func global void g(f32[] a) {
    var t = f(a);
    return;
}`).Parse()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "arity mismatch")
}

func TestArgumentKindMismatchIsFatal(t *testing.T) {
	idgen.Reset()
	_, err := New(`
func device f32 f(f32[] x) { return x; }
func global void g(f32 a) {
    var t = f(a);
    return;
}`).Parse()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kind mismatch")
}

func TestIllegalTopLevelTokenIsFatal(t *testing.T) {
	idgen.Reset()
	_, err := New(`var x = 1.0;`).Parse()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "illegal keyword")
}

func TestUnbalancedParenthesesIsFatal(t *testing.T) {
	idgen.Reset()
	_, err := New(`
func global void k(f32[] a, f32[] b) {
    b = (a + 1.0;
    return;
}`).Parse()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unbalanced parentheses")
}

func TestAssignmentToScalarIsFatal(t *testing.T) {
	idgen.Reset()
	_, err := New(`
func global void k(f32 a, f32[] b) {
    a = b;
    return;
}`).Parse()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a tensor")
}

func TestMalformedNumericLiteralIsFatal(t *testing.T) {
	idgen.Reset()
	_, err := New(`
func global void k(f32[] a) {
    a = 1.2.3;
    return;
}`).Parse()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed numeric literal")
}

func TestUnsupportedScopeKeywordIsFatal(t *testing.T) {
	idgen.Reset()
	_, err := New(`func local void k() { return; }`).Parse()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported scope keyword")
}
