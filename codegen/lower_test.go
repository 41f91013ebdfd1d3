package codegen_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tinygpulang/tglc/ast"
	"github.com/tinygpulang/tglc/codegen"
	"github.com/tinygpulang/tglc/codegen/recorder"
	"github.com/tinygpulang/tglc/idgen"
	"github.com/tinygpulang/tglc/parser"
)

func parseOrFail(t *testing.T, src string) *ast.Module {
	t.Helper()
	idgen.Reset()
	mod, err := parser.New(src).Parse()
	require.NoError(t, err)
	return mod
}

func TestLowerVectorAddEmitsLoadsAddAndStore(t *testing.T) {
	mod := parseOrFail(t, `func global void ret_vec(f32[] a, f32[] b, f32[] c) { c = a + b; return; }`)

	target := recorder.New()
	require.NoError(t, codegen.Lower(mod, target, codegen.Options{Triple: "nvptx64-nvidia-cuda", SM: "sm_70"}))

	assert.Equal(t, 2, target.Count("Load"))
	assert.Equal(t, 1, target.Count("FAdd"))
	assert.Equal(t, 1, target.Count("Store"))
	assert.Equal(t, 1, target.Count("RetVoid"))
	assert.Equal(t, 1, target.Count("AnnotateEntryPoint"))
	assert.Equal(t, 1, target.Count("ReadThreadIndex"))
}

func TestLowerDeviceKernelIsNotAnnotated(t *testing.T) {
	mod := parseOrFail(t, `func device f32 f(f32 x, f32 y) { return x + y; }`)

	target := recorder.New()
	require.NoError(t, codegen.Lower(mod, target, codegen.Options{Triple: "nvptx64-nvidia-cuda"}))

	assert.Equal(t, 0, target.Count("AnnotateEntryPoint"))
	assert.Equal(t, 1, target.Count("RetValue"))
	// scalar operands: no GEP/Load for x, y since neither is a tensor.
	assert.Equal(t, 0, target.Count("Load"))
}

func TestLowerSharedSubexpressionLoweredOnce(t *testing.T) {
	// t is referenced three times (twice in c = t + t, once in d = t);
	// DAG sharing means the underlying sqrt(a) computation is only
	// emitted once.
	mod := parseOrFail(t, `
func global void k(f32[] a, f32[] c, f32[] d) {
    var t = sqrt(a);
    c = t + t;
    d = t;
    return;
}`)

	target := recorder.New()
	require.NoError(t, codegen.Lower(mod, target, codegen.Options{Triple: "nvptx64-nvidia-cuda"}))

	assert.Equal(t, 1, target.Count("CallIntrinsic"))
}

func TestLowerKernelCallResolvesByName(t *testing.T) {
	mod := parseOrFail(t, `
func device f32 f(f32[] x, f32[] y) {
    return x + y;
}
func global void g(f32[] a, f32[] b, f32[] c) {
    var t = f(a, b);
    c = t;
    return;
}`)

	target := recorder.New()
	require.NoError(t, codegen.Lower(mod, target, codegen.Options{Triple: "nvptx64-nvidia-cuda"}))

	assert.Equal(t, 1, target.Count("CallFunction"))
	// Both kernels, f and g, are declared as backend functions.
	assert.Equal(t, 2, target.Count("CreateFunction"))
}

func TestLowerBuiltinUnaryUsesOpNameAsIntrinsicKey(t *testing.T) {
	mod := parseOrFail(t, `
func global void k(f32[] a, f32[] d) {
    d = abs(a);
    return;
}`)

	target := recorder.New()
	require.NoError(t, codegen.Lower(mod, target, codegen.Options{Triple: "nvptx64-nvidia-cuda"}))

	require.Len(t, target.Ops, len(target.Ops))
	found := false
	for _, op := range target.Ops {
		if op.Name == "CallIntrinsic" && op.Args[0] == "abs" {
			found = true
		}
	}
	assert.True(t, found)
}
