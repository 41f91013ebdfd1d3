package astdump

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tinygpulang/tglc/ast"
	"github.com/tinygpulang/tglc/idgen"
)

func TestDumpVectorAddKernel(t *testing.T) {
	idgen.Reset()
	a := ast.NewVariable(ast.Tensor, ast.Float32, "a")
	b := ast.NewVariable(ast.Tensor, ast.Float32, "b")
	c := ast.NewVariable(ast.Tensor, ast.Float32, "c")
	add := ast.NewBinaryExpr(ast.Add, a, b)
	assign := ast.NewAssignment(c, add)
	ret := ast.NewReturn(nil)

	k := ast.NewKernel("ret_vec", ast.Global, []*ast.Variable{a, b, c}, nil)
	k.Body = []ast.Node{assign, ret}

	module := &ast.Module{Kernels: []*ast.Kernel{k}}

	out := Dump(module)
	assert.Contains(t, out, "-- Kernel")
	assert.Contains(t, out, "name: ret_vec")
	assert.Contains(t, out, "scope: global")
	assert.Contains(t, out, "-- Assignment")
	assert.Contains(t, out, "-- BinaryExpr")
	assert.Contains(t, out, "op: +")
	assert.Contains(t, out, "-- Return")
	assert.Contains(t, out, "value: void")
}

func TestDumpSharedAliasPrintedOnce(t *testing.T) {
	idgen.Reset()
	a := ast.NewVariable(ast.Tensor, ast.Float32, "a")
	sq := ast.NewUnaryExpr(ast.Sqrt, a)
	alias := ast.NewAlias("t", sq)
	c := ast.NewVariable(ast.Tensor, ast.Float32, "c")
	assign1 := ast.NewAssignment(c, alias)
	assign2 := ast.NewAssignment(c, alias)
	ret := ast.NewReturn(nil)

	k := ast.NewKernel("k", ast.Global, []*ast.Variable{a, c}, nil)
	k.Body = []ast.Node{assign1, assign2, ret}
	module := &ast.Module{Kernels: []*ast.Kernel{k}}

	out := Dump(module)
	assert.Equal(t, 1, strings.Count(out, "-- Alias"))
}
