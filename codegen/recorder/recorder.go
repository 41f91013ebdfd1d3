// Package recorder is the in-memory codegen.Target test double called
// for explicitly by spec.md §9: "a test implementation can be a pure
// in-memory recorder that logs emitted operations for assertion." It
// never links against an external codegen library, so codegen's own
// tests can run without cgo or LLVM installed.
package recorder

import (
	"fmt"

	"github.com/tinygpulang/tglc/codegen"
)

// Op is one recorded backend operation, in the order it was emitted.
type Op struct {
	Name string
	Args []any
}

// handle is the recorder's own Value representation: a small tagged
// token so tests can assert on identity and kind without reaching into
// a real backend's types.
type handle struct {
	kind string
	id   int
}

func (h handle) String() string { return fmt.Sprintf("%s#%d", h.kind, h.id) }

// Target records every call it receives into Ops, returning a fresh
// handle from each method that produces a value.
type Target struct {
	Ops []Op

	next      int
	functions map[string][]codegen.ParamKind
	hasReturn map[string]bool
}

// New creates an empty recorder.
func New() *Target {
	return &Target{
		functions: make(map[string][]codegen.ParamKind),
		hasReturn: make(map[string]bool),
	}
}

func (t *Target) record(name string, args ...any) {
	t.Ops = append(t.Ops, Op{Name: name, Args: args})
}

func (t *Target) fresh(kind string) handle {
	t.next++
	return handle{kind: kind, id: t.next}
}

func (t *Target) CreateModule(triple, sm string) {
	t.record("CreateModule", triple, sm)
}

func (t *Target) CreateFunction(name string, params []codegen.ParamKind, hasReturn bool) codegen.Value {
	t.record("CreateFunction", name, params, hasReturn)
	t.functions[name] = params
	t.hasReturn[name] = hasReturn
	return handle{kind: "fn:" + name, id: 0}
}

func (t *Target) Param(fn codegen.Value, index int) codegen.Value {
	t.record("Param", fn, index)
	return t.fresh("param")
}

func (t *Target) CreateBasicBlock(fn codegen.Value, name string) codegen.Value {
	t.record("CreateBasicBlock", fn, name)
	return t.fresh("block")
}

func (t *Target) SetInsertPoint(block codegen.Value) {
	t.record("SetInsertPoint", block)
}

func (t *Target) ReadThreadIndex() codegen.Value {
	t.record("ReadThreadIndex")
	return t.fresh("tid")
}

func (t *Target) ConstantFloat(v float32) codegen.Value {
	t.record("ConstantFloat", v)
	return t.fresh("const")
}

func (t *Target) GEP(base, index codegen.Value) codegen.Value {
	t.record("GEP", base, index)
	return t.fresh("ptr")
}

func (t *Target) Load(ptr codegen.Value) codegen.Value {
	t.record("Load", ptr)
	return t.fresh("val")
}

func (t *Target) Store(value, ptr codegen.Value) {
	t.record("Store", value, ptr)
}

func (t *Target) FAdd(lhs, rhs codegen.Value) codegen.Value {
	t.record("FAdd", lhs, rhs)
	return t.fresh("val")
}

func (t *Target) FSub(lhs, rhs codegen.Value) codegen.Value {
	t.record("FSub", lhs, rhs)
	return t.fresh("val")
}

func (t *Target) FMul(lhs, rhs codegen.Value) codegen.Value {
	t.record("FMul", lhs, rhs)
	return t.fresh("val")
}

func (t *Target) FDiv(lhs, rhs codegen.Value) codegen.Value {
	t.record("FDiv", lhs, rhs)
	return t.fresh("val")
}

func (t *Target) CallIntrinsic(name string, args []codegen.Value) codegen.Value {
	t.record("CallIntrinsic", name, args)
	return t.fresh("val")
}

func (t *Target) CallFunction(fn codegen.Value, args []codegen.Value) codegen.Value {
	t.record("CallFunction", fn, args)
	return t.fresh("val")
}

func (t *Target) RetVoid() {
	t.record("RetVoid")
}

func (t *Target) RetValue(v codegen.Value) {
	t.record("RetValue", v)
}

func (t *Target) AnnotateEntryPoint(fn codegen.Value) {
	t.record("AnnotateEntryPoint", fn)
}

func (t *Target) EmitAssembly(path string) error {
	t.record("EmitAssembly", path)
	return nil
}

func (t *Target) EmitIR(path string) error {
	t.record("EmitIR", path)
	return nil
}

// Names returns the Name of every recorded op, in emission order —
// handy for assert.Equal against an expected operation sequence.
func (t *Target) Names() []string {
	names := make([]string, len(t.Ops))
	for i, op := range t.Ops {
		names[i] = op.Name
	}
	return names
}

// Count reports how many times an operation of the given name was recorded.
func (t *Target) Count(name string) int {
	n := 0
	for _, op := range t.Ops {
		if op.Name == name {
			n++
		}
	}
	return n
}

var _ codegen.Target = (*Target)(nil)
