// Package ast defines the TGL abstract syntax tree: a tagged-sum node
// hierarchy (spec.md's design notes prefer this over a class hierarchy),
// the symbol table that backs name resolution, and the small set of
// enumerations (DataType, VariableKind, KernelScope) that the parser and
// IR lowering both depend on.
//
// Every node carries a unique ID handed out by idgen. Nodes are immutable
// once constructed except for Kernel.Body, which grows during that
// kernel's own parse and is read-only afterward.
package ast

import "github.com/tinygpulang/tglc/idgen"

// ID uniquely identifies an AST node for the lifetime of a compilation.
type ID int

// DataType is the closed set of scalar element types. TGL's final
// language defines only Float32; earlier drafts of the source language
// referenced a 16-bit float, which this repository does not carry
// forward (spec.md §3.1).
type DataType uint8

const (
	Float32 DataType = iota
)

func (d DataType) String() string {
	switch d {
	case Float32:
		return "f32"
	default:
		return "unknown"
	}
}

// VariableKind distinguishes a scalar from a one-dimensional tensor.
type VariableKind uint8

const (
	Scalar VariableKind = iota
	Tensor
)

func (k VariableKind) String() string {
	switch k {
	case Scalar:
		return "scalar"
	case Tensor:
		return "tensor"
	default:
		return "unknown"
	}
}

// KernelScope distinguishes host-invocable entry points from
// device-only helper kernels.
type KernelScope uint8

const (
	Global KernelScope = iota
	Device
)

func (s KernelScope) String() string {
	switch s {
	case Global:
		return "global"
	case Device:
		return "device"
	default:
		return "unknown"
	}
}

// BinaryOp enumerates the binary arithmetic operators.
type BinaryOp uint8

const (
	Add BinaryOp = iota
	Sub
	Mul
	Div
)

func (op BinaryOp) String() string {
	switch op {
	case Add:
		return "+"
	case Sub:
		return "-"
	case Mul:
		return "*"
	case Div:
		return "/"
	default:
		return "?"
	}
}

// Precedence returns the operator's binding strength: 2 for */, 1 for +-,
// matching spec.md §4.3.5 exactly.
func (op BinaryOp) Precedence() int {
	switch op {
	case Mul, Div:
		return 2
	case Add, Sub:
		return 1
	default:
		return 0
	}
}

// UnaryOp enumerates the built-in unary functions.
type UnaryOp uint8

const (
	Abs UnaryOp = iota
	Sqrt
	Log2
	Exp2
)

func (op UnaryOp) String() string {
	switch op {
	case Abs:
		return "abs"
	case Sqrt:
		return "sqrt"
	case Log2:
		return "log2"
	case Exp2:
		return "exp2"
	default:
		return "?"
	}
}

// BuiltinUnary maps a call name to its UnaryOp, reporting whether the
// name names a built-in at all. Used by the parser to decide whether a
// call is a KernelCall or a built-in unary node.
func BuiltinUnary(name string) (UnaryOp, bool) {
	switch name {
	case "abs":
		return Abs, true
	case "sqrt":
		return Sqrt, true
	case "log2":
		return Log2, true
	case "exp2":
		return Exp2, true
	default:
		return 0, false
	}
}

// Node is implemented by every AST variant. Kind lets consumers (the
// printer, the lowering visitor) switch on the concrete type without a
// visitor double-dispatch, per spec.md §9's tagged-sum design note.
type Node interface {
	ID() ID
	Kind() string
}

type base struct {
	id ID
}

func (b base) ID() ID { return b.id }

func newBase() base {
	return base{id: ID(idgen.Next())}
}

// Constant is a literal numeric value.
type Constant struct {
	base
	Value float32
	Type  DataType
}

func (*Constant) Kind() string { return "Constant" }

// NewConstant allocates a fresh Constant node.
func NewConstant(value float32, dtype DataType) *Constant {
	return &Constant{base: newBase(), Value: value, Type: dtype}
}

// Variable is a declared scalar or tensor. Shape is deliberately not
// retained (spec.md §3.1/§9(a)): lowering indexes tensors by thread id,
// never by an explicit bound.
type Variable struct {
	base
	VKind VariableKind
	Type  DataType
	Name  string
}

func (*Variable) Kind() string { return "Variable" }

// NewVariable allocates a fresh Variable node.
func NewVariable(vkind VariableKind, dtype DataType, name string) *Variable {
	return &Variable{base: newBase(), VKind: vkind, Type: dtype, Name: name}
}

// Kernel is a function definition: either a host-invocable entry point
// (Global) or a callee-only helper (Device).
type Kernel struct {
	base
	Name   string
	Scope  KernelScope
	Args   []*Variable
	Ret    *Variable // nil for a void kernel
	Body   []Node
}

func (*Kernel) Kind() string { return "Kernel" }

// NewKernel allocates a Kernel node with an empty body; statements are
// appended during that kernel's own body parse.
func NewKernel(name string, scope KernelScope, args []*Variable, ret *Variable) *Kernel {
	return &Kernel{base: newBase(), Name: name, Scope: scope, Args: args, Ret: ret}
}

// IsVoid reports whether the kernel declares no return value.
func (k *Kernel) IsVoid() bool { return k.Ret == nil }

// KernelCall invokes a previously defined user kernel.
type KernelCall struct {
	base
	Callee *Kernel
	Args   []Node
}

func (*KernelCall) Kind() string { return "KernelCall" }

// NewKernelCall allocates a fresh KernelCall node.
func NewKernelCall(callee *Kernel, args []Node) *KernelCall {
	return &KernelCall{base: newBase(), Callee: callee, Args: args}
}

// BinaryExpr is a binary arithmetic expression (Add/Sub/Mul/Div).
type BinaryExpr struct {
	base
	Op       BinaryOp
	LHS, RHS Node
}

func (*BinaryExpr) Kind() string { return "BinaryExpr" }

// NewBinaryExpr allocates a fresh BinaryExpr node.
func NewBinaryExpr(op BinaryOp, lhs, rhs Node) *BinaryExpr {
	return &BinaryExpr{base: newBase(), Op: op, LHS: lhs, RHS: rhs}
}

// UnaryExpr is a unary built-in call (Abs/Sqrt/Log2/Exp2).
type UnaryExpr struct {
	base
	Op UnaryOp
	X  Node
}

func (*UnaryExpr) Kind() string { return "UnaryExpr" }

// NewUnaryExpr allocates a fresh UnaryExpr node.
func NewUnaryExpr(op UnaryOp, x Node) *UnaryExpr {
	return &UnaryExpr{base: newBase(), Op: op, X: x}
}

// Assignment stores src at the thread offset of a tensor variable.
type Assignment struct {
	base
	Target *Variable
	Src    Node
}

func (*Assignment) Kind() string { return "Assignment" }

// NewAssignment allocates a fresh Assignment node.
func NewAssignment(target *Variable, src Node) *Assignment {
	return &Assignment{base: newBase(), Target: target, Src: src}
}

// Alias introduces a named, value-level binding for an expression
// result ("var t = ...;"). It behaves as a scalar wherever it is
// subsequently referenced, per spec.md §4.3.6.
type Alias struct {
	base
	Name string
	Src  Node
}

func (*Alias) Kind() string { return "Alias" }

// NewAlias allocates a fresh Alias node.
func NewAlias(name string, src Node) *Alias {
	return &Alias{base: newBase(), Name: name, Src: src}
}

// Return is a kernel's terminal statement; Value is nil for a void return.
type Return struct {
	base
	Value Node
}

func (*Return) Kind() string { return "Return" }

// NewReturn allocates a fresh Return node.
func NewReturn(value Node) *Return {
	return &Return{base: newBase(), Value: value}
}

// Module is the root of a translation unit: every kernel in declaration
// order, plus the symbol table that resolved them.
type Module struct {
	Kernels []*Kernel
	Symbols *SymbolTable
}
