package codegen

import (
	"fmt"

	"github.com/tinygpulang/tglc/ast"
)

// Options configures a single Lower invocation.
type Options struct {
	Triple string // target triple, e.g. "nvptx64-nvidia-cuda"
	SM     string // SM version for the backend's .target directive, e.g. "sm_70"
}

// Lower walks every kernel in module once, in declaration order, and
// emits it into target (spec.md §4.4). Functions for every kernel are
// declared up front so a call can resolve its callee by name regardless
// of lowering order, even though the parser's flat namespace already
// guarantees a callee is declared textually before its first caller.
func Lower(module *ast.Module, target Target, opts Options) error {
	target.CreateModule(opts.Triple, opts.SM)

	functions := make(map[string]Value, len(module.Kernels))
	for _, k := range module.Kernels {
		functions[k.Name] = target.CreateFunction(k.Name, paramKinds(k), !k.IsVoid())
	}

	for _, k := range module.Kernels {
		l := &lowerer{target: target, functions: functions, values: make(map[ast.ID]Value)}
		if err := l.lowerKernel(k, functions[k.Name]); err != nil {
			return fmt.Errorf("lowering kernel %s: %w", k.Name, err)
		}
	}
	return nil
}

func paramKinds(k *ast.Kernel) []ParamKind {
	kinds := make([]ParamKind, len(k.Args))
	for i, a := range k.Args {
		if a.VKind == ast.Tensor {
			kinds[i] = TensorParam
		} else {
			kinds[i] = ScalarParam
		}
	}
	return kinds
}

// lowerer holds the per-kernel value table of spec.md §4.4.1. A fresh
// lowerer is used for every kernel; functions (the cross-kernel call
// table) is the only state shared across kernels.
type lowerer struct {
	target    Target
	functions map[string]Value
	values    map[ast.ID]Value
	tid       Value
}

func (l *lowerer) lowerKernel(k *ast.Kernel, fn Value) error {
	entry := l.target.CreateBasicBlock(fn, "entry")
	l.target.SetInsertPoint(entry)

	l.tid = l.target.ReadThreadIndex()

	for i, arg := range k.Args {
		l.values[arg.ID()] = l.target.Param(fn, i)
	}

	for _, stmt := range k.Body {
		if err := l.lowerStatement(stmt); err != nil {
			return err
		}
	}

	if k.Scope == ast.Global {
		l.target.AnnotateEntryPoint(fn)
	}
	return nil
}

func (l *lowerer) lowerStatement(n ast.Node) error {
	switch stmt := n.(type) {
	case *ast.Assignment:
		return l.lowerAssignment(stmt)
	case *ast.Alias:
		_, err := l.lowerAlias(stmt)
		return err
	case *ast.Return:
		return l.lowerReturn(stmt)
	default:
		// An expression-statement: a standalone call kept for its side
		// effects (spec.md §4.3.1's `expr ';'` production). The result,
		// if any, is discarded.
		_, err := l.eval(n)
		return err
	}
}

// lowerAssignment implements spec.md §4.4.6: target must be a tensor
// parameter; the source is read per §4.4.3, then GEP+store writes it at
// the thread offset.
func (l *lowerer) lowerAssignment(a *ast.Assignment) error {
	src, err := l.readOperand(a.Src)
	if err != nil {
		return err
	}
	base, ok := l.values[a.Target.ID()]
	if !ok {
		return fmt.Errorf("assignment target %s has no backend value", a.Target.Name)
	}
	ptr := l.target.GEP(base, l.tid)
	l.target.Store(src, ptr)
	return nil
}

// lowerAlias implements spec.md §4.4.7: a pure renaming — the already
// read-ruled scalar is recorded under the alias's own id.
func (l *lowerer) lowerAlias(a *ast.Alias) (Value, error) {
	if v, ok := l.values[a.ID()]; ok {
		return v, nil
	}
	v, err := l.readOperand(a.Src)
	if err != nil {
		return nil, err
	}
	l.values[a.ID()] = v
	return v, nil
}

// lowerReturn implements spec.md §4.4.9.
func (l *lowerer) lowerReturn(r *ast.Return) error {
	if r.Value == nil {
		l.target.RetVoid()
		return nil
	}
	v, err := l.readOperand(r.Value)
	if err != nil {
		return err
	}
	l.target.RetValue(v)
	return nil
}

// readOperand implements the operand-read rule of spec.md §4.4.3: a
// bare Tensor-variable reference is turned into a pointer-plus-tid load;
// every other node is used as-evaluated.
func (l *lowerer) readOperand(n ast.Node) (Value, error) {
	v, err := l.eval(n)
	if err != nil {
		return nil, err
	}
	if vr, ok := n.(*ast.Variable); ok && vr.VKind == ast.Tensor {
		ptr := l.target.GEP(v, l.tid)
		return l.target.Load(ptr), nil
	}
	return v, nil
}

// eval computes (or fetches the memoized result for) n's own id,
// without applying the operand-read rule. Memoization by id makes
// arithmetic and alias emission idempotent, enabling DAG sharing
// (spec.md §4.4.4, §9).
func (l *lowerer) eval(n ast.Node) (Value, error) {
	if v, ok := l.values[n.ID()]; ok {
		return v, nil
	}

	switch node := n.(type) {
	case *ast.Constant:
		v := l.target.ConstantFloat(node.Value)
		l.values[node.ID()] = v
		return v, nil

	case *ast.Variable:
		// Parameters are pre-seeded in lowerKernel; reaching here means
		// the AST referenced a variable that was never declared as a
		// parameter, which the parser already rules out.
		return nil, fmt.Errorf("variable %s has no backend value", node.Name)

	case *ast.Alias:
		return l.lowerAlias(node)

	case *ast.BinaryExpr:
		return l.evalBinary(node)

	case *ast.UnaryExpr:
		return l.evalUnary(node)

	case *ast.KernelCall:
		return l.evalCall(node)

	default:
		return nil, fmt.Errorf("cannot lower node of kind %s as a value", n.Kind())
	}
}

// evalBinary implements spec.md §4.4.4.
func (l *lowerer) evalBinary(b *ast.BinaryExpr) (Value, error) {
	lhs, err := l.readOperand(b.LHS)
	if err != nil {
		return nil, err
	}
	rhs, err := l.readOperand(b.RHS)
	if err != nil {
		return nil, err
	}

	var v Value
	switch b.Op {
	case ast.Add:
		v = l.target.FAdd(lhs, rhs)
	case ast.Sub:
		v = l.target.FSub(lhs, rhs)
	case ast.Mul:
		v = l.target.FMul(lhs, rhs)
	case ast.Div:
		v = l.target.FDiv(lhs, rhs)
	default:
		return nil, fmt.Errorf("unknown binary operator %s", b.Op)
	}
	l.values[b.ID()] = v
	return v, nil
}

// evalUnary implements spec.md §4.4.5. The op's own name ("abs", "sqrt",
// "log2", "exp2") is passed to the Target as the intrinsic key; mapping
// that key to a real target intrinsic name is the Target's concern, not
// the visitor's.
func (l *lowerer) evalUnary(u *ast.UnaryExpr) (Value, error) {
	x, err := l.readOperand(u.X)
	if err != nil {
		return nil, err
	}
	v := l.target.CallIntrinsic(u.Op.String(), []Value{x})
	l.values[u.ID()] = v
	return v, nil
}

// evalCall implements spec.md §4.4.8: arguments are taken from the
// value table directly, bypassing the operand-read rule — pointers and
// scalars both pass through as-is.
func (l *lowerer) evalCall(c *ast.KernelCall) (Value, error) {
	fn, ok := l.functions[c.Callee.Name]
	if !ok {
		return nil, fmt.Errorf("kernel %s has no backend function", c.Callee.Name)
	}

	args := make([]Value, len(c.Args))
	for i, a := range c.Args {
		v, err := l.eval(a)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}

	result := l.target.CallFunction(fn, args)
	if !c.Callee.IsVoid() {
		l.values[c.ID()] = result
	}
	return result, nil
}
