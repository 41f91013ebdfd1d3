// Package astdump renders a parsed module as the textual ".ast" artifact
// described in spec.md §6.3: one "-- <Kind>" record per node, indented
// "key: value" lines underneath, with children referenced by id rather
// than re-printed inline. Re-visiting a shared node through an alias
// chain is a no-op (spec.md §9's DAG-sharing design note), matching the
// original tinyGPUlang ASTPrinter's already_printed guard.
package astdump

import (
	"fmt"
	"strings"

	"github.com/tinygpulang/tglc/ast"
)

// Dump renders every kernel in module in declaration order.
func Dump(module *ast.Module) string {
	var sb strings.Builder
	printed := make(map[ast.ID]bool)
	for _, k := range module.Kernels {
		dumpNode(&sb, printed, k)
	}
	return sb.String()
}

func dumpNode(sb *strings.Builder, printed map[ast.ID]bool, n ast.Node) {
	if n == nil || printed[n.ID()] {
		return
	}
	printed[n.ID()] = true

	fmt.Fprintf(sb, "-- %s\n", n.Kind())
	fmt.Fprintf(sb, "  id: %d\n", n.ID())

	switch v := n.(type) {
	case *ast.Constant:
		fmt.Fprintf(sb, "  value: %v\n", v.Value)
		fmt.Fprintf(sb, "  dtype: %s\n", v.Type)

	case *ast.Variable:
		fmt.Fprintf(sb, "  name: %s\n", v.Name)
		fmt.Fprintf(sb, "  vkind: %s\n", v.VKind)
		fmt.Fprintf(sb, "  dtype: %s\n", v.Type)

	case *ast.Kernel:
		fmt.Fprintf(sb, "  name: %s\n", v.Name)
		fmt.Fprintf(sb, "  scope: %s\n", v.Scope)
		argIDs := make([]string, len(v.Args))
		for i, a := range v.Args {
			argIDs[i] = fmt.Sprint(a.ID())
		}
		fmt.Fprintf(sb, "  args: [%s]\n", strings.Join(argIDs, ", "))
		if v.Ret != nil {
			fmt.Fprintf(sb, "  ret: %d\n", v.Ret.ID())
		} else {
			sb.WriteString("  ret: void\n")
		}
		bodyIDs := make([]string, len(v.Body))
		for i, s := range v.Body {
			bodyIDs[i] = fmt.Sprint(s.ID())
		}
		fmt.Fprintf(sb, "  body: [%s]\n", strings.Join(bodyIDs, ", "))
		for _, a := range v.Args {
			dumpNode(sb, printed, a)
		}
		if v.Ret != nil {
			dumpNode(sb, printed, v.Ret)
		}
		for _, s := range v.Body {
			dumpNode(sb, printed, s)
		}

	case *ast.KernelCall:
		fmt.Fprintf(sb, "  kernel: %s\n", v.Callee.Name)
		argIDs := make([]string, len(v.Args))
		for i, a := range v.Args {
			argIDs[i] = fmt.Sprint(a.ID())
		}
		fmt.Fprintf(sb, "  args: [%s]\n", strings.Join(argIDs, ", "))
		for _, a := range v.Args {
			dumpNode(sb, printed, a)
		}

	case *ast.BinaryExpr:
		fmt.Fprintf(sb, "  op: %s\n", v.Op)
		fmt.Fprintf(sb, "  lhs: %d\n", v.LHS.ID())
		fmt.Fprintf(sb, "  rhs: %d\n", v.RHS.ID())
		dumpNode(sb, printed, v.LHS)
		dumpNode(sb, printed, v.RHS)

	case *ast.UnaryExpr:
		fmt.Fprintf(sb, "  op: %s\n", v.Op)
		fmt.Fprintf(sb, "  x: %d\n", v.X.ID())
		dumpNode(sb, printed, v.X)

	case *ast.Assignment:
		fmt.Fprintf(sb, "  target: %d\n", v.Target.ID())
		fmt.Fprintf(sb, "  src: %d\n", v.Src.ID())
		dumpNode(sb, printed, v.Src)

	case *ast.Alias:
		fmt.Fprintf(sb, "  name: %s\n", v.Name)
		fmt.Fprintf(sb, "  src: %d\n", v.Src.ID())
		dumpNode(sb, printed, v.Src)

	case *ast.Return:
		if v.Value != nil {
			fmt.Fprintf(sb, "  value: %d\n", v.Value.ID())
			dumpNode(sb, printed, v.Value)
		} else {
			sb.WriteString("  value: void\n")
		}
	}
}
