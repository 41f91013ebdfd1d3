package ast

// SymbolTable holds every name interned during a single translation
// unit's parse: kernels, kernel parameters, and aliases all share one
// flat namespace (spec.md §9(d)) plus two scope-specific maps used for
// GLOBAL/DEVICE kernel dispatch, mirroring the original parser's
// defined_nodes/defined_global_kernels/defined_device_kernels split.
type SymbolTable struct {
	Defined       map[string]Node
	GlobalKernels map[string]*Kernel
	DeviceKernels map[string]*Kernel
}

// NewSymbolTable creates an empty symbol table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{
		Defined:       make(map[string]Node),
		GlobalKernels: make(map[string]*Kernel),
		DeviceKernels: make(map[string]*Kernel),
	}
}

// Lookup resolves a bare name against the flat namespace.
func (s *SymbolTable) Lookup(name string) (Node, bool) {
	n, ok := s.Defined[name]
	return n, ok
}

// Declare interns a new name. Callers are responsible for rejecting
// duplicates before calling Declare (the parser checks this explicitly
// so it can report the exact offending token).
func (s *SymbolTable) Declare(name string, n Node) {
	s.Defined[name] = n
}

// DeclareKernel interns a kernel into the flat namespace and its
// scope-specific map.
func (s *SymbolTable) DeclareKernel(k *Kernel) {
	s.Defined[k.Name] = k
	switch k.Scope {
	case Global:
		s.GlobalKernels[k.Name] = k
	case Device:
		s.DeviceKernels[k.Name] = k
	}
}

// ValueKind reports the value kind (SCALAR vs TENSOR) a node presents as
// when used as a call argument. Aliases and kernel calls always count as
// scalars (spec.md §4.3.6), matching the operand-read rule's treatment
// of everything but a bare Tensor variable as scalar-valued.
func ValueKind(n Node) VariableKind {
	switch v := n.(type) {
	case *Variable:
		return v.VKind
	default:
		return Scalar
	}
}
